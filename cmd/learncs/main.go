// Package main implements the learncs command, which runs and debugs
// LearnCS C programs.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/derrell/LearnCS-sub002/internal/config"
	"github.com/derrell/LearnCS-sub002/internal/diag"
	"github.com/derrell/LearnCS-sub002/internal/syntax"
)

// Command flags
var (
	emitTokens  = flag.Bool("emit-tokens", false, "Output token stream")
	emitAST     = flag.Bool("emit-ast", false, "Output AST")
	astFormat   = flag.String("ast-format", "text", "AST output format (text or json)")
	emitLayout  = flag.Bool("emit-layout", false, "Output memory regions, static data and frame layouts")
	emitSymbols = flag.Bool("emit-symbols", false, "Output the file scope symbol table")
	breakLines  = flag.String("break", "", "Comma-separated lines to stop at, e.g. 3,7")
	step        = flag.Bool("step", false, "Run under the debugger, stopping before the first statement")
	inputFile   = flag.String("input", "", "File read as program input (default: standard input)")
	configFile  = flag.String("config", "", "YAML run configuration")
	svgOut      = flag.String("svg", "", "Write the drawing canvas to an SVG file")
	pngOut      = flag.String("png", "", "Write the drawing canvas to a PNG file")
	maxSteps    = flag.Int("max-steps", 0, "Stop after this many statements (0: no limit)")
	watch       = flag.Bool("watch", false, "Rerun whenever the source file changes")
	trace       = flag.Bool("trace", false, "Log interpreter events to standard error")
	version     = flag.Bool("version", false, "Print version")
)

// Version information
const Version = "0.1.0-dev"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "LearnCS %s\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: learncs [options] <file.c>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Printf("learncs version %s\n", Version)
		fmt.Printf("go version %s\n", runtime.Version())
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "error: no input file")
		fmt.Fprintln(os.Stderr, "usage: learncs [options] <file.c>")
		os.Exit(1)
	}

	filename := args[0]

	if *emitTokens {
		os.Exit(runEmitTokens(filename))
	}

	if *emitAST {
		os.Exit(runEmitAST(filename, *astFormat))
	}

	run, err := runConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if *emitLayout {
		os.Exit(runEmitLayout(filename, run))
	}

	if *emitSymbols {
		os.Exit(runEmitSymbols(filename, run))
	}

	if *watch {
		os.Exit(runWatch(filename, run, *step))
	}

	os.Exit(runFile(filename, run, *step))
}

// runConfig loads the -config file, if any, and applies the flags on
// top of it.
func runConfig() (*config.Run, error) {
	run := config.Default()
	if *configFile != "" {
		var err error
		if run, err = config.Load(*configFile); err != nil {
			return nil, err
		}
	}
	if *breakLines != "" {
		lines, err := parseLines(*breakLines)
		if err != nil {
			return nil, fmt.Errorf("-break: %w", err)
		}
		run.Breakpoints = append(run.Breakpoints, lines...)
	}
	if *inputFile != "" {
		run.Input = *inputFile
	}
	if *svgOut != "" {
		run.Draw.SVG = *svgOut
	}
	if *pngOut != "" {
		run.Draw.PNG = *pngOut
	}
	if *maxSteps != 0 {
		run.MaxSteps = *maxSteps
	}
	if *trace {
		run.Trace = true
	}
	return run, run.Validate()
}

// parseLines parses a comma-separated list of line numbers.
func parseLines(s string) ([]int, error) {
	var lines []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid line %q", f)
		}
		lines = append(lines, n)
	}
	return lines, nil
}

// runEmitAST parses the input file and outputs the AST.
func runEmitAST(filename, format string) int {
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	var errs diag.Errors
	ast, _ := syntax.ParseFile(filename, bytes.NewReader(src), errs.Handler)

	// Print errors first
	for _, e := range errs.List() {
		fmt.Fprint(os.Stderr, diag.Render(src, filename, e))
	}

	switch format {
	case "json":
		if err := syntax.FprintJSON(os.Stdout, ast); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	default:
		syntax.Fprint(os.Stdout, ast)
	}

	if errs.Count() > 0 {
		return 1
	}
	return 0
}

// runEmitTokens scans the input file and prints all tokens with positions.
func runEmitTokens(filename string) int {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer f.Close()

	var errors []string
	errh := func(line, col uint32, msg string) {
		errors = append(errors, fmt.Sprintf("%s:%d:%d: %s", filename, line, col, msg))
	}

	s := syntax.NewScanner(filename, f, errh)

	fmt.Printf("%-20s %-12s %s\n", "POSITION", "TOKEN", "LITERAL")
	fmt.Printf("%-20s %-12s %s\n", strings.Repeat("-", 20), strings.Repeat("-", 12), strings.Repeat("-", 20))

	for {
		s.Next()
		tok := s.Token()
		fmt.Printf("%-20s %-12s %s\n", s.Pos(), tok, formatLiteral(s.Literal()))
		if tok.IsEOF() {
			break
		}
	}

	if len(errors) > 0 {
		fmt.Println()
		fmt.Println("Errors:")
		for _, e := range errors {
			fmt.Printf("  %s\n", e)
		}
		return 1
	}

	return 0
}

// formatLiteral formats a literal for display, escaping special characters.
func formatLiteral(lit string) string {
	if lit == "" {
		return "\"\""
	}

	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(lit); i++ {
		switch c := lit[i]; c {
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		case '\r':
			b.WriteString("\\r")
		case '\\':
			b.WriteString("\\\\")
		case '"':
			b.WriteString("\\\"")
		case 0:
			b.WriteString("\\0")
		default:
			if c < ' ' || c >= 0x7f {
				fmt.Fprintf(&b, "\\x%02x", c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// runEmitLayout loads the program and prints where its data lives.
func runEmitLayout(filename string, run *config.Run) int {
	s, code := openSession(filename, run, false)
	if s == nil {
		return code
	}
	s.m.WriteLayout(os.Stdout)
	return 0
}

// runEmitSymbols loads the program and prints its scopes.
func runEmitSymbols(filename string, run *config.Run) int {
	s, code := openSession(filename, run, false)
	if s == nil {
		return code
	}
	fmt.Print(s.m.Scope().String())
	return 0
}
