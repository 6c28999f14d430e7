package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/derrell/LearnCS-sub002/internal/builtins"
	"github.com/derrell/LearnCS-sub002/internal/config"
	"github.com/derrell/LearnCS-sub002/internal/diag"
	"github.com/derrell/LearnCS-sub002/internal/interp"
	"github.com/derrell/LearnCS-sub002/internal/syntax"
)

// session is one loaded program together with the host side of its
// input, output and debugger.
type session struct {
	name   string
	src    []byte
	run    *config.Run
	m      *interp.Machine
	libs   *builtins.Libraries
	stdin  *bufio.Reader // nil when input comes from run.Input
	stdout io.Writer
	stderr io.Writer
	dbg    *debugger // nil unless stepping or breakpoints are set
}

// openSession loads filename with the process's standard streams.
func openSession(filename string, run *config.Run, stepping bool) (*session, int) {
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, 1
	}
	s, code := newSession(filename, src, run, os.Stdin, os.Stdout, os.Stderr)
	if s != nil && (stepping || len(run.Breakpoints) > 0) {
		s.dbg = newTerminalDebugger(s)
	}
	return s, code
}

// newSession parses and loads src. Errors are reported on stderr and
// yield a nil session with the exit code to use.
func newSession(name string, src []byte, run *config.Run, stdin io.Reader, stdout, stderr io.Writer) (*session, int) {
	var errs diag.Errors
	file, err := syntax.ParseFile(name, bytes.NewReader(src), errs.Handler)
	if err != nil {
		if errs.Count() == 0 {
			fmt.Fprint(stderr, diag.Render(src, name, err))
		}
		for _, e := range errs.List() {
			fmt.Fprint(stderr, diag.Render(src, name, e))
		}
		return nil, 1
	}

	libs := builtins.New(builtins.Options{Seed: run.Seed})
	m, err := interp.New(file, interp.Config{
		Memory:   run.MemoryConfig(),
		Registry: libs.Registry(),
		Stdout:   stdout,
		Logger:   newLogger(run, stderr),
		MaxSteps: run.MaxSteps,
	})
	if err != nil {
		fmt.Fprint(stderr, diag.Render(src, name, err))
		return nil, 1
	}
	for _, line := range run.Breakpoints {
		m.SetBreakpoint(line)
	}

	s := &session{name: name, src: src, run: run, m: m, libs: libs, stdout: stdout, stderr: stderr}
	if run.Input != "" {
		data, err := os.ReadFile(run.Input)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return nil, 1
		}
		m.Feed(string(data))
		m.CloseInput()
	} else if stdin != nil {
		s.stdin = bufio.NewReader(stdin)
	}
	return s, 0
}

// newLogger returns a debug-level text logger on w when tracing, and a
// logger that discards everything otherwise.
func newLogger(run *config.Run, w io.Writer) *slog.Logger {
	if !run.Trace {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// runFile runs filename to completion and returns the exit code.
func runFile(filename string, run *config.Run, stepping bool) int {
	s, code := openSession(filename, run, stepping)
	if s == nil {
		return code
	}
	defer s.m.Close()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	return s.execute(ctx, stepping)
}

// execute drives the machine until the program ends. Input pauses are
// served from stdin a line at a time; other pauses go to the debugger.
func (s *session) execute(ctx context.Context, stepping bool) int {
	var res interp.Result
	var err error
	if stepping {
		res, err = s.m.Step(ctx)
	} else {
		res, err = s.m.Run(ctx)
	}
	for err == nil && !res.Done {
		p := res.Pause
		switch {
		case p.Reason == interp.Input:
			s.feed()
			if s.dbg != nil && s.dbg.stepping {
				res, err = s.m.Step(ctx)
			} else {
				res, err = s.m.ContinueFrom(ctx, p)
			}
		case s.dbg != nil:
			res, err = s.dbg.stop(ctx, p)
		default:
			res, err = s.m.ContinueFrom(ctx, p)
		}
	}
	if err != nil {
		fmt.Fprintf(s.stderr, "error: %v\n", err)
		return 1
	}

	code := res.Exit
	if werr := s.writeCanvas(); werr != nil {
		fmt.Fprintf(s.stderr, "error: %v\n", werr)
		code = 1
	}
	switch {
	case errors.Is(res.Err, interp.ErrStopped):
		fmt.Fprintln(s.stderr, "program stopped")
		return 1
	case res.Err != nil:
		fmt.Fprint(s.stderr, diag.Render(s.src, s.name, res.Err))
		return 1
	}
	return code
}

// feed passes the next line of standard input to the program, or ends
// its input.
func (s *session) feed() {
	if s.stdin == nil {
		s.m.CloseInput()
		return
	}
	line, err := s.stdin.ReadString('\n')
	if line != "" {
		s.m.Feed(line)
	}
	if err != nil {
		s.m.CloseInput()
	}
}

// writeCanvas saves the drawing to the files the configuration names.
func (s *session) writeCanvas() error {
	for _, out := range []struct {
		path  string
		write func(io.Writer) error
	}{
		{s.run.Draw.SVG, s.libs.Canvas.WriteSVG},
		{s.run.Draw.PNG, s.libs.Canvas.WritePNG},
	} {
		if out.path == "" {
			continue
		}
		f, err := os.Create(out.path)
		if err != nil {
			return err
		}
		if err := out.write(f); err != nil {
			f.Close()
			return fmt.Errorf("%s: %w", out.path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
