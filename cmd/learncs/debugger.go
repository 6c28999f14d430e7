package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/derrell/LearnCS-sub002/internal/interp"
)

const debugHelp = `commands:
  s, step          run one statement
  c, continue      run to the next breakpoint
  b, break [N]     set a breakpoint on line N, or list breakpoints
  d, delete N      remove the breakpoint on line N
  p, print NAME    show a variable
  x ADDR [N]       dump N bytes of memory at ADDR (default 16)
  bt               show the call stack
  l, list          show the source around the current line
  q, quit          stop the program
`

// debugger is the prompt shown when the program stops at a breakpoint or
// after a step.
type debugger struct {
	m        *interp.Machine
	lines    []string
	out      io.Writer
	readLine func(prompt string) (string, error)
	width    int // terminal columns, for memory dumps
	last     string
	stepping bool // the last resume was a step
}

// newTerminalDebugger prompts on the terminal with line editing when
// standard input is one, and reads plain lines otherwise.
func newTerminalDebugger(s *session) *debugger {
	d := newDebugger(s, os.Stdout, nil)
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		d.width = w
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		// One line editor per prompt, so the terminal is back in cooked
		// mode while the program reads its own input.
		var history []string
		d.readLine = func(prompt string) (string, error) {
			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)
			for _, h := range history {
				ln.AppendHistory(h)
			}
			line, err := ln.Prompt(prompt)
			if errors.Is(err, liner.ErrPromptAborted) {
				return "", io.EOF
			}
			if err == nil && strings.TrimSpace(line) != "" {
				history = append(history, line)
			}
			return line, err
		}
		return d
	}
	in := s.stdin
	if in == nil {
		in = bufio.NewReader(os.Stdin)
	}
	d.readLine = plainPrompt(in, os.Stdout)
	return d
}

// newDebugger returns a debugger for s that writes to out. A nil
// readLine must be set by the caller.
func newDebugger(s *session, out io.Writer, readLine func(string) (string, error)) *debugger {
	return &debugger{
		m:        s.m,
		lines:    strings.Split(string(s.src), "\n"),
		out:      out,
		readLine: readLine,
		width:    80,
	}
}

// plainPrompt reads commands from r, echoing the prompt to w.
func plainPrompt(r *bufio.Reader, w io.Writer) func(string) (string, error) {
	return func(prompt string) (string, error) {
		fmt.Fprint(w, prompt)
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}

// stop runs commands until one resumes the program, and returns the
// machine's next result.
func (d *debugger) stop(ctx context.Context, p *interp.Pause) (interp.Result, error) {
	if p.Reason == interp.Breakpoint {
		fmt.Fprintf(d.out, "breakpoint at line %d\n", p.Line)
	}
	d.show(p.Line)
	for {
		line, err := d.readLine("(learncs) ")
		if err != nil {
			return d.quit()
		}
		line = strings.TrimSpace(line)
		if line == "" {
			line = d.last
		}
		d.last = line
		f := strings.Fields(line)
		if len(f) == 0 {
			continue
		}

		switch f[0] {
		case "s", "step":
			d.stepping = true
			return d.m.Step(ctx)
		case "c", "continue":
			d.stepping = false
			return d.m.ContinueFrom(ctx, p)
		case "q", "quit":
			return d.quit()
		case "b", "break":
			if len(f) == 1 {
				fmt.Fprintf(d.out, "breakpoints: %v\n", d.m.Breakpoints())
				continue
			}
			if n, ok := d.lineArg(f[1]); ok {
				d.m.SetBreakpoint(n)
				fmt.Fprintf(d.out, "breakpoint set at line %d\n", n)
			}
		case "d", "delete":
			if len(f) < 2 {
				fmt.Fprintln(d.out, "usage: d N")
				continue
			}
			if n, ok := d.lineArg(f[1]); ok {
				d.m.ClearBreakpoint(n)
				fmt.Fprintf(d.out, "breakpoint on line %d removed\n", n)
			}
		case "p", "print":
			if len(f) < 2 {
				fmt.Fprintln(d.out, "usage: p NAME")
				continue
			}
			s, err := d.m.Inspect(f[1])
			if err != nil {
				fmt.Fprintf(d.out, "%v\n", err)
				continue
			}
			fmt.Fprintln(d.out, s)
		case "x":
			d.examine(f[1:])
		case "bt":
			for _, fr := range d.m.Backtrace() {
				fmt.Fprintln(d.out, fr)
			}
		case "l", "list":
			for n := p.Line - 3; n <= p.Line+3; n++ {
				d.show(n)
			}
		case "h", "help", "?":
			fmt.Fprint(d.out, debugHelp)
		default:
			fmt.Fprintf(d.out, "unknown command %q; type h for help\n", f[0])
		}
	}
}

func (d *debugger) quit() (interp.Result, error) {
	d.m.Stop()
	res, _ := d.m.Finished()
	return res, nil
}

func (d *debugger) lineArg(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		fmt.Fprintf(d.out, "invalid line %q\n", s)
		return 0, false
	}
	return n, true
}

// show prints source line n.
func (d *debugger) show(n int) {
	if n < 1 || n > len(d.lines) {
		return
	}
	fmt.Fprintf(d.out, "%4d\t%s\n", n, d.lines[n-1])
}

// examine dumps memory as hex and ASCII, fitting rows to the terminal.
func (d *debugger) examine(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(d.out, "usage: x ADDR [N]")
		return
	}
	addr, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil || addr < 0 {
		fmt.Fprintf(d.out, "invalid address %q\n", args[0])
		return
	}
	n := int64(16)
	if len(args) > 1 {
		if n, err = strconv.ParseInt(args[1], 0, 64); err != nil || n <= 0 {
			fmt.Fprintf(d.out, "invalid count %q\n", args[1])
			return
		}
	}
	data := d.m.Memory().ToByteArray(int(addr), int(n))
	if len(data) == 0 {
		fmt.Fprintf(d.out, "address 0x%04x is outside of memory\n", addr)
		return
	}
	fmt.Fprint(d.out, hexDump(int(addr), data, rowWidth(d.width)))
}

// rowWidth returns the bytes per dump row for a terminal of the given
// width: a power of two from 4 to 16. A row of k bytes needs 9 columns
// of address and 4 per byte.
func rowWidth(cols int) int {
	k := 16
	for k > 4 && 9+4*k > cols {
		k /= 2
	}
	return k
}

func hexDump(addr int, data []byte, row int) string {
	var b strings.Builder
	for i := 0; i < len(data); i += row {
		end := i + row
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprintf(&b, "0x%04x: ", addr+i)
		for j := i; j < i+row; j++ {
			if j < end {
				fmt.Fprintf(&b, "%02x ", data[j])
			} else {
				b.WriteString("   ")
			}
		}
		for _, c := range data[i:end] {
			if c < ' ' || c >= 0x7f {
				c = '.'
			}
			b.WriteByte(c)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
