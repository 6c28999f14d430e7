// Package diag collects parse errors and renders errors that carry a
// source position as a snippet with a caret under the offending column.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/derrell/LearnCS-sub002/internal/syntax"
)

// Positioned is implemented by errors that know where they occurred.
type Positioned interface {
	error
	Position() syntax.Pos
}

// Errors accumulates the errors reported to its Handler.
type Errors struct {
	list []*syntax.SyntaxError
}

// Handler records a syntax error. It has the signature of
// syntax.ErrorHandler.
func (e *Errors) Handler(pos syntax.Pos, msg string) {
	e.list = append(e.list, &syntax.SyntaxError{Pos: pos, Msg: msg})
}

// Count returns the number of errors recorded.
func (e *Errors) Count() int { return len(e.list) }

// List returns the recorded errors in order.
func (e *Errors) List() []*syntax.SyntaxError { return e.list }

// Last returns the most recent error, or nil.
func (e *Errors) Last() *syntax.SyntaxError {
	if len(e.list) == 0 {
		return nil
	}
	return e.list[len(e.list)-1]
}

// Err returns the first error, or nil if none was recorded.
func (e *Errors) Err() error {
	if len(e.list) == 0 {
		return nil
	}
	return e.list[0]
}

// Render formats err for display. A positioned error is shown as
//
//	name:line:col: message
//	   3 | 	x = y;
//	     | 	    ^
//
// using the line from src. Other errors are returned as their message.
func Render(src []byte, name string, err error) string {
	var p Positioned
	if !errors.As(err, &p) || !p.Position().IsValid() {
		return err.Error() + "\n"
	}
	pos := p.Position()
	if name == "" {
		name = pos.Filename()
	}
	msg := strings.TrimPrefix(p.Error(), pos.String()+": ")

	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d: %s\n", name, pos.Line(), pos.Col(), msg)
	text, ok := sourceLine(src, int(pos.Line()))
	if !ok {
		return b.String()
	}
	gutter := fmt.Sprintf("%4d | ", pos.Line())
	b.WriteString(gutter)
	b.WriteString(text)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", len(gutter)-2) + "| ")
	b.WriteString(caretIndent(text, int(pos.Col())))
	b.WriteString("^\n")
	return b.String()
}

// sourceLine returns line n (1-based) of src without its terminator.
func sourceLine(src []byte, n int) (string, bool) {
	lines := strings.Split(string(src), "\n")
	if n < 1 || n > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[n-1], "\r"), true
}

// caretIndent returns the blanks that place a caret under character
// column col of text. Tabs are kept so the caret lines up however the
// terminal expands them.
func caretIndent(text string, col int) string {
	var b strings.Builder
	n := 1
	for _, r := range text {
		if n >= col {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
		n++
	}
	return b.String()
}
