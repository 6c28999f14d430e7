// Package interp executes a parsed C program on the emulated machine.
//
// New resolves every declaration of the translation unit against a
// symbol table, lays out static data and initializes it. The returned
// Machine runs main as a coroutine: Run, Step and ContinueFrom drive it
// until it finishes or suspends at a statement boundary for a
// breakpoint, a single step, or a read from empty input.
package interp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/derrell/LearnCS-sub002/internal/memory"
	"github.com/derrell/LearnCS-sub002/internal/rtabi"
	"github.com/derrell/LearnCS-sub002/internal/symtab"
	"github.com/derrell/LearnCS-sub002/internal/syntax"
	"github.com/derrell/LearnCS-sub002/internal/types"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

// Config specifies how a program is loaded and run.
type Config struct {
	// Memory sets the geometry of the address space.
	// The zero value selects memory.DefaultConfig.
	Memory memory.Config

	// Registry provides the headers a program may include.
	// If nil, no header is available.
	Registry *Registry

	// Stdout receives program output. If nil, output is discarded.
	Stdout io.Writer

	// Logger receives debug records about frames, headers and
	// suspensions. If nil, nothing is logged.
	Logger *slog.Logger

	// MaxSteps bounds the number of statements a run may execute.
	// Zero means no limit.
	MaxSteps int
}

// Reason tells why the machine suspended.
type Reason int

const (
	Breakpoint Reason = iota + 1 // arrived at a line with a breakpoint
	Step                         // single stepping
	Input                        // waiting for the host to feed input
)

var reasonNames = [...]string{
	Breakpoint: "breakpoint",
	Step:       "step",
	Input:      "input",
}

func (r Reason) String() string {
	if r > 0 && int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Pause describes a suspension. It is the token passed to ContinueFrom.
type Pause struct {
	seq    int
	Reason Reason
	Line   int
	Node   *syntax.Node // statement about to execute, or the reading call
}

// Result is returned by the driving calls. Exactly one of Pause and
// Done is set.
type Result struct {
	Pause *Pause
	Exit  int   // exit status, valid when Done
	Err   error // error that ended the run, valid when Done
	Done  bool
}

type state int

const (
	idle      state = iota // not started
	running                // evaluator goroutine active
	suspended              // evaluator parked at a pause
	finished
)

// event is passed from the evaluator to the driving host.
type event struct {
	pause  *Pause
	result Result
}

// Machine is a loaded program.
type Machine struct {
	conf   Config
	log    *slog.Logger
	stdout io.Writer

	file   *syntax.Node
	mem    *memory.Memory
	sizes  *types.Sizes
	root   *symtab.Scope
	static *symtab.Layout

	// Load-time resolution, keyed by node.
	refs     map[*syntax.Node]*symtab.Entry // identifiers and declarators
	funcs    map[*symtab.Entry]*function
	consts   map[*syntax.Node]value.Value // literals and sizeof
	typeOf   map[*syntax.Node]types.Type  // type names and conditional results
	strs     map[*syntax.Node]int         // string literal addresses
	scopes   map[*syntax.Node]*symtab.Scope
	switches map[*syntax.Node]*switchInfo
	readonly map[*symtab.Entry]bool
	strOrder []*syntax.Node
	inits    []staticInit
	loading  bool

	frames []*Frame
	steps  int
	line   int // line of the last checkpoint

	// Execution control. The host and the evaluator never run at the
	// same time; mu guards what the host may touch from other goroutines.
	mu          sync.Mutex
	state       state
	breakpoints map[int]bool
	stepping    bool
	stopReq     atomic.Bool
	pause       *Pause
	seq         int
	result      Result
	resume      chan struct{}
	yield       chan event

	in input
}

// input is the program's pending standard input.
type input struct {
	mu     sync.Mutex
	buf    []byte
	closed bool
}

// function is a function defined in the program.
type function struct {
	entry  *symtab.Entry
	node   *syntax.Node // FuncDef
	sig    *types.Func
	params []*symtab.Entry
	layout *symtab.Layout
	scope  *symtab.Scope
}

// Frame is the activation of one function call.
type Frame struct {
	Func  *symtab.Entry
	Scope *symtab.Scope
	Base  int          // address of offset 0 of the frame layout
	Call  *syntax.Node // call expression, nil for main

	fn      *function
	ret     value.Value
	retSlot int // caller-allocated storage for a struct result
	line    int // line of the statement executing in this frame
}

// staticInit is a static object with an initializer, run at load.
type staticInit struct {
	entry *symtab.Entry
	init  *syntax.Node
}

// New loads file. Declaration errors are returned as *RuntimeError with
// phase Decl, before any statement executes.
func New(file *syntax.Node, conf Config) (*Machine, error) {
	if conf.Memory == (memory.Config{}) {
		conf.Memory = memory.DefaultConfig()
	}
	if conf.Registry == nil {
		conf.Registry = NewRegistry()
	}
	mem, err := memory.New(conf.Memory)
	if err != nil {
		return nil, fmt.Errorf("memory: %w", err)
	}

	m := &Machine{
		conf:        conf,
		log:         conf.Logger,
		stdout:      conf.Stdout,
		file:        file,
		mem:         mem,
		sizes:       types.DefaultSizes,
		refs:        make(map[*syntax.Node]*symtab.Entry),
		funcs:       make(map[*symtab.Entry]*function),
		consts:      make(map[*syntax.Node]value.Value),
		typeOf:      make(map[*syntax.Node]types.Type),
		strs:        make(map[*syntax.Node]int),
		scopes:      make(map[*syntax.Node]*symtab.Scope),
		switches:    make(map[*syntax.Node]*switchInfo),
		readonly:    make(map[*symtab.Entry]bool),
		breakpoints: make(map[int]bool),
		resume:      make(chan struct{}),
		yield:       make(chan event),
	}
	if m.log == nil {
		m.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if m.stdout == nil {
		m.stdout = io.Discard
	}
	m.static = symtab.NewStaticLayout(staticBase)
	m.root = symtab.NewScope(nil, m.static, "file")

	if err := m.loadProgram(); err != nil {
		return nil, err
	}
	return m, nil
}

// staticBase is the address of the first global. The data region starts
// after the null guard; globals start at the first address aligned for
// any scalar.
const staticBase = rtabi.AlignDouble

// loadProgram resolves the program, allocates static data and runs
// static initializers.
func (m *Machine) loadProgram() error {
	m.loading = true
	defer func() { m.loading = false }()

	r := newResolver(m)
	r.file(m.file)
	if r.first != nil {
		return r.first
	}

	if m.static.Size > 0 {
		addr, err := m.mem.Allocate(memory.Data, int(m.static.Size), int(max(m.static.Align, rtabi.AlignDouble)))
		if err != nil {
			return newError(Decl, m.file, err, "global variables do not fit in the data region")
		}
		if addr != m.static.Base {
			panic(fmt.Sprintf("interp: globals placed at 0x%04x, want 0x%04x", addr, m.static.Base))
		}
	}
	for _, n := range m.strOrder {
		s := n.Value
		addr, err := m.mem.Allocate(memory.Data, len(s)+1, 1)
		if err != nil {
			return newError(Decl, n, err, "string literals do not fit in the data region")
		}
		if err := m.writeCString(addr, s); err != nil {
			return newError(Decl, n, err, err.Error())
		}
		m.strs[n] = addr
	}

	for _, si := range m.inits {
		if err := m.initialize(si.entry.Addr, si.entry.Type, si.init); err != nil {
			var rt *RuntimeError
			if errors.As(err, &rt) {
				rt.Phase = Decl
				return rt
			}
			return newError(Decl, si.init, err, describe(err))
		}
	}

	m.log.Debug("program loaded",
		slog.Int("static-bytes", int(m.static.Size)),
		slog.Int("strings", len(m.strOrder)),
		slog.Int("functions", len(m.funcs)))
	return nil
}

// Memory returns the machine memory for inspection.
func (m *Machine) Memory() *memory.Memory { return m.mem }

// Scope returns the file scope.
func (m *Machine) Scope() *symtab.Scope { return m.root }

// StaticLayout returns the layout of global and static objects.
func (m *Machine) StaticLayout() *symtab.Layout { return m.static }

// ----------------------------------------------------------------------------
// Execution control

// Run starts the program and runs it until it finishes or suspends.
func (m *Machine) Run(ctx context.Context) (Result, error) {
	m.mu.Lock()
	switch m.state {
	case finished:
		m.mu.Unlock()
		return m.result, nil
	case idle:
	default:
		m.mu.Unlock()
		return Result{}, fmt.Errorf("interp: program is already running; use ContinueFrom")
	}
	m.stepping = false
	m.state = running
	m.mu.Unlock()

	go m.main()
	return m.wait(ctx), nil
}

// Step executes one statement and suspends before the next. On a
// machine that has not started, it suspends before the first statement
// of main.
func (m *Machine) Step(ctx context.Context) (Result, error) {
	m.mu.Lock()
	switch m.state {
	case finished:
		m.mu.Unlock()
		return m.result, nil
	case running:
		m.mu.Unlock()
		return Result{}, fmt.Errorf("interp: program is running")
	}
	start := m.state == idle
	m.stepping = true
	m.state = running
	m.pause = nil
	m.mu.Unlock()

	if start {
		go m.main()
	} else {
		m.resume <- struct{}{}
	}
	return m.wait(ctx), nil
}

// ContinueFrom resumes the machine from pause p and runs until the next
// suspension or the end of the program.
func (m *Machine) ContinueFrom(ctx context.Context, p *Pause) (Result, error) {
	m.mu.Lock()
	if m.state == finished {
		m.mu.Unlock()
		return m.result, nil
	}
	if m.state != suspended || p == nil || m.pause == nil || p.seq != m.pause.seq {
		m.mu.Unlock()
		return Result{}, ErrStalePause
	}
	m.stepping = false
	m.state = running
	m.pause = nil
	m.mu.Unlock()

	m.resume <- struct{}{}
	return m.wait(ctx), nil
}

// wait blocks until the evaluator yields. Cancelling ctx requests a stop.
func (m *Machine) wait(ctx context.Context) Result {
	var ev event
	select {
	case ev = <-m.yield:
	case <-ctx.Done():
		m.stopReq.Store(true)
		ev = <-m.yield
	}
	return m.settle(ev)
}

// settle records the outcome of a yield.
func (m *Machine) settle(ev event) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev.pause != nil {
		m.state = suspended
		m.pause = ev.pause
		m.log.Debug("suspended",
			slog.String("reason", ev.pause.Reason.String()),
			slog.Int("line", ev.pause.Line))
		return Result{Pause: ev.pause}
	}
	m.state = finished
	m.result = ev.result
	m.log.Debug("finished", slog.Int("exit", ev.result.Exit), slog.Any("error", ev.result.Err))
	return ev.result
}

// Stop requests the program to end at the next statement boundary. A
// suspended program is resumed so that it can end.
func (m *Machine) Stop() {
	m.stopReq.Store(true)
	m.mu.Lock()
	switch m.state {
	case idle:
		m.state = finished
		m.result = Result{Done: true, Err: ErrStopped, Exit: 1}
		m.mu.Unlock()
		return
	case suspended:
		m.state = running
		m.pause = nil
		m.mu.Unlock()
		m.log.Debug("stop while suspended")
		m.resume <- struct{}{}
		m.settle(<-m.yield)
		return
	}
	m.mu.Unlock()
}

// Close ends the program unless it has already finished. A suspended
// machine keeps its evaluator goroutine parked until it is resumed,
// stopped or closed, so hosts that drop a machine early must close it.
func (m *Machine) Close() {
	if _, done := m.Finished(); !done {
		m.Stop()
	}
}

// Finished reports whether the program has ended and returns its result.
func (m *Machine) Finished() (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result, m.state == finished
}

// SetBreakpoint sets a breakpoint on a source line.
func (m *Machine) SetBreakpoint(line int) {
	m.mu.Lock()
	m.breakpoints[line] = true
	m.mu.Unlock()
}

// ClearBreakpoint removes the breakpoint on line.
func (m *Machine) ClearBreakpoint(line int) {
	m.mu.Lock()
	delete(m.breakpoints, line)
	m.mu.Unlock()
}

// Breakpoints returns the lines with breakpoints in ascending order.
func (m *Machine) Breakpoints() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := make([]int, 0, len(m.breakpoints))
	for line := range m.breakpoints {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	return lines
}

// Feed appends data to the program's standard input.
func (m *Machine) Feed(data string) {
	m.in.mu.Lock()
	m.in.buf = append(m.in.buf, data...)
	m.in.mu.Unlock()
}

// CloseInput marks the end of the program's standard input.
func (m *Machine) CloseInput() {
	m.in.mu.Lock()
	m.in.closed = true
	m.in.mu.Unlock()
}

// ----------------------------------------------------------------------------
// Evaluator side

// main is the evaluator goroutine.
func (m *Machine) main() {
	code, err := m.runMain()
	res := Result{Done: true, Exit: code, Err: err}
	if err != nil {
		var exit exitStatus
		if errors.As(err, &exit) {
			res = Result{Done: true, Exit: int(exit)}
		} else if res.Exit == 0 {
			res.Exit = 1
		}
	}
	m.yield <- event{result: res}
}

// runMain calls main and returns its exit status.
func (m *Machine) runMain() (int, error) {
	e, ok := m.root.Lookup(rtabi.EntryPoint)
	if !ok || e.Kind != symtab.Function || m.funcs[e] == nil {
		return 1, newError(Decl, m.file, nil, "undefined reference to 'main'")
	}
	fn := m.funcs[e]
	if fn.sig.NumParams() != 0 {
		return 1, newError(Decl, fn.node, nil, "main must not take parameters")
	}
	v, err := m.invoke(fn, nil, nil)
	if err != nil {
		return 1, err
	}
	if !types.IsIntegral(v.Type()) {
		return 0, nil
	}
	return int(int32(v.Int64())), nil
}

// checkpoint runs before every statement. It ends the run on a stop
// request or exceeded budget and suspends for breakpoints and stepping.
func (m *Machine) checkpoint(n *syntax.Node) error {
	if m.stopReq.Load() {
		return newError(Run, n, ErrStopped, "execution stopped")
	}
	m.steps++
	if limit := m.conf.MaxSteps; limit > 0 && m.steps > limit {
		return newError(Run, n, ErrStepLimit, fmt.Sprintf("statement limit of %d exceeded", limit))
	}

	line := n.Line()
	arrived := line != m.line
	m.line = line
	if f := m.top(); f != nil {
		f.line = line
	}

	m.mu.Lock()
	var reason Reason
	switch {
	case arrived && m.breakpoints[line]:
		reason = Breakpoint
	case m.stepping:
		reason = Step
	}
	m.mu.Unlock()

	if reason == 0 {
		return nil
	}
	return m.suspend(reason, n)
}

// suspend parks the evaluator until the host resumes it.
func (m *Machine) suspend(reason Reason, n *syntax.Node) error {
	m.seq++
	m.yield <- event{pause: &Pause{seq: m.seq, Reason: reason, Line: n.Line(), Node: n}}
	<-m.resume
	if m.stopReq.Load() {
		return newError(Run, n, ErrStopped, "execution stopped")
	}
	return nil
}

// readInput returns the next input byte, suspending while none is
// buffered and input is open.
func (m *Machine) readInput(n *syntax.Node, peek bool) (int, error) {
	for {
		m.in.mu.Lock()
		if len(m.in.buf) > 0 {
			b := m.in.buf[0]
			if !peek {
				m.in.buf = m.in.buf[1:]
			}
			m.in.mu.Unlock()
			return int(b), nil
		}
		closed := m.in.closed
		m.in.mu.Unlock()

		if closed {
			return rtabi.EOF, nil
		}
		if m.stopReq.Load() {
			return 0, newError(Run, n, ErrStopped, "execution stopped")
		}
		if err := m.suspend(Input, n); err != nil {
			return 0, err
		}
	}
}

func (m *Machine) top() *Frame {
	if len(m.frames) == 0 {
		return nil
	}
	return m.frames[len(m.frames)-1]
}

// Backtrace describes the active frames, innermost first.
func (m *Machine) Backtrace() []string {
	var out []string
	for i := len(m.frames) - 1; i >= 0; i-- {
		f := m.frames[i]
		out = append(out, fmt.Sprintf("#%d %s at line %d (frame 0x%04x)", len(m.frames)-1-i, f.Func.Name, f.line, f.Base))
	}
	return out
}
