// Package memory implements the byte-addressable memory of the emulated
// machine.
//
// Memory is a single address space [0, Size). Each byte is a cell; the
// first cell of a stored value holds the typed value and the following
// width-1 cells hold continuation markers naming it. Regions are address
// ranges, not separate stores:
//
//	[0, 4)               NULL guard
//	[4, DataEnd)         globals, statics and string literals
//	[DataEnd, HeapEnd)   heap, first-fit
//	[HeapEnd, Size)      stack, growing upward with call depth
package memory

import (
	"fmt"
	"sort"

	"github.com/derrell/LearnCS-sub002/internal/rtabi"
	"github.com/derrell/LearnCS-sub002/internal/types"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

// Region names an address range.
type Region int

const (
	Null Region = iota
	Data
	Heap
	Stack
)

var regionNames = [...]string{
	Null:  "null",
	Data:  "data",
	Heap:  "heap",
	Stack: "stack",
}

func (r Region) String() string {
	if int(r) < len(regionNames) {
		return regionNames[r]
	}
	return fmt.Sprintf("Region(%d)", r)
}

// Config sets the size of the address space and its regions, in bytes.
type Config struct {
	Size     int
	DataSize int
	HeapSize int
}

// DefaultConfig returns the default 64 KiB layout.
func DefaultConfig() Config {
	return Config{
		Size:     rtabi.MemorySize,
		DataSize: rtabi.DataSize,
		HeapSize: rtabi.HeapSize,
	}
}

// Validate checks that the regions fit in the address space.
func (c Config) Validate() error {
	switch {
	case c.DataSize < rtabi.NullGuard:
		return fmt.Errorf("data size %d is smaller than the %d-byte null guard", c.DataSize, rtabi.NullGuard)
	case c.HeapSize < 0:
		return fmt.Errorf("heap size %d is negative", c.HeapSize)
	case c.DataSize+c.HeapSize >= c.Size:
		return fmt.Errorf("data (%d) and heap (%d) leave no room for a stack in %d bytes", c.DataSize, c.HeapSize, c.Size)
	}
	return nil
}

// Span is the extent of one region.
type Span struct {
	Region Region
	Start  int
	End    int // exclusive
}

// block is an allocated heap block.
type block struct {
	addr int
	size int
}

// Memory is the machine's address space.
type Memory struct {
	cells []value.Value

	dataEnd int
	heapEnd int

	dataTop  int     // next free data byte
	stackTop int     // next free stack byte
	blocks   []block // live heap blocks sorted by address
}

// New creates a zero-filled memory with the given layout.
func New(conf Config) (*Memory, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	m := &Memory{
		cells:   make([]value.Value, conf.Size),
		dataEnd: conf.DataSize,
		heapEnd: conf.DataSize + conf.HeapSize,
	}
	m.dataTop = rtabi.NullGuard
	m.stackTop = m.heapEnd
	return m, nil
}

// Size returns the size of the address space.
func (m *Memory) Size() int {
	return len(m.cells)
}

// Regions returns the region boundaries.
func (m *Memory) Regions() []Span {
	return []Span{
		{Null, 0, rtabi.NullGuard},
		{Data, rtabi.NullGuard, m.dataEnd},
		{Heap, m.dataEnd, m.heapEnd},
		{Stack, m.heapEnd, len(m.cells)},
	}
}

// RegionOf returns the region containing addr.
func (m *Memory) RegionOf(addr int) Region {
	switch {
	case addr < rtabi.NullGuard:
		return Null
	case addr < m.dataEnd:
		return Data
	case addr < m.heapEnd:
		return Heap
	}
	return Stack
}

// StackTop returns the first free stack address. It is the mark passed
// to Release to pop a frame.
func (m *Memory) StackTop() int {
	return m.stackTop
}

// DataTop returns the first unallocated data address.
func (m *Memory) DataTop() int {
	return m.dataTop
}

// Cell returns the raw cell at addr for inspection. Unwritten cells are
// invalid values.
func (m *Memory) Cell(addr int) (value.Value, bool) {
	if addr < 0 || addr >= len(m.cells) {
		return value.Value{}, false
	}
	return m.cells[addr], true
}

// check validates that [addr, addr+n) is live memory.
func (m *Memory) check(op string, addr, n int) error {
	if n <= 0 {
		n = 1
	}
	if addr < 0 || addr+n > len(m.cells) {
		return accessErr(op, addr, ErrOutOfRange)
	}
	if addr < rtabi.NullGuard {
		return accessErr(op, addr, ErrNull)
	}
	end := addr + n
	switch m.RegionOf(addr) {
	case Data:
		if end > m.dataTop {
			return accessErr(op, max(addr, m.dataTop), ErrStale)
		}
	case Heap:
		b, ok := m.blockAt(addr)
		if !ok || end > b.addr+b.size {
			return accessErr(op, addr, ErrStale)
		}
	case Stack:
		if end > m.stackTop {
			return accessErr(op, max(addr, m.stackTop), ErrStale)
		}
	}
	return nil
}

// Read returns the value of type t stored at addr.
//
// At the first cell of a value, a read of the same width returns that
// value retyped to t in place; any other width gathers the byte image.
// At a continuation cell, only a read with the owner's exact type is
// valid, and it returns the owner's value.
func (m *Memory) Read(addr int, t types.Type) (value.Value, error) {
	if err := types.DefaultSizes.Check(t); err != nil {
		return value.Value{}, accessErr("read", addr, fmt.Errorf("%w: %v", ErrTypeMismatch, err))
	}
	w := int(types.ByteWidth(t))
	if err := m.check("read", addr, 1); err != nil {
		return value.Value{}, err
	}

	c := m.cells[addr]
	if c.IsCont() {
		owner := m.cells[c.Owner()]
		if !types.Identical(owner.Type(), t) {
			return value.Value{}, accessErr("read", addr,
				fmt.Errorf("%w: reading %s inside %s stored at 0x%04x", ErrTypeMismatch, t, owner.Type(), c.Owner()))
		}
		// The read yields the owner, so the owner's span must be live.
		if err := m.check("read", c.Owner(), w); err != nil {
			return value.Value{}, err
		}
		return owner, nil
	}
	if err := m.check("read", addr, w); err != nil {
		return value.Value{}, err
	}
	if c.IsValid() && c.Width() == w && types.Identical(c.Type(), t) {
		return c, nil
	}
	return value.FromBytes(t, m.ToByteArray(addr, w)), nil
}

// Write stores v as type t at addr.
//
// A write contained in an existing value's span that does not replace
// it exactly is spliced into the owner's byte image and the owner keeps
// its type. A value whose span the write straddles has its surviving
// bytes demoted to unsigned char cells.
func (m *Memory) Write(addr int, t types.Type, v value.Value) error {
	if !types.Identical(v.Type(), t) {
		cv, err := value.Convert(v, t)
		if err != nil {
			return accessErr("write", addr, fmt.Errorf("%w: %v", ErrTypeMismatch, err))
		}
		v = cv
	}
	if !value.IsScalar(v) {
		return accessErr("write", addr, fmt.Errorf("%w: %s is not a scalar", ErrTypeMismatch, t))
	}
	w := v.Width()
	if err := m.check("write", addr, w); err != nil {
		return err
	}

	if o, ok := m.ownerOf(addr); ok {
		owner := m.cells[o]
		ow := owner.Width()
		exact := o == addr && ow == w
		if !exact && addr+w <= o+ow {
			img := owner.Bytes()
			copy(img[addr-o:], v.Bytes())
			m.cells[o] = value.FromBytes(owner.Type(), img)
			return nil
		}
	}

	m.isolate(addr, w)
	m.store(addr, v)
	return nil
}

// store writes v and its continuation cells without any checks.
func (m *Memory) store(addr int, v value.Value) {
	m.cells[addr] = v
	for i := 1; i < v.Width(); i++ {
		m.cells[addr+i] = value.Cont(addr)
	}
}

// ownerOf returns the address of the value whose span covers addr.
func (m *Memory) ownerOf(addr int) (int, bool) {
	c := m.cells[addr]
	switch {
	case c.IsCont():
		return c.Owner(), true
	case c.IsValid():
		return addr, true
	}
	return 0, false
}

// isolate demotes every value crossing the boundaries of [addr, addr+n)
// so that the range can be overwritten without leaving dangling
// continuation cells on either side.
func (m *Memory) isolate(addr, n int) {
	if o, ok := m.ownerOf(addr); ok && o < addr {
		m.demote(o)
	}
	last := addr + n - 1
	if o, ok := m.ownerOf(last); ok && o+m.cells[o].Width() > addr+n {
		m.demote(o)
	}
}

// demote replaces the value at o with one unsigned char cell per byte.
func (m *Memory) demote(o int) {
	img := m.cells[o].Bytes()
	uchar := types.Typ[types.UChar]
	for i, b := range img {
		m.cells[o+i] = value.Uint(uchar, uint64(b))
	}
}

// byteAt returns the byte stored at addr. Unwritten cells read as zero.
func (m *Memory) byteAt(addr int) byte {
	c := m.cells[addr]
	switch {
	case c.IsCont():
		o := c.Owner()
		return m.cells[o].Bytes()[addr-o]
	case value.IsScalar(c):
		return c.Bytes()[0]
	}
	return 0
}

// ToByteArray returns the byte image of [from, from+n), clipped to the
// address space. It performs no liveness checks.
func (m *Memory) ToByteArray(from, n int) []byte {
	if from < 0 {
		n += from
		from = 0
	}
	if from+n > len(m.cells) {
		n = len(m.cells) - from
	}
	if n <= 0 {
		return nil
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = m.byteAt(from + i)
	}
	return out
}

// Copy copies n bytes from src to dst, preserving typed cells. Values
// only partly inside the source range are copied as bytes.
func (m *Memory) Copy(dst, src, n int) error {
	if n <= 0 {
		return nil
	}
	if err := m.check("copy", src, n); err != nil {
		return err
	}
	if err := m.check("copy", dst, n); err != nil {
		return err
	}

	uchar := types.Typ[types.UChar]
	tmp := make([]value.Value, n)
	for i := 0; i < n; i++ {
		c := m.cells[src+i]
		switch {
		case c.IsCont() && c.Owner() < src:
			tmp[i] = value.Uint(uchar, uint64(m.byteAt(src+i)))
		case c.IsCont():
			tmp[i] = value.Cont(c.Owner() - src + dst)
		case c.IsValid() && c.Width() > n-i:
			for j, b := range c.Bytes()[:n-i] {
				tmp[i+j] = value.Uint(uchar, uint64(b))
			}
			i = n
		default:
			tmp[i] = c
		}
	}

	m.isolate(dst, n)
	copy(m.cells[dst:dst+n], tmp)
	return nil
}

// Fill sets n bytes at addr to b, as memset does.
func (m *Memory) Fill(addr, n int, b byte) error {
	if n <= 0 {
		return nil
	}
	if err := m.check("write", addr, n); err != nil {
		return err
	}
	m.isolate(addr, n)
	v := value.Uint(types.Typ[types.UChar], uint64(b))
	for i := 0; i < n; i++ {
		m.cells[addr+i] = v
	}
	return nil
}

// Allocate reserves size bytes aligned to align in the given region and
// returns the address of the first byte. Data and stack allocation bump
// a pointer; heap allocation is first-fit. New memory reads as zero.
func (m *Memory) Allocate(r Region, size, align int) (int, error) {
	if size < 0 {
		return 0, accessErr("alloc", 0, fmt.Errorf("negative size %d", size))
	}
	if align < 1 {
		align = 1
	}
	switch r {
	case Data:
		addr := int(types.Align(int64(m.dataTop), int64(align)))
		if addr+size > m.dataEnd {
			return 0, accessErr("alloc", addr, fmt.Errorf("%w: data region full", ErrExhausted))
		}
		m.clear(m.dataTop, addr+size)
		m.dataTop = addr + size
		return addr, nil

	case Stack:
		addr := int(types.Align(int64(m.stackTop), int64(align)))
		if addr+size > len(m.cells) {
			return 0, accessErr("alloc", addr, fmt.Errorf("%w: stack overflow", ErrExhausted))
		}
		m.clear(m.stackTop, addr+size)
		m.stackTop = addr + size
		return addr, nil

	case Heap:
		return m.heapAlloc(size, max(align, rtabi.AlignDouble))
	}
	return 0, accessErr("alloc", 0, fmt.Errorf("cannot allocate in %s region", r))
}

// Release frees memory. For the stack, extent is a mark previously
// returned by StackTop and everything above it is popped. For the heap,
// extent is the start address of a block returned by Allocate.
func (m *Memory) Release(r Region, extent int) error {
	switch r {
	case Stack:
		if extent < m.heapEnd || extent > m.stackTop {
			return accessErr("free", extent, fmt.Errorf("%w: stack mark outside the live stack", ErrInvalidFree))
		}
		m.clear(extent, m.stackTop)
		m.stackTop = extent
		return nil

	case Heap:
		i := sort.Search(len(m.blocks), func(i int) bool { return m.blocks[i].addr >= extent })
		if i == len(m.blocks) || m.blocks[i].addr != extent {
			return accessErr("free", extent, fmt.Errorf("%w: not the start of an allocated block", ErrInvalidFree))
		}
		b := m.blocks[i]
		m.clear(b.addr, b.addr+b.size)
		m.blocks = append(m.blocks[:i], m.blocks[i+1:]...)
		return nil
	}
	return accessErr("free", extent, fmt.Errorf("%w: cannot release %s memory", ErrInvalidFree, r))
}

// BlockSize returns the size of the heap block starting at addr.
func (m *Memory) BlockSize(addr int) (int, bool) {
	b, ok := m.blockAt(addr)
	if !ok || b.addr != addr {
		return 0, false
	}
	return b.size, true
}

func (m *Memory) heapAlloc(size, align int) (int, error) {
	if size == 0 {
		size = 1
	}
	prev := m.dataEnd
	for i := 0; i <= len(m.blocks); i++ {
		limit := m.heapEnd
		if i < len(m.blocks) {
			limit = m.blocks[i].addr
		}
		addr := int(types.Align(int64(prev), int64(align)))
		if addr+size <= limit {
			m.blocks = append(m.blocks, block{})
			copy(m.blocks[i+1:], m.blocks[i:])
			m.blocks[i] = block{addr: addr, size: size}
			m.clear(addr, addr+size)
			return addr, nil
		}
		if i < len(m.blocks) {
			prev = m.blocks[i].addr + m.blocks[i].size
		}
	}
	return 0, accessErr("alloc", m.dataEnd, fmt.Errorf("%w: no free heap block of %d bytes", ErrExhausted, size))
}

// blockAt returns the live heap block containing addr.
func (m *Memory) blockAt(addr int) (block, bool) {
	i := sort.Search(len(m.blocks), func(i int) bool {
		return m.blocks[i].addr+m.blocks[i].size > addr
	})
	if i < len(m.blocks) && m.blocks[i].addr <= addr {
		return m.blocks[i], true
	}
	return block{}, false
}

// clear resets cells in [from, to) to the unwritten state.
func (m *Memory) clear(from, to int) {
	clear(m.cells[from:to])
}
