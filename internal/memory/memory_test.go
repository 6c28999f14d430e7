package memory

import (
	"errors"
	"testing"

	"github.com/derrell/LearnCS-sub002/internal/types"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

var (
	tChar   = types.Typ[types.Char]
	tUChar  = types.Typ[types.UChar]
	tShort  = types.Typ[types.Short]
	tInt    = types.Typ[types.Int]
	tDouble = types.Typ[types.Double]
)

func newMemory(t *testing.T) *Memory {
	t.Helper()
	m, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func alloc(t *testing.T, m *Memory, r Region, size int) int {
	t.Helper()
	addr, err := m.Allocate(r, size, 4)
	if err != nil {
		t.Fatalf("Allocate(%s, %d): %v", r, size, err)
	}
	return addr
}

func TestWriteRead(t *testing.T) {
	m := newMemory(t)
	a := alloc(t, m, Data, 16)

	if err := m.Write(a, tInt, value.Int(tInt, -42)); err != nil {
		t.Fatal(err)
	}
	got, err := m.Read(a, tInt)
	if err != nil {
		t.Fatal(err)
	}
	if got.Int64() != -42 {
		t.Errorf("Read = %s, want -42", got)
	}

	for i := 1; i < 4; i++ {
		c, _ := m.Cell(a + i)
		if !c.IsCont() || c.Owner() != a {
			t.Errorf("cell a+%d = %v, want continuation of a", i, c)
		}
	}
}

func TestContinuationRead(t *testing.T) {
	m := newMemory(t)
	a := alloc(t, m, Data, 8)
	if err := m.Write(a, tInt, value.Int(tInt, 0x11223344)); err != nil {
		t.Fatal(err)
	}

	// Reading inside the span as the owning type reconstructs the owner.
	got, err := m.Read(a+2, tInt)
	if err != nil {
		t.Fatalf("Read(a+2, int): %v", err)
	}
	if got.Int64() != 0x11223344 {
		t.Errorf("Read(a+2, int) = %#x, want 0x11223344", got.Int64())
	}

	_, err = m.Read(a+2, tChar)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Read(a+2, char): err = %v, want ErrTypeMismatch", err)
	}
	var ae *AccessError
	if !errors.As(err, &ae) || ae.Addr != a+2 || ae.Op != "read" {
		t.Errorf("error = %#v, want AccessError at a+2", err)
	}
}

func TestContinuationReadAtBlockEnd(t *testing.T) {
	for _, r := range []Region{Heap, Stack} {
		t.Run(r.String(), func(t *testing.T) {
			m := newMemory(t)
			a := alloc(t, m, r, 4)
			if err := m.Write(a, tInt, value.Int(tInt, 0x11223344)); err != nil {
				t.Fatal(err)
			}
			got, err := m.Read(a+2, tInt)
			if err != nil {
				t.Fatalf("Read(a+2, int): %v", err)
			}
			if got.Int64() != 0x11223344 {
				t.Errorf("Read(a+2, int) = %#x, want 0x11223344", got.Int64())
			}
		})
	}
}

func TestPartialWriteSplices(t *testing.T) {
	m := newMemory(t)
	a := alloc(t, m, Data, 8)
	if err := m.Write(a, tInt, value.Int(tInt, 0x11223344)); err != nil {
		t.Fatal(err)
	}
	if err := m.Write(a+2, tChar, value.Int(tChar, 0x7f)); err != nil {
		t.Fatal(err)
	}

	got, err := m.Read(a, tInt)
	if err != nil {
		t.Fatal(err)
	}
	if got.Int64() != 0x117f3344 {
		t.Errorf("Read(a) = %#x, want 0x117f3344", got.Int64())
	}
	if c, _ := m.Cell(a); c.Type() != tInt {
		t.Errorf("owner type = %s, want int", c.Type())
	}
	if c, _ := m.Cell(a + 2); !c.IsCont() {
		t.Errorf("cell a+2 = %v, want continuation", c)
	}
}

func TestStraddlingWriteDemotes(t *testing.T) {
	m := newMemory(t)
	a := alloc(t, m, Data, 8)
	if err := m.Write(a, tInt, value.Int(tInt, 0x44332211)); err != nil {
		t.Fatal(err)
	}
	// short at a+3 covers the int's last byte and one byte past it
	if err := m.Write(a+3, tShort, value.Int(tShort, 0x6655)); err != nil {
		t.Fatal(err)
	}

	want := []byte{0x11, 0x22, 0x33, 0x55, 0x66}
	got := m.ToByteArray(a, 5)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bytes = % x, want % x", got, want)
		}
	}
	for i := 0; i < 3; i++ {
		c, _ := m.Cell(a + i)
		if c.IsCont() || c.Type() != tUChar {
			t.Errorf("cell a+%d = %v (%v), want unsigned char", i, c, c.Type())
		}
	}
	v, err := m.Read(a+3, tShort)
	if err != nil || v.Int64() != 0x6655 {
		t.Errorf("Read(a+3, short) = %v, %v", v, err)
	}
	// gathered read across the demoted cells
	v, err = m.Read(a, tInt)
	if err != nil || v.Int64() != 0x55332211 {
		t.Errorf("Read(a, int) = %#x, %v; want 0x55332211", v.Int64(), err)
	}
}

func TestDifferentWidthGathers(t *testing.T) {
	m := newMemory(t)
	a := alloc(t, m, Data, 8)
	if err := m.Write(a, tInt, value.Int(tInt, 0x01020304)); err != nil {
		t.Fatal(err)
	}
	v, err := m.Read(a, tChar)
	if err != nil || v.Int64() != 4 {
		t.Errorf("Read(a, char) = %v, %v; want 4", v, err)
	}
	v, err = m.Read(a, tShort)
	if err != nil || v.Int64() != 0x0304 {
		t.Errorf("Read(a, short) = %v, %v; want 0x0304", v, err)
	}
}

func TestWriteConverts(t *testing.T) {
	m := newMemory(t)
	a := alloc(t, m, Data, 8)
	if err := m.Write(a, tChar, value.Int(tInt, 300)); err != nil {
		t.Fatal(err)
	}
	v, _ := m.Read(a, tChar)
	if v.Int64() != 44 {
		t.Errorf("char stored from 300 = %d, want 44", v.Int64())
	}
	if err := m.Write(a, tDouble, value.Int(tInt, 3)); err != nil {
		t.Fatal(err)
	}
	v, _ = m.Read(a, tDouble)
	if v.Float64() != 3 {
		t.Errorf("double stored from 3 = %v", v)
	}
}

func TestAccessErrors(t *testing.T) {
	m := newMemory(t)
	tests := []struct {
		name string
		addr int
		want error
	}{
		{"null", 0, ErrNull},
		{"negative", -4, ErrOutOfRange},
		{"past end", m.Size(), ErrOutOfRange},
		{"unallocated data", m.DataTop() + 8, ErrStale},
		{"unallocated heap", m.Regions()[2].Start, ErrStale},
		{"above stack", m.StackTop(), ErrStale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Read(tt.addr, tInt)
			if !errors.Is(err, tt.want) {
				t.Errorf("Read(%d): err = %v, want %v", tt.addr, err, tt.want)
			}
			err = m.Write(tt.addr, tInt, value.Int(tInt, 1))
			if !errors.Is(err, tt.want) {
				t.Errorf("Write(%d): err = %v, want %v", tt.addr, err, tt.want)
			}
		})
	}
}

func TestStackPushPop(t *testing.T) {
	m := newMemory(t)
	mark := m.StackTop()
	a := alloc(t, m, Stack, 4)
	if err := m.Write(a, tInt, value.Int(tInt, 7)); err != nil {
		t.Fatal(err)
	}
	if err := m.Release(Stack, mark); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Read(a, tInt); !errors.Is(err, ErrStale) {
		t.Errorf("read of popped stack: err = %v, want ErrStale", err)
	}

	// a fresh frame at the same address starts zeroed
	b := alloc(t, m, Stack, 4)
	if b != a {
		t.Fatalf("re-push address = %d, want %d", b, a)
	}
	v, err := m.Read(b, tInt)
	if err != nil || v.Int64() != 0 {
		t.Errorf("fresh stack slot = %v, %v; want 0", v, err)
	}

	if err := m.Release(Stack, m.StackTop()+4); !errors.Is(err, ErrInvalidFree) {
		t.Errorf("release above top: err = %v, want ErrInvalidFree", err)
	}
}

func TestStackOverflow(t *testing.T) {
	m, err := New(Config{Size: 256, DataSize: 64, HeapSize: 64})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Allocate(Stack, 200, 4); !errors.Is(err, ErrExhausted) {
		t.Errorf("oversized push: err = %v, want ErrExhausted", err)
	}
}

func TestHeapFirstFit(t *testing.T) {
	m := newMemory(t)
	a := alloc(t, m, Heap, 16)
	b := alloc(t, m, Heap, 16)
	c := alloc(t, m, Heap, 16)
	if !(a < b && b < c) {
		t.Fatalf("blocks not ascending: %d %d %d", a, b, c)
	}

	if err := m.Release(Heap, b); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Read(b, tInt); !errors.Is(err, ErrStale) {
		t.Errorf("read of freed block: err = %v, want ErrStale", err)
	}
	if err := m.Release(Heap, b); !errors.Is(err, ErrInvalidFree) {
		t.Errorf("double free: err = %v, want ErrInvalidFree", err)
	}
	if err := m.Release(Heap, a+4); !errors.Is(err, ErrInvalidFree) {
		t.Errorf("free of interior address: err = %v, want ErrInvalidFree", err)
	}

	// the gap left by b is reused first
	d := alloc(t, m, Heap, 8)
	if d != b {
		t.Errorf("first fit = %d, want %d", d, b)
	}
	if n, ok := m.BlockSize(d); !ok || n != 8 {
		t.Errorf("BlockSize = %d, %v; want 8", n, ok)
	}
	if _, err := m.Read(d+8, tInt); !errors.Is(err, ErrStale) {
		t.Errorf("read past block end: err = %v, want ErrStale", err)
	}
}

func TestHeapExhausted(t *testing.T) {
	m := newMemory(t)
	if _, err := m.Allocate(Heap, DefaultConfig().HeapSize+1, 8); !errors.Is(err, ErrExhausted) {
		t.Errorf("oversized malloc: err = %v, want ErrExhausted", err)
	}
}

func TestCopy(t *testing.T) {
	m := newMemory(t)
	src := alloc(t, m, Data, 8)
	dst := alloc(t, m, Data, 8)
	if err := m.Write(src, tInt, value.Int(tInt, 99)); err != nil {
		t.Fatal(err)
	}
	if err := m.Write(src+4, tChar, value.Int(tChar, 'x')); err != nil {
		t.Fatal(err)
	}
	if err := m.Copy(dst, src, 8); err != nil {
		t.Fatal(err)
	}

	v, err := m.Read(dst, tInt)
	if err != nil || v.Int64() != 99 {
		t.Errorf("copied int = %v, %v", v, err)
	}
	if c, _ := m.Cell(dst + 3); !c.IsCont() || c.Owner() != dst {
		t.Errorf("copied continuation = %v, want owner %d", c, dst)
	}
	v, err = m.Read(dst+4, tChar)
	if err != nil || v.Int64() != 'x' {
		t.Errorf("copied char = %v, %v", v, err)
	}

	// copying half of an int yields its bytes
	if err := m.Write(src, tInt, value.Int(tInt, 0x01020304)); err != nil {
		t.Fatal(err)
	}
	if err := m.Copy(dst, src+2, 2); err != nil {
		t.Fatal(err)
	}
	v, _ = m.Read(dst, tInt)
	if v.Int64() != 0x0102 {
		t.Errorf("after partial copy int = %#x, want 0x0102", v.Int64())
	}
}

func TestFill(t *testing.T) {
	m := newMemory(t)
	a := alloc(t, m, Data, 8)
	if err := m.Write(a, tInt, value.Int(tInt, -1)); err != nil {
		t.Fatal(err)
	}
	if err := m.Fill(a+1, 2, 0); err != nil {
		t.Fatal(err)
	}
	v, _ := m.Read(a, types.Typ[types.UInt])
	if v.Uint64() != 0xff0000ff {
		t.Errorf("after fill = %#x, want 0xff0000ff", v.Uint64())
	}
}

func TestConfigValidate(t *testing.T) {
	if _, err := New(Config{Size: 1024, DataSize: 512, HeapSize: 512}); err == nil {
		t.Errorf("config without stack room accepted")
	}
	if _, err := New(Config{Size: 1024, DataSize: 2, HeapSize: 16}); err == nil {
		t.Errorf("config with data smaller than null guard accepted")
	}
}
