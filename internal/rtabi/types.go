// Package rtabi defines the ABI of the emulated machine: primitive widths,
// alignments and default memory geometry shared by the type model, the
// memory and the interpreter.
package rtabi

// Data model: ILP32.
const (
	SizeChar     = 1
	SizeShort    = 2
	SizeInt      = 4
	SizeLong     = 4
	SizeLongLong = 8
	SizeFloat    = 4
	SizeDouble   = 8
	SizePtr      = 4 // machine word
)

// Alignments. Every scalar aligns to its own size.
const (
	AlignChar     = SizeChar
	AlignShort    = SizeShort
	AlignInt      = SizeInt
	AlignLong     = SizeLong
	AlignLongLong = SizeLongLong
	AlignFloat    = SizeFloat
	AlignDouble   = SizeDouble
	AlignPtr      = SizePtr
)

// Default memory geometry in bytes.
const (
	// MemorySize is the total size of the address space.
	MemorySize = 64 << 10

	// DataSize is the size of the global/static region.
	DataSize = 16 << 10

	// HeapSize is the size of the heap region. The stack takes the rest.
	HeapSize = 16 << 10

	// NullGuard is the number of low addresses that are never mapped, so
	// that dereferencing NULL faults.
	NullGuard = 4
)

// Integer limits for the ILP32 model.
const (
	CharMin  = -128
	CharMax  = 127
	UCharMax = 255
	IntMin   = -2147483648
	IntMax   = 2147483647
	UIntMax  = 4294967295
)

// EOF is the value returned by character input at end of input.
const EOF = -1
