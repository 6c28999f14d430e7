package types

import (
	"fmt"

	"github.com/derrell/LearnCS-sub002/internal/rtabi"
)

// Sizes provides size and alignment calculations for types.
//
// Alignment policy: every scalar aligns to its own size, arrays align as
// their element, a struct aligns to its most-aligned member and is padded
// to a multiple of that alignment. Union members all live at offset 0 and
// the union is as large as its largest member, rounded up to its alignment.
type Sizes struct{}

// DefaultSizes is the default Sizes implementation.
var DefaultSizes = &Sizes{}

// Sizeof returns the size of type T in bytes.
// Asking for the size of void, a function or an incomplete type is a
// configuration error and panics; use Check first for unvalidated types.
func (s *Sizes) Sizeof(T Type) int64 {
	n, err := s.sizeof(T)
	if err != nil {
		panic(err.Error())
	}
	return n
}

// Check reports whether T has a known size.
func (s *Sizes) Check(T Type) error {
	_, err := s.sizeof(T)
	return err
}

func (s *Sizes) sizeof(T Type) (int64, error) {
	switch t := T.(type) {
	case *Basic:
		if t.size == 0 {
			return 0, fmt.Errorf("size of %s is unknown", t)
		}
		return t.size, nil
	case *Array:
		if t.Incomplete() {
			return 0, fmt.Errorf("size of incomplete array %s is unknown", t)
		}
		n, err := s.sizeof(t.Elem())
		if err != nil {
			return 0, err
		}
		return t.Len() * n, nil
	case *Struct:
		if !t.Complete() {
			return 0, fmt.Errorf("size of incomplete type %s is unknown", t)
		}
		if err := s.computeLayout(t); err != nil {
			return 0, err
		}
		return t.Size(), nil
	case *Pointer:
		return rtabi.SizePtr, nil
	case *Func:
		return 0, fmt.Errorf("size of function type %s is unknown", t)
	}
	return 0, fmt.Errorf("size of unregistered type %v is unknown", T)
}

// Alignof returns the alignment of type T in bytes.
func (s *Sizes) Alignof(T Type) int64 {
	switch t := T.(type) {
	case *Basic:
		if t.size == 0 {
			return 1
		}
		return t.size
	case *Array:
		return s.Alignof(t.Elem())
	case *Struct:
		s.ComputeLayout(t)
		return t.Align()
	case *Pointer:
		return rtabi.AlignPtr
	}
	return 1
}

// Offsetof returns the offset of member i in struct type T.
func (s *Sizes) Offsetof(T *Struct, i int) int64 {
	s.ComputeLayout(T)
	return T.Offset(i)
}

// ComputeLayout computes the size, alignment, and member offsets for a
// struct or union. This function is idempotent and safe to call multiple
// times. It panics for members of unknown size, like Sizeof.
func (s *Sizes) ComputeLayout(st *Struct) {
	if err := s.computeLayout(st); err != nil {
		panic(err.Error())
	}
}

func (s *Sizes) computeLayout(st *Struct) error {
	if st.LayoutDone() {
		return nil
	}

	var offset, size int64
	var maxAlign int64 = 1
	offsets := make([]int64, len(st.fields))

	for i, f := range st.fields {
		fieldSize, err := s.sizeof(f.Type())
		if err != nil {
			return fmt.Errorf("member %s: %w", f.Name(), err)
		}
		fieldAlign := s.Alignof(f.Type())

		if st.union {
			offsets[i] = 0
			if fieldSize > size {
				size = fieldSize
			}
		} else {
			// Align offset to member alignment
			offset = align(offset, fieldAlign)
			offsets[i] = offset
			offset += fieldSize
			size = offset
		}

		if fieldAlign > maxAlign {
			maxAlign = fieldAlign
		}
	}

	// Add padding at end for struct alignment
	size = align(size, maxAlign)

	st.SetLayout(size, maxAlign, offsets)
	return nil
}

// Align returns x rounded up to a multiple of a.
func Align(x, a int64) int64 {
	return align(x, a)
}

// align returns x rounded up to a multiple of a.
func align(x, a int64) int64 {
	if a <= 1 {
		return x
	}
	return (x + a - 1) &^ (a - 1)
}

// ByteWidth returns the number of bytes a value of type T occupies
// under DefaultSizes.
func ByteWidth(T Type) int64 {
	return DefaultSizes.Sizeof(T)
}
