// Package types implements the C type model of the emulated machine:
// basic arithmetic types, pointers, arrays, structs, unions and function
// types, together with their sizes and alignment.
package types

// Type is the interface implemented by all types.
type Type interface {
	// String returns a C-like representation of the type.
	String() string

	// aType is a marker method to restrict implementations to this package.
	aType()
}

// typ is a base struct for all type implementations.
type typ struct{}

func (typ) aType() {}
