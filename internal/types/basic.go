package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/derrell/LearnCS-sub002/internal/rtabi"
)

// BasicKind describes the kind of basic type.
type BasicKind int

const (
	Invalid BasicKind = iota // invalid type

	Void
	Char // plain char is signed on the emulated machine
	SChar
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	LongLong
	ULongLong
	Float
	Double
)

// BasicInfo describes properties of a basic type.
type BasicInfo int

const (
	IsInteger BasicInfo = 1 << iota
	IsUnsigned
	IsFloat
	IsVoid
	IsNumeric = IsInteger | IsFloat
)

// Basic represents a basic type.
type Basic struct {
	typ
	kind BasicKind
	info BasicInfo
	name string
	size int64
	rank int // integer conversion rank
}

// Kind returns the kind of the basic type.
func (b *Basic) Kind() BasicKind {
	return b.kind
}

// Info returns information about the basic type.
func (b *Basic) Info() BasicInfo {
	return b.info
}

// Name returns the name of the basic type.
func (b *Basic) Name() string {
	return b.name
}

// Rank returns the integer conversion rank, 0 for non-integers.
func (b *Basic) Rank() int {
	return b.rank
}

// String implements Type.
func (b *Basic) String() string {
	return b.name
}

// Typ holds the basic types, indexed by BasicKind.
// Typ[Invalid] is nil, representing an invalid type.
var Typ = []*Basic{
	Invalid:   nil,
	Void:      {kind: Void, info: IsVoid, name: "void"},
	Char:      {kind: Char, info: IsInteger, name: "char", size: rtabi.SizeChar, rank: 1},
	SChar:     {kind: SChar, info: IsInteger, name: "signed char", size: rtabi.SizeChar, rank: 1},
	UChar:     {kind: UChar, info: IsInteger | IsUnsigned, name: "unsigned char", size: rtabi.SizeChar, rank: 1},
	Short:     {kind: Short, info: IsInteger, name: "short", size: rtabi.SizeShort, rank: 2},
	UShort:    {kind: UShort, info: IsInteger | IsUnsigned, name: "unsigned short", size: rtabi.SizeShort, rank: 2},
	Int:       {kind: Int, info: IsInteger, name: "int", size: rtabi.SizeInt, rank: 3},
	UInt:      {kind: UInt, info: IsInteger | IsUnsigned, name: "unsigned int", size: rtabi.SizeInt, rank: 3},
	Long:      {kind: Long, info: IsInteger, name: "long", size: rtabi.SizeLong, rank: 4},
	ULong:     {kind: ULong, info: IsInteger | IsUnsigned, name: "unsigned long", size: rtabi.SizeLong, rank: 4},
	LongLong:  {kind: LongLong, info: IsInteger, name: "long long", size: rtabi.SizeLongLong, rank: 5},
	ULongLong: {kind: ULongLong, info: IsInteger | IsUnsigned, name: "unsigned long long", size: rtabi.SizeLongLong, rank: 5},
	Float:     {kind: Float, info: IsFloat, name: "float", size: rtabi.SizeFloat},
	Double:    {kind: Double, info: IsFloat, name: "double", size: rtabi.SizeDouble},
}

// specifierSets maps a sorted, space-joined multiset of type-specifier
// keywords to the basic type it denotes.
var specifierSets = map[string]BasicKind{
	"void":                   Void,
	"char":                   Char,
	"char signed":            SChar,
	"char unsigned":          UChar,
	"short":                  Short,
	"int short":              Short,
	"short signed":           Short,
	"int short signed":       Short,
	"short unsigned":         UShort,
	"int short unsigned":     UShort,
	"int":                    Int,
	"signed":                 Int,
	"int signed":             Int,
	"unsigned":               UInt,
	"int unsigned":           UInt,
	"long":                   Long,
	"int long":               Long,
	"long signed":            Long,
	"int long signed":        Long,
	"long unsigned":          ULong,
	"int long unsigned":      ULong,
	"long long":              LongLong,
	"int long long":          LongLong,
	"long long signed":       LongLong,
	"int long long signed":   LongLong,
	"long long unsigned":     ULongLong,
	"int long long unsigned": ULongLong,
	"float":                  Float,
	"double":                 Double,
	"double long":            Double,
}

// BasicFromKeywords returns the basic type denoted by a list of C type
// specifier keywords in any order, e.g. ["unsigned", "long"].
func BasicFromKeywords(words []string) (*Basic, error) {
	sorted := append([]string(nil), words...)
	sort.Strings(sorted)
	key := strings.Join(sorted, " ")
	if kind, ok := specifierSets[key]; ok {
		return Typ[kind], nil
	}
	return nil, fmt.Errorf("invalid type specifier combination %q", strings.Join(words, " "))
}
