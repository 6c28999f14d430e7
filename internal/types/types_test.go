package types

import "testing"

func TestBasicTypes(t *testing.T) {
	tests := []struct {
		kind BasicKind
		name string
		info BasicInfo
	}{
		{Void, "void", IsVoid},
		{Char, "char", IsInteger},
		{UChar, "unsigned char", IsInteger | IsUnsigned},
		{Short, "short", IsInteger},
		{Int, "int", IsInteger},
		{UInt, "unsigned int", IsInteger | IsUnsigned},
		{LongLong, "long long", IsInteger},
		{Float, "float", IsFloat},
		{Double, "double", IsFloat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ := Typ[tt.kind]
			if typ == nil {
				t.Fatalf("Typ[%d] is nil", tt.kind)
			}
			if typ.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", typ.Kind(), tt.kind)
			}
			if typ.Info() != tt.info {
				t.Errorf("Info() = %v, want %v", typ.Info(), tt.info)
			}
			if typ.String() != tt.name {
				t.Errorf("String() = %q, want %q", typ.String(), tt.name)
			}
		})
	}
}

func TestBasicFromKeywords(t *testing.T) {
	tests := []struct {
		words []string
		want  BasicKind
	}{
		{[]string{"int"}, Int},
		{[]string{"unsigned"}, UInt},
		{[]string{"unsigned", "char"}, UChar},
		{[]string{"long", "long", "int"}, LongLong},
		{[]string{"unsigned", "long", "long"}, ULongLong},
		{[]string{"short", "unsigned", "int"}, UShort},
		{[]string{"long", "double"}, Double},
	}

	for _, tt := range tests {
		got, err := BasicFromKeywords(tt.words)
		if err != nil {
			t.Errorf("BasicFromKeywords(%v) error: %v", tt.words, err)
			continue
		}
		if got.Kind() != tt.want {
			t.Errorf("BasicFromKeywords(%v) = %s, want %s", tt.words, got, Typ[tt.want])
		}
	}

	if _, err := BasicFromKeywords([]string{"float", "int"}); err == nil {
		t.Errorf("BasicFromKeywords(float int) should fail")
	}
}

func TestArrayType(t *testing.T) {
	elem := Typ[Int]
	arr := NewArray(10, elem)

	if arr.Len() != 10 {
		t.Errorf("Len() = %d, want 10", arr.Len())
	}
	if arr.Elem() != elem {
		t.Errorf("Elem() != expected element type")
	}
	if arr.String() != "int[10]" {
		t.Errorf("String() = %q, want %q", arr.String(), "int[10]")
	}
	if NewArray(-1, elem).String() != "int[]" {
		t.Errorf("incomplete array String() = %q", NewArray(-1, elem).String())
	}
}

func TestPointerType(t *testing.T) {
	ptr := NewPointer(Typ[Char])
	if ptr.Elem() != Typ[Char] {
		t.Errorf("Elem() != expected base type")
	}
	if ptr.String() != "char*" {
		t.Errorf("String() = %q, want %q", ptr.String(), "char*")
	}
}

func TestFuncType(t *testing.T) {
	fn := NewFunc([]*Var{NewVar("fmt", NewPointer(Typ[Char]))}, Typ[Int], true)
	if fn.NumParams() != 1 {
		t.Fatalf("NumParams() = %d, want 1", fn.NumParams())
	}
	if !fn.Variadic() {
		t.Errorf("Variadic() = false")
	}
	if got, want := fn.String(), "int (char* fmt, ...)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestApplyDeclarators(t *testing.T) {
	// int *a[3]
	typ, err := Apply(Typ[Int], []Declarator{
		{Kind: PointerTo},
		{Kind: ArrayOf, Len: 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	arr, ok := typ.(*Array)
	if !ok || arr.Len() != 3 {
		t.Fatalf("got %s, want array of 3", typ)
	}
	if !Identical(arr.Elem(), NewPointer(Typ[Int])) {
		t.Errorf("element = %s, want int*", arr.Elem())
	}

	// int f(int a[])
	typ, err = Apply(Typ[Int], []Declarator{
		{Kind: FunctionReturning, Params: []*Var{NewVar("a", NewArray(-1, Typ[Int]))}},
	})
	if err != nil {
		t.Fatal(err)
	}
	fn := typ.(*Func)
	if !IsPointer(fn.Param(0).Type()) {
		t.Errorf("array parameter not adjusted: %s", fn.Param(0).Type())
	}

	if _, err := Apply(Typ[Int], []Declarator{{Kind: ArrayOf, Len: 2}, {Kind: FunctionReturning}}); err == nil {
		t.Errorf("function returning array should fail")
	}
	if _, err := Apply(Typ[Void], []Declarator{{Kind: ArrayOf, Len: 2}}); err == nil {
		t.Errorf("array of void should fail")
	}
}

func TestStructCompletion(t *testing.T) {
	st := NewIncomplete("node", false)
	if st.Complete() {
		t.Fatalf("incomplete struct reports complete")
	}
	if err := DefaultSizes.Check(st); err == nil {
		t.Errorf("Check(incomplete) should fail")
	}
	st.SetFields([]*Var{
		NewField("value", Typ[Int]),
		NewField("next", NewPointer(st)),
	})
	if !st.Complete() {
		t.Fatalf("SetFields did not complete struct")
	}
	if got := DefaultSizes.Sizeof(st); got != 8 {
		t.Errorf("Sizeof(struct node) = %d, want 8", got)
	}
	if st.FieldIndex("next") != 1 {
		t.Errorf("FieldIndex(next) = %d, want 1", st.FieldIndex("next"))
	}
}
