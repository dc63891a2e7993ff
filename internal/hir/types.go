package hir

import (
	"strconv"
	"strings"
)

// TypeKind enumerates HIR type constructors.
type TypeKind uint8

const (
	// TypeVoid is the C `void` type.
	TypeVoid TypeKind = iota
	// TypeInt is a signed integer (C int, long, short).
	TypeInt
	// TypeUnsignedInt is an unsigned integer.
	TypeUnsignedInt
	// TypeChar is a C char.
	TypeChar
	// TypeFloat is a C float.
	TypeFloat
	// TypeDouble is a C double.
	TypeDouble
	// TypePointer is a raw pointer `*T`.
	TypePointer
	// TypeBox is an owning heap pointer `Box<T>`.
	TypeBox
	// TypeReference is a borrow `&T` or `&mut T`.
	TypeReference
	// TypeSlice is an unsized element sequence `[T]`, only valid behind a reference.
	TypeSlice
	// TypeVec is a growable owned buffer `Vec<T>`.
	TypeVec
	// TypeArray is a fixed-size array `T[N]`.
	TypeArray
	// TypeStruct is a named aggregate.
	TypeStruct
)

// String returns a human-readable name for the type kind.
func (k TypeKind) String() string {
	switch k {
	case TypeVoid:
		return "Void"
	case TypeInt:
		return "Int"
	case TypeUnsignedInt:
		return "UnsignedInt"
	case TypeChar:
		return "Char"
	case TypeFloat:
		return "Float"
	case TypeDouble:
		return "Double"
	case TypePointer:
		return "Pointer"
	case TypeBox:
		return "Box"
	case TypeReference:
		return "Reference"
	case TypeSlice:
		return "Slice"
	case TypeVec:
		return "Vec"
	case TypeArray:
		return "Array"
	case TypeStruct:
		return "Struct"
	default:
		return "Unknown"
	}
}

// Type is an immutable HIR type value.
// Elem is set for Pointer, Box, Reference, Slice, Vec and Array.
type Type struct {
	Kind     TypeKind
	Elem     *Type
	Mutable  bool   // Reference only
	Lifetime string // Reference only, without the quote; empty when elided
	Size     int    // Array only; negative when unknown
	Name     string // Struct only
}

func Void() Type        { return Type{Kind: TypeVoid} }
func Int() Type         { return Type{Kind: TypeInt} }
func UnsignedInt() Type { return Type{Kind: TypeUnsignedInt} }
func Char() Type        { return Type{Kind: TypeChar} }
func Float() Type       { return Type{Kind: TypeFloat} }
func Double() Type      { return Type{Kind: TypeDouble} }

// PointerTo builds `*elem`.
func PointerTo(elem Type) Type { return Type{Kind: TypePointer, Elem: &elem} }

// BoxOf builds `Box<elem>`.
func BoxOf(elem Type) Type { return Type{Kind: TypeBox, Elem: &elem} }

// RefTo builds `&elem` or `&mut elem`.
func RefTo(elem Type, mutable bool) Type {
	return Type{Kind: TypeReference, Elem: &elem, Mutable: mutable}
}

// WithLifetime returns a copy of a reference type bound to the named
// lifetime. Other types are returned unchanged.
func (t Type) WithLifetime(name string) Type {
	if t.Kind != TypeReference {
		return t
	}
	t.Lifetime = name
	return t
}

// SliceOf builds `[elem]`.
func SliceOf(elem Type) Type { return Type{Kind: TypeSlice, Elem: &elem} }

// VecOf builds `Vec<elem>`.
func VecOf(elem Type) Type { return Type{Kind: TypeVec, Elem: &elem} }

// ArrayOf builds `elem[size]`; pass a negative size for `elem[]`.
func ArrayOf(elem Type, size int) Type { return Type{Kind: TypeArray, Elem: &elem, Size: size} }

// StructNamed builds `struct name`.
func StructNamed(name string) Type { return Type{Kind: TypeStruct, Name: name} }

// IsPointer reports whether t is a raw pointer.
func (t Type) IsPointer() bool { return t.Kind == TypePointer }

// IsPointerLike reports whether t is a raw pointer, box or reference.
func (t Type) IsPointerLike() bool {
	return t.Kind == TypePointer || t.Kind == TypeBox || t.Kind == TypeReference
}

// IsInteger reports whether t is an integer scalar.
func (t Type) IsInteger() bool {
	return t.Kind == TypeInt || t.Kind == TypeUnsignedInt
}

// Pointee returns the element type of a pointer-like type, or Void.
func (t Type) Pointee() Type {
	if t.Elem == nil {
		return Void()
	}
	return *t.Elem
}

// Depth counts nested pointer-like layers: `int` is 0, `int**` is 2.
func (t Type) Depth() int {
	depth := 0
	cur := t
	for cur.IsPointerLike() && cur.Elem != nil {
		depth++
		cur = *cur.Elem
	}
	return depth
}

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind || t.Mutable != o.Mutable || t.Name != o.Name || t.Lifetime != o.Lifetime {
		return false
	}
	if t.Kind == TypeArray && t.Size != o.Size {
		return false
	}
	switch {
	case t.Elem == nil && o.Elem == nil:
		return true
	case t.Elem == nil || o.Elem == nil:
		return false
	default:
		return t.Elem.Equal(*o.Elem)
	}
}

// String renders the type in the target notation.
func (t Type) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t Type) write(sb *strings.Builder) {
	switch t.Kind {
	case TypeVoid:
		sb.WriteString("()")
	case TypeInt:
		sb.WriteString("i32")
	case TypeUnsignedInt:
		sb.WriteString("u32")
	case TypeChar:
		sb.WriteString("u8")
	case TypeFloat:
		sb.WriteString("f32")
	case TypeDouble:
		sb.WriteString("f64")
	case TypePointer:
		sb.WriteString("*mut ")
		t.Pointee().write(sb)
	case TypeBox:
		sb.WriteString("Box<")
		t.Pointee().write(sb)
		sb.WriteString(">")
	case TypeReference:
		sb.WriteString("&")
		if t.Lifetime != "" {
			sb.WriteString("'")
			sb.WriteString(t.Lifetime)
			sb.WriteString(" ")
		}
		if t.Mutable {
			sb.WriteString("mut ")
		}
		t.Pointee().write(sb)
	case TypeSlice:
		sb.WriteString("[")
		t.Pointee().write(sb)
		sb.WriteString("]")
	case TypeVec:
		sb.WriteString("Vec<")
		t.Pointee().write(sb)
		sb.WriteString(">")
	case TypeArray:
		sb.WriteString("[")
		t.Pointee().write(sb)
		if t.Size >= 0 {
			sb.WriteString("; ")
			sb.WriteString(strconv.Itoa(t.Size))
		}
		sb.WriteString("]")
	case TypeStruct:
		sb.WriteString(t.Name)
	default:
		sb.WriteString("?")
	}
}
