package hir

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseType reads the textual type notation used by fixtures and tests.
//
// Accepted forms: C scalars (`int`, `char`, `size_t`, ...), `struct Name`,
// prefix or suffix pointers (`*int`, `int*`), arrays (`int[4]`, `int[]`),
// and the safe forms produced by inference (`&int`, `&mut int`, `Box<int>`,
// `Vec<int>`, `[int]`). A leading `const` qualifier is accepted and dropped.
func ParseType(s string) (Type, error) {
	t, err := parseType(strings.TrimSpace(s))
	if err != nil {
		return Type{}, fmt.Errorf("parse type %q: %w", s, err)
	}
	return t, nil
}

// MustParseType is like ParseType but panics on malformed input.
func MustParseType(s string) Type {
	t, err := ParseType(s)
	if err != nil {
		panic(err)
	}
	return t
}

func parseType(s string) (Type, error) {
	if s == "" {
		return Type{}, fmt.Errorf("empty type")
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "const "))

	switch {
	case strings.HasPrefix(s, "&mut "):
		inner, err := parseType(s[len("&mut "):])
		if err != nil {
			return Type{}, err
		}
		return RefTo(inner, true), nil
	case strings.HasPrefix(s, "&"):
		inner, err := parseType(s[1:])
		if err != nil {
			return Type{}, err
		}
		return RefTo(inner, false), nil
	case strings.HasPrefix(s, "*"):
		inner, err := parseType(s[1:])
		if err != nil {
			return Type{}, err
		}
		return PointerTo(inner), nil
	case strings.HasSuffix(s, "*"):
		inner, err := parseType(strings.TrimSpace(s[:len(s)-1]))
		if err != nil {
			return Type{}, err
		}
		return PointerTo(inner), nil
	case strings.HasPrefix(s, "Box<") && strings.HasSuffix(s, ">"):
		inner, err := parseType(s[len("Box<") : len(s)-1])
		if err != nil {
			return Type{}, err
		}
		return BoxOf(inner), nil
	case strings.HasPrefix(s, "Vec<") && strings.HasSuffix(s, ">"):
		inner, err := parseType(s[len("Vec<") : len(s)-1])
		if err != nil {
			return Type{}, err
		}
		return VecOf(inner), nil
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		inner, err := parseType(s[1 : len(s)-1])
		if err != nil {
			return Type{}, err
		}
		return SliceOf(inner), nil
	case strings.HasSuffix(s, "]"):
		open := strings.LastIndexByte(s, '[')
		if open <= 0 {
			return Type{}, fmt.Errorf("unbalanced array brackets")
		}
		elem, err := parseType(strings.TrimSpace(s[:open]))
		if err != nil {
			return Type{}, err
		}
		dim := strings.TrimSpace(s[open+1 : len(s)-1])
		if dim == "" {
			return ArrayOf(elem, -1), nil
		}
		n, err := strconv.Atoi(dim)
		if err != nil || n < 0 {
			return Type{}, fmt.Errorf("invalid array size %q", dim)
		}
		return ArrayOf(elem, n), nil
	case strings.HasPrefix(s, "struct "):
		name := strings.TrimSpace(s[len("struct "):])
		if name == "" {
			return Type{}, fmt.Errorf("struct without a name")
		}
		return StructNamed(name), nil
	}

	switch s {
	case "void", "()":
		return Void(), nil
	case "int", "long", "short", "long long", "signed", "i32", "i64":
		return Int(), nil
	case "unsigned", "unsigned int", "unsigned long", "size_t", "u32", "usize":
		return UnsignedInt(), nil
	case "char", "unsigned char", "u8":
		return Char(), nil
	case "float", "f32":
		return Float(), nil
	case "double", "f64":
		return Double(), nil
	}
	return Type{}, fmt.Errorf("unknown type name %q", s)
}
