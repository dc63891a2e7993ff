package hir

// ExprKind enumerates HIR expression kinds.
type ExprKind uint8

const (
	// ExprIntLit is an integer literal.
	ExprIntLit ExprKind = iota
	// ExprStringLit is a string literal.
	ExprStringLit
	// ExprCharLit is a character literal.
	ExprCharLit
	// ExprNull is the NULL pointer constant.
	ExprNull
	// ExprVar reads a named variable.
	ExprVar
	// ExprUnary applies a prefix or postfix operator.
	ExprUnary
	// ExprBinary applies a binary operator.
	ExprBinary
	// ExprDeref is `*e`.
	ExprDeref
	// ExprAddrOf is `&e`.
	ExprAddrOf
	// ExprCall is a direct call by name.
	ExprCall
	// ExprField is `e.f`.
	ExprField
	// ExprPtrField is `e->f`.
	ExprPtrField
	// ExprIndex is `a[i]`.
	ExprIndex
	// ExprSliceIndex is a bounds-checked index into a slice reference.
	ExprSliceIndex
	// ExprCast is `(T)e`.
	ExprCast
	// ExprSizeof is `sizeof(T)`.
	ExprSizeof
	// ExprMalloc is `malloc(size)`.
	ExprMalloc
	// ExprCalloc is `calloc(count, sizeof(T))`.
	ExprCalloc
	// ExprRealloc is `realloc(p, size)`.
	ExprRealloc
	// ExprMethodCall is `recv.method(args)`; produced by rewriting, e.g. `arr.len()`.
	ExprMethodCall
	// ExprIsNotNull is a `p != NULL` test.
	ExprIsNotNull
	// ExprSubslice borrows the tail of an array, `&arr[k..]`; produced by rewriting.
	ExprSubslice
)

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprIntLit:
		return "IntLit"
	case ExprStringLit:
		return "StringLit"
	case ExprCharLit:
		return "CharLit"
	case ExprNull:
		return "Null"
	case ExprVar:
		return "Var"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprDeref:
		return "Deref"
	case ExprAddrOf:
		return "AddrOf"
	case ExprCall:
		return "Call"
	case ExprField:
		return "Field"
	case ExprPtrField:
		return "PtrField"
	case ExprIndex:
		return "Index"
	case ExprSliceIndex:
		return "SliceIndex"
	case ExprCast:
		return "Cast"
	case ExprSizeof:
		return "Sizeof"
	case ExprMalloc:
		return "Malloc"
	case ExprCalloc:
		return "Calloc"
	case ExprRealloc:
		return "Realloc"
	case ExprMethodCall:
		return "MethodCall"
	case ExprIsNotNull:
		return "IsNotNull"
	case ExprSubslice:
		return "Subslice"
	default:
		return "Unknown"
	}
}

// UnaryOp enumerates unary operators.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryBitNot
	UnaryPreInc
	UnaryPreDec
	UnaryPostInc
	UnaryPostDec
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "-"
	case UnaryNot:
		return "!"
	case UnaryBitNot:
		return "~"
	case UnaryPreInc:
		return "++pre"
	case UnaryPreDec:
		return "--pre"
	case UnaryPostInc:
		return "post++"
	case UnaryPostDec:
		return "post--"
	default:
		return "?"
	}
}

// IsIncDec reports whether op changes its operand in place.
func (op UnaryOp) IsIncDec() bool {
	return op >= UnaryPreInc && op <= UnaryPostDec
}

// BinaryOp enumerates binary operators.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShl
	BinShr
)

var binaryOpText = [...]string{
	BinAdd:    "+",
	BinSub:    "-",
	BinMul:    "*",
	BinDiv:    "/",
	BinMod:    "%",
	BinEq:     "==",
	BinNe:     "!=",
	BinLt:     "<",
	BinLe:     "<=",
	BinGt:     ">",
	BinGe:     ">=",
	BinAnd:    "&&",
	BinOr:     "||",
	BinBitAnd: "&",
	BinBitOr:  "|",
	BinBitXor: "^",
	BinShl:    "<<",
	BinShr:    ">>",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// ParseBinaryOp maps operator text to a BinaryOp.
func ParseBinaryOp(s string) (BinaryOp, bool) {
	for i, text := range binaryOpText {
		if text == s {
			return BinaryOp(i), true
		}
	}
	return 0, false
}

// Expr is an HIR expression node.
type Expr struct {
	Kind ExprKind
	Data ExprData
}

// ExprData is implemented by every expression payload.
type ExprData interface {
	exprData()
}

// IntLitData holds ExprIntLit.
type IntLitData struct{ Value int64 }

// StringLitData holds ExprStringLit.
type StringLitData struct{ Value string }

// CharLitData holds ExprCharLit.
type CharLitData struct{ Value byte }

// NullData holds ExprNull.
type NullData struct{}

// VarData holds ExprVar.
type VarData struct{ Name string }

// UnaryData holds ExprUnary.
type UnaryData struct {
	Op      UnaryOp
	Operand *Expr
}

// BinaryData holds ExprBinary.
type BinaryData struct {
	Op    BinaryOp
	Left  *Expr
	Right *Expr
}

// DerefData holds ExprDeref.
type DerefData struct{ Inner *Expr }

// AddrOfData holds ExprAddrOf.
type AddrOfData struct{ Inner *Expr }

// CallData holds ExprCall.
type CallData struct {
	Func string
	Args []*Expr
}

// FieldData holds ExprField and ExprPtrField.
type FieldData struct {
	Object *Expr
	Field  string
}

// IndexData holds ExprIndex and ExprSliceIndex.
type IndexData struct {
	Array *Expr
	Index *Expr
}

// CastData holds ExprCast.
type CastData struct {
	Target Type
	Inner  *Expr
}

// SizeofData holds ExprSizeof.
type SizeofData struct{ Of Type }

// MallocData holds ExprMalloc.
type MallocData struct{ Size *Expr }

// CallocData holds ExprCalloc.
type CallocData struct {
	Count *Expr
	Elem  Type
}

// ReallocData holds ExprRealloc.
type ReallocData struct {
	Pointer *Expr
	Size    *Expr
}

// MethodCallData holds ExprMethodCall.
type MethodCallData struct {
	Receiver *Expr
	Method   string
	Args     []*Expr
}

// IsNotNullData holds ExprIsNotNull.
type IsNotNullData struct{ Inner *Expr }

// SubsliceData holds ExprSubslice.
type SubsliceData struct {
	Array   *Expr
	From    *Expr
	Mutable bool
}

func (IntLitData) exprData()     {}
func (StringLitData) exprData()  {}
func (CharLitData) exprData()    {}
func (NullData) exprData()       {}
func (VarData) exprData()        {}
func (UnaryData) exprData()      {}
func (BinaryData) exprData()     {}
func (DerefData) exprData()      {}
func (AddrOfData) exprData()     {}
func (CallData) exprData()       {}
func (FieldData) exprData()      {}
func (IndexData) exprData()      {}
func (CastData) exprData()       {}
func (SizeofData) exprData()     {}
func (MallocData) exprData()     {}
func (CallocData) exprData()     {}
func (ReallocData) exprData()    {}
func (MethodCallData) exprData() {}
func (IsNotNullData) exprData()  {}
func (SubsliceData) exprData()   {}

// Constructors keep fixtures and tests readable.

func IntLit(v int64) *Expr       { return &Expr{Kind: ExprIntLit, Data: IntLitData{Value: v}} }
func StringLit(v string) *Expr   { return &Expr{Kind: ExprStringLit, Data: StringLitData{Value: v}} }
func CharLit(v byte) *Expr       { return &Expr{Kind: ExprCharLit, Data: CharLitData{Value: v}} }
func Null() *Expr                { return &Expr{Kind: ExprNull, Data: NullData{}} }
func Var(name string) *Expr      { return &Expr{Kind: ExprVar, Data: VarData{Name: name}} }
func Deref(inner *Expr) *Expr    { return &Expr{Kind: ExprDeref, Data: DerefData{Inner: inner}} }
func AddrOf(inner *Expr) *Expr   { return &Expr{Kind: ExprAddrOf, Data: AddrOfData{Inner: inner}} }
func Sizeof(of Type) *Expr       { return &Expr{Kind: ExprSizeof, Data: SizeofData{Of: of}} }
func Malloc(size *Expr) *Expr    { return &Expr{Kind: ExprMalloc, Data: MallocData{Size: size}} }

func IsNotNull(inner *Expr) *Expr {
	return &Expr{Kind: ExprIsNotNull, Data: IsNotNullData{Inner: inner}}
}

func Unary(op UnaryOp, operand *Expr) *Expr {
	return &Expr{Kind: ExprUnary, Data: UnaryData{Op: op, Operand: operand}}
}

func Binary(op BinaryOp, left, right *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Data: BinaryData{Op: op, Left: left, Right: right}}
}

func Call(fn string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Data: CallData{Func: fn, Args: args}}
}

func Field(object *Expr, field string) *Expr {
	return &Expr{Kind: ExprField, Data: FieldData{Object: object, Field: field}}
}

func PtrField(pointer *Expr, field string) *Expr {
	return &Expr{Kind: ExprPtrField, Data: FieldData{Object: pointer, Field: field}}
}

func Index(array, index *Expr) *Expr {
	return &Expr{Kind: ExprIndex, Data: IndexData{Array: array, Index: index}}
}

func SliceIndex(slice, index *Expr) *Expr {
	return &Expr{Kind: ExprSliceIndex, Data: IndexData{Array: slice, Index: index}}
}

func Cast(target Type, inner *Expr) *Expr {
	return &Expr{Kind: ExprCast, Data: CastData{Target: target, Inner: inner}}
}

func Calloc(count *Expr, elem Type) *Expr {
	return &Expr{Kind: ExprCalloc, Data: CallocData{Count: count, Elem: elem}}
}

func Realloc(pointer, size *Expr) *Expr {
	return &Expr{Kind: ExprRealloc, Data: ReallocData{Pointer: pointer, Size: size}}
}

// Subslice builds `&array[from..]`, or `&mut array[from..]` when mutable.
func Subslice(array, from *Expr, mutable bool) *Expr {
	return &Expr{Kind: ExprSubslice, Data: SubsliceData{Array: array, From: from, Mutable: mutable}}
}

func MethodCall(recv *Expr, method string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprMethodCall, Data: MethodCallData{Receiver: recv, Method: method, Args: args}}
}

// VarName returns the variable name when e is a plain variable read.
func (e *Expr) VarName() (string, bool) {
	if e == nil || e.Kind != ExprVar {
		return "", false
	}
	return e.Data.(VarData).Name, true
}

// IsAllocation reports whether e is a malloc, calloc or realloc call.
func (e *Expr) IsAllocation() bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case ExprMalloc, ExprCalloc, ExprRealloc:
		return true
	case ExprCast:
		return e.Data.(CastData).Inner.IsAllocation()
	}
	return false
}
