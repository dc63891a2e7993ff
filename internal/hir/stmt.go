package hir

// StmtKind enumerates HIR statement kinds.
type StmtKind uint8

const (
	// StmtVarDecl declares a local: `T name = init;`.
	StmtVarDecl StmtKind = iota
	// StmtAssign assigns to a named variable: `name = value;`.
	StmtAssign
	// StmtDerefAssign writes through a pointer: `*target = value;`.
	StmtDerefAssign
	// StmtIndexAssign writes an element: `array[index] = value;`.
	StmtIndexAssign
	// StmtFieldAssign writes a field: `object.f = value;` or `object->f = value;`.
	StmtFieldAssign
	// StmtIf is a conditional with an optional else block.
	StmtIf
	// StmtWhile is a pre-tested loop.
	StmtWhile
	// StmtFor is a C for loop.
	StmtFor
	// StmtSwitch is a C switch.
	StmtSwitch
	// StmtReturn returns from the function, optionally with a value.
	StmtReturn
	// StmtBreak exits the innermost loop or switch.
	StmtBreak
	// StmtContinue jumps to the next loop iteration.
	StmtContinue
	// StmtFree releases heap memory: `free(pointer);`.
	StmtFree
	// StmtExpr evaluates an expression for its effect.
	StmtExpr
)

// String returns a human-readable name for the statement kind.
func (k StmtKind) String() string {
	switch k {
	case StmtVarDecl:
		return "VarDecl"
	case StmtAssign:
		return "Assign"
	case StmtDerefAssign:
		return "DerefAssign"
	case StmtIndexAssign:
		return "IndexAssign"
	case StmtFieldAssign:
		return "FieldAssign"
	case StmtIf:
		return "If"
	case StmtWhile:
		return "While"
	case StmtFor:
		return "For"
	case StmtSwitch:
		return "Switch"
	case StmtReturn:
		return "Return"
	case StmtBreak:
		return "Break"
	case StmtContinue:
		return "Continue"
	case StmtFree:
		return "Free"
	case StmtExpr:
		return "Expr"
	default:
		return "Unknown"
	}
}

// Stmt is an HIR statement node.
type Stmt struct {
	Kind StmtKind
	Data StmtData
}

// StmtData is implemented by every statement payload.
type StmtData interface {
	stmtData()
}

// VarDeclData holds StmtVarDecl. Init is nil for an uninitialized declaration.
type VarDeclData struct {
	Name string
	Type Type
	Init *Expr
}

// AssignData holds StmtAssign.
type AssignData struct {
	Target string
	Value  *Expr
}

// DerefAssignData holds StmtDerefAssign. Target is the pointer expression
// being written through, so `*(p + 1) = v` has Target `p + 1`.
type DerefAssignData struct {
	Target *Expr
	Value  *Expr
}

// IndexAssignData holds StmtIndexAssign.
type IndexAssignData struct {
	Array *Expr
	Index *Expr
	Value *Expr
}

// FieldAssignData holds StmtFieldAssign.
type FieldAssignData struct {
	Object  *Expr
	Field   string
	Value   *Expr
	Through bool // `->` rather than `.`
}

// IfData holds StmtIf. Else is nil when there is no else branch.
type IfData struct {
	Cond *Expr
	Then *Block
	Else *Block
}

// WhileData holds StmtWhile.
type WhileData struct {
	Cond *Expr
	Body *Block
}

// ForData holds StmtFor. Any header part may be nil.
type ForData struct {
	Init *Stmt
	Cond *Expr
	Post *Stmt
	Body *Block
}

// SwitchCase is one `case value:` arm; the body falls through as in C.
type SwitchCase struct {
	Value *Expr
	Body  []Stmt
}

// SwitchData holds StmtSwitch. Default is nil when absent.
type SwitchData struct {
	Cond    *Expr
	Cases   []SwitchCase
	Default *Block
}

// ReturnData holds StmtReturn. Value is nil for a bare return.
type ReturnData struct {
	Value *Expr
}

// FreeData holds StmtFree.
type FreeData struct {
	Pointer *Expr
}

// ExprStmtData holds StmtExpr.
type ExprStmtData struct {
	Expr *Expr
}

// BreakData holds StmtBreak.
type BreakData struct{}

// ContinueData holds StmtContinue.
type ContinueData struct{}

func (VarDeclData) stmtData()     {}
func (AssignData) stmtData()      {}
func (DerefAssignData) stmtData() {}
func (IndexAssignData) stmtData() {}
func (FieldAssignData) stmtData() {}
func (IfData) stmtData()          {}
func (WhileData) stmtData()       {}
func (ForData) stmtData()         {}
func (SwitchData) stmtData()      {}
func (ReturnData) stmtData()      {}
func (FreeData) stmtData()        {}
func (ExprStmtData) stmtData()    {}
func (BreakData) stmtData()       {}
func (ContinueData) stmtData()    {}

func Decl(name string, t Type, init *Expr) Stmt {
	return Stmt{Kind: StmtVarDecl, Data: VarDeclData{Name: name, Type: t, Init: init}}
}

func Assign(target string, value *Expr) Stmt {
	return Stmt{Kind: StmtAssign, Data: AssignData{Target: target, Value: value}}
}

func DerefAssign(target, value *Expr) Stmt {
	return Stmt{Kind: StmtDerefAssign, Data: DerefAssignData{Target: target, Value: value}}
}

func IndexAssign(array, index, value *Expr) Stmt {
	return Stmt{Kind: StmtIndexAssign, Data: IndexAssignData{Array: array, Index: index, Value: value}}
}

func FieldAssign(object *Expr, field string, value *Expr, through bool) Stmt {
	return Stmt{Kind: StmtFieldAssign, Data: FieldAssignData{Object: object, Field: field, Value: value, Through: through}}
}

// If builds an if statement; pass a nil els for no else branch.
func If(cond *Expr, then, els []Stmt) Stmt {
	data := IfData{Cond: cond, Then: NewBlock(then...)}
	if els != nil {
		data.Else = NewBlock(els...)
	}
	return Stmt{Kind: StmtIf, Data: data}
}

func While(cond *Expr, body ...Stmt) Stmt {
	return Stmt{Kind: StmtWhile, Data: WhileData{Cond: cond, Body: NewBlock(body...)}}
}

func For(init *Stmt, cond *Expr, post *Stmt, body ...Stmt) Stmt {
	return Stmt{Kind: StmtFor, Data: ForData{Init: init, Cond: cond, Post: post, Body: NewBlock(body...)}}
}

func Return(value *Expr) Stmt { return Stmt{Kind: StmtReturn, Data: ReturnData{Value: value}} }
func Free(pointer *Expr) Stmt { return Stmt{Kind: StmtFree, Data: FreeData{Pointer: pointer}} }
func ExprStmt(e *Expr) Stmt   { return Stmt{Kind: StmtExpr, Data: ExprStmtData{Expr: e}} }
func Break() Stmt             { return Stmt{Kind: StmtBreak, Data: BreakData{}} }
func Continue() Stmt          { return Stmt{Kind: StmtContinue, Data: ContinueData{}} }
