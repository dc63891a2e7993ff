// Package fixture reads functions in a YAML form of the HIR.
//
// A fixture file lists functions:
//
//	functions:
//	  - name: sum
//	    returns: int
//	    params:
//	      - {name: arr, type: "int*"}
//	      - {name: len, type: int}
//	    body:
//	      - decl: {name: total, type: int, init: {int: 0}}
//	      - return: {var: total}
//
// Every statement and expression node is a mapping with exactly one key
// naming its kind. Types use C spelling ("int*", "const char*", "int[10]")
// or the safe spelling ("&[i32]", "Box<i32>").
package fixture

// File is the top-level fixture document.
type File struct {
	Functions []FuncNode `yaml:"functions"`
}

type FuncNode struct {
	Name    string      `yaml:"name"`
	Returns string      `yaml:"returns"`
	Params  []ParamNode `yaml:"params"`
	Body    []StmtNode  `yaml:"body"`
}

type ParamNode struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type StmtNode struct {
	Decl        *DeclNode        `yaml:"decl"`
	Assign      *AssignNode      `yaml:"assign"`
	DerefAssign *DerefAssignNode `yaml:"deref_assign"`
	IndexAssign *IndexAssignNode `yaml:"index_assign"`
	FieldAssign *FieldAssignNode `yaml:"field_assign"`
	If          *IfNode          `yaml:"if"`
	While       *WhileNode       `yaml:"while"`
	For         *ForNode         `yaml:"for"`
	Switch      *SwitchNode      `yaml:"switch"`
	Return      *ReturnNode      `yaml:"return"`
	Free        *ExprNode        `yaml:"free"`
	Expr        *ExprNode        `yaml:"expr"`
	Break       bool             `yaml:"break"`
	Continue    bool             `yaml:"continue"`
}

type DeclNode struct {
	Name string    `yaml:"name"`
	Type string    `yaml:"type"`
	Init *ExprNode `yaml:"init"`
}

type AssignNode struct {
	Target string    `yaml:"target"`
	Value  *ExprNode `yaml:"value"`
}

type DerefAssignNode struct {
	Target *ExprNode `yaml:"target"`
	Value  *ExprNode `yaml:"value"`
}

type IndexAssignNode struct {
	Array *ExprNode `yaml:"array"`
	Index *ExprNode `yaml:"index"`
	Value *ExprNode `yaml:"value"`
}

type FieldAssignNode struct {
	Object *ExprNode `yaml:"object"`
	Field  string    `yaml:"field"`
	Value  *ExprNode `yaml:"value"`
	Arrow  bool      `yaml:"arrow"`
}

type IfNode struct {
	Cond *ExprNode  `yaml:"cond"`
	Then []StmtNode `yaml:"then"`
	Else []StmtNode `yaml:"else"`
}

type WhileNode struct {
	Cond *ExprNode  `yaml:"cond"`
	Body []StmtNode `yaml:"body"`
}

type ForNode struct {
	Init *StmtNode  `yaml:"init"`
	Cond *ExprNode  `yaml:"cond"`
	Post *StmtNode  `yaml:"post"`
	Body []StmtNode `yaml:"body"`
}

type SwitchNode struct {
	Cond    *ExprNode  `yaml:"cond"`
	Cases   []CaseNode `yaml:"cases"`
	Default []StmtNode `yaml:"default"`
}

type CaseNode struct {
	Value *ExprNode  `yaml:"value"`
	Body  []StmtNode `yaml:"body"`
}

// ReturnNode wraps the optional value so `return: {}` is a bare return.
type ReturnNode struct {
	ExprNode `yaml:",inline"`
}

type ExprNode struct {
	Int     *int64       `yaml:"int"`
	String  *string      `yaml:"string"`
	Char    *string      `yaml:"char"`
	NullPtr bool         `yaml:"null_ptr"`
	Var     string       `yaml:"var"`
	Unary   *UnaryNode   `yaml:"unary"`
	Binary  *BinaryNode  `yaml:"binary"`
	Deref   *ExprNode    `yaml:"deref"`
	AddrOf  *ExprNode    `yaml:"addr_of"`
	Call    *CallNode    `yaml:"call"`
	Field   *FieldNode   `yaml:"field"`
	Index   *IndexNode   `yaml:"index"`
	Cast    *CastNode    `yaml:"cast"`
	Sizeof  string       `yaml:"sizeof"`
	Malloc  *ExprNode    `yaml:"malloc"`
	Calloc  *CallocNode  `yaml:"calloc"`
	Realloc *ReallocNode `yaml:"realloc"`
	NotNull *ExprNode    `yaml:"not_null"`
	Method  *MethodNode  `yaml:"method"`
}

type UnaryNode struct {
	Op      string    `yaml:"op"`
	Operand *ExprNode `yaml:"operand"`
}

type BinaryNode struct {
	Op    string    `yaml:"op"`
	Left  *ExprNode `yaml:"left"`
	Right *ExprNode `yaml:"right"`
}

type CallNode struct {
	Func string     `yaml:"func"`
	Args []ExprNode `yaml:"args"`
}

type FieldNode struct {
	Object *ExprNode `yaml:"object"`
	Name   string    `yaml:"name"`
	Arrow  bool      `yaml:"arrow"`
}

type IndexNode struct {
	Array *ExprNode `yaml:"array"`
	Index *ExprNode `yaml:"index"`
}

type CastNode struct {
	Type string    `yaml:"type"`
	Expr *ExprNode `yaml:"expr"`
}

type CallocNode struct {
	Count *ExprNode `yaml:"count"`
	Type  string    `yaml:"type"`
}

type ReallocNode struct {
	Pointer *ExprNode `yaml:"pointer"`
	Size    *ExprNode `yaml:"size"`
}

type MethodNode struct {
	Receiver *ExprNode  `yaml:"receiver"`
	Name     string     `yaml:"name"`
	Args     []ExprNode `yaml:"args"`
}
