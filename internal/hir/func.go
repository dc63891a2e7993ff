package hir

// Block is an ordered statement list.
type Block struct {
	Stmts []Stmt
}

// NewBlock wraps stmts in a block.
func NewBlock(stmts ...Stmt) *Block {
	return &Block{Stmts: stmts}
}

// IsEmpty reports whether the block has no statements.
func (b *Block) IsEmpty() bool {
	return b == nil || len(b.Stmts) == 0
}

// Param is a function parameter.
type Param struct {
	Name string
	Type Type
}

// Func is a lowered C function.
type Func struct {
	Name      string
	Lifetimes []string // generic lifetime parameters, without the quote
	Result    Type
	Params    []Param
	Body      *Block
}

// NewFunc builds a function.
func NewFunc(name string, result Type, params []Param, body ...Stmt) *Func {
	return &Func{Name: name, Result: result, Params: params, Body: NewBlock(body...)}
}

// Param looks up a parameter by name.
func (f *Func) Param(name string) (Param, bool) {
	for _, p := range f.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// ParamIndex returns the position of the named parameter or -1.
func (f *Func) ParamIndex(name string) int {
	for i, p := range f.Params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Stmts returns the top-level body statements.
func (f *Func) Stmts() []Stmt {
	if f.Body == nil {
		return nil
	}
	return f.Body.Stmts
}
