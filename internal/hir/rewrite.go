package hir

// Rewriter produces a rewritten copy of a function body. The input is never
// modified: every visited node is rebuilt before the hooks see it.
type Rewriter struct {
	// Expr is applied bottom-up to every expression after its children are rewritten.
	Expr func(*Expr) *Expr
	// Stmt is applied to every statement after its expressions and nested blocks are rewritten.
	Stmt func(Stmt) Stmt
}

// Block rewrites b.
func (r *Rewriter) Block(b *Block) *Block {
	if b == nil {
		return nil
	}
	return &Block{Stmts: r.Stmts(b.Stmts)}
}

// Stmts rewrites a statement list.
func (r *Rewriter) Stmts(stmts []Stmt) []Stmt {
	if stmts == nil {
		return nil
	}
	out := make([]Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = r.stmt(s)
	}
	return out
}

func (r *Rewriter) stmt(s Stmt) Stmt {
	switch d := s.Data.(type) {
	case VarDeclData:
		d.Init = r.Rewrite(d.Init)
		s.Data = d
	case AssignData:
		d.Value = r.Rewrite(d.Value)
		s.Data = d
	case DerefAssignData:
		d.Target = r.Rewrite(d.Target)
		d.Value = r.Rewrite(d.Value)
		s.Data = d
	case IndexAssignData:
		d.Array = r.Rewrite(d.Array)
		d.Index = r.Rewrite(d.Index)
		d.Value = r.Rewrite(d.Value)
		s.Data = d
	case FieldAssignData:
		d.Object = r.Rewrite(d.Object)
		d.Value = r.Rewrite(d.Value)
		s.Data = d
	case IfData:
		d.Cond = r.Rewrite(d.Cond)
		d.Then = r.Block(d.Then)
		d.Else = r.Block(d.Else)
		s.Data = d
	case WhileData:
		d.Cond = r.Rewrite(d.Cond)
		d.Body = r.Block(d.Body)
		s.Data = d
	case ForData:
		if d.Init != nil {
			init := r.stmt(*d.Init)
			d.Init = &init
		}
		d.Cond = r.Rewrite(d.Cond)
		if d.Post != nil {
			post := r.stmt(*d.Post)
			d.Post = &post
		}
		d.Body = r.Block(d.Body)
		s.Data = d
	case SwitchData:
		d.Cond = r.Rewrite(d.Cond)
		cases := make([]SwitchCase, len(d.Cases))
		for i, c := range d.Cases {
			cases[i] = SwitchCase{Value: r.Rewrite(c.Value), Body: r.Stmts(c.Body)}
		}
		d.Cases = cases
		d.Default = r.Block(d.Default)
		s.Data = d
	case ReturnData:
		d.Value = r.Rewrite(d.Value)
		s.Data = d
	case FreeData:
		d.Pointer = r.Rewrite(d.Pointer)
		s.Data = d
	case ExprStmtData:
		d.Expr = r.Rewrite(d.Expr)
		s.Data = d
	}
	if r.Stmt != nil {
		s = r.Stmt(s)
	}
	return s
}

// Rewrite returns a rewritten copy of e.
func (r *Rewriter) Rewrite(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	out := &Expr{Kind: e.Kind, Data: e.Data}
	switch d := e.Data.(type) {
	case UnaryData:
		d.Operand = r.Rewrite(d.Operand)
		out.Data = d
	case BinaryData:
		d.Left = r.Rewrite(d.Left)
		d.Right = r.Rewrite(d.Right)
		out.Data = d
	case DerefData:
		d.Inner = r.Rewrite(d.Inner)
		out.Data = d
	case AddrOfData:
		d.Inner = r.Rewrite(d.Inner)
		out.Data = d
	case CallData:
		d.Args = r.rewriteAll(d.Args)
		out.Data = d
	case FieldData:
		d.Object = r.Rewrite(d.Object)
		out.Data = d
	case IndexData:
		d.Array = r.Rewrite(d.Array)
		d.Index = r.Rewrite(d.Index)
		out.Data = d
	case CastData:
		d.Inner = r.Rewrite(d.Inner)
		out.Data = d
	case MallocData:
		d.Size = r.Rewrite(d.Size)
		out.Data = d
	case CallocData:
		d.Count = r.Rewrite(d.Count)
		out.Data = d
	case ReallocData:
		d.Pointer = r.Rewrite(d.Pointer)
		d.Size = r.Rewrite(d.Size)
		out.Data = d
	case MethodCallData:
		d.Receiver = r.Rewrite(d.Receiver)
		d.Args = r.rewriteAll(d.Args)
		out.Data = d
	case IsNotNullData:
		d.Inner = r.Rewrite(d.Inner)
		out.Data = d
	case SubsliceData:
		d.Array = r.Rewrite(d.Array)
		d.From = r.Rewrite(d.From)
		out.Data = d
	}
	if r.Expr != nil {
		out = r.Expr(out)
	}
	return out
}

func (r *Rewriter) rewriteAll(es []*Expr) []*Expr {
	if es == nil {
		return nil
	}
	out := make([]*Expr, len(es))
	for i, e := range es {
		out[i] = r.Rewrite(e)
	}
	return out
}
