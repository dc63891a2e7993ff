package hir

// WalkExpr visits e and its subexpressions in pre-order.
// Returning false from visit skips the node's children.
func WalkExpr(e *Expr, visit func(*Expr) bool) {
	if e == nil || !visit(e) {
		return
	}
	for _, child := range e.Children() {
		WalkExpr(child, visit)
	}
}

// Children returns the direct subexpressions of e.
func (e *Expr) Children() []*Expr {
	if e == nil {
		return nil
	}
	switch d := e.Data.(type) {
	case UnaryData:
		return []*Expr{d.Operand}
	case BinaryData:
		return []*Expr{d.Left, d.Right}
	case DerefData:
		return []*Expr{d.Inner}
	case AddrOfData:
		return []*Expr{d.Inner}
	case CallData:
		return d.Args
	case FieldData:
		return []*Expr{d.Object}
	case IndexData:
		return []*Expr{d.Array, d.Index}
	case CastData:
		return []*Expr{d.Inner}
	case MallocData:
		return []*Expr{d.Size}
	case CallocData:
		return []*Expr{d.Count}
	case ReallocData:
		return []*Expr{d.Pointer, d.Size}
	case MethodCallData:
		return append([]*Expr{d.Receiver}, d.Args...)
	case IsNotNullData:
		return []*Expr{d.Inner}
	case SubsliceData:
		return []*Expr{d.Array, d.From}
	}
	return nil
}

// UsesVar reports whether name is read anywhere inside e.
func UsesVar(e *Expr, name string) bool {
	found := false
	WalkExpr(e, func(x *Expr) bool {
		if found {
			return false
		}
		if n, ok := x.VarName(); ok && n == name {
			found = true
		}
		return !found
	})
	return found
}

// BaseVar names the variable a pointer-valued expression is rooted at,
// looking through casts and pointer offsets (`p`, `(T*)p`, `p + i`, `p - i`).
func BaseVar(e *Expr) (string, bool) {
	for e != nil {
		switch d := e.Data.(type) {
		case VarData:
			return d.Name, true
		case CastData:
			e = d.Inner
		case BinaryData:
			if d.Op != BinAdd && d.Op != BinSub {
				return "", false
			}
			e = d.Left
		default:
			return "", false
		}
	}
	return "", false
}

// Exprs returns the expressions owned directly by s, excluding nested statements.
func (s *Stmt) Exprs() []*Expr {
	switch d := s.Data.(type) {
	case VarDeclData:
		return []*Expr{d.Init}
	case AssignData:
		return []*Expr{d.Value}
	case DerefAssignData:
		return []*Expr{d.Target, d.Value}
	case IndexAssignData:
		return []*Expr{d.Array, d.Index, d.Value}
	case FieldAssignData:
		return []*Expr{d.Object, d.Value}
	case IfData:
		return []*Expr{d.Cond}
	case WhileData:
		return []*Expr{d.Cond}
	case ForData:
		return []*Expr{d.Cond}
	case SwitchData:
		out := []*Expr{d.Cond}
		for _, c := range d.Cases {
			out = append(out, c.Value)
		}
		return out
	case ReturnData:
		return []*Expr{d.Value}
	case FreeData:
		return []*Expr{d.Pointer}
	case ExprStmtData:
		return []*Expr{d.Expr}
	}
	return nil
}

// WalkStmts visits every statement in pre-order, descending into branches,
// loop headers and bodies, and switch arms.
func WalkStmts(stmts []Stmt, visit func(*Stmt)) {
	for i := range stmts {
		walkStmt(&stmts[i], visit)
	}
}

func walkStmt(s *Stmt, visit func(*Stmt)) {
	if s == nil {
		return
	}
	visit(s)
	switch d := s.Data.(type) {
	case IfData:
		walkBlock(d.Then, visit)
		walkBlock(d.Else, visit)
	case WhileData:
		walkBlock(d.Body, visit)
	case ForData:
		walkStmt(d.Init, visit)
		walkStmt(d.Post, visit)
		walkBlock(d.Body, visit)
	case SwitchData:
		for _, c := range d.Cases {
			WalkStmts(c.Body, visit)
		}
		walkBlock(d.Default, visit)
	}
}

func walkBlock(b *Block, visit func(*Stmt)) {
	if b != nil {
		WalkStmts(b.Stmts, visit)
	}
}
