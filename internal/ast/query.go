package ast

func (t *Tree) Child(id NodeID, index int) NodeID {
	children := t.Get(id).Children
	if index < 0 || index >= len(children) {
		return NoNode
	}
	return children[index]
}

func (t *Tree) Func(id NodeID) *FuncDecl {
	return t.Get(id).Data.(*FuncDecl)
}

// Params returns the parameter nodes of a function-like declaration.
func (t *Tree) Params(fn NodeID) []NodeID {
	return t.Get(fn).Children[:t.Func(fn).NumParams]
}

// Body returns the body block of a function-like declaration, or NoNode for
// externs.
func (t *Tree) Body(fn NodeID) NodeID {
	return t.Child(fn, t.Func(fn).NumParams)
}

// AddParam inserts a parameter at position index of fn's parameter list.
func (t *Tree) AddParam(fn NodeID, index int, param NodeID) {
	t.InsertAt(fn, index, param)
	t.Func(fn).NumParams++
}

// Initializer returns the value of a variable or member declaration, or the
// operand of a return statement.
func (t *Tree) Initializer(id NodeID) NodeID {
	return t.Child(id, 0)
}

func (t *Tree) Callee(call NodeID) NodeID {
	return t.Child(call, 0)
}

func (t *Tree) Args(call NodeID) []NodeID {
	return t.Get(call).Children[1:]
}

// IsValued reports whether the node produces a value.
func (t *Tree) IsValued(id NodeID) bool {
	node := t.Get(id)
	if node == nil {
		return false
	}
	_, ok := node.Data.(Valued)
	return ok
}

func (t *Tree) DeclaredType(id NodeID) *TypeExpr {
	if typed, ok := t.Get(id).Data.(Typed); ok {
		return typed.Declared()
	}
	return nil
}

// EndsWithReturn reports whether the last statement of block is a return.
func (t *Tree) EndsWithReturn(block NodeID) bool {
	children := t.Get(block).Children
	if len(children) == 0 {
		return false
	}
	return t.Get(children[len(children)-1]).Kind == KIND_RETURN_STMT
}
