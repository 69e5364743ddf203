package ast

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/grove-lang/grove/internal/lexer/token"
)

// Tree owns every node of a module. A NodeID is an index into Nodes and stays
// valid for the lifetime of the tree.
type Tree struct {
	Nodes []*Node
	Root  NodeID
}

func NewTree() *Tree {
	return &Tree{Root: NoNode}
}

// New allocates a detached node.
func (t *Tree) New(kind NodeKind, pos token.Pos, data any) NodeID {
	id := NodeID(len(t.Nodes))
	t.Nodes = append(t.Nodes, &Node{
		ID:     id,
		Kind:   kind,
		Pos:    pos,
		Parent: NoNode,
		Data:   data,
	})
	return id
}

func (t *Tree) NewRoot(filename string) NodeID {
	t.Root = t.New(KIND_PROGRAM, token.NewPosition(filename, 1, 1), &Program{Filename: filename})
	return t.Root
}

func (t *Tree) Get(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.Nodes) {
		return nil
	}
	return t.Nodes[id]
}

func (t *Tree) Len() int {
	return len(t.Nodes)
}

func (t *Tree) attach(parent, child NodeID) {
	node := t.Get(child)
	if node.Parent != NoNode {
		panic(fmt.Sprintf("ast: %s already has a parent", node))
	}
	node.Parent = parent
}

func (t *Tree) Append(parent, child NodeID) {
	t.attach(parent, child)
	p := t.Get(parent)
	p.Children = append(p.Children, child)
}

func (t *Tree) InsertAt(parent NodeID, index int, child NodeID) {
	t.attach(parent, child)
	p := t.Get(parent)
	p.Children = slices.Insert(p.Children, index, child)
}

// InsertAfter places child right after anchor among anchor's siblings.
func (t *Tree) InsertAfter(anchor, child NodeID) {
	parent := t.Get(anchor).Parent
	t.InsertAt(parent, t.IndexOf(anchor)+1, child)
}

// IndexOf returns the position of id among its siblings, or -1 for a root.
func (t *Tree) IndexOf(id NodeID) int {
	parent := t.Get(t.Get(id).Parent)
	if parent == nil {
		return -1
	}
	return slices.Index(parent.Children, id)
}

// FindAncestor returns the closest proper ancestor of id whose kind is one
// of kinds.
func (t *Tree) FindAncestor(id NodeID, kinds ...NodeKind) NodeID {
	for current := t.Get(id).Parent; current != NoNode; current = t.Get(current).Parent {
		if slices.Contains(kinds, t.Get(current).Kind) {
			return current
		}
	}
	return NoNode
}

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func (t *Tree) Walk(id NodeID, fn func(id NodeID) bool) {
	if !fn(id) {
		return
	}
	for _, child := range t.Get(id).Children {
		t.Walk(child, fn)
	}
}

// Copy deep-copies the subtree rooted at id. The copy is detached and
// unresolved: it carries no computed type and no side-table bindings, but
// keeps source positions and flags such as signedness.
func (t *Tree) Copy(id NodeID) NodeID {
	src := t.Get(id)
	cp := t.New(src.Kind, src.Pos, copyData(src.Data))
	t.Get(cp).Signed = src.Signed
	for _, child := range src.Children {
		t.Append(cp, t.Copy(child))
	}
	return cp
}

func copyData(data any) any {
	switch d := data.(type) {
	case nil:
		return nil
	case *Program:
		cp := *d
		return &cp
	case *ClassDecl:
		cp := *d
		return &cp
	case *MemberDecl:
		return &MemberDecl{Name: d.Name, Type: d.Type.Copy()}
	case *FuncDecl:
		return &FuncDecl{Name: d.Name, RetType: d.RetType.Copy(), NumParams: d.NumParams}
	case *ParamDecl:
		return &ParamDecl{Name: d.Name, Type: d.Type.Copy()}
	case *VarDecl:
		return &VarDecl{Name: d.Name, Type: d.Type.Copy()}
	case *InertDecl:
		cp := *d
		return &cp
	case *IdExpr:
		cp := *d
		return &cp
	case *LiteralExpr:
		cp := *d
		return &cp
	case *UnaryExpr:
		cp := *d
		return &cp
	case *BinaryExpr:
		cp := *d
		return &cp
	case *CallExpr:
		return &CallExpr{}
	case *AccessExpr:
		cp := *d
		return &cp
	default:
		panic(fmt.Sprintf("ast: can't copy payload %T", data))
	}
}
