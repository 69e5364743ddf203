package ast

import (
	"testing"

	"github.com/grove-lang/grove/internal/lexer/token"
	"github.com/grove-lang/grove/internal/types"
	"github.com/nalgeon/be"
)

func pos(line, column int) token.Pos {
	return token.NewPosition("test.grv", column, line)
}

// class Point { x: int32 = -1 }
func buildClass(t *testing.T) (*Tree, NodeID, NodeID) {
	t.Helper()
	tree := NewTree()
	root := tree.NewRoot("test.grv")

	class := tree.New(KIND_CLASS_DECL, pos(1, 1), &ClassDecl{Name: "Point"})
	tree.Append(root, class)

	member := tree.New(KIND_MEMBER_DECL, pos(1, 15), &MemberDecl{
		Name: "x",
		Type: NewBuiltinTypeExpr(types.INT32),
	})
	tree.Append(class, member)

	neg := tree.New(KIND_UNARY_EXPR, pos(1, 26), &UnaryExpr{Op: token.MINUS})
	one := tree.New(KIND_LITERAL_EXPR, pos(1, 27), &LiteralExpr{Kind: types.INT32, Int: 1})
	tree.Get(one).Signed = true
	tree.Append(neg, one)
	tree.Append(member, neg)
	return tree, class, member
}

func TestNodeKindRanges(t *testing.T) {
	be.True(t, KIND_CLASS_DECL.IsDecl())
	be.True(t, KIND_IF_STMT.IsStmt())
	be.True(t, KIND_ACCESS_EXPR.IsExpr())
	be.True(t, !KIND_PROGRAM.IsDecl())
	be.True(t, KIND_CTOR_DECL.IsFunction())
	be.True(t, KIND_EXTENSION_DECL.IsInert())
	be.True(t, !KIND_MEMBER_DECL.IsInert())
}

func TestAppendSetsParent(t *testing.T) {
	tree, class, member := buildClass(t)
	be.Equal(t, tree.Get(member).Parent, class)
	be.Equal(t, tree.Get(class).Parent, tree.Root)
	be.Equal(t, tree.IndexOf(member), 0)
	be.Equal(t, tree.IndexOf(tree.Root), -1)
	be.Equal(t, tree.Get(class).String(), "KIND_CLASS_DECL #1 (Point)")
}

func TestFindAncestor(t *testing.T) {
	tree, class, member := buildClass(t)
	literal := tree.Child(tree.Initializer(member), 0)

	be.Equal(t, tree.FindAncestor(literal, KIND_CLASS_DECL), class)
	be.Equal(t, tree.FindAncestor(literal, KIND_MEMBER_DECL, KIND_CLASS_DECL), member)
	be.Equal(t, tree.FindAncestor(literal, KIND_FUNC_DECL), NoNode)
	be.Equal(t, tree.FindAncestor(class, KIND_CLASS_DECL), NoNode)
}

func TestInsertAfter(t *testing.T) {
	tree, class, _ := buildClass(t)
	root := tree.Root
	last := tree.New(KIND_FUNC_DECL, pos(3, 1), &FuncDecl{Name: "main"})
	tree.Append(root, last)

	ctor := tree.New(KIND_CTOR_DECL, pos(1, 1), &FuncDecl{Name: "Point"})
	tree.InsertAfter(class, ctor)

	be.Equal(t, tree.Get(root).Children, []NodeID{class, ctor, last})
	be.Equal(t, tree.Get(ctor).Parent, root)
}

func TestCopyIsDeepAndUnresolved(t *testing.T) {
	tree, _, member := buildClass(t)
	value := tree.Initializer(member)
	tree.Get(value).State = RESOLVED
	tree.Get(value).Type = types.NewBuiltin(types.INT32)

	cp := tree.Copy(value)
	copied := tree.Get(cp)

	be.True(t, cp != value)
	be.Equal(t, copied.Kind, KIND_UNARY_EXPR)
	be.Equal(t, copied.State, UNRESOLVED)
	be.True(t, copied.Type == nil)
	be.Equal(t, copied.Parent, NoNode)
	be.Equal(t, len(copied.Children), 1)

	literal := tree.Get(copied.Children[0])
	original := tree.Get(tree.Child(value, 0))
	be.True(t, literal.ID != original.ID)
	be.True(t, literal.Signed)
	be.Equal(t, literal.Data.(*LiteralExpr).Int, uint64(1))

	literal.Data.(*LiteralExpr).Int = 7
	be.Equal(t, original.Data.(*LiteralExpr).Int, uint64(1))
}

func TestCopyDoesNotShareTypeExpr(t *testing.T) {
	tree, _, member := buildClass(t)
	cp := tree.Copy(member)

	tree.DeclaredType(cp).Builtin = types.INT64
	be.Equal(t, tree.DeclaredType(member).Builtin, types.INT32)
}

func TestFunctionChildren(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("test.grv")
	fn := tree.New(KIND_FUNC_DECL, pos(1, 1), &FuncDecl{Name: "add"})
	tree.Append(root, fn)
	a := tree.New(KIND_PARAM, pos(1, 9), &ParamDecl{Name: "a", Type: NewBuiltinTypeExpr(types.INT32)})
	tree.AddParam(fn, 0, a)
	body := tree.New(KIND_BLOCK_STMT, pos(1, 20), nil)
	tree.Append(fn, body)

	this := tree.New(KIND_PARAM, pos(1, 1), &ParamDecl{Name: "this"})
	tree.AddParam(fn, 0, this)

	be.Equal(t, tree.Params(fn), []NodeID{this, a})
	be.Equal(t, tree.Body(fn), body)
	be.True(t, !tree.EndsWithReturn(body))

	ret := tree.New(KIND_RETURN_STMT, pos(2, 1), nil)
	tree.Append(body, ret)
	be.True(t, tree.EndsWithReturn(body))
}

func TestIsValued(t *testing.T) {
	tree, class, member := buildClass(t)
	be.True(t, tree.IsValued(tree.Initializer(member)))
	be.True(t, !tree.IsValued(class))
	be.True(t, !tree.IsValued(NoNode))
}
