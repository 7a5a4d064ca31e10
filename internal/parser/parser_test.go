package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hacktoolchain/internal/ast"
	"hacktoolchain/internal/token"
)

func parse(t *testing.T, src string) *ast.Class {
	toks, err := token.Tokenize("t.jack", []byte(src))
	require.Nil(t, err)
	cls, err := Parse("t.jack", toks)
	require.Nil(t, err)
	return cls
}

func TestParseClass_Empty(t *testing.T) {
	cls := parse(t, "class Main { }")
	assert.Equal(t, "Main", cls.Name)
	assert.Empty(t, cls.Vars)
	assert.Empty(t, cls.Subroutines)
}

func TestParseClass_FieldsAndFunction(t *testing.T) {
	cls := parse(t, `
		class Square {
			field int x, y;
			static int count;

			function void main() {
				return;
			}
		}`)
	require.Len(t, cls.Vars, 2)
	assert.Equal(t, ast.Field, cls.Vars[0].Kind)
	assert.Equal(t, []string{"x", "y"}, cls.Vars[0].Names)
	assert.Equal(t, ast.Static, cls.Vars[1].Kind)
	require.Len(t, cls.Subroutines, 1)
	assert.Equal(t, ast.Function, cls.Subroutines[0].Kind)
	assert.Equal(t, "main", cls.Subroutines[0].Name)
}

// Expressions fold strictly left-to-right with no operator precedence:
// 1 + 2 * 3 must parse as (1+2)*3, never 1+(2*3).
func TestParseExpr_NoPrecedence(t *testing.T) {
	cls := parse(t, `
		class Main {
			function int main() {
				return 1 + 2 * 3;
			}
		}`)
	ret := cls.Subroutines[0].Body[0].(*ast.ReturnStmt)
	top, ok := ret.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", top.Op)
	inner, ok := top.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", inner.Op)
	assert.IsType(t, &ast.IntLit{}, inner.Left)
	assert.IsType(t, &ast.IntLit{}, inner.Right)
	assert.IsType(t, &ast.IntLit{}, top.Right)
}

func TestParseExpr_LongChainLeftFolds(t *testing.T) {
	cls := parse(t, `
		class Main {
			function int main() {
				return a + b - c + d;
			}
		}`)
	ret := cls.Subroutines[0].Body[0].(*ast.ReturnStmt)
	// ((a+b)-c)+d
	top := ret.Value.(*ast.BinaryExpr)
	assert.Equal(t, "+", top.Op)
	assert.IsType(t, &ast.VarRef{}, top.Right)
	mid := top.Left.(*ast.BinaryExpr)
	assert.Equal(t, "-", mid.Op)
	bottom := mid.Left.(*ast.BinaryExpr)
	assert.Equal(t, "+", bottom.Op)
}

func TestParseLet_ArrayAssignment(t *testing.T) {
	cls := parse(t, `
		class Main {
			function void main() {
				let a[i] = 5;
				return;
			}
		}`)
	let := cls.Subroutines[0].Body[0].(*ast.LetStmt)
	assert.Equal(t, "a", let.Name)
	assert.IsType(t, &ast.VarRef{}, let.Index)
}

func TestParseIf_WithElse(t *testing.T) {
	cls := parse(t, `
		class Main {
			function void main() {
				if (x) {
					let y = 1;
				} else {
					let y = 2;
				}
				return;
			}
		}`)
	ifs := cls.Subroutines[0].Body[0].(*ast.IfStmt)
	assert.Len(t, ifs.Then, 1)
	assert.Len(t, ifs.Else, 1)
}

func TestParseCall_QualifiedAndUnqualified(t *testing.T) {
	cls := parse(t, `
		class Main {
			function void main() {
				do draw();
				do Output.println();
				return;
			}
		}`)
	do1 := cls.Subroutines[0].Body[0].(*ast.DoStmt)
	assert.Equal(t, "", do1.Call.Receiver)
	assert.Equal(t, "draw", do1.Call.Name)
	do2 := cls.Subroutines[0].Body[1].(*ast.DoStmt)
	assert.Equal(t, "Output", do2.Call.Receiver)
	assert.Equal(t, "println", do2.Call.Name)
}

func TestParseError_MissingSemicolon(t *testing.T) {
	toks, err := token.Tokenize("t.jack", []byte(`
		class Main {
			function void main() {
				let x = 1
				return;
			}
		}`))
	require.Nil(t, err)
	_, err = Parse("t.jack", toks)
	assert.Error(t, err)
}
