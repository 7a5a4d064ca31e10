package asmgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hacktoolchain/internal/vm"
)

func linesOf(g *Gen) []string {
	return strings.Split(strings.TrimRight(g.Output(), "\n"), "\n")
}

func TestGenerate_PushConstant(t *testing.T) {
	g := New()
	err := g.Generate("Main", []vm.Insn{{Op: vm.Push, Seg: vm.Constant, Index: 7}})
	require.Nil(t, err)
	lines := linesOf(g)
	assert.Contains(t, lines, "@7")
	assert.Contains(t, lines, "D=A")
	assert.Contains(t, lines, "@SP")
	assert.Contains(t, lines, "M=D")
	assert.Contains(t, lines, "M=M+1")
}

func TestGenerate_PopLocalUsesR13Staging(t *testing.T) {
	g := New()
	err := g.Generate("Main", []vm.Insn{{Op: vm.Pop, Seg: vm.Local, Index: 2}})
	require.Nil(t, err)
	lines := linesOf(g)
	assert.Contains(t, lines, "@R13")
}

func TestGenerate_StaticUsesFileNamespace(t *testing.T) {
	g := New()
	err := g.Generate("Foo", []vm.Insn{{Op: vm.Push, Seg: vm.Static, Index: 3}})
	require.Nil(t, err)
	assert.Contains(t, linesOf(g), "@Foo.3")
}

func TestGenerate_TempOutOfRangeErrors(t *testing.T) {
	g := New()
	err := g.Generate("Main", []vm.Insn{{Op: vm.Push, Seg: vm.Temp, Index: 8}})
	assert.Error(t, err)
}

func TestGenerate_LabelScopedByFunction(t *testing.T) {
	g := New()
	insns := []vm.Insn{
		{Op: vm.Function, Name: "Main.main", Arg: 0},
		{Op: vm.Label, Label: "LOOP"},
		{Op: vm.Goto, Label: "LOOP"},
	}
	err := g.Generate("Main", insns)
	require.Nil(t, err)
	lines := linesOf(g)
	assert.Contains(t, lines, "(Main.main$LOOP)")
	assert.Contains(t, lines, "@Main.main$LOOP")
}

// E6 — NestedCall bootstrap: directory translation emits, as the first
// lines, @256/D=A/@SP/M=D/.../@Sys.init/0;JMP, followed by the call's
// return label.
func TestBootstrap_E6(t *testing.T) {
	g := New()
	g.Bootstrap()
	lines := linesOf(g)
	assert.Equal(t, "@256", lines[1])
	assert.Equal(t, "D=A", lines[2])
	assert.Equal(t, "@SP", lines[3])
	assert.Equal(t, "M=D", lines[4])
	assert.Equal(t, "@Sys.init", lines[len(lines)-3])
	assert.Equal(t, "0;JMP", lines[len(lines)-2])
}

func TestGenerate_CallEmitsReturnLabel(t *testing.T) {
	g := New()
	err := g.Generate("Main", []vm.Insn{{Op: vm.Call, Name: "Math.multiply", Arg: 2}})
	require.Nil(t, err)
	lines := linesOf(g)
	assert.Contains(t, lines, "@Math.multiply")
	assert.Contains(t, lines, "(RET_0)")
}

func TestGenerate_ReturnRestoresAllFour(t *testing.T) {
	g := New()
	err := g.Generate("Main", []vm.Insn{{Op: vm.Return}})
	require.Nil(t, err)
	lines := linesOf(g)
	for _, reg := range []string{"@THAT", "@THIS", "@ARG", "@LCL"} {
		assert.Contains(t, lines, reg)
	}
}
