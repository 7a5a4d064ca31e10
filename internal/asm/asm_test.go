package asm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble_AInstructionConstant(t *testing.T) {
	out, err := Assemble("t.asm", "@7")
	require.Nil(t, err)
	assert.Equal(t, "0000000000000111\n", out)
}

func TestAssemble_CInstructionDestCompJump(t *testing.T) {
	out, err := Assemble("t.asm", "D=A")
	require.Nil(t, err)
	assert.Equal(t, "1110110000010000\n", out)
}

func TestAssemble_JumpOnly(t *testing.T) {
	out, err := Assemble("t.asm", "0;JMP")
	require.Nil(t, err)
	assert.Equal(t, "1110101010000111\n", out)
}

func TestAssemble_LabelResolution(t *testing.T) {
	src := "(LOOP)\n@LOOP\n0;JMP\n"
	out, err := Assemble("t.asm", src)
	require.Nil(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "0000000000000000", lines[0]) // @LOOP resolves to address 0
}

func TestAssemble_VariableAllocationStartsAt16(t *testing.T) {
	out, err := Assemble("t.asm", "@foo\n@bar\n@foo\n")
	require.Nil(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "0000000000010000", lines[0]) // first variable at RAM 16
	assert.Equal(t, lines[0], lines[2])           // same variable, same address
	assert.NotEqual(t, lines[0], lines[1])
}

func TestAssemble_PredefinedSymbol(t *testing.T) {
	out, err := Assemble("t.asm", "@SCREEN")
	require.Nil(t, err)
	assert.Equal(t, "0100000000000000\n", out)
}

func TestAssemble_CommentsAndBlankLinesIgnored(t *testing.T) {
	out, err := Assemble("t.asm", "// header\n\n@1 // inline\n")
	require.Nil(t, err)
	assert.Equal(t, "0000000000000001\n", out)
}

func TestAssemble_BadCompMnemonic(t *testing.T) {
	_, err := Assemble("t.asm", "D=Q")
	assert.Error(t, err)
}
