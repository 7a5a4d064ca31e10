package vm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_BasicProgram(t *testing.T) {
	src := `// a comment
push constant 7
push constant 8
add
pop local 0
`
	insns, err := Parse("Main", strings.NewReader(src))
	require.Nil(t, err)
	require.Len(t, insns, 4)
	assert.Equal(t, Push, insns[0].Op)
	assert.Equal(t, Constant, insns[0].Seg)
	assert.Equal(t, 7, insns[0].Index)
	assert.Equal(t, Add, insns[2].Op)
	assert.Equal(t, Pop, insns[3].Op)
	assert.Equal(t, Local, insns[3].Seg)
}

func TestParse_BlankLinesIgnored(t *testing.T) {
	insns, err := Parse("Main", strings.NewReader("\n\npush constant 1\n\n"))
	require.Nil(t, err)
	assert.Len(t, insns, 1)
}

func TestParse_FunctionCallReturn(t *testing.T) {
	src := `function Main.main 0
call Math.multiply 2
return`
	insns, err := Parse("Main", strings.NewReader(src))
	require.Nil(t, err)
	require.Len(t, insns, 3)
	assert.Equal(t, Function, insns[0].Op)
	assert.Equal(t, "Main.main", insns[0].Name)
	assert.Equal(t, Call, insns[1].Op)
	assert.Equal(t, 2, insns[1].Arg)
	assert.Equal(t, Return, insns[2].Op)
}

func TestParse_BadSegmentName(t *testing.T) {
	_, err := Parse("Main", strings.NewReader("push bogus 0"))
	assert.Error(t, err)
}

func TestRoundTrip_ParsePrint(t *testing.T) {
	src := "push constant 7\npush constant 8\nadd\npop local 0\n"
	insns, err := Parse("Main", strings.NewReader(src))
	require.Nil(t, err)
	printed := Print(insns)
	reparsed, err := Parse("Main", strings.NewReader(printed))
	require.Nil(t, err)
	require.Equal(t, len(insns), len(reparsed))
	for i := range insns {
		assert.Equal(t, insns[i].Op, reparsed[i].Op)
		assert.Equal(t, insns[i].Seg, reparsed[i].Seg)
		assert.Equal(t, insns[i].Index, reparsed[i].Index)
	}
}
