package token

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hacktoolchain/internal/diag"
)

func TestTokenize_Keywords(t *testing.T) {
	toks, err := Tokenize("t.jack", []byte("class Foo { }"))
	assert.Nil(t, err)
	assert.Equal(t, []Type{Class, Ident, LBrace, RBrace, EOF}, typesOf(toks))
}

func TestTokenize_SkipsComments(t *testing.T) {
	src := `// a comment
	/* a block
	   comment */
	let x = 1;`
	toks, err := Tokenize("t.jack", []byte(src))
	assert.Nil(t, err)
	assert.Equal(t, []Type{Let, Ident, Eq, IntConst, Semi, EOF}, typesOf(toks))
}

func TestTokenize_StringLiteral(t *testing.T) {
	toks, err := Tokenize("t.jack", []byte(`"hello world"`))
	assert.Nil(t, err)
	assert.Equal(t, StrConst, toks[0].Type)
	assert.Equal(t, "hello world", toks[0].SVal)
}

func TestTokenize_IntegerLiteral(t *testing.T) {
	toks, err := Tokenize("t.jack", []byte("32767"))
	assert.Nil(t, err)
	assert.Equal(t, 32767, toks[0].IVal)
}

func TestTokenize_IntegerOutOfRange(t *testing.T) {
	_, err := Tokenize("t.jack", []byte("32768"))
	assert.Error(t, err)
	lexErr, ok := err.(*diag.LexError)
	assert.True(t, ok)
	assert.Equal(t, "integer-out-of-range", lexErr.Kind)
}

func TestTokenize_UnterminatedString(t *testing.T) {
	_, err := Tokenize("t.jack", []byte(`"unterminated`))
	assert.Error(t, err)
}

func TestTokenize_UnterminatedComment(t *testing.T) {
	_, err := Tokenize("t.jack", []byte("/* never closed"))
	assert.Error(t, err)
}

func TestTokenize_BadCharacter(t *testing.T) {
	_, err := Tokenize("t.jack", []byte("@"))
	assert.Error(t, err)
}

func TestTokenize_Division(t *testing.T) {
	toks, err := Tokenize("t.jack", []byte("a / b"))
	assert.Nil(t, err)
	assert.Equal(t, []Type{Ident, Slash, Ident, EOF}, typesOf(toks))
}

func typesOf(toks []Token) []Type {
	var out []Type
	for _, t := range toks {
		out = append(out, t.Type)
	}
	return out
}
