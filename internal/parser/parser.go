// Package parser implements the Jack recursive-descent parser. Its
// expect/advance/fail idiom is grounded on compiler/parser.go's
// Parser{currentTokenPos, currentTokens}/expectToken/hasRemainTokens/
// stepForward/makeError shape, but expression parsing deliberately does NOT
// reproduce compiler/internal/expression.go's buildExpressionsTree0, which
// builds an operator-priority tree. Binary operator chains here fold
// strictly left-to-right: parseExpr loops flatly, there is no climbing.
package parser

import (
	"hacktoolchain/internal/ast"
	"hacktoolchain/internal/diag"
	"hacktoolchain/internal/token"
)

type Parser struct {
	toks []token.Token
	pos  int
	file string
}

func New(file string, toks []token.Token) *Parser {
	return &Parser{toks: toks, pos: 0, file: file}
}

// Parse parses one full class from the token stream.
func Parse(file string, toks []token.Token) (*ast.Class, error) {
	return New(file, toks).ParseClass()
}

func (p *Parser) cur() token.Token { return p.toks[p.pos] }

func (p *Parser) curSpan() diag.Span { return p.cur().Span }

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos+n]
}

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) fail(expected string) error {
	return &diag.ParseError{Span: p.curSpan(), Expected: expected, Got: p.cur().String()}
}

func (p *Parser) expect(tp token.Type, expected string) (token.Token, error) {
	if p.cur().Type != tp {
		return token.Token{}, p.fail(expected)
	}
	return p.advance(), nil
}

func (p *Parser) expectIdent() (string, diag.Span, error) {
	if p.cur().Type != token.Ident {
		return "", diag.Span{}, p.fail("identifier")
	}
	t := p.advance()
	return t.Text, t.Span, nil
}

func isTypeToken(tp token.Type) bool {
	switch tp {
	case token.Int, token.Char, token.Boolean, token.Ident:
		return true
	}
	return false
}

func (p *Parser) expectType() (string, error) {
	if !isTypeToken(p.cur().Type) {
		return "", p.fail("type")
	}
	t := p.advance()
	return t.Text, nil
}

// ParseClass parses "class Id { classVarDec* subroutine* }".
func (p *Parser) ParseClass() (*ast.Class, error) {
	start := p.curSpan()
	if _, err := p.expect(token.Class, "'class'"); err != nil {
		return nil, err
	}
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return nil, err
	}
	cls := &ast.Class{Name: name, Span: start}
	for p.cur().Type == token.Static || p.cur().Type == token.Field {
		dec, err := p.parseClassVarDec()
		if err != nil {
			return nil, err
		}
		cls.Vars = append(cls.Vars, *dec)
	}
	for p.cur().Type == token.Constructor || p.cur().Type == token.Function || p.cur().Type == token.Method {
		sub, err := p.parseSubroutine(name)
		if err != nil {
			return nil, err
		}
		cls.Subroutines = append(cls.Subroutines, *sub)
	}
	if _, err := p.expect(token.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return cls, nil
}

func (p *Parser) parseClassVarDec() (*ast.VarDec, error) {
	start := p.curSpan()
	kind := ast.Static
	if p.cur().Type == token.Field {
		kind = ast.Field
	}
	p.advance()
	typ, err := p.expectType()
	if err != nil {
		return nil, err
	}
	names, err := p.parseNameList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi, "';'"); err != nil {
		return nil, err
	}
	return &ast.VarDec{Kind: kind, Type: typ, Names: names, Span: start}, nil
}

func (p *Parser) parseNameList() ([]string, error) {
	first, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	names := []string{first}
	for p.cur().Type == token.Comma {
		p.advance()
		next, _, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		names = append(names, next)
	}
	return names, nil
}

func (p *Parser) parseSubroutine(className string) (*ast.Subroutine, error) {
	start := p.curSpan()
	var kind ast.SubroutineKind
	switch p.cur().Type {
	case token.Constructor:
		kind = ast.Constructor
	case token.Function:
		kind = ast.Function
	case token.Method:
		kind = ast.Method
	}
	p.advance()
	var retType string
	if p.cur().Type == token.Void {
		retType = "void"
		p.advance()
	} else {
		t, err := p.expectType()
		if err != nil {
			return nil, err
		}
		retType = t
	}
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen, "'('"); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return nil, err
	}
	var locals []ast.VarDec
	for p.cur().Type == token.Var {
		dec, err := p.parseVarDec()
		if err != nil {
			return nil, err
		}
		locals = append(locals, *dec)
	}
	body, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return &ast.Subroutine{Kind: kind, RetType: retType, Name: name, Params: params, Locals: locals, Body: body, Span: start}, nil
}

func (p *Parser) parseParamList() ([]ast.Param, error) {
	var params []ast.Param
	if p.cur().Type == token.RParen {
		return params, nil
	}
	for {
		typ, err := p.expectType()
		if err != nil {
			return nil, err
		}
		name, span, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Type: typ, Name: name, Span: span})
		if p.cur().Type != token.Comma {
			break
		}
		p.advance()
	}
	return params, nil
}

func (p *Parser) parseVarDec() (*ast.VarDec, error) {
	start := p.curSpan()
	if _, err := p.expect(token.Var, "'var'"); err != nil {
		return nil, err
	}
	typ, err := p.expectType()
	if err != nil {
		return nil, err
	}
	names, err := p.parseNameList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi, "';'"); err != nil {
		return nil, err
	}
	return &ast.VarDec{Kind: ast.Local, Type: typ, Names: names, Span: start}, nil
}

func isStatementStart(tp token.Type) bool {
	switch tp {
	case token.Let, token.If, token.While, token.Do, token.Return:
		return true
	}
	return false
}

func (p *Parser) parseStatements() ([]ast.Statement, error) {
	var stmts []ast.Statement
	for isStatementStart(p.cur().Type) {
		st, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur().Type {
	case token.Let:
		return p.parseLet()
	case token.If:
		return p.parseIf()
	case token.While:
		return p.parseWhile()
	case token.Do:
		return p.parseDo()
	case token.Return:
		return p.parseReturn()
	default:
		return nil, p.fail("statement")
	}
}

func (p *Parser) parseLet() (ast.Statement, error) {
	start := p.curSpan()
	p.advance() // 'let'
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var index ast.Expr
	if p.cur().Type == token.LBracket {
		p.advance()
		index, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBracket, "']'"); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Eq, "'='"); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi, "';'"); err != nil {
		return nil, err
	}
	return ast.NewLetStmt(name, index, value, start), nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	start := p.curSpan()
	p.advance() // 'if'
	if _, err := p.expect(token.LParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return nil, err
	}
	then, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBrace, "'}'"); err != nil {
		return nil, err
	}
	var els []ast.Statement
	if p.cur().Type == token.Else {
		p.advance()
		if _, err := p.expect(token.LBrace, "'{'"); err != nil {
			return nil, err
		}
		els, err = p.parseStatements()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBrace, "'}'"); err != nil {
			return nil, err
		}
	}
	return ast.NewIfStmt(cond, then, els, start), nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	start := p.curSpan()
	p.advance() // 'while'
	if _, err := p.expect(token.LParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return nil, err
	}
	body, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return ast.NewWhileStmt(cond, body, start), nil
}

func (p *Parser) parseDo() (ast.Statement, error) {
	start := p.curSpan()
	p.advance() // 'do'
	call, err := p.parseCall()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi, "';'"); err != nil {
		return nil, err
	}
	return ast.NewDoStmt(call, start), nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	start := p.curSpan()
	p.advance() // 'return'
	var val ast.Expr
	if p.cur().Type != token.Semi {
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		val = v
	}
	if _, err := p.expect(token.Semi, "';'"); err != nil {
		return nil, err
	}
	return ast.NewReturnStmt(val, start), nil
}

func isBinaryOp(tp token.Type) bool {
	switch tp {
	case token.Plus, token.Minus, token.Star, token.Slash, token.Amp, token.Pipe, token.Lt, token.Gt, token.Eq:
		return true
	}
	return false
}

// parseExpr implements "term (op term)*" by folding strictly left to right:
// a+b*c becomes BinaryExpr{*, BinaryExpr{+, a, b}, c}, never a priority tree.
func (p *Parser) parseExpr() (ast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for isBinaryOp(p.cur().Type) {
		opTok := p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(opTok.Text, left, right, opTok.Span)
	}
	return left, nil
}

func isKeywordConst(tp token.Type) bool {
	switch tp {
	case token.True, token.False, token.Null, token.This:
		return true
	}
	return false
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	start := p.curSpan()
	switch {
	case p.cur().Type == token.IntConst:
		t := p.advance()
		return ast.NewIntLit(t.IVal, start), nil
	case p.cur().Type == token.StrConst:
		t := p.advance()
		return ast.NewStrLit(t.SVal, start), nil
	case isKeywordConst(p.cur().Type):
		t := p.advance()
		return ast.NewKeywordConst(t.Text, start), nil
	case p.cur().Type == token.LParen:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case p.cur().Type == token.Minus || p.cur().Type == token.Tilde:
		opTok := p.advance()
		operand, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpr(opTok.Text, operand, start), nil
	case p.cur().Type == token.Ident:
		return p.parseIdentTerm()
	default:
		return nil, p.fail("expression")
	}
}

// parseIdentTerm distinguishes id, id[expr], id(args), id.id(args) using
// peek-1 lookahead on the token after the identifier.
func (p *Parser) parseIdentTerm() (ast.Expr, error) {
	start := p.curSpan()
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	switch p.cur().Type {
	case token.LBracket:
		p.advance()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBracket, "']'"); err != nil {
			return nil, err
		}
		return ast.NewIndexExpr(name, idx, start), nil
	case token.LParen:
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return ast.NewCallExpr("", name, args, start), nil
	case token.Dot:
		p.advance()
		method, _, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return ast.NewCallExpr(name, method, args, start), nil
	default:
		return ast.NewVarRef(name, start), nil
	}
}

// parseCall parses a bare subroutine call (the target of a "do" statement).
func (p *Parser) parseCall() (*ast.CallExpr, error) {
	start := p.curSpan()
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if p.cur().Type == token.Dot {
		p.advance()
		method, _, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return ast.NewCallExpr(name, method, args, start), nil
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	return ast.NewCallExpr("", name, args, start), nil
}

func (p *Parser) parseArgs() ([]ast.Expr, error) {
	if _, err := p.expect(token.LParen, "'('"); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if p.cur().Type != token.RParen {
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, e)
			if p.cur().Type != token.Comma {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}
