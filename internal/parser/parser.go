// Package parser builds an internal/ast.Program from a token stream
// (SPEC_FULL.md §1). Grounded on the teacher's internal/parser Pratt-style
// shape (curToken/peekToken, nextToken, per-construct parseX methods)
// without its prefix/infix function table dispatch: this grammar has only
// postfix operators (call, index) layered on primaries, so a direct
// recursive-descent parsePrimary + parsePostfix loop is the simpler
// equivalent, matching how the pack's smaller interpreters (e.g.
// Cryguy-worker's expression parser) skip the table when precedence
// climbing isn't needed.
package parser

import (
	"fmt"
	"strconv"

	"github.com/vaelang/vael/internal/ast"
	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/lexer"
)

type Parser struct {
	file string
	l    *lexer.Lexer

	curToken  lexer.Token
	peekToken lexer.Token

	errors []*diagnostics.Error
}

func New(file string, l *lexer.Lexer) *Parser {
	p := &Parser{file: file, l: l}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) loc() diagnostics.Location {
	return diagnostics.Location{File: p.file, Line: p.curToken.Line, Col: p.curToken.Column}
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, diagnostics.New(diagnostics.KindResolution, fmt.Sprintf(format, args...)).WithLocation(p.loc()))
}

// skipNewlines consumes any run of blank lines; this grammar treats
// newlines as insignificant outside of `do` blocks' statement separators.
func (p *Parser) skipNewlines() {
	for p.curToken.Type == lexer.NEWLINE {
		p.nextToken()
	}
}

// ParseProgram parses the whole token stream. On any error, it returns the
// partial program built so far alongside the aggregated errors so the CLI
// can report all of them at once, per spec.md §7's aggregation policy.
func (p *Parser) ParseProgram() (*ast.Program, *diagnostics.Error) {
	prog := &ast.Program{File: p.file}
	p.skipNewlines()
	for p.curToken.Type != lexer.EOF {
		e := p.parseExpr()
		if e != nil {
			prog.Exprs = append(prog.Exprs, e)
		}
		p.skipNewlines()
	}
	return prog, diagnostics.Aggregate(p.errors)
}

func (p *Parser) parseExpr() ast.Expr {
	left := p.parsePrimary()
	if left == nil {
		return nil
	}
	return p.parsePostfix(left)
}

func (p *Parser) parsePostfix(left ast.Expr) ast.Expr {
	for {
		switch p.curToken.Type {
		case lexer.LPAREN:
			left = p.parseCall(left)
		case lexer.DOT:
			tok := p.curToken
			p.nextToken()
			if p.curToken.Type != lexer.IDENT {
				p.errorf("expected identifier after '.', got %s", p.curToken.Type)
				return left
			}
			field := p.curToken.Literal
			p.nextToken()
			left = &ast.Index{Token: tok, Target: left, Key: &ast.StringLit{Token: tok, Value: field}}
		case lexer.LBRACKET:
			tok := p.curToken
			p.nextToken()
			key := p.parseExpr()
			if p.curToken.Type != lexer.RBRACKET {
				p.errorf("expected ']', got %s", p.curToken.Type)
				return left
			}
			p.nextToken()
			left = &ast.Index{Token: tok, Target: left, Key: key}
		default:
			return left
		}
	}
}

func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	tok := p.curToken
	p.nextToken() // consume '('
	var args []ast.Expr
	for p.curToken.Type != lexer.RPAREN {
		if p.curToken.Type == lexer.EOF {
			p.errorf("unterminated call, expected ')'")
			return &ast.Call{Token: tok, Callee: callee, Args: args}
		}
		args = append(args, p.parseExpr())
		if p.curToken.Type == lexer.COMMA {
			p.nextToken()
		}
	}
	p.nextToken() // consume ')'
	return &ast.Call{Token: tok, Callee: callee, Args: args}
}

func (p *Parser) parsePrimary() ast.Expr {
	switch p.curToken.Type {
	case lexer.INT:
		tok := p.curToken
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.errorf("invalid integer literal %q: %v", tok.Literal, err)
		}
		p.nextToken()
		return &ast.IntLit{Token: tok, Value: v}
	case lexer.FLOAT:
		tok := p.curToken
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorf("invalid float literal %q: %v", tok.Literal, err)
		}
		p.nextToken()
		return &ast.FloatLit{Token: tok, Value: v}
	case lexer.STRING:
		tok := p.curToken
		p.nextToken()
		return &ast.StringLit{Token: tok, Value: tok.Literal}
	case lexer.TRUE, lexer.FALSE:
		tok := p.curToken
		p.nextToken()
		return &ast.BoolLit{Token: tok, Value: tok.Type == lexer.TRUE}
	case lexer.UNIT:
		tok := p.curToken
		p.nextToken()
		return &ast.UnitLit{Token: tok}
	case lexer.IDENT:
		return p.parseIdentOrLambda()
	case lexer.LPAREN:
		return p.parseParenOrLambda()
	case lexer.LBRACKET:
		return p.parseArrayLit()
	case lexer.LBRACE:
		return p.parseMapLit()
	case lexer.LET:
		return p.parseLet()
	case lexer.DO:
		return p.parseDo()
	default:
		p.errorf("unexpected token %s (%q)", p.curToken.Type, p.curToken.Literal)
		p.nextToken()
		return nil
	}
}

func (p *Parser) parseIdentOrLambda() ast.Expr {
	tok := p.curToken
	name := tok.Literal
	p.nextToken()
	if p.curToken.Type == lexer.ARROW {
		arrow := p.curToken
		p.nextToken()
		body := p.parseExpr()
		return &ast.Lambda{Token: arrow, Params: []string{name}, Body: body}
	}
	return &ast.Ident{Token: tok, Name: name}
}

// parseParenOrLambda disambiguates `(expr)` from `(p1, p2) -> body` by
// scanning forward: if the parenthesized group is followed by `->`, it's a
// lambda parameter list.
func (p *Parser) parseParenOrLambda() ast.Expr {
	lparen := p.curToken
	p.nextToken()

	if p.curToken.Type == lexer.RPAREN {
		p.nextToken()
		if p.curToken.Type == lexer.ARROW {
			p.nextToken()
			body := p.parseExpr()
			return &ast.Lambda{Token: lparen, Params: nil, Body: body}
		}
		return &ast.UnitLit{Token: lparen}
	}

	first := p.parseExpr()
	if p.curToken.Type == lexer.RPAREN {
		p.nextToken()
		if p.curToken.Type == lexer.ARROW {
			if ident, ok := first.(*ast.Ident); ok {
				p.nextToken()
				body := p.parseExpr()
				return &ast.Lambda{Token: lparen, Params: []string{ident.Name}, Body: body}
			}
			p.errorf("lambda parameter list must be identifiers")
		}
		return first
	}

	// Multi-parameter lambda: (a, b, c) -> body. Only identifiers are valid
	// here; anything else is an error since this grammar has no tuple
	// literal distinct from a parameter list.
	params := []string{}
	if ident, ok := first.(*ast.Ident); ok {
		params = append(params, ident.Name)
	} else {
		p.errorf("expected identifier in parameter list")
	}
	for p.curToken.Type == lexer.COMMA {
		p.nextToken()
		if p.curToken.Type != lexer.IDENT {
			p.errorf("expected identifier in parameter list, got %s", p.curToken.Type)
			break
		}
		params = append(params, p.curToken.Literal)
		p.nextToken()
	}
	if p.curToken.Type != lexer.RPAREN {
		p.errorf("expected ')', got %s", p.curToken.Type)
		return nil
	}
	p.nextToken()
	if p.curToken.Type != lexer.ARROW {
		p.errorf("expected '->' after parameter list, got %s", p.curToken.Type)
		return nil
	}
	p.nextToken()
	body := p.parseExpr()
	return &ast.Lambda{Token: lparen, Params: params, Body: body}
}

func (p *Parser) parseArrayLit() ast.Expr {
	tok := p.curToken
	p.nextToken()
	var items []ast.Expr
	for p.curToken.Type != lexer.RBRACKET {
		if p.curToken.Type == lexer.EOF {
			p.errorf("unterminated array literal, expected ']'")
			break
		}
		items = append(items, p.parseExpr())
		if p.curToken.Type == lexer.COMMA {
			p.nextToken()
		}
	}
	p.nextToken()
	return &ast.ArrayLit{Token: tok, Items: items}
}

func (p *Parser) parseMapLit() ast.Expr {
	tok := p.curToken
	p.nextToken()
	var entries []ast.MapEntry
	for p.curToken.Type != lexer.RBRACE {
		if p.curToken.Type == lexer.EOF {
			p.errorf("unterminated map literal, expected '}'")
			break
		}
		key := p.parseExpr()
		if p.curToken.Type != lexer.COLON {
			p.errorf("expected ':' in map literal, got %s", p.curToken.Type)
			break
		}
		p.nextToken()
		val := p.parseExpr()
		entries = append(entries, ast.MapEntry{Key: key, Value: val})
		if p.curToken.Type == lexer.COMMA {
			p.nextToken()
		}
	}
	p.nextToken()
	return &ast.MapLit{Token: tok, Entries: entries}
}

func (p *Parser) parseLet() ast.Expr {
	tok := p.curToken
	p.nextToken()
	if p.curToken.Type != lexer.IDENT {
		p.errorf("expected identifier after 'let', got %s", p.curToken.Type)
		return nil
	}
	name := p.curToken.Literal
	p.nextToken()
	if p.curToken.Type != lexer.ASSIGN {
		p.errorf("expected '=' in let-binding, got %s", p.curToken.Type)
		return nil
	}
	p.nextToken()
	value := p.parseExpr()
	return &ast.Let{Token: tok, Name: name, Value: value}
}

func (p *Parser) parseDo() ast.Expr {
	tok := p.curToken
	p.nextToken()
	p.skipNewlines()
	var body []ast.Expr
	for p.curToken.Type != lexer.END {
		if p.curToken.Type == lexer.EOF {
			p.errorf("unterminated 'do' block, expected 'end'")
			return &ast.Do{Token: tok, Body: body}
		}
		body = append(body, p.parseExpr())
		p.skipNewlines()
	}
	p.nextToken() // consume 'end'
	return &ast.Do{Token: tok, Body: body}
}
