// Package ast defines the node types produced by internal/parser for
// vael's minimal script language (SPEC_FULL.md §1): literals, lists, maps,
// identifiers, let-bindings, calls, lambdas, and do blocks.
//
// Grounded on the shape of the teacher's internal/ast (a Node interface,
// separate Statement/Expression marker interfaces, one struct per
// construct carrying its originating lexer.Token for diagnostics), without
// its Visitor dispatch — this language is small enough that the
// evaluator's own type switch (internal/evaluator) is the simpler,
// equally idiomatic choice, matching how the wider pack's smaller
// tree-walkers (e.g. Cryguy-worker's expression evaluator) dispatch.
package ast

import "github.com/vaelang/vael/internal/lexer"

// Node is the base interface every AST node satisfies.
type Node interface {
	Tok() lexer.Token
}

// Expr is any expression node; this language has no separate statement
// grammar — a `do` block's body is a sequence of expressions evaluated for
// their side effects, with the last one as its result.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of a parsed script.
type Program struct {
	File  string
	Exprs []Expr
}

func (p *Program) Tok() lexer.Token {
	if len(p.Exprs) == 0 {
		return lexer.Token{}
	}
	return p.Exprs[0].Tok()
}

type Ident struct {
	Token lexer.Token
	Name  string
}

func (i *Ident) Tok() lexer.Token { return i.Token }
func (*Ident) exprNode()          {}

type IntLit struct {
	Token lexer.Token
	Value int64
}

func (l *IntLit) Tok() lexer.Token { return l.Token }
func (*IntLit) exprNode()          {}

type FloatLit struct {
	Token lexer.Token
	Value float64
}

func (l *FloatLit) Tok() lexer.Token { return l.Token }
func (*FloatLit) exprNode()          {}

type StringLit struct {
	Token lexer.Token
	Value string
}

func (l *StringLit) Tok() lexer.Token { return l.Token }
func (*StringLit) exprNode()          {}

type BoolLit struct {
	Token lexer.Token
	Value bool
}

func (l *BoolLit) Tok() lexer.Token { return l.Token }
func (*BoolLit) exprNode()          {}

type UnitLit struct {
	Token lexer.Token
}

func (l *UnitLit) Tok() lexer.Token { return l.Token }
func (*UnitLit) exprNode()          {}

// ArrayLit is a `[a, b, c]` literal.
type ArrayLit struct {
	Token lexer.Token
	Items []Expr
}

func (l *ArrayLit) Tok() lexer.Token { return l.Token }
func (*ArrayLit) exprNode()          {}

// MapEntry is one `key: value` pair of a MapLit.
type MapEntry struct {
	Key   Expr
	Value Expr
}

// MapLit is a `{k1: v1, k2: v2}` literal.
type MapLit struct {
	Token   lexer.Token
	Entries []MapEntry
}

func (l *MapLit) Tok() lexer.Token { return l.Token }
func (*MapLit) exprNode()          {}

// Let is `let name = value` — binds name for the remainder of the
// enclosing do-block/program.
type Let struct {
	Token lexer.Token
	Name  string
	Value Expr
}

func (l *Let) Tok() lexer.Token { return l.Token }
func (*Let) exprNode()          {}

// Lambda is `(p1, p2) -> body`.
type Lambda struct {
	Token  lexer.Token
	Params []string
	Body   Expr
}

func (l *Lambda) Tok() lexer.Token { return l.Token }
func (*Lambda) exprNode()          {}

// Call is `callee(arg1, arg2)`.
type Call struct {
	Token  lexer.Token
	Callee Expr
	Args   []Expr
}

func (c *Call) Tok() lexer.Token { return c.Token }
func (*Call) exprNode()          {}

// Do is a `do ... end` block: a sequence of expressions, each possibly a
// Let, evaluated in order, whose value is its last expression's value.
type Do struct {
	Token lexer.Token
	Body  []Expr
}

func (d *Do) Tok() lexer.Token { return d.Token }
func (*Do) exprNode()          {}

// Index is `target[key]` or `target.field`-style access, resolved
// uniformly over Array and Map values by the evaluator.
type Index struct {
	Token  lexer.Token
	Target Expr
	Key    Expr
}

func (i *Index) Tok() lexer.Token { return i.Token }
func (*Index) exprNode()          {}
