package lexer

import "testing"

func collect(input string) []Token {
	l := New(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func TestLexesLetBinding(t *testing.T) {
	toks := collect("let x = 1")
	want := []TokenType{LET, IDENT, ASSIGN, INT, EOF}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Fatalf("token %d: expected %s, got %s", i, w, toks[i].Type)
		}
	}
}

func TestLexesFloatVsInt(t *testing.T) {
	toks := collect("1 1.5")
	if toks[0].Type != INT || toks[0].Literal != "1" {
		t.Fatalf("expected INT 1, got %v", toks[0])
	}
	if toks[1].Type != FLOAT || toks[1].Literal != "1.5" {
		t.Fatalf("expected FLOAT 1.5, got %v", toks[1])
	}
}

func TestLexesStringEscapes(t *testing.T) {
	toks := collect(`"a\nb"`)
	if toks[0].Type != STRING {
		t.Fatalf("expected STRING token, got %s", toks[0].Type)
	}
	if toks[0].Literal != "a\nb" {
		t.Fatalf("expected escape to decode to %q, got %q", "a\nb", toks[0].Literal)
	}
}

func TestUnterminatedStringIsIllegal(t *testing.T) {
	toks := collect(`"abc`)
	if toks[0].Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL for unterminated string, got %s", toks[0].Type)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	toks := collect("1 // a comment\n2")
	want := []TokenType{INT, NEWLINE, INT, EOF}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Fatalf("token %d: expected %s, got %s", i, w, toks[i].Type)
		}
	}
}

func TestArrowToken(t *testing.T) {
	toks := collect("x -> x")
	if toks[1].Type != ARROW {
		t.Fatalf("expected ARROW, got %s", toks[1].Type)
	}
}

func TestKeywordsLexAsKeywordTypes(t *testing.T) {
	toks := collect("let do end true false unit")
	want := []TokenType{LET, DO, END, TRUE, FALSE, UNIT, EOF}
	for i, w := range want {
		if toks[i].Type != w {
			t.Fatalf("token %d: expected %s, got %s", i, w, toks[i].Type)
		}
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	toks := collect("a\nb")
	if toks[0].Line != 1 {
		t.Fatalf("expected first ident on line 1, got %d", toks[0].Line)
	}
	// toks[1] is NEWLINE, toks[2] is "b" on line 2
	if toks[2].Line != 2 {
		t.Fatalf("expected second ident on line 2, got %d", toks[2].Line)
	}
}
