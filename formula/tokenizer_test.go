package formula

import (
	"strings"
	"testing"
)

func kindsOf(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeKinds(t *testing.T) {
	cases := map[string][]TokenKind{
		"1+2":           {TokenNumber, TokenOperator, TokenNumber},
		"A1*B2":         {TokenCellRef, TokenOperator, TokenCellRef},
		"SUM(A1:A3)":    {TokenFuncName, TokenLeftParen, TokenRangeRef, TokenRightParen},
		`"hi"`:          {TokenString},
		"IF(1,2,3)":     {TokenFuncName, TokenLeftParen, TokenNumber, TokenComma, TokenNumber, TokenComma, TokenNumber, TokenRightParen},
		"$A$1+A1":       {TokenCellRef, TokenOperator, TokenCellRef},
		"A1<=B1":        {TokenCellRef, TokenOperator, TokenCellRef},
		"A1<>B1":        {TokenCellRef, TokenOperator, TokenCellRef},
		"-2.5":          {TokenOperator, TokenNumber},
		".5+1":          {TokenNumber, TokenOperator, TokenNumber},
		"(A1)":          {TokenLeftParen, TokenCellRef, TokenRightParen},
		"$A$1:$B$2":     {TokenRangeRef},
		"CONCAT('a',1)": {TokenFuncName, TokenLeftParen, TokenString, TokenComma, TokenNumber, TokenRightParen},
		"2^3^2":         {TokenNumber, TokenOperator, TokenNumber, TokenOperator, TokenNumber},
		"A1 = B1":       {TokenCellRef, TokenOperator, TokenCellRef},
	}
	for input, want := range cases {
		toks, err := Tokenize(input)
		if err != nil {
			t.Errorf("%s: %v", input, err)
			continue
		}
		got := kindsOf(toks)
		if len(got) != len(want) {
			t.Errorf("%s: kinds %v != %v", input, got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s: token %d is %v, want %v", input, i, got[i], want[i])
			}
		}
	}
}

func TestTokenizeTextAndOffset(t *testing.T) {
	toks, err := Tokenize("A1 + B1")
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 3 {
		t.Fatalf("tokens: %v", toks)
	}
	if toks[0].Text != "A1" || toks[0].Offset != 0 {
		t.Errorf("first: %+v", toks[0])
	}
	if toks[1].Text != "+" || toks[1].Offset != 3 {
		t.Errorf("second: %+v", toks[1])
	}
	if toks[2].Text != "B1" || toks[2].Offset != 5 {
		t.Errorf("third: %+v", toks[2])
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, err := Tokenize(`"a\"b"`)
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 1 || toks[0].Kind != TokenString {
		t.Fatalf("tokens: %v", toks)
	}
	if toks[0].Value != `a"b` {
		t.Errorf("decoded: %q", toks[0].Value)
	}
	if toks[0].Text != `"a\"b"` {
		t.Errorf("source text: %q", toks[0].Text)
	}

	toks, err = Tokenize(`'it\'s'`)
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Value != "it's" {
		t.Errorf("single quoted: %q", toks[0].Value)
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	for _, input := range []string{`"abc`, `'abc`, `"abc\"`} {
		_, err := Tokenize(input)
		if err == nil || !strings.Contains(err.Error(), "unterminated string") {
			t.Errorf("%s: %v", input, err)
		}
	}
}

func TestTokenizeUnexpectedCharacter(t *testing.T) {
	for _, input := range []string{"1 & 2", "A1;B1", "#A1", "{1}"} {
		_, err := Tokenize(input)
		if err == nil || !strings.Contains(err.Error(), "unexpected character") {
			t.Errorf("%s: %v", input, err)
		}
	}
}

func TestTokenizeFuncNameUpperCased(t *testing.T) {
	toks, err := Tokenize("sum(1)")
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != TokenFuncName || toks[0].Value != "SUM" {
		t.Errorf("token: %+v", toks[0])
	}
	if toks[0].Text != "sum" {
		t.Errorf("source text: %q", toks[0].Text)
	}
}

func TestTokenizeLockedIdentBeforeParen(t *testing.T) {
	// a $ lock keeps an identifier a reference even right before "("
	toks, err := Tokenize("$A1(1)")
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != TokenCellRef {
		t.Errorf("token: %+v", toks[0])
	}
}

func TestTokenizeNumberShapes(t *testing.T) {
	cases := map[string]string{
		"42":    "42",
		"2.5":   "2.5",
		".25":   ".25",
		"10.":   "10.",
		"1.2.3": "1.2",
	}
	for input, want := range cases {
		toks, err := Tokenize(input)
		if err != nil {
			t.Errorf("%s: %v", input, err)
			continue
		}
		if toks[0].Kind != TokenNumber || toks[0].Text != want {
			t.Errorf("%s: first token %+v, want number %q", input, toks[0], want)
		}
	}
}
