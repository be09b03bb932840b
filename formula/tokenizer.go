package formula

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Tokenize splits formula body text into tokens, keeping exact source slices
// and byte offsets. The leading "=" is the caller's concern.
func Tokenize(input string) ([]Token, error) {
	t := &tokenizer{src: input}
	for t.pos < len(t.src) {
		ch := t.src[t.pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			t.pos++
		case ch >= '0' && ch <= '9':
			t.scanNumber()
		case ch == '.' && t.digitAt(t.pos+1):
			t.scanNumber()
		case ch == '"' || ch == '\'':
			if err := t.scanString(); err != nil {
				return nil, err
			}
		case isRefStart(ch):
			t.scanReference()
		default:
			if err := t.scanOperator(); err != nil {
				return nil, err
			}
		}
	}
	return t.toks, nil
}

type tokenizer struct {
	src  string
	pos  int
	toks []Token
}

func (t *tokenizer) emit(kind TokenKind, start int, value string) {
	text := t.src[start:t.pos]
	if value == "" {
		value = text
	}
	t.toks = append(t.toks, Token{Kind: kind, Text: text, Value: value, Offset: start})
}

func (t *tokenizer) digitAt(i int) bool {
	return i < len(t.src) && t.src[i] >= '0' && t.src[i] <= '9'
}

// scanNumber consumes a run of digits with at most one decimal point.
func (t *tokenizer) scanNumber() {
	start := t.pos
	seenDot := false
	for t.pos < len(t.src) {
		ch := t.src[t.pos]
		if ch >= '0' && ch <= '9' {
			t.pos++
			continue
		}
		if ch == '.' && !seenDot {
			seenDot = true
			t.pos++
			continue
		}
		break
	}
	t.emit(TokenNumber, start, "")
}

// scanString consumes a quoted literal, honoring backslash escapes. Both
// double and single quotes delimit strings.
func (t *tokenizer) scanString() error {
	start := t.pos
	quote := t.src[t.pos]
	t.pos++
	var content strings.Builder
	for t.pos < len(t.src) {
		ch := t.src[t.pos]
		if ch == '\\' && t.pos+1 < len(t.src) {
			content.WriteByte(t.src[t.pos+1])
			t.pos += 2
			continue
		}
		if ch == quote {
			t.pos++
			t.emit(TokenString, start, content.String())
			return nil
		}
		content.WriteByte(ch)
		t.pos++
	}
	return fmt.Errorf("unterminated string at position %d", start)
}

func isRefStart(ch byte) bool {
	return ch == '$' || (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

// scanReference consumes a possible cell reference: optional $, column
// letters, optional $, row digits. A ":" right after continues into a range.
// A "(" right after a lock-free identifier makes it a function name instead.
func (t *tokenizer) scanReference() {
	start := t.pos
	locked := t.scanRefPart()
	if t.pos < len(t.src) && t.src[t.pos] == ':' {
		t.pos++
		t.scanRefPart()
		t.emit(TokenRangeRef, start, "")
		return
	}
	if !locked && t.pos < len(t.src) && t.src[t.pos] == '(' {
		t.emit(TokenFuncName, start, strings.ToUpper(t.src[start:t.pos]))
		return
	}
	t.emit(TokenCellRef, start, "")
}

// scanRefPart consumes one side of a reference and reports whether a $ lock
// appeared. Malformed shapes are left for the parser to reject.
func (t *tokenizer) scanRefPart() bool {
	locked := false
	if t.pos < len(t.src) && t.src[t.pos] == '$' {
		locked = true
		t.pos++
	}
	for t.pos < len(t.src) && isLetter(t.src[t.pos]) {
		t.pos++
	}
	if t.pos < len(t.src) && t.src[t.pos] == '$' {
		locked = true
		t.pos++
	}
	for t.pos < len(t.src) && t.src[t.pos] >= '0' && t.src[t.pos] <= '9' {
		t.pos++
	}
	return locked
}

func isLetter(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

func (t *tokenizer) scanOperator() error {
	start := t.pos
	if t.pos+1 < len(t.src) {
		two := t.src[t.pos : t.pos+2]
		if two == "<=" || two == ">=" || two == "<>" {
			t.pos += 2
			t.emit(TokenOperator, start, "")
			return nil
		}
	}
	switch ch := t.src[t.pos]; ch {
	case '+', '-', '*', '/', '^', '=', '<', '>':
		t.pos++
		t.emit(TokenOperator, start, "")
	case '(':
		t.pos++
		t.emit(TokenLeftParen, start, "")
	case ')':
		t.pos++
		t.emit(TokenRightParen, start, "")
	case ',':
		t.pos++
		t.emit(TokenComma, start, "")
	default:
		r, _ := utf8.DecodeRuneInString(t.src[t.pos:])
		return fmt.Errorf("unexpected character %q at position %d", r, t.pos)
	}
	return nil
}
