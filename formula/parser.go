package formula

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vimeh/gridcore-sub002/grid"
)

// DefaultMaxDepth bounds expression nesting during parsing and evaluation.
const DefaultMaxDepth = 100

// Parsed is the result of one parse: the expression tree, the raw token
// stream, and the set of cells the formula reads keyed by address.
type Parsed struct {
	Root   Node
	Tokens []Token
	Deps   map[string]grid.Coordinate
}

// Parse builds the tree for a formula. A leading "=" is accepted and
// ignored, so both "=A1+1" and "A1+1" parse the same way.
func Parse(input string) (*Parsed, error) {
	return ParseWithLimit(input, DefaultMaxDepth)
}

// ParseWithLimit parses with an explicit nesting depth limit.
func ParseWithLimit(input string, maxDepth int) (*Parsed, error) {
	body := strings.TrimPrefix(input, "=")
	if strings.TrimSpace(body) == "" {
		return nil, errors.New("empty formula")
	}
	toks, err := Tokenize(body)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, errors.New("empty formula")
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	p := &parser{toks: toks, maxDepth: maxDepth}
	root, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, fmt.Errorf("unexpected token at position %d", p.toks[p.pos].Offset)
	}
	return &Parsed{Root: root, Tokens: toks, Deps: Dependencies(root)}, nil
}

type parser struct {
	toks     []Token
	pos      int
	depth    int
	maxDepth int
}

func (p *parser) cur() (Token, bool) {
	if p.pos >= len(p.toks) {
		return Token{}, false
	}
	return p.toks[p.pos], true
}

// peekOperator reports whether the current token is one of the given
// operators, returning its text.
func (p *parser) peekOperator(ops ...string) (string, bool) {
	tok, ok := p.cur()
	if !ok || tok.Kind != TokenOperator {
		return "", false
	}
	for _, op := range ops {
		if tok.Text == op {
			return op, true
		}
	}
	return "", false
}

// parseComparison is the lowest precedence level: = < > <= >= <>.
func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOperator("=", "<>", "<=", ">=", "<", ">")
		if !ok {
			break
		}
		p.pos++
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: comparisonOp(op), Left: left, Right: right}
	}
	return left, nil
}

func comparisonOp(text string) BinaryOp {
	switch text {
	case "=":
		return OpEq
	case "<>":
		return OpNe
	case "<":
		return OpLt
	case ">":
		return OpGt
	case "<=":
		return OpLe
	}
	return OpGe
}

func (p *parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOperator("+", "-")
		if !ok {
			break
		}
		p.pos++
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		bop := OpAdd
		if op == "-" {
			bop = OpSub
		}
		left = &Binary{Op: bop, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (Node, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOperator("*", "/")
		if !ok {
			break
		}
		p.pos++
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		bop := OpMul
		if op == "/" {
			bop = OpDiv
		}
		left = &Binary{Op: bop, Left: left, Right: right}
	}
	return left, nil
}

// parsePower folds ^ left like the other binary levels, so 2^3^2 is
// (2^3)^2. The exponent parses through unary, which keeps 2^-3 legal.
func (p *parser) parsePower() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.peekOperator("^"); !ok {
			break
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: OpPow, Left: left, Right: right}
	}
	return left, nil
}

// parseUnary carries the depth guard: every nesting level of the grammar
// passes through here, so the counter tracks true recursion depth.
func (p *parser) parseUnary() (Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		return nil, errors.New("maximum nesting depth exceeded")
	}
	if op, ok := p.peekOperator("-", "+"); ok {
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		uop := OpNeg
		if op == "+" {
			uop = OpPos
		}
		return &Unary{Op: uop, X: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	tok, ok := p.cur()
	if !ok {
		return nil, errors.New("unexpected end of formula")
	}
	switch tok.Kind {
	case TokenNumber:
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at position %d", tok.Text, tok.Offset)
		}
		p.pos++
		return &Literal{Val: grid.Number(f)}, nil
	case TokenString:
		p.pos++
		return &Literal{Val: grid.Text(tok.Value)}, nil
	case TokenCellRef:
		ref, err := ParseReference(tok.Text)
		if err != nil {
			return nil, err
		}
		p.pos++
		addr := ref.Coord
		return &CellRef{Address: &addr}, nil
	case TokenRangeRef:
		area, err := parseRangeToken(tok.Text)
		if err != nil {
			return nil, err
		}
		p.pos++
		return &RangeRef{Area: area}, nil
	case TokenFuncName:
		return p.parseCall(tok)
	case TokenLeftParen:
		p.pos++
		inner, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if next, ok := p.cur(); !ok || next.Kind != TokenRightParen {
			return nil, fmt.Errorf("expected ')' at position %d", p.offsetHere())
		}
		p.pos++
		return inner, nil
	}
	return nil, fmt.Errorf("unexpected token at position %d", tok.Offset)
}

func parseRangeToken(text string) (*grid.Range, error) {
	parts := strings.SplitN(text, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid range: %q", text)
	}
	start, err := ParseReference(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid range: %q", text)
	}
	end, err := ParseReference(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid range: %q", text)
	}
	area, err := grid.NewRange(start.Coord, end.Coord)
	if err != nil {
		return nil, err
	}
	return &area, nil
}

func (p *parser) parseCall(nameTok Token) (Node, error) {
	p.pos++
	if next, ok := p.cur(); !ok || next.Kind != TokenLeftParen {
		return nil, fmt.Errorf("expected '(' after function name at position %d", p.offsetHere())
	}
	p.pos++
	call := &Call{Name: nameTok.Value}
	if next, ok := p.cur(); ok && next.Kind == TokenRightParen {
		p.pos++
		return call, nil
	}
	for {
		arg, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		next, ok := p.cur()
		if !ok {
			return nil, errors.New("unexpected end of formula")
		}
		if next.Kind == TokenComma {
			p.pos++
			continue
		}
		if next.Kind == TokenRightParen {
			p.pos++
			return call, nil
		}
		return nil, fmt.Errorf("expected ',' or ')' in function arguments at position %d", next.Offset)
	}
}

// offsetHere is the byte offset of the current token, or just past the last
// one at end of input.
func (p *parser) offsetHere() int {
	if tok, ok := p.cur(); ok {
		return tok.Offset
	}
	if len(p.toks) == 0 {
		return 0
	}
	last := p.toks[len(p.toks)-1]
	return last.Offset + len(last.Text)
}
