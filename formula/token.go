package formula

// TokenKind classifies the lexical elements of a formula.
type TokenKind int

const (
	TokenNumber TokenKind = iota
	TokenString
	TokenCellRef
	TokenRangeRef
	TokenFuncName
	TokenOperator
	TokenLeftParen
	TokenRightParen
	TokenComma
)

var tokenKindNames = map[TokenKind]string{
	TokenNumber:     "number",
	TokenString:     "string",
	TokenCellRef:    "cell reference",
	TokenRangeRef:   "range reference",
	TokenFuncName:   "function name",
	TokenOperator:   "operator",
	TokenLeftParen:  "(",
	TokenRightParen: ")",
	TokenComma:      ",",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Token is one lexical element. Text is the exact source slice starting at
// byte Offset, so a formula can be reassembled without losing spacing.
// Value carries the decoded payload where it differs from Text: string
// contents without quotes and function names upper-cased.
type Token struct {
	Kind   TokenKind
	Text   string
	Value  string
	Offset int
}
