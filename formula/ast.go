package formula

import (
	"github.com/vimeh/gridcore-sub002/grid"
)

// Node is a parsed formula expression. The concrete types below form the
// whole tree vocabulary.
type Node interface {
	node()
}

// Literal is a number or string constant.
type Literal struct {
	Val grid.Value
}

// CellRef reads a single cell.
type CellRef struct {
	Address *grid.Coordinate
}

// RangeRef reads a rectangular block of cells.
type RangeRef struct {
	Area *grid.Range
}

// Call invokes a named function over evaluated arguments.
type Call struct {
	Name string
	Args []Node
}

// Unary applies a sign to one operand.
type Unary struct {
	Op UnaryOp
	X  Node
}

// Binary applies an infix operator to two operands.
type Binary struct {
	Op    BinaryOp
	Left  Node
	Right Node
}

func (*Literal) node()  {}
func (*CellRef) node()  {}
func (*RangeRef) node() {}
func (*Call) node()     {}
func (*Unary) node()    {}
func (*Binary) node()   {}

type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpPos
)

func (op UnaryOp) String() string {
	if op == OpNeg {
		return "-"
	}
	return "+"
}

type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
)

var binaryOpText = map[BinaryOp]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpPow: "^",
	OpEq:  "=",
	OpNe:  "<>",
	OpLt:  "<",
	OpGt:  ">",
	OpLe:  "<=",
	OpGe:  ">=",
}

func (op BinaryOp) String() string {
	return binaryOpText[op]
}
