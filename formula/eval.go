package formula

import (
	"errors"
	"fmt"
	"math"

	"github.com/vimeh/gridcore-sub002/grid"
)

// ValueSource resolves references during evaluation. Implementations decide
// what an absent or still-uncomputed cell yields.
type ValueSource interface {
	CellValue(coord grid.Coordinate) (grid.Value, error)
	RangeValues(area grid.Range) ([]grid.Value, error)
}

// Result is the outcome of evaluating an expression. Seq is non-nil only
// when the expression itself is a bare range, carrying the covered values in
// row-major order.
type Result struct {
	Value grid.Value
	Seq   []grid.Value
}

func (r Result) IsSeq() bool { return r.Seq != nil }

// Scalar returns the single value, or false for a range result.
func (r Result) Scalar() (grid.Value, bool) {
	if r.IsSeq() {
		return grid.Value{}, false
	}
	return r.Value, true
}

// Evaluator computes values for parsed expressions against a value source.
type Evaluator struct {
	Source   ValueSource
	Funcs    *Registry
	MaxDepth int
}

func NewEvaluator(src ValueSource, funcs *Registry) *Evaluator {
	if funcs == nil {
		funcs = Builtins()
	}
	return &Evaluator{Source: src, Funcs: funcs, MaxDepth: DefaultMaxDepth}
}

// Eval computes the expression's result. Reference resolution errors from
// the source and function errors pass through unchanged.
func (e *Evaluator) Eval(root Node) (Result, error) {
	return e.eval(root, 0)
}

func (e *Evaluator) eval(n Node, depth int) (Result, error) {
	max := e.MaxDepth
	if max <= 0 {
		max = DefaultMaxDepth
	}
	if depth > max {
		return Result{}, errors.New("maximum evaluation depth exceeded")
	}
	switch n := n.(type) {
	case *Literal:
		return Result{Value: n.Val}, nil
	case *CellRef:
		if n.Address == nil {
			return Result{}, errors.New("missing address")
		}
		v, err := e.Source.CellValue(*n.Address)
		if err != nil {
			return Result{}, err
		}
		return Result{Value: v}, nil
	case *RangeRef:
		if n.Area == nil {
			return Result{}, errors.New("missing range")
		}
		vals, err := e.Source.RangeValues(*n.Area)
		if err != nil {
			return Result{}, err
		}
		if vals == nil {
			vals = []grid.Value{}
		}
		return Result{Seq: vals}, nil
	case *Unary:
		return e.evalUnary(n, depth)
	case *Binary:
		return e.evalBinary(n, depth)
	case *Call:
		return e.evalCall(n, depth)
	}
	return Result{}, errors.New("missing operand")
}

func (e *Evaluator) evalUnary(n *Unary, depth int) (Result, error) {
	if n.X == nil {
		return Result{}, errors.New("missing operand")
	}
	r, err := e.eval(n.X, depth+1)
	if err != nil {
		return Result{}, err
	}
	v, ok := r.Scalar()
	if !ok || !v.IsNumeric() {
		return Result{}, errors.New("negation requires a numeric operand")
	}
	if n.Op == OpNeg {
		return Result{Value: grid.Number(-v.Num)}, nil
	}
	return Result{Value: v}, nil
}

func (e *Evaluator) evalBinary(n *Binary, depth int) (Result, error) {
	if n.Left == nil || n.Right == nil {
		return Result{}, errors.New("missing operands")
	}
	// both sides always evaluate, whatever the operator
	lr, err := e.eval(n.Left, depth+1)
	if err != nil {
		return Result{}, err
	}
	rr, err := e.eval(n.Right, depth+1)
	if err != nil {
		return Result{}, err
	}
	lv, lok := lr.Scalar()
	rv, rok := rr.Scalar()

	switch n.Op {
	case OpEq, OpNe:
		if !lok || !rok {
			return Result{}, errors.New("comparison requires single values")
		}
		eq := lv.Equal(rv)
		if n.Op == OpNe {
			eq = !eq
		}
		return Result{Value: grid.Boolean(eq)}, nil
	case OpLt, OpGt, OpLe, OpGe:
		if !lok || !rok || !lv.IsNumeric() || !rv.IsNumeric() {
			return Result{}, errors.New("comparison requires numeric operands")
		}
		var b bool
		switch n.Op {
		case OpLt:
			b = lv.Num < rv.Num
		case OpGt:
			b = lv.Num > rv.Num
		case OpLe:
			b = lv.Num <= rv.Num
		default:
			b = lv.Num >= rv.Num
		}
		return Result{Value: grid.Boolean(b)}, nil
	}

	if !lok || !rok || !lv.IsNumeric() || !rv.IsNumeric() {
		return Result{}, fmt.Errorf("%s requires numeric operands", arithmeticName(n.Op))
	}
	switch n.Op {
	case OpAdd:
		return Result{Value: grid.Number(lv.Num + rv.Num)}, nil
	case OpSub:
		return Result{Value: grid.Number(lv.Num - rv.Num)}, nil
	case OpMul:
		return Result{Value: grid.Number(lv.Num * rv.Num)}, nil
	case OpDiv:
		if rv.Num == 0 {
			return Result{}, errors.New("Division by zero")
		}
		return Result{Value: grid.Number(lv.Num / rv.Num)}, nil
	case OpPow:
		return Result{Value: grid.Number(math.Pow(lv.Num, rv.Num))}, nil
	}
	return Result{}, fmt.Errorf("unsupported operator %s", n.Op)
}

func arithmeticName(op BinaryOp) string {
	switch op {
	case OpAdd:
		return "addition"
	case OpSub:
		return "subtraction"
	case OpMul:
		return "multiplication"
	case OpDiv:
		return "division"
	case OpPow:
		return "exponentiation"
	}
	return "operator"
}

func (e *Evaluator) evalCall(n *Call, depth int) (Result, error) {
	if n.Name == "" {
		return Result{}, errors.New("missing name")
	}
	// arguments evaluate left to right, ranges flatten in place
	args := make([]grid.Value, 0, len(n.Args))
	for _, argNode := range n.Args {
		r, err := e.eval(argNode, depth+1)
		if err != nil {
			return Result{}, err
		}
		if r.IsSeq() {
			args = append(args, r.Seq...)
		} else {
			args = append(args, r.Value)
		}
	}
	if e.Funcs == nil {
		e.Funcs = Builtins()
	}
	fn, ok := e.Funcs.Lookup(n.Name)
	if !ok {
		return Result{}, fmt.Errorf("unknown function: %s", n.Name)
	}
	v, err := fn(args)
	if err != nil {
		return Result{}, err
	}
	return Result{Value: v}, nil
}
