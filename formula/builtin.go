package formula

import (
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/vimeh/gridcore-sub002/grid"
)

// Func is a formula function: flattened argument values in, one value out.
type Func func(args []grid.Value) (grid.Value, error)

// Registry maps upper-cased function names to implementations.
type Registry struct {
	fns map[string]Func
}

func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]Func)}
}

// Register adds or replaces a function. Names are case-insensitive.
func (r *Registry) Register(name string, fn Func) {
	r.fns[strings.ToUpper(name)] = fn
}

func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.fns[strings.ToUpper(name)]
	return fn, ok
}

// Builtins returns a fresh registry with the standard function set.
func Builtins() *Registry {
	r := NewRegistry()
	r.Register("SUM", builtinSum)
	r.Register("AVERAGE", builtinAverage)
	r.Register("COUNT", builtinCount)
	r.Register("MAX", builtinMax)
	r.Register("MIN", builtinMin)
	r.Register("IF", builtinIf)
	r.Register("CONCAT", builtinConcat)
	r.Register("LEN", builtinLen)
	r.Register("UPPER", builtinUpper)
	r.Register("LOWER", builtinLower)
	return r
}

// builtinSum adds the numeric arguments and ignores everything else.
func builtinSum(args []grid.Value) (grid.Value, error) {
	total := 0.0
	for _, v := range args {
		if v.IsNumeric() {
			total += v.Num
		}
	}
	return grid.Number(total), nil
}

func builtinAverage(args []grid.Value) (grid.Value, error) {
	total, count := 0.0, 0
	for _, v := range args {
		if v.IsNumeric() {
			total += v.Num
			count++
		}
	}
	if count == 0 {
		return grid.Value{}, errors.New("AVERAGE requires at least one numeric value")
	}
	return grid.Number(total / float64(count)), nil
}

// builtinCount counts numeric values only; text and booleans do not count.
func builtinCount(args []grid.Value) (grid.Value, error) {
	count := 0
	for _, v := range args {
		if v.IsNumeric() {
			count++
		}
	}
	return grid.Number(float64(count)), nil
}

func builtinMax(args []grid.Value) (grid.Value, error) {
	best, found := math.Inf(-1), false
	for _, v := range args {
		if v.IsNumeric() {
			if !found || v.Num > best {
				best = v.Num
			}
			found = true
		}
	}
	if !found {
		return grid.Value{}, errors.New("MAX requires at least one numeric value")
	}
	return grid.Number(best), nil
}

func builtinMin(args []grid.Value) (grid.Value, error) {
	best, found := math.Inf(1), false
	for _, v := range args {
		if v.IsNumeric() {
			if !found || v.Num < best {
				best = v.Num
			}
			found = true
		}
	}
	if !found {
		return grid.Value{}, errors.New("MIN requires at least one numeric value")
	}
	return grid.Number(best), nil
}

func builtinIf(args []grid.Value) (grid.Value, error) {
	if len(args) != 3 {
		return grid.Value{}, errors.New("IF requires exactly 3 arguments")
	}
	if args[0].IsTruthy() {
		return args[1], nil
	}
	return args[2], nil
}

// builtinConcat stringifies every argument and joins them with no separator.
func builtinConcat(args []grid.Value) (grid.Value, error) {
	var b strings.Builder
	for _, v := range args {
		b.WriteString(v.String())
	}
	return grid.Text(b.String()), nil
}

func builtinLen(args []grid.Value) (grid.Value, error) {
	if len(args) != 1 {
		return grid.Value{}, errors.New("LEN requires exactly 1 argument")
	}
	return grid.Number(float64(utf8.RuneCountInString(args[0].String()))), nil
}

func builtinUpper(args []grid.Value) (grid.Value, error) {
	if len(args) != 1 {
		return grid.Value{}, errors.New("UPPER requires exactly 1 argument")
	}
	return grid.Text(strings.ToUpper(args[0].String())), nil
}

func builtinLower(args []grid.Value) (grid.Value, error) {
	if len(args) != 1 {
		return grid.Value{}, errors.New("LOWER requires exactly 1 argument")
	}
	return grid.Text(strings.ToLower(args[0].String())), nil
}
