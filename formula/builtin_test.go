package formula

import (
	"math"
	"strings"
	"testing"

	"github.com/vimeh/gridcore-sub002/grid"
)

func TestBuiltinSum(t *testing.T) {
	v, err := builtinSum([]grid.Value{grid.Number(1), grid.Text("x"), grid.Number(2), grid.Empty()})
	if err != nil {
		t.Fatal(err)
	}
	if v.Num != 3 {
		t.Errorf("sum: %v", v)
	}

	v, _ = builtinSum(nil)
	if v.Num != 0 || v.Kind != grid.ValueNumber {
		t.Errorf("empty sum: %v", v)
	}

	// NaN is not numeric and does not poison the total
	v, _ = builtinSum([]grid.Value{grid.Number(math.NaN()), grid.Number(4)})
	if v.Num != 4 {
		t.Errorf("NaN ignored: %v", v)
	}
}

func TestBuiltinAverage(t *testing.T) {
	v, err := builtinAverage([]grid.Value{grid.Number(10), grid.Number(1)})
	if err != nil {
		t.Fatal(err)
	}
	if v.Num != 5.5 {
		t.Errorf("average: %v", v)
	}

	_, err = builtinAverage([]grid.Value{grid.Text("x"), grid.Empty()})
	if err == nil || !strings.Contains(err.Error(), "requires at least one numeric value") {
		t.Errorf("no numerics: %v", err)
	}
}

func TestBuiltinCountNumericOnly(t *testing.T) {
	v, err := builtinCount([]grid.Value{
		grid.Number(1), grid.Text("x"), grid.Boolean(true), grid.Empty(), grid.Number(0),
	})
	if err != nil {
		t.Fatal(err)
	}
	if v.Num != 2 {
		t.Errorf("count: %v", v)
	}
}

func TestBuiltinMaxMin(t *testing.T) {
	args := []grid.Value{grid.Number(3), grid.Text("z"), grid.Number(-7), grid.Number(12)}
	v, err := builtinMax(args)
	if err != nil || v.Num != 12 {
		t.Errorf("max: %v %v", v, err)
	}
	v, err = builtinMin(args)
	if err != nil || v.Num != -7 {
		t.Errorf("min: %v %v", v, err)
	}

	for _, fn := range []Func{builtinMax, builtinMin} {
		if _, err := fn([]grid.Value{grid.Text("x")}); err == nil ||
			!strings.Contains(err.Error(), "requires at least one numeric value") {
			t.Errorf("no numerics: %v", err)
		}
	}
}

func TestBuiltinIfArity(t *testing.T) {
	if _, err := builtinIf([]grid.Value{grid.Number(1), grid.Number(2)}); err == nil ||
		!strings.Contains(err.Error(), "exactly 3 arguments") {
		t.Errorf("arity: %v", err)
	}
	v, err := builtinIf([]grid.Value{grid.Number(1), grid.Text("yes"), grid.Text("no")})
	if err != nil || v.Str != "yes" {
		t.Errorf("if: %v %v", v, err)
	}
}

func TestBuiltinConcat(t *testing.T) {
	v, err := builtinConcat([]grid.Value{
		grid.Text("a"), grid.Number(1.5), grid.Boolean(false), grid.Empty(), grid.Number(2),
	})
	if err != nil {
		t.Fatal(err)
	}
	if v.Str != "a1.5FALSE2" {
		t.Errorf("concat: %q", v.Str)
	}
}

func TestBuiltinLen(t *testing.T) {
	v, err := builtinLen([]grid.Value{grid.Text("héllo")})
	if err != nil {
		t.Fatal(err)
	}
	if v.Num != 5 {
		t.Errorf("len counts runes: %v", v)
	}
	v, _ = builtinLen([]grid.Value{grid.Empty()})
	if v.Num != 0 {
		t.Errorf("len of empty: %v", v)
	}
	if _, err := builtinLen(nil); err == nil {
		t.Error("len arity")
	}
}

func TestBuiltinUpperLower(t *testing.T) {
	v, _ := builtinUpper([]grid.Value{grid.Text("MiXeD")})
	if v.Str != "MIXED" {
		t.Errorf("upper: %q", v.Str)
	}
	v, _ = builtinLower([]grid.Value{grid.Number(2.5)})
	if v.Str != "2.5" {
		t.Errorf("lower of number: %q", v.Str)
	}
	if _, err := builtinUpper([]grid.Value{grid.Text("a"), grid.Text("b")}); err == nil {
		t.Error("upper arity")
	}
}

func TestRegistryCaseInsensitive(t *testing.T) {
	r := Builtins()
	for _, name := range []string{"sum", "SUM", "Sum"} {
		if _, ok := r.Lookup(name); !ok {
			t.Errorf("lookup %s", name)
		}
	}
	if _, ok := r.Lookup("MISSING"); ok {
		t.Error("lookup of unregistered name")
	}
}
