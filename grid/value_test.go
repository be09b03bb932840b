package grid

import (
	"encoding/json"
	"math"
	"testing"
)

func TestValueFromRaw(t *testing.T) {
	cases := map[string]Value{
		"":      Empty(),
		"10":    Number(10),
		"-2.5":  Number(-2.5),
		"1e3":   Number(1000),
		"true":  Boolean(true),
		"TRUE":  Boolean(true),
		"false": Boolean(false),
		"hello": Text("hello"),
		"10a":   Text("10a"),
		"=A1":   Text("=A1"),
	}
	for raw, want := range cases {
		got := ValueFromRaw(raw)
		if !got.Equal(want) {
			t.Errorf("%q: %v != %v", raw, got, want)
		}
	}
}

func TestValueDisplay(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Number(300), "300"},
		{Number(5.5), "5.5"},
		{Number(-7), "-7"},
		{Number(0.25), "0.25"},
		{Text("hi"), "hi"},
		{Boolean(true), "TRUE"},
		{Boolean(false), "FALSE"},
		{Empty(), ""},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("%v: %s != %s", c.v, got, c.want)
		}
	}
}

func TestValueIsNumeric(t *testing.T) {
	if !Number(0).IsNumeric() {
		t.Error("zero is numeric")
	}
	if Number(math.NaN()).IsNumeric() {
		t.Error("NaN is not numeric")
	}
	if Text("10").IsNumeric() {
		t.Error("numeric text is still text")
	}
	if Boolean(true).IsNumeric() || Empty().IsNumeric() {
		t.Error("booleans and empty are not numeric")
	}
}

func TestValueIsTruthy(t *testing.T) {
	truthy := []Value{Boolean(true), Number(1), Number(-0.5), Text("x"), Text("false")}
	falsy := []Value{Boolean(false), Number(0), Text(""), Empty()}
	for _, v := range truthy {
		if !v.IsTruthy() {
			t.Errorf("%v should be truthy", v)
		}
	}
	for _, v := range falsy {
		if v.IsTruthy() {
			t.Errorf("%v should be falsy", v)
		}
	}
}

func TestValueEqualNoCoercion(t *testing.T) {
	if Number(1).Equal(Text("1")) {
		t.Error("1 and \"1\" must not compare equal")
	}
	if Number(1).Equal(Boolean(true)) {
		t.Error("1 and TRUE must not compare equal")
	}
	if !Empty().Equal(Empty()) {
		t.Error("empty equals empty")
	}
	if !Number(2.5).Equal(Number(2.5)) {
		t.Error("equal numbers")
	}
	if Empty().Equal(Text("")) {
		t.Error("empty and empty string are distinct")
	}
}

func TestValueMarshalJSON(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Number(42), "42"},
		{Number(2.5), "2.5"},
		{Text("a"), `"a"`},
		{Boolean(true), "true"},
		{Empty(), "null"},
	}
	for _, c := range cases {
		b, err := json.Marshal(c.v)
		if err != nil {
			t.Fatalf("%v: %v", c.v, err)
		}
		if string(b) != c.want {
			t.Errorf("%v: %s != %s", c.v, b, c.want)
		}
	}
}
