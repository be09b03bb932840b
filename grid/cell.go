package grid

import (
	"encoding/json"
	"errors"
	"strings"
)

// Formula is the unparsed expression attached to a cell, kept with its full
// source text so edits and copies can reproduce it exactly.
type Formula struct {
	Expr  string
	Owner Coordinate
}

// NewFormula validates and wraps formula text. The text must start with "="
// and carry at least one character after it.
func NewFormula(expr string, owner Coordinate) (*Formula, error) {
	if !strings.HasPrefix(expr, "=") {
		return nil, errors.New("formula must start with =")
	}
	if strings.TrimSpace(expr[1:]) == "" {
		return nil, errors.New("empty formula")
	}
	return &Formula{Expr: expr, Owner: owner}, nil
}

// Body is the expression text with the leading "=" stripped.
func (f *Formula) Body() string {
	return f.Expr[1:]
}

func (f *Formula) Equal(other *Formula) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.Expr == other.Expr && f.Owner == other.Owner
}

func (f *Formula) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Expr)
}

// Cell is one grid entry: the raw text as entered, the computed value once
// evaluation has run, an optional formula, and any evaluation error.
type Cell struct {
	Raw      string   `json:"raw"`
	Computed *Value   `json:"value,omitempty"`
	Formula  *Formula `json:"formula,omitempty"`
	Err      string   `json:"error,omitempty"`
}

// NewCell wraps raw input, attaching a Formula when the text starts with "=".
func NewCell(raw string, owner Coordinate) (*Cell, error) {
	c := &Cell{Raw: raw}
	if strings.HasPrefix(raw, "=") {
		f, err := NewFormula(raw, owner)
		if err != nil {
			return nil, err
		}
		c.Formula = f
	}
	return c, nil
}

func (c *Cell) HasFormula() bool {
	return c.Formula != nil
}

func (c *Cell) HasError() bool {
	return c.Err != ""
}

// Value is the computed value if evaluation has run, otherwise the raw input
// interpreted as a literal.
func (c *Cell) Value() Value {
	if c.Computed != nil {
		return *c.Computed
	}
	return ValueFromRaw(c.Raw)
}

// Display is what the cell shows: the error marker when evaluation failed,
// the computed value once present, or the raw text before any evaluation.
func (c *Cell) Display() string {
	if c.Err != "" {
		return "#ERROR: " + c.Err
	}
	if c.Computed != nil {
		return c.Computed.String()
	}
	return c.Raw
}

func (c *Cell) Equal(other *Cell) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.Raw != other.Raw || c.Err != other.Err {
		return false
	}
	if (c.Computed == nil) != (other.Computed == nil) {
		return false
	}
	if c.Computed != nil && !c.Computed.Equal(*other.Computed) {
		return false
	}
	return c.Formula.Equal(other.Formula)
}

// Clone is a deep copy, so cached results stay stable if the original moves on.
func (c *Cell) Clone() *Cell {
	out := &Cell{Raw: c.Raw, Err: c.Err}
	if c.Computed != nil {
		v := *c.Computed
		out.Computed = &v
	}
	if c.Formula != nil {
		f := *c.Formula
		out.Formula = &f
	}
	return out
}
