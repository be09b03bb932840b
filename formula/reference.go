package formula

import (
	"fmt"

	"github.com/vimeh/gridcore-sub002/grid"
)

// Reference is one side of a cell or range reference with its lock markers.
// A locked axis keeps its position when the formula is copied elsewhere.
type Reference struct {
	Coord  grid.Coordinate
	ColAbs bool
	RowAbs bool
}

// ParseReference reads a reference like "B2", "$B2", "B$2" or "$B$2".
func ParseReference(text string) (Reference, error) {
	var ref Reference
	i := 0
	if i < len(text) && text[i] == '$' {
		ref.ColAbs = true
		i++
	}
	letterStart := i
	for i < len(text) && isLetter(text[i]) {
		i++
	}
	letters := text[letterStart:i]
	if i < len(text) && text[i] == '$' {
		ref.RowAbs = true
		i++
	}
	digits := text[i:]
	coord, err := grid.ParseCoordinate(letters + digits)
	if err != nil {
		return Reference{}, fmt.Errorf("invalid cell reference: %q", text)
	}
	ref.Coord = coord
	return ref, nil
}

// String renders the reference with its lock markers in canonical casing.
func (ref Reference) String() string {
	col, row := "", ""
	if ref.ColAbs {
		col = "$"
	}
	if ref.RowAbs {
		row = "$"
	}
	return col + grid.ColumnName(ref.Coord.Col) + row + fmt.Sprint(ref.Coord.Row+1)
}

// Shift moves the unlocked axes by the given delta. Moving off any edge of
// the grid fails.
func (ref Reference) Shift(dRow, dCol int) (Reference, error) {
	out := ref
	if !ref.ColAbs {
		out.Coord.Col += dCol
	}
	if !ref.RowAbs {
		out.Coord.Row += dRow
	}
	if out.Coord.Row < 0 || out.Coord.Col < 0 ||
		out.Coord.Row > grid.MaxRow || out.Coord.Col > grid.MaxCol {
		return Reference{}, fmt.Errorf("reference out of range: %s", ref)
	}
	return out, nil
}
