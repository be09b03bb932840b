package grid

import (
	"fmt"
	"strings"
)

// Coordinate is a zero-based cell position. Row 0, column 0 is "A1".
type Coordinate struct {
	Row int
	Col int
}

// The grid spans A1 through XFD1048576. References outside it are invalid.
const (
	MaxRow = 1048575
	MaxCol = 16383
)

// ParseCoordinate converts an A1-style address into a Coordinate.
// Lock markers ($) are not part of a resolved address and are rejected here.
func ParseCoordinate(s string) (Coordinate, error) {
	i := 0
	for i < len(s) && isColLetter(s[i]) {
		i++
	}
	colStr, rowStr := s[:i], s[i:]
	if colStr == "" || rowStr == "" {
		return Coordinate{}, fmt.Errorf("invalid cell reference: %q", s)
	}
	col := 0
	for j := 0; j < len(colStr); j++ {
		ch := colStr[j]
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		col = col*26 + int(ch-'A')
		if j < len(colStr)-1 {
			// intermediate letters carry a +1 bias, as in AA = 26
			col++
		}
		// checked every step so long inputs cannot overflow col
		if col > MaxCol {
			return Coordinate{}, fmt.Errorf("invalid cell reference: %q", s)
		}
	}
	row := 0
	for j := 0; j < len(rowStr); j++ {
		ch := rowStr[j]
		if ch < '0' || ch > '9' {
			return Coordinate{}, fmt.Errorf("invalid cell reference: %q", s)
		}
		row = row*10 + int(ch-'0')
		if row > MaxRow+1 {
			return Coordinate{}, fmt.Errorf("invalid cell reference: %q", s)
		}
	}
	if row < 1 {
		return Coordinate{}, fmt.Errorf("invalid cell reference: %q", s)
	}
	return Coordinate{Row: row - 1, Col: col}, nil
}

// String renders the canonical A1-style address.
func (c Coordinate) String() string {
	return ColumnName(c.Col) + fmt.Sprint(c.Row+1)
}

// ColumnName converts a zero-based column index to letters (0 -> "A",
// 26 -> "AA"). Indexes outside the grid bounds render as "".
func ColumnName(col int) string {
	if col < 0 || col > MaxCol {
		return ""
	}
	var b [3]byte // MaxCol is "XFD"
	i := len(b)
	for col >= 0 {
		i--
		b[i] = byte('A' + col%26)
		col = col/26 - 1
	}
	return string(b[i:])
}

func isColLetter(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

// Range is a rectangular block of cells, inclusive of both corners.
// Start is always the top-left corner and End the bottom-right.
type Range struct {
	Start Coordinate
	End   Coordinate
}

// NewRange builds a Range, rejecting corners that are not in top-left to
// bottom-right order.
func NewRange(start, end Coordinate) (Range, error) {
	if start.Row > end.Row || start.Col > end.Col {
		return Range{}, fmt.Errorf("invalid range: %s:%s", start, end)
	}
	return Range{Start: start, End: end}, nil
}

// ParseRange converts "A1:B3" into a Range.
func ParseRange(s string) (Range, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return Range{}, fmt.Errorf("invalid range: %q", s)
	}
	start, err := ParseCoordinate(parts[0])
	if err != nil {
		return Range{}, fmt.Errorf("invalid range: %q", s)
	}
	end, err := ParseCoordinate(parts[1])
	if err != nil {
		return Range{}, fmt.Errorf("invalid range: %q", s)
	}
	return NewRange(start, end)
}

func (r Range) String() string {
	return r.Start.String() + ":" + r.End.String()
}

// Size is the number of cells the range covers.
func (r Range) Size() int {
	return (r.End.Row - r.Start.Row + 1) * (r.End.Col - r.Start.Col + 1)
}

func (r Range) Contains(c Coordinate) bool {
	return c.Row >= r.Start.Row && c.Row <= r.End.Row &&
		c.Col >= r.Start.Col && c.Col <= r.End.Col
}

// Rows is the number of rows the range spans.
func (r Range) Rows() int {
	return r.End.Row - r.Start.Row + 1
}

// Cols is the number of columns the range spans.
func (r Range) Cols() int {
	return r.End.Col - r.Start.Col + 1
}

// RangeIter walks a range in row-major order.
type RangeIter struct {
	r    Range
	next Coordinate
	done bool
}

// Iter returns a fresh iterator positioned at the top-left corner.
func (r Range) Iter() *RangeIter {
	it := &RangeIter{r: r}
	it.Reset()
	return it
}

// Next yields the following coordinate in row-major order, or false when the
// range is exhausted.
func (it *RangeIter) Next() (Coordinate, bool) {
	if it.done {
		return Coordinate{}, false
	}
	c := it.next
	if it.next.Col < it.r.End.Col {
		it.next.Col++
	} else if it.next.Row < it.r.End.Row {
		it.next.Col = it.r.Start.Col
		it.next.Row++
	} else {
		it.done = true
	}
	return c, true
}

// Reset rewinds the iterator to the top-left corner.
func (it *RangeIter) Reset() {
	it.next = it.r.Start
	it.done = false
}

// Coordinates materializes the range in row-major order.
func (r Range) Coordinates() []Coordinate {
	out := make([]Coordinate, 0, r.Size())
	for it := r.Iter(); ; {
		c, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out
}
