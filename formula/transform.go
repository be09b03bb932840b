package formula

import (
	"fmt"
	"strings"

	"github.com/vimeh/gridcore-sub002/grid"
)

// Direction names a fill axis for TransformForFill.
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(s)) {
	case DirUp, DirDown, DirLeft, DirRight:
		return Direction(strings.ToLower(s)), nil
	}
	return "", fmt.Errorf("invalid fill direction: %q", s)
}

// RefChange records one rewritten reference.
type RefChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Transformation is a rewritten formula plus what moved. Adjusted counts
// rewritten reference tokens; a range counts once.
type Transformation struct {
	Formula  string `json:"formula"`
	Changed  bool   `json:"changed"`
	Adjusted int    `json:"adjusted"`
}

// Preview pairs the original and rewritten formula with the per-reference
// change list.
type Preview struct {
	Original    string      `json:"original"`
	Transformed string      `json:"transformed"`
	Changes     []RefChange `json:"changes"`
}

// TransformForCopy rewrites a formula for a copy from source to target.
// Relative references move by the row and column delta, locked axes stay.
// Text outside references, including spacing, is preserved byte for byte.
func TransformForCopy(formulaText string, source, target grid.Coordinate) (Transformation, error) {
	out, changes, err := shiftReferences(formulaText, target.Row-source.Row, target.Col-source.Col)
	if err != nil {
		return Transformation{}, err
	}
	return Transformation{Formula: out, Changed: len(changes) > 0, Adjusted: len(changes)}, nil
}

// TransformForFill rewrites a formula for a fill from start toward target.
// The delta follows the fill axis only: vertical fills never touch columns
// and horizontal fills never touch rows.
func TransformForFill(formulaText string, start, target grid.Coordinate, dir Direction) (Transformation, error) {
	var dRow, dCol int
	switch dir {
	case DirUp, DirDown:
		dRow = target.Row - start.Row
	case DirLeft, DirRight:
		dCol = target.Col - start.Col
	default:
		return Transformation{}, fmt.Errorf("invalid fill direction: %q", dir)
	}
	out, changes, err := shiftReferences(formulaText, dRow, dCol)
	if err != nil {
		return Transformation{}, err
	}
	return Transformation{Formula: out, Changed: len(changes) > 0, Adjusted: len(changes)}, nil
}

// PreviewTransformation reports what a copy transform would rewrite without
// applying anything.
func PreviewTransformation(formulaText string, source, target grid.Coordinate) (Preview, error) {
	out, changes, err := shiftReferences(formulaText, target.Row-source.Row, target.Col-source.Col)
	if err != nil {
		return Preview{}, err
	}
	if changes == nil {
		changes = []RefChange{}
	}
	return Preview{Original: formulaText, Transformed: out, Changes: changes}, nil
}

// shiftReferences rewrites the reference tokens of a formula by a delta,
// splicing replacements into the original text so everything else survives
// untouched. A reference pushed past row 1 or column A fails the whole
// transform.
func shiftReferences(formulaText string, dRow, dCol int) (string, []RefChange, error) {
	body := formulaText
	prefix := ""
	if strings.HasPrefix(formulaText, "=") {
		prefix, body = "=", formulaText[1:]
	}
	toks, err := Tokenize(body)
	if err != nil {
		return "", nil, err
	}
	var b strings.Builder
	var changes []RefChange
	last := 0
	for _, tok := range toks {
		if tok.Kind != TokenCellRef && tok.Kind != TokenRangeRef {
			continue
		}
		shifted, err := shiftRefText(tok.Text, dRow, dCol)
		if err != nil {
			return "", nil, err
		}
		if shifted == tok.Text {
			continue
		}
		b.WriteString(body[last:tok.Offset])
		b.WriteString(shifted)
		last = tok.Offset + len(tok.Text)
		changes = append(changes, RefChange{From: tok.Text, To: shifted})
	}
	if len(changes) == 0 {
		return formulaText, nil, nil
	}
	b.WriteString(body[last:])
	return prefix + b.String(), changes, nil
}

// shiftRefText moves one reference token, which may be a single cell or a
// colon-joined range. Sides that do not move keep their original spelling.
func shiftRefText(text string, dRow, dCol int) (string, error) {
	parts := strings.SplitN(text, ":", 2)
	for i, part := range parts {
		ref, err := ParseReference(part)
		if err != nil {
			return "", err
		}
		moved, err := ref.Shift(dRow, dCol)
		if err != nil {
			return "", err
		}
		if moved == ref {
			continue
		}
		parts[i] = moved.String()
	}
	return strings.Join(parts, ":"), nil
}
