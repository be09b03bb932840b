package formula

import (
	"strings"
	"testing"

	"github.com/vimeh/gridcore-sub002/grid"
)

func coord(t *testing.T, addr string) grid.Coordinate {
	t.Helper()
	c, err := grid.ParseCoordinate(addr)
	if err != nil {
		t.Fatalf("%s: %v", addr, err)
	}
	return c
}

func TestTransformForCopyRelative(t *testing.T) {
	tr, err := TransformForCopy("=A1 + B1", coord(t, "A1"), coord(t, "B2"))
	if err != nil {
		t.Fatal(err)
	}
	if tr.Formula != "=B2 + C2" {
		t.Errorf("formula: %q", tr.Formula)
	}
	if !tr.Changed || tr.Adjusted != 2 {
		t.Errorf("changed=%v adjusted=%d", tr.Changed, tr.Adjusted)
	}
}

func TestTransformForCopyLocked(t *testing.T) {
	tr, err := TransformForCopy("=$A$1 + A1", coord(t, "A1"), coord(t, "B2"))
	if err != nil {
		t.Fatal(err)
	}
	if tr.Formula != "=$A$1 + B2" {
		t.Errorf("formula: %q", tr.Formula)
	}
	if tr.Adjusted != 1 {
		t.Errorf("adjusted: %d", tr.Adjusted)
	}
}

func TestTransformMixedLocks(t *testing.T) {
	cases := map[string]string{
		"=$A1":  "=$A2",
		"=A$1":  "=B$1",
		"=$A$1": "=$A$1",
		"=A1":   "=B2",
	}
	for input, want := range cases {
		tr, err := TransformForCopy(input, coord(t, "A1"), coord(t, "B2"))
		if err != nil {
			t.Errorf("%s: %v", input, err)
			continue
		}
		if tr.Formula != want {
			t.Errorf("%s: %q != %q", input, tr.Formula, want)
		}
	}
}

func TestTransformZeroDeltaByteIdentical(t *testing.T) {
	src := "=  SUM( A1:B2 ) + $C$3  "
	tr, err := TransformForCopy(src, coord(t, "D4"), coord(t, "D4"))
	if err != nil {
		t.Fatal(err)
	}
	if tr.Formula != src {
		t.Errorf("zero delta altered text: %q", tr.Formula)
	}
	if tr.Changed || tr.Adjusted != 0 {
		t.Errorf("changed=%v adjusted=%d", tr.Changed, tr.Adjusted)
	}
}

func TestTransformPreservesSpacingAndStrings(t *testing.T) {
	tr, err := TransformForCopy(`=IF( A1 > 0 , "A1 stays" , B1 )`, coord(t, "C1"), coord(t, "D2"))
	if err != nil {
		t.Fatal(err)
	}
	if tr.Formula != `=IF( B2 > 0 , "A1 stays" , C2 )` {
		t.Errorf("formula: %q", tr.Formula)
	}
}

func TestTransformRange(t *testing.T) {
	tr, err := TransformForCopy("=SUM(A1:B2)", coord(t, "C1"), coord(t, "D3"))
	if err != nil {
		t.Fatal(err)
	}
	if tr.Formula != "=SUM(B3:C4)" {
		t.Errorf("formula: %q", tr.Formula)
	}
	// a range rewrites as one reference
	if tr.Adjusted != 1 {
		t.Errorf("adjusted: %d", tr.Adjusted)
	}
}

func TestTransformRangePartialLock(t *testing.T) {
	tr, err := TransformForCopy("=SUM($A$1:B2)", coord(t, "C1"), coord(t, "D3"))
	if err != nil {
		t.Fatal(err)
	}
	if tr.Formula != "=SUM($A$1:C4)" {
		t.Errorf("formula: %q", tr.Formula)
	}
}

func TestTransformOffGridFails(t *testing.T) {
	_, err := TransformForCopy("=A1+B1", coord(t, "B2"), coord(t, "A1"))
	if err == nil || !strings.Contains(err.Error(), "reference out of range") {
		t.Fatalf("off-grid: %v", err)
	}

	// shifting past the far corner fails the same way
	_, err = TransformForCopy("=XFD1", coord(t, "A1"), coord(t, "B1"))
	if err == nil || !strings.Contains(err.Error(), "reference out of range") {
		t.Fatalf("past right edge: %v", err)
	}

	// locked axes never move, so locked references survive any delta
	tr, err := TransformForCopy("=$A$1", coord(t, "Z99"), coord(t, "A1"))
	if err != nil || tr.Formula != "=$A$1" {
		t.Errorf("locked: %q %v", tr.Formula, err)
	}
}

func TestTransformForFillAxis(t *testing.T) {
	// vertical fills ignore the column component of the target
	tr, err := TransformForFill("=A1+B1", coord(t, "C1"), coord(t, "C3"), DirDown)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Formula != "=A3+B3" {
		t.Errorf("down: %q", tr.Formula)
	}

	tr, err = TransformForFill("=A5+B5", coord(t, "A5"), coord(t, "A2"), DirUp)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Formula != "=A2+B2" {
		t.Errorf("up: %q", tr.Formula)
	}

	tr, err = TransformForFill("=B1*2", coord(t, "B2"), coord(t, "E2"), DirRight)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Formula != "=E1*2" {
		t.Errorf("right: %q", tr.Formula)
	}

	tr, err = TransformForFill("=D1*2", coord(t, "D2"), coord(t, "B2"), DirLeft)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Formula != "=B1*2" {
		t.Errorf("left: %q", tr.Formula)
	}
}

func TestTransformForFillBadDirection(t *testing.T) {
	_, err := TransformForFill("=A1", coord(t, "A1"), coord(t, "A2"), Direction("diagonal"))
	if err == nil || !strings.Contains(err.Error(), "invalid fill direction") {
		t.Fatalf("direction: %v", err)
	}
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"up", "DOWN", "Left", "right"} {
		if _, err := ParseDirection(s); err != nil {
			t.Errorf("%s: %v", s, err)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("bad direction accepted")
	}
}

func TestPreviewTransformation(t *testing.T) {
	pv, err := PreviewTransformation("=A1 + $B$1 + C1", coord(t, "A1"), coord(t, "B2"))
	if err != nil {
		t.Fatal(err)
	}
	if pv.Original != "=A1 + $B$1 + C1" {
		t.Errorf("original: %q", pv.Original)
	}
	if pv.Transformed != "=B2 + $B$1 + D2" {
		t.Errorf("transformed: %q", pv.Transformed)
	}
	if len(pv.Changes) != 2 {
		t.Fatalf("changes: %v", pv.Changes)
	}
	if pv.Changes[0] != (RefChange{From: "A1", To: "B2"}) {
		t.Errorf("first change: %v", pv.Changes[0])
	}
	if pv.Changes[1] != (RefChange{From: "C1", To: "D2"}) {
		t.Errorf("second change: %v", pv.Changes[1])
	}
}

func TestPreviewNoChanges(t *testing.T) {
	pv, err := PreviewTransformation("=$A$1*2", coord(t, "A1"), coord(t, "C3"))
	if err != nil {
		t.Fatal(err)
	}
	if pv.Transformed != pv.Original || len(pv.Changes) != 0 {
		t.Errorf("preview: %+v", pv)
	}
}

func TestTransformPlainTextUntouched(t *testing.T) {
	tr, err := TransformForCopy("42", coord(t, "A1"), coord(t, "B2"))
	if err != nil {
		t.Fatal(err)
	}
	if tr.Formula != "42" || tr.Changed {
		t.Errorf("literal: %+v", tr)
	}
}

func TestTransformBadFormula(t *testing.T) {
	if _, err := TransformForCopy(`="abc`, coord(t, "A1"), coord(t, "B2")); err == nil {
		t.Error("unterminated string should fail the transform")
	}
}

func TestTransformFunctionNamesUntouched(t *testing.T) {
	// SUM looks like a reference but the "(" keeps it a function name
	tr, err := TransformForCopy("=SUM(A1)", coord(t, "A1"), coord(t, "A2"))
	if err != nil {
		t.Fatal(err)
	}
	if tr.Formula != "=SUM(A2)" {
		t.Errorf("formula: %q", tr.Formula)
	}
}
