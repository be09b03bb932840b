package calc

import (
	"testing"

	"github.com/vimeh/gridcore-sub002/grid"
)

func TestScanReferences(t *testing.T) {
	cases := map[string][]string{
		"=A1+B1":             {"A1", "B1"},
		"=SUM(A1:A3)+B2":     {"A1", "A2", "A3", "B2"},
		"=$A$1*$B2":          {"A1", "B2"},
		"=A1+A1":             {"A1"},
		"=10*2":              nil,
		"=CONCAT(\"A1\", 2)": nil,
		"42":                 nil,
		"":                   nil,
		"=IF(A1>0, B1, C1)":  {"A1", "B1", "C1"},
	}
	for input, want := range cases {
		got := ScanReferences(input)
		if !sameOrder(got, want) {
			t.Errorf("%s: %v != %v", input, got, want)
		}
	}
}

func TestBuildGraph(t *testing.T) {
	store := grid.NewStore()
	set := func(addr, raw string) {
		coord, err := grid.ParseCoordinate(addr)
		if err != nil {
			t.Fatalf("%s: %v", addr, err)
		}
		if _, err := store.Set(coord, raw); err != nil {
			t.Fatalf("%s: %v", addr, err)
		}
	}
	set("A1", "10")
	set("B1", "=A1*2")
	set("C1", "=SUM(A1:B1)")

	g := NewGraph()
	g.AddEdge("X1", "Y1") // stale edge from before the load
	BuildGraph(store, g)

	if got := g.DependenciesOf("B1"); !sameOrder(got, []string{"A1"}) {
		t.Errorf("B1 reads: %v", got)
	}
	if got := g.DependenciesOf("C1"); !sameOrder(got, []string{"A1", "B1"}) {
		t.Errorf("C1 reads: %v", got)
	}
	if got := g.DependentsOf("A1"); !sameOrder(got, []string{"B1", "C1"}) {
		t.Errorf("A1 readers: %v", got)
	}
	if g.DependenciesOf("X1") != nil {
		t.Error("stale edges survive a rebuild")
	}
	if g.DependenciesOf("A1") != nil {
		t.Error("literal cells read nothing")
	}
}
