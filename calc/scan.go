package calc

import (
	"sort"
	"strings"

	"github.com/xuri/efp"

	"github.com/vimeh/gridcore-sub002/grid"
)

// ScanReferences pulls the cell addresses a formula reads using the efp
// Excel formula tokenizer, expanding ranges and dropping lock markers.
// Anything efp cannot classify as a reference is skipped, which makes the
// scan safe to run over a whole sheet before full parsing.
func ScanReferences(formulaText string) []string {
	body := strings.TrimPrefix(formulaText, "=")
	if body == "" {
		return nil
	}
	ps := efp.ExcelParser()
	seen := make(map[string]bool)
	for _, token := range ps.Parse(body) {
		if token.TType != efp.TokenTypeOperand {
			continue
		}
		if token.TSubType != efp.TokenSubTypeRange {
			continue
		}
		for _, key := range expandOperand(token.TValue) {
			seen[key] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// expandOperand turns one efp range operand ("A1", "$B$2", "A1:B2") into
// canonical cell addresses.
func expandOperand(operand string) []string {
	text := strings.ReplaceAll(operand, "$", "")
	if strings.Contains(text, ":") {
		area, err := grid.ParseRange(text)
		if err != nil {
			return nil
		}
		keys := make([]string, 0, area.Size())
		for it := area.Iter(); ; {
			c, ok := it.Next()
			if !ok {
				break
			}
			keys = append(keys, c.String())
		}
		return keys
	}
	coord, err := grid.ParseCoordinate(text)
	if err != nil {
		return nil
	}
	return []string{coord.String()}
}

// BuildGraph rebuilds the dependency graph from every formula cell in the
// store. Used after a bulk load, where scanning beats parsing each formula
// before any evaluation is needed.
func BuildGraph(store *grid.Store, g *Graph) {
	g.ClearAll()
	for _, key := range store.Keys() {
		coord, err := grid.ParseCoordinate(key)
		if err != nil {
			continue
		}
		cell, ok := store.Get(coord)
		if !ok || !cell.HasFormula() {
			continue
		}
		for _, dep := range ScanReferences(cell.Formula.Expr) {
			g.AddEdge(key, dep)
		}
	}
}
