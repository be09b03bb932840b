// Package pivot summarizes a block of grid cells: rows grouped by a key
// column, one aggregate per group over a value column.
package pivot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vimeh/gridcore-sub002/grid"
)

// Aggregation names how group values collapse into one number.
type Aggregation string

const (
	AggSum   Aggregation = "sum"
	AggCount Aggregation = "count"
	AggAvg   Aggregation = "avg"
	AggMin   Aggregation = "min"
	AggMax   Aggregation = "max"
)

func ParseAggregation(s string) (Aggregation, error) {
	switch Aggregation(strings.ToLower(s)) {
	case AggSum, AggCount, AggAvg, AggMin, AggMax:
		return Aggregation(strings.ToLower(s)), nil
	}
	return "", fmt.Errorf("invalid aggregation: %q", s)
}

// Group is one key with its aggregate. Count is the number of numeric
// values that contributed.
type Group struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Table is the pivot result. Groups keep first-seen row order.
type Table struct {
	Aggregation Aggregation `json:"aggregation"`
	Groups      []Group     `json:"groups"`
}

// Build pivots the rows of area. keyCol and valueCol are zero-based column
// offsets within the area. Rows with an empty key fall into the "" group;
// non-numeric values count for nothing but the row still creates its group.
func Build(store *grid.Store, area grid.Range, keyCol, valueCol int, agg Aggregation) (*Table, error) {
	if keyCol < 0 || keyCol >= area.Cols() {
		return nil, fmt.Errorf("key column %d outside range %s", keyCol, area)
	}
	if valueCol < 0 || valueCol >= area.Cols() {
		return nil, fmt.Errorf("value column %d outside range %s", valueCol, area)
	}

	grouped := make(map[string][]float64)
	var order []string
	for row := area.Start.Row; row <= area.End.Row; row++ {
		key := cellValue(store, grid.Coordinate{Row: row, Col: area.Start.Col + keyCol}).String()
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
			grouped[key] = nil
		}
		v := cellValue(store, grid.Coordinate{Row: row, Col: area.Start.Col + valueCol})
		if v.IsNumeric() {
			grouped[key] = append(grouped[key], v.Num)
		}
	}

	table := &Table{Aggregation: agg}
	for _, key := range order {
		table.Groups = append(table.Groups, aggregate(key, grouped[key], agg))
	}
	return table, nil
}

func cellValue(store *grid.Store, coord grid.Coordinate) grid.Value {
	cell, ok := store.Get(coord)
	if !ok {
		return grid.Empty()
	}
	return cell.Value()
}

func aggregate(key string, nums []float64, agg Aggregation) Group {
	g := Group{Key: key, Count: len(nums)}
	if len(nums) == 0 {
		return g
	}
	switch agg {
	case AggCount:
		g.Value = float64(len(nums))
	case AggAvg:
		g.Value = sum(nums) / float64(len(nums))
	case AggMin:
		g.Value = nums[0]
		for _, n := range nums[1:] {
			if n < g.Value {
				g.Value = n
			}
		}
	case AggMax:
		g.Value = nums[0]
		for _, n := range nums[1:] {
			if n > g.Value {
				g.Value = n
			}
		}
	default:
		g.Value = sum(nums)
	}
	return g
}

func sum(nums []float64) float64 {
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return total
}

// SortByValue orders groups by aggregate, largest first, with the key as
// tiebreak so output stays stable.
func (t *Table) SortByValue() {
	sort.SliceStable(t.Groups, func(i, j int) bool {
		if t.Groups[i].Value != t.Groups[j].Value {
			return t.Groups[i].Value > t.Groups[j].Value
		}
		return t.Groups[i].Key < t.Groups[j].Key
	})
}
