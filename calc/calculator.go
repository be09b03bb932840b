package calc

import (
	"errors"
	"fmt"

	"github.com/vimeh/gridcore-sub002/formula"
	"github.com/vimeh/gridcore-sub002/grid"
)

// ErrCircular marks a reference cycle found while calculating. The full
// message names the cell where the cycle closed.
var ErrCircular = errors.New("Circular dependency detected")

// Calculator runs formulas against the store, walking dependencies
// recursively, caching results, and publishing an event per resolved cell.
type Calculator struct {
	// Funcs is the function table formulas dispatch through. Replacing or
	// extending it takes effect on the next calculation.
	Funcs *formula.Registry
	// MaxDepth bounds both parse nesting and evaluation recursion.
	MaxDepth int

	store      *grid.Store
	graph      *Graph
	bus        *Bus
	cache      map[string]*grid.Cell
	inProgress map[string]bool
}

// NewCalculator wires a calculator to its store and graph. The bus may be
// nil when nobody listens.
func NewCalculator(store *grid.Store, graph *Graph, bus *Bus) *Calculator {
	return &Calculator{
		Funcs:      formula.Builtins(),
		MaxDepth:   formula.DefaultMaxDepth,
		store:      store,
		graph:      graph,
		bus:        bus,
		cache:      make(map[string]*grid.Cell),
		inProgress: make(map[string]bool),
	}
}

// Calculate resolves one cell. Formula evaluation errors are stored on the
// cell and reported as a successful calculation; parse failures and
// reference cycles fail the call itself. Results are cached until
// invalidated, and cache hits publish the same event a fresh calculation
// would.
func (c *Calculator) Calculate(coord grid.Coordinate) (*grid.Cell, error) {
	key := coord.String()
	if c.inProgress[key] {
		return nil, fmt.Errorf("%w at %s", ErrCircular, key)
	}
	if cell, ok := c.cache[key]; ok {
		c.bus.Publish(EventCellCalculated, key, cell)
		return cell, nil
	}

	cell, ok := c.store.Get(coord)
	if !ok {
		cell = &grid.Cell{}
	}
	if !cell.HasFormula() {
		v := grid.ValueFromRaw(cell.Raw)
		cell.Computed = &v
		cell.Err = ""
		c.cache[key] = cell
		c.bus.Publish(EventCellCalculated, key, cell)
		return cell, nil
	}

	c.inProgress[key] = true
	defer delete(c.inProgress, key)

	parsed, err := formula.ParseWithLimit(cell.Formula.Expr, c.MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("Parse error: %w", err)
	}
	ev := formula.NewEvaluator(&calcSource{c}, c.Funcs)
	ev.MaxDepth = c.MaxDepth
	res, err := ev.Eval(parsed.Root)
	switch {
	case err != nil && errors.Is(err, ErrCircular):
		return nil, err
	case err != nil:
		cell.Computed = nil
		cell.Err = err.Error()
	case res.IsSeq():
		if v, ok := singleSeqValue(res); ok {
			cell.Computed = &v
			cell.Err = ""
		} else {
			cell.Computed = nil
			cell.Err = "range used as a single value"
		}
	default:
		v := res.Value
		cell.Computed = &v
		cell.Err = ""
	}

	c.cache[key] = cell
	c.bus.Publish(EventCellCalculated, key, cell)
	return cell, nil
}

func singleSeqValue(res formula.Result) (grid.Value, bool) {
	if len(res.Seq) == 1 {
		return res.Seq[0], true
	}
	return grid.Value{}, false
}

// CalculateRange resolves every cell of the block in row-major order,
// stopping at the first hard failure or stored cell error.
func (c *Calculator) CalculateRange(area grid.Range) ([]*grid.Cell, error) {
	out := make([]*grid.Cell, 0, area.Size())
	for it := area.Iter(); ; {
		coord, ok := it.Next()
		if !ok {
			break
		}
		cell, err := c.Calculate(coord)
		if err != nil {
			return out, err
		}
		if cell.HasError() {
			return out, fmt.Errorf("%s: %s", coord, cell.Err)
		}
		out = append(out, cell)
	}
	return out, nil
}

// RecalculateDependents refreshes the changed cell and everything downstream
// of it, in dependency order, invalidating each cached entry right before
// its recalculation. The returned map holds every refreshed cell by address.
func (c *Calculator) RecalculateDependents(coord grid.Coordinate) (map[string]*grid.Cell, error) {
	order := c.graph.TopologicalOrder([]string{coord.String()})
	out := make(map[string]*grid.Cell, len(order))
	for _, key := range order {
		target, err := grid.ParseCoordinate(key)
		if err != nil {
			return out, err
		}
		delete(c.cache, key)
		cell, err := c.Calculate(target)
		if err != nil {
			return out, err
		}
		out[key] = cell
	}
	return out, nil
}

// Invalidate drops the cached results of the cell and of everything
// connected to it through the graph.
func (c *Calculator) Invalidate(coord grid.Coordinate) {
	for _, key := range c.graph.TopologicalOrder([]string{coord.String()}) {
		delete(c.cache, key)
	}
}

// ClearCache drops every cached result.
func (c *Calculator) ClearCache() {
	c.cache = make(map[string]*grid.Cell)
}

// CacheSize reports how many results are cached.
func (c *Calculator) CacheSize() int {
	return len(c.cache)
}

// Evaluate runs a standalone formula against the calculated grid without
// storing it anywhere.
func (c *Calculator) Evaluate(formulaText string) (grid.Value, error) {
	parsed, err := formula.ParseWithLimit(formulaText, c.MaxDepth)
	if err != nil {
		return grid.Value{}, fmt.Errorf("Parse error: %w", err)
	}
	ev := formula.NewEvaluator(&calcSource{c}, c.Funcs)
	ev.MaxDepth = c.MaxDepth
	res, err := ev.Eval(parsed.Root)
	if err != nil {
		return grid.Value{}, err
	}
	if res.IsSeq() {
		if v, ok := singleSeqValue(res); ok {
			return v, nil
		}
		return grid.Value{}, errors.New("range used as a single value")
	}
	return res.Value, nil
}

// calcSource resolves references by calculating the referenced cells, so
// dependency chains evaluate depth first. A dependency that fails for any
// reason other than a cycle reads as empty, and stored cell errors read as
// empty too.
type calcSource struct {
	c *Calculator
}

func (s *calcSource) CellValue(coord grid.Coordinate) (grid.Value, error) {
	cell, err := s.c.Calculate(coord)
	if err != nil {
		if errors.Is(err, ErrCircular) {
			return grid.Value{}, err
		}
		return grid.Empty(), nil
	}
	if cell.HasError() || cell.Computed == nil {
		return grid.Empty(), nil
	}
	return *cell.Computed, nil
}

func (s *calcSource) RangeValues(area grid.Range) ([]grid.Value, error) {
	vals := make([]grid.Value, 0, area.Size())
	for it := area.Iter(); ; {
		coord, ok := it.Next()
		if !ok {
			break
		}
		v, err := s.CellValue(coord)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}
