package grid

import (
	"sort"

	"golang.org/x/exp/maps"
)

// Store holds the cells of a sheet, keyed by canonical A1-style address.
// It is not safe for concurrent use; callers serialize access.
type Store struct {
	cells map[string]*Cell
}

func NewStore() *Store {
	return &Store{cells: make(map[string]*Cell)}
}

// Set creates or replaces the cell at coord from raw input. Formula text that
// cannot even be wrapped (a bare "=") is rejected.
func (s *Store) Set(coord Coordinate, raw string) (*Cell, error) {
	cell, err := NewCell(raw, coord)
	if err != nil {
		return nil, err
	}
	s.cells[coord.String()] = cell
	return cell, nil
}

func (s *Store) Get(coord Coordinate) (*Cell, bool) {
	cell, ok := s.cells[coord.String()]
	return cell, ok
}

// Delete removes the cell at coord, reporting whether it existed.
func (s *Store) Delete(coord Coordinate) bool {
	key := coord.String()
	_, ok := s.cells[key]
	delete(s.cells, key)
	return ok
}

func (s *Store) Clear() {
	s.cells = make(map[string]*Cell)
}

func (s *Store) Count() int {
	return len(s.cells)
}

// Keys lists the occupied addresses in sorted order.
func (s *Store) Keys() []string {
	keys := maps.Keys(s.cells)
	sort.Strings(keys)
	return keys
}

// All returns a copy of the cell map.
func (s *Store) All() map[string]*Cell {
	out := make(map[string]*Cell, len(s.cells))
	for k, v := range s.cells {
		out[k] = v
	}
	return out
}

// InRange returns the occupied cells inside r, keyed by address.
func (s *Store) InRange(r Range) map[string]*Cell {
	out := make(map[string]*Cell)
	for it := r.Iter(); ; {
		c, ok := it.Next()
		if !ok {
			break
		}
		if cell, found := s.cells[c.String()]; found {
			out[c.String()] = cell
		}
	}
	return out
}

// Values resolves every position in r to a value in row-major order, with
// absent cells contributing empty values.
func (s *Store) Values(r Range) []Value {
	out := make([]Value, 0, r.Size())
	for it := r.Iter(); ; {
		c, ok := it.Next()
		if !ok {
			break
		}
		if cell, found := s.cells[c.String()]; found {
			out = append(out, cell.Value())
		} else {
			out = append(out, Empty())
		}
	}
	return out
}
