package grid

// Change records one store mutation: the raw text at a coordinate before and
// after, with flags for whether the cell existed on each side.
type Change struct {
	Coord     Coordinate
	Before    string
	BeforeSet bool
	After     string
	AfterSet  bool
}

// History is a bounded undo/redo log of store mutations. Recording a new
// change discards any redo entries.
type History struct {
	past   []Change
	future []Change
	limit  int
}

const DefaultHistoryLimit = 100

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

func (h *History) Record(ch Change) {
	h.past = append(h.past, ch)
	h.future = h.future[:0]
	if len(h.past) > h.limit {
		h.past = h.past[len(h.past)-h.limit:]
	}
}

func (h *History) CanUndo() bool { return len(h.past) > 0 }

func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Undo reverts the most recent change against s and returns it.
func (h *History) Undo(s *Store) (Change, bool) {
	if len(h.past) == 0 {
		return Change{}, false
	}
	ch := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	applyState(s, ch.Coord, ch.Before, ch.BeforeSet)
	h.future = append(h.future, ch)
	return ch, true
}

// Redo reapplies the most recently undone change against s and returns it.
func (h *History) Redo(s *Store) (Change, bool) {
	if len(h.future) == 0 {
		return Change{}, false
	}
	ch := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	applyState(s, ch.Coord, ch.After, ch.AfterSet)
	h.past = append(h.past, ch)
	return ch, true
}

func (h *History) Reset() {
	h.past = h.past[:0]
	h.future = h.future[:0]
}

func applyState(s *Store, coord Coordinate, raw string, set bool) {
	if set {
		// raw came out of the store, so wrapping cannot fail
		s.Set(coord, raw)
	} else {
		s.Delete(coord)
	}
}
