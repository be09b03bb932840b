package calc

import (
	"github.com/google/uuid"

	"github.com/vimeh/gridcore-sub002/grid"
)

// EventCellCalculated fires every time a calculation resolves a cell,
// including resolutions served from cache.
const EventCellCalculated = "cell_calculated"

// Event is one notification. Cell is the address, Data the resulting cell.
type Event struct {
	ID   string     `json:"id"`
	Kind string     `json:"kind"`
	Cell string     `json:"cell"`
	Data *grid.Cell `json:"data,omitempty"`
}

// Handler receives published events synchronously.
type Handler func(Event)

// Bus is a minimal subscribe/publish fanout for calculation events.
// Handlers run inline on the publishing goroutine.
type Bus struct {
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

func (b *Bus) Subscribe(kind string, h Handler) {
	b.handlers[kind] = append(b.handlers[kind], h)
}

// Publish builds an event with a fresh ID and hands it to every subscriber
// of the kind.
func (b *Bus) Publish(kind, cell string, data *grid.Cell) {
	if b == nil {
		return
	}
	ev := Event{ID: uuid.NewString(), Kind: kind, Cell: cell, Data: data}
	for _, h := range b.handlers[kind] {
		h(ev)
	}
}
