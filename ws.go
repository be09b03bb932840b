package main

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vimeh/gridcore-sub002/calc"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// hub fans calculation events out to connected websocket clients.
type hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func newHub() *hub {
	return &hub{conns: make(map[*websocket.Conn]bool)}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = true
	n := len(h.conns)
	h.mu.Unlock()
	wsClients.Set(float64(n))
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	n := len(h.conns)
	h.mu.Unlock()
	wsClients.Set(float64(n))
	conn.Close()
}

func (h *hub) broadcast(event calc.Event) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()
	for _, conn := range conns {
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("ws write: %v", err)
			h.remove(conn)
		}
	}
}

func handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade: %v", err)
		return
	}
	events.add(conn)
	// Clients only listen. Drain until the peer goes away.
	go func() {
		defer events.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
