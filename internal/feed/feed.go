// Package feed streams engine notifications to presentation clients over
// websocket. The engine never blocks on a client: slow consumers first lose
// events at the bus, then get disconnected on write timeout.
package feed

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/solrift/statfx/internal/event"
)

const (
	subscriberBuffer = 256
	writeTimeout     = 5 * time.Second
)

// Handler upgrades HTTP requests to websocket sessions subscribed to the
// event bus.
type Handler struct {
	bus      *event.Bus
	upgrader websocket.Upgrader
}

// NewHandler returns a feed handler over the given bus.
func NewHandler(bus *event.Bus) *Handler {
	return &Handler{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP upgrades the connection and streams events as JSON frames until
// the client disconnects or falls behind.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("feed upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	events, cancel := h.bus.Subscribe(subscriberBuffer)
	defer cancel()

	slog.Info("feed client connected", "remote", r.RemoteAddr)
	defer slog.Info("feed client disconnected", "remote", r.RemoteAddr)

	// Drain client frames so close handshakes and pings are processed;
	// the feed is one-way otherwise.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	defer conn.Close()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(e); err != nil {
				slog.Debug("feed write failed", "remote", r.RemoteAddr, "err", err)
				return
			}
		case <-done:
			return
		}
	}
}
