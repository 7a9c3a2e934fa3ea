package notify

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/St0bbe/remix-of-our-little-pix/store"
)

// Notice is the payload pushed to a session when other sessions added photos
type Notice struct {
	Type  string `json:"type"`
	Added int64  `json:"added"`
	Total int64  `json:"total"`
}

type session struct {
	id      string
	conn    *websocket.Conn
	watcher *Watcher
	send    chan Notice
}

// Hub fans store change events out to connected websocket sessions,
// skipping the session that performed the write
type Hub struct {
	mu       sync.Mutex
	sessions map[*session]bool
}

// NewHub creates an empty hub. Wire it to a store with
// store.OnChange(hub.Broadcast).
func NewHub() *Hub {
	return &Hub{sessions: make(map[*session]bool)}
}

// Broadcast delivers a change event to every session except the originator
func (h *Hub) Broadcast(event store.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sess := range h.sessions {
		if sess.id != "" && sess.id == event.Origin {
			// The writer keeps its own count current via
			// UpdatePhotoCount; never notify it about its own write.
			sess.watcher.UpdatePhotoCount(event.TotalPhotos)
			continue
		}
		delta, notify := sess.watcher.Observe(event.TotalPhotos)
		if !notify {
			continue
		}
		select {
		case sess.send <- Notice{Type: "photos_added", Added: delta, Total: event.TotalPhotos}:
		default:
			// Slow consumer; drop the notice rather than block the store
		}
	}
}

// Serve registers a websocket connection for the given session id and
// pumps notices to it until the connection closes. currentCount seeds the
// session's watcher so only future additions notify.
func (h *Hub) Serve(conn *websocket.Conn, sessionID string, currentCount int64) {
	sess := &session{
		id:      sessionID,
		conn:    conn,
		watcher: NewWatcher(currentCount),
		send:    make(chan Notice, 8),
	}

	h.mu.Lock()
	h.sessions[sess] = true
	h.mu.Unlock()
	slog.Debug("notification session connected", "session", sessionID)

	done := make(chan struct{})

	// Reader: we expect no client messages, but reading is what detects
	// the peer closing the socket.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case notice := <-sess.send:
			if err := conn.WriteJSON(notice); err != nil {
				h.drop(sess)
				return
			}
		case <-done:
			h.drop(sess)
			return
		}
	}
}

func (h *Hub) drop(sess *session) {
	h.mu.Lock()
	delete(h.sessions, sess)
	h.mu.Unlock()
	sess.conn.Close()
	slog.Debug("notification session disconnected", "session", sess.id)
}
