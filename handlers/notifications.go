package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/St0bbe/remix-of-our-little-pix/notify"
	"github.com/St0bbe/remix-of-our-little-pix/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin is already policed by the CORS middleware; the socket
	// carries only photo-count notices
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NotificationHandler upgrades sessions onto the cross-session
// notification hub
type NotificationHandler struct {
	store *store.PhotoStore
	hub   *notify.Hub
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(s *store.PhotoStore, hub *notify.Hub) *NotificationHandler {
	return &NotificationHandler{store: s, hub: hub}
}

// Subscribe upgrades the connection to a websocket and pushes a notice
// whenever another session grows the photo collection
func (h *NotificationHandler) Subscribe(c *gin.Context) {
	session := c.Query("session")
	if session == "" {
		session = sessionID(c)
	}

	count, err := h.store.PhotoCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch photo count"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.hub.Serve(conn, session, count)
}
