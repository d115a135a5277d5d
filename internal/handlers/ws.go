package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ecyouth/portal/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var (
	moderationClients   = make(map[*websocket.Conn]bool)
	moderationClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// BroadcastModerationEvent pushes a moderation queue event to every connected
// admin dashboard. Safe to call with no listeners.
func BroadcastModerationEvent(event string, subject string) {
	moderationClientsMu.RLock()
	if len(moderationClients) == 0 {
		moderationClientsMu.RUnlock()
		return
	}

	// Copy the client set so the lock is not held while writing
	clients := make([]*websocket.Conn, 0, len(moderationClients))
	for conn := range moderationClients {
		clients = append(clients, conn)
	}
	moderationClientsMu.RUnlock()

	for _, conn := range clients {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		err := conn.WriteJSON(map[string]string{
			"type":    event,
			"subject": subject,
		})

		if err != nil {
			log.Printf("Failed to broadcast moderation event: %v", err)
			moderationClientsMu.Lock()
			delete(moderationClients, conn)
			moderationClientsMu.Unlock()
			conn.Close()
		}
	}
}

// ModerationFeed upgrades an admin connection to WebSocket and keeps it in
// the broadcast set until it drops. Admin access is enforced by the route
// middleware.
func ModerationFeed(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	moderationClientsMu.Lock()
	moderationClients[conn] = true
	moderationClientsMu.Unlock()

	defer func() {
		moderationClientsMu.Lock()
		delete(moderationClients, conn)
		moderationClientsMu.Unlock()
		conn.Close()

		log.Println("Moderation feed connection closed")
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Failed to set write deadline for welcome message: %v", err)
		return
	}

	err = conn.WriteJSON(map[string]string{
		"type":    "connected",
		"subject": "Moderation feed connected",
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	// Closed when the read loop exits so the ping goroutine terminates with
	// the connection instead of blocking on a stopped ticker.
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					log.Printf("Failed to set write deadline for ping: %v", err)
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					log.Printf("Moderation feed ping failed: %v", err)
					return
				}
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline: %v", err)
			break
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Moderation feed error: %v", err)
			}
			break
		}
	}
}
