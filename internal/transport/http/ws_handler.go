package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"live-practice-service/internal/bus"
	"live-practice-service/internal/domain"
	"live-practice-service/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WSHandler bridges websocket connections to broadcast groups. Clients only
// receive; all game actions go through the REST surface.
type WSHandler struct {
	bus         *bus.Bus
	coordinator *game.Coordinator
	auth        *Authenticator
	upgrader    websocket.Upgrader
}

func NewWSHandler(b *bus.Bus, coordinator *game.Coordinator, auth *Authenticator) *WSHandler {
	return &WSHandler{
		bus:         b,
		coordinator: coordinator,
		auth:        auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Register mounts the socket routes on r.
func (h *WSHandler) Register(r *mux.Router) {
	r.HandleFunc("/ws/announce/classes/{class_id}", h.serveAnnounce)
	r.HandleFunc("/ws/live-games/{session_id}", h.serveGame)
}

// serveAnnounce subscribes the socket to the per-class discovery group.
func (h *WSHandler) serveAnnounce(w http.ResponseWriter, r *http.Request) {
	classID := mux.Vars(r)["class_id"]
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	sub := h.bus.Subscribe(domain.AnnounceGroup(classID))
	h.pump(conn, sub, nil)
}

// serveGame subscribes the socket to the session's game group. When the
// caller presents a valid student token their participant connection flag
// follows the socket.
func (h *WSHandler) serveGame(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	var onDetach func()
	if claims, err := h.auth.claimsFromRequest(r); err == nil && claims.Role == RoleStudent {
		userID := claims.Subject
		h.coordinator.SetConnected(r.Context(), sessionID, userID, true)
		onDetach = func() {
			h.coordinator.SetConnected(context.Background(), sessionID, userID, false)
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	sub := h.bus.Subscribe(domain.GameGroup(sessionID))
	h.pump(conn, sub, onDetach)
}

// pump runs the writer goroutine and the read loop until either side fails,
// then tears the subscription down. The writer owns all writes to conn,
// including pings.
func (h *WSHandler) pump(conn *websocket.Conn, sub *bus.Subscriber, onDetach func()) {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer func() {
			ticker.Stop()
			conn.Close()
		}()
		for {
			select {
			case frame, ok := <-sub.C():
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if !ok {
					conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		// Inbound frames are ignored; the read loop only detects closure.
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read: %v", err)
			}
			break
		}
	}

	close(done)
	sub.Close()
	conn.Close()
	if onDetach != nil {
		onDetach()
	}
}
