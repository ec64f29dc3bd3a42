package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"comicvault/internal/logger"
	"comicvault/pkg/models"
)

// Hub fans progress events out to the owning user's open connections. Events
// arrive on a buffered channel fed by the toggle and mark-all handlers; a full
// channel drops the event rather than blocking a request.
type Hub struct {
	mu        sync.Mutex
	clients   map[*websocket.Conn]string // conn -> user id
	sendChans map[*websocket.Conn]chan []byte

	events     chan models.ProgressUpdate
	unregister chan *websocket.Conn
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]string),
		sendChans:  make(map[*websocket.Conn]chan []byte),
		events:     make(chan models.ProgressUpdate, 100),
		unregister: make(chan *websocket.Conn),
	}
}

// Publish queues an event without blocking the caller.
func (h *Hub) Publish(evt models.ProgressUpdate) {
	select {
	case h.events <- evt:
	default:
		logger.Warn("progress channel full, drop event")
	}
}

// Run handles disconnects and event fan-out. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.unregister:
			h.mu.Lock()
			if userID, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				if sendChan, ok := h.sendChans[conn]; ok {
					close(sendChan)
					delete(h.sendChans, conn)
				}
				conn.Close()
				logger.Info("ws client for user %s disconnected", userID)
			}
			h.mu.Unlock()

		case evt := <-h.events:
			data, err := json.Marshal(evt)
			if err != nil {
				logger.Error("marshal progress event: %v", err)
				continue
			}

			h.mu.Lock()
			for conn, userID := range h.clients {
				if userID != evt.UserID {
					continue
				}
				sendChan := h.sendChans[conn]
				select {
				case sendChan <- data:
				default:
					logger.Warn("ws send channel full for user %s, removing", userID)
					delete(h.clients, conn)
					delete(h.sendChans, conn)
					close(sendChan)
					conn.Close()
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) add(conn *websocket.Conn, userID string, sendChan chan []byte) {
	h.mu.Lock()
	h.clients[conn] = userID
	h.sendChans[conn] = sendChan
	h.mu.Unlock()
}
