package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Session is one open websocket for a user. A user may hold several
// sessions (multiple tabs/devices); the hub indexes them per user so
// delivery does not scan every connection.
type Session struct {
	ID     string
	UserID uuid.UUID
	Send   chan []byte
}

type Hub struct {
	sessions   map[uuid.UUID]map[string]*Session
	register   chan *Session
	unregister chan *Session
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[uuid.UUID]map[string]*Session),
		register:   make(chan *Session),
		unregister: make(chan *Session),
	}
}

func (h *Hub) Register(s *Session) {
	h.register <- s
}

func (h *Hub) Unregister(s *Session) {
	h.unregister <- s
}

// SendToUser delivers a JSON payload to every open session of a user.
// Sessions with a full send buffer are skipped rather than blocked on.
func (h *Hub) SendToUser(userID uuid.UUID, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("realtime: marshal payload: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.sessions[userID] {
		select {
		case s.Send <- payload:
		default:
			// slow consumer, drop
		}
	}
}

// SendToPair delivers to both participants of a conversation.
func (h *Hub) SendToPair(a, b uuid.UUID, data interface{}) {
	h.SendToUser(a, data)
	h.SendToUser(b, data)
}

func (h *Hub) Run() {
	for {
		select {
		case s := <-h.register:
			h.mu.Lock()
			if h.sessions[s.UserID] == nil {
				h.sessions[s.UserID] = make(map[string]*Session)
			}
			h.sessions[s.UserID][s.ID] = s
			h.mu.Unlock()
			log.Printf("realtime: session %s registered (user %s)", s.ID, s.UserID)

		case s := <-h.unregister:
			h.mu.Lock()
			if old, ok := h.sessions[s.UserID][s.ID]; ok {
				delete(h.sessions[s.UserID], s.ID)
				if len(h.sessions[s.UserID]) == 0 {
					delete(h.sessions, s.UserID)
				}
				close(old.Send)
				log.Printf("realtime: session %s unregistered", s.ID)
			}
			h.mu.Unlock()
		}
	}
}
