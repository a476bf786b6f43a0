package realtime

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Event names pushed over the realtime channel.
const (
	EventOrderStatus         = "updateOrderStatus"
	EventNotificationOrder   = "notificationOrder"
	EventStaffNewOrder       = "staffNewOrder"
	EventNotifyStaffNewOrder = "notificationStaffNewOrder"
	EventNotifyStaffCancel   = "notificationStaffCancelOrder"
	EventChatMessage         = "chatMessage"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// Event is one server-to-client push.
type Event struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Inbound is a client-to-server frame, currently only chat.
type Inbound struct {
	Type        string `json:"type"`
	RecipientID string `json:"recipient_id"`
	Body        string `json:"body"`
}

// Session is one live websocket connection for an authenticated user.
type Session struct {
	UserID uuid.UUID
	Staff  bool
	send   chan Event
	conn   *websocket.Conn
}

// Hub is the process-wide session registry: user id to the set of open
// connections, plus the staff broadcast group. All maps are guarded by mu;
// sends to a session are non-blocking and slow sessions are dropped.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[*Session]struct{}
	staff    map[*Session]struct{}
	closed   bool
}

// NewHub creates an empty session registry.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[uuid.UUID]map[*Session]struct{}),
		staff:    make(map[*Session]struct{}),
	}
}

// Serve registers the connection and blocks pumping frames until the peer
// disconnects or the hub shuts down. onMessage is invoked for every parsed
// inbound frame.
func (h *Hub) Serve(conn *websocket.Conn, userID uuid.UUID, staff bool, onMessage func(*Session, Inbound)) {
	s := &Session{
		UserID: userID,
		Staff:  staff,
		send:   make(chan Event, sendBuffer),
		conn:   conn,
	}

	if !h.register(s) {
		conn.Close()
		return
	}

	go s.writePump()
	s.readPump(onMessage)
	h.unregister(s)
}

// PushToUser delivers an event to every open connection of one user.
// Delivery is best effort; an offline user misses the push but keeps the
// persisted notification.
func (h *Hub) PushToUser(userID uuid.UUID, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.sessions[userID] {
		s.push(ev)
	}
}

// PushToStaff delivers an event to every connected staff session.
func (h *Hub) PushToStaff(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.staff {
		s.push(ev)
	}
}

// Online reports whether the user has at least one open connection.
func (h *Hub) Online(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID]) > 0
}

// Shutdown closes every connection and rejects new registrations.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	all := make([]*Session, 0)
	for _, set := range h.sessions {
		for s := range set {
			all = append(all, s)
		}
	}
	h.sessions = make(map[uuid.UUID]map[*Session]struct{})
	h.staff = make(map[*Session]struct{})
	h.mu.Unlock()

	for _, s := range all {
		close(s.send)
		s.conn.Close()
	}
}

func (h *Hub) register(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.sessions[s.UserID] == nil {
		h.sessions[s.UserID] = make(map[*Session]struct{})
	}
	h.sessions[s.UserID][s] = struct{}{}
	if s.Staff {
		h.staff[s] = struct{}{}
	}
	return true
}

func (h *Hub) unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[s.UserID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.sessions, s.UserID)
	}
	delete(h.staff, s)
	close(s.send)
}

// push enqueues without blocking; a full buffer means the peer is too slow
// and the frame is dropped.
func (s *Session) push(ev Event) {
	select {
	case s.send <- ev:
	default:
	}
}

func (s *Session) readPump(onMessage func(*Session, Inbound)) {
	s.conn.SetReadLimit(4096)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var in Inbound
		if err := s.conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Hub] read error: %v", err)
			}
			return
		}
		if onMessage != nil {
			onMessage(s, in)
		}
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
