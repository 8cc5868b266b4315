package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"sync"

	"github.com/gorilla/websocket"
)

type client struct {
	userID string
	conn   *websocket.Conn
	mu     sync.Mutex
}

// write serializes writes per connection; gorilla connections support one
// concurrent writer only.
func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// hub binds stable user identifiers to live connections and tracks which
// users are subscribed to which room. Subscriptions survive disconnects;
// a user without a bound connection is simply skipped on broadcast.
type hub struct {
	mu      sync.Mutex
	clients map[string]*client
	rooms   map[string]map[string]struct{}
}

func newHub() *hub {
	return &hub{
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]struct{}),
	}
}

// Bind attaches a connection to a user id, replacing any previous
// connection for the same user.
func (h *hub) Bind(userID string, conn *websocket.Conn) *client {
	c := &client{userID: userID, conn: conn}
	h.mu.Lock()
	prev := h.clients[userID]
	h.clients[userID] = c
	h.mu.Unlock()
	if prev != nil {
		_ = prev.conn.Close()
	}
	return c
}

// Unbind detaches the connection if it is still the current one for the
// user. Returns false when a newer connection has already replaced it.
func (h *hub) Unbind(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] != c {
		return false
	}
	delete(h.clients, c.userID)
	return true
}

func (h *hub) Subscribe(code, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.rooms[code]
	if group == nil {
		group = make(map[string]struct{})
		h.rooms[code] = group
	}
	group[userID] = struct{}{}
}

func (h *hub) Unsubscribe(code, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.rooms[code]
	if group == nil {
		return
	}
	delete(group, userID)
	if len(group) == 0 {
		delete(h.rooms, code)
	}
}

func (h *hub) DropRoom(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, code)
}

// RoomsOf returns the codes of every room the user is subscribed to.
func (h *hub) RoomsOf(userID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	codes := make([]string, 0, 1)
	for code, group := range h.rooms {
		if _, ok := group[userID]; ok {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

func (h *hub) SendTo(userID, event string, data any) {
	h.mu.Lock()
	c := h.clients[userID]
	h.mu.Unlock()
	if c == nil {
		return
	}
	payload, err := encodeEvent(event, data)
	if err != nil {
		return
	}
	if err := c.write(payload); err != nil {
		_ = c.conn.Close()
	}
}

func (h *hub) Broadcast(code, event string, data any) {
	h.mu.Lock()
	group := h.rooms[code]
	targets := make([]*client, 0, len(group))
	for userID := range group {
		if c := h.clients[userID]; c != nil {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()
	payload, err := encodeEvent(event, data)
	if err != nil {
		return
	}
	for _, c := range targets {
		if err := c.write(payload); err != nil {
			_ = c.conn.Close()
		}
	}
}

func encodeEvent(event string, data any) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = encoded
	}
	return json.Marshal(envelope{Event: event, Data: raw})
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected user_id=%s remote=%s", userID, r.RemoteAddr)
	c := s.hub.Bind(userID, conn)
	go s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	defer func() {
		_ = c.conn.Close()
		if s.hub.Unbind(c) {
			s.flush(s.handleDisconnect(c.userID))
		}
	}()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			log.Printf("ws disconnected user_id=%s error=%v", c.userID, err)
			return
		}
		s.dispatch(c.userID, raw)
	}
}

// dispatch routes one inbound envelope to its handler. Malformed frames
// are dropped; clients resync from room broadcasts.
func (s *Server) dispatch(userID string, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return
	}
	switch env.Event {
	case evCreateRoom:
		s.flush(s.createRoom(userID))
	case evJoinRoom:
		var req joinRoomRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		s.flush(s.joinRoom(userID, req))
	case evLeaveRoom:
		var req roomRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		s.flush(s.leaveRoom(userID, req.RoomID))
	case evCloseRoom:
		var req roomRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		s.flush(s.closeRoom(userID, req.RoomID))
	case evStartGame:
		var req roomRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		s.flush(s.startGame(userID, req.RoomID))
	case evAnswerQuestion:
		var req answerRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		s.flush(s.answerQuestion(userID, req))
	case evVoteProfile:
		var req voteRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		s.flush(s.voteProfile(userID, req))
	case evCleanRoom:
		var req roomRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		s.flush(s.cleanRoom(userID, req.RoomID))
	}
}

func (s *Server) flush(deliveries []delivery) {
	for _, d := range deliveries {
		if d.RoomCode != "" {
			s.hub.Broadcast(d.RoomCode, d.Event, d.Data)
			continue
		}
		if d.UserID != "" {
			s.hub.SendTo(d.UserID, d.Event, d.Data)
		}
	}
}
