package server

import (
	"net/http"
	"sync"
	"time"

	"whos-who/internal/config"

	"gorm.io/gorm"
)

type Server struct {
	cfg       config.Config
	db        *gorm.DB
	rooms     *Registry
	hub       *hub
	rand      *randSource
	generator ProfileGenerator
	questions []string
	timersMu  sync.Mutex
	timers    map[string]*time.Timer
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	rand := newRandSource(0)
	s := &Server{
		cfg:       cfg,
		db:        conn,
		rooms:     NewRegistry(rand),
		hub:       newHub(),
		rand:      rand,
		questions: loadQuestionLibrary(conn),
		timers:    make(map[string]*time.Timer),
	}
	s.generator = newOpenAIGenerator(cfg)
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/rooms", s.handleListRooms)
	mux.HandleFunc("GET /api/rooms/{code}", s.handleGetRoom)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	summaries := s.rooms.Summaries()
	rooms := make([]map[string]any, 0, len(summaries))
	for _, summary := range summaries {
		rooms = append(rooms, map[string]any{
			"roomId":  summary.Code,
			"phase":   summary.Phase,
			"members": summary.Members,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	var payload map[string]any
	err := s.rooms.Update(code, func(room *Room) error {
		payload = snapshot(room)
		return nil
	})
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}
