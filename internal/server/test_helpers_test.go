package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"whos-who/internal/config"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

// newGameServer builds a server with a fixed random seed, no database and
// a caller-supplied generator, so game flows can be driven directly
// through the event handlers.
func newGameServer(cfg config.Config, gen ProfileGenerator) *Server {
	rand := newRandSource(1)
	return &Server{
		cfg:       cfg,
		rooms:     NewRegistry(rand),
		hub:       newHub(),
		rand:      rand,
		generator: gen,
		questions: builtinQuestions(),
		timers:    make(map[string]*time.Timer),
	}
}

func fastConfig() config.Config {
	cfg := config.Default()
	cfg.RevealDelaySeconds = 0
	return cfg
}

type stubGenerator struct {
	mu          sync.Mutex
	unavailable bool
	failFor     map[string]bool
	calls       int
}

func (g *stubGenerator) Available() bool {
	return !g.unavailable
}

func (g *stubGenerator) GenerateProfile(ctx context.Context, subjectName string, answers []AnswerPair) (string, error) {
	g.mu.Lock()
	g.calls++
	fail := g.failFor[subjectName]
	g.mu.Unlock()
	if fail {
		return "", errors.New("generator down")
	}
	return "profile of " + subjectName, nil
}

func findDelivery(t *testing.T, ds []delivery, event string) delivery {
	t.Helper()
	for _, d := range ds {
		if d.Event == event {
			return d
		}
	}
	t.Fatalf("no %s delivery in %v", event, deliveryEvents(ds))
	return delivery{}
}

func hasDelivery(ds []delivery, event string) bool {
	for _, d := range ds {
		if d.Event == event {
			return true
		}
	}
	return false
}

func deliveryEvents(ds []delivery) []string {
	events := make([]string, 0, len(ds))
	for _, d := range ds {
		events = append(events, d.Event)
	}
	return events
}

func createTestRoom(t *testing.T, s *Server, creatorID string) string {
	t.Helper()
	ds := s.createRoom(creatorID)
	created := findDelivery(t, ds, evRoomCreated)
	return created.Data.(roomCreatedPayload).RoomID
}

func joinTestRoom(t *testing.T, s *Server, code, userID, name string) {
	t.Helper()
	ds := s.joinRoom(userID, joinRoomRequest{RoomID: code, Name: name})
	findDelivery(t, ds, evJoinedRoom)
}

func roomState(t *testing.T, s *Server, code string, read func(room *Room)) {
	t.Helper()
	if err := s.rooms.Update(code, func(room *Room) error {
		read(room)
		return nil
	}); err != nil {
		t.Fatalf("room %s: %v", code, err)
	}
}

func roomPhase(s *Server, code string) string {
	phase := ""
	_ = s.rooms.Update(code, func(room *Room) error {
		phase = room.Phase
		return nil
	})
	return phase
}

// answerEverything submits answers for the user until their queue is
// complete.
func answerEverything(t *testing.T, s *Server, code, userID string) {
	t.Helper()
	for i := 0; i < 100; i++ {
		done := false
		_ = s.rooms.Update(code, func(room *Room) error {
			queue := room.Queues[userID]
			done = queue == nil || queue.Complete
			return nil
		})
		if done {
			return
		}
		s.answerQuestion(userID, answerRequest{RoomID: code, Answer: fmt.Sprintf("answer %d from %s", i, userID)})
	}
	t.Fatalf("queue for %s never completed", userID)
}

func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
