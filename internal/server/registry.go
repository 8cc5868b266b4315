package server

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomNotOpen  = errors.New("room not open")
)

// errIgnored marks a mutation that decided to do nothing: permission
// misses and out-of-phase events are dropped silently rather than reported.
var errIgnored = errors.New("ignored")

// Registry owns the map of live rooms. The registry lock guards only the
// map itself; every room carries its own mutex so that mutations on
// different rooms never serialize against each other.
type Registry struct {
	mu    sync.RWMutex
	rand  *randSource
	rooms map[string]*roomEntry
}

type roomEntry struct {
	mu   sync.Mutex
	room *Room
}

func NewRegistry(rand *randSource) *Registry {
	return &Registry{
		rand:  rand,
		rooms: make(map[string]*roomEntry),
	}
}

// CreateRoom registers an empty open room under a previously-unassigned
// 6-digit code, retrying candidate codes until one is free.
func (r *Registry) CreateRoom(creatorID string) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	var code string
	for {
		code = r.rand.newRoomCode()
		if _, taken := r.rooms[code]; !taken {
			break
		}
	}
	room := &Room{
		ID:        uuid.NewString(),
		Code:      code,
		CreatorID: creatorID,
		Phase:     phaseOpen,
		Users:     make(map[string]*User),
	}
	r.rooms[code] = &roomEntry{room: room}
	return room
}

// Update runs fn with the room's mutex held. This is the single mutation
// path for room state: handlers for the same room serialize here while
// other rooms proceed independently.
func (r *Registry) Update(code string, fn func(room *Room) error) error {
	r.mu.RLock()
	entry, ok := r.rooms[code]
	r.mu.RUnlock()
	if !ok {
		return ErrRoomNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.room)
}

// Remove deletes the room unconditionally. Safe to call for codes that are
// already gone.
func (r *Registry) Remove(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, code)
}

func (r *Registry) Has(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[code]
	return ok
}

// Codes returns the codes of all live rooms in stable order.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.rooms))
	for code := range r.rooms {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (r *Registry) Summaries() []RoomSummary {
	codes := r.Codes()
	list := make([]RoomSummary, 0, len(codes))
	for _, code := range codes {
		_ = r.Update(code, func(room *Room) error {
			list = append(list, RoomSummary{
				Code:    room.Code,
				Phase:   room.Phase,
				Members: len(room.Users),
			})
			return nil
		})
	}
	return list
}
