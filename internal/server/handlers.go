package server

import (
	"errors"
	"log"
	"time"
)

func (s *Server) createRoom(userID string) []delivery {
	room := s.rooms.CreateRoom(userID)
	log.Printf("room created room_code=%s creator_id=%s", room.Code, userID)
	if err := s.persistRoom(room); err != nil {
		log.Printf("persist room failed room_code=%s error=%v", room.Code, err)
	}
	return []delivery{
		toUser(userID, evRoomCreated, roomCreatedPayload{RoomID: room.Code}),
	}
}

func (s *Server) joinRoom(userID string, req joinRoomRequest) []delivery {
	name, err := validateName(req.Name)
	if err != nil {
		return nil
	}
	var ds []delivery
	var joined User
	updateErr := s.rooms.Update(req.RoomID, func(room *Room) error {
		existing := room.Users[userID]
		if room.Phase != phaseOpen && existing == nil {
			return ErrRoomNotOpen
		}
		if existing != nil {
			existing.Name = name
			existing.Online = true
			joined = *existing
		} else {
			user := &User{
				ID:      userID,
				Name:    name,
				Online:  true,
				IsAdmin: room.CreatorID == userID,
			}
			room.Users[userID] = user
			joined = *user
		}
		ds = append(ds, toUser(userID, evJoinedRoom, joinedRoomPayload{
			RoomID:  room.Code,
			Name:    joined.Name,
			IsAdmin: joined.IsAdmin,
			Open:    room.Phase == phaseOpen,
			Phase:   room.Phase,
		}))
		ds = append(ds, roomUsersDeliveries(room)...)
		ds = append(ds, s.projectionFor(room, userID)...)
		return nil
	})
	switch {
	case errors.Is(updateErr, ErrRoomNotFound):
		return []delivery{toUser(userID, evRoomNotFound, nil)}
	case errors.Is(updateErr, ErrRoomNotOpen):
		return []delivery{toUser(userID, evRoomNotOpen, nil)}
	case updateErr != nil:
		return nil
	}
	s.hub.Subscribe(req.RoomID, userID)
	s.cancelTimer(graceTimerKey(req.RoomID))
	log.Printf("user joined room_code=%s user_id=%s name=%s", req.RoomID, userID, name)
	if err := s.persistMember(req.RoomID, joined); err != nil {
		log.Printf("persist member failed room_code=%s error=%v", req.RoomID, err)
	}
	return ds
}

func (s *Server) leaveRoom(userID, roomID string) []delivery {
	var ds []delivery
	var empty bool
	var job *generationJob
	updateErr := s.rooms.Update(roomID, func(room *Room) error {
		if _, ok := room.Users[userID]; !ok {
			return errIgnored
		}
		delete(room.Users, userID)
		forgetParticipant(room, userID)
		empty = len(room.Users) == 0
		if empty {
			return nil
		}
		ds = append(ds, roomUsersDeliveries(room)...)
		// Removing a member can satisfy a pending threshold.
		switch room.Phase {
		case phaseAnswering:
			var transitioned bool
			ds = append(ds, s.maybeFinishAnswering(room, &transitioned)...)
			if transitioned {
				job = buildGenerationJob(room)
			}
		case phaseGenerating:
			ds = append(ds, s.maybeStartVoting(room)...)
		case phaseVoting:
			ds = append(ds, s.maybeCloseRound(room)...)
		}
		return nil
	})
	if updateErr != nil {
		return nil
	}
	s.hub.Unsubscribe(roomID, userID)
	log.Printf("user left room_code=%s user_id=%s", roomID, userID)
	if empty {
		s.destroyRoom(roomID, "empty")
	}
	if job != nil {
		s.persistPhase(roomID)
		s.startGeneration(job)
	}
	return append(ds, toUser(userID, evLeftRoom, nil))
}

func (s *Server) closeRoom(userID, roomID string) []delivery {
	updateErr := s.rooms.Update(roomID, func(room *Room) error {
		if room.CreatorID != userID {
			return errIgnored
		}
		return nil
	})
	if updateErr != nil {
		return nil
	}
	// Deliver the farewell before the subscriptions are dropped.
	s.flush([]delivery{toRoom(roomID, evClosedRoom, nil)})
	s.destroyRoom(roomID, "closed")
	return nil
}

// handleDisconnect marks the user offline in every room they belong to.
// The membership itself is kept so the game can be rejoined; rooms where
// every member is offline are destroyed after a grace delay, re-checked
// when the delay fires.
func (s *Server) handleDisconnect(userID string) []delivery {
	var ds []delivery
	for _, code := range s.hub.RoomsOf(userID) {
		allOffline := false
		updateErr := s.rooms.Update(code, func(room *Room) error {
			user := room.Users[userID]
			if user == nil {
				return errIgnored
			}
			user.Online = false
			ds = append(ds, roomUsersDeliveries(room)...)
			allOffline = true
			for _, member := range room.Users {
				if member.Online {
					allOffline = false
					break
				}
			}
			return nil
		})
		if updateErr != nil {
			continue
		}
		if allOffline {
			code := code
			grace := time.Duration(s.cfg.EmptyRoomGraceSeconds) * time.Second
			s.scheduleTimer(graceTimerKey(code), grace, func() {
				s.destroyIfAllOffline(code)
			})
		}
	}
	return ds
}

func (s *Server) destroyIfAllOffline(code string) {
	updateErr := s.rooms.Update(code, func(room *Room) error {
		for _, member := range room.Users {
			if member.Online {
				return errIgnored
			}
		}
		return nil
	})
	if updateErr != nil {
		return
	}
	s.destroyRoom(code, "abandoned")
}

func (s *Server) destroyRoom(code, reason string) {
	var dbID uint
	_ = s.rooms.Update(code, func(room *Room) error {
		dbID = room.DBID
		return nil
	})
	s.rooms.Remove(code)
	s.hub.DropRoom(code)
	s.cancelRoomTimers(code)
	log.Printf("room destroyed room_code=%s reason=%s", code, reason)
	if err := s.persistRoomClosed(dbID, reason); err != nil {
		log.Printf("persist room close failed room_code=%s error=%v", code, err)
	}
}
