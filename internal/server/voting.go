package server

import (
	"log"
	"sort"
	"time"
)

// maybeStartVoting flips the room into the voting phase once a profile
// exists for every remaining participant.
func (s *Server) maybeStartVoting(room *Room) []delivery {
	if room.Phase != phaseGenerating || len(room.Participants) == 0 {
		return nil
	}
	for _, id := range room.Participants {
		if _, done := room.Profiles[id]; !done {
			return nil
		}
	}
	room.Phase = phaseVoting
	room.VoteOrder = s.rand.shuffledStrings(room.Participants)
	room.VoteIndex = -1
	log.Printf("voting started room_code=%s rounds=%d", room.Code, len(room.VoteOrder))
	return s.startNextRound(room)
}

func (s *Server) startNextRound(room *Room) []delivery {
	room.VoteIndex++
	if room.VoteIndex >= len(room.VoteOrder) {
		return s.finishVoting(room)
	}
	subjectID := room.VoteOrder[room.VoteIndex]
	room.Round = &VoteRound{SubjectID: subjectID, Votes: make(map[string]string)}
	// Per-user deliveries so each roster carries the right isYou marker.
	ds := make([]delivery, 0, len(room.Users))
	for userID := range room.Users {
		ds = append(ds, toUser(userID, evVoteStarted, voteStartedPayload{
			RoomID:         room.Code,
			SubjectProfile: room.Profiles[subjectID],
			Round:          room.VoteIndex + 1,
			Total:          len(room.VoteOrder),
			Users:          roomUsersList(room, userID),
		}))
	}
	return ds
}

func (s *Server) voteProfile(userID string, req voteRequest) []delivery {
	var ds []delivery
	updateErr := s.rooms.Update(req.RoomID, func(room *Room) error {
		if room.Phase != phaseVoting || room.Round == nil {
			return errIgnored
		}
		if _, member := room.Users[userID]; !member {
			return errIgnored
		}
		if _, voted := room.Round.Votes[userID]; voted {
			return errIgnored
		}
		if _, known := room.Users[req.GuessedUserID]; !known {
			return errIgnored
		}
		room.Round.Votes[userID] = req.GuessedUserID
		ds = append(ds, s.maybeCloseRound(room)...)
		return nil
	})
	if updateErr != nil {
		return nil
	}
	return ds
}

// maybeCloseRound scores and reveals the current round once every member
// has voted, then schedules the next round after the reveal delay.
func (s *Server) maybeCloseRound(room *Room) []delivery {
	round := room.Round
	if room.Phase != phaseVoting || round == nil {
		return nil
	}
	if len(round.Votes) < len(room.Users) {
		return nil
	}
	for voter, guess := range round.Votes {
		if guess == round.SubjectID {
			room.Scores[voter]++
		}
	}
	subjectName := ""
	if user := room.Users[round.SubjectID]; user != nil {
		subjectName = user.Name
	}
	votes := make(map[string]string, len(round.Votes))
	for voter, guess := range round.Votes {
		votes[voter] = guess
	}
	room.Round = nil
	log.Printf("vote round closed room_code=%s round=%d subject_id=%s", room.Code, room.VoteIndex+1, round.SubjectID)
	go s.persistVotes(room.Code, room.VoteIndex+1, round.SubjectID, votes)

	code := room.Code
	expected := room.VoteIndex
	delay := time.Duration(s.cfg.RevealDelaySeconds) * time.Second
	s.scheduleTimer(revealTimerKey(code), delay, func() {
		s.advanceVoting(code, expected)
	})
	return []delivery{toRoom(room.Code, evVotedProfile, votedProfilePayload{
		RoomID:        room.Code,
		SubjectUserID: round.SubjectID,
		SubjectName:   subjectName,
		Scores:        scoreboard(room),
	})}
}

// advanceVoting runs when the reveal delay elapses. The expected index
// guards against a round that already moved on or a room that reset.
func (s *Server) advanceVoting(code string, expected int) {
	var ds []delivery
	updateErr := s.rooms.Update(code, func(room *Room) error {
		if room.Phase != phaseVoting || room.Round != nil || room.VoteIndex != expected {
			return errIgnored
		}
		ds = s.startNextRound(room)
		return nil
	})
	if updateErr != nil {
		return
	}
	s.flush(ds)
}

func (s *Server) finishVoting(room *Room) []delivery {
	room.Phase = phaseFinished
	room.Round = nil
	results := scoreboard(room)
	log.Printf("voting finished room_code=%s", room.Code)
	go s.persistResults(room.Code, room.DBID, results)
	return []delivery{toRoom(room.Code, evVotingFinished, votingFinishedPayload{
		RoomID:  room.Code,
		Results: results,
	})}
}

// scoreboard returns the scores of current members, highest first, name as
// tiebreaker.
func scoreboard(room *Room) []resultPayload {
	results := make([]resultPayload, 0, len(room.Scores))
	for userID, score := range room.Scores {
		user := room.Users[userID]
		if user == nil {
			continue
		}
		results = append(results, resultPayload{
			UserID: userID,
			Name:   user.Name,
			Score:  score,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Name < results[j].Name
	})
	return results
}

// cleanRoom lets the creator reopen a concluded room for another game.
// Membership and connections survive; all game state is discarded.
func (s *Server) cleanRoom(userID, roomID string) []delivery {
	var ds []delivery
	updateErr := s.rooms.Update(roomID, func(room *Room) error {
		if room.CreatorID != userID {
			return errIgnored
		}
		if room.Phase != phaseFinished {
			return errIgnored
		}
		room.Phase = phaseOpen
		room.Failed = false
		room.Participants = nil
		room.Queues = nil
		room.Profiles = nil
		room.Scores = nil
		room.VoteOrder = nil
		room.VoteIndex = 0
		room.Round = nil
		ds = append(ds, toRoom(room.Code, evCleanedRoom, cleanedRoomPayload{RoomID: room.Code}))
		ds = append(ds, roomUsersDeliveries(room)...)
		return nil
	})
	if updateErr != nil {
		return nil
	}
	s.cancelTimer(revealTimerKey(roomID))
	log.Printf("room cleaned room_code=%s", roomID)
	s.persistPhase(roomID)
	return ds
}
