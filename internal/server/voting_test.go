package server

import (
	"testing"
	"time"
)

func playToVoting(t *testing.T, s *Server) string {
	t.Helper()
	code := playToGenerating(t, s)
	waitFor(t, time.Second, "voting phase", func() bool {
		return roomPhase(s, code) == phaseVoting
	})
	return code
}

func currentSubject(t *testing.T, s *Server, code string) string {
	t.Helper()
	subjectID := ""
	roomState(t, s, code, func(room *Room) {
		if room.Round != nil {
			subjectID = room.Round.SubjectID
		}
	})
	if subjectID == "" {
		t.Fatalf("no vote round running")
	}
	return subjectID
}

func TestVoteRoundCollectsOneGuessEach(t *testing.T) {
	cfg := fastConfig()
	// A long reveal delay freezes the room between rounds.
	cfg.RevealDelaySeconds = 3600
	s := newGameServer(cfg, &stubGenerator{})
	code := playToVoting(t, s)
	subjectID := currentSubject(t, s, code)

	ds := s.voteProfile("u1", voteRequest{RoomID: code, GuessedUserID: subjectID})
	if hasDelivery(ds, evVotedProfile) {
		t.Fatalf("round closed after a single vote")
	}
	if ds := s.voteProfile("u1", voteRequest{RoomID: code, GuessedUserID: "u2"}); ds != nil {
		t.Fatalf("second vote should be ignored, got %v", deliveryEvents(ds))
	}
	roomState(t, s, code, func(room *Room) {
		if room.Round.Votes["u1"] != subjectID {
			t.Fatalf("first vote lost or replaced: %q", room.Round.Votes["u1"])
		}
	})

	s.voteProfile("u2", voteRequest{RoomID: code, GuessedUserID: "u1"})
	ds = s.voteProfile("u3", voteRequest{RoomID: code, GuessedUserID: subjectID})
	reveal := findDelivery(t, ds, evVotedProfile).Data.(votedProfilePayload)
	if reveal.SubjectUserID != subjectID {
		t.Fatalf("reveal subject = %q, want %q", reveal.SubjectUserID, subjectID)
	}
	roomState(t, s, code, func(room *Room) {
		if room.Round != nil {
			t.Fatalf("round should be cleared after the reveal")
		}
	})
}

func TestVotingScoresAndFinishes(t *testing.T) {
	s := newGameServer(fastConfig(), &stubGenerator{})
	code := playToVoting(t, s)

	var results []resultPayload
	for round := 0; round < 3; round++ {
		waitFor(t, time.Second, "next round", func() bool {
			running := false
			roomState(t, s, code, func(room *Room) {
				running = room.Round != nil
			})
			return running
		})
		subjectID := currentSubject(t, s, code)
		// Everyone guesses right every round.
		s.voteProfile("u1", voteRequest{RoomID: code, GuessedUserID: subjectID})
		s.voteProfile("u2", voteRequest{RoomID: code, GuessedUserID: subjectID})
		ds := s.voteProfile("u3", voteRequest{RoomID: code, GuessedUserID: subjectID})
		if round == 2 {
			waitFor(t, time.Second, "finished phase", func() bool {
				return roomPhase(s, code) == phaseFinished
			})
			roomState(t, s, code, func(room *Room) {
				results = scoreboard(room)
			})
		} else if !hasDelivery(ds, evVotedProfile) {
			t.Fatalf("expected reveal after last vote, got %v", deliveryEvents(ds))
		}
	}

	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	for _, result := range results {
		if result.Score != 3 {
			t.Fatalf("expected score 3 for %s, got %d", result.UserID, result.Score)
		}
	}
}

func TestVoteForUnknownUserIgnored(t *testing.T) {
	s := newGameServer(fastConfig(), &stubGenerator{})
	code := playToVoting(t, s)
	if ds := s.voteProfile("u1", voteRequest{RoomID: code, GuessedUserID: "stranger"}); ds != nil {
		t.Fatalf("vote for unknown user should be ignored, got %v", deliveryEvents(ds))
	}
}

func TestCleanRoomResetsForAnotherGame(t *testing.T) {
	s := newGameServer(fastConfig(), &stubGenerator{})
	code := playToVoting(t, s)
	for round := 0; round < 3; round++ {
		waitFor(t, time.Second, "next round", func() bool {
			running := false
			roomState(t, s, code, func(room *Room) {
				running = room.Round != nil
			})
			return running || roomPhase(s, code) == phaseFinished
		})
		subjectID := currentSubject(t, s, code)
		s.voteProfile("u1", voteRequest{RoomID: code, GuessedUserID: subjectID})
		s.voteProfile("u2", voteRequest{RoomID: code, GuessedUserID: subjectID})
		s.voteProfile("u3", voteRequest{RoomID: code, GuessedUserID: subjectID})
	}
	waitFor(t, time.Second, "finished phase", func() bool {
		return roomPhase(s, code) == phaseFinished
	})

	if ds := s.cleanRoom("u2", code); ds != nil {
		t.Fatalf("non-creator clean should be ignored, got %v", deliveryEvents(ds))
	}
	ds := s.cleanRoom("u1", code)
	findDelivery(t, ds, evCleanedRoom)

	roomState(t, s, code, func(room *Room) {
		if room.Phase != phaseOpen {
			t.Fatalf("phase = %q", room.Phase)
		}
		if len(room.Users) != 3 {
			t.Fatalf("membership should survive clean, got %d users", len(room.Users))
		}
		if room.Queues != nil || room.Profiles != nil || room.Scores != nil || room.Round != nil {
			t.Fatalf("game state should be cleared")
		}
	})

	// The reopened room accepts a fresh game.
	found := findDelivery(t, s.startGame("u1", code), evStartedGame)
	if found.RoomCode != code {
		t.Fatalf("restart broadcast targeted %q", found.RoomCode)
	}
}
