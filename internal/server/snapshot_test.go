package server

import (
	"testing"
	"time"
)

func playToFinished(t *testing.T, s *Server) string {
	t.Helper()
	code := playToVoting(t, s)
	for round := 0; round < 3; round++ {
		waitFor(t, time.Second, "next round", func() bool {
			running := false
			roomState(t, s, code, func(room *Room) {
				running = room.Round != nil
			})
			return running
		})
		subjectID := currentSubject(t, s, code)
		s.voteProfile("u1", voteRequest{RoomID: code, GuessedUserID: subjectID})
		s.voteProfile("u2", voteRequest{RoomID: code, GuessedUserID: subjectID})
		s.voteProfile("u3", voteRequest{RoomID: code, GuessedUserID: subjectID})
	}
	waitFor(t, time.Second, "finished phase", func() bool {
		return roomPhase(s, code) == phaseFinished
	})
	return code
}

func TestRejoinDuringVotingRestoresVote(t *testing.T) {
	cfg := fastConfig()
	cfg.RevealDelaySeconds = 3600
	s := newGameServer(cfg, &stubGenerator{})
	code := playToVoting(t, s)
	subjectID := currentSubject(t, s, code)
	s.voteProfile("u2", voteRequest{RoomID: code, GuessedUserID: subjectID})

	ds := s.joinRoom("u2", joinRoomRequest{RoomID: code, Name: "Ben"})
	restored := findDelivery(t, ds, evVoteStarted).Data.(voteStartedPayload)
	if restored.YourVote != subjectID {
		t.Fatalf("yourVote = %q, want %q", restored.YourVote, subjectID)
	}
	if restored.Round != 1 || restored.Total != 3 {
		t.Fatalf("expected round 1/3, got %d/%d", restored.Round, restored.Total)
	}
	if restored.SubjectProfile == "" {
		t.Fatalf("expected the round's profile in the projection")
	}

	// A rejoiner who has not voted yet gets the round without a vote.
	ds = s.joinRoom("u3", joinRoomRequest{RoomID: code, Name: "Cat"})
	fresh := findDelivery(t, ds, evVoteStarted).Data.(voteStartedPayload)
	if fresh.YourVote != "" {
		t.Fatalf("unvoted rejoiner got yourVote %q", fresh.YourVote)
	}
}

func TestRejoinFinishedRoomGetsResults(t *testing.T) {
	s := newGameServer(fastConfig(), &stubGenerator{})
	code := playToFinished(t, s)

	ds := s.joinRoom("u1", joinRoomRequest{RoomID: code, Name: "Ada"})
	finished := findDelivery(t, ds, evVotingFinished).Data.(votingFinishedPayload)
	if len(finished.Results) != 3 {
		t.Fatalf("results = %d", len(finished.Results))
	}
	for _, result := range finished.Results {
		if result.Score != 3 {
			t.Fatalf("expected score 3 for %s, got %d", result.UserID, result.Score)
		}
	}
}

func TestRejoinFailedRoomGetsError(t *testing.T) {
	s := newGameServer(fastConfig(), &stubGenerator{unavailable: true})
	code := playToGenerating(t, s)
	waitFor(t, time.Second, "failed finish", func() bool {
		return roomPhase(s, code) == phaseFinished
	})

	ds := s.joinRoom("u1", joinRoomRequest{RoomID: code, Name: "Ada"})
	findDelivery(t, ds, evProfilesError)
	if hasDelivery(ds, evVotingFinished) {
		t.Fatalf("failed room must not project results")
	}
}

func TestVoteStartedRosterPerUser(t *testing.T) {
	cfg := fastConfig()
	cfg.RevealDelaySeconds = 3600
	s := newGameServer(cfg, &stubGenerator{})
	code := playToVoting(t, s)

	var ds []delivery
	_ = s.rooms.Update(code, func(room *Room) error {
		room.Round = nil
		room.VoteIndex = -1
		ds = s.startNextRound(room)
		return nil
	})
	if len(ds) != 3 {
		t.Fatalf("expected one voteStarted per member, got %d", len(ds))
	}
	for _, d := range ds {
		if d.UserID == "" {
			t.Fatalf("voteStarted must be user-scoped, got broadcast")
		}
		payload := d.Data.(voteStartedPayload)
		if payload.YourVote != "" {
			t.Fatalf("fresh round carried yourVote %q", payload.YourVote)
		}
		for _, user := range payload.Users {
			if user.IsYou != (user.UserID == d.UserID) {
				t.Fatalf("isYou wrong for %s in roster sent to %s", user.UserID, d.UserID)
			}
		}
	}
}
