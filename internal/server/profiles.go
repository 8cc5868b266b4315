package server

import (
	"context"
	"log"
	"strings"
)

// AnswerPair is one question about a subject together with the answer a
// fellow player gave.
type AnswerPair struct {
	Question   string
	Answer     string
	AnswererID string
}

// ProfileGenerator produces a short personality profile for a subject from
// the answers collected about them.
type ProfileGenerator interface {
	Available() bool
	GenerateProfile(ctx context.Context, subjectName string, answers []AnswerPair) (string, error)
}

const fallbackProfileText = "This player kept their secrets well. No profile could be written, so let intuition decide who it is."

type subjectJob struct {
	SubjectID string
	Name      string
	Pairs     []AnswerPair
}

type generationJob struct {
	roomCode string
	subjects []subjectJob
}

// buildGenerationJob copies everything the generator needs out of the room
// while the room lock is still held. The returned job is safe to use from
// goroutines without touching the room again.
func buildGenerationJob(room *Room) *generationJob {
	job := &generationJob{roomCode: room.Code}
	for _, subjectID := range room.Participants {
		subject := subjectJob{SubjectID: subjectID}
		if user := room.Users[subjectID]; user != nil {
			subject.Name = user.Name
		}
		for _, queue := range room.Queues {
			for _, assignment := range queue.Assignments {
				if assignment.SubjectID == subjectID && assignment.Answered {
					subject.Pairs = append(subject.Pairs, AnswerPair{
						Question:   assignment.Prompt,
						Answer:     assignment.Answer,
						AnswererID: assignment.AnswererID,
					})
				}
			}
		}
		job.subjects = append(job.subjects, subject)
	}
	return job
}

// startGeneration kicks off one generator call per subject. Individual
// failures degrade to the fallback text; only a generator that is not
// usable at all fails the game.
func (s *Server) startGeneration(job *generationJob) {
	s.persistAnswers(job)
	if s.generator == nil || !s.generator.Available() {
		log.Printf("profile generator unavailable room_code=%s", job.roomCode)
		s.failGeneration(job.roomCode)
		return
	}
	log.Printf("profile generation started room_code=%s subjects=%d", job.roomCode, len(job.subjects))
	for _, subject := range job.subjects {
		subject := subject
		go func() {
			text, err := s.generator.GenerateProfile(context.Background(), subject.Name, subject.Pairs)
			fallback := false
			if err != nil || strings.TrimSpace(text) == "" {
				log.Printf("profile generation failed room_code=%s subject_id=%s error=%v", job.roomCode, subject.SubjectID, err)
				text = fallbackProfileText
				fallback = true
			}
			s.persistProfile(job.roomCode, subject.SubjectID, text, fallback)
			s.resolveProfile(job.roomCode, subject.SubjectID, text)
		}()
	}
}

// resolveProfile records a finished profile and starts the voting phase
// once every remaining participant has one. A result arriving after the
// room moved on, or for a departed participant, is dropped.
func (s *Server) resolveProfile(code, subjectID, text string) {
	var ds []delivery
	updateErr := s.rooms.Update(code, func(room *Room) error {
		if room.Phase != phaseGenerating {
			return errIgnored
		}
		if !containsString(room.Participants, subjectID) {
			return errIgnored
		}
		if _, done := room.Profiles[subjectID]; done {
			return errIgnored
		}
		room.Profiles[subjectID] = text
		ds = append(ds, s.maybeStartVoting(room)...)
		return nil
	})
	if updateErr != nil {
		return
	}
	s.flush(ds)
	s.persistPhase(code)
}

// failGeneration aborts the game when no profile can be produced at all.
func (s *Server) failGeneration(code string) {
	updateErr := s.rooms.Update(code, func(room *Room) error {
		if room.Phase != phaseGenerating {
			return errIgnored
		}
		room.Phase = phaseFinished
		room.Failed = true
		return nil
	})
	if updateErr != nil {
		return
	}
	s.flush([]delivery{toRoom(code, evProfilesError, nil)})
	s.persistPhase(code)
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
