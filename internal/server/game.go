package server

import "log"

func (s *Server) startGame(userID, roomID string) []delivery {
	var ds []delivery
	updateErr := s.rooms.Update(roomID, func(room *Room) error {
		if room.CreatorID != userID {
			return errIgnored
		}
		if room.Phase != phaseOpen {
			return errIgnored
		}
		if len(room.Users) < 2 {
			return errIgnored
		}
		s.buildQueues(room)
		room.Phase = phaseAnswering
		ds = append(ds, toRoom(room.Code, evStartedGame, nil))
		for _, participant := range room.Participants {
			ds = append(ds, s.nextQuestionDeliveries(room, participant, nil)...)
		}
		log.Printf("game started room_code=%s participants=%d", room.Code, len(room.Participants))
		return nil
	})
	if updateErr != nil {
		return nil
	}
	s.persistPhase(roomID)
	return ds
}

// buildQueues assigns every player a private queue of questions about each
// of the other participants, shuffled so consecutive questions rarely
// concern the same person.
func (s *Server) buildQueues(room *Room) {
	ids := sortedUserIDs(room)
	room.Participants = ids
	room.Queues = make(map[string]*PlayerQueue, len(ids))
	for _, answererID := range ids {
		var assignments []QuestionAssignment
		for _, subjectID := range ids {
			if subjectID == answererID {
				continue
			}
			for _, prompt := range s.drawQuestions(s.cfg.QuestionsPerSubject) {
				assignments = append(assignments, QuestionAssignment{
					Prompt:     prompt,
					SubjectID:  subjectID,
					AnswererID: answererID,
				})
			}
		}
		s.rand.Shuffle(len(assignments), func(i, j int) {
			assignments[i], assignments[j] = assignments[j], assignments[i]
		})
		room.Queues[answererID] = &PlayerQueue{Assignments: assignments}
	}
}

// nextQuestionDeliveries serves the assignment at the player's cursor, or
// reports exhaustion once the queue has been worked through. Assignments
// about players who have since left are skipped. When this call completes
// the room's last open queue, transitioned is set.
func (s *Server) nextQuestionDeliveries(room *Room, userID string, transitioned *bool) []delivery {
	queue := room.Queues[userID]
	if queue == nil {
		return nil
	}
	if queue.Complete {
		return []delivery{toUser(userID, evDoneWithQuestions, nil)}
	}
	for queue.Cursor < len(queue.Assignments) {
		if room.Users[queue.Assignments[queue.Cursor].SubjectID] != nil {
			break
		}
		queue.Cursor++
	}
	if queue.Cursor >= len(queue.Assignments) {
		queue.Complete = true
		ds := []delivery{toUser(userID, evDoneWithQuestions, nil)}
		ds = append(ds, s.maybeFinishAnswering(room, transitioned)...)
		return ds
	}
	assignment := queue.Assignments[queue.Cursor]
	subject := room.Users[assignment.SubjectID]
	answerer := room.Users[userID]
	if answerer == nil {
		return nil
	}
	return []delivery{toUser(userID, evQuestion, questionPayload{
		Question:           assignment.Prompt,
		AboutUserID:        subject.ID,
		AboutUserName:      subject.Name,
		AnsweredByUserID:   answerer.ID,
		AnsweredByUserName: answerer.Name,
		Index:              queue.Cursor,
		Total:              len(queue.Assignments),
	})}
}

func (s *Server) answerQuestion(userID string, req answerRequest) []delivery {
	var ds []delivery
	var job *generationJob
	updateErr := s.rooms.Update(req.RoomID, func(room *Room) error {
		if room.Phase != phaseAnswering {
			return errIgnored
		}
		queue := room.Queues[userID]
		if queue == nil || queue.Complete || queue.Cursor >= len(queue.Assignments) {
			return errIgnored
		}
		assignment := &queue.Assignments[queue.Cursor]
		assignment.Answer = req.Answer
		assignment.Answered = true
		queue.Cursor++
		var transitioned bool
		ds = append(ds, s.nextQuestionDeliveries(room, userID, &transitioned)...)
		if transitioned {
			job = buildGenerationJob(room)
		}
		return nil
	})
	if updateErr != nil {
		return nil
	}
	if job != nil {
		s.persistPhase(req.RoomID)
		s.startGeneration(job)
	}
	return ds
}

// maybeFinishAnswering flips the room into profile generation once every
// queue is complete. The phase check makes the transition happen at most
// once per game.
func (s *Server) maybeFinishAnswering(room *Room, transitioned *bool) []delivery {
	if room.Phase != phaseAnswering || len(room.Queues) == 0 {
		return nil
	}
	for _, queue := range room.Queues {
		if !queue.Complete {
			return nil
		}
	}
	room.Phase = phaseGenerating
	room.Profiles = make(map[string]string, len(room.Participants))
	room.Scores = make(map[string]int, len(room.Participants))
	for _, id := range room.Participants {
		room.Scores[id] = 0
	}
	if transitioned != nil {
		*transitioned = true
	}
	log.Printf("answering finished room_code=%s", room.Code)
	return []delivery{toRoom(room.Code, evQuestionsFinished, nil)}
}

// forgetParticipant drops every trace of a departed player from the game
// state so thresholds and rounds are computed over the remaining members.
func forgetParticipant(room *Room, userID string) {
	delete(room.Queues, userID)
	delete(room.Profiles, userID)
	delete(room.Scores, userID)
	room.Participants = removeString(room.Participants, userID)
	if room.Round != nil {
		delete(room.Round.Votes, userID)
	}
	// Pending vote rounds about the leaver are skipped; a running round
	// keeps going so cast votes still count for the scoreboard reveal.
	if next := room.VoteIndex + 1; next >= 0 && next < len(room.VoteOrder) {
		kept := room.VoteOrder[:next]
		for _, id := range room.VoteOrder[next:] {
			if id != userID {
				kept = append(kept, id)
			}
		}
		room.VoteOrder = kept
	}
}

func removeString(values []string, target string) []string {
	kept := values[:0]
	for _, value := range values {
		if value != target {
			kept = append(kept, value)
		}
	}
	return kept
}
