package server

import (
	"encoding/json"
	"log"

	"whos-who/internal/db"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// The persistence layer is a best effort archive. A nil database disables
// it entirely and every write failure is logged, never surfaced to the
// game loop.

func (s *Server) persistRoom(room *Room) error {
	if s.db == nil {
		return nil
	}
	record := db.Room{
		RoomUID:   room.ID,
		Code:      room.Code,
		CreatorID: room.CreatorID,
		Phase:     room.Phase,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return err
	}
	_ = s.rooms.Update(room.Code, func(r *Room) error {
		r.DBID = record.ID
		return nil
	})
	return s.persistEvent(record.ID, "room_created", map[string]any{
		"roomId":    room.Code,
		"creatorId": room.CreatorID,
	})
}

func (s *Server) persistMember(code string, member User) error {
	if s.db == nil {
		return nil
	}
	dbID := s.roomDBID(code)
	if dbID == 0 {
		return nil
	}
	record := db.Member{
		RoomID:  dbID,
		UserID:  member.ID,
		Name:    member.Name,
		IsAdmin: member.IsAdmin,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&record).Error
	if err != nil {
		return err
	}
	return s.persistEvent(dbID, "member_joined", map[string]any{
		"userId": member.ID,
		"name":   member.Name,
	})
}

// persistPhase mirrors the room's current phase into the archive row.
func (s *Server) persistPhase(code string) {
	if s.db == nil {
		return
	}
	var dbID uint
	var phase string
	if err := s.rooms.Update(code, func(room *Room) error {
		dbID = room.DBID
		phase = room.Phase
		return nil
	}); err != nil || dbID == 0 {
		return
	}
	if err := s.db.Model(&db.Room{}).Where("id = ?", dbID).Update("phase", phase).Error; err != nil {
		log.Printf("persist phase failed room_code=%s error=%v", code, err)
		return
	}
	if err := s.persistEvent(dbID, "phase_changed", map[string]any{"phase": phase}); err != nil {
		log.Printf("persist phase event failed room_code=%s error=%v", code, err)
	}
}

func (s *Server) persistAnswers(job *generationJob) {
	if s.db == nil {
		return
	}
	dbID := s.roomDBID(job.roomCode)
	if dbID == 0 {
		return
	}
	var records []db.Answer
	for _, subject := range job.subjects {
		for _, pair := range subject.Pairs {
			records = append(records, db.Answer{
				RoomID:         dbID,
				SubjectUserID:  subject.SubjectID,
				AnswererUserID: pair.AnswererID,
				Question:       pair.Question,
				Answer:         pair.Answer,
			})
		}
	}
	if len(records) == 0 {
		return
	}
	if err := s.db.Create(&records).Error; err != nil {
		log.Printf("persist answers failed room_code=%s error=%v", job.roomCode, err)
	}
}

func (s *Server) persistProfile(code, subjectID, text string, fallback bool) {
	if s.db == nil {
		return
	}
	dbID := s.roomDBID(code)
	if dbID == 0 {
		return
	}
	record := db.Profile{
		RoomID:        dbID,
		SubjectUserID: subjectID,
		Text:          text,
		Fallback:      fallback,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		log.Printf("persist profile failed room_code=%s subject_id=%s error=%v", code, subjectID, err)
	}
}

func (s *Server) persistVotes(code string, roundNumber int, subjectID string, votes map[string]string) {
	if s.db == nil {
		return
	}
	dbID := s.roomDBID(code)
	if dbID == 0 {
		return
	}
	var records []db.Vote
	for voter, guess := range votes {
		records = append(records, db.Vote{
			RoomID:        dbID,
			RoundNumber:   roundNumber,
			VoterUserID:   voter,
			SubjectUserID: subjectID,
			GuessedUserID: guess,
			Correct:       guess == subjectID,
		})
	}
	if len(records) == 0 {
		return
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error; err != nil {
		log.Printf("persist votes failed room_code=%s round=%d error=%v", code, roundNumber, err)
	}
}

func (s *Server) persistResults(code string, dbID uint, results []resultPayload) {
	if s.db == nil || dbID == 0 {
		return
	}
	var records []db.Result
	for _, result := range results {
		records = append(records, db.Result{
			RoomID: dbID,
			UserID: result.UserID,
			Name:   result.Name,
			Score:  result.Score,
		})
	}
	if len(records) > 0 {
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error; err != nil {
			log.Printf("persist results failed room_code=%s error=%v", code, err)
		}
	}
	if err := s.persistEvent(dbID, "voting_finished", map[string]any{"results": results}); err != nil {
		log.Printf("persist results event failed room_code=%s error=%v", code, err)
	}
}

func (s *Server) persistRoomClosed(dbID uint, reason string) error {
	if s.db == nil || dbID == 0 {
		return nil
	}
	if err := s.db.Model(&db.Room{}).Where("id = ?", dbID).Update("phase", "closed").Error; err != nil {
		return err
	}
	return s.persistEvent(dbID, "room_closed", map[string]any{"reason": reason})
}

func (s *Server) persistEvent(roomDBID uint, eventType string, payload any) error {
	if s.db == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	record := db.Event{
		RoomID:  roomDBID,
		Type:    eventType,
		Payload: datatypes.JSON(raw),
	}
	return s.db.Create(&record).Error
}

func (s *Server) roomDBID(code string) uint {
	var dbID uint
	if err := s.rooms.Update(code, func(room *Room) error {
		dbID = room.DBID
		return nil
	}); err != nil {
		return 0
	}
	return dbID
}
