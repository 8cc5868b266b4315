package db

import (
	"time"

	"gorm.io/datatypes"
)

// Room is the archival record of a game room. Live room state is held in
// memory only; these rows exist for after-the-fact inspection.
type Room struct {
	ID        uint      `gorm:"primaryKey"`
	RoomUID   string    `gorm:"size:36;uniqueIndex;not null"`
	Code      string    `gorm:"size:6;index;not null"`
	CreatorID string    `gorm:"size:64;not null"`
	Phase     string    `gorm:"size:32;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Members   []Member
	Answers   []Answer
	Profiles  []Profile
	Votes     []Vote
	Results   []Result
	Events    []Event
}

type Member struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    uint      `gorm:"index;not null;uniqueIndex:idx_members_room_user"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_members_room_user"`
	Name      string    `gorm:"size:64;not null"`
	IsAdmin   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Answer struct {
	ID             uint      `gorm:"primaryKey"`
	RoomID         uint      `gorm:"index;not null"`
	SubjectUserID  string    `gorm:"size:64;index;not null"`
	AnswererUserID string    `gorm:"size:64;not null"`
	Question       string    `gorm:"size:280;not null"`
	Answer         string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

type Profile struct {
	ID            uint      `gorm:"primaryKey"`
	RoomID        uint      `gorm:"index;not null;uniqueIndex:idx_profiles_room_subject"`
	SubjectUserID string    `gorm:"size:64;not null;uniqueIndex:idx_profiles_room_subject"`
	Text          string    `gorm:"type:text;not null"`
	Fallback      bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time `gorm:"not null"`
}

type Vote struct {
	ID            uint      `gorm:"primaryKey"`
	RoomID        uint      `gorm:"index;not null;uniqueIndex:idx_votes_room_round_voter"`
	RoundNumber   int       `gorm:"not null;uniqueIndex:idx_votes_room_round_voter"`
	VoterUserID   string    `gorm:"size:64;not null;uniqueIndex:idx_votes_room_round_voter"`
	SubjectUserID string    `gorm:"size:64;not null"`
	GuessedUserID string    `gorm:"size:64;not null"`
	Correct       bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time `gorm:"not null"`
}

type Result struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    uint      `gorm:"index;not null;uniqueIndex:idx_results_room_user"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_results_room_user"`
	Name      string    `gorm:"size:64;not null"`
	Score     int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	RoomID    uint           `gorm:"index;not null"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}

// QuestionLibrary holds the optional database-backed question corpus.
// When empty or unreachable the built-in corpus is used instead.
type QuestionLibrary struct {
	ID        uint      `gorm:"primaryKey"`
	Text      string    `gorm:"size:280;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
