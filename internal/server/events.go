package server

import "encoding/json"

// Inbound event names.
const (
	evCreateRoom     = "createRoom"
	evJoinRoom       = "joinRoom"
	evLeaveRoom      = "leaveRoom"
	evCloseRoom      = "closeRoom"
	evStartGame      = "startGame"
	evAnswerQuestion = "answerQuestion"
	evVoteProfile    = "voteProfile"
	evCleanRoom      = "cleanRoom"
)

// Outbound event names.
const (
	evRoomCreated       = "roomCreated"
	evJoinedRoom        = "joinedRoom"
	evRoomNotFound      = "roomNotFound"
	evRoomNotOpen       = "roomNotOpen"
	evRoomUsers         = "roomUsers"
	evLeftRoom          = "leftRoom"
	evClosedRoom        = "closedRoom"
	evStartedGame       = "startedGame"
	evQuestion          = "question"
	evDoneWithQuestions = "doneWithQuestions"
	evQuestionsFinished = "questionsFinished"
	evProfilesError     = "userProfilesError"
	evVoteStarted       = "voteStarted"
	evVotedProfile      = "votedProfile"
	evVotingFinished    = "votingFinished"
	evCleanedRoom       = "cleanedRoom"
)

// envelope is the wire format in both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type joinRoomRequest struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type roomRequest struct {
	RoomID string `json:"roomId"`
}

type answerRequest struct {
	RoomID string `json:"roomId"`
	Answer string `json:"answer"`
}

type voteRequest struct {
	RoomID        string `json:"roomId"`
	GuessedUserID string `json:"guessedUserId"`
}

type roomCreatedPayload struct {
	RoomID string `json:"roomId"`
}

type joinedRoomPayload struct {
	RoomID  string `json:"roomId"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
	Open    bool   `json:"open"`
	Phase   string `json:"phase"`
}

type roomUserPayload struct {
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Online  bool   `json:"online"`
	IsAdmin bool   `json:"isAdmin"`
	IsYou   bool   `json:"isYou"`
}

type roomUsersPayload struct {
	RoomID string            `json:"roomId"`
	Users  []roomUserPayload `json:"users"`
}

type questionPayload struct {
	Question           string `json:"question"`
	AboutUserID        string `json:"aboutUserId"`
	AboutUserName      string `json:"aboutUserName"`
	AnsweredByUserID   string `json:"answeredByUserId"`
	AnsweredByUserName string `json:"answeredByUserName"`
	Index              int    `json:"index"`
	Total              int    `json:"total"`
}

type voteStartedPayload struct {
	RoomID         string            `json:"roomId"`
	SubjectProfile string            `json:"subjectProfile"`
	Round          int               `json:"round"`
	Total          int               `json:"total"`
	Users          []roomUserPayload `json:"users"`
	YourVote       string            `json:"yourVote,omitempty"`
}

type votedProfilePayload struct {
	RoomID        string          `json:"roomId"`
	SubjectUserID string          `json:"subjectUserId"`
	SubjectName   string          `json:"subjectName"`
	Scores        []resultPayload `json:"scores"`
}

type resultPayload struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

type votingFinishedPayload struct {
	RoomID  string          `json:"roomId"`
	Results []resultPayload `json:"results"`
}

type cleanedRoomPayload struct {
	RoomID string `json:"roomId"`
}

// delivery is one outbound message decided by an event handler. RoomCode
// deliveries broadcast to every subscriber; UserID deliveries target one
// connection.
type delivery struct {
	RoomCode string
	UserID   string
	Event    string
	Data     any
}

func toRoom(code, event string, data any) delivery {
	return delivery{RoomCode: code, Event: event, Data: data}
}

func toUser(userID, event string, data any) delivery {
	return delivery{UserID: userID, Event: event, Data: data}
}
