package server

const (
	phaseOpen       = "open"
	phaseAnswering  = "answering"
	phaseGenerating = "generating-profiles"
	phaseVoting     = "voting"
	phaseFinished   = "finished"
)

// User is one room membership. The ID is the opaque identifier supplied by
// the client at connect time and survives reconnects; Online tracks whether
// a live connection is currently bound to it.
type User struct {
	ID      string
	Name    string
	Online  bool
	IsAdmin bool
}

// QuestionAssignment is one prompt a player must answer about another
// player. Immutable once answered.
type QuestionAssignment struct {
	Prompt     string
	SubjectID  string
	AnswererID string
	Answer     string
	Answered   bool
}

// PlayerQueue is the personalized question sequence for one answerer.
// Cursor only moves forward; Complete is a one-way transition.
type PlayerQueue struct {
	Assignments []QuestionAssignment
	Cursor      int
	Complete    bool
}

// VoteRound collects one guess per participant for the current subject.
type VoteRound struct {
	SubjectID string
	Votes     map[string]string
}

type Room struct {
	ID        string
	Code      string
	CreatorID string
	Phase     string
	Failed    bool
	Users     map[string]*User

	// Game-phase state, cleared whenever the room returns to open.
	Participants []string
	Queues       map[string]*PlayerQueue
	Profiles     map[string]string
	Scores       map[string]int
	VoteOrder    []string
	VoteIndex    int
	Round        *VoteRound

	DBID uint
}

type RoomSummary struct {
	Code    string
	Phase   string
	Members int
}
