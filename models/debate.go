package models

import "time"

// DebateStage is a phase of a practice debate.
type DebateStage string

const (
	DebateTopicSelection   DebateStage = "topic_selection"
	DebateSideSelection    DebateStage = "side_selection"
	DebateOpeningStatement DebateStage = "opening_statement"
	DebateRebuttal         DebateStage = "rebuttal"
	DebateClosingStatement DebateStage = "closing_statement"
	DebateConclusion       DebateStage = "conclusion"
)

// IsSpeaking reports whether the stage takes a timed user turn.
func (s DebateStage) IsSpeaking() bool {
	switch s {
	case DebateOpeningStatement, DebateRebuttal, DebateClosingStatement:
		return true
	}
	return false
}

// Side is the position argued in a debate.
type Side string

const (
	SideFor     Side = "for"
	SideAgainst Side = "against"
)

// Valid reports whether the side is one of the two known sides.
func (s Side) Valid() bool {
	return s == SideFor || s == SideAgainst
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideFor {
		return SideAgainst
	}
	return SideFor
}

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// DebateMessage is one transcript entry. Stage is set only on argument turns.
type DebateMessage struct {
	ID        string      `json:"id" bson:"id"`
	Sender    Sender      `json:"sender" bson:"sender"`
	Text      string      `json:"message" bson:"message"`
	Stage     DebateStage `json:"stage,omitempty" bson:"stage,omitempty"`
	Timestamp time.Time   `json:"timestamp" bson:"timestamp"`
}

// SkillRating is one rated debate skill (1-10).
type SkillRating struct {
	Skill    string `json:"skill" bson:"skill"`
	Rating   int    `json:"rating" bson:"rating"`
	Feedback string `json:"feedback" bson:"feedback"`
}

// DebateAnalysis is the end-of-debate coaching report.
type DebateAnalysis struct {
	OverallSummary         string        `json:"overallSummary" bson:"overallSummary"`
	UserArgumentStrengths  []string      `json:"userArgumentStrengths" bson:"userArgumentStrengths"`
	UserArgumentWeaknesses []string      `json:"userArgumentWeaknesses" bson:"userArgumentWeaknesses"`
	AIArgumentStrengths    []string      `json:"aiArgumentStrengths" bson:"aiArgumentStrengths"`
	AIArgumentWeaknesses   []string      `json:"aiArgumentWeaknesses" bson:"aiArgumentWeaknesses"`
	UserDebateSkills       []SkillRating `json:"userDebateSkills" bson:"userDebateSkills"`
	ImprovementSuggestions []string      `json:"improvementSuggestions" bson:"improvementSuggestions"`
}

// AverageRating returns the mean skill rating, or 0 with no skills.
func (a *DebateAnalysis) AverageRating() float64 {
	if a == nil || len(a.UserDebateSkills) == 0 {
		return 0
	}
	total := 0
	for _, s := range a.UserDebateSkills {
		total += s.Rating
	}
	return float64(total) / float64(len(a.UserDebateSkills))
}

// DebateState is the state of one practice debate. The user's side is fixed once
// chosen; the stage only moves forward or resets to topic selection.
type DebateState struct {
	Topic         string          `json:"selectedTopic"`
	UserSide      Side            `json:"userSide,omitempty"`
	Stage         DebateStage     `json:"stage"`
	Messages      []DebateMessage `json:"messages"`
	TimeRemaining int             `json:"timeRemaining"`
	TimerRunning  bool            `json:"timerRunning"`
	Analysis      *DebateAnalysis `json:"analysis,omitempty"`
}

// Clone returns a copy whose message slice can be appended to independently.
func (s DebateState) Clone() DebateState {
	out := s
	out.Messages = append([]DebateMessage(nil), s.Messages...)
	if s.Analysis != nil {
		a := *s.Analysis
		out.Analysis = &a
	}
	return out
}

// DefaultDebateTopics is the built-in topic catalog.
var DefaultDebateTopics = []string{
	"Artificial intelligence is more beneficial than harmful to society",
	"Social media has a net positive impact on society",
	"Remote work should be the standard for most office jobs",
	"Cryptocurrency will eventually replace traditional banking",
	"The four-day work week should be widely adopted",
	"Universal basic income should be implemented globally",
	"Technological advancement is reducing human connection",
	"Manned missions to Mars should be a global priority",
	"Genetically modified foods are safe and necessary",
	"Nuclear energy should be expanded to combat climate change",
}

// DebateSnapshot is the persisted form of a live debate session.
type DebateSnapshot struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	State     DebateState `json:"state"`
	Draft     string      `json:"draft"`
	UpdatedAt int64       `json:"updatedAt"`
}
