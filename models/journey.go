package models

// Stage is a phase of the EQ journey.
type Stage string

const (
	StageGreeting  Stage = "greeting"
	StageQuestions Stage = "questions"
	StageAnalysis  Stage = "analysis"
	StageFeedback  Stage = "feedback"
)

// ConversationState is the EQ journey state. Values are treated as immutable:
// every transition returns a new state.
type ConversationState struct {
	Stage                Stage             `json:"stage" bson:"stage"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex" bson:"currentQuestionIndex"`
	Responses            map[string]string `json:"responses" bson:"responses"`
	AnalysisResults      *AnalysisResult   `json:"analysisResults" bson:"analysisResults,omitempty"`
	Complete             bool              `json:"complete" bson:"complete"`
}

// Clone returns a deep copy of the state.
func (s ConversationState) Clone() ConversationState {
	out := s
	out.Responses = make(map[string]string, len(s.Responses))
	for k, v := range s.Responses {
		out.Responses[k] = v
	}
	out.AnalysisResults = s.AnalysisResults.Clone()
	return out
}

// ChatMessage is one line of a journey transcript.
type ChatMessage struct {
	ID        string `json:"id" bson:"id"`
	Sender    Sender `json:"sender" bson:"sender"`
	Text      string `json:"message" bson:"message"`
	Timestamp int64  `json:"timestamp" bson:"timestamp"`
}

// JourneySnapshot is the persisted form of a journey session.
type JourneySnapshot struct {
	ID         string            `json:"id"`
	Email      string            `json:"email"`
	State      ConversationState `json:"state"`
	Transcript []ChatMessage     `json:"transcript"`
	UpdatedAt  int64             `json:"updatedAt"`
}
