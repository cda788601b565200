package services

import (
	"fmt"
	"strings"
	"time"

	"eqcoach/models"

	"github.com/google/uuid"
)

// DefaultTurnSeconds is the countdown given to every speaking stage.
const DefaultTurnSeconds = 120

const (
	debateWelcomeMsg    = "Welcome to the Debate Arena! Please select a topic you'd like to debate about, or suggest your own topic."
	debateResetMsg      = "Let's debate a new topic! Please select one from the list or suggest your own."
	timeUpMsg           = "Time's up! Let's move on with the debate."
	debateAnalyzingMsg  = "Thank you for participating in this debate! I'm now analyzing our discussion to provide you with insights and suggestions for improvement..."
	analysisReadyMsg    = "I've prepared an in-depth analysis of our debate. You can view it in the Analysis tab on the right side panel."
	analysisFailedMsg   = "I apologize, but I'm unable to generate a detailed analysis of our debate at this time."
	debateConcludedMsg  = "The debate has concluded. Would you like to debate another topic?"
	replyUnavailableMsg = "I apologize, but I'm having trouble formulating a response. Let's continue the debate with your next point."
)

// DebateFlow holds the debate transitions. Every method takes a state value and
// returns a new one; the input is never modified.
type DebateFlow struct {
	turnSeconds int
	now         func() time.Time
	newID       func() string
}

// NewDebateFlow builds a flow with the given turn length in seconds.
func NewDebateFlow(turnSeconds int) *DebateFlow {
	if turnSeconds <= 0 {
		turnSeconds = DefaultTurnSeconds
	}
	return &DebateFlow{
		turnSeconds: turnSeconds,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// TurnSeconds is the countdown length of a speaking stage.
func (f *DebateFlow) TurnSeconds() int { return f.turnSeconds }

func (f *DebateFlow) message(sender models.Sender, text string, stage models.DebateStage) models.DebateMessage {
	return models.DebateMessage{
		ID:        f.newID(),
		Sender:    sender,
		Text:      text,
		Stage:     stage,
		Timestamp: f.now(),
	}
}

func (f *DebateFlow) turnLength() string {
	if f.turnSeconds%60 == 0 {
		if f.turnSeconds == 60 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", f.turnSeconds/60)
	}
	return fmt.Sprintf("%d seconds", f.turnSeconds)
}

func (f *DebateFlow) fresh(greeting string) models.DebateState {
	return models.DebateState{
		Stage:         models.DebateTopicSelection,
		Messages:      []models.DebateMessage{f.message(models.SenderAI, greeting, "")},
		TimeRemaining: f.turnSeconds,
	}
}

// NewState starts a debate at topic selection.
func (f *DebateFlow) NewState() models.DebateState {
	return f.fresh(debateWelcomeMsg)
}

// Reset clears topic, side, transcript, timer and analysis.
func (f *DebateFlow) Reset(models.DebateState) models.DebateState {
	return f.fresh(debateResetMsg)
}

// SelectTopic fixes the debate topic.
func (f *DebateFlow) SelectTopic(s models.DebateState, topic string) (models.DebateState, error) {
	if s.Stage != models.DebateTopicSelection {
		return s, invalid("select topic", "topic already chosen")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return s, invalid("select topic", "topic is required")
	}
	next := s.Clone()
	next.Topic = topic
	next.Stage = models.DebateSideSelection
	next.Messages = append(next.Messages, f.message(models.SenderAI,
		fmt.Sprintf("Great! We'll debate about: %q. Would you like to argue FOR or AGAINST this topic?", topic), ""))
	return next, nil
}

// SelectSide fixes the user's side for the rest of the debate and opens the
// first speaking stage with a running timer.
func (f *DebateFlow) SelectSide(s models.DebateState, side models.Side) (models.DebateState, error) {
	if s.Stage != models.DebateSideSelection {
		return s, invalid("select side", "side can only be chosen after the topic")
	}
	if !side.Valid() {
		return s, invalid("select side", "side must be for or against")
	}
	next := s.Clone()
	next.UserSide = side
	next.Stage = models.DebateOpeningStatement
	next.Messages = append(next.Messages,
		f.message(models.SenderUser, fmt.Sprintf("I'll argue %s the topic: %q", side, s.Topic), ""),
		f.message(models.SenderAI, fmt.Sprintf(
			"Great! I'll take the %s position. Let's begin with our opening statements. You'll go first - make a compelling case %s the topic in your opening statement. You'll have %s to prepare and submit your opening statement.",
			side.Opposite(), side, f.turnLength()), ""),
	)
	next.TimeRemaining = f.turnSeconds
	next.TimerRunning = true
	return next, nil
}

// SubmitTurn records the user's argument for the current speaking stage and
// stops the countdown.
func (f *DebateFlow) SubmitTurn(s models.DebateState, text string) (models.DebateState, error) {
	if !s.Stage.IsSpeaking() {
		return s, invalid("submit", fmt.Sprintf("no turn is open during %s", s.Stage))
	}
	if strings.TrimSpace(text) == "" {
		return s, invalid("submit", "argument is required")
	}
	next := s.Clone()
	next.TimerRunning = false
	next.Messages = append(next.Messages, f.message(models.SenderUser, text, s.Stage))
	return next, nil
}

// RecordReply adds the AI's argument for the current stage.
func (f *DebateFlow) RecordReply(s models.DebateState, text string) models.DebateState {
	next := s.Clone()
	next.Messages = append(next.Messages, f.message(models.SenderAI, text, s.Stage))
	return next
}

// Note adds an AI line that is not part of either side's arguments.
func (f *DebateFlow) Note(s models.DebateState, text string) models.DebateState {
	next := s.Clone()
	next.Messages = append(next.Messages, f.message(models.SenderAI, text, ""))
	return next
}

// AdvanceStage moves opening → rebuttal → closing → conclusion. Nothing is skipped
// and conclusion only leaves through Reset.
func (f *DebateFlow) AdvanceStage(s models.DebateState) (models.DebateState, error) {
	next := s.Clone()
	switch s.Stage {
	case models.DebateOpeningStatement:
		next.Stage = models.DebateRebuttal
		next.Messages = append(next.Messages, f.message(models.SenderAI, fmt.Sprintf(
			"Now, let's move to the rebuttal phase. Please provide your counterarguments to what I've just presented. You have %s to prepare your rebuttal.",
			f.turnLength()), ""))
		next.TimeRemaining = f.turnSeconds
		next.TimerRunning = true
	case models.DebateRebuttal:
		next.Stage = models.DebateClosingStatement
		next.Messages = append(next.Messages, f.message(models.SenderAI, fmt.Sprintf(
			"We're now moving to closing statements. Please provide your final arguments summarizing your position. You have %s to prepare your closing statement.",
			f.turnLength()), ""))
		next.TimeRemaining = f.turnSeconds
		next.TimerRunning = true
	case models.DebateClosingStatement:
		next.Stage = models.DebateConclusion
		next.Messages = append(next.Messages, f.message(models.SenderAI, debateAnalyzingMsg, ""))
		next.TimerRunning = false
	default:
		return s, invalid("advance", fmt.Sprintf("cannot advance from %s", s.Stage))
	}
	return next, nil
}

// Tick counts one second off a running timer.
func (f *DebateFlow) Tick(s models.DebateState) models.DebateState {
	if !s.TimerRunning || s.TimeRemaining <= 0 {
		return s
	}
	next := s.Clone()
	next.TimeRemaining--
	return next
}

// TimeUp handles countdown expiry. The stage advances, with one "time's up"
// line, only when no draft is pending; otherwise the timer just stops.
func (f *DebateFlow) TimeUp(s models.DebateState, pending string) (models.DebateState, bool) {
	if !s.Stage.IsSpeaking() || !s.TimerRunning {
		return s, false
	}
	next := s.Clone()
	next.TimeRemaining = 0
	next.TimerRunning = false
	if strings.TrimSpace(pending) != "" {
		return next, false
	}
	next.Messages = append(next.Messages, f.message(models.SenderAI, timeUpMsg, ""))
	advanced, err := f.AdvanceStage(next)
	if err != nil {
		return next, false
	}
	return advanced, true
}

// AttachAnalysis stores the debate report and announces it.
func (f *DebateFlow) AttachAnalysis(s models.DebateState, analysis *models.DebateAnalysis) (models.DebateState, error) {
	if s.Stage != models.DebateConclusion {
		return s, invalid("attach analysis", "debate has not concluded")
	}
	if analysis == nil {
		return s, invalid("attach analysis", "analysis is required")
	}
	next := s.Clone()
	a := *analysis
	next.Analysis = &a
	next.Messages = append(next.Messages, f.message(models.SenderAI, analysisReadyMsg, ""))
	return next, nil
}

// StageInstructions is the user-facing guidance for a stage.
func StageInstructions(stage models.DebateStage) string {
	switch stage {
	case models.DebateTopicSelection:
		return "Select a debate topic from the list or suggest your own."
	case models.DebateSideSelection:
		return "Choose whether you want to argue FOR or AGAINST the selected topic."
	case models.DebateOpeningStatement:
		return "Present your opening statement with your main arguments supporting your position."
	case models.DebateRebuttal:
		return "Respond to your opponent's arguments and strengthen your own position."
	case models.DebateClosingStatement:
		return "Summarize your strongest points and conclude your argument persuasively."
	case models.DebateConclusion:
		return "The debate has concluded. Would you like to debate another topic?"
	default:
		return "Participate in the debate by providing your perspective."
	}
}
