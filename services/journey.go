package services

import (
	"strings"

	"eqcoach/models"
)

const (
	journeyIntro       = "Hello! I'm your EQ Coach. I'll help you develop your emotional intelligence through some reflective questions. "
	analyzingMessage   = "Thank you for sharing. I'm analyzing your responses to provide some insights on your emotional intelligence..."
	analysisDoneMsg    = "Analysis complete. Let me share what I've learned about your emotional intelligence..."
	journeyCompleteMsg = "Our conversation is complete. Would you like to start another emotional intelligence exercise?"
	lostPlaceMessage   = "I'm not sure where we left off. Would you like to start a new conversation?"
)

// NewConversationState returns a fresh journey at the greeting stage.
func NewConversationState() models.ConversationState {
	return models.ConversationState{
		Stage:                models.StageGreeting,
		CurrentQuestionIndex: -1,
		Responses:            map[string]string{},
		AnalysisResults:      nil,
		Complete:             false,
	}
}

// InitialGreeting is the first coach line of every journey.
func InitialGreeting() string {
	return "Hello! I'm your EQ Coach. I'm here to help you develop your emotional intelligence through our conversations. I'll ask you a series of questions to understand your emotional patterns better. Ready to begin?"
}

// ResetConversation replaces any journey with a fresh one.
func ResetConversation(models.ConversationState) models.ConversationState {
	return NewConversationState()
}

// AdvanceConversation applies one user interaction and returns the coach's next
// line with the new state. The input state is never modified. An empty answer
// during the questions stage is a no-op reported as a *ValidationError, and a
// completed journey stays unchanged until it is reset. Unknown stages recover to
// a fresh journey.
func AdvanceConversation(state models.ConversationState, userText string) (string, models.ConversationState, error) {
	if state.Complete {
		return journeyCompleteMsg, state, nil
	}

	next := state.Clone()

	switch state.Stage {
	case models.StageGreeting:
		next.Stage = models.StageQuestions
		next.CurrentQuestionIndex = 0
		first, _ := models.FoundationQuestionAt(0)
		return journeyIntro + first.Question, next, nil

	case models.StageQuestions:
		current, ok := models.FoundationQuestionAt(state.CurrentQuestionIndex)
		if !ok {
			return lostPlaceMessage, NewConversationState(), nil
		}
		if strings.TrimSpace(userText) == "" {
			return current.Question, state, invalid("advance", "an answer is required")
		}
		next.Responses[current.ID] = userText

		if state.CurrentQuestionIndex < models.FoundationQuestionCount-1 {
			next.CurrentQuestionIndex++
			q, _ := models.FoundationQuestionAt(next.CurrentQuestionIndex)
			return q.Question, next, nil
		}
		next.Stage = models.StageAnalysis
		return analyzingMessage, next, nil

	case models.StageAnalysis:
		if state.AnalysisResults == nil {
			return analyzingMessage, state, invalid("advance", "analysis has not been attached")
		}
		next.Stage = models.StageFeedback
		return analysisDoneMsg, next, nil

	case models.StageFeedback:
		next.Complete = true
		return journeyCompleteMsg, next, nil

	default:
		return lostPlaceMessage, NewConversationState(), nil
	}
}

// AttachAnalysis stores a result on a journey waiting in the analysis stage.
func AttachAnalysis(state models.ConversationState, result *models.AnalysisResult) (models.ConversationState, error) {
	if state.Stage != models.StageAnalysis || state.Complete {
		return state, invalid("attach analysis", "journey is not awaiting analysis")
	}
	if result == nil {
		return state, invalid("attach analysis", "analysis is required")
	}
	next := state.Clone()
	next.AnalysisResults = result.Clone()
	return next, nil
}
