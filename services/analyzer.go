package services

import (
	"context"
	"encoding/json"

	"eqcoach/models"

	"go.uber.org/zap"
)

// Analyzer produces EQ analyses, preferring the model and falling back to the
// local heuristics. Its methods never fail.
type Analyzer struct {
	gen    Generator
	policy RetryPolicy
	log    *zap.Logger
}

// NewAnalyzer wires an analyzer around a shared generator.
func NewAnalyzer(gen Generator, policy RetryPolicy, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{gen: gen, policy: policy, log: log}
}

// AnalyzeResponse analyzes a single free-form message. Short messages are
// analyzed locally without calling the model.
func (a *Analyzer) AnalyzeResponse(ctx context.Context, text string) *models.AnalysisResult {
	if IsShortInput(text) {
		a.log.Debug("using local analysis for short message", zap.Int("length", len(text)))
		return LocalAnalysis(text)
	}

	result, err := a.modelAnalysis(ctx,
		BuildResponseAnalysisPrompt(text),
		func(analysisJSON string) string { return BuildResponseCoachingPrompt(text, analysisJSON) })
	if err != nil {
		a.log.Warn("response analysis fell back to local heuristics", zap.Error(err))
		return LocalAnalysis(text)
	}
	if len(result.EmotionalVocabulary) == 0 {
		result.EmotionalVocabulary = ExtractEmotionWords(text)
	}
	return result
}

// AnalyzeConversation analyzes every answer of a journey.
func (a *Analyzer) AnalyzeConversation(ctx context.Context, state models.ConversationState) *models.AnalysisResult {
	combined := joinResponses(state.Responses)
	if IsShortInput(combined) {
		a.log.Debug("using local analysis for sparse journey", zap.Int("length", len(combined)))
		return LocalAnalysis(combined)
	}

	result, err := a.modelAnalysis(ctx,
		BuildConversationAnalysisPrompt(state.Responses),
		BuildJourneyCoachingPrompt)
	if err != nil {
		a.log.Warn("journey analysis fell back to local heuristics", zap.Error(err))
		return ConversationFallback(state.Responses)
	}
	return result
}

func (a *Analyzer) modelAnalysis(ctx context.Context, analysisPrompt string, coachingPrompt func(string) string) (*models.AnalysisResult, error) {
	raw, err := generate(ctx, a.gen, a.policy, a.log, analysisPrompt)
	if err != nil {
		return nil, err
	}

	parsed, err := ParseEQAnalysis(raw)
	if err != nil {
		return nil, err
	}

	analysisJSON, err := json.Marshal(parsed)
	if err != nil {
		return nil, &ParseError{Reason: "re-encode analysis", Err: err}
	}

	coaching, err := generate(ctx, a.gen, a.policy, a.log, coachingPrompt(string(analysisJSON)))
	if err != nil {
		return nil, err
	}
	return parsed.ToAnalysisResult(coaching), nil
}
