package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"eqcoach/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ModelCategory is one category entry as the model returns it.
type ModelCategory struct {
	Score    *float64 `json:"score" validate:"required"`
	Comment  string   `json:"comment"`
	Examples []string `json:"examples"`
}

// ModelStrength is one strength entry as the model returns it.
type ModelStrength struct {
	Area     string `json:"area" validate:"required"`
	Evidence string `json:"evidence"`
}

// ModelImprovement is one improvement entry as the model returns it.
type ModelImprovement struct {
	Area       string `json:"area" validate:"required"`
	Suggestion string `json:"suggestion"`
}

// EQModelAnalysis is the EQ analysis schema requested from the model.
type EQModelAnalysis struct {
	CategoryScores      map[string]ModelCategory `json:"categoryScores" validate:"required,min=1,dive"`
	OverallScore        *float64                 `json:"overallScore" validate:"required"`
	Strengths           []ModelStrength          `json:"strengths" validate:"dive"`
	AreasForImprovement []ModelImprovement       `json:"areas_for_improvement" validate:"dive"`
	EmotionalVocabulary []string                 `json:"emotional_vocabulary"`
	KeyInsights         []string                 `json:"key_insights"`
	DetailedFeedback    string                   `json:"detailed_feedback" validate:"required"`
}

// ModelSkill is one rated skill as the model returns it.
type ModelSkill struct {
	Skill    string   `json:"skill" validate:"required"`
	Rating   *float64 `json:"rating" validate:"required"`
	Feedback string   `json:"feedback"`
}

// DebateModelAnalysis is the debate analysis schema requested from the model.
type DebateModelAnalysis struct {
	OverallSummary         string       `json:"overallSummary" validate:"required"`
	UserArgumentStrengths  []string     `json:"userArgumentStrengths"`
	UserArgumentWeaknesses []string     `json:"userArgumentWeaknesses"`
	AIArgumentStrengths    []string     `json:"aiArgumentStrengths"`
	AIArgumentWeaknesses   []string     `json:"aiArgumentWeaknesses"`
	UserDebateSkills       []ModelSkill `json:"userDebateSkills" validate:"required,min=1,dive"`
	ImprovementSuggestions []string     `json:"improvementSuggestions"`
}

// ExtractJSONObject returns the span from the first '{' to the last '}'.
func ExtractJSONObject(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", &ParseError{Reason: "no JSON object in model output"}
	}
	return raw[start : end+1], nil
}

func decodeValidated(raw string, out interface{}) error {
	span, err := ExtractJSONObject(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(span), out); err != nil {
		return &ParseError{Reason: "malformed JSON", Err: err}
	}
	if err := validate.Struct(out); err != nil {
		return &ParseError{Reason: "missing required fields", Err: err}
	}
	return nil
}

// ParseEQAnalysis extracts and validates an EQ analysis from model output.
func ParseEQAnalysis(raw string) (*EQModelAnalysis, error) {
	var analysis EQModelAnalysis
	if err := decodeValidated(raw, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// ParseDebateAnalysis extracts and validates a debate analysis from model output.
func ParseDebateAnalysis(raw string) (*DebateModelAnalysis, error) {
	var analysis DebateModelAnalysis
	if err := decodeValidated(raw, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

func roundScore(v float64) int {
	return models.ClampScore(int(math.Round(v)))
}

// ToAnalysisResult converts a validated model analysis, clamping every score.
func (m *EQModelAnalysis) ToAnalysisResult(responseText string) *models.AnalysisResult {
	result := &models.AnalysisResult{
		Score:          roundScore(*m.OverallScore),
		CategoryScores: make(map[string]models.CategoryScore, len(m.CategoryScores)),
		Feedback:       m.DetailedFeedback,
		ResponseText:   responseText,
		StrengthsAndWeaknesses: models.StrengthsAndWeaknesses{
			Strengths:  make([]string, 0, len(m.Strengths)),
			Weaknesses: make([]string, 0, len(m.AreasForImprovement)),
		},
		EmotionalVocabulary: append([]string{}, m.EmotionalVocabulary...),
		KeyInsights:         append([]string{}, m.KeyInsights...),
		Source:              models.SourceModel,
	}
	for name, c := range m.CategoryScores {
		result.CategoryScores[name] = models.CategoryScore{
			Score:    roundScore(*c.Score),
			Comment:  c.Comment,
			Examples: append([]string(nil), c.Examples...),
		}
	}
	for _, s := range m.Strengths {
		result.StrengthsAndWeaknesses.Strengths = append(result.StrengthsAndWeaknesses.Strengths,
			fmt.Sprintf("%s: %s", s.Area, s.Evidence))
	}
	for _, a := range m.AreasForImprovement {
		result.StrengthsAndWeaknesses.Weaknesses = append(result.StrengthsAndWeaknesses.Weaknesses,
			fmt.Sprintf("%s: %s", a.Area, a.Suggestion))
	}
	return result
}

// ToDebateAnalysis converts a validated model analysis, bounding ratings to 1-10.
func (m *DebateModelAnalysis) ToDebateAnalysis() *models.DebateAnalysis {
	out := &models.DebateAnalysis{
		OverallSummary:         m.OverallSummary,
		UserArgumentStrengths:  append([]string{}, m.UserArgumentStrengths...),
		UserArgumentWeaknesses: append([]string{}, m.UserArgumentWeaknesses...),
		AIArgumentStrengths:    append([]string{}, m.AIArgumentStrengths...),
		AIArgumentWeaknesses:   append([]string{}, m.AIArgumentWeaknesses...),
		UserDebateSkills:       make([]models.SkillRating, 0, len(m.UserDebateSkills)),
		ImprovementSuggestions: append([]string{}, m.ImprovementSuggestions...),
	}
	for _, s := range m.UserDebateSkills {
		rating := int(math.Round(*s.Rating))
		if rating < 1 {
			rating = 1
		}
		if rating > 10 {
			rating = 10
		}
		out.UserDebateSkills = append(out.UserDebateSkills, models.SkillRating{
			Skill:    s.Skill,
			Rating:   rating,
			Feedback: s.Feedback,
		})
	}
	return out
}
