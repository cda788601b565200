package services

import (
	"strings"
	"testing"

	"eqcoach/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "bare", raw: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", raw: "```json\n{\"a\":{\"b\":2}}\n```", want: `{"a":{"b":2}}`},
		{name: "surrounded by prose", raw: `Here you go: {"a":1} hope it helps`, want: `{"a":1}`},
		{name: "no object", raw: "I cannot help with that", wantErr: true},
		{name: "reversed braces", raw: "} oops {", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.raw)
			if tt.wantErr {
				var perr *ParseError
				assert.ErrorAs(t, err, &perr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEQAnalysis(t *testing.T) {
	parsed, err := ParseEQAnalysis("```json\n" + sampleEQAnalysis + "\n```")
	require.NoError(t, err)

	result := parsed.ToAnalysisResult("Keep going.")
	assert.Equal(t, 73, result.Score)
	assert.Equal(t, 75, result.CategoryScores[models.CategoryEmotionalExpression].Score)
	assert.Equal(t, []string{"I felt anxious"}, result.CategoryScores[models.CategorySelfAwareness].Examples)
	assert.Equal(t, "You notice your emotions quickly.", result.Feedback)
	assert.Equal(t, "Keep going.", result.ResponseText)
	assert.Equal(t, []string{"Self-awareness: Named anxiety before a deadline"}, result.StrengthsAndWeaknesses.Strengths)
	assert.Equal(t, []string{"Empathy: Ask how others feel"}, result.StrengthsAndWeaknesses.Weaknesses)
	assert.Equal(t, []string{"anxious", "calm"}, result.EmotionalVocabulary)
	assert.Equal(t, models.SourceModel, result.Source)
	assert.Len(t, result.CategoryScores, 5)
}

func TestParseEQAnalysisClampsScores(t *testing.T) {
	raw := `{
	  "categoryScores": {"Empathy": {"score": -5, "comment": "low"}, "Self_Awareness": {"score": 250}},
	  "overallScore": 150,
	  "detailed_feedback": "ok"
	}`
	parsed, err := ParseEQAnalysis(raw)
	require.NoError(t, err)

	result := parsed.ToAnalysisResult("")
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 0, result.CategoryScores[models.CategoryEmpathy].Score)
	assert.Equal(t, 100, result.CategoryScores[models.CategorySelfAwareness].Score)
	assert.NotNil(t, result.StrengthsAndWeaknesses.Strengths)
	assert.NotNil(t, result.EmotionalVocabulary)
}

func TestParseEQAnalysisRejectsBadOutput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "The user seems calm."},
		{name: "malformed", raw: `{"overallScore": 70,}`},
		{name: "missing overall score", raw: `{"categoryScores": {"Empathy": {"score": 60}}, "detailed_feedback": "x"}`},
		{name: "missing feedback", raw: `{"categoryScores": {"Empathy": {"score": 60}}, "overallScore": 60}`},
		{name: "no categories", raw: `{"categoryScores": {}, "overallScore": 60, "detailed_feedback": "x"}`},
		{name: "category without score", raw: `{"categoryScores": {"Empathy": {"comment": "?"}}, "overallScore": 60, "detailed_feedback": "x"}`},
		{name: "strength without area", raw: `{"categoryScores": {"Empathy": {"score": 60}}, "overallScore": 60, "detailed_feedback": "x", "strengths": [{"evidence": "e"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEQAnalysis(tt.raw)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestParseDebateAnalysis(t *testing.T) {
	parsed, err := ParseDebateAnalysis("Sure!\n" + sampleDebateAnalysis)
	require.NoError(t, err)

	analysis := parsed.ToDebateAnalysis()
	assert.Equal(t, "A balanced debate.", analysis.OverallSummary)
	require.Len(t, analysis.UserDebateSkills, 5)
	assert.Equal(t, "Logical Reasoning", analysis.UserDebateSkills[0].Skill)
	assert.InDelta(t, 8.0, analysis.AverageRating(), 0.001)
	assert.Equal(t, 80, DebateScore(analysis))
}

func TestParseDebateAnalysisBoundsRatings(t *testing.T) {
	raw := `{"overallSummary": "s", "userDebateSkills": [
	  {"skill": "a", "rating": 0}, {"skill": "b", "rating": 14}, {"skill": "c", "rating": 7.6}
	]}`
	parsed, err := ParseDebateAnalysis(raw)
	require.NoError(t, err)

	skills := parsed.ToDebateAnalysis().UserDebateSkills
	assert.Equal(t, 1, skills[0].Rating)
	assert.Equal(t, 10, skills[1].Rating)
	assert.Equal(t, 8, skills[2].Rating)
}

func TestParseDebateAnalysisRejectsBadOutput(t *testing.T) {
	for _, raw := range []string{
		`{"overallSummary": "s", "userDebateSkills": []}`,
		`{"userDebateSkills": [{"skill": "a", "rating": 5}]}`,
		`{"overallSummary": "s", "userDebateSkills": [{"skill": "a"}]}`,
		strings.Repeat("no json here ", 3),
	} {
		_, err := ParseDebateAnalysis(raw)
		var perr *ParseError
		assert.ErrorAs(t, err, &perr, raw)
	}
}

func TestCleanModelOutput(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanModelOutput("```json\n{\"a\":1}\n```"))
	assert.Equal(t, "plain", cleanModelOutput("  plain \n"))
}

func TestDebateScoreWithoutAnalysis(t *testing.T) {
	assert.Equal(t, 0, DebateScore(nil))
}
