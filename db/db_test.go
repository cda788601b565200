package db

import (
	"testing"
	"time"

	"eqcoach/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestExtractDBName(t *testing.T) {
	assert.Equal(t, "coach", extractDBName("mongodb://localhost:27017/coach"))
	assert.Equal(t, "eqcoach", extractDBName("mongodb://localhost:27017/"))
	assert.Equal(t, "eqcoach", extractDBName("mongodb://localhost:27017"))
	assert.Equal(t, "eqcoach", extractDBName("::not a uri"))
}

func journey(score int, cats map[string]int, comment string) models.JourneyResult {
	scores := map[string]models.CategoryScore{}
	for name, s := range cats {
		scores[name] = models.CategoryScore{Score: s, Comment: comment}
	}
	return models.JourneyResult{Analysis: models.AnalysisResult{Score: score, CategoryScores: scores}}
}

func TestSummarizeJourneys(t *testing.T) {
	data := summarizeJourneys([]models.JourneyResult{
		journey(80, map[string]int{models.CategoryEmpathy: 70, models.CategorySelfAwareness: 90}, "latest"),
		journey(60, map[string]int{models.CategoryEmpathy: 61}, "older"),
	})

	assert.Equal(t, 80, data.EQScore, "EQ score is the latest journey's")
	want := map[string]models.CategorySummary{
		models.CategoryEmpathy:       {Score: 66, Comment: "latest"},
		models.CategorySelfAwareness: {Score: 90, Comment: "latest"},
	}
	if diff := cmp.Diff(want, data.CategoryScores); diff != "" {
		t.Errorf("category scores mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeNoJourneys(t *testing.T) {
	data := summarizeJourneys(nil)
	assert.Zero(t, data.EQScore)
	assert.Empty(t, data.CategoryScores)
	assert.NotNil(t, data.RecentDebates)
}

func TestRecentDebates(t *testing.T) {
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	got := recentDebates([]models.DebateResult{{Topic: "UBI", Side: models.SideFor, Score: 72, CreatedAt: at}})
	assert.Equal(t, []models.RecentDebate{{Topic: "UBI", Date: "2026-03-14", Score: 72, Side: models.SideFor}}, got)
}
