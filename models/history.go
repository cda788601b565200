package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JourneyResult is a completed EQ journey stored for analytics.
type JourneyResult struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	SessionID string             `bson:"sessionId" json:"sessionId"`
	Responses map[string]string  `bson:"responses" json:"responses"`
	Analysis  AnalysisResult     `bson:"analysis" json:"analysis"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// DebateResult is a concluded practice debate stored for analytics.
type DebateResult struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	SessionID string             `bson:"sessionId" json:"sessionId"`
	Topic     string             `bson:"topic" json:"topic"`
	Side      Side               `bson:"side" json:"side"`
	Messages  []DebateMessage    `bson:"messages" json:"messages"`
	Analysis  *DebateAnalysis    `bson:"analysis,omitempty" json:"analysis,omitempty"`
	Score     int                `bson:"score" json:"score"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// RecentDebate is the dashboard summary of one debate.
type RecentDebate struct {
	Topic string `json:"topic"`
	Date  string `json:"date"`
	Score int    `json:"score"`
	Side  Side   `json:"side"`
}

// CategorySummary is an averaged category score.
type CategorySummary struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// AnalyticsData is the per-user dashboard payload.
type AnalyticsData struct {
	EQScore        int                        `json:"eqScore"`
	DebateScore    int                        `json:"debateScore"`
	CategoryScores map[string]CategorySummary `json:"categoryScores"`
	RecentDebates  []RecentDebate             `json:"recentDebates"`
	Journeys       int64                      `json:"journeys"`
	Debates        int64                      `json:"debates"`
}
