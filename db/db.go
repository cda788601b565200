package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"eqcoach/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrUserExists is returned when signing up with a taken email.
var ErrUserExists = errors.New("user already exists")

// ErrUserNotFound is returned for unknown emails.
var ErrUserNotFound = errors.New("user not found")

const recentDebateLimit = 5

// Store holds the Mongo collections of the service.
type Store struct {
	client   *mongo.Client
	database *mongo.Database
	users    *mongo.Collection
	journeys *mongo.Collection
	debates  *mongo.Collection
	log      *zap.Logger
}

// extractDBName parses the database name from the URI, defaulting to "eqcoach"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "eqcoach"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:] // Trim leading '/'
	}
	return "eqcoach"
}

// ConnectMongoDB establishes a connection to MongoDB using the provided URI
func ConnectMongoDB(ctx context.Context, uri string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection with a ping
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := extractDBName(uri)
	log.Info("using database", zap.String("database", dbName))

	database := client.Database(dbName)
	s := &Store{
		client:   client,
		database: database,
		users:    database.Collection("users"),
		journeys: database.Collection("journey_results"),
		debates:  database.Collection("debate_results"),
		log:      log,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to index users: %w", err)
	}
	history := mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}, {Key: "createdAt", Value: -1}}}
	if _, err := s.journeys.Indexes().CreateOne(ctx, history); err != nil {
		return fmt.Errorf("failed to index journey results: %w", err)
	}
	if _, err := s.debates.Indexes().CreateOne(ctx, history); err != nil {
		return fmt.Errorf("failed to index debate results: %w", err)
	}
	return nil
}

// Disconnect closes the client.
func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// CreateUser inserts a new account.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := s.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	s.log.Debug("user created", zap.String("id", user.ID.Hex()))
	return nil
}

// FindUserByEmail loads an account.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RecordJourney stores a completed journey.
func (s *Store) RecordJourney(ctx context.Context, result models.JourneyResult) error {
	if _, err := s.journeys.InsertOne(ctx, result); err != nil {
		return fmt.Errorf("failed to save journey result: %w", err)
	}
	return nil
}

// RecordDebate stores a concluded debate.
func (s *Store) RecordDebate(ctx context.Context, result models.DebateResult) error {
	if _, err := s.debates.InsertOne(ctx, result); err != nil {
		return fmt.Errorf("failed to save debate result: %w", err)
	}
	return nil
}

// Analytics builds the dashboard for one user.
func (s *Store) Analytics(ctx context.Context, email string) (*models.AnalyticsData, error) {
	filter := bson.M{"email": email}

	journeyCount, err := s.journeys.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}
	debateCount, err := s.debates.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	cursor, err := s.journeys.Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(20))
	if err != nil {
		return nil, err
	}
	var journeys []models.JourneyResult
	if err := cursor.All(ctx, &journeys); err != nil {
		return nil, err
	}

	debateScore, err := s.averageDebateScore(ctx, email)
	if err != nil {
		return nil, err
	}

	cursor, err = s.debates.Find(ctx, filter, options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(recentDebateLimit).
		SetProjection(bson.M{"messages": 0}))
	if err != nil {
		return nil, err
	}
	var debates []models.DebateResult
	if err := cursor.All(ctx, &debates); err != nil {
		return nil, err
	}

	data := summarizeJourneys(journeys)
	data.DebateScore = debateScore
	data.RecentDebates = recentDebates(debates)
	data.Journeys = journeyCount
	data.Debates = debateCount
	return data, nil
}

func (s *Store) averageDebateScore(ctx context.Context, email string) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"email": email, "analysis": bson.M{"$ne": nil}}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
		{{Key: "$limit", Value: 20}},
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$score"}}}},
	}
	cursor, err := s.debates.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	var rows []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return models.ClampScore(int(rows[0].Avg + 0.5)), nil
}

// summarizeJourneys expects journeys newest first.
func summarizeJourneys(journeys []models.JourneyResult) *models.AnalyticsData {
	data := &models.AnalyticsData{
		CategoryScores: map[string]models.CategorySummary{},
		RecentDebates:  []models.RecentDebate{},
	}
	if len(journeys) == 0 {
		return data
	}
	data.EQScore = journeys[0].Analysis.Score

	totals := map[string]int{}
	counts := map[string]int{}
	for _, j := range journeys {
		for name, cat := range j.Analysis.CategoryScores {
			totals[name] += cat.Score
			counts[name]++
		}
	}
	for name, total := range totals {
		summary := models.CategorySummary{Score: int(float64(total)/float64(counts[name]) + 0.5)}
		if latest, ok := journeys[0].Analysis.CategoryScores[name]; ok {
			summary.Comment = latest.Comment
		}
		data.CategoryScores[name] = summary
	}
	return data
}

func recentDebates(debates []models.DebateResult) []models.RecentDebate {
	out := make([]models.RecentDebate, 0, len(debates))
	for _, d := range debates {
		out = append(out, models.RecentDebate{
			Topic: d.Topic,
			Date:  d.CreatedAt.Format("2006-01-02"),
			Score: d.Score,
			Side:  d.Side,
		})
	}
	return out
}
