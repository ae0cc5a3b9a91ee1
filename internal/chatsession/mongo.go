package chatsession

import (
	"context"
	"errors"
	"fmt"

	"github.com/folio/portfolio/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores sessions in chatSessions and messages in messages.
type MongoRepo struct {
	sessions *mongo.Collection
	messages *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	r := &MongoRepo{
		sessions: db.Collection(SessionsCollection),
		messages: db.Collection(MessagesCollection),
	}
	ctx := context.Background()
	// lookups by email (most recent first) and transcript reads by session
	_, _ = r.sessions.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "startTime", Value: -1}}})
	_, _ = r.messages.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "sessionId", Value: 1}, {Key: "timestamp", Value: 1}}})
	return r
}

func (r *MongoRepo) FindOrCreateByEmail(ctx context.Context, s *models.ChatSession) (*models.ChatSession, bool, error) {
	filter := bson.M{"userEmail": s.UserEmail}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":              s.ID,
			"startTime":        s.StartTime,
			"deviceInfo":       s.DeviceInfo,
			"lastMessage":      s.LastMessage,
			"lastActivityTime": s.LastActivityTime,
		},
		"$unset": bson.M{"endTime": ""},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetSort(bson.D{{Key: "startTime", Value: -1}}).
		SetReturnDocument(options.After)
	var got models.ChatSession
	if err := r.sessions.FindOneAndUpdate(ctx, filter, update, opts).Decode(&got); err != nil {
		return nil, false, fmt.Errorf("find or create session: %w", err)
	}
	return &got, got.ID == s.ID, nil
}

func (r *MongoRepo) CreateSession(ctx context.Context, s *models.ChatSession) error {
	if _, err := r.sessions.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *MongoRepo) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	var s models.ChatSession
	if err := r.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (r *MongoRepo) ListSessions(ctx context.Context) ([]*models.ChatSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: -1}})
	cur, err := r.sessions.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := []*models.ChatSession{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return out, nil
}

func (r *MongoRepo) TouchSession(ctx context.Context, id, lastMessage string, at int64) error {
	res, err := r.sessions.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"lastMessage":      lastMessage,
		"lastActivityTime": at,
	}})
	if err != nil {
		return fmt.Errorf("update session activity: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) EndSession(ctx context.Context, id string, at int64) error {
	filter := bson.M{"_id": id, "endTime": bson.M{"$exists": false}}
	if _, err := r.sessions.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"endTime": at}}); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

func (r *MongoRepo) DeleteSession(ctx context.Context, id string) error {
	res, err := r.sessions.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) InsertMessage(ctx context.Context, m *models.Message) error {
	if _, err := r.messages.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MongoRepo) ListMessages(ctx context.Context, sessionID string) ([]*models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cur, err := r.messages.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	out := []*models.Message{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return out, nil
}

func (r *MongoRepo) SetFeedback(ctx context.Context, messageID, sessionID string, fb models.Feedback) error {
	res, err := r.messages.UpdateOne(ctx,
		bson.M{"_id": messageID, "sessionId": sessionID},
		bson.M{"$set": bson.M{"feedback": fb}})
	if err != nil {
		return fmt.Errorf("set feedback: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) DeleteMessages(ctx context.Context, sessionID string) error {
	if _, err := r.messages.DeleteMany(ctx, bson.M{"sessionId": sessionID}); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}
