package admins

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/folio/portfolio/backend/go-services/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "admins"

// Repository defines persistence operations for admins
type Repository interface {
	UpsertBySub(ctx context.Context, a *models.Admin) (*models.Admin, error)
	GetBySub(ctx context.Context, sub string) (*models.Admin, error)
}

// MongoRepository implements Repository using MongoDB
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "sub", Value: 1}}, Options: options.Index().SetUnique(true)}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepository{col: col}
}

func (r *MongoRepository) UpsertBySub(ctx context.Context, a *models.Admin) (*models.Admin, error) {
	now := time.Now().UTC()
	filter := bson.M{"sub": a.Sub}
	update := bson.M{
		"$set": bson.M{
			"email":     a.Email,
			"name":      a.Name,
			"lastSeen":  now,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{"_id": uuid.NewString(), "createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated models.Admin
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *MongoRepository) GetBySub(ctx context.Context, sub string) (*models.Admin, error) {
	var a models.Admin
	if err := r.col.FindOne(ctx, bson.M{"sub": sub}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// MemoryRepository keeps admins in a map; used when MongoDB is unavailable.
type MemoryRepository struct {
	mu    sync.Mutex
	bySub map[string]models.Admin
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bySub: make(map[string]models.Admin)}
}

func (m *MemoryRepository) UpsertBySub(ctx context.Context, a *models.Admin) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	cur, ok := m.bySub[a.Sub]
	if !ok {
		cur = models.Admin{ID: uuid.NewString(), Sub: a.Sub, CreatedAt: now}
	}
	cur.Email, cur.Name = a.Email, a.Name
	cur.LastSeen, cur.UpdatedAt = now, now
	m.bySub[a.Sub] = cur
	out := cur
	return &out, nil
}

func (m *MemoryRepository) GetBySub(ctx context.Context, sub string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.bySub[sub]
	if !ok {
		return nil, nil
	}
	return &a, nil
}
