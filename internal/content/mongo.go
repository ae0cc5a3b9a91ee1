package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/folio/portfolio/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repository over one collection per content type.
type MongoRepo struct {
	profile     *mongo.Collection
	projects    *mongo.Collection
	skills      *mongo.Collection
	experiences *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	r := &MongoRepo{
		profile:     db.Collection(ProfileCollection),
		projects:    db.Collection(ProjectsCollection),
		skills:      db.Collection(SkillsCollection),
		experiences: db.Collection(ExperiencesCollection),
	}
	// slug is optional, so uniqueness only applies where it is set
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"slug": bson.M{"$type": "string"}}),
	}
	_, _ = r.projects.Indexes().CreateOne(context.Background(), idx)
	return r
}

func findAll[T any](ctx context.Context, col *mongo.Collection, sort bson.D) ([]T, error) {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cur, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", col.Name(), err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", col.Name(), err)
	}
	return out, nil
}

func replaceByID(ctx context.Context, col *mongo.Collection, id string, doc interface{}) error {
	res, err := col.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("replace %s/%s: %w", col.Name(), id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, col *mongo.Collection, id string) error {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", col.Name(), id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func insert(ctx context.Context, col *mongo.Collection, doc interface{}) error {
	if _, err := col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: duplicate key", ErrValidation)
		}
		return fmt.Errorf("insert %s: %w", col.Name(), err)
	}
	return nil
}

func (r *MongoRepo) GetProfile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := r.profile.FindOne(ctx, bson.M{"_id": models.ProfileID}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *MongoRepo) SaveProfile(ctx context.Context, p *models.Profile) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.profile.ReplaceOne(ctx, bson.M{"_id": models.ProfileID}, p, opts); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (r *MongoRepo) ListProjects(ctx context.Context) ([]models.Project, error) {
	return findAll[models.Project](ctx, r.projects, bson.D{{Key: "createdAt", Value: -1}})
}

func (r *MongoRepo) findProject(ctx context.Context, filter bson.M) (*models.Project, error) {
	var p models.Project
	if err := r.projects.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

func (r *MongoRepo) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return r.findProject(ctx, bson.M{"_id": id})
}

func (r *MongoRepo) GetProjectBySlug(ctx context.Context, slug string) (*models.Project, error) {
	return r.findProject(ctx, bson.M{"slug": slug})
}

func (r *MongoRepo) InsertProject(ctx context.Context, p *models.Project) error {
	return insert(ctx, r.projects, p)
}

func (r *MongoRepo) ReplaceProject(ctx context.Context, p *models.Project) error {
	return replaceByID(ctx, r.projects, p.ID, p)
}

func (r *MongoRepo) DeleteProject(ctx context.Context, id string) error {
	return deleteByID(ctx, r.projects, id)
}

func (r *MongoRepo) ClearFeatured(ctx context.Context, exceptID string) error {
	filter := bson.M{"isFeatured": true, "_id": bson.M{"$ne": exceptID}}
	if _, err := r.projects.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"isFeatured": false}}); err != nil {
		return fmt.Errorf("clear featured: %w", err)
	}
	return nil
}

func (r *MongoRepo) MarkFeatured(ctx context.Context, id string) error {
	res, err := r.projects.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"isFeatured": true}})
	if err != nil {
		return fmt.Errorf("mark featured: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) ListSkills(ctx context.Context) ([]models.Skill, error) {
	return findAll[models.Skill](ctx, r.skills, nil)
}

func (r *MongoRepo) InsertSkill(ctx context.Context, s *models.Skill) error {
	return insert(ctx, r.skills, s)
}

func (r *MongoRepo) ReplaceSkill(ctx context.Context, s *models.Skill) error {
	return replaceByID(ctx, r.skills, s.ID, s)
}

func (r *MongoRepo) DeleteSkill(ctx context.Context, id string) error {
	return deleteByID(ctx, r.skills, id)
}

func (r *MongoRepo) ListExperiences(ctx context.Context) ([]models.Experience, error) {
	return findAll[models.Experience](ctx, r.experiences, bson.D{{Key: "order", Value: 1}})
}

func (r *MongoRepo) InsertExperience(ctx context.Context, e *models.Experience) error {
	return insert(ctx, r.experiences, e)
}

func (r *MongoRepo) ReplaceExperience(ctx context.Context, e *models.Experience) error {
	return replaceByID(ctx, r.experiences, e.ID, e)
}

func (r *MongoRepo) DeleteExperience(ctx context.Context, id string) error {
	return deleteByID(ctx, r.experiences, id)
}
