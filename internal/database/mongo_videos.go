package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"videotube-api/internal/models"
)

// MongoVideoStore persists videos in the "videos" collection.
type MongoVideoStore struct {
	videos *mongo.Collection
	now    func() time.Time
}

func NewMongoVideoStore(db *mongo.Database) *MongoVideoStore {
	return &MongoVideoStore{videos: db.Collection(VideosCollection), now: utcNow}
}

// List runs the search aggregation: text match, owner join, sort, page,
// then projection down to the public listing fields.
func (s *MongoVideoStore) List(ctx context.Context, q VideoQuery) ([]models.VideoListItem, error) {
	cursor, err := s.videos.Aggregate(ctx, listPipeline(q))
	if err != nil {
		return nil, fmt.Errorf("aggregate videos: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.VideoListItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}
	if items == nil {
		items = []models.VideoListItem{}
	}
	return items, nil
}

func listPipeline(q VideoQuery) mongo.Pipeline {
	match := bson.D{}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		match = append(match, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: pattern}},
			bson.D{{Key: "description", Value: pattern}},
		}})
	}
	if q.OwnerID != nil {
		match = append(match, bson.E{Key: "owner", Value: *q.OwnerID})
	}

	direction := -1
	if q.Ascending {
		direction = 1
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: "owner"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "createdBy"},
		}}},
		{{Key: "$unwind", Value: "$createdBy"}},
		{{Key: "$sort", Value: bson.D{
			{Key: q.sortField(), Value: direction},
			{Key: "_id", Value: direction},
		}}},
		{{Key: "$skip", Value: int64(q.Offset())}},
		{{Key: "$limit", Value: int64(q.Limit)}},
		{{Key: "$project", Value: bson.D{
			{Key: "thumbnail", Value: 1},
			{Key: "videoFile", Value: 1},
			{Key: "title", Value: 1},
			{Key: "description", Value: 1},
			{Key: "createdBy.fullName", Value: 1},
			{Key: "createdBy.username", Value: 1},
			{Key: "createdBy.avatar", Value: 1},
		}}},
	}
}

// Create inserts video and assigns its id and timestamps.
func (s *MongoVideoStore) Create(ctx context.Context, video *models.Video) error {
	now := s.now()
	video.ID = primitive.NewObjectID()
	video.CreatedAt = now
	video.UpdatedAt = now

	if _, err := s.videos.InsertOne(ctx, video); err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func (s *MongoVideoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	var video models.Video
	if err := s.videos.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&video); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find video %s: %w", id.Hex(), err)
	}
	return &video, nil
}

// UpdateDetails sets title, description and thumbnail and returns the
// updated document.
func (s *MongoVideoStore) UpdateDetails(ctx context.Context, id primitive.ObjectID, title, description, thumbnail string) (*models.Video, error) {
	return s.findAndSet(ctx, id, bson.D{
		{Key: "title", Value: title},
		{Key: "description", Value: description},
		{Key: "thumbnail", Value: thumbnail},
	})
}

// SetPublished stores the publish flag and returns the updated document.
func (s *MongoVideoStore) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) (*models.Video, error) {
	return s.findAndSet(ctx, id, bson.D{{Key: "isPublished", Value: published}})
}

func (s *MongoVideoStore) findAndSet(ctx context.Context, id primitive.ObjectID, fields bson.D) (*models.Video, error) {
	fields = append(fields, bson.E{Key: "updatedAt", Value: s.now()})
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video models.Video
	err := s.videos.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: fields}}, opts).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update video %s: %w", id.Hex(), err)
	}
	return &video, nil
}

func (s *MongoVideoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.videos.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete video %s: %w", id.Hex(), err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
