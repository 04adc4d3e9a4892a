package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/miniblog/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrPostNotFound is returned when no post matches the requested ID.
var ErrPostNotFound = fmt.Errorf("post not found")

// PostRepository defines the interface for post data operations.
// Every listing returns posts newest first (created_at descending).
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	GetPostsByAuthor(ctx context.Context, authorID uint, skip, limit int64) ([]models.Post, error)
	GetPostsByAuthors(ctx context.Context, authorIDs []uint, skip, limit int64) ([]models.Post, error)
	GetPostsByGroup(ctx context.Context, groupID uint, skip, limit int64) ([]models.Post, error)
	CountAllPosts(ctx context.Context) (int64, error)
	CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error)
	CountPostsByAuthors(ctx context.Context, authorIDs []uint) (int64, error)
	CountPostsByGroup(ctx context.Context, groupID uint) (int64, error)
	UpdatePost(ctx context.Context, id string, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	// DeletePostsByAuthor removes every post the author owns and returns their IDs,
	// so callers can cascade to dependent comments. Part of the user-delete contract.
	DeletePostsByAuthor(ctx context.Context, authorID uint) ([]string, error)
	// DetachGroup clears the group reference on every post in the group; the posts
	// themselves survive. Part of the group-delete contract.
	DetachGroup(ctx context.Context, groupID uint) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Post, error) {
	posts := []models.Post{}
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetAllPosts retrieves all posts from MongoDB with pagination
func (r *MongoPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	return r.find(ctx, bson.M{}, skip, limit)
}

// GetPostsByAuthor retrieves posts written by a specific user
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, authorID uint, skip, limit int64) ([]models.Post, error) {
	return r.find(ctx, bson.M{"author_id": authorID}, skip, limit)
}

// GetPostsByAuthors retrieves posts written by any of the given users (feed query)
func (r *MongoPostRepository) GetPostsByAuthors(ctx context.Context, authorIDs []uint, skip, limit int64) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	return r.find(ctx, bson.M{"author_id": bson.M{"$in": authorIDs}}, skip, limit)
}

// GetPostsByGroup retrieves posts belonging to a specific group
func (r *MongoPostRepository) GetPostsByGroup(ctx context.Context, groupID uint, skip, limit int64) ([]models.Post, error) {
	return r.find(ctx, bson.M{"group_id": groupID}, skip, limit)
}

// CountAllPosts returns the total number of posts
func (r *MongoPostRepository) CountAllPosts(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// CountPostsByAuthor returns the number of posts written by the user
func (r *MongoPostRepository) CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"author_id": authorID})
}

// CountPostsByAuthors returns the number of posts written by any of the given users
func (r *MongoPostRepository) CountPostsByAuthors(ctx context.Context, authorIDs []uint) (int64, error) {
	if len(authorIDs) == 0 {
		return 0, nil
	}
	return r.collection.CountDocuments(ctx, bson.M{"author_id": bson.M{"$in": authorIDs}})
}

// CountPostsByGroup returns the number of posts in the group
func (r *MongoPostRepository) CountPostsByGroup(ctx context.Context, groupID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"group_id": groupID})
}

// UpdatePost updates the mutable fields of an existing post in MongoDB.
// created_at is deliberately left out of the update document.
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	post.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"text":       post.Text,
			"group_id":   post.GroupID,
			"image_url":  post.ImageURL,
			"updated_at": post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePostsByAuthor deletes all posts owned by the author and returns the deleted IDs
func (r *MongoPostRepository) DeletePostsByAuthor(ctx context.Context, authorID uint) ([]string, error) {
	filter := bson.M{"author_id": authorID}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID.Hex()
	}

	if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
		return nil, err
	}
	return ids, nil
}

// DetachGroup unsets the group reference on every post in the group
func (r *MongoPostRepository) DetachGroup(ctx context.Context, groupID uint) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"group_id": groupID},
		bson.M{"$unset": bson.M{"group_id": ""}},
	)
	return err
}
