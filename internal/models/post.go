package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a blog post stored in MongoDB
type Post struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID uint               `json:"author_id" bson:"author_id"` // Postgres ID of the user who wrote the post
	GroupID  uint               `json:"group_id,omitempty" bson:"group_id,omitempty"` // 0 means the post belongs to no group
	Text     string             `json:"text" bson:"text"`
	ImageURL string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	// CreatedAt is assigned by the repository on insert and never changes afterwards
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Text     string `json:"text" validate:"required,min=1"`
	GroupID  uint   `json:"group_id,omitempty"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,max=512"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Text     string `json:"text,omitempty" validate:"omitempty,min=1"`
	GroupID  *uint  `json:"group_id,omitempty"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,max=512"`
}
