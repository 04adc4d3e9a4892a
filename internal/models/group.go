package models

import "gorm.io/gorm"

// Group is a named topical category that posts may optionally belong to
type Group struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title"`
	Slug        string `json:"slug" gorm:"uniqueIndex"` // URL fragment identifying the group, globally unique
	Description string `json:"description"`
}

// CreateGroupRequest defines the request body for creating a new group
type CreateGroupRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Slug        string `json:"slug" validate:"required,min=1,max=64"`
	Description string `json:"description" validate:"required"`
}
