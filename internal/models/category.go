package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	CoverPhoto string             `bson:"cover_photo,omitempty" json:"cover_photo,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

type CategoryInput struct {
	Name       string `json:"name" binding:"required,min=3,max=256"`
	CoverPhoto string `json:"cover_photo"`
}
