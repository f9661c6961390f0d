package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Description      string             `bson:"description" json:"description"`
	Price            float64            `bson:"price" json:"price"`
	Discount         float64            `bson:"discount" json:"discount"` // pourcentage 0-100
	Stock            int                `bson:"stock" json:"stock"`
	IsNew            bool               `bson:"is_new" json:"is_new"`
	IsFeatured       bool               `bson:"is_featured" json:"is_featured"`
	CoverPhoto       string             `bson:"cover_photo" json:"cover_photo"`
	AdditionalPhotos []string           `bson:"additional_photos" json:"additional_photos"`
	Category         primitive.ObjectID `bson:"category" json:"category"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// ProductInput est le corps attendu à la création d'un produit.
type ProductInput struct {
	Name             string   `json:"name" binding:"required,min=2,max=256"`
	Description      string   `json:"description" binding:"max=4096"`
	Price            *float64 `json:"price" binding:"required,gte=0"`
	Discount         float64  `json:"discount" binding:"gte=0,lte=100"`
	Stock            int      `json:"stock" binding:"gte=0"`
	IsNew            bool     `json:"is_new"`
	IsFeatured       bool     `json:"is_featured"`
	CoverPhoto       string   `json:"cover_photo"`
	AdditionalPhotos []string `json:"additional_photos"`
	Category         string   `json:"category" binding:"required"`
}

// ProductPatch : seuls les champs présents sont modifiés.
type ProductPatch struct {
	Name             *string   `json:"name" binding:"omitempty,min=2,max=256"`
	Description      *string   `json:"description" binding:"omitempty,max=4096"`
	Price            *float64  `json:"price" binding:"omitempty,gte=0"`
	Discount         *float64  `json:"discount" binding:"omitempty,gte=0,lte=100"`
	Stock            *int      `json:"stock" binding:"omitempty,gte=0"`
	IsNew            *bool     `json:"is_new"`
	IsFeatured       *bool     `json:"is_featured"`
	CoverPhoto       *string   `json:"cover_photo"`
	AdditionalPhotos *[]string `json:"additional_photos"`
	Category         *string   `json:"category"`
}

// ProductListParams correspond aux paramètres de requête de GET /api/products.
type ProductListParams struct {
	Page       int      `form:"page"`
	Limit      int      `form:"limit"`
	Category   string   `form:"category"`
	MinPrice   *float64 `form:"min_price"`
	MaxPrice   *float64 `form:"max_price"`
	IsNew      *bool    `form:"is_new"`
	IsFeatured *bool    `form:"is_featured"`
	Search     string   `form:"search"`
	Sort       string   `form:"sort"`
}

type ProductPage struct {
	Items []Product `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
	Pages int       `json:"pages"`
}
