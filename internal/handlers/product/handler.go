package product

import (
	"context"

	"furniro_back_end/internal/models"
	"furniro_back_end/internal/services"
)

type Catalog interface {
	CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error)
	ListProducts(ctx context.Context, params models.ProductListParams) (*models.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, in models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string, force bool) error
}

type Reviews interface {
	Create(ctx context.Context, in models.ReviewInput) (*models.Review, error)
	ListByProduct(ctx context.Context, productID string) (*models.ProductReviews, error)
	Delete(ctx context.Context, id string) error
}

type Images interface {
	ParseSizes(raw string) ([]models.ImageSize, error)
	Derive(ctx context.Context, uploads []services.ImageUpload, sizes []models.ImageSize) ([]models.DerivedImage, error)
}

// Handler regroupe les routes catalogue : produits, catégories, avis et
// upload d'images.
type Handler struct {
	catalog  Catalog
	reviews  Reviews
	images   Images
	maxFiles int
}

func NewHandler(catalog Catalog, reviews Reviews, images Images, maxFiles int) *Handler {
	return &Handler{catalog: catalog, reviews: reviews, images: images, maxFiles: maxFiles}
}
