package services

import (
	"context"
	"math"
	"strings"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/store"
)

type ReviewService struct {
	reviews  store.ReviewStore
	products store.ProductStore
}

func NewReviewService(reviews store.ReviewStore, products store.ProductStore) *ReviewService {
	return &ReviewService{reviews: reviews, products: products}
}

func (s *ReviewService) Create(ctx context.Context, in models.ReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.Validation("La note doit être comprise entre 1 et 5")
	}
	comment := strings.TrimSpace(in.Comment)
	if comment != "" && (len([]rune(comment)) < 2 || len([]rune(comment)) > 256) {
		return nil, apperr.Validation("Le commentaire doit faire entre 2 et 256 caractères")
	}

	pid, err := store.ParseID(in.Product, "produit")
	if err != nil {
		return nil, err
	}
	if _, err := s.products.Get(ctx, pid); err != nil {
		return nil, err
	}

	r := &models.Review{Rating: in.Rating, Comment: comment, Product: pid}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReviewService) ListByProduct(ctx context.Context, productID string) (*models.ProductReviews, error) {
	pid, err := store.ParseID(productID, "produit")
	if err != nil {
		return nil, err
	}
	if _, err := s.products.Get(ctx, pid); err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByProduct(ctx, pid)
	if err != nil {
		return nil, err
	}

	out := &models.ProductReviews{Reviews: reviews, TotalReviews: len(reviews)}
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		out.AverageRating = math.Round(float64(sum)/float64(len(reviews))*10) / 10
	}
	return out, nil
}

func (s *ReviewService) Delete(ctx context.Context, id string) error {
	oid, err := store.ParseID(id, "avis")
	if err != nil {
		return err
	}
	return s.reviews.Delete(ctx, oid)
}
