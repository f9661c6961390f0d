package services

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/cache"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPageLimit = 12
	maxPageLimit     = 100
	maxSearchHits    = 500
)

type CatalogService struct {
	products   store.ProductStore
	categories store.CategoryStore
	reviews    store.ReviewStore
	cache      cache.Store
	search     SearchIndex
}

func NewCatalogService(products store.ProductStore, categories store.CategoryStore, reviews store.ReviewStore,
	c cache.Store, search SearchIndex) *CatalogService {
	return &CatalogService{products: products, categories: categories, reviews: reviews, cache: c, search: search}
}

// --- Produits ---

func (s *CatalogService) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if in.Price == nil {
		return nil, apperr.Validation("Le prix est obligatoire")
	}
	if err := validatePricing(*in.Price, in.Discount, in.Stock); err != nil {
		return nil, err
	}
	catID, err := s.requireCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		Price:            *in.Price,
		Discount:         in.Discount,
		Stock:            in.Stock,
		IsNew:            in.IsNew,
		IsFeatured:       in.IsFeatured,
		CoverPhoto:       in.CoverPhoto,
		AdditionalPhotos: in.AdditionalPhotos,
		Category:         catID,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.reindex(ctx, *p)
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, params models.ProductListParams) (*models.ProductPage, error) {
	page, limit := params.Page, params.Limit
	if page < 1 {
		page = 1
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit < 1 || limit > maxPageLimit {
		return nil, apperr.Validation("limit doit être compris entre 1 et %d", maxPageLimit)
	}
	if !store.IsSortable(params.Sort) {
		return nil, apperr.Validation("Tri invalide: %s", params.Sort)
	}
	if params.MinPrice != nil && params.MaxPrice != nil && *params.MinPrice > *params.MaxPrice {
		return nil, apperr.Validation("min_price doit être inférieur à max_price")
	}

	q := store.ProductQuery{
		Skip:       int64((page - 1) * limit),
		Limit:      int64(limit),
		MinPrice:   params.MinPrice,
		MaxPrice:   params.MaxPrice,
		IsNew:      params.IsNew,
		IsFeatured: params.IsFeatured,
		Sort:       params.Sort,
	}
	if params.Category != "" {
		catID, err := store.ParseID(params.Category, "catégorie")
		if err != nil {
			return nil, err
		}
		q.Category = &catID
	}
	if text := strings.TrimSpace(params.Search); text != "" {
		s.applySearch(ctx, &q, text)
	}

	items, total, err := s.products.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &models.ProductPage{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// applySearch restreint la requête aux résultats Elasticsearch, ou retombe sur
// une recherche regex MongoDB si l'index est indisponible.
func (s *CatalogService) applySearch(ctx context.Context, q *store.ProductQuery, text string) {
	ids, err := s.search.Search(ctx, text, maxSearchHits)
	if err != nil {
		if !errors.Is(err, ErrSearchUnavailable) {
			log.Printf("⚠️ Recherche Elasticsearch échouée, repli MongoDB: %v", err)
		}
		q.Text = text
		return
	}
	q.IDs = make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			q.IDs = append(q.IDs, oid)
		}
	}
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	oid, err := store.ParseID(id, "produit")
	if err != nil {
		return nil, err
	}

	// La version est lue avant la base : voir forget
	var version int64
	if _, err := s.cache.GetJSON(ctx, cache.ProductVersionKey(oid.Hex()), &version); err != nil {
		return s.products.Get(ctx, oid)
	}
	key := cache.ProductKey(oid.Hex(), version)

	var cached models.Product
	if found, err := s.cache.GetJSON(ctx, key, &cached); err == nil && found {
		return &cached, nil
	}

	p, err := s.products.Get(ctx, oid)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, key, p, cache.ProductCacheTTL); err != nil {
		log.Printf("⚠️ Mise en cache produit %s: %v", oid.Hex(), err)
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	oid, err := store.ParseID(id, "produit")
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, apperr.Validation("Le prix doit être positif")
		}
		set["price"] = *patch.Price
	}
	if patch.Discount != nil {
		if *patch.Discount < 0 || *patch.Discount > 100 {
			return nil, apperr.Validation("La remise doit être comprise entre 0 et 100")
		}
		set["discount"] = *patch.Discount
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return nil, apperr.Validation("Le stock doit être positif")
		}
		set["stock"] = *patch.Stock
	}
	if patch.IsNew != nil {
		set["is_new"] = *patch.IsNew
	}
	if patch.IsFeatured != nil {
		set["is_featured"] = *patch.IsFeatured
	}
	if patch.CoverPhoto != nil {
		set["cover_photo"] = *patch.CoverPhoto
	}
	if patch.AdditionalPhotos != nil {
		set["additional_photos"] = *patch.AdditionalPhotos
	}
	if patch.Category != nil {
		catID, err := s.requireCategory(ctx, *patch.Category)
		if err != nil {
			return nil, err
		}
		set["category"] = catID
	}
	if len(set) == 0 {
		return nil, apperr.Validation("Aucun champ à modifier")
	}

	p, err := s.products.Update(ctx, oid, set)
	if err != nil {
		return nil, err
	}
	s.forget(ctx, oid)
	s.reindex(ctx, *p)
	return p, nil
}

// DeleteProduct supprime aussi les avis du produit.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	oid, err := store.ParseID(id, "produit")
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, oid); err != nil {
		return err
	}
	if err := s.reviews.DeleteByProducts(ctx, []primitive.ObjectID{oid}); err != nil {
		log.Printf("⚠️ Avis du produit %s non supprimés: %v", oid.Hex(), err)
	}
	s.forget(ctx, oid)
	s.unindex(ctx, oid)
	return nil
}

// --- Catégories ---

func (s *CatalogService) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	c := &models.Category{Name: strings.TrimSpace(in.Name), CoverPhoto: in.CoverPhoto}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	s.forgetCategories(ctx)
	return c, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	if found, err := s.cache.GetJSON(ctx, cache.CategoriesKey, &cached); err == nil && found {
		return cached, nil
	}

	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, cache.CategoriesKey, cats, cache.CategoriesCacheTTL); err != nil {
		log.Printf("⚠️ Mise en cache catégories: %v", err)
	}
	return cats, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	oid, err := store.ParseID(id, "catégorie")
	if err != nil {
		return nil, err
	}
	return s.categories.Get(ctx, oid)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in models.CategoryInput) (*models.Category, error) {
	oid, err := store.ParseID(id, "catégorie")
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	c, err := s.categories.Update(ctx, oid, in)
	if err != nil {
		return nil, err
	}
	s.forgetCategories(ctx)
	return c, nil
}

// DeleteCategory refuse de supprimer une catégorie qui contient des produits,
// sauf si force est demandé : les produits (et leurs avis) partent alors avec.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string, force bool) error {
	oid, err := store.ParseID(id, "catégorie")
	if err != nil {
		return err
	}
	if _, err := s.categories.Get(ctx, oid); err != nil {
		return err
	}

	count, err := s.products.CountByCategory(ctx, oid)
	if err != nil {
		return err
	}
	if count > 0 && !force {
		return apperr.Conflict("La catégorie contient %d produit(s) : utilisez force=true pour tout supprimer", count)
	}

	if count > 0 {
		removed, err := s.products.DeleteByCategory(ctx, oid)
		if err != nil {
			return err
		}
		if err := s.reviews.DeleteByProducts(ctx, removed); err != nil {
			log.Printf("⚠️ Avis des produits supprimés non nettoyés: %v", err)
		}
		for _, pid := range removed {
			s.forget(ctx, pid)
			s.unindex(ctx, pid)
		}
		log.Printf("🗑️ %d produit(s) supprimé(s) avec la catégorie %s", len(removed), oid.Hex())
	}

	if err := s.categories.Delete(ctx, oid); err != nil {
		return err
	}
	s.forgetCategories(ctx)
	return nil
}

// --- Helpers ---

func (s *CatalogService) requireCategory(ctx context.Context, id string) (primitive.ObjectID, error) {
	catID, err := store.ParseID(id, "catégorie")
	if err != nil {
		return primitive.NilObjectID, err
	}
	if _, err := s.categories.Get(ctx, catID); err != nil {
		return primitive.NilObjectID, err
	}
	return catID, nil
}

func validatePricing(price, discount float64, stock int) error {
	if price < 0 {
		return apperr.Validation("Le prix doit être positif")
	}
	if discount < 0 || discount > 100 {
		return apperr.Validation("La remise doit être comprise entre 0 et 100")
	}
	if stock < 0 {
		return apperr.Validation("Le stock doit être positif")
	}
	return nil
}

// forget passe le produit à la version suivante après une écriture. Un
// lecteur qui a lu la base avant l'écriture range sa copie sous l'ancienne
// version, qui n'est plus consultée.
func (s *CatalogService) forget(ctx context.Context, id primitive.ObjectID) {
	if _, err := s.cache.Incr(context.WithoutCancel(ctx), cache.ProductVersionKey(id.Hex()), 0); err != nil {
		log.Printf("⚠️ Invalidation cache produit %s: %v", id.Hex(), err)
	}
}

func (s *CatalogService) forgetCategories(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.CategoriesKey); err != nil {
		log.Printf("⚠️ Invalidation cache catégories: %v", err)
	}
}

func (s *CatalogService) reindex(ctx context.Context, p models.Product) {
	if err := s.search.Index(ctx, p); err != nil {
		log.Printf("⚠️ Indexation %s: %v", p.Name, err)
	}
}

func (s *CatalogService) unindex(ctx context.Context, id primitive.ObjectID) {
	if err := s.search.Delete(ctx, id.Hex()); err != nil {
		log.Printf("⚠️ Désindexation %s: %v", id.Hex(), err)
	}
}
