// Package catalog administers products.
package catalog

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront/internal/apperr"
	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/internal/obs"
	"github.com/fairyhunter13/storefront/internal/store"
)

var maxPrice = decimal.New(1, 10)

// ProductInput is a create or full-replace request. Images may be a list or
// a serialized list; anything malformed becomes an empty list.
type ProductInput struct {
	Name        string
	Price       *decimal.Decimal
	Stock       *int
	Description string
	Images      any
}

func (in ProductInput) toProduct() (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Product{}, apperr.Validation("name", "is required")
	}
	if in.Price == nil {
		return model.Product{}, apperr.Validation("price", "is required")
	}
	if in.Price.IsNegative() {
		return model.Product{}, apperr.Validation("price", "must not be negative")
	}
	if in.Price.GreaterThanOrEqual(maxPrice) {
		return model.Product{}, apperr.Validation("price", "is too large")
	}
	stock := 0
	if in.Stock != nil {
		stock = *in.Stock
	}
	if stock < 0 {
		return model.Product{}, apperr.Validation("stock", "must not be negative")
	}
	if stock > math.MaxInt32 {
		return model.Product{}, apperr.Validation("stock", "is too large")
	}
	return model.Product{
		Name:        name,
		Price:       in.Price.Round(2),
		Stock:       stock,
		Description: in.Description,
		Images:      model.ParseImages(in.Images),
	}, nil
}

// Service validates and stores products.
type Service struct {
	store store.Store
}

// NewService constructs a Service backed by st.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) List(ctx context.Context) ([]model.Product, error) {
	out, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, apperr.Persistence("list products", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (model.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.Product{}, apperr.NotFound("product", id)
	}
	if err != nil {
		return model.Product{}, apperr.Persistence("get product", err)
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in ProductInput) (model.Product, error) {
	p, err := in.toProduct()
	if err != nil {
		return model.Product{}, err
	}
	if err := s.store.CreateProduct(ctx, &p); err != nil {
		return model.Product{}, apperr.Persistence("create product", err)
	}
	obs.Logger.Infow("product_created", "product_id", p.ID, "stock", p.Stock)
	return p, nil
}

// Update replaces every field of an existing product.
func (s *Service) Update(ctx context.Context, id int64, in ProductInput) (model.Product, error) {
	p, err := in.toProduct()
	if err != nil {
		return model.Product{}, err
	}
	p.ID = id
	err = s.store.UpdateProduct(ctx, p)
	if errors.Is(err, store.ErrNotFound) {
		return model.Product{}, apperr.NotFound("product", id)
	}
	if err != nil {
		return model.Product{}, apperr.Persistence("update product", err)
	}
	obs.Logger.Infow("product_updated", "product_id", id, "stock", p.Stock)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.DeleteProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("product", id)
	}
	if err != nil {
		return apperr.Persistence("delete product", err)
	}
	obs.Logger.Infow("product_deleted", "product_id", id)
	return nil
}
