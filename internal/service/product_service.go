package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"drugbee/internal/dto"
	"drugbee/internal/model"
	"drugbee/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ProductService is the product directory: the read-mostly catalog the
// register pulls line items from.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Lookup(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	Search(ctx context.Context, term string) ([]dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo repository.ProductRepository
	rdb  *redis.Client
}

const productCacheTTL = 5 * time.Minute

func NewProductService(repo repository.ProductRepository, rdb *redis.Client) ProductService {
	return &productService{repo: repo, rdb: rdb}
}

func productCacheKey(id uuid.UUID) string { return "product:" + id.String() }

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.Price.GreaterThan(req.MRP) {
		return nil, errors.New("sale price cannot exceed MRP")
	}
	expiry, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	p := &model.Product{
		Name:         req.Name,
		Composition:  req.Composition,
		Manufacturer: req.Manufacturer,
		Category:     req.Category,
		Batch:        req.Batch,
		HSNCode:      req.HSNCode,
		PackUnits:    req.PackUnits,
		ExpiryDate:   expiry,
		MRP:          req.MRP,
		Price:        req.Price,
		Stock:        req.Stock,
		MinStock:     req.MinStock,
		CgstRate:     req.CgstRate,
		SgstRate:     req.SgstRate,
		Active:       true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

// Lookup serves from the Redis read-through cache when possible. Stock on a
// cached record may lag a few minutes; every stock-affecting write
// invalidates the key, and finalize never trusts cached stock anyway.
func (s *productService) Lookup(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, productCacheKey(id)).Bytes(); err == nil {
			var resp dto.ProductResponse
			if json.Unmarshal(raw, &resp) == nil {
				return &resp, nil
			}
		}
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := productToResponse(p)

	if s.rdb != nil {
		if raw, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, productCacheKey(id), raw, productCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Msg("product cache write failed")
			}
		}
	}
	return resp, nil
}

func (s *productService) Search(ctx context.Context, term string) ([]dto.ProductResponse, error) {
	products, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productToResponse(&products[i]))
	}
	return out, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Composition != nil {
		p.Composition = req.Composition
	}
	if req.Manufacturer != nil {
		p.Manufacturer = *req.Manufacturer
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Batch != nil {
		p.Batch = *req.Batch
	}
	if req.HSNCode != nil {
		p.HSNCode = *req.HSNCode
	}
	if req.PackUnits != nil {
		p.PackUnits = *req.PackUnits
	}
	if req.ExpiryDate != nil {
		expiry, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			return nil, err
		}
		p.ExpiryDate = expiry
	}
	if req.MRP != nil {
		p.MRP = *req.MRP
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}
	if req.CgstRate != nil {
		p.CgstRate = *req.CgstRate
	}
	if req.SgstRate != nil {
		p.SgstRate = *req.SgstRate
	}

	if p.Price.GreaterThan(p.MRP) {
		return nil, errors.New("sale price cannot exceed MRP")
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return productToResponse(p), nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Reactivate(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *productService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, productCacheKey(id)).Err(); err != nil {
		log.Debug().Err(err).Msg("product cache invalidation failed")
	}
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		Composition:  p.Composition,
		Manufacturer: p.Manufacturer,
		Category:     p.Category,
		Batch:        p.Batch,
		HSNCode:      p.HSNCode,
		PackUnits:    p.PackUnits,
		ExpiryDate:   p.ExpiryDate.Format("2006-01-02"),
		MRP:          p.MRP,
		Price:        p.Price,
		Stock:        p.Stock,
		MinStock:     p.MinStock,
		CgstRate:     p.CgstRate,
		SgstRate:     p.SgstRate,
		Active:       p.Active,
	}
}
