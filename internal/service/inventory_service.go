package service

import (
	"context"
	"time"

	"drugbee/internal/dto"
	"drugbee/internal/model"
	"drugbee/internal/repository"

	"github.com/google/uuid"
)

// nearExpiryWindow defines how far ahead the expiry alert looks.
const nearExpiryWindow = 90 * 24 * time.Hour

// InventoryService covers stock operations outside the sale path: manual
// adjustments, the movement ledger, and replenishment/expiry alerts.
// Sale-driven deductions go through the finalize transaction instead.
type InventoryService interface {
	AdjustStock(ctx context.Context, productID uuid.UUID, req dto.AdjustStockRequest) error
	Movements(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error)
	LowStockAlerts(ctx context.Context) ([]dto.ProductResponse, error)
	ExpiryAlerts(ctx context.Context) ([]dto.ProductResponse, error)
}

type inventoryService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
}

func NewInventoryService(productRepo repository.ProductRepository, movementRepo repository.StockMovementRepository) InventoryService {
	return &inventoryService{productRepo: productRepo, movementRepo: movementRepo}
}

func (s *inventoryService) AdjustStock(ctx context.Context, productID uuid.UUID, req dto.AdjustStockRequest) error {
	before, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	if err := s.productRepo.AdjustStock(ctx, productID, req.Delta); err != nil {
		return err
	}

	after := before.Stock + req.Delta
	if after < 0 {
		after = 0
	}
	return s.movementRepo.Create(ctx, &model.StockMovement{
		ProductID: productID,
		Type:      "adjustment",
		Quantity:  req.Delta,
		StockFrom: before.Stock,
		StockTo:   after,
		Reason:    req.Reason,
	})
}

func (s *inventoryService) Movements(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	return s.movementRepo.ListByProduct(ctx, productID, limit)
}

func (s *inventoryService) LowStockAlerts(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.productRepo.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	return productsToResponses(products), nil
}

func (s *inventoryService) ExpiryAlerts(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.productRepo.ExpiringBefore(ctx, time.Now().Add(nearExpiryWindow))
	if err != nil {
		return nil, err
	}
	return productsToResponses(products), nil
}

func productsToResponses(products []model.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productToResponse(&products[i]))
	}
	return out
}
