package service

import (
	"context"
	"time"

	"drugbee/internal/billing"
	"drugbee/internal/dto"
	"drugbee/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DraftService owns the lifecycle of draft sales: it loads a draft from the
// store, applies a billing.Draft mutation, and writes it back. One logical
// actor edits a given draft at a time (one open sale per register), so
// load-mutate-store without locking matches the deployment model.
type DraftService interface {
	StartDraft(ctx context.Context) (*dto.DraftResponse, error)
	GetDraft(ctx context.Context, id uuid.UUID) (*dto.DraftResponse, error)
	AddItem(ctx context.Context, id uuid.UUID, req dto.AddItemRequest) (*dto.DraftResponse, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, index int, req dto.UpdateQuantityRequest) (*dto.DraftResponse, error)
	RemoveItem(ctx context.Context, id uuid.UUID, index int) (*dto.DraftResponse, error)
	SetDiscount(ctx context.Context, id uuid.UUID, req dto.SetDiscountRequest) (*dto.DraftResponse, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, req dto.UpdateDraftCustomerRequest) (*dto.DraftResponse, error)
	DiscardDraft(ctx context.Context, id uuid.UUID) error
}

type draftService struct {
	drafts      repository.DraftStore
	productRepo repository.ProductRepository
	gstRatePct  decimal.Decimal
}

func NewDraftService(drafts repository.DraftStore, productRepo repository.ProductRepository, gstRatePct decimal.Decimal) DraftService {
	return &draftService{drafts: drafts, productRepo: productRepo, gstRatePct: gstRatePct}
}

func (s *draftService) StartDraft(ctx context.Context) (*dto.DraftResponse, error) {
	d := billing.NewDraft()
	if err := s.drafts.Put(ctx, d); err != nil {
		return nil, err
	}
	return s.toResponse(d), nil
}

func (s *draftService) GetDraft(ctx context.Context, id uuid.UUID) (*dto.DraftResponse, error) {
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(d), nil
}

// AddItem looks the product up at add-time; the draft copies its pricing
// fields and never re-reads them. The stock check here is the soft,
// add-time check — finalize re-checks inside the transaction.
func (s *draftService) AddItem(ctx context.Context, id uuid.UUID, req dto.AddItemRequest) (*dto.DraftResponse, error) {
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, err
	}
	p, err := s.productRepo.FindByID(ctx, pid)
	if err != nil {
		return nil, err
	}
	if err := d.AddItem(p, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.drafts.Put(ctx, d); err != nil {
		return nil, err
	}
	return s.toResponse(d), nil
}

func (s *draftService) UpdateQuantity(ctx context.Context, id uuid.UUID, index int, req dto.UpdateQuantityRequest) (*dto.DraftResponse, error) {
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(d.Items) {
		return nil, billing.ErrLineNotFound
	}
	stock := 0
	if req.Quantity > 0 {
		p, err := s.productRepo.FindByID(ctx, d.Items[index].ProductID)
		if err != nil {
			return nil, err
		}
		stock = p.Stock
	}
	if err := d.UpdateQuantity(index, req.Quantity, stock); err != nil {
		return nil, err
	}
	if err := s.drafts.Put(ctx, d); err != nil {
		return nil, err
	}
	return s.toResponse(d), nil
}

func (s *draftService) RemoveItem(ctx context.Context, id uuid.UUID, index int) (*dto.DraftResponse, error) {
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d.RemoveItem(index)
	if err := s.drafts.Put(ctx, d); err != nil {
		return nil, err
	}
	return s.toResponse(d), nil
}

func (s *draftService) SetDiscount(ctx context.Context, id uuid.UUID, req dto.SetDiscountRequest) (*dto.DraftResponse, error) {
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.SetDiscountPercent(req.DiscountPct); err != nil {
		return nil, err
	}
	if err := s.drafts.Put(ctx, d); err != nil {
		return nil, err
	}
	return s.toResponse(d), nil
}

func (s *draftService) UpdateCustomer(ctx context.Context, id uuid.UUID, req dto.UpdateDraftCustomerRequest) (*dto.DraftResponse, error) {
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d.CustomerName = req.CustomerName
	d.CustomerPhone = req.CustomerPhone
	d.CustomerEmail = req.CustomerEmail
	d.DoctorName = req.DoctorName
	d.Address = req.Address
	if req.PaymentMethod != "" {
		d.PaymentMethod = req.PaymentMethod
	}
	if req.PaymentStatus != "" {
		d.PaymentStatus = req.PaymentStatus
	}
	if req.FollowUpDate != nil {
		t, err := time.Parse("2006-01-02", *req.FollowUpDate)
		if err != nil {
			return nil, err
		}
		d.FollowUpDate = &t
	}
	d.Notes = req.Notes
	if err := s.drafts.Put(ctx, d); err != nil {
		return nil, err
	}
	return s.toResponse(d), nil
}

func (s *draftService) DiscardDraft(ctx context.Context, id uuid.UUID) error {
	return s.drafts.Delete(ctx, id)
}

// toResponse projects the draft plus a freshly recomputed live summary.
func (s *draftService) toResponse(d *billing.Draft) *dto.DraftResponse {
	items := make([]dto.LineItemResponse, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, dto.LineItemResponse{
			ProductID:   it.ProductID.String(),
			ProductName: it.ProductName,
			Batch:       it.Batch,
			HSNCode:     it.HSNCode,
			PackUnits:   it.PackUnits,
			ExpiryDate:  it.ExpiryDate.Format("2006-01-02"),
			Quantity:    it.Quantity,
			MRP:         it.MRP.Round(2),
			UnitPrice:   it.UnitPrice.Round(2),
			DiscountPct: it.DiscountPct,
			CgstRate:    it.CgstRate,
			SgstRate:    it.SgstRate,
			LineTotal:   it.LineTotal.Round(2),
		})
	}
	totals := billing.ComputeTotalsAtRate(d.Items, d.DiscountPct, s.gstRatePct)
	return &dto.DraftResponse{
		ID:            d.ID.String(),
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		CustomerEmail: d.CustomerEmail,
		DoctorName:    d.DoctorName,
		Address:       d.Address,
		Items:         items,
		DiscountPct:   d.DiscountPct,
		PaymentMethod: d.PaymentMethod,
		PaymentStatus: d.PaymentStatus,
		Totals:        totalsToResponse(totals),
		CreatedAt:     d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     d.UpdatedAt.Format(time.RFC3339),
	}
}

// totalsToResponse rounds to 2 decimals — the only place draft money is
// rounded; internal accumulation stays exact.
func totalsToResponse(t billing.Totals) dto.TotalsResponse {
	return dto.TotalsResponse{
		Subtotal:       t.Subtotal.Round(2),
		DiscountAmount: t.DiscountAmount.Round(2),
		TaxableAmount:  t.TaxableAmount.Round(2),
		TaxAmount:      t.TaxAmount.Round(2),
		Total:          t.Total.Round(2),
	}
}
