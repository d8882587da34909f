package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drugbee/internal/billing"
	"drugbee/internal/dto"
	"drugbee/internal/model"
	"drugbee/internal/repository"
	"drugbee/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	Finalize(ctx context.Context, draftID uuid.UUID) (*dto.SaleResponse, error)
	VoidSale(ctx context.Context, id uuid.UUID, reason string) error
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	MarkPaid(ctx context.Context, id uuid.UUID) error
	Reprint(ctx context.Context, id uuid.UUID, pageFormat string) error
}

type saleService struct {
	repo         repository.SaleRepository
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	drafts       repository.DraftStore
	dispatcher   *worker.Dispatcher
	billPrefix   string
	gstRatePct   decimal.Decimal
}

func NewSaleService(
	repo repository.SaleRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	drafts repository.DraftStore,
	dispatcher *worker.Dispatcher,
	billPrefix string,
	gstRatePct decimal.Decimal,
) SaleService {
	return &saleService{
		repo:         repo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		drafts:       drafts,
		dispatcher:   dispatcher,
		billPrefix:   billPrefix,
		gstRatePct:   gstRatePct,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Finalize ──────────────────────────────────────────────────────────────────
// Draft → Sale is the only transition of the construction state machine, and
// it happens exactly once per draft:
//   1. Dedup: a sale already finalized from this draft is returned as-is.
//   2. Validate the draft and recompute totals (never trust a cached summary).
//   3. BEGIN TX: nextval bill sequence, insert sale + frozen items, guarded
//      stock deduction, stock movement ledger rows.
//   4. COMMIT, discard the draft, enqueue async invoice rendering.
//
// Two registers finalizing concurrently are serialized by the DB: the bill
// sequence hands out distinct numbers, the stock guard fails the loser, and
// the unique draft_id index collapses duplicate retries onto one sale.

func (s *saleService) Finalize(ctx context.Context, draftID uuid.UUID) (*dto.SaleResponse, error) {
	// 1. Retry-safe dedup. Covers the crash-after-commit case where the
	// draft was never discarded: the retry finds the committed sale.
	if existing, err := s.repo.FindByDraftID(ctx, draftID); err == nil {
		return saleToResponse(existing), nil
	}

	d, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}

	// 2. Validate, then recompute totals from the line items.
	if err := d.Validate(); err != nil {
		return nil, err
	}
	totals := billing.ComputeTotalsAtRate(d.Items, d.DiscountPct, s.gstRatePct)

	paymentStatus := d.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = "paid"
	}

	// 3. ACID transaction
	var sale model.Sale
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		seq, err := s.repo.NextBillSeq(ctx, tx)
		if err != nil {
			return err
		}

		sale = model.Sale{
			BillNumber:     billing.FormatBillNumber(s.billPrefix, seq),
			DraftID:        d.ID,
			CustomerName:   d.CustomerName,
			CustomerPhone:  d.CustomerPhone,
			CustomerEmail:  d.CustomerEmail,
			DoctorName:     d.DoctorName,
			Address:        d.Address,
			DiscountPct:    d.DiscountPct,
			Subtotal:       totals.Subtotal.Round(2),
			DiscountAmount: totals.DiscountAmount.Round(2),
			TaxAmount:      totals.TaxAmount.Round(2),
			Total:          totals.Total.Round(2),
			PaymentMethod:  d.PaymentMethod,
			PaymentStatus:  paymentStatus,
			Status:         "completed",
			FollowUpDate:   d.FollowUpDate,
			Notes:          d.Notes,
		}
		for i, it := range d.Items {
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Batch:       it.Batch,
				HSNCode:     it.HSNCode,
				PackUnits:   it.PackUnits,
				ExpiryDate:  it.ExpiryDate,
				Position:    i,
				Quantity:    it.Quantity,
				MRP:         it.MRP,
				UnitPrice:   it.UnitPrice,
				DiscountPct: it.DiscountPct,
				CgstRate:    it.CgstRate,
				SgstRate:    it.SgstRate,
				LineTotal:   it.LineTotal.Round(2),
			})
		}

		if err := s.repo.Create(ctx, tx, &sale); err != nil {
			return err
		}

		// Deduct stock with the hard check. The add-time check was soft;
		// stock may have been consumed since.
		for _, it := range d.Items {
			before, err := s.productRepo.FindByIDTx(tx, it.ProductID)
			if err != nil {
				return fmt.Errorf("product %s no longer exists: %w", it.ProductName, err)
			}

			rows, err := s.productRepo.DeductStockTx(tx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if rows == 0 {
				// A concurrent sale consumed the stock between validation
				// and deduction. Roll back; the caller re-validates and retries.
				return billing.ErrConcurrencyConflict
			}

			saleRef := sale.ID
			mov := &model.StockMovement{
				ProductID: it.ProductID,
				Type:      "sale",
				Quantity:  -it.Quantity,
				StockFrom: before.Stock,
				StockTo:   before.Stock - it.Quantity,
				Reason:    fmt.Sprintf("Bill %s", sale.BillNumber),
				SaleID:    &saleRef,
			}
			if err := s.movementRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		// Unique draft_id violation: a concurrent finalize of the same draft
		// committed first. Exactly-once semantics — return its sale.
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			if existing, err := s.repo.FindByDraftID(ctx, draftID); err == nil {
				return saleToResponse(existing), nil
			}
			return nil, billing.ErrConcurrencyConflict
		}
		return nil, txErr
	}

	// 4. The draft is consumed; discard is best-effort (the dedup above
	// handles a leftover draft).
	if err := s.drafts.Delete(ctx, draftID); err != nil {
		log.Warn().Err(err).Str("draft_id", draftID.String()).Msg("failed to discard finalized draft")
	}

	// Async invoice rendering + optional email (fire & forget)
	if s.dispatcher != nil {
		payload := worker.InvoiceJobPayload{SaleID: sale.ID.String(), PageFormat: "A4"}
		if d.CustomerEmail != nil && *d.CustomerEmail != "" {
			payload.Email = *d.CustomerEmail
		}
		if err := s.dispatcher.EnqueueInvoice(ctx, payload); err != nil {
			log.Warn().Err(err).Str("bill_number", sale.BillNumber).Msg("failed to enqueue invoice job")
		}
	}

	return saleToResponse(&sale), nil
}

// ── VoidSale ──────────────────────────────────────────────────────────────────
// Restores stock for every line and records inverse ledger entries. The sale
// row itself stays immutable apart from the status flip.

func (s *saleService) VoidSale(ctx context.Context, id uuid.UUID, reason string) error {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("sale not found")
	}
	if sale.Status == "voided" {
		return errors.New("sale is already voided")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, item := range sale.Items {
			before, err := s.productRepo.FindByIDTx(tx, item.ProductID)
			stockBefore := 0
			if err == nil && before != nil {
				stockBefore = before.Stock
			}

			if err := s.productRepo.RestoreStockTx(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}

			saleRef := sale.ID
			mov := &model.StockMovement{
				ProductID: item.ProductID,
				Type:      "void_restore",
				Quantity:  item.Quantity,
				StockFrom: stockBefore,
				StockTo:   stockBefore + item.Quantity,
				Reason:    fmt.Sprintf("Void bill %s — %s", sale.BillNumber, reason),
				SaleID:    &saleRef,
			}
			if err := s.movementRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}

		return s.repo.UpdateStatusTx(tx, id, "voided")
	})
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return saleToResponse(sale), nil
}

// ListSales returns a paginated list of sales, filtered by date and status.
// Default filter: today's completed sales.
func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Status == "" {
		filter.Status = "completed"
	}
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *saleService) MarkPaid(ctx context.Context, id uuid.UUID) error {
	return s.repo.UpdatePaymentStatus(ctx, id, "paid")
}

// Reprint re-renders the frozen sale; the stored pricing fields guarantee the
// artifact matches the original bill.
func (s *saleService) Reprint(ctx context.Context, id uuid.UUID, pageFormat string) error {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if s.dispatcher == nil {
		return errors.New("invoice rendering is not available")
	}
	if pageFormat == "" {
		pageFormat = "A4"
	}
	return s.dispatcher.EnqueueInvoice(ctx, worker.InvoiceJobPayload{
		SaleID:     sale.ID.String(),
		PageFormat: pageFormat,
	})
}

func saleToResponse(v *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, dto.SaleItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Batch:       item.Batch,
			HSNCode:     item.HSNCode,
			PackUnits:   item.PackUnits,
			ExpiryDate:  item.ExpiryDate.Format("2006-01-02"),
			Quantity:    item.Quantity,
			MRP:         item.MRP,
			UnitPrice:   item.UnitPrice,
			DiscountPct: item.DiscountPct,
			CgstRate:    item.CgstRate,
			SgstRate:    item.SgstRate,
			LineTotal:   item.LineTotal,
		})
	}
	return &dto.SaleResponse{
		ID:             v.ID.String(),
		BillNumber:     v.BillNumber,
		CustomerName:   v.CustomerName,
		CustomerPhone:  v.CustomerPhone,
		CustomerEmail:  v.CustomerEmail,
		DoctorName:     v.DoctorName,
		Address:        v.Address,
		Items:          items,
		DiscountPct:    v.DiscountPct,
		Subtotal:       v.Subtotal,
		DiscountAmount: v.DiscountAmount,
		TaxAmount:      v.TaxAmount,
		Total:          v.Total,
		PaymentMethod:  v.PaymentMethod,
		PaymentStatus:  v.PaymentStatus,
		Status:         v.Status,
		CreatedAt:      v.CreatedAt.Format(time.RFC3339),
	}
}
