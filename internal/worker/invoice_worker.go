package worker

// invoice_worker.go
// Processes invoice rendering jobs from QueueInvoice.
// Renders the finalized sale to a PDF artifact, records the path on the sale,
// and optionally chains an email job with the attachment.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"drugbee/internal/infra"
	"drugbee/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// InvoiceJobPayload is the job envelope sent to QueueInvoice.
type InvoiceJobPayload struct {
	SaleID     string `json:"sale_id"`
	PageFormat string `json:"page_format"`
	Email      string `json:"email,omitempty"`
}

// InvoiceWorker renders finalized sales into PDF invoices.
type InvoiceWorker struct {
	saleRepo       repository.SaleRepository
	dispatcher     *Dispatcher
	store          infra.StoreInfo
	pdfStoragePath string
}

func NewInvoiceWorker(saleRepo repository.SaleRepository, dispatcher *Dispatcher, store infra.StoreInfo, pdfStoragePath string) *InvoiceWorker {
	return &InvoiceWorker{
		saleRepo:       saleRepo,
		dispatcher:     dispatcher,
		store:          store,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single invoice job:
//  1. Parse InvoiceJobPayload from the job envelope
//  2. Fetch the Sale (with ordered items) from DB
//  3. Render the PDF with retry (3 attempts, exponential backoff)
//  4. Record the artifact path on the sale
//  5. Optionally enqueue an email job with the attachment
//
// Jobs that exhaust retries go to the dead letter queue.
func (w *InvoiceWorker) Process(ctx context.Context, rdb *redis.Client, raw json.RawMessage) {
	var payload InvoiceJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("invoice_worker: invalid payload")
		return
	}

	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		log.Error().Str("sale_id", payload.SaleID).Msg("invoice_worker: invalid sale_id")
		return
	}

	sale, err := w.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		log.Error().Err(err).Str("sale_id", payload.SaleID).Msg("invoice_worker: sale not found")
		return
	}

	var pdfPath string
	renderErr := withRetry(ctx, 3, func(attempt int) error {
		path, err := infra.GenerateInvoicePDF(sale, w.store, payload.PageFormat, w.pdfStoragePath)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("bill_number", sale.BillNumber).
				Msg("invoice_worker: render attempt failed, retrying")
			return err
		}
		pdfPath = path
		return nil
	})
	if renderErr != nil {
		log.Error().Err(renderErr).Str("bill_number", sale.BillNumber).Msg("invoice_worker: render failed after all retries")
		if rdb != nil {
			SendToDLQ(ctx, rdb, QueueInvoice, "invoice", raw, renderErr.Error(), 3)
		}
		return
	}

	if err := w.saleRepo.SetPDFPath(ctx, saleID, pdfPath); err != nil {
		log.Warn().Err(err).Str("bill_number", sale.BillNumber).Msg("invoice_worker: failed to record pdf path")
	}
	log.Info().Str("pdf", pdfPath).Str("bill_number", sale.BillNumber).Msg("invoice_worker: invoice rendered")

	if payload.Email != "" {
		emailJob := EmailJobPayload{
			ToEmail: payload.Email,
			Subject: fmt.Sprintf("%s — Invoice %s", w.store.Name, sale.BillNumber),
			Body:    fmt.Sprintf("Please find your invoice attached.\nTotal: %s", sale.Total.StringFixed(2)),
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", payload.Email).Msg("invoice_worker: failed to enqueue email")
		}
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
