package worker

// render_cron.go
// Background goroutine that periodically re-enqueues invoice render jobs
// for completed sales that still have no PDF on disk. Covers jobs lost to
// worker crashes or Redis restarts between enqueue and BRPOP.

import (
	"context"
	"time"

	"drugbee/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	renderTickInterval = 2 * time.Minute
	renderBatchSize    = 20
	renderLookback     = 48 * time.Hour
)

// RenderCronConfig holds all dependencies for the render retry goroutine.
type RenderCronConfig struct {
	SaleRepo   repository.SaleRepository
	Dispatcher *Dispatcher
}

// StartRenderCron launches a background goroutine that ticks every two
// minutes and re-enqueues render jobs for sales missing their invoice PDF.
// It respects the context for graceful shutdown.
func StartRenderCron(ctx context.Context, cfg RenderCronConfig) {
	go func() {
		ticker := time.NewTicker(renderTickInterval)
		defer ticker.Stop()

		log.Info().Msg("render_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("render_cron: shutting down")
				return
			case <-ticker.C:
				processMissingRenders(ctx, cfg)
			}
		}
	}()
}

func processMissingRenders(ctx context.Context, cfg RenderCronConfig) {
	since := time.Now().Add(-renderLookback)
	sales, err := cfg.SaleRepo.ListMissingPDF(ctx, since, renderBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("render_cron: failed to query sales missing PDFs")
		return
	}

	if len(sales) == 0 {
		return
	}

	log.Info().Int("count", len(sales)).Msg("render_cron: re-enqueueing invoice renders")

	for i := range sales {
		s := &sales[i]
		payload := InvoiceJobPayload{
			SaleID:     s.ID.String(),
			PageFormat: "A4",
		}
		if s.CustomerEmail != nil && *s.CustomerEmail != "" {
			payload.Email = *s.CustomerEmail
		}
		if err := cfg.Dispatcher.EnqueueInvoice(ctx, payload); err != nil {
			log.Error().Err(err).
				Str("sale_id", s.ID.String()).
				Str("bill_number", s.BillNumber).
				Msg("render_cron: re-enqueue failed")
			return
		}
	}
}
