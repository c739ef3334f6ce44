package worker

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/ligue-leads/internal/usecase"
)

type Recalculator interface {
	Execute(ctx context.Context, input usecase.RecalculateInput) (*usecase.RecalculateOutput, error)
}

// RecalculationWorker rescores every lead on a fixed interval so that scores
// catch up with sibling leads added since their last save.
type RecalculationWorker struct {
	recalculator Recalculator
	tickInterval time.Duration
}

func NewRecalculationWorker(r Recalculator, interval time.Duration) *RecalculationWorker {
	return &RecalculationWorker{
		recalculator: r,
		tickInterval: interval,
	}
}

func (w *RecalculationWorker) Start(ctx context.Context) {
	log.Printf("🕒 Recalculation worker started (every %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Recalculation worker stopped")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *RecalculationWorker) run(ctx context.Context) {
	out, err := w.recalculator.Execute(ctx, usecase.RecalculateInput{})
	if usecase.IsDomainError(err) {
		// another instance holds the lock
		log.Printf("⏭️ Recalculation skipped: %v", err)
		return
	}
	if err != nil {
		log.Printf("❌ Scheduled recalculation failed: %v", err)
		return
	}
	log.Printf("✅ Scheduled recalculation %s: %d updated, %d changed, %d failed",
		out.RunID, out.Updated, out.Changed, out.Failed)
}
