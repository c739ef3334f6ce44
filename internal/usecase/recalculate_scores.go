package usecase

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/scoring"
)

const (
	RecalculationSuccess = "success"
	RecalculationBusy    = "busy"
	RecalculationError   = "error"
)

// RecalculateScoresUseCase rescores stored leads in bulk. Running it twice
// with no writes in between produces the same scores.
type RecalculateScoresUseCase struct {
	LeadRepo entity.LeadRepositoryInterface
	Scorer   LeadScorer
	Lock     RunLock
	Metrics  ScoreRecorder
}

func NewRecalculateScoresUseCase(
	leadRepo entity.LeadRepositoryInterface,
	scorer LeadScorer,
	lock RunLock,
	metrics ScoreRecorder,
) *RecalculateScoresUseCase {
	return &RecalculateScoresUseCase{
		LeadRepo: leadRepo,
		Scorer:   scorer,
		Lock:     lock,
		Metrics:  recorderOrNoop(metrics),
	}
}

// Execute narrows the leads by email, then by stored stage, then caps them at
// the limit, and rescores each one. A failing lead is counted and skipped.
func (uc *RecalculateScoresUseCase) Execute(ctx context.Context, input RecalculateInput) (*RecalculateOutput, error) {
	if errs := ValidateRecalculateInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	if uc.Lock != nil {
		ok, err := uc.Lock.Acquire(ctx)
		if err != nil {
			uc.Metrics.RecordRecalculation(RecalculationError)
			return nil, &TechnicalError{Code: CodeLock, Message: "failed to acquire recalculation lock", Err: err}
		}
		if !ok {
			uc.Metrics.RecordRecalculation(RecalculationBusy)
			return nil, &DomainError{Code: CodeRecalculationRunning, Message: "a score recalculation is already running"}
		}
		defer func() {
			if err := uc.Lock.Release(context.WithoutCancel(ctx)); err != nil {
				log.Printf("⚠️ [RECALC] failed to release lock: %v", err)
			}
		}()
	}

	out := &RecalculateOutput{RunID: uuid.New().String()}
	start := time.Now()

	filter := entity.LeadFilter{
		Email: normalizeEmail(input.Email),
		Stage: entity.Stage(input.Stage),
		Limit: input.Limit,
	}
	leads, err := uc.LeadRepo.List(ctx, filter)
	if err != nil {
		uc.Metrics.RecordRecalculation(RecalculationError)
		return nil, databaseError("failed to list leads for recalculation", err)
	}
	out.Matched = len(leads)
	log.Printf("🔄 [RECALC] run %s: %d leads matched", out.RunID, out.Matched)

	for _, lead := range leads {
		if err := ctx.Err(); err != nil {
			uc.Metrics.RecordRecalculation(RecalculationError)
			return nil, &TechnicalError{Code: CodeDatabase, Message: "recalculation cancelled", Err: err}
		}

		res := uc.Scorer.Score(ctx, lead)
		if res.PeerLookupFailed {
			uc.Metrics.RecordPeerLookupFailure()
		}

		err := uc.LeadRepo.UpdateScore(ctx, lead.Email, res.Score, res.Stage, scoring.IsFreeEmail(lead.Email))
		if err != nil {
			log.Printf("❌ [RECALC] %s: %v", lead.Email, err)
			out.Failed++
			continue
		}

		out.Updated++
		if res.Score != lead.Score || res.Stage != lead.Stage {
			out.Changed++
		}
		uc.Metrics.RecordLeadScored(res.Stage)
	}

	stats, err := uc.LeadRepo.Stats(ctx)
	if err != nil {
		uc.Metrics.RecordRecalculation(RecalculationError)
		return nil, databaseError("failed to compute score statistics", err)
	}
	out.Stats = newStatsOutput(stats)

	uc.Metrics.RecordRecalculation(RecalculationSuccess)
	log.Printf("✅ [RECALC] run %s done in %s: %d updated, %d changed, %d failed",
		out.RunID, time.Since(start).Round(time.Millisecond), out.Updated, out.Changed, out.Failed)
	return out, nil
}

func newStatsOutput(stats *entity.ScoreStats) StatsOutput {
	out := StatsOutput{
		Total:        stats.Total,
		AverageScore: stats.AverageScore,
		MinScore:     stats.MinScore,
		MaxScore:     stats.MaxScore,
		Stages:       make([]StageCount, 0, len(entity.StagesDescending)),
	}
	for _, stage := range entity.StagesDescending {
		out.Stages = append(out.Stages, StageCount{
			Stage: stage,
			Label: stage.Label(),
			Count: stats.ByStage[stage],
		})
	}
	return out
}
