package usecase

import (
	"context"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/scoring"
)

type LeadScorer interface {
	Score(ctx context.Context, lead *entity.Lead) scoring.Result
}

// ScoreRecorder receives scoring outcomes for metrics.
type ScoreRecorder interface {
	RecordLeadScored(stage entity.Stage)
	RecordPeerLookupFailure()
	RecordRecalculation(result string)
}

// AlertSender notifies a CRM owner that one of their leads became an
// enterprise target.
type AlertSender interface {
	SendEnterpriseAlert(to string, lead *entity.Lead) error
}

// RunLock guards a bulk recalculation.
type RunLock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type noopRecorder struct{}

func (noopRecorder) RecordLeadScored(entity.Stage) {}
func (noopRecorder) RecordPeerLookupFailure()      {}
func (noopRecorder) RecordRecalculation(string)    {}

func recorderOrNoop(r ScoreRecorder) ScoreRecorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
