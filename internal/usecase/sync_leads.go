package usecase

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

// SyncLeadsUseCase queues leads for the mailing list or the CRM. The queue
// worker performs the actual upload.
type SyncLeadsUseCase struct {
	LeadRepo entity.LeadRepositoryInterface
	Queue    queue.QueueProducerInterface
}

func NewSyncLeadsUseCase(leadRepo entity.LeadRepositoryInterface, q queue.QueueProducerInterface) *SyncLeadsUseCase {
	return &SyncLeadsUseCase{LeadRepo: leadRepo, Queue: q}
}

func (uc *SyncLeadsUseCase) Execute(ctx context.Context, input SyncLeadsInput) (*SyncLeadsOutput, error) {
	if errs := ValidateSyncLeadsInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	if uc.Queue == nil {
		return nil, &TechnicalError{Code: CodeQueue, Message: "sync queue is not configured"}
	}

	filter := entity.LeadFilter{Tag: normalizeTag(input.Tag)}
	if len(input.Emails) > 0 {
		filter = entity.LeadFilter{Emails: uniqueEmails(input.Emails)}
	}

	leads, err := uc.LeadRepo.List(ctx, filter)
	if err != nil {
		return nil, databaseError("failed to load leads for sync", err)
	}

	out := &SyncLeadsOutput{Target: input.Target, Matched: len(leads), JobIDs: []string{}}
	for _, lead := range leads {
		// bounced and unsubscribed contacts never go back on the mailing list
		if input.Target == queue.TargetMailchimp && lead.EmailStatus != entity.EmailStatusActive {
			out.Skipped++
			continue
		}

		payload := newSyncPayload(input.Target, lead)
		if err := uc.Queue.PublishSync(ctx, payload); err != nil {
			log.Printf("❌ [SYNC] %s to %s: %v", lead.Email, input.Target, err)
			out.Failed++
			continue
		}
		out.Queued++
		out.JobIDs = append(out.JobIDs, payload.JobID)
	}

	log.Printf("🚀 [SYNC] %d leads queued for %s (%d skipped, %d failed)", out.Queued, out.Target, out.Skipped, out.Failed)
	return out, nil
}

func newSyncPayload(target string, lead *entity.Lead) queue.SyncPayload {
	p := queue.SyncPayload{
		JobID:         uuid.New().String(),
		Target:        target,
		Email:         lead.Email,
		FirstName:     lead.FirstName,
		LastName:      lead.LastName,
		CompanyDomain: lead.CompanyDomain,
		CRMOwner:      lead.CRMOwner,
		Score:         lead.Score,
		Stage:         string(lead.Stage),
		Tags:          lead.Tags,
	}
	if lead.JobTitle != nil {
		p.JobTitle = *lead.JobTitle
	}
	return p
}
