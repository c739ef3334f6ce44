package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// LeadUseCase serves lead reads and deletes.
type LeadUseCase struct {
	LeadRepo entity.LeadRepositoryInterface
}

func NewLeadUseCase(leadRepo entity.LeadRepositoryInterface) *LeadUseCase {
	return &LeadUseCase{LeadRepo: leadRepo}
}

func (uc *LeadUseCase) Get(ctx context.Context, email string) (*LeadOutput, error) {
	email = normalizeEmail(email)
	lead, err := uc.LeadRepo.FindByEmail(ctx, email)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, &DomainError{Code: CodeLeadNotFound, Message: "lead not found: " + email}
	}
	if err != nil {
		return nil, databaseError("failed to load lead", err)
	}

	out := newLeadOutput(lead)
	return &out, nil
}

// List returns the matching leads and the average score of that same set.
func (uc *LeadUseCase) List(ctx context.Context, input ListLeadsInput) (*ListLeadsOutput, error) {
	if input.Stage != "" && !input.Stage.Valid() {
		return nil, validationFailed([]ValidationError{{"stage", "is not a valid stage"}})
	}

	filter := entity.LeadFilter{
		Search:        strings.TrimSpace(input.Search),
		CompanyDomain: strings.ToLower(strings.TrimSpace(input.Company)),
		Tag:           normalizeTag(input.Tag),
		Stage:         input.Stage,
	}

	leads, err := uc.LeadRepo.List(ctx, filter)
	if err != nil {
		return nil, databaseError("failed to list leads", err)
	}
	avg, err := uc.LeadRepo.AverageScore(ctx, filter)
	if err != nil {
		return nil, databaseError("failed to average scores", err)
	}

	out := &ListLeadsOutput{
		Leads:        make([]LeadOutput, 0, len(leads)),
		Count:        len(leads),
		AverageScore: avg,
	}
	for _, lead := range leads {
		out.Leads = append(out.Leads, newLeadOutput(lead))
	}
	return out, nil
}

// Delete removes the lead. Sibling scores are left as they are until those
// leads are saved again.
func (uc *LeadUseCase) Delete(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	err := uc.LeadRepo.Delete(ctx, email)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return &DomainError{Code: CodeLeadNotFound, Message: "lead not found: " + email}
	}
	if err != nil {
		return databaseError("failed to delete lead", err)
	}
	log.Printf("🗑️ [LEADS] %s deleted", email)
	return nil
}
