package usecase

import (
	"context"
	"log"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type ApplyTagUseCase struct {
	LeadRepo entity.LeadRepositoryInterface
}

func NewApplyTagUseCase(leadRepo entity.LeadRepositoryInterface) *ApplyTagUseCase {
	return &ApplyTagUseCase{LeadRepo: leadRepo}
}

// Execute adds the tag to every listed lead. Leads already carrying it, and
// unknown emails, are left alone; Tagged counts the leads that changed.
func (uc *ApplyTagUseCase) Execute(ctx context.Context, input ApplyTagInput) (*ApplyTagOutput, error) {
	if errs := ValidateApplyTagInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	tag := normalizeTag(input.Tag)
	emails := uniqueEmails(input.Emails)

	tagged, err := uc.LeadRepo.AddTag(ctx, emails, tag)
	if err != nil {
		return nil, databaseError("failed to tag leads", err)
	}

	log.Printf("🏷️ [LEADS] tag %q applied to %d of %d leads", tag, tagged, len(emails))
	return &ApplyTagOutput{Tag: tag, Requested: len(emails), Tagged: tagged}, nil
}

func uniqueEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	seen := make(map[string]bool, len(emails))
	for _, e := range emails {
		e = normalizeEmail(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
