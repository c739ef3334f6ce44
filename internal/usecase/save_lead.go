package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/scoring"
)

// SaveLeadUseCase creates and updates leads. Every write rescores the lead
// and stores score and stage in the same statement.
type SaveLeadUseCase struct {
	LeadRepo    entity.LeadRepositoryInterface
	CompanyRepo entity.CompanyRepositoryInterface
	Scorer      LeadScorer
	Alerts      AlertSender
	Metrics     ScoreRecorder
}

func NewSaveLeadUseCase(
	leadRepo entity.LeadRepositoryInterface,
	companyRepo entity.CompanyRepositoryInterface,
	scorer LeadScorer,
	alerts AlertSender,
	metrics ScoreRecorder,
) *SaveLeadUseCase {
	return &SaveLeadUseCase{
		LeadRepo:    leadRepo,
		CompanyRepo: companyRepo,
		Scorer:      scorer,
		Alerts:      alerts,
		Metrics:     recorderOrNoop(metrics),
	}
}

func (uc *SaveLeadUseCase) Create(ctx context.Context, input SaveLeadInput) (*LeadOutput, error) {
	if errs := ValidateSaveLeadInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	email := normalizeEmail(input.Email)

	_, err := uc.LeadRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, &DomainError{Code: CodeLeadAlreadyExists, Message: "lead already exists: " + email}
	case !errors.Is(err, entity.ErrLeadNotFound):
		return nil, databaseError("failed to look up lead", err)
	}

	lead := &entity.Lead{Email: email, EmailStatus: entity.EmailStatusActive}
	return uc.save(ctx, lead, input, true)
}

func (uc *SaveLeadUseCase) Update(ctx context.Context, input SaveLeadInput) (*LeadOutput, error) {
	if errs := ValidateSaveLeadInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	email := normalizeEmail(input.Email)

	lead, err := uc.LeadRepo.FindByEmail(ctx, email)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, &DomainError{Code: CodeLeadNotFound, Message: "lead not found: " + email}
	}
	if err != nil {
		return nil, databaseError("failed to look up lead", err)
	}

	return uc.save(ctx, lead, input, false)
}

func (uc *SaveLeadUseCase) save(ctx context.Context, lead *entity.Lead, input SaveLeadInput, create bool) (*LeadOutput, error) {
	previousStage := lead.Stage
	mergeLead(lead, input)

	if err := uc.CompanyRepo.EnsureExists(ctx, lead.CompanyDomain); err != nil {
		return nil, databaseError("failed to register company", err)
	}

	res := uc.Scorer.Score(ctx, lead)
	lead.Score = res.Score
	lead.Stage = res.Stage
	lead.IsFreeEmail = scoring.IsFreeEmail(lead.Email)

	if create {
		err := uc.LeadRepo.Create(ctx, lead)
		if errors.Is(err, entity.ErrLeadAlreadyExists) {
			return nil, &DomainError{Code: CodeLeadAlreadyExists, Message: "lead already exists: " + lead.Email}
		}
		if err != nil {
			return nil, databaseError("failed to create lead", err)
		}
	} else if err := uc.LeadRepo.Save(ctx, lead); err != nil {
		return nil, databaseError("failed to save lead", err)
	}

	uc.Metrics.RecordLeadScored(lead.Stage)
	if res.PeerLookupFailed {
		uc.Metrics.RecordPeerLookupFailure()
	}
	log.Printf("🎯 [LEADS] %s scored %d (%s)", lead.Email, lead.Score, lead.Stage)

	if enteredEnterprise(previousStage, lead.Stage) {
		uc.alertOwner(lead)
	}

	out := newLeadOutput(lead)
	out.Signals = res.Signals
	out.PeerLookupFailed = res.PeerLookupFailed
	return &out, nil
}

func (uc *SaveLeadUseCase) alertOwner(lead *entity.Lead) {
	if uc.Alerts == nil || lead.CRMOwner == "" {
		return
	}
	if err := uc.Alerts.SendEnterpriseAlert(lead.CRMOwner, lead); err != nil {
		log.Printf("⚠️ [LEADS] enterprise alert for %s not sent: %v", lead.Email, err)
	}
}

func enteredEnterprise(previous, current entity.Stage) bool {
	return current == entity.StageEnterprise && previous.Rank() < entity.StageEnterprise.Rank()
}

// mergeLead copies the fields present in input onto lead. The company domain
// falls back to the stored one, then to the email host.
func mergeLead(lead *entity.Lead, input SaveLeadInput) {
	if input.FirstName != nil {
		lead.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		lead.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.JobTitle != nil {
		title := strings.TrimSpace(*input.JobTitle)
		if title == "" {
			lead.JobTitle = nil
		} else {
			lead.JobTitle = &title
		}
	}
	if input.SessionCount != nil {
		n := *input.SessionCount
		lead.SessionCount = &n
	}
	if input.EmailStatus != nil {
		lead.EmailStatus = *input.EmailStatus
	}
	if input.CRMOwner != nil {
		lead.CRMOwner = normalizeEmail(*input.CRMOwner)
	}
	if input.Tags != nil {
		lead.Tags = normalizeTags(input.Tags)
	}

	if domain := strings.ToLower(strings.TrimSpace(input.CompanyDomain)); domain != "" {
		lead.CompanyDomain = domain
	} else if lead.CompanyDomain == "" {
		lead.CompanyDomain = scoring.ExtractDomain(lead.Email)
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = normalizeTag(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
