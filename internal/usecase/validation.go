package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

const (
	maxNameLength  = 100
	maxTitleLength = 200
	maxTagLength   = 50
	maxBatchEmails = 1000
)

var (
	domainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)+$`)
	tagPattern    = regexp.MustCompile(`^[a-z0-9][a-z0-9 _-]*$`)
)

var orgTypes = map[string]bool{
	"public":    true,
	"private":   true,
	"gov":       true,
	"edu":       true,
	"nonprofit": true,
}

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateSaveLeadInput(input SaveLeadInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Email) == "" {
		errors = append(errors, ValidationError{"email", "is required"})
	} else if !isValidEmail(input.Email) {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}

	if input.CompanyDomain != "" && !isValidDomain(input.CompanyDomain) {
		errors = append(errors, ValidationError{"company_domain", "is not a valid domain"})
	}

	if input.FirstName != nil && len(*input.FirstName) > maxNameLength {
		errors = append(errors, ValidationError{"first_name", fmt.Sprintf("must not exceed %d characters", maxNameLength)})
	}
	if input.LastName != nil && len(*input.LastName) > maxNameLength {
		errors = append(errors, ValidationError{"last_name", fmt.Sprintf("must not exceed %d characters", maxNameLength)})
	}
	if input.JobTitle != nil && len(*input.JobTitle) > maxTitleLength {
		errors = append(errors, ValidationError{"job_title", fmt.Sprintf("must not exceed %d characters", maxTitleLength)})
	}

	if input.SessionCount != nil && *input.SessionCount < 0 {
		errors = append(errors, ValidationError{"session_count", "must not be negative"})
	}

	if input.EmailStatus != nil {
		switch *input.EmailStatus {
		case entity.EmailStatusActive, entity.EmailStatusBounced, entity.EmailStatusUnsubscribed:
		default:
			errors = append(errors, ValidationError{"email_status", "must be active, bounced or unsubscribed"})
		}
	}

	if input.CRMOwner != nil && *input.CRMOwner != "" && !isValidEmail(*input.CRMOwner) {
		errors = append(errors, ValidationError{"crm_owner", "must be an email address"})
	}

	for _, tag := range input.Tags {
		if !isValidTag(tag) {
			errors = append(errors, ValidationError{"tags", fmt.Sprintf("%q is not a valid tag", tag)})
		}
	}

	return errors
}

func ValidateCompanyInput(input CompanyInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Domain) == "" {
		errors = append(errors, ValidationError{"domain", "is required"})
	} else if !isValidDomain(input.Domain) {
		errors = append(errors, ValidationError{"domain", "is not a valid domain"})
	}

	if len(input.Name) > maxTitleLength {
		errors = append(errors, ValidationError{"name", fmt.Sprintf("must not exceed %d characters", maxTitleLength)})
	}
	if input.Size != nil && *input.Size < 0 {
		errors = append(errors, ValidationError{"size", "must not be negative"})
	}
	if input.OrgType != "" && !orgTypes[input.OrgType] {
		errors = append(errors, ValidationError{"org_type", "must be public, private, gov, edu or nonprofit"})
	}

	return errors
}

func ValidateRecalculateInput(input RecalculateInput) []ValidationError {
	var errors []ValidationError

	if input.Stage != "" && !entity.Stage(input.Stage).Valid() {
		errors = append(errors, ValidationError{"stage", "must be low, medium, high, very_high or enterprise"})
	}
	if input.Email != "" && !isValidEmail(input.Email) {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}
	if input.Limit < 0 {
		errors = append(errors, ValidationError{"limit", "must not be negative"})
	}

	return errors
}

func ValidateApplyTagInput(input ApplyTagInput) []ValidationError {
	var errors []ValidationError

	if len(input.Emails) == 0 {
		errors = append(errors, ValidationError{"emails", "at least one email is required"})
	} else if len(input.Emails) > maxBatchEmails {
		errors = append(errors, ValidationError{"emails", fmt.Sprintf("must not exceed %d entries", maxBatchEmails)})
	}
	if strings.TrimSpace(input.Tag) == "" {
		errors = append(errors, ValidationError{"tag", "is required"})
	} else if !isValidTag(input.Tag) {
		errors = append(errors, ValidationError{"tag", "may only contain letters, digits, spaces, '-' and '_'"})
	}

	return errors
}

func ValidateSyncLeadsInput(input SyncLeadsInput) []ValidationError {
	var errors []ValidationError

	switch input.Target {
	case queue.TargetMailchimp, queue.TargetKommo:
	case "":
		errors = append(errors, ValidationError{"target", "is required"})
	default:
		errors = append(errors, ValidationError{"target", "must be MAILCHIMP or KOMMO"})
	}

	if len(input.Emails) == 0 && strings.TrimSpace(input.Tag) == "" {
		errors = append(errors, ValidationError{"emails", "emails or tag is required"})
	}
	if len(input.Emails) > maxBatchEmails {
		errors = append(errors, ValidationError{"emails", fmt.Sprintf("must not exceed %d entries", maxBatchEmails)})
	}

	return errors
}

func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return false
	}
	_, domain, _ := strings.Cut(addr.Address, "@")
	return strings.Contains(domain, ".")
}

func isValidDomain(domain string) bool {
	return len(domain) <= 253 && domainPattern.MatchString(strings.ToLower(strings.TrimSpace(domain)))
}

func isValidTag(tag string) bool {
	tag = normalizeTag(tag)
	return len(tag) <= maxTagLength && tagPattern.MatchString(tag)
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validationFailed(errs []ValidationError) error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Field+" ("+e.Message+")")
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(msgs, ", "),
	}
}
