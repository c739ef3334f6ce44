package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type CompanyUseCase struct {
	CompanyRepo entity.CompanyRepositoryInterface
	LeadRepo    entity.LeadRepositoryInterface
}

func NewCompanyUseCase(companyRepo entity.CompanyRepositoryInterface, leadRepo entity.LeadRepositoryInterface) *CompanyUseCase {
	return &CompanyUseCase{CompanyRepo: companyRepo, LeadRepo: leadRepo}
}

func (uc *CompanyUseCase) Create(ctx context.Context, input CompanyInput) (*CompanyOutput, error) {
	if errs := ValidateCompanyInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	company, err := entity.NewCompany(input.Domain)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}
	applyCompanyInput(company, input)

	err = uc.CompanyRepo.Create(ctx, company)
	if errors.Is(err, entity.ErrCompanyAlreadyExists) {
		return nil, &DomainError{Code: CodeCompanyAlreadyExists, Message: "company already exists: " + company.Domain}
	}
	if err != nil {
		return nil, databaseError("failed to create company", err)
	}

	log.Printf("🏢 [COMPANIES] %s created", company.Domain)
	return newCompanyOutput(company), nil
}

// Get returns the company with its leads.
func (uc *CompanyUseCase) Get(ctx context.Context, domain string) (*CompanyOutput, error) {
	company, err := uc.find(ctx, domain)
	if err != nil {
		return nil, err
	}

	leads, err := uc.LeadRepo.List(ctx, entity.LeadFilter{CompanyDomain: company.Domain})
	if err != nil {
		return nil, databaseError("failed to list company leads", err)
	}

	out := newCompanyOutput(company)
	for _, lead := range leads {
		out.Leads = append(out.Leads, newLeadOutput(lead))
	}
	return out, nil
}

func (uc *CompanyUseCase) List(ctx context.Context, search string) ([]*CompanyOutput, error) {
	companies, err := uc.CompanyRepo.List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, databaseError("failed to list companies", err)
	}

	out := make([]*CompanyOutput, 0, len(companies))
	for _, c := range companies {
		out = append(out, newCompanyOutput(c))
	}
	return out, nil
}

func (uc *CompanyUseCase) Update(ctx context.Context, input CompanyInput) (*CompanyOutput, error) {
	if errs := ValidateCompanyInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	company, err := uc.find(ctx, input.Domain)
	if err != nil {
		return nil, err
	}
	applyCompanyInput(company, input)

	err = uc.CompanyRepo.Update(ctx, company)
	if errors.Is(err, entity.ErrCompanyNotFound) {
		return nil, companyNotFound(company.Domain)
	}
	if err != nil {
		return nil, databaseError("failed to update company", err)
	}
	return newCompanyOutput(company), nil
}

// Delete removes the company and, through the foreign key, its leads.
func (uc *CompanyUseCase) Delete(ctx context.Context, domain string) error {
	domain = strings.ToLower(strings.TrimSpace(domain))
	err := uc.CompanyRepo.Delete(ctx, domain)
	if errors.Is(err, entity.ErrCompanyNotFound) {
		return companyNotFound(domain)
	}
	if err != nil {
		return databaseError("failed to delete company", err)
	}
	log.Printf("🗑️ [COMPANIES] %s deleted with its leads", domain)
	return nil
}

func (uc *CompanyUseCase) find(ctx context.Context, domain string) (*entity.Company, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	company, err := uc.CompanyRepo.FindByDomain(ctx, domain)
	if errors.Is(err, entity.ErrCompanyNotFound) {
		return nil, companyNotFound(domain)
	}
	if err != nil {
		return nil, databaseError("failed to load company", err)
	}
	return company, nil
}

func applyCompanyInput(c *entity.Company, input CompanyInput) {
	c.Name = strings.TrimSpace(input.Name)
	c.Industry = strings.TrimSpace(input.Industry)
	c.Size = input.Size
	c.HQCountry = strings.TrimSpace(input.HQCountry)
	c.OrgType = input.OrgType
}

func newCompanyOutput(c *entity.Company) *CompanyOutput {
	return &CompanyOutput{Company: c, DisplayName: c.DisplayName()}
}

func companyNotFound(domain string) error {
	return &DomainError{Code: CodeCompanyNotFound, Message: "company not found: " + domain}
}
