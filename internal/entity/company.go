package entity

import (
	"context"
	"strings"
	"time"
)

// Company groups leads sharing a domain.
type Company struct {
	Domain    string    `json:"domain"`
	Name      string    `json:"name,omitempty"`
	Industry  string    `json:"industry,omitempty"`
	Size      *int      `json:"size,omitempty"`
	HQCountry string    `json:"hq_country,omitempty"`
	OrgType   string    `json:"org_type,omitempty"` // public, private, gov, edu, nonprofit
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCompany(domain string) (*Company, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, ErrCompanyHasNoDomain
	}
	now := time.Now()
	return &Company{Domain: domain, CreatedAt: now, UpdatedAt: now}, nil
}

func (c *Company) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Domain
}

type CompanyRepositoryInterface interface {
	Create(ctx context.Context, c *Company) error
	EnsureExists(ctx context.Context, domain string) error
	FindByDomain(ctx context.Context, domain string) (*Company, error)
	List(ctx context.Context, search string) ([]*Company, error)
	Update(ctx context.Context, c *Company) error
	Delete(ctx context.Context, domain string) error
}
