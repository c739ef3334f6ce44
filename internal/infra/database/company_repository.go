package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

var companyColumns = []string{
	"domain", "company_name", "industry", "company_size", "hq_country", "org_type", "created_at", "updated_at",
}

type CompanyRepository struct {
	DB *sql.DB
}

var _ entity.CompanyRepositoryInterface = (*CompanyRepository)(nil)

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{DB: db}
}

func (r *CompanyRepository) Create(ctx context.Context, c *entity.Company) error {
	query := `
		INSERT INTO companies (domain, company_name, industry, company_size, hq_country, org_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, query, companyArgs(c)...).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return entity.ErrCompanyAlreadyExists
		}
		return fmt.Errorf("insert company %s: %w", c.Domain, err)
	}
	return nil
}

// EnsureExists creates a bare company row for the domain if there is none.
func (r *CompanyRepository) EnsureExists(ctx context.Context, domain string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO companies (domain, created_at, updated_at) VALUES ($1, NOW(), NOW()) ON CONFLICT (domain) DO NOTHING`,
		domain,
	)
	if err != nil {
		return fmt.Errorf("ensure company %s: %w", domain, err)
	}
	return nil
}

func (r *CompanyRepository) FindByDomain(ctx context.Context, domain string) (*entity.Company, error) {
	query, args, err := psql.Select(companyColumns...).From("companies").Where(sq.Eq{"domain": domain}).ToSql()
	if err != nil {
		return nil, err
	}

	c, err := scanCompany(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find company %s: %w", domain, err)
	}
	return c, nil
}

func (r *CompanyRepository) List(ctx context.Context, search string) ([]*entity.Company, error) {
	builder := psql.Select(companyColumns...).From("companies").OrderBy("company_name DESC NULLS LAST", "domain")
	if search != "" {
		pattern := "%" + search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"company_name": pattern},
			sq.ILike{"domain": pattern},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *CompanyRepository) Update(ctx context.Context, c *entity.Company) error {
	query := `
		UPDATE companies
		SET company_name = $2, industry = $3, company_size = $4, hq_country = $5, org_type = $6, updated_at = NOW()
		WHERE domain = $1
		RETURNING created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, query, companyArgs(c)...).Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrCompanyNotFound
	}
	if err != nil {
		return fmt.Errorf("update company %s: %w", c.Domain, err)
	}
	return nil
}

// Delete removes the company; its leads go with it (ON DELETE CASCADE).
func (r *CompanyRepository) Delete(ctx context.Context, domain string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM companies WHERE domain = $1`, domain)
	if err != nil {
		return fmt.Errorf("delete company %s: %w", domain, err)
	}
	return expectAffected(res, entity.ErrCompanyNotFound)
}

func scanCompany(row rowScanner) (*entity.Company, error) {
	var c entity.Company
	var name, industry, country, orgType sql.NullString
	var size sql.NullInt64

	if err := row.Scan(&c.Domain, &name, &industry, &size, &country, &orgType, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	c.Name = name.String
	c.Industry = industry.String
	c.HQCountry = country.String
	c.OrgType = orgType.String
	if size.Valid {
		n := int(size.Int64)
		c.Size = &n
	}
	return &c, nil
}

func companyArgs(c *entity.Company) []any {
	var size *int64
	if c.Size != nil {
		n := int64(*c.Size)
		size = &n
	}
	return []any{
		c.Domain,
		nullString(c.Name),
		nullString(c.Industry),
		size,
		nullString(c.HQCountry),
		nullString(c.OrgType),
	}
}
