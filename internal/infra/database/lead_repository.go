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

const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var leadColumns = []string{
	"email", "domain", "first_name", "last_name", "job_title", "session_count",
	"is_free_email", "email_status", "crm_owner", "tags", "lead_score", "lead_stage",
	"created_at", "updated_at",
}

type LeadRepository struct {
	DB *sql.DB
}

var _ entity.LeadRepositoryInterface = (*LeadRepository)(nil)

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			email, domain, first_name, last_name, job_title, session_count,
			is_free_email, email_status, crm_owner, tags, lead_score, lead_stage,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.DB.QueryRowContext(ctx, query, leadArgs(lead)...).Scan(&lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return entity.ErrLeadAlreadyExists
		}
		return fmt.Errorf("insert lead %s: %w", lead.Email, err)
	}
	return nil
}

// Save upserts the lead, score and stage included, in a single write.
func (r *LeadRepository) Save(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			email, domain, first_name, last_name, job_title, session_count,
			is_free_email, email_status, crm_owner, tags, lead_score, lead_stage,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		ON CONFLICT (email)
		DO UPDATE SET
			domain = EXCLUDED.domain,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			job_title = EXCLUDED.job_title,
			session_count = EXCLUDED.session_count,
			is_free_email = EXCLUDED.is_free_email,
			email_status = EXCLUDED.email_status,
			crm_owner = EXCLUDED.crm_owner,
			tags = EXCLUDED.tags,
			lead_score = EXCLUDED.lead_score,
			lead_stage = EXCLUDED.lead_stage,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.DB.QueryRowContext(ctx, query, leadArgs(lead)...).Scan(&lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save lead %s: %w", lead.Email, err)
	}
	return nil
}

func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	query, args, err := psql.Select(leadColumns...).From("leads").Where(sq.Eq{"email": email}).ToSql()
	if err != nil {
		return nil, err
	}

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find lead %s: %w", email, err)
	}
	return lead, nil
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	builder := applyLeadFilter(psql.Select(leadColumns...).From("leads"), filter).
		OrderBy("created_at DESC", "email")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// AverageScore returns nil when no lead matches the filter.
func (r *LeadRepository) AverageScore(ctx context.Context, filter entity.LeadFilter) (*float64, error) {
	query, args, err := applyLeadFilter(psql.Select("AVG(lead_score)").From("leads"), filter).ToSql()
	if err != nil {
		return nil, err
	}

	var avg sql.NullFloat64
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&avg); err != nil {
		return nil, fmt.Errorf("average score: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

func (r *LeadRepository) Delete(ctx context.Context, email string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("delete lead %s: %w", email, err)
	}
	return expectAffected(res, entity.ErrLeadNotFound)
}

func (r *LeadRepository) UpdateScore(ctx context.Context, email string, score int, stage entity.Stage, isFreeEmail bool) error {
	query := `
		UPDATE leads
		SET lead_score = $1, lead_stage = $2, is_free_email = $3, updated_at = NOW()
		WHERE email = $4
	`
	res, err := r.DB.ExecContext(ctx, query, score, string(stage), isFreeEmail, email)
	if err != nil {
		return fmt.Errorf("update score for %s: %w", email, err)
	}
	return expectAffected(res, entity.ErrLeadNotFound)
}

// AddTag appends the tag to every listed lead that does not have it yet and
// reports how many leads changed.
func (r *LeadRepository) AddTag(ctx context.Context, emails []string, tag string) (int, error) {
	query := `
		UPDATE leads
		SET tags = array_append(tags, $1), updated_at = NOW()
		WHERE email = ANY($2) AND NOT ($1 = ANY(tags))
	`
	res, err := r.DB.ExecContext(ctx, query, tag, pq.Array(emails))
	if err != nil {
		return 0, fmt.Errorf("add tag %q: %w", tag, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// EmailsByCompany feeds the team adoption signal.
func (r *LeadRepository) EmailsByCompany(ctx context.Context, domain string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT email FROM leads WHERE domain = $1`, domain)
	if err != nil {
		return nil, fmt.Errorf("emails for %s: %w", domain, err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func (r *LeadRepository) Stats(ctx context.Context) (*entity.ScoreStats, error) {
	stats := &entity.ScoreStats{ByStage: make(map[entity.Stage]int, len(entity.StagesDescending))}
	for _, stage := range entity.StagesDescending {
		stats.ByStage[stage] = 0
	}

	query := `
		SELECT COUNT(*), COALESCE(AVG(lead_score), 0), COALESCE(MIN(lead_score), 0), COALESCE(MAX(lead_score), 0)
		FROM leads
	`
	err := r.DB.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.AverageScore, &stats.MinScore, &stats.MaxScore)
	if err != nil {
		return nil, fmt.Errorf("score stats: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT lead_stage, COUNT(*) FROM leads WHERE lead_stage IS NOT NULL GROUP BY lead_stage`)
	if err != nil {
		return nil, fmt.Errorf("stage histogram: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stage string
		var count int
		if err := rows.Scan(&stage, &count); err != nil {
			return nil, err
		}
		stats.ByStage[entity.Stage(stage)] = count
	}
	return stats, rows.Err()
}

func applyLeadFilter(b sq.SelectBuilder, f entity.LeadFilter) sq.SelectBuilder {
	if f.Email != "" {
		b = b.Where(sq.Eq{"email": f.Email})
	}
	if f.Stage != "" {
		b = b.Where(sq.Eq{"lead_stage": string(f.Stage)})
	}
	if f.CompanyDomain != "" {
		b = b.Where(sq.Eq{"domain": f.CompanyDomain})
	}
	if len(f.Emails) > 0 {
		b = b.Where("email = ANY(?)", pq.Array(f.Emails))
	}
	if f.Tag != "" {
		b = b.Where("? = ANY(tags)", f.Tag)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		b = b.Where(sq.Or{
			sq.ILike{"first_name": pattern},
			sq.ILike{"last_name": pattern},
			sq.ILike{"email": pattern},
			sq.ILike{"domain": pattern},
			sq.Expr("EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE t ILIKE ?)", pattern),
		})
	}
	return b
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var firstName, lastName, jobTitle, crmOwner, stage sql.NullString
	var sessions sql.NullInt64
	var tags pq.StringArray

	err := row.Scan(
		&lead.Email,
		&lead.CompanyDomain,
		&firstName,
		&lastName,
		&jobTitle,
		&sessions,
		&lead.IsFreeEmail,
		&lead.EmailStatus,
		&crmOwner,
		&tags,
		&lead.Score,
		&stage,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.FirstName = firstName.String
	lead.LastName = lastName.String
	lead.CRMOwner = crmOwner.String
	lead.Stage = entity.Stage(stage.String)
	lead.Tags = []string(tags)
	if jobTitle.Valid {
		lead.JobTitle = &jobTitle.String
	}
	if sessions.Valid {
		n := int(sessions.Int64)
		lead.SessionCount = &n
	}
	return &lead, nil
}

func leadArgs(lead *entity.Lead) []any {
	var sessions *int64
	if lead.SessionCount != nil {
		n := int64(*lead.SessionCount)
		sessions = &n
	}
	tags := lead.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{
		lead.Email,
		lead.CompanyDomain,
		nullString(lead.FirstName),
		nullString(lead.LastName),
		lead.JobTitle,
		sessions,
		lead.IsFreeEmail,
		lead.EmailStatus,
		nullString(lead.CRMOwner),
		pq.Array(tags),
		lead.Score,
		nullString(string(lead.Stage)),
	}
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
