package entity

import (
	"context"
	"strings"
	"time"
)

const (
	EmailStatusActive       = "active"
	EmailStatusBounced      = "bounced"
	EmailStatusUnsubscribed = "unsubscribed"
)

// Lead is a contact keyed by email. Score and Stage are derived on every save.
type Lead struct {
	Email         string    `json:"email"`
	CompanyDomain string    `json:"company_domain"`
	FirstName     string    `json:"first_name,omitempty"`
	LastName      string    `json:"last_name,omitempty"`
	JobTitle      *string   `json:"job_title,omitempty"`
	SessionCount  *int      `json:"session_count,omitempty"`
	IsFreeEmail   bool      `json:"is_free_email"`
	EmailStatus   string    `json:"email_status"`
	CRMOwner      string    `json:"crm_owner,omitempty"`
	Tags          []string  `json:"tags"`
	Score         int       `json:"score"`
	Stage         Stage     `json:"stage"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// DisplayName falls back to the email when no name is known.
func (l *Lead) DisplayName() string {
	if name := l.FullName(); name != "" {
		return name
	}
	return l.Email
}

func (l *Lead) HasTag(tag string) bool {
	for _, t := range l.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// LeadFilter narrows lead queries. Filters are applied email, stage, then limit.
type LeadFilter struct {
	Email         string
	Stage         Stage
	CompanyDomain string
	Search        string
	Tag           string
	Emails        []string
	Limit         int
}

// ScoreStats aggregates scores over every stored lead.
type ScoreStats struct {
	Total        int           `json:"total"`
	AverageScore float64       `json:"average_score"`
	MinScore     int           `json:"min_score"`
	MaxScore     int           `json:"max_score"`
	ByStage      map[Stage]int `json:"by_stage"`
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	Save(ctx context.Context, lead *Lead) error
	FindByEmail(ctx context.Context, email string) (*Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	AverageScore(ctx context.Context, filter LeadFilter) (*float64, error)
	Delete(ctx context.Context, email string) error
	UpdateScore(ctx context.Context, email string, score int, stage Stage, isFreeEmail bool) error
	AddTag(ctx context.Context, emails []string, tag string) (int, error)
	EmailsByCompany(ctx context.Context, domain string) ([]string, error)
	Stats(ctx context.Context) (*ScoreStats, error)
}
