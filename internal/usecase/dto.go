package usecase

import (
	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/scoring"
)

// SaveLeadInput carries a create or an update. Nil fields keep the stored
// value on update.
type SaveLeadInput struct {
	Email         string   `json:"email"`
	CompanyDomain string   `json:"company_domain"`
	FirstName     *string  `json:"first_name"`
	LastName      *string  `json:"last_name"`
	JobTitle      *string  `json:"job_title"`
	SessionCount  *int     `json:"session_count"`
	EmailStatus   *string  `json:"email_status"`
	CRMOwner      *string  `json:"crm_owner"`
	Tags          []string `json:"tags"`
}

type LeadOutput struct {
	*entity.Lead
	Name             string           `json:"name"`
	StageLabel       string           `json:"stage_label"`
	Signals          []scoring.Signal `json:"signals,omitempty"`
	PeerLookupFailed bool             `json:"peer_lookup_failed,omitempty"`
}

func newLeadOutput(lead *entity.Lead) LeadOutput {
	return LeadOutput{
		Lead:       lead,
		Name:       lead.DisplayName(),
		StageLabel: lead.Stage.Label(),
	}
}

type ListLeadsInput struct {
	Search  string
	Company string
	Tag     string
	Stage   entity.Stage
}

type ListLeadsOutput struct {
	Leads        []LeadOutput `json:"leads"`
	Count        int          `json:"count"`
	AverageScore *float64     `json:"average_score"`
}

type CompanyInput struct {
	Domain    string `json:"domain"`
	Name      string `json:"name"`
	Industry  string `json:"industry"`
	Size      *int   `json:"size"`
	HQCountry string `json:"hq_country"`
	OrgType   string `json:"org_type"`
}

type CompanyOutput struct {
	*entity.Company
	DisplayName string       `json:"display_name"`
	Leads       []LeadOutput `json:"leads,omitempty"`
}

type RecalculateInput struct {
	Stage string `json:"stage"`
	Email string `json:"email"`
	Limit int    `json:"limit"`
}

type StageCount struct {
	Stage entity.Stage `json:"stage"`
	Label string       `json:"label"`
	Count int          `json:"count"`
}

type StatsOutput struct {
	Total        int          `json:"total"`
	AverageScore float64      `json:"average_score"`
	MinScore     int          `json:"min_score"`
	MaxScore     int          `json:"max_score"`
	Stages       []StageCount `json:"stages"`
}

type RecalculateOutput struct {
	RunID   string      `json:"run_id"`
	Matched int         `json:"matched"`
	Updated int         `json:"updated"`
	Changed int         `json:"changed"`
	Failed  int         `json:"failed"`
	Stats   StatsOutput `json:"stats"`
}

type ApplyTagInput struct {
	Emails []string `json:"emails"`
	Tag    string   `json:"tag"`
}

type ApplyTagOutput struct {
	Tag       string `json:"tag"`
	Requested int    `json:"requested"`
	Tagged    int    `json:"tagged"`
}

type SyncLeadsInput struct {
	Emails []string `json:"emails"`
	Tag    string   `json:"tag"`
	Target string   `json:"target"`
}

type SyncLeadsOutput struct {
	Target  string   `json:"target"`
	Matched int      `json:"matched"`
	Queued  int      `json:"queued"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	JobIDs  []string `json:"job_ids"`
}
