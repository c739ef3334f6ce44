// Package scoring turns a lead's engagement, title and email domain into a
// 0-100 priority score and a stage.
package scoring

import (
	"context"
	"log"
	"strings"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

const (
	SignalSessions        = "sessions"
	SignalTenure          = "tenure"
	SignalTeamAdoption    = "team_adoption"
	SignalJobTitle        = "job_title"
	SignalGmailQualified  = "gmail_qualified"
	SignalCorporateDomain = "corporate_domain"
	SignalFreeEmail       = "free_email_penalty"
)

// Signal is one additive contribution to a score, before clamping.
type Signal struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type Result struct {
	Score            int          `json:"score"`
	Stage            entity.Stage `json:"stage"`
	Signals          []Signal     `json:"signals"`
	PeerLookupFailed bool         `json:"peer_lookup_failed,omitempty"`
}

// PeerFinder lists the emails of every lead stored under a company domain.
type PeerFinder interface {
	EmailsByCompany(ctx context.Context, domain string) ([]string, error)
}

// ExtractDomain returns the lower-cased host part of an email, or "" when
// the address has no usable domain.
func ExtractDomain(email string) string {
	_, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok {
		return ""
	}
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" || strings.Contains(domain, "@") {
		return ""
	}
	return domain
}

func IsFreeEmail(email string) bool {
	return isFreeDomain(ExtractDomain(email))
}

func isFreeDomain(domain string) bool {
	_, ok := freeEmailDomains[domain]
	return ok
}

func JobTitleScore(title string) int {
	title = strings.ToLower(title)
	if strings.TrimSpace(title) == "" {
		return 0
	}
	for _, tier := range jobTitleTiers {
		for _, kw := range tier.keywords {
			if strings.Contains(title, kw) {
				return tier.points
			}
		}
	}
	return 0
}

func StageForScore(score int) entity.Stage {
	for _, band := range stageBands {
		if score >= band.min {
			return band.stage
		}
	}
	return entity.StageLow
}

// TeamAdoptionCount counts the distinct non-free addresses sharing the lead's
// exact email domain, the lead's own address included.
func TeamAdoptionCount(email string, peerEmails []string) int {
	domain := ExtractDomain(email)
	if domain == "" || isFreeDomain(domain) {
		return 0
	}
	seen := map[string]struct{}{strings.TrimSpace(email): {}}
	for _, peer := range peerEmails {
		if ExtractDomain(peer) != domain {
			continue
		}
		seen[strings.TrimSpace(peer)] = struct{}{}
	}
	return len(seen)
}

// Score computes a lead's score from its own fields and the emails of the
// leads stored under the same company. A nil lead scores 0 in the low stage.
func Score(lead *entity.Lead, peerEmails []string) Result {
	var res Result
	if lead == nil {
		res.Stage = entity.StageLow
		return res
	}
	score := 0
	add := func(name string, points int) {
		score += points
		res.Signals = append(res.Signals, Signal{Name: name, Points: points})
	}

	sessions := 0
	if lead.SessionCount != nil {
		sessions = *lead.SessionCount
	}
	if sessions > 0 {
		add(SignalSessions, min(sessions, sessionCap))
	}
	if sessions >= tenureSessions {
		add(SignalTenure, tenureBonus)
	}

	if TeamAdoptionCount(lead.Email, peerEmails) >= teamAdoptionMinUsers {
		add(SignalTeamAdoption, teamAdoptionBonus)
	}

	if lead.JobTitle != nil {
		if pts := JobTitleScore(*lead.JobTitle); pts > 0 {
			add(SignalJobTitle, pts)
		}
	}

	// The gmail bump only sees the signals above, never the domain bonus below.
	if domain := ExtractDomain(lead.Email); domain != "" {
		free := isFreeDomain(domain)
		if domain == gmailDomain && score > 0 {
			add(SignalGmailQualified, gmailQualifiedBonus)
		}
		if !free {
			add(SignalCorporateDomain, corporateDomainBonus)
		}
		if free && domain != gmailDomain {
			add(SignalFreeEmail, -freeEmailPenalty)
		}
	}

	res.Score = max(minScore, min(maxScore, score))
	res.Stage = StageForScore(res.Score)
	return res
}

// Scorer scores leads against the peers currently stored for their company.
type Scorer struct {
	Peers PeerFinder
}

func NewScorer(peers PeerFinder) *Scorer {
	return &Scorer{Peers: peers}
}

// Score looks up the lead's company peers and scores it. A failed lookup only
// drops the team adoption signal.
func (s *Scorer) Score(ctx context.Context, lead *entity.Lead) Result {
	if lead == nil {
		return Score(nil, nil)
	}
	var peers []string
	failed := false

	domain := lead.CompanyDomain
	if domain == "" {
		domain = ExtractDomain(lead.Email)
	}

	if s.Peers != nil && domain != "" {
		emails, err := s.Peers.EmailsByCompany(ctx, domain)
		if err != nil {
			log.Printf("⚠️ [SCORING] peer lookup failed for %s: %v", domain, err)
			failed = true
		} else {
			peers = emails
		}
	}

	res := Score(lead, peers)
	res.PeerLookupFailed = failed
	return res
}
