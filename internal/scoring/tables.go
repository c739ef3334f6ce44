package scoring

import "github.com/xavierca1/ligue-leads/internal/entity"

// freeEmailDomains are consumer webmail providers.
var freeEmailDomains = map[string]struct{}{
	"gmail.com":      {},
	"yahoo.com":      {},
	"hotmail.com":    {},
	"outlook.com":    {},
	"aol.com":        {},
	"mail.com":       {},
	"yandex.com":     {},
	"protonmail.com": {},
	"icloud.com":     {},
	"mail.ru":        {},
	"qq.com":         {},
	"163.com":        {},
	"gmx.com":        {},
	"web.de":         {},
	"live.com":       {},
	"msn.com":        {},
	"inbox.com":      {},
	"zoho.com":       {},
	"fastmail.com":   {},
	"tutanota.com":   {},
	"hotmail.co.uk":  {},
	"yahoo.co.uk":    {},
	"myyahoo.com":    {},
}

const gmailDomain = "gmail.com"

type titleTier struct {
	keywords []string
	points   int
}

// Evaluated in order; the first tier with a keyword contained in the title
// wins, so "director" lands in the cto tier.
var jobTitleTiers = []titleTier{
	{keywords: []string{"ciso", "chief information"}, points: 20},
	{keywords: []string{"cto", "chief technology"}, points: 20},
	{keywords: []string{"vp ", "vice president"}, points: 15},
	{keywords: []string{"director"}, points: 15},
	{keywords: []string{"manager"}, points: 10},
	{keywords: []string{"senior"}, points: 8},
	{keywords: []string{"engineer", "developer", "analyst", "specialist"}, points: 5},
}

type stageBand struct {
	min   int
	stage entity.Stage
}

// Evaluated from the highest band down.
var stageBands = []stageBand{
	{min: 80, stage: entity.StageEnterprise},
	{min: 60, stage: entity.StageVeryHigh},
	{min: 40, stage: entity.StageHigh},
	{min: 20, stage: entity.StageMedium},
}

const (
	sessionCap           = 50
	tenureSessions       = 60
	tenureBonus          = 25
	teamAdoptionMinUsers = 2
	teamAdoptionBonus    = 30
	gmailQualifiedBonus  = 5
	corporateDomainBonus = 30
	freeEmailPenalty     = 10
	minScore             = 0
	maxScore             = 100
)
