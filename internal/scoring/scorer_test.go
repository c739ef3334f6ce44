package scoring_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/scoring"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

type MockPeerFinder struct {
	mock.Mock
}

func (m *MockPeerFinder) EmailsByCompany(ctx context.Context, domain string) ([]string, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestIsFreeEmail(t *testing.T) {
	cases := map[string]bool{
		"a@gmail.com":         true,
		"a@YAHOO.com":         true,
		"a@hotmail.co.uk":     true,
		"a@163.com":           true,
		"a@acme.com":          false,
		"a@mail.google.com":   false,
		"no-at-sign":          false,
		"a@":                  false,
		"":                    false,
		"  b@myyahoo.com  ":   true,
		"a@gmail.com.evil.io": false,
	}
	for email, want := range cases {
		assert.Equal(t, want, scoring.IsFreeEmail(email), email)
	}
}

func TestExtractDomain(t *testing.T) {
	assert.Equal(t, "acme.com", scoring.ExtractDomain("Jane@Acme.COM"))
	assert.Equal(t, "", scoring.ExtractDomain("jane"))
	assert.Equal(t, "", scoring.ExtractDomain("jane@"))
	assert.Equal(t, "", scoring.ExtractDomain("a@b@c.com"))
}

func TestJobTitleScoreTiers(t *testing.T) {
	cases := []struct {
		title string
		want  int
	}{
		{"CISO", 20},
		{"Chief Information Security Officer", 20},
		{"CTO", 20},
		{"Chief Technology Officer", 20},
		{"VP of Sales", 15},
		{"Vice President, Engineering", 15},
		{"Director of Marketing", 20},
		{"Product Manager", 10},
		{"Senior Accountant", 8},
		{"Software Engineer", 5},
		{"Web Developer", 5},
		{"Data Analyst", 5},
		{"Support Specialist", 5},
		{"Intern", 0},
		{"", 0},
		{"   ", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, scoring.JobTitleScore(tc.title), tc.title)
	}
}

func TestJobTitleScoreFirstMatchWins(t *testing.T) {
	assert.Equal(t, 20, scoring.JobTitleScore("Senior Director of Engineering"))
	assert.Equal(t, 10, scoring.JobTitleScore("Senior Engineering Manager"))
	assert.Equal(t, 20, scoring.JobTitleScore("CTO & Director"))
	assert.Equal(t, 20, scoring.JobTitleScore("Co-CTO"))
	// "vp" without the trailing space is not the VP tier
	assert.Equal(t, 0, scoring.JobTitleScore("vpn admin"))
}

func TestJobTitleScoreMatchesAcronymsInsideWords(t *testing.T) {
	assert.Equal(t, 20, scoring.JobTitleScore("Director"))
	assert.Equal(t, 20, scoring.JobTitleScore("Doctor of Medicine"))
	assert.Equal(t, 20, scoring.JobTitleScore("Cisoft reseller"))
	assert.Equal(t, 20, scoring.JobTitleScore("Acting CISO (interim)"))
}

func TestScoreDirectorCrossesIntoEnterprise(t *testing.T) {
	lead := &entity.Lead{Email: "a@acme.com", SessionCount: intPtr(30), JobTitle: strPtr("Director of Marketing")}

	res := scoring.Score(lead, nil)

	assert.Equal(t, 80, res.Score)
	assert.Equal(t, entity.StageEnterprise, res.Stage)
}

func TestStageForScoreBands(t *testing.T) {
	cases := []struct {
		score int
		want  entity.Stage
	}{
		{0, entity.StageLow},
		{19, entity.StageLow},
		{20, entity.StageMedium},
		{39, entity.StageMedium},
		{40, entity.StageHigh},
		{59, entity.StageHigh},
		{60, entity.StageVeryHigh},
		{79, entity.StageVeryHigh},
		{80, entity.StageEnterprise},
		{100, entity.StageEnterprise},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, scoring.StageForScore(tc.score), "score %d", tc.score)
	}
}

func TestStageForScoreIsMonotonic(t *testing.T) {
	prev := entity.StageLow.Rank()
	for s := 0; s <= 100; s++ {
		rank := scoring.StageForScore(s).Rank()
		assert.GreaterOrEqual(t, rank, prev, "score %d", s)
		prev = rank
	}
}

func TestScoreEmptyFreeNonGmailLeadClampsToZero(t *testing.T) {
	res := scoring.Score(&entity.Lead{Email: "a@yahoo.com"}, nil)

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, entity.StageLow, res.Stage)
	assert.Equal(t, []scoring.Signal{{Name: scoring.SignalFreeEmail, Points: -10}}, res.Signals)
}

func TestScoreSeniorDirectorCorporateClampsToHundred(t *testing.T) {
	lead := &entity.Lead{
		Email:        "jane@acme.com",
		SessionCount: intPtr(70),
		JobTitle:     strPtr("Senior Director of Engineering"),
	}

	res := scoring.Score(lead, nil)

	assert.Equal(t, 100, res.Score)
	assert.Equal(t, entity.StageEnterprise, res.Stage)
	assert.Equal(t, []scoring.Signal{
		{Name: scoring.SignalSessions, Points: 50},
		{Name: scoring.SignalTenure, Points: 25},
		{Name: scoring.SignalJobTitle, Points: 20},
		{Name: scoring.SignalCorporateDomain, Points: 30},
	}, res.Signals)
}

func TestScoreNilLeadIsLow(t *testing.T) {
	assert.Equal(t, scoring.Result{Stage: entity.StageLow}, scoring.Score(nil, nil))
	assert.Equal(t, scoring.Result{Stage: entity.StageLow}, scoring.NewScorer(nil).Score(context.Background(), nil))
}

func TestScoreCorporateOnly(t *testing.T) {
	res := scoring.Score(&entity.Lead{Email: "bob@acme.com"}, nil)
	assert.Equal(t, 30, res.Score)
	assert.Equal(t, entity.StageMedium, res.Stage)
}

func TestScoreSessionsBelowTenure(t *testing.T) {
	res := scoring.Score(&entity.Lead{Email: "bob@acme.com", SessionCount: intPtr(59)}, nil)
	// 50 cap + 30 corporate, no tenure bonus
	assert.Equal(t, 80, res.Score)

	res = scoring.Score(&entity.Lead{Email: "bob@acme.com", SessionCount: intPtr(12)}, nil)
	assert.Equal(t, 42, res.Score)
	assert.Equal(t, entity.StageHigh, res.Stage)
}

func TestScoreTeamAdoptionNeedsTwoCorporateAddresses(t *testing.T) {
	lead := &entity.Lead{Email: "a@acme.com", CompanyDomain: "acme.com"}

	res := scoring.Score(lead, []string{"a@acme.com"})
	assert.Equal(t, 30, res.Score, "the lead alone is not a team")

	res = scoring.Score(lead, []string{"a@acme.com", "b@acme.com"})
	assert.Equal(t, 60, res.Score)
	assert.Equal(t, entity.StageVeryHigh, res.Stage)

	// the lead itself counts even when not yet stored
	res = scoring.Score(lead, []string{"b@acme.com"})
	assert.Equal(t, 60, res.Score)
}

func TestScoreTeamAdoptionIgnoresFreeEmailAndOtherDomains(t *testing.T) {
	lead := &entity.Lead{Email: "a@acme.com", CompanyDomain: "acme.com"}
	peers := []string{"a@acme.com", "acme.team@gmail.com", "x@acme.co.uk", "a@acme.com"}

	res := scoring.Score(lead, peers)

	assert.Equal(t, 30, res.Score)
	assert.Equal(t, 1, scoring.TeamAdoptionCount(lead.Email, peers))
}

func TestScoreTeamAdoptionNeverForFreeEmailLead(t *testing.T) {
	lead := &entity.Lead{Email: "a@gmail.com"}
	assert.Equal(t, 0, scoring.TeamAdoptionCount(lead.Email, []string{"b@gmail.com", "c@gmail.com"}))

	res := scoring.Score(lead, []string{"b@gmail.com", "c@gmail.com"})
	assert.Equal(t, 0, res.Score)
}

func TestScoreGmailBumpRequiresPriorSignals(t *testing.T) {
	res := scoring.Score(&entity.Lead{Email: "a@gmail.com"}, nil)
	assert.Equal(t, 0, res.Score)
	assert.Empty(t, res.Signals)

	res = scoring.Score(&entity.Lead{Email: "a@gmail.com", SessionCount: intPtr(0)}, nil)
	assert.Equal(t, 0, res.Score)

	res = scoring.Score(&entity.Lead{Email: "a@gmail.com", SessionCount: intPtr(1)}, nil)
	assert.Equal(t, 6, res.Score)

	res = scoring.Score(&entity.Lead{Email: "a@gmail.com", JobTitle: strPtr("Product Manager")}, nil)
	assert.Equal(t, 15, res.Score)
}

func TestScoreFreeNonGmailPenalty(t *testing.T) {
	res := scoring.Score(&entity.Lead{Email: "a@outlook.com", SessionCount: intPtr(25)}, nil)
	assert.Equal(t, 15, res.Score)
	assert.Equal(t, entity.StageLow, res.Stage)
}

func TestScoreMalformedEmailHasNoDomainSignals(t *testing.T) {
	res := scoring.Score(&entity.Lead{Email: "not-an-email", SessionCount: intPtr(10)}, []string{"x@acme.com"})
	assert.Equal(t, 10, res.Score)
	assert.Equal(t, []scoring.Signal{{Name: scoring.SignalSessions, Points: 10}}, res.Signals)
}

func TestScoreIsAlwaysClamped(t *testing.T) {
	titles := []string{"", "CISO", "intern", "Senior Director"}
	emails := []string{"a@yahoo.com", "a@gmail.com", "a@acme.com", "bad"}
	for _, email := range emails {
		for _, title := range titles {
			for sessions := 0; sessions <= 200; sessions += 7 {
				lead := &entity.Lead{Email: email, JobTitle: strPtr(title), SessionCount: intPtr(sessions)}
				res := scoring.Score(lead, []string{"b@acme.com", "c@acme.com"})
				assert.GreaterOrEqual(t, res.Score, 0)
				assert.LessOrEqual(t, res.Score, 100)
				assert.Equal(t, scoring.StageForScore(res.Score), res.Stage)
			}
		}
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	lead := &entity.Lead{Email: "a@acme.com", SessionCount: intPtr(33), JobTitle: strPtr("Engineer")}
	peers := []string{"b@acme.com", "c@gmail.com"}

	first := scoring.Score(lead, peers)
	second := scoring.Score(lead, peers)

	assert.Equal(t, first, second)
}

func TestScorerUsesPeersFromCompanyDomain(t *testing.T) {
	ctx := context.Background()
	finder := new(MockPeerFinder)
	finder.On("EmailsByCompany", ctx, "acme.com").Return([]string{"a@acme.com", "b@acme.com"}, nil)

	res := scoring.NewScorer(finder).Score(ctx, &entity.Lead{Email: "a@acme.com", CompanyDomain: "acme.com"})

	assert.Equal(t, 60, res.Score)
	assert.False(t, res.PeerLookupFailed)
	finder.AssertExpectations(t)
}

func TestScorerFallsBackToEmailDomain(t *testing.T) {
	ctx := context.Background()
	finder := new(MockPeerFinder)
	finder.On("EmailsByCompany", ctx, "acme.com").Return([]string{}, nil)

	res := scoring.NewScorer(finder).Score(ctx, &entity.Lead{Email: "a@ACME.com"})

	require.Equal(t, 30, res.Score)
	finder.AssertExpectations(t)
}

func TestScorerPeerLookupFailureDropsOnlyAdoption(t *testing.T) {
	ctx := context.Background()
	finder := new(MockPeerFinder)
	finder.On("EmailsByCompany", ctx, "acme.com").Return(nil, errors.New("connection refused"))

	lead := &entity.Lead{Email: "a@acme.com", CompanyDomain: "acme.com", JobTitle: strPtr("CTO")}
	res := scoring.NewScorer(finder).Score(ctx, lead)

	assert.Equal(t, 50, res.Score)
	assert.Equal(t, entity.StageHigh, res.Stage)
	assert.True(t, res.PeerLookupFailed)
}

func TestScorerWithoutFinder(t *testing.T) {
	res := scoring.NewScorer(nil).Score(context.Background(), &entity.Lead{Email: "a@acme.com"})
	assert.Equal(t, 30, res.Score)
}
