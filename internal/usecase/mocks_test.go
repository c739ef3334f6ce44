package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockLeadRepository) Save(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockLeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) AverageScore(ctx context.Context, filter entity.LeadFilter) (*float64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}

func (m *MockLeadRepository) Delete(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockLeadRepository) UpdateScore(ctx context.Context, email string, score int, stage entity.Stage, isFreeEmail bool) error {
	return m.Called(ctx, email, score, stage, isFreeEmail).Error(0)
}

func (m *MockLeadRepository) AddTag(ctx context.Context, emails []string, tag string) (int, error) {
	args := m.Called(ctx, emails, tag)
	return args.Int(0), args.Error(1)
}

func (m *MockLeadRepository) EmailsByCompany(ctx context.Context, domain string) ([]string, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockLeadRepository) Stats(ctx context.Context) (*entity.ScoreStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ScoreStats), args.Error(1)
}

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Create(ctx context.Context, c *entity.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCompanyRepository) EnsureExists(ctx context.Context, domain string) error {
	return m.Called(ctx, domain).Error(0)
}

func (m *MockCompanyRepository) FindByDomain(ctx context.Context, domain string) (*entity.Company, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Company), args.Error(1)
}

func (m *MockCompanyRepository) List(ctx context.Context, search string) ([]*entity.Company, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Company), args.Error(1)
}

func (m *MockCompanyRepository) Update(ctx context.Context, c *entity.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, domain string) error {
	return m.Called(ctx, domain).Error(0)
}

type MockAlertSender struct {
	mock.Mock
}

func (m *MockAlertSender) SendEnterpriseAlert(to string, lead *entity.Lead) error {
	return m.Called(to, lead).Error(0)
}

type MockRunLock struct {
	mock.Mock
}

func (m *MockRunLock) Acquire(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockRunLock) Release(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishSync(ctx context.Context, payload queue.SyncPayload) error {
	return m.Called(ctx, payload).Error(0)
}

type fakeRecorder struct {
	scored       []entity.Stage
	peerFailures int
	runs         []string
}

func (f *fakeRecorder) RecordLeadScored(stage entity.Stage) { f.scored = append(f.scored, stage) }
func (f *fakeRecorder) RecordPeerLookupFailure()            { f.peerFailures++ }
func (f *fakeRecorder) RecordRecalculation(result string)   { f.runs = append(f.runs, result) }

// memLeadRepo keeps leads in memory for multi-step scenarios.
type memLeadRepo struct {
	entity.LeadRepositoryInterface

	mu    sync.Mutex
	leads map[string]*entity.Lead
}

func newMemLeadRepo(leads ...*entity.Lead) *memLeadRepo {
	r := &memLeadRepo{leads: make(map[string]*entity.Lead)}
	for _, l := range leads {
		r.leads[l.Email] = l
	}
	return r
}

func (r *memLeadRepo) List(_ context.Context, f entity.LeadFilter) ([]*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	emails := make([]string, 0, len(r.leads))
	for email := range r.leads {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	var out []*entity.Lead
	for _, email := range emails {
		l := r.leads[email]
		if f.Email != "" && l.Email != f.Email {
			continue
		}
		if f.Stage != "" && l.Stage != f.Stage {
			continue
		}
		cp := *l
		out = append(out, &cp)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (r *memLeadRepo) UpdateScore(_ context.Context, email string, score int, stage entity.Stage, isFree bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.leads[email]
	if !ok {
		return entity.ErrLeadNotFound
	}
	l.Score, l.Stage, l.IsFreeEmail = score, stage, isFree
	return nil
}

func (r *memLeadRepo) EmailsByCompany(_ context.Context, domain string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, l := range r.leads {
		if l.CompanyDomain == domain {
			out = append(out, l.Email)
		}
	}
	return out, nil
}

func (r *memLeadRepo) Stats(_ context.Context) (*entity.ScoreStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &entity.ScoreStats{ByStage: map[entity.Stage]int{}, MinScore: 100}
	sum := 0
	for _, l := range r.leads {
		stats.Total++
		sum += l.Score
		stats.MinScore = min(stats.MinScore, l.Score)
		stats.MaxScore = max(stats.MaxScore, l.Score)
		stats.ByStage[l.Stage]++
	}
	if stats.Total > 0 {
		stats.AverageScore = float64(sum) / float64(stats.Total)
	} else {
		stats.MinScore = 0
	}
	return stats, nil
}

func (r *memLeadRepo) stored(email string) entity.Lead {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.leads[email]
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }
