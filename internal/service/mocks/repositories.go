package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hagegesam/fiverr-share-earn/internal/models"
	"github.com/hagegesam/fiverr-share-earn/internal/repository"
)

// MockLinkRepository implements repository.LinkRepository for testing
type MockLinkRepository struct {
	mu          sync.RWMutex
	byCode      map[string]*models.Link
	byURL       map[string]*models.Link
	order       []*models.Link // insertion order, newest appended last
	failCreates int            // pending forced collisions, see FailCreates
}

func NewMockLinkRepository() *MockLinkRepository {
	return &MockLinkRepository{
		byCode: make(map[string]*models.Link),
		byURL:  make(map[string]*models.Link),
	}
}

func (m *MockLinkRepository) Create(ctx context.Context, link *models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCreates > 0 {
		m.failCreates--
		return repository.ErrCodeExists
	}
	if _, exists := m.byCode[link.ShortCode]; exists {
		return repository.ErrCodeExists
	}
	if _, exists := m.byURL[link.TargetURL]; exists {
		return repository.ErrURLExists
	}

	cp := *link
	m.byCode[cp.ShortCode] = &cp
	m.byURL[cp.TargetURL] = &cp
	m.order = append(m.order, &cp)
	return nil
}

func (m *MockLinkRepository) GetByShortCode(ctx context.Context, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.byCode[code]
	if !exists {
		return nil, repository.ErrLinkNotFound
	}
	return link, nil
}

func (m *MockLinkRepository) GetByTargetURL(ctx context.Context, targetURL string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.byURL[targetURL]
	if !exists {
		return nil, repository.ErrLinkNotFound
	}
	return link, nil
}

func (m *MockLinkRepository) List(ctx context.Context, offset, limit int) ([]models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// created_at DESC, like the SQL implementation
	sorted := make([]*models.Link, len(m.order))
	copy(sorted, m.order)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if offset >= len(sorted) {
		return []models.Link{}, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}

	page := make([]models.Link, 0, end-offset)
	for _, link := range sorted[offset:end] {
		page = append(page, *link)
	}
	return page, nil
}

func (m *MockLinkRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.order)), nil
}

func (m *MockLinkRepository) Delete(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, exists := m.byCode[code]
	if !exists {
		return repository.ErrLinkNotFound
	}
	delete(m.byCode, code)
	delete(m.byURL, link.TargetURL)
	for i, l := range m.order {
		if l.ShortCode == code {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// FailCreates makes the next n Create calls report a short code collision.
// Used to exercise the retry loop.
func (m *MockLinkRepository) FailCreates(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCreates = n
}

var _ repository.LinkRepository = (*MockLinkRepository)(nil)

// MockCacheRepository implements repository.CacheRepository for testing
type MockCacheRepository struct {
	mu    sync.RWMutex
	cache map[string]*models.Link
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		cache: make(map[string]*models.Link),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.cache[key]
	if !exists {
		return nil, repository.ErrLinkNotFound
	}
	return link, nil
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, link *models.Link, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[key] = link
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, key)
	return nil
}

var _ repository.CacheRepository = (*MockCacheRepository)(nil)

// MockClickRepository implements repository.ClickRepository for testing
type MockClickRepository struct {
	mu     sync.RWMutex
	clicks map[uuid.UUID][]*models.Click // link_id -> clicks
}

func NewMockClickRepository() *MockClickRepository {
	return &MockClickRepository{
		clicks: make(map[uuid.UUID][]*models.Click),
	}
}

func (m *MockClickRepository) Record(ctx context.Context, click *models.Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *click
	m.clicks[click.LinkID] = append(m.clicks[click.LinkID], &cp)
	return nil
}

func (m *MockClickRepository) CountByLinkID(ctx context.Context, linkID uuid.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.clicks[linkID])), nil
}

func (m *MockClickRepository) MonthlyBreakdown(ctx context.Context, linkID uuid.UUID) ([]models.MonthlyClicks, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, click := range m.clicks[linkID] {
		month := click.ClickedAt.UTC().Format("2006-01")
		counts[month]++
	}

	months := make([]string, 0, len(counts))
	for month := range counts {
		months = append(months, month)
	}
	sort.Strings(months)

	breakdown := make([]models.MonthlyClicks, 0, len(months))
	for _, month := range months {
		breakdown = append(breakdown, models.MonthlyClicks{Month: month, Clicks: counts[month]})
	}
	return breakdown, nil
}

var _ repository.ClickRepository = (*MockClickRepository)(nil)
