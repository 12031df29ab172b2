package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"shopify-store-builder/internal/domain"
	"shopify-store-builder/internal/domain/model"
	"shopify-store-builder/internal/domain/ports/adapter"
	"shopify-store-builder/internal/domain/ports/repository"
)

// memJobRepo is a small in-memory StoreJobRepository used by unit tests.
type memJobRepo struct {
	mu      sync.Mutex
	store   map[string]*model.StoreCreationJob
	order   []string
	saveErr error // used by tests to simulate save failures
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{store: make(map[string]*model.StoreCreationJob)}
}

func (m *memJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.StoreCreationJob) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[job.ID]; !ok {
		m.order = append(m.order, job.ID)
	}
	cp := *job
	cp.ProgressLog = append([]model.ProgressEntry(nil), job.ProgressLog...)
	cp.ProductOutcomes = append([]model.ProductOutcome(nil), job.ProductOutcomes...)
	m.store[job.ID] = &cp
	return nil
}

func (m *memJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.StoreCreationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.StoreCreationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.StoreCreationJob
	for i := len(m.order) - 1; i >= 0; i-- {
		j := m.store[m.order[i]]
		if j.UserID == userID {
			cp := *j
			out = append(out, &cp)
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memJobRepo) FetchAndMarkRunning(ctx context.Context) (*model.StoreCreationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		j := m.store[id]
		if j.Queued && j.DeploymentStatus == model.DeploymentPending {
			j.Queued = false
			cp := *j
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// fakeText is a TextGenerator with overridable behavior per test.
type fakeText struct {
	analyzeErr error
	analysis   *model.NicheAnalysis
	schemeErr  error
	scheme     *model.ColorScheme
	analyzed   int
}

func (f *fakeText) AnalyzeNiche(ctx context.Context, description string) (*model.NicheAnalysis, error) {
	f.analyzed++
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	if f.analysis != nil {
		return f.analysis, nil
	}
	return &model.NicheAnalysis{NicheName: "pets", MarketOpportunity: 8, CompetitionLevel: 4}, nil
}

func (f *fakeText) RecommendColorScheme(ctx context.Context, niche, personality string) (*model.ColorScheme, error) {
	if f.schemeErr != nil {
		return nil, f.schemeErr
	}
	if f.scheme != nil {
		return f.scheme, nil
	}
	return &model.ColorScheme{PrimaryColor: "#1a2b3c", SecondaryColor: "#ffffff", AccentColors: []string{"#ff6600"}}, nil
}

type fakeImages struct {
	err   error
	calls int
}

func (f *fakeImages) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("https://img.test/%d.png", f.calls), nil
}

// fakeStoreAPI records calls and lets tests inject per-call failures.
type fakeStoreAPI struct {
	mu sync.Mutex

	createStoreErr  error
	themeErr        error
	productErrAt    int // 1-based index of CreateProduct call to fail; 0 = never
	uploadErr       error
	activateErr     error
	storesCreated   int
	products        []adapter.ProductPayload
	uploads         int
	themesApplied   int
	storesActivated int
	productCalls    int
}

func (f *fakeStoreAPI) CreateStore(ctx context.Context, name, ownerID string, creds *model.StoreCredentials) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createStoreErr != nil {
		return "", f.createStoreErr
	}
	f.storesCreated++
	return fmt.Sprintf("store-%d", f.storesCreated), nil
}

func (f *fakeStoreAPI) CreateProduct(ctx context.Context, storeID string, p adapter.ProductPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.productCalls++
	if f.productErrAt != 0 && f.productCalls == f.productErrAt {
		return "", errors.New("shopify rejected the product")
	}
	f.products = append(f.products, p)
	return fmt.Sprintf("prod-%d", f.productCalls), nil
}

func (f *fakeStoreAPI) UploadProductImage(ctx context.Context, storeID, productID, imageURL, altText string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads++
	return nil
}

func (f *fakeStoreAPI) ApplyColorScheme(ctx context.Context, storeID string, scheme *model.ColorScheme) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.themeErr != nil {
		return f.themeErr
	}
	f.themesApplied++
	return nil
}

func (f *fakeStoreAPI) ActivateStore(ctx context.Context, storeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activateErr != nil {
		return f.activateErr
	}
	f.storesActivated++
	return nil
}

type fakeCatalog struct {
	products map[string][]model.Product
	err      error
}

func (f *fakeCatalog) ProductsForNiche(ctx context.Context, niche string) ([]model.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products[niche], nil
}
