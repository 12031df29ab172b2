package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"shopify-store-builder/internal/domain"
	"shopify-store-builder/internal/domain/model"
	"shopify-store-builder/internal/domain/ports/adapter"
	"shopify-store-builder/internal/domain/ports/repository"
	aiAdapters "shopify-store-builder/internal/infra/adapters/ai"
	imgAdapters "shopify-store-builder/internal/infra/adapters/image"
	"shopify-store-builder/internal/infra/catalog"
	"shopify-store-builder/internal/usecase"
)

// Runs the store creation workflow end to end on in-memory collaborators
// and prints the progress trail. No Postgres, Redis or external APIs.

type memJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*model.StoreCreationJob
}

func (r *memJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.StoreCreationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

func (r *memJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.StoreCreationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		return j, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memJobRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.StoreCreationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.StoreCreationJob
	for _, j := range r.jobs {
		if j.UserID == userID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (r *memJobRepo) FetchAndMarkRunning(ctx context.Context) (*model.StoreCreationJob, error) {
	return nil, domain.ErrNotFound
}

type demoStoreAPI struct {
	products int
}

func (s *demoStoreAPI) CreateStore(ctx context.Context, name, ownerID string, creds *model.StoreCredentials) (string, error) {
	return "demo-store-1", nil
}

func (s *demoStoreAPI) CreateProduct(ctx context.Context, storeID string, p adapter.ProductPayload) (string, error) {
	s.products++
	return fmt.Sprintf("demo-product-%d", s.products), nil
}

func (s *demoStoreAPI) UploadProductImage(ctx context.Context, storeID, productID, imageURL, altText string) error {
	return nil
}

func (s *demoStoreAPI) ApplyColorScheme(ctx context.Context, storeID string, scheme *model.ColorScheme) error {
	return nil
}

func (s *demoStoreAPI) ActivateStore(ctx context.Context, storeID string) error {
	return nil
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cat, err := catalog.NewJSONCatalog("data/products.json")
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	logger := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	uc := usecase.NewStoreCreationUseCase(
		&memJobRepo{jobs: map[string]*model.StoreCreationJob{}},
		cat,
		aiAdapters.NewNoopTextAdapter(),
		imgAdapters.NewPlaceholderGenerator(),
		&demoStoreAPI{},
		&logger,
	)

	result, err := uc.Execute(ctx, &model.StoreCreationInput{
		UserID:           "demo-user",
		StoreName:        "Pet Paradise",
		NicheDescription: "Products for dog and cat owners",
	})
	if err != nil {
		log.Fatalf("workflow: %v", err)
	}

	fmt.Printf("success=%v jobId=%s storeId=%s\n", result.Success, result.JobID, result.StoreID)
	for _, e := range result.Progress {
		fmt.Printf("  %3d%%  %-17s %-9s %s\n", e.Progress, e.Step, e.Status, e.Message)
	}
	for _, o := range result.ProductOutcomes {
		fmt.Printf("  product[%d] %q success=%v image=%v\n", o.Index, o.Title, o.Success, o.ImageGenerated)
	}
}
