package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"shopify-store-builder/internal/domain"
	"shopify-store-builder/internal/domain/model"
	"shopify-store-builder/internal/domain/ports/adapter"
	"shopify-store-builder/internal/domain/ports/repository"
)

// Compile-time check
var _ StoreCreationUseCase = (*storeCreationUC)(nil)

// StoreCreationUseCase drives one store-creation attempt through its five
// stages and exposes cheap progress polling for clients that cannot hold a
// connection for the whole run.
type StoreCreationUseCase interface {
	// Execute runs a store-creation attempt to completion. It returns an
	// error only for invalid input, before any job row exists; every other
	// outcome is reported inside the WorkflowResult.
	Execute(ctx context.Context, input *model.StoreCreationInput) (*model.WorkflowResult, error)

	// Enqueue validates the input and persists a queued job for the worker
	// to pick up, returning the job ID immediately.
	Enqueue(ctx context.Context, input *model.StoreCreationInput) (jobID string, err error)

	// ExecuteJob runs a previously enqueued job. Used by the worker.
	ExecuteJob(ctx context.Context, job *model.StoreCreationJob) (*model.WorkflowResult, error)

	// GetProgress returns the persisted progress trail for a job. Unknown
	// IDs yield an empty slice, not an error.
	GetProgress(ctx context.Context, jobID string) ([]model.ProgressEntry, error)

	// GetJob returns the full job record, or domain.ErrNotFound.
	GetJob(ctx context.Context, jobID string) (*model.StoreCreationJob, error)

	// ListJobs returns a user's jobs, newest first.
	ListJobs(ctx context.Context, userID string, offset, limit int) ([]*model.StoreCreationJob, error)
}

type storeCreationUC struct {
	jobs    repository.StoreJobRepository
	catalog repository.ProductCatalog
	text    adapter.TextGenerator
	images  adapter.ImageGenerator
	store   adapter.StoreAPI
	log     *zerolog.Logger
}

func NewStoreCreationUseCase(
	jobs repository.StoreJobRepository,
	catalog repository.ProductCatalog,
	text adapter.TextGenerator,
	images adapter.ImageGenerator,
	store adapter.StoreAPI,
	log *zerolog.Logger,
) *storeCreationUC {
	return &storeCreationUC{jobs: jobs, catalog: catalog, text: text, images: images, store: store, log: log}
}

func (uc *storeCreationUC) Execute(ctx context.Context, input *model.StoreCreationInput) (*model.WorkflowResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	job := uc.newJob(input, false)
	if err := uc.jobs.Save(ctx, nil, job); err != nil {
		return nil, fmt.Errorf("create store creation job: %w", err)
	}
	return uc.run(ctx, job, input), nil
}

func (uc *storeCreationUC) Enqueue(ctx context.Context, input *model.StoreCreationInput) (string, error) {
	if err := input.Validate(); err != nil {
		return "", err
	}
	job := uc.newJob(input, true)
	job.Input = input
	if err := uc.jobs.Save(ctx, nil, job); err != nil {
		return "", fmt.Errorf("enqueue store creation job: %w", err)
	}
	uc.log.Info().Str("job_id", job.ID).Str("user_id", job.UserID).Msg("store creation job enqueued")
	return job.ID, nil
}

func (uc *storeCreationUC) ExecuteJob(ctx context.Context, job *model.StoreCreationJob) (*model.WorkflowResult, error) {
	if job.Input == nil {
		return nil, fmt.Errorf("%w: job %s has no input snapshot", domain.ErrInvalidArgument, job.ID)
	}
	if job.Terminal() {
		return nil, fmt.Errorf("%w: job %s already finished", domain.ErrInvalidArgument, job.ID)
	}
	return uc.run(ctx, job, job.Input), nil
}

func (uc *storeCreationUC) GetProgress(ctx context.Context, jobID string) ([]model.ProgressEntry, error) {
	job, err := uc.jobs.FindByID(ctx, nil, jobID)
	if errors.Is(err, domain.ErrNotFound) {
		return []model.ProgressEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(job.ProgressLog) > 0 {
		return job.ProgressLog, nil
	}
	// Rows written before progress logs were persisted only carry the
	// coarse deployment status.
	switch job.DeploymentStatus {
	case model.DeploymentPending:
		return []model.ProgressEntry{{Step: "initializing", Status: model.StepPending, Progress: 0}}, nil
	case model.DeploymentDeploying:
		return []model.ProgressEntry{{Step: "deploying", Status: model.StepRunning, Progress: 50}}, nil
	case model.DeploymentLive:
		return []model.ProgressEntry{{Step: "completed", Status: model.StepCompleted, Progress: 100}}, nil
	case model.DeploymentFailed:
		return []model.ProgressEntry{{Step: "failed", Status: model.StepFailed, Progress: 0}}, nil
	}
	return []model.ProgressEntry{}, nil
}

func (uc *storeCreationUC) GetJob(ctx context.Context, jobID string) (*model.StoreCreationJob, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, domain.ErrInvalidArgument
	}
	return uc.jobs.FindByID(ctx, nil, jobID)
}

func (uc *storeCreationUC) ListJobs(ctx context.Context, userID string, offset, limit int) ([]*model.StoreCreationJob, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidArgument
	}
	return uc.jobs.FindByUser(ctx, nil, userID, offset, limit)
}

func (uc *storeCreationUC) newJob(input *model.StoreCreationInput, queued bool) *model.StoreCreationJob {
	job := &model.StoreCreationJob{
		ID:               ulid.Make().String(),
		UserID:           input.UserID,
		StoreName:        input.StoreName,
		DeploymentStatus: model.DeploymentPending,
		Queued:           queued,
		CreatedAt:        time.Now(),
	}
	if input.SelectedNiche != "" {
		job.NicheData = &model.NicheAnalysis{NicheName: input.SelectedNiche}
	}
	if input.SelectedColorScheme != nil {
		job.ColorScheme = input.SelectedColorScheme
	}
	if len(input.Products) > 0 {
		job.ProductsData = input.Products
	}
	return job
}

// run executes stages 1-5 against an already persisted job. It never
// returns an error: every failure path ends in a well-formed result with
// the job marked failed.
func (uc *storeCreationUC) run(ctx context.Context, job *model.StoreCreationJob, input *model.StoreCreationInput) *model.WorkflowResult {
	log := uc.log.With().Str("job_id", job.ID).Str("user_id", job.UserID).Logger()
	start := time.Now()

	// Stage 1: niche resolution
	niche := input.SelectedNiche
	switch {
	case niche != "":
		uc.progress(ctx, job, model.ProgressEntry{
			Step: model.StepNicheSelection, Status: model.StepCompleted, Progress: 20,
			Message: fmt.Sprintf("Using provided niche: %s", niche),
		})
	case input.NicheDescription != "":
		if err := ctx.Err(); err != nil {
			return uc.fail(job, &log, domain.NewStageError(model.StepNicheSelection, err))
		}
		uc.progress(ctx, job, model.ProgressEntry{
			Step: model.StepNicheSelection, Status: model.StepRunning, Progress: 10,
			Message: "Analyzing niche opportunities...",
		})
		analysis, err := uc.text.AnalyzeNiche(ctx, input.NicheDescription)
		if err != nil {
			return uc.fail(job, &log, domain.NewStageError(model.StepNicheSelection, err))
		}
		if analysis == nil || analysis.NicheName == "" {
			return uc.fail(job, &log, domain.NewStageError(model.StepNicheSelection, domain.ErrEmptyGeneration))
		}
		niche = analysis.NicheName
		job.NicheData = analysis
		uc.progress(ctx, job, model.ProgressEntry{
			Step: model.StepNicheSelection, Status: model.StepCompleted, Progress: 20,
			Message: fmt.Sprintf("Selected niche: %s", niche),
		})
	default:
		uc.progress(ctx, job, model.ProgressEntry{
			Step: model.StepNicheSelection, Status: model.StepCompleted, Progress: 20,
			Message: "No niche provided",
		})
	}

	// Stage 2: color scheme resolution
	scheme := input.SelectedColorScheme
	switch {
	case scheme != nil:
		uc.progress(ctx, job, model.ProgressEntry{
			Step: model.StepColorScheme, Status: model.StepCompleted, Progress: 40,
			Message: "Using provided color scheme",
		})
	case niche != "":
		if err := ctx.Err(); err != nil {
			return uc.fail(job, &log, domain.NewStageError(model.StepColorScheme, err))
		}
		uc.progress(ctx, job, model.ProgressEntry{
			Step: model.StepColorScheme, Status: model.StepRunning, Progress: 30,
			Message: "Generating color scheme...",
		})
		cs, err := uc.text.RecommendColorScheme(ctx, niche, "")
		if err != nil {
			return uc.fail(job, &log, domain.NewStageError(model.StepColorScheme, err))
		}
		scheme = cs
		job.ColorScheme = cs
		uc.progress(ctx, job, model.ProgressEntry{
			Step: model.StepColorScheme, Status: model.StepCompleted, Progress: 40,
			Message: "Color scheme generated",
		})
	default:
		// No niche and no scheme: styling later becomes a no-op.
		uc.progress(ctx, job, model.ProgressEntry{
			Step: model.StepColorScheme, Status: model.StepCompleted, Progress: 40,
			Message: "Skipped color scheme (no niche)",
		})
	}

	// Stage 3: product sourcing
	products := input.Products
	if len(products) > 0 {
		uc.progress(ctx, job, model.ProgressEntry{
			Step: model.StepProductDiscovery, Status: model.StepCompleted, Progress: 60,
			Message: fmt.Sprintf("Using %d provided products", len(products)),
		})
	} else {
		if err := ctx.Err(); err != nil {
			return uc.fail(job, &log, domain.NewStageError(model.StepProductDiscovery, err))
		}
		uc.progress(ctx, job, model.ProgressEntry{
			Step: model.StepProductDiscovery, Status: model.StepRunning, Progress: 50,
			Message: "Loading products from catalog...",
		})
		if niche == "" {
			return uc.fail(job, &log, domain.NewStageError(model.StepProductDiscovery, domain.ErrNicheRequired))
		}
		list, err := uc.catalog.ProductsForNiche(ctx, niche)
		if err != nil {
			return uc.fail(job, &log, domain.NewStageError(model.StepProductDiscovery, err))
		}
		if len(list) == 0 {
			return uc.fail(job, &log, domain.NewStageError(model.StepProductDiscovery, domain.ErrNoProductsForNiche))
		}
		products = list
		job.ProductsData = list
		uc.progress(ctx, job, model.ProgressEntry{
			Step: model.StepProductDiscovery, Status: model.StepCompleted, Progress: 60,
			Message: fmt.Sprintf("Loaded %d products from catalog", len(products)),
		})
	}

	// Stage 4: store record creation
	if err := ctx.Err(); err != nil {
		return uc.fail(job, &log, domain.NewStageError(model.StepStoreCreation, err))
	}
	uc.progress(ctx, job, model.ProgressEntry{
		Step: model.StepStoreCreation, Status: model.StepRunning, Progress: 70,
		Message: "Creating Shopify store...",
	})
	storeID, err := uc.store.CreateStore(ctx, input.StoreName, input.UserID, input.Credentials())
	if err != nil {
		return uc.fail(job, &log, domain.NewStageError(model.StepStoreCreation, err))
	}
	// Persist the store ID right away so polling clients and retries can
	// discover it even if deployment fails.
	job.StoreID = storeID
	uc.progress(ctx, job, model.ProgressEntry{
		Step: model.StepStoreCreation, Status: model.StepCompleted, Progress: 80,
		Message: "Store created successfully",
	})

	// Stage 5: deployment
	uc.progress(ctx, job, model.ProgressEntry{
		Step: model.StepDeployment, Status: model.StepRunning, Progress: 85,
		Message: "Deploying store...",
	})
	job.DeploymentStatus = model.DeploymentDeploying
	uc.persist(ctx, job, &log)

	// 5a: theme styling. A store with no styling is a hard failure.
	if scheme != nil {
		if err := uc.store.ApplyColorScheme(ctx, storeID, scheme); err != nil {
			return uc.fail(job, &log, domain.NewStageError(model.StepDeployment, err))
		}
	}

	// 5b: per-product creation, fail-soft. One product's failure must not
	// block the rest.
	if len(products) > 0 {
		uc.progress(ctx, job, model.ProgressEntry{
			Step: model.StepProductCreation, Status: model.StepRunning, Progress: 90,
			Message: fmt.Sprintf("Creating %d products with images...", len(products)),
		})
		outcomes := make([]model.ProductOutcome, 0, len(products))
		for i, p := range products {
			if err := ctx.Err(); err != nil {
				job.ProductOutcomes = outcomes
				return uc.fail(job, &log, domain.NewStageError(model.StepProductCreation, err))
			}
			outcomes = append(outcomes, uc.deployProduct(ctx, job, &log, storeID, i, len(products), p))
		}
		job.ProductOutcomes = outcomes
		created := 0
		for _, o := range outcomes {
			if o.Success {
				created++
			}
		}
		uc.progress(ctx, job, model.ProgressEntry{
			Step: model.StepProductCreation, Status: model.StepCompleted, Progress: 95,
			Message: fmt.Sprintf("Created %d of %d products", created, len(products)),
		})
	}

	// 5c: finalize. Activation is best-effort; the job is already the
	// durable record of success.
	job.DeploymentStatus = model.DeploymentLive
	now := time.Now()
	job.CompletedAt = &now
	uc.progress(ctx, job, model.ProgressEntry{
		Step: model.StepDeployment, Status: model.StepCompleted, Progress: 100,
		Message: "Store deployed successfully!",
	})
	if err := uc.store.ActivateStore(ctx, storeID); err != nil {
		log.Error().Err(err).Str("store_id", storeID).Msg("store activation failed")
	}

	log.Info().Str("store_id", storeID).Dur("duration", time.Since(start)).Msg("store creation finished")
	return &model.WorkflowResult{
		Success:         true,
		StoreID:         storeID,
		JobID:           job.ID,
		Progress:        job.ProgressLog,
		ProductOutcomes: job.ProductOutcomes,
	}
}

// deployProduct handles one product: image generation (best-effort),
// product creation, follow-up image upload (best-effort).
func (uc *storeCreationUC) deployProduct(ctx context.Context, job *model.StoreCreationJob, log *zerolog.Logger, storeID string, idx, total int, p model.Product) model.ProductOutcome {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = fmt.Sprintf("Product %d", idx+1)
	}
	out := model.ProductOutcome{Index: idx, Title: title}

	uc.progress(ctx, job, model.ProgressEntry{
		Step: model.StepProductCreation, Status: model.StepRunning,
		Progress: 90 + (idx*5)/total,
		Message:  fmt.Sprintf("Generating image for %s...", title),
	})

	prompt := p.ImagePrompt
	if prompt == "" {
		prompt = strings.TrimSpace(title + ", " + p.Description)
	}
	imageURL, err := uc.images.Generate(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Int("product_index", idx).Msg("image generation failed; continuing without image")
		imageURL = ""
	}
	out.ImageGenerated = imageURL != ""

	payload := adapter.ProductPayload{
		Title:    title,
		BodyHTML: p.Description,
		Price:    normalizePrice(p.Price),
		ImageURL: imageURL,
		ImageAlt: title,
	}
	productID, err := uc.store.CreateProduct(ctx, storeID, payload)
	if err != nil {
		out.Error = err.Error()
		log.Error().Err(err).Int("product_index", idx).Str("title", title).Msg("product creation failed; continuing with next product")
		return out
	}
	out.ProductID = productID
	out.Success = true

	if imageURL != "" {
		if err := uc.store.UploadProductImage(ctx, storeID, productID, imageURL, title); err != nil {
			log.Warn().Err(err).Str("product_id", productID).Msg("image upload failed")
		}
	}
	return out
}

// progress appends an entry and persists the job so polling clients see the
// trail at full fidelity mid-flight.
func (uc *storeCreationUC) progress(ctx context.Context, job *model.StoreCreationJob, e model.ProgressEntry) {
	job.AppendProgress(e)
	if err := uc.jobs.Save(ctx, nil, job); err != nil {
		uc.log.Error().Err(err).Str("job_id", job.ID).Str("step", e.Step).Msg("failed to persist progress")
	}
}

func (uc *storeCreationUC) persist(ctx context.Context, job *model.StoreCreationJob, log *zerolog.Logger) {
	if err := uc.jobs.Save(ctx, nil, job); err != nil {
		log.Error().Err(err).Msg("failed to persist job")
	}
}

// fail marks the job terminally failed and returns the failure result. The
// final save uses a background context so a canceled run still leaves an
// accurate record.
func (uc *storeCreationUC) fail(job *model.StoreCreationJob, log *zerolog.Logger, err error) *model.WorkflowResult {
	var se *domain.StageError
	stage := model.StepError
	if errors.As(err, &se) {
		stage = se.Stage
	}
	log.Error().Err(err).Str("stage", stage).Msg("store creation failed")

	job.AppendProgress(model.ProgressEntry{
		Step: model.StepError, Status: model.StepFailed, Progress: 0,
		Message: err.Error(),
	})
	job.DeploymentStatus = model.DeploymentFailed
	job.LastError = err.Error()
	now := time.Now()
	job.CompletedAt = &now
	if serr := uc.jobs.Save(context.Background(), nil, job); serr != nil {
		log.Error().Err(serr).Msg("failed to persist failed job")
	}

	return &model.WorkflowResult{
		Success:         false,
		StoreID:         job.StoreID,
		JobID:           job.ID,
		Progress:        job.ProgressLog,
		ProductOutcomes: job.ProductOutcomes,
	}
}

// normalizePrice strips currency formatting ("$19.99" -> "19.99") and falls
// back to a default when the source data has no usable price.
func normalizePrice(price string) string {
	p := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(price), "$"))
	if i := strings.IndexByte(p, '-'); i >= 0 {
		p = strings.TrimSpace(strings.TrimSuffix(p[:i], "$"))
		p = strings.TrimPrefix(p, "$")
	}
	if p == "" {
		return "19.99"
	}
	return p
}
