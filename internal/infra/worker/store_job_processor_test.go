package worker

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"shopify-store-builder/internal/domain"
	"shopify-store-builder/internal/domain/model"
	"shopify-store-builder/internal/domain/ports/repository"
)

type fakeJobRepo struct {
	queue []*model.StoreCreationJob
}

func (f *fakeJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.StoreCreationJob) error {
	return nil
}
func (f *fakeJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.StoreCreationJob, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeJobRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.StoreCreationJob, error) {
	return nil, nil
}
func (f *fakeJobRepo) FetchAndMarkRunning(ctx context.Context) (*model.StoreCreationJob, error) {
	if len(f.queue) == 0 {
		return nil, domain.ErrNotFound
	}
	job := f.queue[0]
	f.queue = f.queue[1:]
	job.Queued = false
	return job, nil
}

type fakeUC struct {
	executed []string
	result   *model.WorkflowResult
}

func (f *fakeUC) Execute(ctx context.Context, input *model.StoreCreationInput) (*model.WorkflowResult, error) {
	return f.result, nil
}
func (f *fakeUC) Enqueue(ctx context.Context, input *model.StoreCreationInput) (string, error) {
	return "", nil
}
func (f *fakeUC) ExecuteJob(ctx context.Context, job *model.StoreCreationJob) (*model.WorkflowResult, error) {
	f.executed = append(f.executed, job.ID)
	return f.result, nil
}
func (f *fakeUC) GetProgress(ctx context.Context, jobID string) ([]model.ProgressEntry, error) {
	return nil, nil
}
func (f *fakeUC) GetJob(ctx context.Context, jobID string) (*model.StoreCreationJob, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeUC) ListJobs(ctx context.Context, userID string, offset, limit int) ([]*model.StoreCreationJob, error) {
	return nil, nil
}

type fakeLocker struct {
	locked   map[string]bool
	unlocked []string
	denied   bool
}

func (f *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if f.denied {
		return "", domain.ErrJobLocked
	}
	if f.locked == nil {
		f.locked = map[string]bool{}
	}
	f.locked[key] = true
	return "token", nil
}

func (f *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	f.unlocked = append(f.unlocked, key)
	return nil
}

func newTestProcessor(repo *fakeJobRepo, uc *fakeUC, locker *fakeLocker) *StoreJobProcessor {
	log := zerolog.Nop()
	return NewStoreJobProcessor(repo, uc, locker, 0, 0, &log)
}

func TestStoreJobProcessor_ProcessOne(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("runs the fetched job and releases the lock", func(t *testing.T) {
		repo := &fakeJobRepo{queue: []*model.StoreCreationJob{{ID: "job-1", UserID: "user-1"}}}
		uc := &fakeUC{result: &model.WorkflowResult{Success: true, JobID: "job-1"}}
		locker := &fakeLocker{}
		p := newTestProcessor(repo, uc, locker)

		p.processOne(ctx)

		if len(uc.executed) != 1 || uc.executed[0] != "job-1" {
			t.Fatalf("expected job-1 to be executed, got %v", uc.executed)
		}
		if len(locker.unlocked) != 1 {
			t.Fatal("job lock was not released")
		}
	})

	t.Run("does nothing when the queue is empty", func(t *testing.T) {
		uc := &fakeUC{}
		p := newTestProcessor(&fakeJobRepo{}, uc, &fakeLocker{})

		p.processOne(ctx)

		if len(uc.executed) != 0 {
			t.Fatal("no job should run on an empty queue")
		}
	})

	t.Run("skips a job another worker holds", func(t *testing.T) {
		repo := &fakeJobRepo{queue: []*model.StoreCreationJob{{ID: "job-1"}}}
		uc := &fakeUC{}
		p := newTestProcessor(repo, uc, &fakeLocker{denied: true})

		p.processOne(ctx)

		if len(uc.executed) != 0 {
			t.Fatal("a locked job must not be executed")
		}
	})
}

func TestPool_RunsSubmittedTasks(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewPool(2, nil)
	pool.Start(ctx)

	done := make(chan struct{})
	if err := pool.Submit(func(ctx context.Context) error {
		close(done)
		return nil
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not executed")
	}
	pool.Stop()
}
