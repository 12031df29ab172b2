//go:build !integration

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"shopify-store-builder/internal/domain"
	"shopify-store-builder/internal/domain/model"
)

type mockStoreUC struct {
	executeResult *model.WorkflowResult
	executeErr    error
	enqueueID     string
	enqueueErr    error
	progress      []model.ProgressEntry
	job           *model.StoreCreationJob
	jobs          []*model.StoreCreationJob

	lastInput *model.StoreCreationInput
}

func (m *mockStoreUC) Execute(ctx context.Context, input *model.StoreCreationInput) (*model.WorkflowResult, error) {
	m.lastInput = input
	return m.executeResult, m.executeErr
}

func (m *mockStoreUC) Enqueue(ctx context.Context, input *model.StoreCreationInput) (string, error) {
	m.lastInput = input
	return m.enqueueID, m.enqueueErr
}

func (m *mockStoreUC) ExecuteJob(ctx context.Context, job *model.StoreCreationJob) (*model.WorkflowResult, error) {
	return m.executeResult, m.executeErr
}

func (m *mockStoreUC) GetProgress(ctx context.Context, jobID string) ([]model.ProgressEntry, error) {
	if m.progress == nil {
		return []model.ProgressEntry{}, nil
	}
	return m.progress, nil
}

func (m *mockStoreUC) GetJob(ctx context.Context, jobID string) (*model.StoreCreationJob, error) {
	if m.job == nil {
		return nil, domain.ErrNotFound
	}
	return m.job, nil
}

func (m *mockStoreUC) ListJobs(ctx context.Context, userID string, offset, limit int) ([]*model.StoreCreationJob, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return m.jobs, nil
}

type mockLimiter struct {
	allow bool
	calls int
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.calls++
	return m.allow, nil
}

func newTestServer(uc *mockStoreUC, limiter RateLimiter) *Server {
	log := zerolog.Nop()
	auth := NewAuthManager("test-secret", false, "", 30*time.Minute)
	return NewServer(uc, limiter, auth, "test-api-key", "admin-secret", 5, time.Hour, &log)
}

func authedRequest(method, target string, body []byte) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.Header.Set("Authorization", "Bearer test-api-key")
	return r
}

func TestInitiateHandler(t *testing.T) {
	t.Run("runs synchronously and returns the result", func(t *testing.T) {
		uc := &mockStoreUC{executeResult: &model.WorkflowResult{
			Success: true,
			JobID:   "job-1",
			StoreID: "store-1",
		}}
		srv := newTestServer(uc, &mockLimiter{allow: true})

		body := []byte(`{"userId":"user-1","storeName":"Pet Paradise","selectedNiche":"pets"}`)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/store-creation", body))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var result model.WorkflowResult
		json.Unmarshal(rec.Body.Bytes(), &result)
		if !result.Success || result.StoreID != "store-1" {
			t.Errorf("unexpected result: %+v", result)
		}
		if uc.lastInput.SelectedNiche != "pets" {
			t.Errorf("input not passed through: %+v", uc.lastInput)
		}
	})

	t.Run("enqueues when async is set", func(t *testing.T) {
		uc := &mockStoreUC{enqueueID: "job-9"}
		srv := newTestServer(uc, &mockLimiter{allow: true})

		body := []byte(`{"userId":"user-1","storeName":"Pet Paradise","async":true}`)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/store-creation", body))

		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", rec.Code)
		}
		var resp map[string]string
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp["jobId"] != "job-9" || resp["status"] != "queued" {
			t.Errorf("unexpected response: %v", resp)
		}
	})

	t.Run("maps validation errors to 400", func(t *testing.T) {
		uc := &mockStoreUC{executeErr: domain.ErrInvalidArgument}
		srv := newTestServer(uc, &mockLimiter{allow: true})

		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/store-creation", []byte(`{"userId":"u"}`)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects over-limit users with 429", func(t *testing.T) {
		uc := &mockStoreUC{}
		limiter := &mockLimiter{allow: false}
		srv := newTestServer(uc, limiter)

		body := []byte(`{"userId":"user-1","storeName":"Pet Paradise"}`)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/store-creation", body))

		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		if limiter.calls != 1 {
			t.Errorf("limiter should be consulted once, got %d", limiter.calls)
		}
		if uc.lastInput != nil {
			t.Error("workflow must not run for a rate-limited request")
		}
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		srv := newTestServer(&mockStoreUC{}, &mockLimiter{allow: true})
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/store-creation", []byte(`{not json`)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAPIKeyMiddleware(t *testing.T) {
	srv := newTestServer(&mockStoreUC{}, nil)

	t.Run("missing token yields 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/store-creation/abc", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("wrong token yields 403", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/store-creation/abc", nil)
		r.Header.Set("Authorization", "Bearer wrong")
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, r)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("health and metrics stay open", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 from /health, got %d", rec.Code)
		}
	})
}

func TestProgressHandler(t *testing.T) {
	uc := &mockStoreUC{progress: []model.ProgressEntry{
		{Step: model.StepNicheSelection, Status: model.StepCompleted, Progress: 20, Message: "Selected niche: pets"},
		{Step: model.StepDeployment, Status: model.StepCompleted, Progress: 100, Message: "Store deployed successfully!"},
	}}
	srv := newTestServer(uc, nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/store-creation/job-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		JobID    string                `json:"jobId"`
		Progress []model.ProgressEntry `json:"progress"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.JobID != "job-1" || len(resp.Progress) != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Progress[1].Progress != 100 {
		t.Errorf("progress entries out of order: %+v", resp.Progress)
	}
}

func TestResultHandler(t *testing.T) {
	t.Run("returns the job without its input snapshot", func(t *testing.T) {
		uc := &mockStoreUC{job: &model.StoreCreationJob{
			ID:               "job-1",
			UserID:           "user-1",
			StoreName:        "Pet Paradise",
			DeploymentStatus: model.DeploymentLive,
			StoreID:          "store-1",
			Input:            &model.StoreCreationInput{APISecret: "super-secret"},
		}}
		srv := newTestServer(uc, nil)

		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/store-creation/job-1/result", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "super-secret") {
			t.Error("credentials leaked into the API response")
		}
		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp["deploymentStatus"] != "live" || resp["storeId"] != "store-1" {
			t.Errorf("unexpected response: %v", resp)
		}
	})

	t.Run("unknown job yields 404", func(t *testing.T) {
		srv := newTestServer(&mockStoreUC{}, nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/store-creation/nope/result", nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestListJobsHandler(t *testing.T) {
	t.Run("requires user_id", func(t *testing.T) {
		srv := newTestServer(&mockStoreUC{}, nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/store-creation", nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("lists a user's jobs", func(t *testing.T) {
		uc := &mockStoreUC{jobs: []*model.StoreCreationJob{
			{ID: "job-2", UserID: "user-1", DeploymentStatus: model.DeploymentLive},
			{ID: "job-1", UserID: "user-1", DeploymentStatus: model.DeploymentFailed, LastError: "boom"},
		}}
		srv := newTestServer(uc, nil)

		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/store-creation?user_id=user-1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp struct {
			Data []map[string]interface{} `json:"data"`
		}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if len(resp.Data) != 2 {
			t.Fatalf("expected 2 jobs, got %d", len(resp.Data))
		}
		if resp.Data[1]["error"] != "boom" {
			t.Errorf("failure detail missing: %v", resp.Data[1])
		}
	})
}

func TestAdminSession(t *testing.T) {
	srv := newTestServer(&mockStoreUC{jobs: []*model.StoreCreationJob{{ID: "job-1"}}}, nil)
	router := srv.Router()

	t.Run("wrong secret is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/session", strings.NewReader(`{"secret":"nope"}`)))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("valid secret mints a usable session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/session", strings.NewReader(`{"secret":"admin-secret"}`)))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp map[string]string
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp["token"] == "" {
			t.Fatal("no token returned")
		}

		r := httptest.NewRequest(http.MethodGet, "/api/v1/admin/jobs?user_id=user-1", nil)
		r.Header.Set("Authorization", "Bearer "+resp["token"])
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, r)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 with admin session, got %d", rec.Code)
		}
	})

	t.Run("admin routes need a session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/jobs?user_id=user-1", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
