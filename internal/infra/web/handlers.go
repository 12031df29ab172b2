package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shopify-store-builder/internal/domain"
	"shopify-store-builder/internal/domain/model"
	red "shopify-store-builder/internal/infra/redis"
)

// initiateRequest is the JSON body for starting a store creation run.
// It is the workflow input plus the async flag.
type initiateRequest struct {
	model.StoreCreationInput
	Async bool `json:"async,omitempty"`
}

func (s *Server) initiateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if s.limiter != nil && req.UserID != "" {
		allowed, err := s.limiter.Allow(ctx, red.StoreCreationKey(req.UserID), s.rateLimit, s.rateWin)
		if err != nil {
			s.log.Error().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			http.Error(w, domain.ErrRateLimited.Error(), http.StatusTooManyRequests)
			return
		}
	}

	if req.Async {
		jobID, err := s.storeUC.Enqueue(ctx, &req.StoreCreationInput)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to enqueue store creation", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"jobId": jobID, "status": "queued"})
		return
	}

	result, err := s.storeUC.Execute(ctx, &req.StoreCreationInput)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to run store creation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) progressHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "jobID")

	progress, err := s.storeUC.GetProgress(ctx, jobID)
	if err != nil {
		http.Error(w, "Failed to get progress", http.StatusInternalServerError)
		return
	}

	response := struct {
		JobID    string                `json:"jobId"`
		Progress []model.ProgressEntry `json:"progress"`
	}{
		JobID:    jobID,
		Progress: progress,
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) resultHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "jobID")

	job, err := s.storeUC.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, "Job ID is required", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to get job", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, jobResponse(job))
}

// listJobsHandler returns a paginated list of a user's jobs.
// It accepts 'user_id', 'offset' and 'limit' query parameters.
func (s *Server) listJobsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.URL.Query().Get("user_id")
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50 // Default page size
	}
	if offset < 0 {
		offset = 0
	}

	jobs, err := s.storeUC.ListJobs(ctx, userID, offset, limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to list jobs", http.StatusInternalServerError)
		return
	}

	data := make([]map[string]interface{}, 0, len(jobs))
	for _, j := range jobs {
		data = append(data, jobResponse(j))
	}
	response := struct {
		Data   []map[string]interface{} `json:"data"`
		Limit  int                      `json:"limit"`
		Offset int                      `json:"offset"`
	}{
		Data:   data,
		Limit:  limit,
		Offset: offset,
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) adminLoginHandler(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil || s.adminKey == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req struct {
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Secret != s.adminKey {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	token, err := s.auth.Mint(w)
	if err != nil {
		http.Error(w, "Failed to mint session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jobResponse shapes a job for the API without leaking the input snapshot,
// which carries credentials.
func jobResponse(j *model.StoreCreationJob) map[string]interface{} {
	resp := map[string]interface{}{
		"jobId":            j.ID,
		"userId":           j.UserID,
		"storeName":        j.StoreName,
		"deploymentStatus": j.DeploymentStatus,
		"createdAt":        j.CreatedAt,
		"updatedAt":        j.UpdatedAt,
	}
	if j.StoreID != "" {
		resp["storeId"] = j.StoreID
	}
	if j.LastError != "" {
		resp["error"] = j.LastError
	}
	if j.NicheData != nil {
		resp["niche"] = j.NicheData
	}
	if j.ColorScheme != nil {
		resp["colorScheme"] = j.ColorScheme
	}
	if len(j.ProductOutcomes) > 0 {
		resp["productOutcomes"] = j.ProductOutcomes
	}
	if len(j.ProgressLog) > 0 {
		resp["progress"] = j.ProgressLog
	}
	if j.CompletedAt != nil {
		resp["completedAt"] = j.CompletedAt
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
