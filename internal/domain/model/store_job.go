package model

import "time"

type DeploymentStatus string

const (
	DeploymentPending   DeploymentStatus = "pending"
	DeploymentDeploying DeploymentStatus = "deploying"
	DeploymentLive      DeploymentStatus = "live"
	DeploymentFailed    DeploymentStatus = "failed"
)

type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// Workflow step names as they appear in the progress trail.
const (
	StepNicheSelection   = "niche_selection"
	StepColorScheme      = "color_scheme"
	StepProductDiscovery = "product_discovery"
	StepStoreCreation    = "store_creation"
	StepProductCreation  = "product_creation"
	StepDeployment       = "deployment"
	StepError            = "error"
)

// ProgressEntry is one line of a job's ordered, append-only progress trail.
type ProgressEntry struct {
	Step     string     `json:"step"`
	Status   StepStatus `json:"status"`
	Progress int        `json:"progress"`
	Message  string     `json:"message,omitempty"`
}

// ProductOutcome records the fate of one product in the deployment stage.
// Per-product failures are tolerated, so callers need the tally to detect
// partial success.
type ProductOutcome struct {
	Index          int    `json:"index"`
	Title          string `json:"title"`
	ProductID      string `json:"productId,omitempty"`
	ImageGenerated bool   `json:"imageGenerated"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
}

// StoreCreationJob is the durable record of one store-creation attempt.
// A job is never deleted by the workflow; it is the permanent audit trail
// for the run, pollable by ID.
type StoreCreationJob struct {
	ID               string
	UserID           string
	StoreName        string
	DeploymentStatus DeploymentStatus
	NicheData        *NicheAnalysis
	ColorScheme      *ColorScheme
	ProductsData     []Product
	ProductOutcomes  []ProductOutcome
	ProgressLog      []ProgressEntry
	Input            *StoreCreationInput
	StoreID          string
	LastError        string
	Queued           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
}

// Terminal reports whether the job reached a final state.
func (j *StoreCreationJob) Terminal() bool {
	return j.DeploymentStatus == DeploymentLive || j.DeploymentStatus == DeploymentFailed
}

// AppendProgress adds an entry to the job's progress trail.
func (j *StoreCreationJob) AppendProgress(e ProgressEntry) {
	j.ProgressLog = append(j.ProgressLog, e)
}

// WorkflowResult is the full outcome of one Execute call.
type WorkflowResult struct {
	Success         bool             `json:"success"`
	StoreID         string           `json:"storeId,omitempty"`
	JobID           string           `json:"jobId"`
	Progress        []ProgressEntry  `json:"progress"`
	ProductOutcomes []ProductOutcome `json:"productOutcomes,omitempty"`
}
