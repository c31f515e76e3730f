package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeForecast regenerates and stores the forecast of one account.
	JobTypeForecast JobType = "forecast"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// Trigger records who asked for a forecast job.
type Trigger string

const (
	TriggerAPI  Trigger = "api"
	TriggerCron Trigger = "cron"
	TriggerCLI  Trigger = "cli"
)

var (
	// ErrJobNotFound is returned by a JobStore for an unknown job ID.
	ErrJobNotFound = errors.New("job not found")

	// ErrQueueClosed is returned when publishing to or starting a stopped queue.
	ErrQueueClosed = errors.New("queue is closed")
)

// ForecastJob asks a worker to project an account's balance over a window.
type ForecastJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// AccountID is the account whose forecast is regenerated.
	AccountID string `json:"account_id"`

	// From and To bound the forecast window.
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	// Trigger is where the job came from.
	Trigger Trigger `json:"trigger"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`

	// Result is filled in by the handler once the forecast is stored.
	Result *ForecastSummary `json:"result,omitempty"`
}

// ForecastSummary is the outcome of a completed forecast job.
type ForecastSummary struct {
	Transactions   int             `json:"transactions"`
	EndingBalance  decimal.Decimal `json:"ending_balance"`
	LowestBalance  decimal.Decimal `json:"lowest_balance"`
	RecordFailures int             `json:"record_failures"`
	ExportURI      string          `json:"export_uri,omitempty"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *ForecastJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *ForecastJob) GetType() JobType {
	return JobTypeForecast
}

// GetStatus implements the Job interface.
func (j *ForecastJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishForecast publishes a forecast job.
	PublishForecast(ctx context.Context, job *ForecastJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ForecastJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ForecastJob, error)

	// ListJobs retrieves jobs with optional filtering, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ForecastJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// AccountID filters jobs by account.
	AccountID string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
