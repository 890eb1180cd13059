package model

import (
	"encoding/json"
	"time"
)

// OutcomeStatus is the terminal state of a crawl run.
type OutcomeStatus int

const (
	// OutcomeCompleted means the remote stream signalled "done".
	OutcomeCompleted OutcomeStatus = iota

	// OutcomeFailed means the run ended on an error signal, a timeout,
	// or a failure to start the remote crawl.
	OutcomeFailed

	// OutcomeCancelled means the caller cancelled the run.
	// Files already written are left in place.
	OutcomeCancelled
)

// String returns a human-readable representation of the status.
func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParseOutcomeStatus converts the String form back to an OutcomeStatus.
// Unknown values map to OutcomeFailed.
func ParseOutcomeStatus(s string) OutcomeStatus {
	switch s {
	case "completed":
		return OutcomeCompleted
	case "cancelled":
		return OutcomeCancelled
	default:
		return OutcomeFailed
	}
}

// MarshalJSON encodes the status as its string form.
func (s OutcomeStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the string form of the status.
func (s *OutcomeStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = ParseOutcomeStatus(str)
	return nil
}

// CrawlOutcome records the terminal state of one crawl run.
// It is finalized exactly once per run.
type CrawlOutcome struct {
	// RunID uniquely identifies the run (UUID).
	RunID string `json:"run_id"`

	// JobID is the remote crawl job identifier, empty if the crawl never started.
	JobID string `json:"job_id,omitempty"`

	// Request is the request that drove the run.
	Request CrawlRequest `json:"request"`

	// Status is the terminal state.
	Status OutcomeStatus `json:"status"`

	// Pages is the number of pages materialized as files.
	Pages int `json:"pages"`

	// Skipped is the number of pages whose write failed.
	Skipped int `json:"skipped"`

	// DomainFolder is the domain directory pages were written under.
	DomainFolder string `json:"domain_folder"`

	// Reason is the failure reason for OutcomeFailed, empty otherwise.
	Reason string `json:"reason,omitempty"`

	// Err is the failure cause for OutcomeFailed. It is not serialized;
	// Reason holds its text.
	Err error `json:"-"`

	// StartedAt is when the run started.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run settled.
	FinishedAt time.Time `json:"finished_at"`
}

// NewCrawlOutcome creates an outcome for a run that starts now.
func NewCrawlOutcome(runID string, req CrawlRequest, startedAt time.Time) *CrawlOutcome {
	return &CrawlOutcome{
		RunID:     runID,
		Request:   req,
		StartedAt: startedAt,
	}
}

// Duration returns how long the run took.
func (o *CrawlOutcome) Duration() time.Duration {
	if o.FinishedAt.IsZero() {
		return 0
	}
	return o.FinishedAt.Sub(o.StartedAt)
}

// OutputPath returns the slash-separated folder pages were written to.
func (o *CrawlOutcome) OutputPath() string {
	if o.DomainFolder == "" {
		return o.Request.OutputFolder
	}
	return o.Request.OutputFolder + "/" + o.DomainFolder
}

// DocSet is a documentation folder materialized by earlier crawls.
type DocSet struct {
	// Name is the domain folder name.
	Name string `json:"name"`

	// Path is the folder path relative to the workspace.
	Path string `json:"path"`

	// Files is the number of Markdown files in the folder tree.
	Files int `json:"files"`

	// UpdatedAt is the most recent modification time of any file.
	UpdatedAt time.Time `json:"updated_at"`
}
