package types

import "time"

// JobStatus is the lifecycle state of an asynchronous generation job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed
}

// JobRecord tracks one backend job handle until it reaches a terminal state.
type JobRecord struct {
	JobID     string    `json:"job_id"`
	SessionID string    `json:"session_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Provider  Provider  `json:"provider"`
	Model     string    `json:"model"`
	Mode      Mode      `json:"mode"`
	Status    JobStatus `json:"status"`
	ResultURL string    `json:"result_url,omitempty"`
	AssetID   string    `json:"asset_id,omitempty"`
	Content   string    `json:"content"`
	Error     string    `json:"error,omitempty"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy safe to hand out while the poller keeps mutating the original.
func (r *JobRecord) Clone() *JobRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// JobStatusReport is one backend status query result.
type JobStatusReport struct {
	Status  string `json:"status"`
	URL     string `json:"url,omitempty"`
	AssetID string `json:"assetId,omitempty"`
	Error   string `json:"error,omitempty"`
}
