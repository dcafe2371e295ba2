package types

import "time"

// UsageRecord summarizes one dispatch for the usage log.
type UsageRecord struct {
	RequestID      string    `bson:"request_id" json:"request_id"`
	SessionID      string    `bson:"session_id,omitempty" json:"session_id,omitempty"`
	Provider       Provider  `bson:"provider" json:"provider"`
	RequestedModel string    `bson:"requested_model" json:"requested_model"`
	ResolvedModel  string    `bson:"resolved_model" json:"resolved_model"`
	Mode           Mode      `bson:"mode" json:"mode"`
	IsFallback     bool      `bson:"is_fallback" json:"is_fallback"`
	FilesCount     int       `bson:"files_count" json:"files_count"`
	StatusCode     int       `bson:"status_code" json:"status_code"`
	Outcome        string    `bson:"outcome" json:"outcome"`
	ErrorCode      string    `bson:"error_code,omitempty" json:"error_code,omitempty"`
	JobID          string    `bson:"job_id,omitempty" json:"job_id,omitempty"`
	DurationMs     int64     `bson:"duration_ms" json:"duration_ms"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
}
