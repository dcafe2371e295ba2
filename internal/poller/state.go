// Package poller tracks asynchronous generation jobs returned by the backend
// and polls their status until they reach a terminal state.
package poller

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aashari/go-generative-gateway/internal/types"
)

// ErrInvalidTransition is returned for status changes the job lifecycle forbids.
var ErrInvalidTransition = errors.New("invalid job status transition")

// Completion markers appended to a job's content.
const (
	completedMarker = "\n\n✅ Generation completed: %s"
	failedMarker    = "\n\n❌ Generation failed: %s"
	timeoutMarker   = "\n\n⏱️ Generation timed out after %d status checks"
)

// Transition validates moving a job from one status to another.
//
//	pending    -> processing | completed | failed
//	processing -> completed | failed
//
// Same-status updates are accepted as no-ops. Terminal states never change.
func Transition(from, to types.JobStatus) error {
	if from == to {
		return nil
	}
	switch from {
	case types.JobPending:
		if to == types.JobProcessing || to == types.JobCompleted || to == types.JobFailed {
			return nil
		}
	case types.JobProcessing:
		if to == types.JobCompleted || to == types.JobFailed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// ParseStatus maps a backend status string onto a known status.
func ParseStatus(s string) (types.JobStatus, bool) {
	switch status := types.JobStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case types.JobPending, types.JobProcessing, types.JobCompleted, types.JobFailed:
		return status, true
	}
	return "", false
}

// Apply folds one status report into record. It reports whether the record
// changed. Unknown statuses leave the record untouched.
func Apply(record *types.JobRecord, report types.JobStatusReport) (bool, error) {
	next, ok := ParseStatus(report.Status)
	if !ok {
		return false, nil
	}
	if err := Transition(record.Status, next); err != nil {
		return false, err
	}
	if next == record.Status {
		return false, nil
	}

	record.Status = next
	switch next {
	case types.JobCompleted:
		record.ResultURL = report.URL
		record.AssetID = report.AssetID
		record.Content += fmt.Sprintf(completedMarker, report.URL)
	case types.JobFailed:
		msg := report.Error
		if msg == "" {
			msg = "unknown error"
		}
		record.Error = msg
		record.Content += fmt.Sprintf(failedMarker, msg)
	}
	return true, nil
}

// Expire marks a non-terminal record failed after attempts unanswered status checks.
func Expire(record *types.JobRecord, attempts int) error {
	if err := Transition(record.Status, types.JobFailed); err != nil {
		return err
	}
	record.Status = types.JobFailed
	record.Error = fmt.Sprintf("timed out after %d status checks", attempts)
	record.Content += fmt.Sprintf(timeoutMarker, attempts)
	return nil
}
