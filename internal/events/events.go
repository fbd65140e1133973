package events

import (
	"snatch/internal/api"
	"snatch/internal/jobs"
)

// Type discriminates event payloads on the wire.
type Type string

const (
	TypeBatchStarted Type = "batch_started"
	TypeJobProgress  Type = "job_progress"
	TypeJobCompleted Type = "job_completed"
	TypeJobFailed    Type = "job_failed"
)

// Event is the payload relayed to listeners. Only the fields relevant
// to the event type are populated. Items use the same transport shape
// as the HTTP API so both surfaces serialize jobs identically.
type Event struct {
	Type     Type               `json:"type"`
	Items    []api.DownloadItem `json:"items,omitempty"`
	JobID    string             `json:"itemId,omitempty"`
	Status   jobs.Status        `json:"status,omitempty"`
	Progress int                `json:"progress,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// BatchStarted announces the jobs created by one bulk submission.
func BatchStarted(items []*jobs.Job) Event {
	return Event{Type: TypeBatchStarted, Items: api.FromJobs(items)}
}

// JobProgress reports an accepted progress reading for one job.
func JobProgress(id string, status jobs.Status, progress int) Event {
	return Event{Type: TypeJobProgress, JobID: id, Status: status, Progress: progress}
}

// JobCompleted reports a job reaching its successful terminal state.
func JobCompleted(id string) Event {
	return Event{Type: TypeJobCompleted, JobID: id, Status: jobs.StatusCompleted, Progress: 100}
}

// JobFailed reports a job reaching its failed terminal state.
func JobFailed(id, message string) Event {
	return Event{Type: TypeJobFailed, JobID: id, Status: jobs.StatusFailed, Error: message}
}
