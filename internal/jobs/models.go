package jobs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a download job.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusDownloading Status = "downloading"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

var allStatuses = []Status{
	StatusQueued,
	StatusDownloading,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status ends the job's lifecycle absent a retry.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks one URL's download lifecycle.
type Job struct {
	ID        string
	URL       string
	Title     string
	Status    Status
	Progress  int
	Size      string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy of the job safe to hand outside the store.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	return &cp
}

// Update describes a partial mutation of a job record. Nil fields are
// left untouched; set fields are merged last-write-wins.
type Update struct {
	Title    *string
	Status   *Status
	Progress *int
	Size     *string
	Error    *string
}

// Stats aggregates job counts per lifecycle state at a point in time.
type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Processing int `json:"processing"`
	Failed     int `json:"failed"`
	Queued     int `json:"queued"`
}
