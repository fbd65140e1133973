package jobs

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps job records in memory.
type Store struct {
	mu    sync.RWMutex
	items map[string]*Job
}

// NewStore constructs an empty in-memory job store.
func NewStore() *Store {
	return &Store{items: make(map[string]*Job)}
}

// Create allocates a new queued job for the given URL.
func (s *Store) Create(url string) *Job {
	now := time.Now().UTC()
	job := &Job{
		ID:        uuid.NewString(),
		URL:       url,
		Status:    StatusQueued,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.items[job.ID] = job
	s.mu.Unlock()

	return job.Clone()
}

// Get returns a copy of the job with the given id.
func (s *Store) Get(id string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.items[id]
	if !ok {
		return nil, false
	}
	return job.Clone(), true
}

// Update merges the provided fields over the stored record and
// refreshes its updated timestamp. Unknown ids are a no-op.
func (s *Store) Update(id string, update Update) (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.items[id]
	if !ok {
		return nil, false
	}
	if update.Title != nil {
		job.Title = *update.Title
	}
	if update.Status != nil {
		job.Status = *update.Status
	}
	if update.Progress != nil {
		job.Progress = *update.Progress
	}
	if update.Size != nil {
		job.Size = *update.Size
	}
	if update.Error != nil {
		job.Error = *update.Error
	}
	job.UpdatedAt = time.Now().UTC()
	return job.Clone(), true
}

// List returns a snapshot of all jobs ordered by creation time, most
// recent first.
func (s *Store) List() []*Job {
	s.mu.RLock()
	out := make([]*Job, 0, len(s.items))
	for _, job := range s.items {
		out = append(out, job.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Stats recomputes aggregate counts over the full current job set.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats Stats
	for _, job := range s.items {
		switch job.Status {
		case StatusCompleted:
			stats.Completed++
		case StatusDownloading:
			stats.Processing++
		case StatusFailed:
			stats.Failed++
		case StatusQueued:
			stats.Queued++
		}
		stats.Total++
	}
	return stats
}

// Clear removes all records unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = make(map[string]*Job)
	s.mu.Unlock()
}

// Delete removes one record, reporting whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}
