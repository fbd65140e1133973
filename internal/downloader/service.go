package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"snatch/internal/config"
	"snatch/internal/events"
	"snatch/internal/jobs"
	"snatch/internal/logging"
	"snatch/internal/ytdlp"
)

// Request describes one bulk submission.
type Request struct {
	URLs        []string
	Concurrency int
	Quality     ytdlp.Quality
}

// ValidationError reports structurally invalid batch input. It is
// returned synchronously; no job records are created.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid download request: " + e.Reason
}

// Service owns the FIFO queue and the occupied slot set.
type Service struct {
	cfg    *config.Config
	store  *jobs.Store
	hub    *events.Hub
	runner ytdlp.Downloader
	logger *slog.Logger

	defaultQuality ytdlp.Quality

	mu          sync.Mutex
	queue       []string
	active      map[string]struct{}
	concurrency int
	quality     ytdlp.Quality

	retryDelay  time.Duration
	jobsWG      sync.WaitGroup
	baseCtx     context.Context
	cancelAll   context.CancelFunc
}

// NewService constructs the orchestrator.
func NewService(cfg *config.Config, store *jobs.Store, hub *events.Hub, runner ytdlp.Downloader, logger *slog.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	quality, ok := ytdlp.ParseQuality(cfg.Downloader.DefaultQuality)
	if !ok {
		quality = ytdlp.DefaultQuality
	}
	return &Service{
		cfg:            cfg,
		store:          store,
		hub:            hub,
		runner:         runner,
		logger:         logging.NewComponentLogger(logger, "downloader"),
		defaultQuality: quality,
		active:         make(map[string]struct{}),
		concurrency:    cfg.Downloader.DefaultConcurrency,
		quality:        quality,
		retryDelay:     time.Duration(cfg.Downloader.RetryDelaySeconds) * time.Second,
		baseCtx:        ctx,
		cancelAll:      cancel,
	}
}

// Close cancels in-flight subprocesses and waits for job goroutines to
// finish. Intended for daemon shutdown and tests.
func (s *Service) Close() {
	s.cancelAll()
	s.jobsWG.Wait()
}

// Wait blocks until every admitted job has finished executing.
func (s *Service) Wait() {
	s.jobsWG.Wait()
}

// SubmitBatch validates the request as a whole, creates one queued job
// per URL, publishes the created set, and starts dispatching. A
// validation failure creates no jobs at all.
func (s *Service) SubmitBatch(req Request) ([]*jobs.Job, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	// Defaults apply per request: an omitted bound or tier means the
	// configured default, not whatever the previous batch adopted.
	requested := req.Concurrency
	if requested <= 0 {
		requested = s.cfg.Downloader.DefaultConcurrency
	}
	bound := clamp(requested, s.cfg.Downloader.MinConcurrency, s.cfg.Downloader.MaxConcurrency)

	quality := s.defaultQuality
	if req.Quality != "" {
		if parsed, ok := ytdlp.ParseQuality(string(req.Quality)); ok {
			quality = parsed
		}
	}

	created := make([]*jobs.Job, 0, len(req.URLs))
	s.mu.Lock()
	s.concurrency = bound
	s.quality = quality
	for _, url := range req.URLs {
		job := s.store.Create(strings.TrimSpace(url))
		created = append(created, job)
		s.queue = append(s.queue, job.ID)
	}
	s.mu.Unlock()

	s.logger.Info("batch admitted",
		logging.Int("jobs", len(created)),
		logging.Int("concurrency", bound),
		logging.String("quality", string(quality)),
	)

	s.hub.Publish(events.BatchStarted(created))
	s.dispatch()
	return created, nil
}

// Retry re-queues a failed job after the configured debounce delay.
// Unknown ids and jobs not currently failed are ignored.
func (s *Service) Retry(id string) {
	job, ok := s.store.Get(id)
	if !ok {
		return
	}
	if job.Status != jobs.StatusFailed {
		s.logger.Debug("retry ignored for non-failed job",
			logging.String(logging.FieldJobID, id),
			logging.String("status", string(job.Status)),
		)
		return
	}

	s.jobsWG.Add(1)
	go func() {
		defer s.jobsWG.Done()
		select {
		case <-s.baseCtx.Done():
			return
		case <-time.After(s.retryDelay):
		}

		queued := jobs.StatusQueued
		progress := 0
		cleared := ""
		if _, ok := s.store.Update(id, jobs.Update{
			Status:   &queued,
			Progress: &progress,
			Error:    &cleared,
		}); !ok {
			return
		}

		s.mu.Lock()
		s.queue = append(s.queue, id)
		s.mu.Unlock()

		s.logger.Info("job re-queued", logging.String(logging.FieldJobID, id))
		s.dispatch()
	}()
}

// dispatch fills free slots from the FIFO queue. It is safe to call
// from any goroutine; admissions are serialized under the mutex and a
// job already occupying a slot is never re-admitted.
func (s *Service) dispatch() {
	var ready []string

	s.mu.Lock()
	for len(s.active) < s.concurrency && len(s.queue) > 0 {
		id := s.queue[0]
		s.queue = s.queue[1:]
		if _, running := s.active[id]; running {
			continue
		}
		s.active[id] = struct{}{}
		ready = append(ready, id)
	}
	s.mu.Unlock()

	for _, id := range ready {
		s.jobsWG.Add(1)
		go s.runJob(id)
	}
}

// runJob executes one job in its own slot. The slot is released and a
// new dispatch pass triggered regardless of outcome.
func (s *Service) runJob(id string) {
	defer s.jobsWG.Done()
	defer func() {
		s.mu.Lock()
		delete(s.active, id)
		s.mu.Unlock()
		s.dispatch()
	}()

	job, ok := s.store.Get(id)
	if !ok {
		return
	}

	downloading := jobs.StatusDownloading
	zero := 0
	s.store.Update(id, jobs.Update{Status: &downloading, Progress: &zero})
	s.hub.Publish(events.JobProgress(id, jobs.StatusDownloading, 0))

	result, err := s.runner.Download(s.baseCtx, id, job.URL, s.currentQuality(), func(update ytdlp.ProgressUpdate) {
		progressUpdate := jobs.Update{Status: &downloading, Progress: &update.Percent}
		if update.Title != "" {
			title := update.Title
			progressUpdate.Title = &title
		}
		s.store.Update(id, progressUpdate)
		s.hub.Publish(events.JobProgress(id, jobs.StatusDownloading, update.Percent))
	})
	if err != nil {
		message := err.Error()
		failed := jobs.StatusFailed
		s.store.Update(id, jobs.Update{Status: &failed, Error: &message})
		s.hub.Publish(events.JobFailed(id, message))
		s.logger.Warn("job failed",
			logging.String(logging.FieldJobID, id),
			logging.Error(err),
		)
		return
	}

	completed := jobs.StatusCompleted
	full := 100
	finalUpdate := jobs.Update{Status: &completed, Progress: &full}
	if result.Title != "" {
		finalUpdate.Title = &result.Title
	}
	if result.Size != "" {
		finalUpdate.Size = &result.Size
	}
	s.store.Update(id, finalUpdate)
	s.hub.Publish(events.JobCompleted(id))
	s.logger.Info("job completed",
		logging.String(logging.FieldJobID, id),
		logging.String("title", result.Title),
		logging.String("size", result.Size),
	)
}

func (s *Service) currentQuality() ytdlp.Quality {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quality
}

func validate(req Request) error {
	if len(req.URLs) == 0 {
		return &ValidationError{Reason: "url list is empty"}
	}
	for _, url := range req.URLs {
		if !ytdlp.IsSupportedURL(url) {
			return &ValidationError{Reason: fmt.Sprintf("unsupported url %q", strings.TrimSpace(url))}
		}
	}
	if req.Quality != "" {
		if _, ok := ytdlp.ParseQuality(string(req.Quality)); !ok {
			return &ValidationError{Reason: fmt.Sprintf("unknown quality tier %q", req.Quality)}
		}
	}
	return nil
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
