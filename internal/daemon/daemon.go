package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"snatch/internal/config"
	"snatch/internal/downloader"
	"snatch/internal/events"
	"snatch/internal/jobs"
	"snatch/internal/logging"
	"snatch/internal/ytdlp"
)

// Version is reported by the health endpoint and the CLI.
const Version = "0.1.0"

// ArtifactSource resolves the on-disk file produced for a job.
type ArtifactSource interface {
	Artifact(jobID string) (ytdlp.Result, bool)
}

// Daemon coordinates the download service and the API surface, and
// enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *jobs.Store
	hub     *events.Hub
	service *downloader.Service
	source  ArtifactSource

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *jobs.Store, hub *events.Hub, svc *downloader.Service, source ArtifactSource, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || hub == nil || svc == nil {
		return nil, errors.New("daemon requires config, store, hub, and download service")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "snatchd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		hub:      hub,
		service:  svc,
		source:   source,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg.Paths.APIBind, d, logger)
	return d, nil
}

// Start acquires the daemon lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another snatch daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if err := d.api.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("snatch daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server, drains in-flight jobs, and releases
// the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.service.Close()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("snatch daemon stopped")
}

// Submit admits a bulk download batch.
func (d *Daemon) Submit(req downloader.Request) ([]*jobs.Job, error) {
	return d.service.SubmitBatch(req)
}

// Retry re-queues a failed job.
func (d *Daemon) Retry(id string) {
	d.service.Retry(id)
}

// ListJobs returns all job records, newest first.
func (d *Daemon) ListJobs() []*jobs.Job {
	return d.store.List()
}

// Job returns one job record by id.
func (d *Daemon) Job(id string) (*jobs.Job, bool) {
	return d.store.Get(id)
}

// Stats returns aggregate job counts.
func (d *Daemon) Stats() jobs.Stats {
	return d.store.Stats()
}

// Clear removes every job record.
func (d *Daemon) Clear() {
	d.store.Clear()
}

// Remove deletes one job record.
func (d *Daemon) Remove(id string) bool {
	return d.store.Delete(id)
}

// Artifact resolves the downloaded file for a job, if any.
func (d *Daemon) Artifact(id string) (ytdlp.Result, bool) {
	if d.source == nil {
		return ytdlp.Result{}, false
	}
	return d.source.Artifact(id)
}

// LockPath returns the lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// Addr returns the bound API address once the daemon is started.
func (d *Daemon) Addr() string {
	return d.api.addr()
}
