package daemon

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"snatch/internal/api"
	"snatch/internal/downloader"
	"snatch/internal/jobs"
	"snatch/internal/logging"
	"snatch/internal/ytdlp"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
	group    *errgroup.Group
}

func newAPIServer(bind string, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(bind),
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/download/bulk", srv.handleBulk)
	mux.HandleFunc("/api/downloads", srv.handleDownloads)
	mux.HandleFunc("/api/downloads/stats", srv.handleStats)
	mux.HandleFunc("/api/downloads/archive", srv.handleArchive)
	mux.HandleFunc("/api/downloads/", srv.handleDownloadItem)
	mux.HandleFunc("/api/health", srv.handleHealth)
	mux.HandleFunc("/ws", srv.handleWS)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address required")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	group, groupCtx := errgroup.WithContext(ctx)
	s.group = group
	group.Go(func() error {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
		return nil
	})

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.group != nil {
		_ = s.group.Wait()
		s.group = nil
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleBulk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body api.BulkDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.daemon.Submit(downloader.Request{
		URLs:        body.URLs,
		Concurrency: body.Concurrency,
		Quality:     ytdlp.Quality(body.Quality),
	})
	if err != nil {
		var invalid *downloader.ValidationError
		if errors.As(err, &invalid) {
			s.writeError(w, http.StatusBadRequest, invalid.Reason)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, api.BulkDownloadResponse{
		Success: true,
		Items:   api.FromJobs(created),
	})
}

func (s *apiServer) handleDownloads(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, api.FromJobs(s.daemon.ListJobs()))
	case http.MethodDelete:
		s.daemon.Clear()
		s.writeJSON(w, http.StatusOK, api.StatusResponse{Success: true, Message: "all downloads cleared"})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromStats(s.daemon.Stats()))
}

func (s *apiServer) handleDownloadItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/downloads/")
	if rest == "" {
		s.writeError(w, http.StatusNotFound, "download not found")
		return
	}

	if id, ok := strings.CutSuffix(rest, "/file"); ok && !strings.Contains(id, "/") {
		s.handleFile(w, r, id)
		return
	}
	if id, ok := strings.CutSuffix(rest, "/retry"); ok && !strings.Contains(id, "/") {
		s.handleRetry(w, r, id)
		return
	}
	if strings.Contains(rest, "/") {
		s.writeError(w, http.StatusNotFound, "download not found")
		return
	}

	if r.Method != http.MethodDelete {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.daemon.Remove(rest) {
		s.writeError(w, http.StatusNotFound, "download not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.StatusResponse{Success: true, Message: "download removed"})
}

func (s *apiServer) handleRetry(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	job, ok := s.daemon.Job(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "download not found")
		return
	}
	if job.Status != jobs.StatusFailed {
		s.writeError(w, http.StatusConflict, "only failed downloads can be retried")
		return
	}
	s.daemon.Retry(id)
	s.writeJSON(w, http.StatusOK, api.StatusResponse{Success: true, Message: "retry scheduled"})
}

func (s *apiServer) handleFile(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, ok := s.daemon.Job(id); !ok {
		s.writeError(w, http.StatusNotFound, "download not found")
		return
	}
	artifact, ok := s.daemon.Artifact(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "downloaded file not found")
		return
	}
	name := filepath.Base(artifact.Path)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, artifact.Path)
}

func (s *apiServer) handleArchive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var paths []string
	for _, job := range s.daemon.ListJobs() {
		if job.Status != jobs.StatusCompleted {
			continue
		}
		if artifact, ok := s.daemon.Artifact(job.ID); ok {
			paths = append(paths, artifact.Path)
		}
	}
	if len(paths) == 0 {
		s.writeError(w, http.StatusNotFound, "no completed downloads")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="downloads.zip"`)
	w.WriteHeader(http.StatusOK)

	archive := zip.NewWriter(w)
	for _, path := range paths {
		if err := addArchiveEntry(archive, path); err != nil {
			s.log().Warn("archive entry failed",
				logging.String("path", path),
				logging.Error(err),
			)
			break
		}
	}
	if err := archive.Close(); err != nil {
		s.log().Warn("archive finalize failed", logging.Error(err))
	}
}

func addArchiveEntry(archive *zip.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	// Media payloads are already compressed; storing avoids burning CPU
	// on deflate for no size win.
	entry, err := archive.CreateHeader(&zip.FileHeader{
		Name:   filepath.Base(path),
		Method: zip.Store,
	})
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, file)
	return err
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok", Version: Version})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
