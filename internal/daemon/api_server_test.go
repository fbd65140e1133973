package daemon

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"snatch/internal/api"
	"snatch/internal/config"
	"snatch/internal/downloader"
	"snatch/internal/events"
	"snatch/internal/jobs"
	"snatch/internal/logging"
	"snatch/internal/ytdlp"
)

type stubRunner struct {
	mu        sync.Mutex
	err       error
	result    ytdlp.Result
	artifacts map[string]ytdlp.Result
}

func (r *stubRunner) Download(ctx context.Context, jobID, url string, quality ytdlp.Quality, progress func(ytdlp.ProgressUpdate)) (ytdlp.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return ytdlp.Result{}, r.err
	}
	return r.result, nil
}

func (r *stubRunner) Artifact(jobID string) (ytdlp.Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result, ok := r.artifacts[jobID]
	return result, ok
}

func (r *stubRunner) setArtifact(jobID string, result ytdlp.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.artifacts == nil {
		r.artifacts = make(map[string]ytdlp.Result)
	}
	r.artifacts[jobID] = result
}

type testHarness struct {
	daemon  *Daemon
	service *downloader.Service
	store   *jobs.Store
	hub     *events.Hub
	runner  *stubRunner
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	cfg := &config.Config{
		Paths: config.Paths{
			DownloadDir: t.TempDir(),
			LogDir:      t.TempDir(),
			APIBind:     "127.0.0.1:0",
		},
		Downloader: config.Downloader{
			DefaultQuality:     "480p",
			DefaultConcurrency: 2,
			MinConcurrency:     1,
			MaxConcurrency:     10,
		},
	}

	store := jobs.NewStore()
	hub := events.NewHub()
	runner := &stubRunner{}
	svc := downloader.NewService(cfg, store, hub, runner, logging.NewNop())
	t.Cleanup(svc.Close)

	d, err := New(cfg, store, hub, svc, runner, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &testHarness{daemon: d, service: svc, store: store, hub: hub, runner: runner}
}

func TestHandleBulkRejectsInvalidURL(t *testing.T) {
	h := newTestHarness(t)

	body := bytes.NewBufferString(`{"urls":["https://example.com/not-youtube"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/download/bulk", body)
	w := httptest.NewRecorder()
	h.daemon.api.handleBulk(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if got := len(h.store.List()); got != 0 {
		t.Fatalf("expected no jobs after rejected batch, got %d", got)
	}
}

func TestHandleBulkCreatesJobs(t *testing.T) {
	h := newTestHarness(t)
	h.runner.result = ytdlp.Result{Title: "Clip", Size: "1.2 MB"}

	body := bytes.NewBufferString(`{"urls":["https://youtu.be/abc123"],"concurrency":3,"quality":"720p"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/download/bulk", body)
	w := httptest.NewRecorder()
	h.daemon.api.handleBulk(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp api.BulkDownloadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || len(resp.Items) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}

	h.service.Wait()
	job, ok := h.store.Get(resp.Items[0].ID)
	if !ok {
		t.Fatal("job missing from store")
	}
	if job.Status != jobs.StatusCompleted || job.Title != "Clip" {
		t.Fatalf("unexpected job %+v", job)
	}
}

func TestHandleDownloadsListAndClear(t *testing.T) {
	h := newTestHarness(t)
	h.store.Create("https://youtu.be/one")
	h.store.Create("https://youtu.be/two")

	req := httptest.NewRequest(http.MethodGet, "/api/downloads", nil)
	w := httptest.NewRecorder()
	h.daemon.api.handleDownloads(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var items []api.DownloadItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/downloads", nil)
	w = httptest.NewRecorder()
	h.daemon.api.handleDownloads(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := len(h.store.List()); got != 0 {
		t.Fatalf("expected empty store after clear, got %d", got)
	}
}

func TestHandleStats(t *testing.T) {
	h := newTestHarness(t)
	job := h.store.Create("https://youtu.be/one")
	completed := jobs.StatusCompleted
	h.store.Update(job.ID, jobs.Update{Status: &completed})

	req := httptest.NewRequest(http.MethodGet, "/api/downloads/stats", nil)
	w := httptest.NewRecorder()
	h.daemon.api.handleStats(w, req)

	var stats api.StatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 1 || stats.Completed != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestHandleDownloadItemDelete(t *testing.T) {
	h := newTestHarness(t)
	job := h.store.Create("https://youtu.be/one")

	req := httptest.NewRequest(http.MethodDelete, "/api/downloads/nope", nil)
	w := httptest.NewRecorder()
	h.daemon.api.handleDownloadItem(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/downloads/"+job.ID, nil)
	w = httptest.NewRecorder()
	h.daemon.api.handleDownloadItem(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if _, ok := h.store.Get(job.ID); ok {
		t.Fatal("job still present after delete")
	}
}

func TestHandleRetry(t *testing.T) {
	h := newTestHarness(t)
	job := h.store.Create("https://youtu.be/one")

	req := httptest.NewRequest(http.MethodPost, "/api/downloads/"+job.ID+"/retry", nil)
	w := httptest.NewRecorder()
	h.daemon.api.handleDownloadItem(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for non-failed job, got %d", w.Code)
	}

	failed := jobs.StatusFailed
	h.store.Update(job.ID, jobs.Update{Status: &failed})
	h.runner.result = ytdlp.Result{Title: "Recovered"}

	w = httptest.NewRecorder()
	h.daemon.api.handleDownloadItem(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		current, _ := h.store.Get(job.ID)
		if current != nil && current.Status == jobs.StatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("retry never completed, job: %+v", current)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHandleFileServesArtifact(t *testing.T) {
	h := newTestHarness(t)
	job := h.store.Create("https://youtu.be/one")

	dir := t.TempDir()
	path := filepath.Join(dir, job.ID+"_Clip.mp4")
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	h.runner.setArtifact(job.ID, ytdlp.Result{Title: "Clip", Path: path})

	req := httptest.NewRequest(http.MethodGet, "/api/downloads/"+job.ID+"/file", nil)
	w := httptest.NewRecorder()
	h.daemon.api.handleDownloadItem(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Body.String(); got != "payload" {
		t.Fatalf("unexpected body %q", got)
	}
	if disposition := w.Header().Get("Content-Disposition"); !strings.Contains(disposition, "attachment") {
		t.Fatalf("unexpected disposition %q", disposition)
	}
}

func TestHandleFileMissingArtifact(t *testing.T) {
	h := newTestHarness(t)
	job := h.store.Create("https://youtu.be/one")

	req := httptest.NewRequest(http.MethodGet, "/api/downloads/"+job.ID+"/file", nil)
	w := httptest.NewRecorder()
	h.daemon.api.handleDownloadItem(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHandleArchive(t *testing.T) {
	h := newTestHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/api/downloads/archive", nil)
	w := httptest.NewRecorder()
	h.daemon.api.handleArchive(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with no completed downloads, got %d", w.Code)
	}

	job := h.store.Create("https://youtu.be/one")
	completed := jobs.StatusCompleted
	h.store.Update(job.ID, jobs.Update{Status: &completed})

	dir := t.TempDir()
	path := filepath.Join(dir, job.ID+"_Clip.mp4")
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	h.runner.setArtifact(job.ID, ytdlp.Result{Title: "Clip", Path: path})

	w = httptest.NewRecorder()
	h.daemon.api.handleArchive(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	reader, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(reader.File) != 1 || reader.File[0].Name != filepath.Base(path) {
		t.Fatalf("unexpected archive contents: %+v", reader.File)
	}
}

func TestHandleHealth(t *testing.T) {
	h := newTestHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.daemon.api.handleHealth(w, req)

	var resp api.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if resp.Status != "ok" || resp.Version == "" {
		t.Fatalf("unexpected health response %+v", resp)
	}
}

func TestWebSocketReceivesEvents(t *testing.T) {
	h := newTestHarness(t)

	server := httptest.NewServer(h.daemon.api.server.Handler)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.hub.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("websocket client never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	h.hub.Publish(events.JobCompleted("job-1"))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt events.Event
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if evt.Type != events.TypeJobCompleted || evt.JobID != "job-1" {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestWebSocketRetryFrame(t *testing.T) {
	h := newTestHarness(t)
	h.runner.err = &ytdlp.FailureError{Kind: ytdlp.KindGeneric, Message: "Download failed: boom"}

	created, err := h.service.SubmitBatch(downloader.Request{URLs: []string{"https://youtu.be/abc"}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	h.service.Wait()

	job, _ := h.store.Get(created[0].ID)
	if job.Status != jobs.StatusFailed {
		t.Fatalf("expected failed job, got %s", job.Status)
	}

	h.runner.mu.Lock()
	h.runner.err = nil
	h.runner.result = ytdlp.Result{Title: "Recovered"}
	h.runner.mu.Unlock()

	server := httptest.NewServer(h.daemon.api.server.Handler)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsMessage{Type: "retry_download", ItemID: job.ID}); err != nil {
		t.Fatalf("write retry frame: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		current, _ := h.store.Get(job.ID)
		if current != nil && current.Status == jobs.StatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("retry never completed, job: %+v", current)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
