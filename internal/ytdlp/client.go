package ytdlp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"snatch/internal/logging"
)

// ProgressUpdate reports an accepted progress reading during an attempt.
type ProgressUpdate struct {
	Percent int
	Title   string
}

// Result describes a successfully produced artifact.
type Result struct {
	Title string
	Size  string
	Path  string
}

// Downloader is the behaviour the orchestrator requires from the runner.
type Downloader interface {
	Download(ctx context.Context, jobID, url string, quality Quality, progress func(ProgressUpdate)) (Result, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error
}

// SpawnError marks a process that could not be started at all, as
// opposed to one that ran and exited nonzero.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string { return fmt.Sprintf("spawn yt-dlp: %v", e.Err) }

func (e *SpawnError) Unwrap() error { return e.Err }

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithBackoff overrides the delay observed between failed strategies.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.backoff = d
		}
	}
}

// Client drives yt-dlp invocations for one download directory.
type Client struct {
	candidates  []string
	downloadDir string
	backoff     time.Duration
	exec        Executor
	logger      *slog.Logger
}

// New constructs a yt-dlp client. candidates is the ordered list of
// binary locations to try; the last resort is resolving "yt-dlp" from
// PATH at spawn time.
func New(candidates []string, downloadDir string, backoffSeconds int, logger *slog.Logger, opts ...Option) (*Client, error) {
	downloadDir = strings.TrimSpace(downloadDir)
	if downloadDir == "" {
		return nil, errors.New("download directory required")
	}
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download directory: %w", err)
	}
	client := &Client{
		candidates:  append([]string(nil), candidates...),
		downloadDir: downloadDir,
		backoff:     time.Duration(backoffSeconds) * time.Second,
		exec:        commandExecutor{},
		logger:      logging.NewComponentLogger(logger, "ytdlp"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// DownloadDir returns the directory artifacts are written to.
func (c *Client) DownloadDir() string {
	return c.downloadDir
}

// ResolveBinary picks the first usable binary from the candidate list,
// falling back to "yt-dlp" for PATH resolution by the OS.
func (c *Client) ResolveBinary() string {
	for _, candidate := range c.candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if strings.ContainsRune(candidate, os.PathSeparator) {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
			continue
		}
		if path, err := exec.LookPath(candidate); err == nil {
			return path
		}
	}
	return "yt-dlp"
}

// Download walks the strategy list until one attempt produces an
// artifact. The final strategy's classified failure is returned when
// all are exhausted; earlier failures are only logged.
func (c *Client) Download(ctx context.Context, jobID, url string, quality Quality, progress func(ProgressUpdate)) (Result, error) {
	if !IsSupportedURL(url) {
		return Result{}, &FailureError{Kind: KindInvalidURL, Message: "Invalid YouTube URL"}
	}

	binary := c.ResolveBinary()
	outputTemplate := filepath.Join(c.downloadDir, jobID+"_%(title)s.%(ext)s")
	strategies := buildStrategies(quality, outputTemplate, url)

	var lastErr error
	for i, strat := range strategies {
		c.logger.Info("attempting download strategy",
			logging.String(logging.FieldJobID, jobID),
			logging.String("strategy", strat.name),
			logging.String("url", url),
		)
		result, err := c.attempt(ctx, binary, jobID, strat, progress)
		if err == nil {
			c.logger.Info("download strategy succeeded",
				logging.String(logging.FieldJobID, jobID),
				logging.String("strategy", strat.name),
			)
			return result, nil
		}
		lastErr = err
		c.logger.Warn("download strategy failed",
			logging.String(logging.FieldJobID, jobID),
			logging.String("strategy", strat.name),
			logging.Error(err),
		)
		if i == len(strategies)-1 {
			break
		}
		select {
		case <-ctx.Done():
			return Result{}, &FailureError{Kind: KindGeneric, Message: "Download failed: " + ctx.Err().Error()}
		case <-time.After(c.backoff):
		}
	}
	return Result{}, lastErr
}

func (c *Client) attempt(ctx context.Context, binary, jobID string, strat strategy, progress func(ProgressUpdate)) (Result, error) {
	parser := &outputParser{}
	var stderr strings.Builder

	runErr := c.exec.Run(ctx, binary, strat.args, func(line string) {
		if percent, ok := parser.consume(line); ok && progress != nil {
			progress(ProgressUpdate{Percent: percent, Title: parser.title})
		}
	}, func(chunk string) {
		stderr.WriteString(chunk)
		stderr.WriteString("\n")
	})
	if runErr != nil {
		return Result{}, classifyFailure(stderr.String(), runErr)
	}

	artifact, err := c.findArtifact(jobID, parser.size)
	if err != nil {
		return Result{}, err
	}
	return artifact, nil
}

// Artifact reports the on-disk artifact for a job, if one exists.
func (c *Client) Artifact(jobID string) (Result, bool) {
	result, err := c.findArtifact(jobID, "")
	if err != nil {
		return Result{}, false
	}
	return result, true
}

// findArtifact locates the produced file by its job-id prefix. A zero
// exit code without a matching file is still a failure.
func (c *Client) findArtifact(jobID, parsedSize string) (Result, error) {
	entries, err := os.ReadDir(c.downloadDir)
	if err != nil {
		return Result{}, &FailureError{Kind: KindArtifactMissing, Message: "Downloaded file not found"}
	}
	prefix := jobID + "_"
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, statErr := entry.Info()
		return Result{
			Title: displayTitle(entry.Name(), prefix),
			Size:  artifactSize(info, statErr, parsedSize),
			Path:  filepath.Join(c.downloadDir, entry.Name()),
		}, nil
	}
	return Result{}, &FailureError{Kind: KindArtifactMissing, Message: "Downloaded file not found"}
}

// artifactSize prefers the authoritative on-disk size and falls back
// to the size announced on stdout when the file cannot be stat'd.
func artifactSize(info fs.FileInfo, statErr error, parsedSize string) string {
	if statErr != nil || info == nil {
		return parsedSize
	}
	return humanize.Bytes(uint64(info.Size()))
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return &SpawnError{Err: err}
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if forward != nil {
				forward(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout, onStdout)
	go scan(stderr, onStderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
