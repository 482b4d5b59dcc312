package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"xsplot/internal/blob"
	"xsplot/internal/chart"
	"xsplot/internal/observability"
	"xsplot/pkg/nuclide"
)

// Format names an artifact kind.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPNG  Format = "png"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Status describes the lifecycle stage of an export job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Artifact is one stored rendering of an export.
type Artifact struct {
	Format      Format    `json:"format"`
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	ETag        string    `json:"etag,omitempty"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Job tracks an export request and its artifacts.
type Job struct {
	ID          string     `json:"id"`
	Formats     []Format   `json:"formats"`
	Labels      []string   `json:"labels"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	Artifacts   []Artifact `json:"artifacts,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (j *Job) copy() Job {
	out := *j
	out.Formats = slices.Clone(j.Formats)
	out.Labels = slices.Clone(j.Labels)
	out.Artifacts = slices.Clone(j.Artifacts)
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// Request is a snapshot of the series to export.
type Request struct {
	Entries []nuclide.Series
	Scale   nuclide.AxisScale
	Formats []Format
}

// Scheduler queues export jobs and reports their status.
type Scheduler interface {
	Enqueue(ctx context.Context, req Request) (Job, error)
	Get(id string) (Job, bool)
	Open(ctx context.Context, id string, format Format) (Artifact, io.ReadCloser, error)
}

// ErrJobNotFound is returned for unknown job ids or formats a job did not produce.
var ErrJobNotFound = errors.New("export job not found")

// WorkerOptions tunes a Worker. Zero values select defaults.
type WorkerOptions struct {
	QueueSize int
	Logger    *zap.Logger
	Recorder  observability.Recorder
}

const defaultQueueSize = 32

// Worker renders and stores exports in the background.
type Worker struct {
	store    blob.Store
	logger   *zap.Logger
	recorder observability.Recorder

	queue chan exportTask
	mu    sync.RWMutex
	jobs  map[string]*Job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ Scheduler = (*Worker)(nil)

type exportTask struct {
	id  string
	req Request
}

// NewWorker constructs an export worker storing artifacts in store.
func NewWorker(store blob.Store, opts WorkerOptions) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	size := opts.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = observability.NopRecorder{}
	}
	return &Worker{
		store:    store,
		logger:   observability.OrNop(opts.Logger),
		recorder: recorder,
		queue:    make(chan exportTask, size),
		jobs:     make(map[string]*Job),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins processing export requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for the loop to exit. Queued jobs
// that have not started stay queued.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case task := <-w.queue:
			w.process(task)
		}
	}
}

// Enqueue schedules an export of req and returns the queued job.
func (w *Worker) Enqueue(_ context.Context, req Request) (Job, error) {
	if w.store == nil {
		return Job{}, errors.New("export store not configured")
	}
	formats := req.Formats
	if len(formats) == 0 {
		formats = []Format{FormatJSON}
	}
	uniq := make([]Format, 0, len(formats))
	for _, f := range formats {
		parsed, err := ParseFormat(string(f))
		if err != nil {
			return Job{}, err
		}
		if !slices.Contains(uniq, parsed) {
			uniq = append(uniq, parsed)
		}
	}
	req.Formats = uniq
	req.Entries = slices.Clone(req.Entries)

	now := time.Now().UTC()
	job := &Job{
		ID:        uuid.NewString(),
		Formats:   uniq,
		Labels:    Build(req.Entries).Labels,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	w.mu.Lock()
	w.jobs[job.ID] = job
	snapshot := job.copy()
	w.mu.Unlock()

	select {
	case w.queue <- exportTask{id: job.ID, req: req}:
	default:
		w.mu.Lock()
		delete(w.jobs, job.ID)
		w.mu.Unlock()
		return Job{}, errors.New("export queue full")
	}
	w.logger.Info("export queued", zap.String("job", job.ID), zap.Int("entries", len(req.Entries)))
	return snapshot, nil
}

// Get returns a snapshot of the job.
func (w *Worker) Get(id string) (Job, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	job, ok := w.jobs[id]
	if !ok {
		return Job{}, false
	}
	return job.copy(), true
}

// Open streams a stored artifact of a finished job.
func (w *Worker) Open(ctx context.Context, id string, format Format) (Artifact, io.ReadCloser, error) {
	job, ok := w.Get(id)
	if !ok {
		return Artifact{}, nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	for _, a := range job.Artifacts {
		if a.Format != format {
			continue
		}
		_, rc, err := w.store.Get(ctx, a.Key)
		if err != nil {
			return Artifact{}, nil, fmt.Errorf("open artifact %s: %w", a.Key, err)
		}
		return a, rc, nil
	}
	return Artifact{}, nil, fmt.Errorf("%w: %s has no %s artifact", ErrJobNotFound, id, format)
}

func (w *Worker) process(task exportTask) {
	w.setStatus(task.id, StatusRunning)
	artifacts := make([]Artifact, 0, len(task.req.Formats))
	for _, format := range task.req.Formats {
		payload, contentType, err := materialize(format, task.req)
		if err != nil {
			w.fail(task.id, format, err)
			return
		}
		key := ArtifactKey(task.id, format)
		info, err := w.store.Put(w.ctx, key, bytes.NewReader(payload), blob.PutOptions{
			ContentType: contentType,
			Metadata:    map[string]string{"job": task.id, "format": string(format)},
		})
		if err != nil {
			w.fail(task.id, format, fmt.Errorf("store artifact: %w", err))
			return
		}
		url := info.URL
		if signed, err := w.store.PresignURL(w.ctx, key, blob.SignedURLOptions{}); err == nil {
			url = signed
		}
		artifacts = append(artifacts, Artifact{
			Format:      format,
			Key:         key,
			ContentType: contentType,
			SizeBytes:   int64(len(payload)),
			ETag:        info.ETag,
			URL:         url,
			CreatedAt:   time.Now().UTC(),
		})
		w.recorder.ObserveExport(string(format), string(StatusSucceeded))
	}
	w.complete(task.id, artifacts)
}

// ArtifactKey is the blob key of a job's artifact.
func ArtifactKey(jobID string, format Format) string {
	return "exports/" + jobID + "/" + strings.TrimSuffix(FileName, ".json") + "." + string(format)
}

func materialize(format Format, req Request) ([]byte, string, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		b, err := Marshal(Build(req.Entries))
		return b, ContentType, err
	case FormatCSV:
		if err := WriteCSV(&buf, req.Entries); err != nil {
			return nil, "", fmt.Errorf("write csv: %w", err)
		}
		return buf.Bytes(), "text/csv", nil
	case FormatPNG:
		if err := chart.RenderPNG(&buf, chart.Build(req.Entries, req.Scale), chart.RenderOptions{}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/png", nil
	default:
		return nil, "", fmt.Errorf("unsupported export format %q", format)
	}
}

func (w *Worker) setStatus(id string, status Status) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if job, ok := w.jobs[id]; ok {
		job.Status = status
		job.UpdatedAt = time.Now().UTC()
	}
}

func (w *Worker) complete(id string, artifacts []Artifact) {
	now := time.Now().UTC()
	w.mu.Lock()
	if job, ok := w.jobs[id]; ok {
		job.Status = StatusSucceeded
		job.Error = ""
		job.Artifacts = artifacts
		job.UpdatedAt = now
		job.CompletedAt = &now
	}
	w.mu.Unlock()
	w.logger.Info("export succeeded", zap.String("job", id), zap.Int("artifacts", len(artifacts)))
}

func (w *Worker) fail(id string, format Format, err error) {
	w.recorder.ObserveExport(string(format), string(StatusFailed))
	now := time.Now().UTC()
	w.mu.Lock()
	if job, ok := w.jobs[id]; ok {
		job.Status = StatusFailed
		job.Error = err.Error()
		job.UpdatedAt = now
		job.CompletedAt = &now
	}
	w.mu.Unlock()
	w.logger.Warn("export failed", zap.String("job", id), zap.String("format", string(format)), zap.Error(err))
}
