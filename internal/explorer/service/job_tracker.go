package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"neuranest-explorer/internal/entity"
	"neuranest-explorer/internal/explorer/dto"
	"neuranest-explorer/internal/explorer/repository"
	"neuranest-explorer/pkg/logger"
	"neuranest-explorer/pkg/metrics"
	"neuranest-explorer/pkg/utils"
)

// JobSettledNotifier is told once when a tracked job reaches a terminal status.
type JobSettledNotifier interface {
	NotifyJobSettled(ctx context.Context, job entity.ImportJob) error
}

// JobTrackerConfig tunes the poll loop.
type JobTrackerConfig struct {
	PollInterval    time.Duration
	PollTimeout     time.Duration
	MaxPollFailures int
	// MaxUnreportedPolls is how many successful polls a locally submitted job
	// may be missing from the server list before it is marked failed.
	MaxUnreportedPolls int
}

// JobTracker submits bulk imports and polls their status while any is active.
type JobTracker interface {
	Submit(ctx context.Context, upload dto.ImportUpload) (*entity.ImportJob, error)
	Refresh(ctx context.Context) error
	Jobs() []entity.ImportJob
	Polling() bool
	LastError() error
	// Wait blocks until polling stops and returns the error that stopped it, if any.
	Wait(ctx context.Context) error
	Stop()
}

type jobTracker struct {
	repo      repository.ImportJobRepository
	cfg       JobTrackerConfig
	notifiers []JobSettledNotifier
	logger    *logger.Logger
	metrics   *metrics.Metrics

	mu       sync.Mutex
	jobs     map[string]entity.ImportJob
	polling  bool
	loopDone chan struct{}
	stopLoop context.CancelFunc
	failures int
	lastErr  error
	stopped  bool
	unseen   map[string]int
}

// NewJobTracker creates a tracker bound to one session.
func NewJobTracker(repo repository.ImportJobRepository, cfg JobTrackerConfig, log *logger.Logger, m *metrics.Metrics, notifiers ...JobSettledNotifier) JobTracker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = cfg.PollInterval
	}
	if cfg.MaxPollFailures <= 0 {
		cfg.MaxPollFailures = 5
	}
	if cfg.MaxUnreportedPolls <= 0 {
		cfg.MaxUnreportedPolls = 20
	}
	return &jobTracker{
		repo:      repo,
		cfg:       cfg,
		notifiers: notifiers,
		logger:    log,
		metrics:   m,
		jobs:      make(map[string]entity.ImportJob),
		unseen:    make(map[string]int),
	}
}

// Submit uploads the file and starts tracking the new job as pending.
func (t *jobTracker) Submit(ctx context.Context, upload dto.ImportUpload) (*entity.ImportJob, error) {
	t.mu.Lock()
	stopped := t.stopped
	t.mu.Unlock()
	if stopped {
		return nil, ErrTrackerStopped
	}

	resp, err := t.repo.Upload(ctx, upload)
	if err != nil {
		t.logger.WarnContext(ctx, "Import upload failed", logger.StringField("filename", upload.Filename), logger.ErrorField(err))
		return nil, newTransportError("upload import", err)
	}
	if resp == nil || resp.JobID == "" {
		t.logger.WarnContext(ctx, "Import upload returned no job id", logger.StringField("filename", upload.Filename))
		return nil, newTransportError("upload import", ErrMissingJobID)
	}

	now := time.Now()
	job := entity.ImportJob{
		ID:        resp.JobID,
		Filename:  upload.Filename,
		Country:   upload.Country,
		Status:    entity.ImportPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if upload.ReportMonth != "" {
		job.ReportMonth = utils.ToPointer(upload.ReportMonth)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.jobs[job.ID]; ok {
		job = existing
	} else {
		t.jobs[job.ID] = job
	}
	t.ensurePollingLocked()
	t.logger.InfoContext(ctx, "Import submitted", logger.StringField("job_id", job.ID), logger.StringField("filename", job.Filename))
	return &job, nil
}

// Refresh loads the job list once and starts polling when any job is active.
func (t *jobTracker) Refresh(ctx context.Context) error {
	jobs, err := t.repo.List(ctx)

	t.mu.Lock()
	if err != nil {
		t.lastErr = newTransportError("list import jobs", err)
		lastErr := t.lastErr
		t.mu.Unlock()
		t.metrics.RecordJobPoll("error")
		return lastErr
	}
	t.failures = 0
	t.lastErr = nil
	settled := t.mergeLocked(jobs)
	if t.hasActiveLocked() {
		t.ensurePollingLocked()
	} else if t.polling {
		t.polling = false
		t.stopLoop()
	}
	t.mu.Unlock()

	t.metrics.RecordJobPoll("ok")
	t.notify(ctx, settled)
	return nil
}

func (t *jobTracker) Jobs() []entity.ImportJob {
	t.mu.Lock()
	jobs := make([]entity.ImportJob, 0, len(t.jobs))
	for _, j := range t.jobs {
		jobs = append(jobs, j)
	}
	t.mu.Unlock()

	sort.Slice(jobs, func(i, k int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[k].CreatedAt) {
			return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
		}
		return jobs[i].ID < jobs[k].ID
	})
	return jobs
}

func (t *jobTracker) Polling() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.polling
}

func (t *jobTracker) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

func (t *jobTracker) Wait(ctx context.Context) error {
	for {
		t.mu.Lock()
		if !t.polling {
			err := t.lastErr
			t.mu.Unlock()
			return err
		}
		done := t.loopDone
		t.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		}
	}
}

// Stop ends polling for good. Further submissions are refused.
func (t *jobTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.polling = false
	if t.stopLoop != nil {
		t.stopLoop()
	}
}

func (t *jobTracker) ensurePollingLocked() {
	if t.polling || t.stopped || !t.hasActiveLocked() {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.polling = true
	t.stopLoop = cancel
	t.loopDone = done
	utils.GoSafe(func() {
		defer close(done)
		defer cancel()
		t.run(ctx, done)
	})
}

func (t *jobTracker) run(ctx context.Context, done chan struct{}) {
	t.logger.Debug("Import job polling started", logger.Field("interval", t.cfg.PollInterval))

	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.mu.Lock()
			if t.loopDone == done {
				t.polling = false
			}
			t.mu.Unlock()
			t.logger.Debug("Import job polling cancelled")
			return
		case <-ticker.C:
			if !t.poll(ctx) {
				t.logger.Debug("Import job polling stopped")
				return
			}
		}
	}
}

// poll issues one status request and reports whether the loop should continue.
func (t *jobTracker) poll(ctx context.Context) bool {
	t.mu.Lock()
	if !t.hasActiveLocked() {
		t.polling = false
		t.mu.Unlock()
		return false
	}
	t.mu.Unlock()

	pollCtx, cancel := context.WithTimeout(ctx, t.cfg.PollTimeout)
	jobs, err := t.repo.List(pollCtx)
	cancel()

	t.mu.Lock()
	if ctx.Err() != nil {
		t.mu.Unlock()
		return false
	}
	if err != nil {
		t.failures++
		t.lastErr = newTransportError("poll import jobs", err)
		failures := t.failures
		if failures >= t.cfg.MaxPollFailures {
			t.polling = false
		}
		t.mu.Unlock()

		t.metrics.RecordJobPoll("error")
		if failures >= t.cfg.MaxPollFailures {
			t.logger.Error("Import job polling gave up after consecutive failures",
				logger.IntField("failures", failures), logger.ErrorField(err))
			return false
		}
		t.logger.Warn("Import job poll failed", logger.IntField("failures", failures), logger.ErrorField(err))
		return true
	}

	t.failures = 0
	t.lastErr = nil
	settled := t.mergeLocked(jobs)
	settled = append(settled, t.expireUnreportedLocked(jobs)...)
	active := t.hasActiveLocked()
	if !active {
		t.polling = false
	}
	t.mu.Unlock()

	t.metrics.RecordJobPoll("ok")
	t.notify(ctx, settled)
	return active
}

// expireUnreportedLocked fails active jobs the server has left out of too many
// consecutive listings.
func (t *jobTracker) expireUnreportedLocked(incoming []entity.ImportJob) []entity.ImportJob {
	reported := make(map[string]struct{}, len(incoming))
	for _, job := range incoming {
		reported[job.ID] = struct{}{}
	}

	var expired []entity.ImportJob
	for id, job := range t.jobs {
		if _, ok := reported[id]; ok || !job.Status.IsActive() {
			delete(t.unseen, id)
			continue
		}
		t.unseen[id]++
		if t.unseen[id] < t.cfg.MaxUnreportedPolls {
			continue
		}
		delete(t.unseen, id)
		job.Status = entity.ImportFailed
		job.ErrorMessage = utils.ToPointer("job not reported by server")
		job.UpdatedAt = time.Now()
		t.jobs[id] = job
		expired = append(expired, job)
		t.logger.Warn("Import job never reported by server", logger.StringField("job_id", id),
			logger.IntField("polls", t.cfg.MaxUnreportedPolls))
	}
	return expired
}

// mergeLocked folds the server view into the local one and returns jobs that
// just became terminal. Terminal jobs never regress, and a job's imported row
// count never decreases while it is active.
func (t *jobTracker) mergeLocked(incoming []entity.ImportJob) []entity.ImportJob {
	var settled []entity.ImportJob
	for _, job := range incoming {
		if job.ID == "" {
			continue
		}
		existing, known := t.jobs[job.ID]
		if known && existing.Status.IsTerminal() {
			continue
		}
		if known && job.Status.IsActive() {
			if job.ImportedRows < existing.ImportedRows {
				job.ImportedRows = existing.ImportedRows
			}
			if existing.Status == entity.ImportProcessing && job.Status == entity.ImportPending {
				job.Status = entity.ImportProcessing
			}
		}
		if job.Filename == "" && known {
			job.Filename = existing.Filename
		}
		t.jobs[job.ID] = job
		if known && job.Status.IsTerminal() {
			settled = append(settled, job)
		}
	}
	return settled
}

func (t *jobTracker) hasActiveLocked() bool {
	for _, j := range t.jobs {
		if j.Status.IsActive() {
			return true
		}
	}
	return false
}

func (t *jobTracker) notify(ctx context.Context, settled []entity.ImportJob) {
	for _, job := range settled {
		t.metrics.RecordJobSettled(string(job.Status))
		t.logger.Info("Import job settled",
			logger.StringField("job_id", job.ID),
			logger.StringField("status", string(job.Status)),
			logger.IntField("imported_rows", job.ImportedRows),
		)
		for _, n := range t.notifiers {
			nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			if err := n.NotifyJobSettled(nctx, job); err != nil {
				t.logger.Warn("Failed to deliver job settled notice", logger.StringField("job_id", job.ID), logger.ErrorField(fmt.Errorf("%T: %w", n, err)))
			}
			cancel()
		}
	}
}
