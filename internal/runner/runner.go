// Package runner executes accepted task requests as detached background
// units of work: generate, publish, notify.
package runner

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/briefpress/briefpress/internal/domain"
	"github.com/briefpress/briefpress/internal/notify"
)

// ContentGenerator produces the artifact for a task. It never fails; provider
// exhaustion degrades to a placeholder document.
type ContentGenerator interface {
	Generate(ctx context.Context, req *domain.TaskRequest, prior string) *domain.Artifact
}

// Publisher writes artifacts to the hosting repository.
type Publisher interface {
	EnsureRepo(ctx context.Context, req *domain.TaskRequest) error
	PriorDocument(ctx context.Context, repoName string) (string, bool, error)
	PublishFiles(ctx context.Context, req *domain.TaskRequest, art *domain.Artifact) (*domain.PublishResult, error)
}

// Journal persists run lifecycle state. All methods are best-effort from the
// runner's perspective: a journal failure is logged, never fatal to the run.
type Journal interface {
	SaveRun(run *domain.Run) error
	UpdateRunStatus(id string, status domain.RunStatus, errMsg string) error
	UpdateRunResult(id string, status domain.RunStatus, res *domain.PublishResult) error
}

// EventSink receives run lifecycle events for live subscribers.
type EventSink interface {
	Emit(eventType string, data any)
}

// noopSink discards events.
type noopSink struct{}

func (noopSink) Emit(eventType string, data any) {}

// RunEvent is the data payload broadcast with each lifecycle event.
type RunEvent struct {
	RunID string `json:"run_id"`
	Task  string `json:"task"`
	Round int    `json:"round"`
	Error string `json:"error,omitempty"`
}

// Runner dispatches detached background runs. Each inbound request becomes
// one independent unit of work; there is no shared mutable state between
// runs beyond the journal.
type Runner struct {
	gen      ContentGenerator
	pub      Publisher
	notifier notify.Notifier
	journal  Journal
	events   EventSink
	timeout  time.Duration
	sem      chan struct{}
	wg       sync.WaitGroup
}

// Options configures a Runner.
type Options struct {
	Generator ContentGenerator
	Publisher Publisher
	Notifier  notify.Notifier
	Journal   Journal
	Events    EventSink
	// MaxConcurrent bounds simultaneous background runs. Zero means 1.
	MaxConcurrent int
	// Timeout is the per-run deadline. Zero means 10 minutes.
	Timeout time.Duration
}

// New creates a Runner.
func New(opts Options) *Runner {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Minute
	}
	if opts.Events == nil {
		opts.Events = noopSink{}
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop{}
	}
	return &Runner{
		gen:      opts.Generator,
		pub:      opts.Publisher,
		notifier: opts.Notifier,
		journal:  opts.Journal,
		events:   opts.Events,
		timeout:  opts.Timeout,
		sem:      make(chan struct{}, opts.MaxConcurrent),
	}
}

// Dispatch accepts a request for background processing and returns the run
// ID immediately. The caller has already answered the inbound request; any
// failure from here on is observable only through the journal, the event
// stream and the logs.
func (r *Runner) Dispatch(req *domain.TaskRequest) string {
	id := uuid.NewString()
	now := time.Now()

	run := &domain.Run{
		ID:        id,
		Email:     req.Email,
		Task:      req.Task,
		Round:     req.Round,
		Nonce:     req.Nonce,
		Brief:     req.Brief,
		Status:    domain.RunReceived,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.journal.SaveRun(run); err != nil {
		log.Printf("run %s: journal save failed: %v", id, err)
	}
	r.events.Emit("run.accepted", RunEvent{RunID: id, Task: req.Task, Round: req.Round})

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.sem <- struct{}{}
		defer func() { <-r.sem }()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.process(ctx, id, req); err != nil {
			log.Printf("run %s (%s round %d) failed: %v", id, req.Task, req.Round, err)
			r.setStatus(id, domain.RunFailed, err.Error())
			r.events.Emit("run.failed", RunEvent{RunID: id, Task: req.Task, Round: req.Round, Error: err.Error()})
		}
	}()

	return id
}

// Wait blocks until all dispatched runs have finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) process(ctx context.Context, id string, req *domain.TaskRequest) error {
	if err := r.pub.EnsureRepo(ctx, req); err != nil {
		return fmt.Errorf("ensure repository: %w", err)
	}

	prior := ""
	if req.Round == 2 {
		doc, found, err := r.pub.PriorDocument(ctx, req.RepoName())
		if err != nil {
			// Generation still works without context; keep going.
			log.Printf("run %s: prior document fetch failed: %v", id, err)
		} else if found {
			prior = doc
		}
	}

	r.setStatus(id, domain.RunGenerating, "")
	art := r.gen.Generate(ctx, req, prior)
	r.events.Emit("run.generated", RunEvent{RunID: id, Task: req.Task, Round: req.Round})

	r.setStatus(id, domain.RunPublishing, "")
	res, err := r.pub.PublishFiles(ctx, req, art)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if jerr := r.journal.UpdateRunResult(id, domain.RunNotifying, res); jerr != nil {
		log.Printf("run %s: journal result update failed: %v", id, jerr)
	}
	r.events.Emit("run.published", RunEvent{RunID: id, Task: req.Task, Round: req.Round})

	payload := domain.Result{
		Email:     req.Email,
		Task:      req.Task,
		Round:     req.Round,
		Nonce:     req.Nonce,
		RepoURL:   res.RepoURL,
		CommitSHA: res.CommitSHA,
		PagesURL:  res.PagesURL,
	}
	if err := r.notifier.Notify(ctx, req.EvaluationURL, payload); err != nil {
		// Published files stay put; side effects are not transactional.
		return fmt.Errorf("notify evaluation endpoint: %w", err)
	}

	r.setStatus(id, domain.RunComplete, "")
	r.events.Emit("run.notified", RunEvent{RunID: id, Task: req.Task, Round: req.Round})
	log.Printf("run %s (%s round %d) complete: %s", id, req.Task, req.Round, res.PagesURL)
	return nil
}

func (r *Runner) setStatus(id string, status domain.RunStatus, errMsg string) {
	if err := r.journal.UpdateRunStatus(id, status, errMsg); err != nil {
		log.Printf("run %s: journal status update failed: %v", id, err)
	}
}
