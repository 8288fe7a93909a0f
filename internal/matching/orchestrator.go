package matching

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/job-portal/internal/catalog"
	"github.com/spigell/job-portal/internal/logger"
	"github.com/spigell/job-portal/internal/portal"
)

var (
	// ErrNoCandidate is returned when a match is requested before a resume is ingested.
	ErrNoCandidate = errors.New("no ingested resume")
	// ErrUnknownJob is returned for a job id missing from the catalog.
	ErrUnknownJob = errors.New("job not found in catalog")
	// ErrMatchPending is returned when the job already has a request in flight.
	ErrMatchPending = errors.New("match already in progress")
	// ErrStaleCandidate is returned by Run when the resume changed while the request was in flight.
	ErrStaleCandidate = errors.New("candidate changed during match")
)

const (
	msgMatchRejected    = "An error occurred during matching."
	msgMatchUnreachable = "Failed to get match result."
)

// Status of the latest match request for a job.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Scorer asks the backend for a match result.
type Scorer interface {
	Match(ctx context.Context, candidateID string, job portal.JobPosting) (*portal.MatchResult, error)
}

// Candidates exposes the ingested candidate id.
type Candidates interface {
	CandidateID() (string, bool)
}

// Catalog is the store match results are merged into.
type Catalog interface {
	Find(jobID string) (catalog.Job, bool)
	Merge(jobID string, result *portal.MatchResult) bool
}

// Orchestrator runs match requests and tracks their status per job.
// Requests for different jobs are independent and may overlap.
type Orchestrator struct {
	scorer     Scorer
	candidates Candidates
	catalog    Catalog
	logger     *zap.Logger

	mu       sync.RWMutex
	statuses map[string]Status
	messages map[string]string
}

func New(scorer Scorer, candidates Candidates, store Catalog, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		scorer:     scorer,
		candidates: candidates,
		catalog:    store,
		logger:     logger.WithFields(log),
		statuses:   make(map[string]Status),
		messages:   make(map[string]string),
	}
}

// Attempt is a match request marked pending and waiting to be executed with Run.
type Attempt struct {
	o           *Orchestrator
	candidateID string
	job         catalog.Job
}

// Begin checks the preconditions and marks the job pending. It never touches the network.
func (o *Orchestrator) Begin(jobID string) (*Attempt, error) {
	candidateID, ok := o.candidates.CandidateID()
	if !ok {
		return nil, ErrNoCandidate
	}

	job, ok := o.catalog.Find(jobID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJob, jobID)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.statuses[jobID] == StatusPending {
		return nil, fmt.Errorf("%w: job %q", ErrMatchPending, jobID)
	}

	o.statuses[jobID] = StatusPending
	delete(o.messages, jobID)

	return &Attempt{o: o, candidateID: candidateID, job: job}, nil
}

// Run sends the request and merges a successful result into the catalog.
// A result for a candidate that is no longer current is dropped and the job goes back to idle.
// The pending marker is replaced by the final status in every outcome.
func (a *Attempt) Run(ctx context.Context) error {
	o := a.o
	jobID := a.job.ID
	log := logger.WithFields(o.logger, logger.MatchFields(a.candidateID, jobID)...)

	final := StatusFailed
	defer func() {
		o.mu.Lock()
		o.statuses[jobID] = final
		o.mu.Unlock()
	}()

	log.Info("requesting match")

	result, err := o.scorer.Match(ctx, a.candidateID, a.job.JobPosting)
	if err != nil {
		message := UserMessage(err)
		o.mu.Lock()
		o.messages[jobID] = message
		o.mu.Unlock()

		log.Warn("match failed", zap.Error(err), zap.String("message", message))
		return fmt.Errorf("matching job %q: %w", jobID, err)
	}

	if current, ok := o.candidates.CandidateID(); !ok || current != a.candidateID {
		final = StatusIdle
		log.Info("discarding match result for a replaced resume", zap.String("current_candidate_id", current))
		return fmt.Errorf("matching job %q: %w", jobID, ErrStaleCandidate)
	}

	if !o.catalog.Merge(jobID, result) {
		return fmt.Errorf("merging match result: %w: %q", ErrUnknownJob, jobID)
	}

	final = StatusSucceeded
	log.Info("match completed", zap.Float64("match_score", result.Score))
	return nil
}

// Request matches the current candidate against the job and blocks until done.
func (o *Orchestrator) Request(ctx context.Context, jobID string) error {
	attempt, err := o.Begin(jobID)
	if err != nil {
		return err
	}
	return attempt.Run(ctx)
}

func (o *Orchestrator) Status(jobID string) Status {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if status, ok := o.statuses[jobID]; ok {
		return status
	}
	return StatusIdle
}

// Statuses returns a copy of every known job status. Jobs never requested are absent.
func (o *Orchestrator) Statuses() map[string]Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return maps.Clone(o.statuses)
}

// Pending returns the sorted ids of jobs with a request in flight.
func (o *Orchestrator) Pending() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	pending := make([]string, 0)
	for id, status := range o.statuses {
		if status == StatusPending {
			pending = append(pending, id)
		}
	}
	slices.Sort(pending)
	return pending
}

// Message returns the user-facing message of the last failed request for the job.
func (o *Orchestrator) Message(jobID string) string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.messages[jobID]
}

// UserMessage converts a match error into the text shown to the user.
func UserMessage(err error) string {
	return portal.UserMessage(err, msgMatchRejected, msgMatchUnreachable)
}
