package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/job-portal/internal/portal"
)

// ErrDuplicateJobID is returned by Load when the backend catalog reuses an id.
var ErrDuplicateJobID = errors.New("duplicate job id in catalog")

// Source provides the catalog postings.
type Source interface {
	Jobs(ctx context.Context) ([]portal.JobPosting, error)
}

// Job is a catalog posting plus the latest match result attached to it.
type Job struct {
	portal.JobPosting
	Match *portal.MatchResult `json:"matchResult"`
}

// Matched reports whether a match result is attached.
func (j Job) Matched() bool {
	return j.Match != nil
}

// Store keeps the catalog in backend order. It is safe for concurrent use.
type Store struct {
	source Source
	logger *zap.Logger

	mu    sync.RWMutex
	jobs  []Job
	index map[string]int
}

func New(source Source, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		source: source,
		logger: logger,
		index:  make(map[string]int),
	}
}

// Load replaces the whole collection with the postings from the source.
// On any error the current collection is kept.
func (s *Store) Load(ctx context.Context) error {
	postings, err := s.source.Jobs(ctx)
	if err != nil {
		return fmt.Errorf("fetching catalog: %w", err)
	}

	jobs := make([]Job, 0, len(postings))
	index := make(map[string]int, len(postings))
	for _, posting := range postings {
		if _, ok := index[posting.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateJobID, posting.ID)
		}
		index[posting.ID] = len(jobs)
		jobs = append(jobs, Job{JobPosting: posting})
	}

	s.mu.Lock()
	s.jobs = jobs
	s.index = index
	s.mu.Unlock()

	s.logger.Info("catalog loaded", zap.Int("count", len(jobs)))
	return nil
}

// Merge attaches result to the job with the given id, replacing any previous
// result. It reports false when no such job exists.
func (s *Store) Merge(jobID string, result *portal.MatchResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index[jobID]
	if !ok {
		s.logger.Warn("ignoring match result for unknown job", zap.String("job_id", jobID))
		return false
	}

	s.jobs[idx].Match = result
	return true
}

// Jobs returns a snapshot of the catalog in backend order.
func (s *Store) Jobs() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]Job, len(s.jobs))
	copy(jobs, s.jobs)
	return jobs
}

func (s *Store) Find(jobID string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.index[jobID]
	if !ok {
		return Job{}, false
	}
	return s.jobs[idx], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
