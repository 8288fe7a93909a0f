package session

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/job-portal/internal/catalog"
	"github.com/spigell/job-portal/internal/filtering"
	"github.com/spigell/job-portal/internal/logger"
	"github.com/spigell/job-portal/internal/matching"
	"github.com/spigell/job-portal/internal/portal"
	"github.com/spigell/job-portal/internal/resume"
)

const (
	msgCatalogUnavailable = "Job catalog is unavailable. No postings to show."
	msgNoFileSelected     = "Please select a PDF file first."
	msgUploadInProgress   = "Resume upload is already in progress."
	msgNoCandidate        = "Please upload a resume first."
	msgUnknownJob         = "This job is no longer in the catalog."
	msgMatchPending       = "This job is already being analyzed."
	msgResumeIngested     = "Resume text extracted successfully."
	msgMatchDiscarded     = "Match result discarded because the resume was replaced."
)

// Backend is the remote service behind the session.
type Backend interface {
	Jobs(ctx context.Context) ([]portal.JobPosting, error)
	Upload(ctx context.Context, filename string, document io.Reader) (*portal.Upload, error)
	Match(ctx context.Context, candidateID string, job portal.JobPosting) (*portal.MatchResult, error)
}

// Snapshot is a consistent view of the session for rendering.
type Snapshot struct {
	SessionID string
	Loading   bool
	Query     filtering.Query
	// Jobs is the visible subset of the catalog in catalog order.
	Jobs      []catalog.Job
	Locations []string
	Total     int
	Candidate resume.Candidate
	Uploading bool
	Matches   map[string]matching.Status
	Pending   []string
}

// Session composes the catalog, the resume controller and the match orchestrator.
// Intents return immediately; backend work runs in background goroutines.
type Session struct {
	// ctx used only for backend requests.
	ctx    context.Context
	id     string
	logger *zap.Logger

	store   *catalog.Store
	resume  *resume.Controller
	matcher *matching.Orchestrator
	notices *Notices

	startOnce sync.Once
	wg        sync.WaitGroup

	mu      sync.RWMutex
	query   filtering.Query
	loading bool
}

func New(ctx context.Context, backend Backend, log *zap.Logger) *Session {
	id := uuid.NewString()
	log = logger.WithFields(log, zap.String(logger.FieldSessionID, id))

	store := catalog.New(backend, log.Named("catalog"))
	controller := resume.NewController(backend, log.Named("resume"))

	return &Session{
		ctx:     ctx,
		id:      id,
		logger:  log,
		store:   store,
		resume:  controller,
		matcher: matching.New(backend, controller, store, log.Named("matching")),
		notices: NewNotices(0),
		query:   filtering.DefaultQuery(),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Start loads the catalog once. Later calls do nothing.
func (s *Session) Start() {
	s.startOnce.Do(func() {
		s.mu.Lock()
		s.loading = true
		s.mu.Unlock()

		s.goAsync(func() {
			defer func() {
				s.mu.Lock()
				s.loading = false
				s.mu.Unlock()
			}()

			if err := s.store.Load(s.ctx); err != nil {
				s.logger.Warn("loading job catalog failed, continuing with empty catalog", zap.Error(err))
				s.notices.Publish(Notice{Kind: NoticeWarning, Op: portal.OpJobs, Message: msgCatalogUnavailable})
			}
		})
	})
}

func (s *Session) SelectFile(doc resume.Document) {
	s.resume.Select(doc)
	s.logger.Info("resume file selected", zap.String("file", doc.Name()))
}

// Upload submits the selected resume. Local rejections are returned right away.
func (s *Session) Upload() error {
	submission, err := s.resume.Begin()
	if err != nil {
		s.reject(portal.OpUpload, "", err)
		return err
	}

	s.goAsync(func() {
		err := submission.Run(s.ctx)
		switch {
		case err == nil:
			s.notices.Publish(Notice{Kind: NoticeInfo, Op: portal.OpUpload, Message: msgResumeIngested})
		case errors.Is(err, resume.ErrSuperseded):
		default:
			s.notices.Publish(Notice{Kind: NoticeError, Op: portal.OpUpload, Message: resume.UserMessage(err)})
		}
	})

	return nil
}

func (s *Session) SetSearch(search string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Search = search
}

func (s *Session) SetLocation(location string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Location = location
}

// RequestMatch scores the ingested resume against the job.
func (s *Session) RequestMatch(jobID string) error {
	attempt, err := s.matcher.Begin(jobID)
	if err != nil {
		s.reject(portal.OpMatch, jobID, err)
		return err
	}

	s.goAsync(func() {
		err := attempt.Run(s.ctx)
		switch {
		case err == nil:
		case errors.Is(err, matching.ErrStaleCandidate):
			s.notices.Publish(Notice{Kind: NoticeInfo, Op: portal.OpMatch, JobID: jobID, Message: msgMatchDiscarded})
		default:
			s.notices.Publish(Notice{Kind: NoticeError, Op: portal.OpMatch, JobID: jobID, Message: matching.UserMessage(err)})
		}
	})

	return nil
}

// MatchAll requests a match for every visible job that is not already pending.
// It returns the number of dispatched requests.
func (s *Session) MatchAll() (int, error) {
	if _, ok := s.resume.CandidateID(); !ok {
		s.reject(portal.OpMatch, "", matching.ErrNoCandidate)
		return 0, matching.ErrNoCandidate
	}

	dispatched := 0
	for _, job := range s.Snapshot().Jobs {
		if s.matcher.Status(job.ID) == matching.StatusPending {
			continue
		}
		if err := s.RequestMatch(job.ID); err != nil {
			return dispatched, err
		}
		dispatched++
	}

	return dispatched, nil
}

// Wait blocks until every dispatched backend call has resolved.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) Notices() *Notices {
	return s.notices
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	query := s.query
	loading := s.loading
	s.mu.RUnlock()

	jobs := s.store.Jobs()

	return Snapshot{
		SessionID: s.id,
		Loading:   loading,
		Query:     query,
		Jobs:      filtering.Run(s.logger, filtering.Steps(query), jobs),
		Locations: filtering.AvailableLocations(jobs),
		Total:     len(jobs),
		Candidate: s.resume.Candidate(),
		Uploading: s.resume.Busy(),
		Matches:   s.matcher.Statuses(),
		Pending:   s.matcher.Pending(),
	}
}

func (s *Session) goAsync(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func (s *Session) reject(op, jobID string, err error) {
	s.logger.Info("intent rejected", zap.String("op", op), zap.String("job_id", jobID), zap.Error(err))
	s.notices.Publish(Notice{Kind: NoticeError, Op: op, JobID: jobID, Message: rejectionMessage(err)})
}

func rejectionMessage(err error) string {
	switch {
	case errors.Is(err, resume.ErrNoFileSelected):
		return msgNoFileSelected
	case errors.Is(err, resume.ErrUploadInProgress):
		return msgUploadInProgress
	case errors.Is(err, matching.ErrNoCandidate):
		return msgNoCandidate
	case errors.Is(err, matching.ErrUnknownJob):
		return msgUnknownJob
	case errors.Is(err, matching.ErrMatchPending):
		return msgMatchPending
	default:
		return err.Error()
	}
}
