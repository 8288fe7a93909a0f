package resume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/job-portal/internal/portal"
	"github.com/spigell/job-portal/internal/utils"
)

var (
	// ErrNoFileSelected is returned when a submission is attempted before a document is chosen.
	ErrNoFileSelected = errors.New("no resume file selected")
	// ErrUploadInProgress is returned while a previous submission is still awaiting the backend.
	ErrUploadInProgress = errors.New("resume upload already in progress")
	// ErrSuperseded is returned by a submission whose result was discarded
	// because another file was selected or submitted in the meantime.
	ErrSuperseded = errors.New("resume submission superseded")
)

const (
	msgUploadRejected    = "An error occurred during upload."
	msgUploadUnreachable = "Failed to connect to the backend."
	msgUnreadableFile    = "Failed to read the selected resume file."

	previewLength = 120
)

type State string

const (
	StateIdle      State = "idle"
	StateSelected  State = "selected"
	StateUploading State = "uploading"
	StateIngested  State = "ingested"
	StateFailed    State = "failed"
)

// Uploader sends a document to the backend for text extraction.
type Uploader interface {
	Upload(ctx context.Context, filename string, document io.Reader) (*portal.Upload, error)
}

// Candidate is a snapshot of the submission state.
type Candidate struct {
	State    State
	Document *Document
	// Text and ID are set only in StateIngested.
	Text string
	ID   string
	// Error is the user-facing message of the last failed attempt.
	Error string
}

// Controller owns the lifecycle of the single resume submission of a session.
type Controller struct {
	uploader Uploader
	logger   *zap.Logger

	mu         sync.Mutex
	state      State
	doc        *Document
	text       string
	id         string
	message    string
	generation uint64
}

func NewController(uploader Uploader, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Controller{
		uploader: uploader,
		logger:   logger,
		state:    StateIdle,
	}
}

// Select makes doc the current document and invalidates any previous submission,
// including one still in flight.
func (c *Controller) Select(doc Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUploading {
		c.logger.Info("resume selected while upload in flight, previous result will be discarded",
			zap.String("file", doc.Name()),
		)
	}

	c.doc = &doc
	c.state = StateSelected
	c.text = ""
	c.id = ""
	c.message = ""
	c.generation++
}

// Submission is a started upload waiting to be executed with Run.
type Submission struct {
	c          *Controller
	doc        Document
	generation uint64
}

// Begin validates the current state and moves the controller to StateUploading.
// It never touches the network.
func (c *Controller) Begin() (*Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.doc == nil {
		return nil, ErrNoFileSelected
	}

	if c.state == StateUploading {
		return nil, ErrUploadInProgress
	}

	c.generation++
	c.state = StateUploading
	c.text = ""
	c.id = ""
	c.message = ""

	return &Submission{c: c, doc: *c.doc, generation: c.generation}, nil
}

// Run uploads the document and records the outcome unless the submission was
// superseded meanwhile.
func (s *Submission) Run(ctx context.Context) error {
	c := s.c
	logger := c.logger.With(zap.String("file", s.doc.Name()), zap.Uint64("generation", s.generation))

	logger.Info("uploading resume")

	upload, err := s.upload(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if s.generation != c.generation {
		logger.Info("discarding superseded resume submission", zap.Bool("failed", err != nil))
		return ErrSuperseded
	}

	if err != nil {
		c.state = StateFailed
		c.message = UserMessage(err)
		logger.Warn("resume upload failed", zap.Error(err), zap.String("message", c.message))
		return fmt.Errorf("uploading resume: %w", err)
	}

	c.state = StateIngested
	c.text = upload.ExtractedText
	c.id = upload.CandidateID

	logger.Info("resume ingested",
		zap.String("candidate_id", upload.CandidateID),
		zap.Int("text_length", utf8.RuneCountInString(upload.ExtractedText)),
	)
	logger.Debug("extracted resume text", zap.String("text_preview", utils.TruncateForLog(upload.ExtractedText, previewLength)))

	return nil
}

func (s *Submission) upload(ctx context.Context) (*portal.Upload, error) {
	r, err := s.doc.reader()
	if err != nil {
		return nil, &readError{err: err}
	}
	defer r.Close()

	return s.c.uploader.Upload(ctx, s.doc.Name(), r)
}

// Submit uploads the selected document and blocks until the backend answers.
func (c *Controller) Submit(ctx context.Context) error {
	s, err := c.Begin()
	if err != nil {
		return err
	}
	return s.Run(ctx)
}

// Busy reports whether a submission is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateUploading
}

// CandidateID returns the backend candidate id once the resume is ingested.
func (c *Controller) CandidateID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIngested {
		return "", false
	}
	return c.id, true
}

func (c *Controller) Candidate() Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidate := Candidate{
		State: c.state,
		Text:  c.text,
		ID:    c.id,
		Error: c.message,
	}
	if c.doc != nil {
		doc := *c.doc
		candidate.Document = &doc
	}
	return candidate
}

type readError struct {
	err error
}

func (e *readError) Error() string { return fmt.Sprintf("reading resume file: %v", e.err) }

func (e *readError) Unwrap() error { return e.err }

// UserMessage converts a submission error into the text shown to the user.
func UserMessage(err error) string {
	var re *readError
	if errors.As(err, &re) {
		return msgUnreadableFile
	}
	return portal.UserMessage(err, msgUploadRejected, msgUploadUnreachable)
}
