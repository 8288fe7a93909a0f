package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBackendURL = "http://127.0.0.1:5000"
	userAgent         = "spigell/job-portal (spigelly@gmail.com)"

	DefaultRequestTimeout = 30 * time.Second
	// Text extraction on the backend side is slow for large documents.
	DefaultUploadTimeout = 2 * time.Minute
)

const (
	jobsPath   = "/api/jobs"
	uploadPath = "/api/upload"
	matchPath  = "/api/match"

	// ResumeField is the multipart field name the backend reads the document from.
	ResumeField = "resume"
)

// Operation names used in errors and logs.
const (
	OpJobs   = "jobs"
	OpUpload = "upload"
	OpMatch  = "match"
)

type Client struct {
	token  string
	logger *zap.Logger

	HTTPClient   *http.Client
	UploadClient *http.Client
	UserAgent    string
	BackendURL   string
}

func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:      strings.TrimSpace(token),
		BackendURL: DefaultBackendURL,
		HTTPClient: &http.Client{
			Timeout: DefaultRequestTimeout,
		},
		UploadClient: &http.Client{
			Timeout: DefaultUploadTimeout,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// Jobs returns the whole job catalog in the order the backend keeps it.
func (c *Client) Jobs(ctx context.Context) ([]JobPosting, error) {
	return c.getJobs(ctx)
}

// Upload sends the resume document for text extraction and candidate registration.
func (c *Client) Upload(ctx context.Context, filename string, document io.Reader) (*Upload, error) {
	return c.postResume(ctx, filename, document)
}

// Match asks the backend to score the candidate against the job.
func (c *Client) Match(ctx context.Context, candidateID string, job JobPosting) (*MatchResult, error) {
	return c.postMatch(ctx, candidateID, job)
}

func (c *Client) url(path string) string {
	return fmt.Sprintf("%s%s", strings.TrimRight(c.BackendURL, "/"), path)
}
