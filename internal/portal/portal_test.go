package portal

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New(zap.NewNop(), "")
	client.BackendURL = srv.URL
	return client
}

func TestJobsDecodesNumericIDs(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != jobsPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get(requestIDHeader) == "" {
			t.Errorf("expected request id header")
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("did not expect authorization header without token")
		}
		io.WriteString(w, `[
			{"id": 1, "jobTitle": "Backend Engineer", "company": "Acme", "location": "Remote", "description": "Go"},
			{"id": "x2", "jobTitle": "Designer", "company": "Globex", "location": "Berlin", "description": "Figma"}
		]`)
	})

	jobs, err := client.Jobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []JobPosting{
		{ID: "1", Title: "Backend Engineer", Company: "Acme", Location: "Remote", Description: "Go"},
		{ID: "x2", Title: "Designer", Company: "Globex", Location: "Berlin", Description: "Figma"},
	}
	if diff := cmp.Diff(want, jobs); diff != "" {
		t.Fatalf("jobs mismatch (-want +got):\n%s", diff)
	}
}

func TestJobsKeepsLargeNumericIDs(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `[
			{"id": 9007199254740993, "jobTitle": "Backend Engineer", "company": "Acme", "location": "Remote", "description": "Go"},
			{"id": 9007199254740992, "jobTitle": "Designer", "company": "Globex", "location": "Berlin", "description": "Figma"}
		]`)
	})

	jobs, err := client.Jobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := []string{jobs[0].ID, jobs[1].ID}
	if diff := cmp.Diff([]string{"9007199254740993", "9007199254740992"}, got); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestJobsEmptyCatalog(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `[]`)
	})

	jobs, err := client.Jobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected empty catalog, got %d jobs", len(jobs))
	}
}

func TestJobsGzipResponse(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		io.WriteString(gz, `[{"id": 7, "jobTitle": "SRE", "company": "Initech", "location": "Remote", "description": "k8s"}]`)
		gz.Close()
	})

	jobs, err := client.Jobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != "7" {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
}

func TestUploadSendsMultipartResume(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != uploadPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		file, header, err := r.FormFile(ResumeField)
		if err != nil {
			t.Errorf("reading form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, _ := io.ReadAll(file)
		if string(data) != "%PDF-1.4 resume" {
			t.Errorf("unexpected document content %q", data)
		}
		if header.Filename != "cv.pdf" {
			t.Errorf("unexpected filename %q", header.Filename)
		}

		io.WriteString(w, `{"extracted_text": "Jane Doe...", "candidate_id": 12}`)
	})

	upload, err := client.Upload(context.Background(), "/home/jane/cv.pdf", strings.NewReader("%PDF-1.4 resume"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if upload.CandidateID != "12" {
		t.Fatalf("expected candidate id 12, got %q", upload.CandidateID)
	}
	if upload.ExtractedText != "Jane Doe..." {
		t.Fatalf("unexpected text %q", upload.ExtractedText)
	}
}

func TestUploadUpstreamError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error": "Please upload a valid PDF file"}`)
	})

	_, err := client.Upload(context.Background(), "cv.txt", strings.NewReader("plain"))

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if upstream.Status != http.StatusBadRequest || upstream.Message != "Please upload a valid PDF file" {
		t.Fatalf("unexpected upstream error: %+v", upstream)
	}
}

func TestUploadWithoutCandidateID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"extracted_text": "text"}`)
	})

	_, err := client.Upload(context.Background(), "cv.pdf", strings.NewReader("pdf"))

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestMatchSendsCandidateAndJob(t *testing.T) {
	t.Parallel()

	job := JobPosting{ID: "1", Title: "Backend Engineer", Company: "Acme", Location: "Remote", Description: "Go"}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != contentType {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		if payload["candidateId"] != "c1" {
			t.Errorf("unexpected candidate id %v", payload["candidateId"])
		}
		sent, _ := payload["job"].(map[string]any)
		if sent["jobTitle"] != "Backend Engineer" || sent["id"] != "1" {
			t.Errorf("unexpected job payload %v", sent)
		}

		io.WriteString(w, `{"match_score": 82, "explanation": "solid", "resume_skills": ["Python"], "job_skills": ["Python", "Go"]}`)
	})

	result, err := client.Match(context.Background(), "c1", job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &MatchResult{
		Score:        82,
		Explanation:  "solid",
		ResumeSkills: []string{"Python"},
		JobSkills:    []string{"Python", "Go"},
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("match mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchFailureWithoutJSONBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>bad gateway</html>")
	})

	_, err := client.Match(context.Background(), "c1", JobPosting{ID: "1"})

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if transport.Op != OpMatch {
		t.Fatalf("unexpected op %q", transport.Op)
	}
}

func TestBearerTokenIsSent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("unexpected authorization header %q", r.Header.Get("Authorization"))
		}
		io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	client := New(nil, "  secret\n")
	client.BackendURL = srv.URL + "/"

	if _, err := client.Jobs(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConnectionRefusedIsTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(zap.NewNop(), "")
	client.BackendURL = url

	_, err := client.Jobs(context.Background())

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		expect string
	}{
		{name: "nil", err: nil, expect: ""},
		{name: "upstream with message", err: &UpstreamError{Op: OpMatch, Status: 500, Message: "scoring unavailable"}, expect: "scoring unavailable"},
		{name: "upstream without message", err: &UpstreamError{Op: OpMatch, Status: 500}, expect: "upstream"},
		{name: "wrapped upstream", err: errors.Join(errors.New("ctx"), &UpstreamError{Message: "nope"}), expect: "nope"},
		{name: "transport", err: &TransportError{Op: OpMatch, Err: io.EOF}, expect: "transport"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := UserMessage(tt.err, "upstream", "transport"); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
