package portal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// Upload is the backend answer for an accepted resume.
type Upload struct {
	ExtractedText string `json:"extracted_text"`
	CandidateID   string `json:"candidate_id"`
}

func (c *Client) postResume(ctx context.Context, filename string, document io.Reader) (*Upload, error) {
	if document == nil {
		return nil, &TransportError{Op: OpUpload, Err: errors.New("document is required")}
	}

	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	field, err := w.CreateFormFile(ResumeField, filepath.Base(filename))
	if err != nil {
		return nil, &TransportError{Op: OpUpload, Err: err}
	}

	if _, err = io.Copy(field, document); err != nil {
		return nil, &TransportError{Op: OpUpload, Err: fmt.Errorf("reading document: %w", err)}
	}
	w.Close()

	req, err := c.newRequest(ctx, http.MethodPost, c.url(uploadPath), &b)
	if err != nil {
		return nil, &TransportError{Op: OpUpload, Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.request(c.UploadClient, OpUpload, req)
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, decodeFailure(OpUpload, resp)
	}

	var upload Upload
	if err := decodeLoose(OpUpload, resp.body, &upload); err != nil {
		return nil, err
	}

	upload.CandidateID = strings.TrimSpace(upload.CandidateID)
	if upload.CandidateID == "" {
		return nil, &TransportError{Op: OpUpload, Err: errors.New("backend returned no candidate id")}
	}

	return &upload, nil
}
