package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// MatchResult is the backend compatibility assessment for one candidate and one job.
type MatchResult struct {
	Score        float64  `json:"match_score"`
	Explanation  string   `json:"explanation"`
	ResumeSkills []string `json:"resume_skills"`
	JobSkills    []string `json:"job_skills"`
}

type matchRequest struct {
	CandidateID string     `json:"candidateId"`
	Job         JobPosting `json:"job"`
}

func (c *Client) postMatch(ctx context.Context, candidateID string, job JobPosting) (*MatchResult, error) {
	payload, err := json.Marshal(matchRequest{CandidateID: candidateID, Job: job})
	if err != nil {
		return nil, &TransportError{Op: OpMatch, Err: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.url(matchPath), bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Op: OpMatch, Err: err}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.request(c.HTTPClient, OpMatch, req)
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, decodeFailure(OpMatch, resp)
	}

	var result MatchResult
	if err := decodeLoose(OpMatch, resp.body, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
