package portal

import (
	"context"
	"net/http"
)

// JobPosting is one listing of the backend catalog.
type JobPosting struct {
	ID          string `json:"id"`
	Title       string `json:"jobTitle"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (c *Client) getJobs(ctx context.Context) ([]JobPosting, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.url(jobsPath), nil)
	if err != nil {
		return nil, &TransportError{Op: OpJobs, Err: err}
	}

	resp, err := c.request(c.HTTPClient, OpJobs, req)
	if err != nil {
		return nil, err
	}

	if resp.status != http.StatusOK {
		return nil, decodeFailure(OpJobs, resp)
	}

	jobs := make([]JobPosting, 0)
	if err := decodeLoose(OpJobs, resp.body, &jobs); err != nil {
		return nil, err
	}

	return jobs, nil
}
