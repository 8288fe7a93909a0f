package portal

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/job-portal/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	requestIDHeader = "X-Request-ID"
	maxLogBody      = 200
)

// errorResponse is the payload the backend sends along with a failure status.
type errorResponse struct {
	Error string `json:"error"`
}

type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	return c.setHeaders(req), nil
}

// request executes req and reads the whole body. Any failure to talk to the
// backend or read its answer is reported as a TransportError.
func (c *Client) request(client *http.Client, op string, req *http.Request) (*response, error) {
	logger := c.logger.With(
		zap.String("op", op),
		zap.String("request_id", req.Header.Get(requestIDHeader)),
	)
	logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, &TransportError{Op: op, Err: err}
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	logger.Debug("got response from backend",
		zap.Int("status", resp.StatusCode),
		zap.String("body_preview", utils.TruncateForLog(string(data), maxLogBody)),
	)

	return &response{status: resp.StatusCode, body: data}, nil
}

// decodeFailure builds the error for a non-success response. An unparsable
// failure body is a transport problem, not a backend verdict.
func decodeFailure(op string, resp *response) error {
	var payload errorResponse
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("bad status %d with undecodable body: %w", resp.status, err)}
	}

	return &UpstreamError{
		Op:      op,
		Status:  resp.status,
		Message: strings.TrimSpace(payload.Error),
	}
}

// decodeLoose unmarshals the body into generic values first and then maps them
// onto target by json tags. Weak typing lets numeric ids land in string fields;
// numbers stay json.Number so large ids keep every digit.
func decodeLoose(op string, body []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if raw == nil {
		return &TransportError{Op: op, Err: errors.New("empty response body")}
	}

	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if err := decoder.Decode(raw); err != nil {
		return &TransportError{Op: op, Err: err}
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("Accept", contentType)
	req.Header.Set(requestIDHeader, uuid.NewString())

	return req
}
