package jobqueue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"writer-ai/internal/domain/model"
	"writer-ai/internal/domain/ports/adapter"
)

// Compile-time assurance this client satisfies the port
var _ adapter.JobQueue = (*Client)(nil)

// Client talks to the worker's /enqueue, /status/{id} and /result/{id}
// endpoints. It makes exactly one request per call and never retries.
type Client struct {
	base   string
	client *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("jobqueue: empty base url")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
	}, nil
}

// HTTPError is a non-2xx worker response.
type HTTPError struct {
	Op     string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: worker http %d: %s", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: worker http %d", e.Op, e.Status)
}

// jobID accepts both "job_id": "abc" and "job_id": 123.
type jobID string

func (j *jobID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*j = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*j = jobID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("job_id: expected string or number, got %s", string(b))
	}
	*j = jobID(n.String())
	return nil
}

func (c *Client) Enqueue(ctx context.Context, req adapter.EnqueueRequest) (string, error) {
	var out struct {
		JobID jobID `json:"job_id"`
	}
	if err := c.do(ctx, "enqueue", http.MethodPost, "/enqueue", req, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out.JobID)), nil
}

func (c *Client) Status(ctx context.Context, id string) (model.JobStatus, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, "status", http.MethodGet, "/status/"+url.PathEscape(id), nil, &out); err != nil {
		return model.JobStatusUnknown, err
	}
	return model.ParseJobStatus(strings.ToLower(strings.TrimSpace(out.Status))), nil
}

func (c *Client) Result(ctx context.Context, id string) (adapter.ResultResponse, error) {
	var out adapter.ResultResponse
	if err := c.do(ctx, "result", http.MethodGet, "/result/"+url.PathEscape(id), nil, &out); err != nil {
		return adapter.ResultResponse{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &HTTPError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}
