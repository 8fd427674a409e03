// Package client is a thin HTTP client for the cognitriage API, used by the
// command line tool.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"

	api "github.com/cognitriage/cognitriage/api/v1alpha1"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{}}
}

// SubmitTriage posts an intake bundle and returns the accepted job ID.
func (c *Client) SubmitTriage(ctx context.Context, req api.IntakeRequest) (*api.SubmitReply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encoding intake")
	}

	var reply api.SubmitReply
	if err := c.do(ctx, http.MethodPost, "/api/v1/triage", bytes.NewReader(body), &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// GetStatus fetches the stage-by-stage progress of a job.
func (c *Client) GetStatus(ctx context.Context, jobID string) (*api.StatusReply, error) {
	var reply api.StatusReply
	if err := c.do(ctx, http.MethodGet, "/api/v1/triage/"+jobID+"/status", nil, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// GetResult fetches the terminal result of a job. For a job still in flight
// the reply carries only the current status.
func (c *Client) GetResult(ctx context.Context, jobID string) (*api.ResultReply, error) {
	var reply api.ResultReply
	if err := c.do(ctx, http.MethodGet, "/api/v1/triage/"+jobID+"/result", nil, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "calling %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr api.Error
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Message, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "decoding response")
}
