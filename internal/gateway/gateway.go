// Package gateway talks to the remote object-storage bucket holding
// the static JSON resources. It makes exactly one attempt per call and
// folds every failure mode into apperr.RemoteError; retry policy is
// the caller's business.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/emipmttt/sellia-challenge/internal/apperr"
	"go.uber.org/zap"
)

// Client performs GET/PUT against a fixed base URL.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a gateway client for the given base URL.
func New(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		logger:  logger,
	}
}

// GetList fetches `{base}/{resource}.json` and normalizes the body
// into one canonical item slice. Both a bare JSON array and a
// `{"data": [...]}` envelope are accepted; any other shape yields an
// empty slice, not an error.
func (c *Client) GetList(ctx context.Context, resource string) ([]json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, resource, nil)
	if err != nil {
		return nil, err
	}
	return normalizeList(body), nil
}

// Put sends body as JSON to `{base}/{resource}.json`. The response
// body is discarded; only the error classification matters to callers.
func (c *Client) Put(ctx context.Context, resource string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &apperr.RemoteError{
			Op:          "put " + resource,
			Message:     fmt.Sprintf("encode body: %v", err),
			UserMessage: apperr.UserMsgUnexpected,
		}
	}
	_, err = c.do(ctx, http.MethodPut, resource, payload)
	return err
}

func (c *Client) do(ctx context.Context, method, resource string, body []byte) ([]byte, error) {
	op := fmt.Sprintf("%s %s", method, resource)
	url := fmt.Sprintf("%s/%s.json", c.baseURL, resource)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &apperr.RemoteError{
			Op:          op,
			Message:     fmt.Sprintf("build request: %v", err),
			UserMessage: apperr.UserMsgUnexpected,
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("op", op), zap.Error(err))
		return nil, &apperr.RemoteError{
			Op:          op,
			Message:     err.Error(),
			UserMessage: apperr.UserMsgConnection,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.RemoteError{
			Op:          op,
			Message:     fmt.Sprintf("read body: %v", err),
			UserMessage: apperr.UserMsgUnexpected,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("unexpected status", zap.String("op", op), zap.Int("status", resp.StatusCode))
		return nil, &apperr.RemoteError{
			Op:          op,
			Message:     fmt.Sprintf("unexpected status %d", resp.StatusCode),
			UserMessage: apperr.UserMsgServer,
			StatusCode:  resp.StatusCode,
		}
	}

	return data, nil
}

// normalizeList folds the two accepted response shapes into one
// canonical slice.
func normalizeList(body []byte) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err == nil {
		return items
	}

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data
	}

	return []json.RawMessage{}
}
