// Package restsvc dispatches requests against the backend REST API.
//
// Each call reads the bearer credential from the keystore at call time (not
// at client construction, so a refreshed credential is always used), applies
// the configured deadline, and normalizes success/failure into the payload /
// *APIError pair consumed by the stores. No exception ever propagates raw
// past this boundary.
package restsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type Client struct {
	base    *url.URL
	hc      *http.Client
	keys    core.Keystore
	log     core.Logger
	timeout time.Duration
}

var _ core.API = (*Client)(nil)

func NewClient(conf *core.Config, keys core.Keystore, log core.Logger) (*Client, error) {
	base, err := url.Parse(conf.API.BaseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing API base URL %q", conf.API.BaseURL)
	}
	return &Client{
		base:    base,
		hc:      new(http.Client),
		keys:    keys,
		log:     log,
		timeout: conf.API.Timeout,
	}, nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	data, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return c.decode(data, out)
}

func (c *Client) GetPage(ctx context.Context, path string, query url.Values, out interface{}) (core.Page, error) {
	data, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return core.Page{}, err
	}
	// paginated list payloads nest once more: data.data + data.pagination
	var page struct {
		Data       json.RawMessage `json:"data"`
		Pagination core.Page       `json:"pagination"`
	}
	if err = json.Unmarshal(data, &page); err != nil {
		return core.Page{}, errors.Wrap(err, "decoding paginated payload")
	}
	if err = c.decode(page.Data, out); err != nil {
		return core.Page{}, err
	}
	return page.Pagination, nil
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	data, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	return c.decode(data, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	data, err := c.do(ctx, http.MethodPatch, path, nil, body)
	if err != nil {
		return err
	}
	return c.decode(data, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// do performs one HTTP call and returns the useful payload: the `data` field
// of the response envelope when present, the raw body otherwise.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var buff bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buff).Encode(body); err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), &buff)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s %s", method, path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	// the credential is read at call time so a refreshed token is always used
	var token string
	if _, err = c.keys.Get(core.KeyAccessToken, &token); err != nil {
		return nil, errors.Wrap(err, "reading credential")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		apiErr := transportError(ctx, err)
		c.log.Debug("api request failed", method, path, reqID, apiErr.Message)
		return nil, apiErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "reading response body", cause: err}
	}
	c.log.Debug("api request", method, path, resp.StatusCode, time.Since(start), reqID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, rejectionError(resp.StatusCode, raw)
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err = json.Unmarshal(raw, &env); err == nil && env.Data != nil {
		return env.Data, nil
	}
	return raw, nil
}

func (c *Client) url(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) decode(data json.RawMessage, out interface{}) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "decoding response payload")
	}
	return nil
}

func transportError(ctx context.Context, err error) *APIError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &APIError{Kind: KindTimeout, Message: "request timed out", cause: err}
	}
	return &APIError{Kind: KindTransport, Message: err.Error(), cause: err}
}

// rejectionError extracts the best available message from a non-2xx response:
// the structured `message` field when present, the status text otherwise.
func rejectionError(status int, raw []byte) *APIError {
	kind := KindServer
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = KindUnauthorized
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return &APIError{Kind: kind, Status: status, Message: body.Message}
	}
	if kind == KindServer {
		kind = KindUnstructured
	}
	return &APIError{Kind: kind, Status: status, Message: http.StatusText(status)}
}
