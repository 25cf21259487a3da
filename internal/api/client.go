package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/chemviz-cli/internal/dataset"
)

// DefaultBaseURL is where the backend listens in a local development setup.
const DefaultBaseURL = "http://127.0.0.1:8000/api"

const maxJSONBody = 4 << 20

// Client talks to the analysis backend. It never retries; every failure is
// returned to the caller once.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient returns a client for baseURL. A zero timeout uses 15s.
func NewClient(baseURL string, httpTimeout time.Duration) *Client {
	if httpTimeout <= 0 {
		httpTimeout = 15 * time.Second
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: httpTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// WithToken sets a bearer token sent on every request.
func (c *Client) WithToken(token string) *Client {
	c.token = strings.TrimSpace(token)
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Upload posts a CSV file as multipart field "file" and returns the stored dataset.
func (c *Client) Upload(ctx context.Context, path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload/", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, readAPIError(resp)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return decodeUpload(b, filepath.Base(path))
}

// decodeUpload accepts either a full dataset object or a bare summary, which
// the reference backend returns for new uploads.
func decodeUpload(b []byte, fallbackName string) (*dataset.Dataset, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if _, ok := probe["summary"]; ok {
		var d dataset.Dataset
		if err := json.Unmarshal(b, &d); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if d.Name == "" {
			d.Name = fallbackName
		}
		return &d, nil
	}
	var s dataset.Summary
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	d := &dataset.Dataset{Name: fallbackName, Summary: s}
	if raw, ok := probe["id"]; ok {
		var id int64
		if err := json.Unmarshal(raw, &id); err == nil {
			d.ID = &id
		}
	}
	return d, nil
}

// History fetches the backend's list of prior datasets, most recent first.
func (c *Client) History(ctx context.Context) (dataset.History, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/history/", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, readAPIError(resp)
	}
	var out dataset.History
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONBody)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if out == nil {
		out = dataset.History{}
	}
	return out, nil
}

// Report requests the PDF report for a dataset. The caller must close the body.
func (c *Client) Report(ctx context.Context, id int64) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/report/"+strconv.FormatInt(id, 10)+"/", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/pdf")
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, readAPIError(resp)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/pdf" {
			resp.Body.Close()
			return nil, fmt.Errorf("report: unexpected content type %q", ct)
		}
	}
	return resp.Body, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("User-Agent", "chemviz-cli")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &UnreachableError{Host: hostOf(c.baseURL), Err: err}
	}
	return resp, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Host
}

// readAPIError decodes an error body ({"error": "..."} or {"detail": "..."})
// and classifies it by status code.
func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	var raw map[string]any
	_ = json.Unmarshal(body, &raw)
	apiErr := &APIError{StatusCode: resp.StatusCode, Raw: raw, RequestID: extractRequestID(resp)}
	for _, k := range []string{"error", "detail", "message"} {
		if msg, ok := raw[k].(string); ok && msg != "" {
			apiErr.Message = msg
			break
		}
	}
	if apiErr.Message == "" && raw == nil {
		apiErr.Message = strings.TrimSpace(string(body))
		if len(apiErr.Message) > 200 {
			apiErr.Message = apiErr.Message[:200]
		}
	}
	return classifyAPIError(apiErr)
}

// classifyAPIError maps generic APIError to typed errors for better UX.
func classifyAPIError(apiErr *APIError) error {
	sc := apiErr.StatusCode
	switch {
	case sc == http.StatusUnauthorized || sc == http.StatusForbidden:
		return &AuthError{APIError: apiErr}
	case sc == http.StatusNotFound:
		return &NotFoundError{APIError: apiErr}
	case sc >= 400 && sc <= 499:
		return &BadRequestError{APIError: apiErr}
	case sc >= 500 && sc <= 599:
		return &ServerError{APIError: apiErr}
	}
	return apiErr
}

// extractRequestID pulls a best-effort request ID from common headers.
func extractRequestID(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	for _, k := range []string{"X-Request-Id", "X-Request-ID", "X-Amzn-Requestid"} {
		if v := resp.Header.Get(k); v != "" {
			return v
		}
	}
	if resp.Request != nil {
		return resp.Request.Header.Get("X-Request-ID")
	}
	return ""
}
