// Package client is a Go client for the archdiagram HTTP API.
//
// Requests are retried on connection failures and on 429, 503 and 504
// responses, except a 503 reporting that the server has no generator
// configured. Other failures, including 502 from the generation service,
// are returned without retrying since each attempt would call the model
// again.
//
//	c, err := client.New("http://localhost:8000")
//	img, err := c.GenerateDiagram(ctx, "Two EC2 servers behind an ALB")
//	path, err := img.Save(".")
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/matzehuels/archdiagram/pkg/api"
	"github.com/matzehuels/archdiagram/pkg/buildinfo"
	errs "github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/generate"
	"github.com/matzehuels/archdiagram/pkg/httputil"
)

// DefaultRetryMax is the number of retries after the first attempt.
const DefaultRetryMax = 3

// Client talks to one API server. It is safe for concurrent use.
type Client struct {
	base   *url.URL
	http   *retryablehttp.Client
	logger *log.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithLogger sets the logger used for request and retry messages.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRetryMax sets the number of retries after the first attempt.
func WithRetryMax(n int) Option {
	return func(c *Client) { c.http.RetryMax = n }
}

// WithRetryWait sets the minimum and maximum backoff between retries.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.http.RetryWaitMin = minWait
		c.http.RetryWaitMax = maxWait
	}
}

// WithTimeout bounds each HTTP attempt. Rendering a generated diagram may
// take tens of seconds; the default is two minutes.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.HTTPClient.Timeout = d }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", baseURL)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = DefaultRetryMax
	rc.CheckRetry = checkRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.HTTPClient.Timeout = 2 * time.Minute
	rc.HTTPClient.Transport = httputil.NewTransport(rc.HTTPClient.Transport)

	c := &Client{base: u, http: rc, logger: log.NewWithOptions(io.Discard, log.Options{})}
	for _, opt := range opts {
		opt(c)
	}
	rc.Logger = leveledLogger{c.logger}
	return c, nil
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil && resp != nil {
		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusGatewayTimeout:
			return true, nil
		case http.StatusServiceUnavailable:
			return !notConfigured(resp), nil
		}
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// notConfigured reports whether a 503 body carries the NOT_CONFIGURED code.
// The body is restored for the caller.
func notConfigured(resp *http.Response) bool {
	if resp.Body == nil {
		return false
	}
	head, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	resp.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), resp.Body), resp.Body}

	var body struct {
		Code string `json:"code"`
	}
	return json.Unmarshal(head, &body) == nil && body.Code == string(errs.ErrCodeNotConfigured)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Detail     string
	Code       string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.Detail)
}

// Health is the body of GET /health.
type Health struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.getJSON(ctx, "/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// NodeTypes lists the node types the server can render.
func (c *Client) NodeTypes(ctx context.Context) ([]api.NodeType, error) {
	var resp api.NodeTypesResponse
	if err := c.getJSON(ctx, "/api/v1/node-types", &resp); err != nil {
		return nil, err
	}
	return resp.Types, nil
}

// Assistant sends one chat message with its preceding history.
func (c *Client) Assistant(ctx context.Context, message string, history generate.Conversation) (generate.Reply, error) {
	var reply generate.Reply
	body := api.AssistantRequest{Message: message, Context: history}
	if err := c.postJSON(ctx, "/api/v1/assistant", body, &reply); err != nil {
		return generate.Reply{}, err
	}
	return reply, nil
}

// GenerateDiagram asks the server to generate and render a diagram.
func (c *Client) GenerateDiagram(ctx context.Context, description string) (*Image, error) {
	return c.postImage(ctx, "/api/v1/generate-diagram", api.GenerateRequest{Description: description})
}

// RenderDiagram asks the server to render an existing schema.
func (c *Client) RenderDiagram(ctx context.Context, raw map[string]any) (*Image, error) {
	return c.postImage(ctx, "/api/v1/render-diagram", raw)
}

// Image is a rendered diagram returned by the server.
type Image struct {
	Filename string
	Data     []byte
}

// Save writes the image into dir under its server-assigned file name and
// returns the written path.
func (img *Image) Save(dir string) (string, error) {
	path := filepath.Join(dir, filepath.Base(img.Filename))
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, path, data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postImage(ctx context.Context, path string, in any) (*Image, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, path, data)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &Image{Filename: attachmentName(resp.Header), Data: img}, nil
}

// do sends a request and converts non-2xx responses to [*StatusError].
// The caller closes the body of a successful response.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	u := c.base.JoinPath(path)
	var payload any
	if body != nil {
		payload = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("sending api request", "method", method, "url", u.String())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode/100 == 2 {
		return resp, nil
	}
	defer resp.Body.Close()

	se := &StatusError{StatusCode: resp.StatusCode}
	var eb struct {
		Detail string `json:"detail"`
		Code   string `json:"code"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &eb) == nil && eb.Detail != "" {
		se.Detail, se.Code = eb.Detail, eb.Code
	} else {
		se.Detail = strings.TrimSpace(string(raw))
	}
	return nil, se
}

func attachmentName(h http.Header) string {
	if _, params, err := mime.ParseMediaType(h.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	return "diagram.png"
}

// leveledLogger adapts a charm logger to retryablehttp.LeveledLogger.
type leveledLogger struct{ l *log.Logger }

func (a leveledLogger) Error(msg string, kv ...any) { a.l.Error(msg, kv...) }
func (a leveledLogger) Info(msg string, kv ...any)  { a.l.Info(msg, kv...) }
func (a leveledLogger) Debug(msg string, kv ...any) { a.l.Debug(msg, kv...) }
func (a leveledLogger) Warn(msg string, kv ...any)  { a.l.Warn(msg, kv...) }

var _ retryablehttp.LeveledLogger = leveledLogger{}

