package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"

	errs "github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/httputil"
)

// ErrAPIKeyMissing is returned by [NewOpenAI] when no API key is configured.
var ErrAPIKeyMissing = errors.New("OpenAI API key not configured (set OPENAI_API_KEY)")

// DefaultModel is used when [Config.Model] is empty.
const DefaultModel = openai.GPT4o

// Sampling temperatures for generation and assistant calls.
const (
	GenerateTemperature  float32 = 0
	AssistantTemperature float32 = 0.3
)

// Config configures the OpenAI client.
type Config struct {
	APIKey  string
	Model   string // defaults to DefaultModel
	BaseURL string // defaults to the public OpenAI endpoint

	// Attempts bounds calls per request when the API is rate limited or
	// failing with 5xx. Zero uses httputil.DefaultAttempts.
	Attempts int
	// RetryDelay is the first backoff wait. Zero uses httputil.DefaultDelay.
	RetryDelay time.Duration

	// HTTPClient overrides the HTTP client. Its transport should already be
	// instrumented; the default client uses httputil.NewTransport.
	HTTPClient *http.Client
}

// OpenAI implements [Generator] and [Assistant] on the chat completions API.
// It keeps no per-conversation state and is safe for concurrent use.
type OpenAI struct {
	client     *openai.Client
	model      string
	attempts   int
	retryDelay time.Duration
	logger     *log.Logger
}

// NewOpenAI creates a client from cfg. It fails with [ErrAPIKeyMissing]
// when cfg.APIKey is empty.
func NewOpenAI(cfg Config, logger *log.Logger) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	} else {
		oc.HTTPClient = &http.Client{Transport: httputil.NewTransport(nil)}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	attempts := cfg.Attempts
	if attempts == 0 {
		attempts = httputil.DefaultAttempts
	}
	delay := cfg.RetryDelay
	if delay == 0 {
		delay = httputil.DefaultDelay
	}

	return &OpenAI{
		client:     openai.NewClientWithConfig(oc),
		model:      model,
		attempts:   attempts,
		retryDelay: delay,
		logger:     logger,
	}, nil
}

// Model returns the model name requests are sent to.
func (c *OpenAI) Model() string { return c.model }

// Generate implements [Generator]. The model is asked for a JSON object and
// the decoded object is returned as is.
func (c *OpenAI) Generate(ctx context.Context, description string) (map[string]any, error) {
	if err := errs.ValidateDescription(description); err != nil {
		return nil, err
	}
	c.logger.Debug("requesting diagram schema", "model", c.model, "description_length", len(description))

	content, err := c.complete(ctx, GenerateTemperature, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: DiagramPrompt()},
		{Role: openai.ChatMessageRoleUser, Content: description},
	})
	if err != nil {
		return nil, err
	}

	raw, err := decodeObject(content)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeGeneration, err, "model returned invalid diagram JSON")
	}
	c.logger.Debug("received diagram schema", "bytes", len(content))
	return raw, nil
}

// Reply implements [Assistant]. history is sent before message on every
// call. A response that is not the expected JSON object is used verbatim as
// the reply message.
func (c *OpenAI) Reply(ctx context.Context, history Conversation, message string) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, errs.New(errs.ErrCodeInvalidInput, "message cannot be empty")
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: AssistantPrompt()})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	c.logger.Debug("invoking assistant", "model", c.model, "history", len(history))
	content, err := c.complete(ctx, AssistantTemperature, msgs)
	if err != nil {
		return Reply{}, err
	}
	return parseReply(content), nil
}

func (c *OpenAI) complete(ctx context.Context, temperature float32, msgs []openai.ChatCompletionMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	// The request field is omitempty, so an exact zero would fall back to the
	// API default of 1.
	if req.Temperature == 0 {
		req.Temperature = math.SmallestNonzeroFloat32
	}

	var resp openai.ChatCompletionResponse
	err := httputil.RetryNotify(ctx, c.attempts, c.retryDelay, func() error {
		var err error
		resp, err = c.client.CreateChatCompletion(ctx, req)
		if err != nil && httputil.RetryableStatus(statusCode(err)) {
			return &httputil.RetryableError{Err: err}
		}
		return err
	}, func(attempt int, err error, wait time.Duration) {
		c.logger.Warn("model API call failed, retrying", "attempt", attempt, "wait", wait, "error", err)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", errs.Wrap(errs.ErrCodeGeneration, err, "model API request failed")
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errs.New(errs.ErrCodeGeneration, "model returned an empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// decodeObject parses a JSON object, tolerating a surrounding Markdown code fence.
func decodeObject(content string) (map[string]any, error) {
	content = stripFence(content)
	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("expected a JSON object, got null")
	}
	return raw, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// defaultDiagramMessage is shown when the model requests a diagram without
// saying anything.
const defaultDiagramMessage = "Generating your diagram now."

func parseReply(content string) Reply {
	var r Reply
	if err := json.Unmarshal([]byte(stripFence(content)), &r); err != nil {
		return Reply{Message: strings.TrimSpace(content)}
	}
	r.Message = strings.TrimSpace(r.Message)
	r.InvokeDiagramGeneration = strings.TrimSpace(r.InvokeDiagramGeneration)
	switch {
	case r.Message == "" && r.WantsDiagram():
		r.Message = defaultDiagramMessage
	case r.Message == "":
		return Reply{Message: strings.TrimSpace(content)}
	}
	return r
}
