package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/safespace-labs/safespace/pkg/config"
	"github.com/safespace-labs/safespace/pkg/httputil"
)

// ModelClient turns prompts into raw model text output. Implementations
// mask transient provider failures where they can; ErrProviderExhausted
// means nothing more can be done at this tier.
type ModelClient interface {
	Complete(ctx context.Context, prompt, systemPrompt string) (string, error)
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

type modelRequest struct {
	ctx          context.Context
	prompt       string
	systemPrompt string
	result       chan modelResult
}

type modelResult struct {
	content string
	err     error
}

// RemoteClient is the chat-completions ModelClient. All outbound calls
// funnel through one worker goroutine: strictly FIFO, one in flight,
// with a fixed delay between requests to respect provider rate limits.
type RemoteClient struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	models      []string
	temperature float64
	maxTokens   int
	delay       time.Duration

	queue chan *modelRequest

	closeOnce sync.Once
	closed    chan struct{}

	// currentModel is the index of the model to try first. Only the
	// worker goroutine touches it. It advances past rate-limited or
	// unavailable models and resets to 0 after any success.
	currentModel int
}

// NewRemoteClient builds a client from config and starts its request
// worker. Call Close when done to stop the worker.
func NewRemoteClient(cfg *config.Config) *RemoteClient {
	c := &RemoteClient{
		client:      httputil.NewClient(cfg.RequestTimeout),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		models:      cfg.Models,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		delay:       cfg.QueueDelay,
		queue:       make(chan *modelRequest, 64),
		closed:      make(chan struct{}),
	}
	go c.drainQueue()
	return c
}

// Close stops the request worker. Pending requests fail with
// ErrProviderExhausted.
func (c *RemoteClient) Close() {
	c.closeOnce.Do(func() { close(c.closed) })
}

// Complete enqueues a completion request and blocks until it resolves in
// FIFO order. A canceled context abandons the request; the worker still
// completes it but the result is discarded.
func (c *RemoteClient) Complete(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	select {
	case <-c.closed:
		return "", ErrProviderExhausted
	default:
	}

	req := &modelRequest{
		ctx:          ctx,
		prompt:       prompt,
		systemPrompt: systemPrompt,
		result:       make(chan modelResult, 1),
	}

	select {
	case c.queue <- req:
	case <-c.closed:
		return "", ErrProviderExhausted
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case res := <-req.result:
		return res.content, res.err
	case <-c.closed:
		return "", ErrProviderExhausted
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *RemoteClient) drainQueue() {
	for {
		select {
		case <-c.closed:
			c.failPending()
			return
		case req := <-c.queue:
			content, err := c.completeWithFallback(req.ctx, req.prompt, req.systemPrompt)
			req.result <- modelResult{content: content, err: err}

			select {
			case <-time.After(c.delay):
			case <-c.closed:
				c.failPending()
				return
			}
		}
	}
}

// failPending answers everything still queued at shutdown. Result
// channels are buffered, so the sends cannot block.
func (c *RemoteClient) failPending() {
	for {
		select {
		case req := <-c.queue:
			req.result <- modelResult{err: ErrProviderExhausted}
		default:
			return
		}
	}
}

// completeWithFallback walks the model list starting at the sticky
// currentModel index. Rate limits, outages, and network errors advance to
// the next model; success resets the pointer so a later call is not
// penalized by this call's transient failures.
func (c *RemoteClient) completeWithFallback(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if len(c.models) == 0 {
		return "", ErrProviderExhausted
	}

	// The walk starts where the last call left off. idx derives from the
	// captured start, not the sticky pointer, so advancing the pointer on
	// failure cannot double-step the walk itself.
	start := c.currentModel
	var lastErr error
	for attempt := 0; attempt < len(c.models); attempt++ {
		idx := (start + attempt) % len(c.models)
		model := c.models[idx]

		content, err := c.callModel(ctx, model, prompt, systemPrompt)
		if err == nil {
			c.currentModel = 0
			return content, nil
		}
		if err == context.Canceled || err == context.DeadlineExceeded || ctx.Err() != nil {
			return "", err
		}
		if strings.Contains(err.Error(), "status 401") || strings.Contains(err.Error(), "status 403") {
			return "", fmt.Errorf("%w: %s", ErrUnauthorized, model)
		}

		log.Printf("[MODEL] %s failed (%v), trying next model", model, err)
		c.currentModel = (idx + 1) % len(c.models)
		lastErr = err
	}

	return "", fmt.Errorf("%w: last error: %v", ErrProviderExhausted, lastErr)
}

func (c *RemoteClient) callModel(ctx context.Context, model, prompt, systemPrompt string) (string, error) {
	msgs := make([]message, 0, 2)
	if systemPrompt != "" {
		msgs = append(msgs, message{Role: "system", Content: systemPrompt})
	}
	msgs = append(msgs, message{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, httputil.MaxResponseSize))
	if err != nil {
		return "", err
	}

	switch {
	case resp.StatusCode == 200:
	case resp.StatusCode == 429:
		return "", fmt.Errorf("%w: status 429: %s", ErrRateLimited, model)
	case resp.StatusCode == 503:
		return "", fmt.Errorf("%w: status 503: %s", ErrUnavailable, model)
	default:
		return "", fmt.Errorf("API error status %d: %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal error: %w", err)
	}

	// A 200 without the expected content field is treated as an empty
	// reply, not an error. The caller's JSON extraction fails and the
	// keyword tier takes over.
	if len(result.Choices) == 0 {
		return "", nil
	}
	return result.Choices[0].Message.Content, nil
}
