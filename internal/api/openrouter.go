package api

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/twobai/playerreport/internal/config"
	"github.com/valyala/fasthttp"
)

const maxEventLine = 1 << 20

// OpenRouterClient streams chat completions from OpenRouter.
type OpenRouterClient struct {
	baseURL string
	apiKey  string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewOpenRouterClient(cfg *config.Config, logger zerolog.Logger) *OpenRouterClient {
	return &OpenRouterClient{
		baseURL: strings.TrimRight(cfg.OpenRouterBaseURL, "/"),
		apiKey:  cfg.OpenRouterAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     50,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
			StreamResponseBody:  true,
		},
		logger: logger.With().Str("component", "openrouter").Logger(),
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type completionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// StreamChat sends messages to the model behind route and calls onDelta for
// every text fragment in arrival order. An error from onDelta stops the stream.
func (c *OpenRouterClient) StreamChat(ctx context.Context, route string, messages []ChatMessage, onDelta func(string) error) error {
	body, err := json.Marshal(completionRequest{Model: route, Messages: messages, Stream: true})
	if err != nil {
		return fmt.Errorf("encode completion request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/chat/completions")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.SetBody(body)

	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.Do(req, resp)
	}
	if err != nil {
		return fmt.Errorf("completion request: %w", err)
	}
	defer resp.CloseBodyStream()

	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("completion API error: %d", resp.StatusCode())
	}

	var stream io.Reader = resp.BodyStream()
	if stream == nil {
		stream = bytes.NewReader(resp.Body())
	}

	c.logger.Debug().Str("model", route).Int("messages", len(messages)).Msg("completion stream opened")
	return readEvents(ctx, stream, onDelta)
}

func readEvents(ctx context.Context, r io.Reader, onDelta func(string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventLine)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		payload, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		payload = strings.TrimSpace(payload)
		if payload == "[DONE]" {
			return nil
		}

		var chunk completionChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return fmt.Errorf("decode completion chunk: %w", err)
		}
		if chunk.Error != nil {
			return fmt.Errorf("completion stream error %d: %s", chunk.Error.Code, chunk.Error.Message)
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := onDelta(choice.Delta.Content); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read completion stream: %w", err)
	}
	return nil
}
