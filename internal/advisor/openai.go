package advisor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIBackend streams completions from an OpenAI-compatible
// chat/completions endpoint.
type OpenAIBackend struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// openAIMessage mirrors the chat completions message shape.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIRequest is the request body for streaming chat completions.
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Stream      bool            `json:"stream"`
}

// openAIChunk is one SSE data frame of a streaming completion.
type openAIChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIBackend creates a streaming backend against the OpenAI API or any
// compatible server. baseURL may be empty for the hosted API.
func NewOpenAIBackend(apiKey, model, baseURL string) *OpenAIBackend {
	if model == "" {
		model = "gpt-4o"
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIBackend{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		// No client-level timeout: stream lifetime is bounded by the
		// request context.
		httpClient: &http.Client{},
	}
}

// Name identifies the backend in logs and fallback events.
func (o *OpenAIBackend) Name() string {
	return "openai/" + o.model
}

// Stream sends the request with stream=true and forwards each content delta
// to fn as it arrives.
func (o *OpenAIBackend) Stream(ctx context.Context, req ChatRequest, fn StreamFunc) error {
	if o.apiKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}

	messages := make([]openAIMessage, 0, len(req.Messages)+1)
	messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	for _, m := range req.Messages {
		messages = append(messages, openAIMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(openAIRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("chat completions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("chat completions returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	finished := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			return nil
		}

		var chunk openAIChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("parsing stream chunk: %w", err)
		}
		if chunk.Error != nil {
			return fmt.Errorf("API error mid-stream: %s", chunk.Error.Message)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if text := chunk.Choices[0].Delta.Content; text != "" {
			if err := fn(text); err != nil {
				return err
			}
		}
		// Compatible servers that skip the [DONE] marker still set a finish
		// reason on the last chunk.
		if chunk.Choices[0].FinishReason != "" {
			finished = true
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stream: %w", err)
	}
	if !finished {
		return fmt.Errorf("stream ended without terminal marker")
	}
	return nil
}
