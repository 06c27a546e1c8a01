package advisor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ignite/ads-advisor/internal/insights"
	"github.com/ignite/ads-advisor/internal/meta"
)

// Caller-input errors, rejected before any backend is invoked. These are
// distinct from backend failure, which is reported in-band as advisory text.
var (
	ErrNoData            = errors.New("no campaign data for the requested window")
	ErrEmptyConversation = errors.New("conversation history is empty")
)

// errStreamAborted marks an emit failure: the consumer went away mid-stream.
var errStreamAborted = errors.New("stream consumer aborted")

// State names one phase of an advisory request's lifecycle.
type State string

const (
	StateBuilt      State = "built"      // prompt assembled, no network call yet
	StateAttempting State = "attempting" // invoking a backend in the chain
	StateStreaming  State = "streaming"  // backend accepted, chunks flowing
	StateCompleted  State = "completed"  // stream ended normally
	StateFailed     State = "failed"     // every backend exhausted
	StateCancelled  State = "cancelled"  // caller cancelled; silent terminal state
)

// EventType tags the events delivered to the stream consumer.
type EventType string

const (
	// EventChunk carries one text fragment in backend arrival order.
	EventChunk EventType = "chunk"
	// EventRestart marks an attempt boundary: the previous backend failed
	// mid-stream and its partial output must be discarded by the consumer.
	EventRestart EventType = "restart"
	// EventDone ends a successful stream.
	EventDone EventType = "done"
	// EventError ends an exhausted stream with the single user-facing
	// failure text. Never emitted for cancellation.
	EventError EventType = "error"
)

// Event is one frame of the advisory stream.
type Event struct {
	Type    EventType `json:"type"`
	Text    string    `json:"text,omitempty"`
	Backend string    `json:"backend,omitempty"`
}

// EmitFunc delivers events to the consumer in order. Returning an error
// aborts the request silently.
type EmitFunc func(Event) error

// AdvisoryRequest is one advisory turn: the conversation so far plus the
// aggregated account context it should be answered against. Constructed once
// per user turn and consumed exactly once.
type AdvisoryRequest struct {
	History  []Message
	Records  []meta.CampaignMetrics
	Totals   insights.AccountTotals
	Currency string
	Window   string
}

// Result reports how a request terminated. Text holds the full output of the
// successful attempt only; partial output from failed attempts is discarded.
type Result struct {
	State    State
	Text     string
	Backend  string
	Attempts int
	Err      error
}

// failureMessage is the only user-visible text produced when the whole
// fallback chain is exhausted. Plain advisory-style text, not a fault object,
// so the conversation UI renders it like any other reply.
const failureMessage = "⚠️ I couldn't reach any of my analysis models just now. Your campaign data is unaffected - please try again in a moment."

const (
	defaultTimeout     = 120 * time.Second
	defaultMaxTokens   = 4000
	defaultTemperature = 0.7
)

// Pipeline runs advisory requests against an ordered chain of model
// backends, falling back on failure. The chain is fixed at construction;
// there is no shared mutable client state.
type Pipeline struct {
	backends    []Backend
	timeout     time.Duration
	maxTokens   int
	temperature float64
}

// NewPipeline creates a pipeline over the given backend priority order.
// timeout bounds the total wall-clock time of one request across all
// attempts; zero selects the default.
func NewPipeline(backends []Backend, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Pipeline{
		backends:    backends,
		timeout:     timeout,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
	}
}

// SetGeneration overrides the token budget and sampling temperature sent to
// every backend. Zero values keep the defaults.
func (p *Pipeline) SetGeneration(maxTokens int, temperature float64) {
	if maxTokens > 0 {
		p.maxTokens = maxTokens
	}
	if temperature > 0 {
		p.temperature = temperature
	}
}

// Run executes one conversational advisory turn, streaming events to emit.
// The returned error is non-nil only for invalid caller input; every other
// outcome, including exhaustion and cancellation, is reported in the Result.
func (p *Pipeline) Run(ctx context.Context, req AdvisoryRequest, emit EmitFunc) (Result, error) {
	if len(req.History) == 0 {
		return Result{State: StateBuilt}, ErrEmptyConversation
	}
	return p.run(ctx, buildConversation(req), emit), nil
}

// RunDiagnostic executes the one-shot account diagnostic: a single
// synthesized prompt covering six fixed sections, buffered to completion.
// Backend exhaustion is reported in-band as advisory text so it renders like
// any other reply; the returned error covers invalid input and cancellation.
func (p *Pipeline) RunDiagnostic(ctx context.Context, req AdvisoryRequest) (string, error) {
	if len(req.Records) == 0 {
		return "", ErrNoData
	}

	messages := []Message{{Role: RoleUser, Content: buildDiagnosticPrompt(req)}}

	var buf strings.Builder
	res := p.run(ctx, messages, func(ev Event) error {
		switch ev.Type {
		case EventChunk:
			buf.WriteString(ev.Text)
		case EventRestart:
			buf.Reset()
		case EventError:
			buf.Reset()
			buf.WriteString(ev.Text)
		}
		return nil
	})

	if res.State == StateCancelled {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "", context.Canceled
	}
	return buf.String(), nil
}

// run drives the state machine over the backend chain. Each attempt gets a
// full re-prompt; output from a failed attempt never reaches the final text.
func (p *Pipeline) run(ctx context.Context, messages []Message, emit EmitFunc) Result {
	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	chatReq := ChatRequest{
		System:      buildSystemPrompt(),
		Messages:    messages,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}

	res := Result{State: StateBuilt}
	var lastErr error

	for i, backend := range p.backends {
		if err := cctx.Err(); err != nil {
			if ctx.Err() != nil {
				res.State = StateCancelled
				return res
			}
			// Overall ceiling hit: remaining attempts cannot run.
			lastErr = err
			break
		}

		res.State = StateAttempting
		res.Attempts = i + 1
		log.Printf("Advisor: attempt %d/%d via %s", i+1, len(p.backends), backend.Name())

		var buf strings.Builder
		forwarded := false

		err := backend.Stream(cctx, chatReq, func(chunk string) error {
			res.State = StateStreaming
			if err := emit(Event{Type: EventChunk, Text: chunk, Backend: backend.Name()}); err != nil {
				return fmt.Errorf("%w: %v", errStreamAborted, err)
			}
			forwarded = true
			buf.WriteString(chunk)
			return nil
		})

		if err == nil {
			res.State = StateCompleted
			res.Text = buf.String()
			res.Backend = backend.Name()
			if err := emit(Event{Type: EventDone, Backend: backend.Name()}); err != nil {
				log.Printf("Advisor: done event not delivered: %v", err)
			}
			return res
		}

		// Caller cancellation and consumer loss end the request silently.
		if ctx.Err() != nil || errors.Is(err, errStreamAborted) {
			res.State = StateCancelled
			return res
		}

		lastErr = err
		log.Printf("Advisor: backend %s failed: %v", backend.Name(), err)

		// The consumer saw partial output from this attempt; tell it to
		// discard the turn before the next backend re-streams from scratch.
		if forwarded {
			if err := emit(Event{Type: EventRestart, Backend: backend.Name()}); err != nil {
				res.State = StateCancelled
				return res
			}
		}
	}

	if lastErr == nil {
		lastErr = errors.New("no backends configured")
	}

	res.State = StateFailed
	res.Err = lastErr
	log.Printf("Advisor: all %d backends exhausted: %v", len(p.backends), lastErr)
	if err := emit(Event{Type: EventError, Text: failureMessage}); err != nil {
		log.Printf("Advisor: error event not delivered: %v", err)
	}
	return res
}

// buildConversation copies the history and rides the account context block
// on the newest user turn, so every backend sees identical input.
func buildConversation(req AdvisoryRequest) []Message {
	messages := make([]Message, len(req.History))
	copy(messages, req.History)

	contextBlock := buildContextMessage(req)
	last := len(messages) - 1
	if messages[last].Role == RoleUser {
		messages[last] = Message{
			Role:    RoleUser,
			Content: contextBlock + "\n\nUser question: " + messages[last].Content,
		}
	} else {
		messages = append(messages, Message{Role: RoleUser, Content: contextBlock})
	}
	return messages
}
