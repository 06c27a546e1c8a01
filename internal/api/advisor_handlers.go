package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/ads-advisor/internal/advisor"
	"github.com/ignite/ads-advisor/internal/insights"
	"github.com/ignite/ads-advisor/internal/meta"
	"github.com/ignite/ads-advisor/internal/pkg/httputil"
)

// chatRequest is one conversational turn: the user message plus the campaign
// payload the answer should be grounded on.
type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	analyzeRequest
}

// ssePingInterval keeps idle proxies from closing the stream between chunks.
const ssePingInterval = 15 * time.Second

// AdvisorChat streams one advisory turn as Server-Sent Events. Events are
// named chunk/restart/done/error; a restart tells the client to discard the
// partial turn it has rendered so far. Starting a new chat on a session
// cancels the session's previous stream.
func (h *Handlers) AdvisorChat(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	var req chatRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		httputil.BadRequest(w, "message is required")
		return
	}
	filter, ok := parseStatusFilter(req.StatusFilter)
	if !ok {
		httputil.BadRequest(w, "unknown status_filter: "+req.StatusFilter)
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	advReq := h.buildAdvisoryRequest(r.Context(), req, filter)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Session-ID", req.SessionID)

	sctx, release := h.registry.Begin(r.Context(), req.SessionID)
	defer release()

	activeStreams.Inc()
	defer activeStreams.Dec()

	events := make(chan advisor.Event, 16)
	done := make(chan advisor.Result, 1)
	go func() {
		res, err := h.pipeline.Run(sctx, advReq, func(ev advisor.Event) error {
			select {
			case events <- ev:
				return nil
			case <-sctx.Done():
				return sctx.Err()
			}
		})
		if err != nil {
			res.Err = err
		}
		done <- res
	}()

	ticker := time.NewTicker(ssePingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sctx.Done():
			// Client went away or a newer stream took the session over.
			return
		case <-ticker.C:
			fmt.Fprintf(w, "event: ping\ndata: {}\n\n")
			flusher.Flush()
		case ev := <-events:
			writeEvent(w, flusher, ev)
		case res := <-done:
			// Run has returned; flush what it emitted before finishing.
			for {
				select {
				case ev := <-events:
					writeEvent(w, flusher, ev)
				default:
					h.finishChat(r.Context(), req, res)
					return
				}
			}
		}
	}
}

// finishChat records the turn after a stream terminates.
func (h *Handlers) finishChat(ctx context.Context, req chatRequest, res advisor.Result) {
	if res.Attempts > 1 {
		advisoryFallbacksTotal.Add(float64(res.Attempts - 1))
	}
	if res.State != advisor.StateCompleted {
		return
	}
	if h.sessions == nil {
		return
	}
	if err := h.sessions.Append(ctx, req.SessionID, advisor.Message{Role: advisor.RoleUser, Content: req.Message}); err != nil {
		log.Printf("API: append user turn: %v", err)
		return
	}
	if err := h.sessions.Append(ctx, req.SessionID, advisor.Message{Role: advisor.RoleAssistant, Content: res.Text}); err != nil {
		log.Printf("API: append assistant turn: %v", err)
	}
}

// buildAdvisoryRequest assembles the pipeline input: stored history plus the
// new user turn, and the normalized view of the pushed campaign payload.
func (h *Handlers) buildAdvisoryRequest(ctx context.Context, req chatRequest, filter insights.StatusFilter) advisor.AdvisoryRequest {
	records := visibleMetrics(meta.NormalizeAll(req.Campaigns), filter)

	var history []advisor.Message
	if h.sessions != nil {
		stored, err := h.sessions.History(ctx, req.SessionID, h.historyTurns)
		if err != nil {
			log.Printf("API: session history: %v", err)
		} else {
			history = stored
		}
	}
	history = append(history, advisor.Message{Role: advisor.RoleUser, Content: req.Message})

	return advisor.AdvisoryRequest{
		History:  history,
		Records:  records,
		Totals:   insights.Aggregate(records, insights.FilterAll),
		Currency: req.Currency,
		Window:   req.Window,
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, ev advisor.Event) {
	data, _ := json.Marshal(ev)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	flusher.Flush()
}

// AdvisorDiagnostic runs the one-shot account diagnostic and returns the
// buffered report. An empty campaign set is rejected before any model call.
func (h *Handlers) AdvisorDiagnostic(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	filter, ok := parseStatusFilter(req.StatusFilter)
	if !ok {
		httputil.BadRequest(w, "unknown status_filter: "+req.StatusFilter)
		return
	}

	records := visibleMetrics(meta.NormalizeAll(req.Campaigns), filter)
	advReq := advisor.AdvisoryRequest{
		Records:  records,
		Totals:   insights.Aggregate(records, insights.FilterAll),
		Currency: req.Currency,
		Window:   req.Window,
	}

	report, err := h.pipeline.RunDiagnostic(r.Context(), advReq)
	if err != nil {
		if errors.Is(err, advisor.ErrNoData) {
			httputil.UnprocessableEntity(w, "no campaign records to analyze")
			return
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, map[string]interface{}{
		"timestamp": time.Now(),
		"currency":  req.Currency,
		"window":    req.Window,
		"campaigns": len(records),
		"report":    report,
	})
}

// ClearSession drops a session's stored conversation history.
func (h *Handlers) ClearSession(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "session store not configured")
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.sessions.Clear(r.Context(), sessionID); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"status": "cleared", "session_id": sessionID})
}
