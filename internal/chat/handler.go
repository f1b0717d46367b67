package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/faqbot-platform/faqbot/internal/api"
	"github.com/faqbot-platform/faqbot/internal/config"
	"github.com/faqbot-platform/faqbot/internal/retriever"
)

// ChatRequest is the transport-level chat payload. Zero top_k and
// similarity_threshold fall back to configured defaults.
type ChatRequest struct {
	Question            string  `json:"question" validate:"required,min=1"`
	SessionID           string  `json:"session_id"`
	TopK                int     `json:"top_k" validate:"omitempty,min=1"`
	SimilarityThreshold float64 `json:"similarity_threshold" validate:"omitempty,gte=0,lte=1"`
}

// Handler exposes the chat and session endpoints.
type Handler struct {
	orc      *Orchestrator
	memory   Memory
	defaults config.ChatConfig
	validate *validator.Validate
}

// NewHandler creates a chat handler with the given request defaults.
func NewHandler(orc *Orchestrator, mem Memory, defaults config.ChatConfig) *Handler {
	return &Handler{
		orc:      orc,
		memory:   mem,
		defaults: defaults,
		validate: validator.New(),
	}
}

// Chat answers one question as a streamed text/plain body: a transcript
// prefix, answer chunks flushed as they arrive, then follow-up suggestion
// lines. Failures before the first chunk map to JSON error responses;
// mid-stream failures truncate the body without retracting delivered text.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}
	if req.TopK == 0 {
		req.TopK = h.defaults.TopK
	}
	if req.SimilarityThreshold == 0 {
		req.SimilarityThreshold = h.defaults.SimilarityThreshold
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	w.Header().Set("X-Session-ID", req.SessionID)

	streaming := false
	emit := func(ctx context.Context, chunk string) error {
		if !streaming {
			streaming = true
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "유저: %s\n챗봇: ", req.Question)
		}
		if _, err := fmt.Fprint(w, chunk); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	result, err := h.orc.Answer(r.Context(), AnswerRequest{
		SessionID:           req.SessionID,
		Question:            req.Question,
		TopK:                req.TopK,
		SimilarityThreshold: req.SimilarityThreshold,
	}, emit)
	if err != nil {
		h.writeAnswerError(w, r, err, streaming)
		return
	}

	for _, q := range result.FollowUps {
		fmt.Fprintf(w, "\n챗봇:   - %s", q)
	}
	flusher.Flush()
}

func (h *Handler) writeAnswerError(w http.ResponseWriter, r *http.Request, err error, streaming bool) {
	if errors.Is(err, context.Canceled) || r.Context().Err() != nil {
		return
	}

	slog.Error("answering question", "error", err)

	if streaming {
		// The body is already partially written; the truncated answer
		// stands as delivered.
		return
	}

	switch {
	case errors.Is(err, retriever.ErrUnavailable):
		api.HandleError(w, api.ErrRetrievalUnavailable)
	case errors.Is(err, ErrGenerationUnavailable), errors.Is(err, ErrGenerationInterrupted):
		api.HandleError(w, api.ErrGenerationUnavailable)
	default:
		api.HandleError(w, api.ErrInternalServer)
	}
}

// ClearSession drops all conversation memory for a session. Clearing an
// unknown session succeeds.
func (h *Handler) ClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.memory.Clear(r.Context(), sessionID); err != nil {
		slog.Error("clearing session", "error", err, "session_id", sessionID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusOK, "session cleared")
}
