package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/twobai/playerreport/internal/api"
	"github.com/twobai/playerreport/internal/constants"
	"github.com/twobai/playerreport/internal/persona"
	"github.com/twobai/playerreport/internal/report"
	"github.com/twobai/playerreport/internal/service"
)

const maxChatBody = 1 << 20

type Analyzer interface {
	Analyze(ctx context.Context, playerName string) (report.Document, error)
	Suggestions(ctx context.Context, prefix string) ([]string, error)
}

type Generator interface {
	StreamChat(ctx context.Context, route string, messages []api.ChatMessage, onDelta func(string) error) error
}

// ChatServer serves the chat front-end: analysis-backed chat streaming,
// the model picker and name suggestions.
type ChatServer struct {
	analysis  Analyzer
	generator Generator
	personas  *persona.Table
	logger    zerolog.Logger
}

func NewChatServer(analysis Analyzer, generator Generator, personas *persona.Table, logger zerolog.Logger) *ChatServer {
	return &ChatServer{analysis: analysis, generator: generator, personas: personas, logger: logger}
}

func (s *ChatServer) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("GET /api/suggestions", s.handleSuggestions)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

type messagePart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type uiMessage struct {
	ID    string        `json:"id,omitempty"`
	Role  string        `json:"role"`
	Parts []messagePart `json:"parts"`
}

type chatRequest struct {
	Messages        []uiMessage `json:"messages"`
	SelectedModelID string      `json:"selectedModelId"`
	IsAnalysis      bool        `json:"isAnalysis"`
	PlayerName      string      `json:"playerName"`
}

type streamEvent struct {
	Type      string `json:"type"`
	Delta     string `json:"delta,omitempty"`
	ErrorText string `json:"errorText,omitempty"`
}

func (s *ChatServer) handleChat(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	if logger.GetLevel() == zerolog.Disabled {
		logger = &s.logger
	}

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages are required")
		return
	}

	model, err := s.personas.Lookup(req.SelectedModelID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	messages := req.Messages
	if req.IsAnalysis && strings.TrimSpace(req.PlayerName) != "" {
		doc, err := s.analysis.Analyze(r.Context(), req.PlayerName)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		messages = replaceLastText(messages, doc.Text)
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx, cancel := context.WithTimeout(r.Context(), constants.GenerationTimeout)
	defer cancel()

	err = s.generator.StreamChat(ctx, model.Route, toCompletionMessages(model.SystemPrompt, messages), func(delta string) error {
		return writeEvent(w, flusher, streamEvent{Type: "text-delta", Delta: delta})
	})
	if err != nil {
		logger.Error().Err(err).Str("model", model.ID).Msg("generation stream failed")
		_ = writeEvent(w, flusher, streamEvent{Type: "error", ErrorText: constants.StreamErrorText})
		return
	}

	_ = writeEvent(w, flusher, streamEvent{Type: "finish"})
	logger.Info().Str("model", model.ID).Bool("analysis", req.IsAnalysis).Msg("chat stream completed")
}

func (s *ChatServer) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default": constants.DefaultModelID,
		"models":  s.personas.Models(),
	})
}

func (s *ChatServer) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	names, err := s.analysis.Suggestions(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load suggestions")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": names})
}

// replaceLastText swaps the final message's content for text, leaving the
// caller's slice untouched.
func replaceLastText(messages []uiMessage, text string) []uiMessage {
	out := make([]uiMessage, len(messages))
	copy(out, messages)
	last := out[len(out)-1]
	last.Parts = []messagePart{{Type: "text", Text: text}}
	out[len(out)-1] = last
	return out
}

func toCompletionMessages(system string, messages []uiMessage) []api.ChatMessage {
	out := make([]api.ChatMessage, 0, len(messages)+1)
	out = append(out, api.ChatMessage{Role: "system", Content: system})
	for _, m := range messages {
		var b strings.Builder
		for _, p := range m.Parts {
			if p.Type == "text" {
				b.WriteString(p.Text)
			}
		}
		if b.Len() == 0 {
			continue
		}
		switch m.Role {
		case "user", "assistant":
			out = append(out, api.ChatMessage{Role: m.Role, Content: b.String()})
		}
	}
	return out
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, ev streamEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

var _ Analyzer = (*service.AnalysisService)(nil)
var _ Generator = (*api.OpenRouterClient)(nil)
