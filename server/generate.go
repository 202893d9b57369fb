package server

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/twakeham/pathfinder/pkg/chat"
	"github.com/twakeham/pathfinder/pkg/params"
	"github.com/twakeham/pathfinder/pkg/provider"
	"github.com/twakeham/pathfinder/pkg/store"
)

type generateRequest struct {
	Content string         `json:"content"`
	Params  *params.Params `json:"params,omitempty"`

	// Optional per-variant model overrides; the configured models
	// apply when empty.
	ModelA string `json:"model_a,omitempty"`
	ModelB string `json:"model_b,omitempty"`
}

type generateResponse struct {
	User         *store.Message    `json:"user"`
	ResponseA    *store.Message    `json:"response_a,omitempty"`
	ResponseB    *store.Message    `json:"response_b,omitempty"`
	Errors       map[string]string `json:"errors,omitempty"`
	ProviderUsed string            `json:"provider_used"`
}

// streamEvent is one NDJSON line of a streaming generate response.
type streamEvent struct {
	Event   string         `json:"event"` // "user", "response", "error", "done"
	Message *store.Message `json:"message,omitempty"`
	Variant chat.Variant   `json:"variant,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// handleGenerate appends the user message to the log and asks the
// backend for both variant responses concurrently. Each reply that
// arrives is stored under its variant label; one failed variant never
// discards the other's result. ?stream=true delivers the results as
// NDJSON events as they complete.
func (s *Server) handleGenerate(c *fiber.Ctx) error {
	startTime := time.Now()

	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.Error("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "content is required"})
	}

	prov, err := s.pickProvider(c.Query("provider"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	// Parameters with safe defaults and bounds
	p := params.Defaults()
	if req.Params != nil {
		p = req.Params.Clamp()
	}

	convo, err := s.store.GetConversation(c.Context(), c.Params("id"))
	if err != nil {
		return s.storeError(c, err, "failed to load conversation")
	}

	userMsg := &store.Message{
		ConversationID: convo.ID,
		Role:           chat.RoleUser,
		Content:        req.Content,
	}
	if err := s.store.AppendMessage(c.Context(), userMsg); err != nil {
		return s.storeError(c, err, "failed to store user message")
	}

	msgs, err := s.store.ListMessages(c.Context(), convo.ID)
	if err != nil {
		return s.storeError(c, err, "failed to load history")
	}
	history := store.Log(msgs)

	requests := []provider.VariantRequest{
		{Variant: chat.VariantA, Provider: prov, Model: s.modelFor(chat.VariantA, req), Params: p},
		{Variant: chat.VariantB, Provider: prov, Model: s.modelFor(chat.VariantB, req), Params: p},
	}

	s.logger.Debug("generating variant responses",
		zap.String("conversation", convo.ID),
		zap.String("provider", prov.Name()),
		zap.String("content_preview", truncate(req.Content, 100)),
	)

	if c.QueryBool("stream") {
		return s.streamGenerate(c, userMsg, history, requests, startTime)
	}

	replies, _ := provider.Fanout(c.Context(), history, requests)

	resp := generateResponse{User: userMsg, ProviderUsed: prov.Name()}
	failures := map[string]string{}
	for _, reply := range replies {
		if reply.Err != nil {
			s.logger.Error("variant generation failed",
				zap.String("variant", string(reply.Variant)),
				zap.Error(reply.Err),
			)
			failures[string(reply.Variant)] = reply.Err.Error()
			continue
		}

		stored, err := s.storeReply(c.Context(), convo.ID, reply)
		if err != nil {
			s.logger.Error("failed to store variant response", zap.Error(err))
			failures[string(reply.Variant)] = "failed to store response"
			continue
		}

		if reply.Variant == chat.VariantB {
			resp.ResponseB = stored
		} else {
			resp.ResponseA = stored
		}
	}
	if len(failures) > 0 {
		resp.Errors = failures
	}

	if resp.ResponseA == nil && resp.ResponseB == nil {
		return c.Status(fiber.StatusBadGateway).JSON(resp)
	}

	s.logger.Info("turn generated",
		zap.String("conversation", convo.ID),
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("failures", len(failures)),
	)

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// streamGenerate emits NDJSON events while the two variants generate.
// Events: "user" once up front, then one "response" or "error" per
// variant in completion order, then "done".
func (s *Server) streamGenerate(c *fiber.Ctx, userMsg *store.Message, history []chat.Message, requests []provider.VariantRequest, startTime time.Time) error {
	conversationID := userMsg.ConversationID

	c.Set("Content-Type", "application/x-ndjson")
	c.Set("Transfer-Encoding", "chunked")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		var mu sync.Mutex
		emit := func(event streamEvent) {
			mu.Lock()
			defer mu.Unlock()

			line, err := json.Marshal(event)
			if err != nil {
				s.logger.Error("failed to marshal stream event", zap.Error(err))
				return
			}
			w.Write(line)
			w.Write([]byte("\n"))
			w.Flush()
		}

		emit(streamEvent{Event: "user", Message: userMsg})

		// The client may disconnect mid-stream; storage still uses a
		// background context so completed replies are never lost.
		ctx := context.Background()

		var g errgroup.Group
		for _, req := range requests {
			g.Go(func() error {
				generated, err := req.Provider.Chat(ctx, history, req.Model, req.Params)
				if err != nil {
					s.logger.Error("variant generation failed",
						zap.String("variant", string(req.Variant)),
						zap.Error(err),
					)
					emit(streamEvent{Event: "error", Variant: req.Variant, Error: err.Error()})
					return nil
				}

				reply := provider.VariantReply{
					Variant:          req.Variant,
					Provider:         req.Provider.Name(),
					Model:            req.Model,
					Content:          generated.Content,
					PromptTokens:     generated.PromptTokens,
					CompletionTokens: generated.CompletionTokens,
				}
				stored, err := s.storeReply(ctx, conversationID, reply)
				if err != nil {
					s.logger.Error("failed to store variant response", zap.Error(err))
					emit(streamEvent{Event: "error", Variant: req.Variant, Error: "failed to store response"})
					return nil
				}

				emit(streamEvent{Event: "response", Message: stored})
				return nil
			})
		}
		g.Wait()

		emit(streamEvent{Event: "done"})

		s.logger.Info("turn streamed",
			zap.String("conversation", conversationID),
			zap.Duration("duration", time.Since(startTime)),
		)
	}))

	return nil
}

func (s *Server) storeReply(ctx context.Context, conversationID string, reply provider.VariantReply) (*store.Message, error) {
	msg := &store.Message{
		ConversationID:   conversationID,
		Role:             chat.RoleAssistant,
		Variant:          reply.Variant,
		Content:          reply.Content,
		Model:            reply.Model,
		PromptTokens:     reply.PromptTokens,
		CompletionTokens: reply.CompletionTokens,
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Debug("variant response stored",
		zap.String("variant", string(reply.Variant)),
		zap.String("provider", reply.Provider),
		zap.String("content_preview", truncate(reply.Content, 50)),
	)

	return msg, nil
}

// modelFor resolves the model answering a variant: the request override
// when present, otherwise the configured model.
func (s *Server) modelFor(variant chat.Variant, req generateRequest) string {
	if variant == chat.VariantB {
		if req.ModelB != "" {
			return req.ModelB
		}
		return s.config.ModelB
	}
	if req.ModelA != "" {
		return req.ModelA
	}
	return s.config.ModelA
}

func (s *Server) pickProvider(override string) (provider.Provider, error) {
	name := strings.ToLower(strings.TrimSpace(override))
	if name == "" {
		name = s.config.DefaultProvider
	}

	prov, ok := s.providers[name]
	if !ok {
		return nil, &unknownProviderError{name: name}
	}
	return prov, nil
}

type unknownProviderError struct {
	name string
}

func (e *unknownProviderError) Error() string {
	return "unknown provider: " + e.name
}
