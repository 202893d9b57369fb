// Package server exposes the conversation log, turn reconstruction and
// A/B generation over HTTP.
package server

import (
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"strings"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/twakeham/pathfinder/pkg/chat"
	"github.com/twakeham/pathfinder/pkg/markdown"
	"github.com/twakeham/pathfinder/pkg/provider"
	"github.com/twakeham/pathfinder/pkg/store"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server owns the HTTP API: conversation CRUD, the message log, the
// reconstructed turn views, and the generate endpoint that fans a user
// message out to the two variant providers.
type Server struct {
	config    Config
	store     store.Store
	providers map[string]provider.Provider
	logger    *zap.Logger
	app       *fiber.App
}

// New creates a Server. Storage is SQLite when config.DBPath is set and
// in-memory otherwise; the echo provider is always registered, the
// ollama provider only when an upstream URL is configured.
func New(config Config, logger *zap.Logger) (*Server, error) {
	config = config.withDefaults()

	var st store.Store
	if config.DBPath != "" {
		var err error
		st, err = store.NewSQLite(config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite store: %w", err)
		}
		logger.Info("using SQLite storage", zap.String("path", config.DBPath))
	} else {
		st = store.NewMemory()
		logger.Info("using in-memory storage")
	}

	providers := map[string]provider.Provider{
		"echo": provider.Echo{},
	}
	if config.UpstreamURL != "" {
		providers["ollama"] = provider.NewOllama(config.UpstreamURL)
		logger.Info("ollama provider enabled", zap.String("upstream", config.UpstreamURL))
	}
	if _, ok := providers[config.DefaultProvider]; !ok {
		return nil, fmt.Errorf("default provider %q is not available", config.DefaultProvider)
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		// Enable streaming
		StreamRequestBody: true,
	})

	s := &Server{
		config:    config,
		store:     st,
		providers: providers,
		logger:    logger,
		app:       app,
	}

	s.registerRoutes(app)

	return s, nil
}

func (s *Server) registerRoutes(app *fiber.App) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	app.Post("/api/conversations", s.handleCreateConversation)
	app.Get("/api/conversations", s.handleListConversations)
	app.Get("/api/conversations/:id/messages", s.handleListMessages)
	app.Post("/api/conversations/:id/messages", s.handleAppendMessage)
	app.Get("/api/conversations/:id/turns", s.handleTurns)
	app.Post("/api/conversations/:id/generate", s.handleGenerate)

	if s.config.Debug {
		// net/http/pprof registers on the default mux
		app.All("/debug/pprof/*", adaptor.HTTPHandler(http.DefaultServeMux))
	}
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting chat server",
		zap.String("listen", s.config.ListenAddr),
		zap.String("default_provider", s.config.DefaultProvider),
	)

	return s.app.Listen(s.config.ListenAddr)
}

// Close shuts down the server and releases resources.
func (s *Server) Close() error {
	return s.store.Close()
}

type createConversationRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleCreateConversation(c *fiber.Ctx) error {
	var req createConversationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
		}
	}

	convo, err := s.store.CreateConversation(c.Context(), req.Title)
	if err != nil {
		s.logger.Error("failed to create conversation", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to create conversation"})
	}

	s.logger.Info("conversation created",
		zap.String("id", convo.ID),
		zap.String("title", convo.Title),
	)

	return c.Status(fiber.StatusCreated).JSON(convo)
}

func (s *Server) handleListConversations(c *fiber.Ctx) error {
	convos, err := s.store.ListConversations(c.Context())
	if err != nil {
		s.logger.Error("failed to list conversations", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list conversations"})
	}

	return c.JSON(map[string]any{
		"count":         len(convos),
		"conversations": convos,
	})
}

func (s *Server) handleListMessages(c *fiber.Ctx) error {
	msgs, err := s.store.ListMessages(c.Context(), c.Params("id"))
	if err != nil {
		return s.storeError(c, err, "failed to list messages")
	}

	return c.JSON(map[string]any{
		"count":    len(msgs),
		"messages": msgs,
	})
}

type appendMessageRequest struct {
	Role    string `json:"role"`
	Variant string `json:"variant,omitempty"`
	Content string `json:"content"`
}

// handleAppendMessage records a message without triggering generation;
// clients use it to seed or import logs.
func (s *Server) handleAppendMessage(c *fiber.Ctx) error {
	var req appendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	role := chat.Role(req.Role)
	if role != chat.RoleUser && role != chat.RoleAssistant {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "role must be user or assistant"})
	}

	msg := &store.Message{
		ConversationID: c.Params("id"),
		Role:           role,
		Content:        req.Content,
	}
	if role == chat.RoleAssistant {
		msg.Variant = chat.NormalizeVariant(chat.Variant(req.Variant))
	}

	if err := s.store.AppendMessage(c.Context(), msg); err != nil {
		return s.storeError(c, err, "failed to append message")
	}

	return c.Status(fiber.StatusCreated).JSON(msg)
}

// handleTurns returns the reconstructed side-by-side turn views for a
// conversation. The view is recomputed from the full log on every call;
// ?awaiting=true marks the last turn's empty response columns as typing.
func (s *Server) handleTurns(c *fiber.Ctx) error {
	msgs, err := s.store.ListMessages(c.Context(), c.Params("id"))
	if err != nil {
		return s.storeError(c, err, "failed to load messages")
	}

	turns := chat.Reconstruct(store.Log(msgs))

	transcript, err := chat.Present(turns, c.QueryBool("awaiting"), markdown.Plain{})
	if err != nil {
		s.logger.Error("failed to present turns", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to present turns"})
	}

	return c.JSON(transcript)
}

func (s *Server) storeError(c *fiber.Ctx, err error, msg string) error {
	var notFound store.ErrNotFound
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: notFound.Error()})
	}

	s.logger.Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: msg})
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
