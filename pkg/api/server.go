package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/testsabirweb/slack_render/pkg/models"
	"github.com/testsabirweb/slack_render/pkg/store"
)

// Renderer renders raw message text to HTML
type Renderer interface {
	Render(text string) string
}

// ChannelReader reads the fields attached by the pipeline
type ChannelReader interface {
	Channels(field string) []store.ChannelInfo
	Field(channelID, name string) ([]models.NormalizedMessage, bool)
}

// Server represents the API server
type Server struct {
	renderer Renderer
	channels ChannelReader
	field    string
	hub      *Hub
	logger   *zap.Logger
}

// NewServer creates a new API server instance. field is the name under which
// rendered messages were attached to channel nodes.
func NewServer(renderer Renderer, channels ChannelReader, field string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("api")
	return &Server{
		renderer: renderer,
		channels: channels,
		field:    field,
		hub:      NewHub(renderer, logger),
		logger:   logger,
	}
}

// Hub returns the WebSocket hub. It must be running for /ws/render to
// accept connections.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Router returns the HTTP handler for the server
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/v1/render", s.handleRender)
	mux.HandleFunc("GET /api/v1/channels", s.handleChannels)
	mux.HandleFunc("GET /api/v1/channels/{externalId}/messages", s.handleChannelMessages)

	mux.HandleFunc("GET /ws/render", s.hub.ServeWS)

	// Add middleware
	return s.withMiddleware(mux)
}

// Serve runs the hub and an HTTP server on addr until ctx is cancelled, then
// shuts down gracefully
func (s *Server) Serve(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// withMiddleware wraps the handler with common middleware
func (s *Server) withMiddleware(h http.Handler) http.Handler {
	// Add CORS headers
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

// handleHealth returns the health status of the server
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "slack-render",
	})
}

// handleRender renders ad-hoc message text
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, RenderResponse{HTML: s.renderer.Render(req.Text)})
}

// handleChannels lists the channels that have rendered messages attached
func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ChannelsResponse{Channels: s.channels.Channels(s.field)})
}

// handleChannelMessages returns the rendered messages of one channel
func (s *Server) handleChannelMessages(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("externalId")
	messages, ok := s.channels.Field(channelID, s.field)
	if !ok {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}

	writeJSON(w, http.StatusOK, MessagesResponse{
		ChannelID: channelID,
		Messages:  messages,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
