// Package gateway receives container events from the game-server bridge over
// HTTP and websocket, and feeds the translated access events to the
// correlator.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"stashwatch/internal/correlate"
	"stashwatch/internal/event"
)

const (
	OutcomeSuppressed = "suppressed"
	OutcomeInvalid    = "invalid"

	maxBatchSize    = 1000
	shutdownTimeout = 10 * time.Second
)

// Evaluator is the correlator as seen by the gateway.
type Evaluator interface {
	Evaluate(ctx context.Context, ev event.Access) correlate.Outcome
}

// Readiness reports whether events can be evaluated yet.
type Readiness interface {
	Ready() bool
}

type Config struct {
	// Token, when set, is required as a bearer token on every /v1 request.
	Token string
}

type Server struct {
	logger *zap.Logger
	cfg    Config
	eval   Evaluator
	ready  Readiness
	engine *gin.Engine

	streams     context.Context
	stopStreams context.CancelFunc
}

type outcomeResponse struct {
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

func New(logger *zap.Logger, cfg Config, eval Evaluator, ready Readiness) *Server {
	s := &Server{
		logger: logger.Named("gateway"),
		cfg:    cfg,
		eval:   eval,
		ready:  ready,
	}
	s.streams, s.stopStreams = context.WithCancel(context.Background())

	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware("stashwatch"), requestLogger(s.logger))

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/readyz", s.handleReady)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/v1")
	if cfg.Token != "" {
		v1.Use(bearerAuth(cfg.Token))
	}
	v1.POST("/events", s.handleEvent)
	v1.POST("/events/batch", s.handleBatch)
	v1.GET("/events/stream", s.handleStream)

	s.engine = engine
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. ln is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv.RegisterOnShutdown(s.stopStreams)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Gateway listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("gateway: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Gateway shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("gateway shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReady(c *gin.Context) {
	if !s.ready.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "index not installed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) handleEvent(c *gin.Context) {
	if !s.ready.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "index not installed"})
		return
	}

	var raw Raw
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, outcomeResponse{Outcome: OutcomeInvalid, Error: err.Error()})
		return
	}

	resp := s.process(c.Request.Context(), raw)
	status := http.StatusOK
	if resp.Outcome == OutcomeSuppressed {
		status = http.StatusAccepted
	}
	c.JSON(status, resp)
}

func (s *Server) handleBatch(c *gin.Context) {
	if !s.ready.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "index not installed"})
		return
	}

	var batch []json.RawMessage
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(batch) > maxBatchSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("batch exceeds %d events", maxBatchSize)})
		return
	}

	outcomes := make([]outcomeResponse, 0, len(batch))
	for _, data := range batch {
		outcomes = append(outcomes, s.decodeAndProcess(c.Request.Context(), data))
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": outcomes})
}

func (s *Server) decodeAndProcess(ctx context.Context, data []byte) outcomeResponse {
	var raw Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return outcomeResponse{Outcome: OutcomeInvalid, Error: err.Error()}
	}
	if err := binding.Validator.ValidateStruct(&raw); err != nil {
		return outcomeResponse{Outcome: OutcomeInvalid, Error: err.Error()}
	}
	return s.process(ctx, raw)
}

func (s *Server) process(ctx context.Context, raw Raw) outcomeResponse {
	ev, ok := Translate(raw)
	if !ok {
		return outcomeResponse{Outcome: OutcomeSuppressed}
	}
	return outcomeResponse{Outcome: s.eval.Evaluate(ctx, ev).String()}
}
