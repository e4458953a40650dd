// Package server assembles the HTTP API, the background sweepers, and the
// websocket feed into one runnable service.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mbd888/zkroulette/internal/attestation"
	"github.com/mbd888/zkroulette/internal/auth"
	"github.com/mbd888/zkroulette/internal/chain"
	"github.com/mbd888/zkroulette/internal/commitment"
	"github.com/mbd888/zkroulette/internal/config"
	"github.com/mbd888/zkroulette/internal/health"
	"github.com/mbd888/zkroulette/internal/logging"
	"github.com/mbd888/zkroulette/internal/metrics"
	"github.com/mbd888/zkroulette/internal/ratelimit"
	"github.com/mbd888/zkroulette/internal/realtime"
	"github.com/mbd888/zkroulette/internal/risk"
	"github.com/mbd888/zkroulette/internal/roulette"
	"github.com/mbd888/zkroulette/internal/security"
	"github.com/mbd888/zkroulette/internal/session"
	"github.com/mbd888/zkroulette/internal/traces"
	"github.com/mbd888/zkroulette/internal/validation"
)

// Server owns the router and every long-lived component.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	router *gin.Engine

	commitments *commitment.Store
	sweeper     *commitment.Sweeper
	issuer      *attestation.Issuer
	model       *risk.Model
	sessions    *session.Manager
	limiter     *ratelimit.Limiter
	chain       *chain.Builder
	hub         *realtime.Hub
	service     *roulette.Service
	checks      *health.Registry

	httpSrv       *http.Server
	ready         atomic.Bool
	cancelRunCtx  context.CancelFunc
	shutdownTrace func(context.Context) error
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New builds the full component graph from configuration.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, "json"),
	}
	for _, opt := range opts {
		opt(s)
	}

	builder, err := chain.NewBuilder(cfg.RPCURL, cfg.ContractAddress)
	if err != nil {
		return nil, fmt.Errorf("chain builder: %w", err)
	}
	s.chain = builder
	if builder.Offline() {
		s.logger.Info("chain builder in offline mode, stub transactions")
	} else {
		s.logger.Info("chain builder connected",
			"rpc_url", cfg.RPCURL, "contract", cfg.ContractAddress, "chain_id", cfg.ChainID)
	}

	s.commitments = commitment.NewStore()
	s.sweeper = commitment.NewSweeper(s.commitments, cfg.CommitmentTTL, cfg.SweepInterval, s.logger)
	s.issuer = attestation.NewIssuer(cfg.AttestationMaxAge)
	s.model = risk.NewModel()
	s.sessions = session.NewManager(cfg.SessionTTL)
	s.limiter = ratelimit.New(ratelimit.Config{
		BetsPerHour:     cfg.MaxBetsPerHour,
		CleanupInterval: time.Minute,
	})
	s.hub = realtime.NewHub(s.logger)
	s.sweeper.OnExpire = s.hub.BroadcastCommitmentsExpired

	s.service = roulette.NewService(
		roulette.Limits{
			MinBetAmount: cfg.MinBetAmount,
			MaxBetAmount: cfg.MaxBetAmount,
			SuspendScore: cfg.SuspendScore,
		},
		s.commitments, s.issuer, s.model, s.sessions, s.limiter, s.chain, s.hub, s.logger,
	)

	s.checks = health.NewRegistry()
	s.checks.Register("commitments", health.CommitmentStore(s.commitments))
	s.checks.Register("risk_model", health.RiskModel(s.model))
	s.checks.Register("sessions", health.Sessions(s.sessions))
	s.checks.Register("chain_rpc", health.ChainRPC(s.chain))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		s.logger.Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))

	s.router.Use(security.HeadersMiddleware())
	s.router.Use(security.CORSMiddleware([]string{"*"}))
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))
	s.router.Use(metrics.Middleware())
	s.router.Use(logging.Middleware(s.logger))
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.checks.Handler())
	s.router.GET("/health/live", s.livenessHandler)
	s.router.GET("/health/ready", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	s.router.GET("/ws", func(c *gin.Context) {
		s.hub.HandleWebSocket(c.Writer, c.Request)
	})

	auth.NewHandler(s.sessions).RegisterRoutes(&s.router.RouterGroup)

	v1 := s.router.Group("/v1")
	roulette.NewHandler(s.service).RegisterRoutes(v1)
	risk.NewHandler(s.model).RegisterRoutes(v1)
}

func (s *Server) livenessHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Run starts the HTTP server and the background loops, then blocks until a
// shutdown signal, a server error, or context cancellation.
func (s *Server) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRunCtx = cancel

	if s.cfg.OTLPEndpoint != "" {
		shutdown, err := traces.Init(runCtx, s.cfg.OTLPEndpoint, s.logger)
		if err != nil {
			s.logger.Error("failed to init tracing", "error", err)
		} else {
			s.shutdownTrace = shutdown
		}
	}

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "port", s.cfg.Port, "env", s.cfg.Env)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	go s.hub.Run(runCtx)
	go s.sweeper.Start(runCtx)
	go s.sessions.StartSweeper(runCtx, s.cfg.SweepInterval, s.logger)
	metrics.StartRuntimeCollector(runCtx, 15*time.Second)

	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server and the background loops.
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	if s.cancelRunCtx != nil {
		s.cancelRunCtx()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.sweeper.Stop()
	s.limiter.Stop()
	s.chain.Close()

	if s.shutdownTrace != nil {
		if err := s.shutdownTrace(ctx); err != nil {
			s.logger.Error("trace shutdown error", "error", err)
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the gin router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}
