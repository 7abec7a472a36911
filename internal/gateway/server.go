package gateway

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aastar-community/relay-gateway/internal/authorization"
	"github.com/aastar-community/relay-gateway/internal/blsprotection"
	"github.com/aastar-community/relay-gateway/internal/config"
	"github.com/aastar-community/relay-gateway/internal/health"
	"github.com/aastar-community/relay-gateway/internal/kms"
	"github.com/aastar-community/relay-gateway/internal/metrics"
	"github.com/aastar-community/relay-gateway/internal/pipeline"
	"github.com/aastar-community/relay-gateway/internal/policy"
	"github.com/aastar-community/relay-gateway/internal/pool"
	"github.com/aastar-community/relay-gateway/internal/provider"
	"github.com/aastar-community/relay-gateway/internal/riskanalysis"
	"github.com/aastar-community/relay-gateway/internal/simulator"
	"github.com/aastar-community/relay-gateway/internal/validation"
	"github.com/aastar-community/relay-gateway/internal/verification"
	"github.com/aastar-community/relay-gateway/internal/versionselector"
)

// Dependencies bundles every collaborator Server wires into its pipeline
// and method dispatch table. Each field is a capability interface (or a
// concrete config/collaborator the gateway owns outright), so tests and
// cmd/gateway's dev mode can swap in the in-memory implementations.
type Dependencies struct {
	Config         *config.Config
	Logger         *zap.Logger
	Selector       *versionselector.Selector
	ValidationLimits validation.Limits
	AuthConfig     authorization.Config
	RiskConfig     riskanalysis.Config
	BLSProtector   *blsprotection.Protector
	PolicyManager  *policy.Manager
	Pool           pool.Pool
	Simulator      simulator.Simulator
	Provider       provider.Provider
	KMSManager     *kms.Manager
	RulesOracle    verification.RulesOracle
}

// Server owns the gin router, the processing pipeline, and every
// collaborator the gateway dispatches to, following the teacher's Server
// struct shape (router, httpServer, named collaborators) generalized from
// one facilitator to the full JSON-RPC method table plus REST surfaces.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	cfg        *config.Config
	logger     *zap.Logger
	metrics    *metrics.Metrics
	health     *health.Checker
	pipeline   *pipeline.Pipeline
	orch       *verification.Orchestrator
	deps       Dependencies
	methods    map[string]rpcMethod
	blsScope   *blsEndpoints
}

// dispatchContext carries per-request state into an rpcMethod handler.
type dispatchContext struct {
	ctx       context.Context
	clientIP  string
	requestID string
	server    *Server
}

// New builds a Server wired against deps, matching the production
// construction the teacher's server.New performs (metrics, health, router,
// middleware, routes) but parameterized by the gateway's own collaborator
// set instead of a single Facilitator.
func New(deps Dependencies) *Server {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	healthChecker := health.NewChecker("dev")

	s := &Server{
		router:  gin.New(),
		cfg:     deps.Config,
		logger:  deps.Logger,
		metrics: m,
		health:  healthChecker,
		deps:    deps,
	}

	chainID := big.NewInt(deps.Config.ChainID)
	s.pipeline = pipeline.New(deps.Config.PipelineDefaultTimeout)
	s.pipeline.Register(newDecodeModule(deps.Selector))
	s.pipeline.Register(newValidationModule(deps.ValidationLimits))
	s.pipeline.Register(newAuthorizationModule(deps.AuthConfig))
	s.pipeline.Register(newRiskModule(deps.RiskConfig, deps.Config.ContractSecurityMaxRiskScore))
	s.pipeline.Register(newPolicyModule(deps.PolicyManager))
	s.pipeline.Register(newSubmitModule(deps.Pool, chainID))

	s.orch = verification.NewOrchestrator(deps.Selector, deps.RulesOracle, deps.KMSManager, deps.Config.KMSPrimaryKeyID, "gateway-kms", chainID)

	s.methods = s.buildMethodTable()
	s.blsScope = &blsEndpoints{protector: deps.BLSProtector}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(RequestIDMiddleware())
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(CORSMiddleware())
	s.router.Use(s.metrics.Middleware())
	s.router.Use(RateLimitMiddleware(s.deps.PolicyManager.RateLimiterForMiddleware(), s.cfg.RateLimitMaxOpsPerSender))
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health.HealthHandler())
	s.router.GET("/ready", s.health.ReadyHandler())
	s.router.GET("/live", s.health.HealthHandler())
	s.router.GET("/e2e", s.health.E2EHandler())
	s.router.GET("/metrics", s.metrics.Handler())

	s.router.POST("/", s.handleJSONRPC)

	bls := s.router.Group("/bls")
	bls.POST("/validate", s.blsScope.validate)
	bls.POST("/aggregate", s.blsScope.aggregate)
	bls.GET("/status", s.blsScope.status)
	bls.POST("/blacklist", s.blsScope.addBlacklist)
	bls.GET("/blacklist/:address", s.blsScope.getBlacklist)
	bls.POST("/trusted", s.blsScope.addTrusted)
	bls.GET("/stats/:address", s.blsScope.stats)
}

// Handler exposes the underlying gin.Engine, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Start runs the HTTP server and blocks until a shutdown signal arrives,
// matching the teacher's waitForShutdown SIGINT/SIGTERM handling.
func (s *Server) Start() {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting gateway on port %d", s.cfg.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("gateway server failed: %v", err)
		}
	}()

	s.waitForShutdown()
}

func (s *Server) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down gateway...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.pipeline.Shutdown(ctx); err != nil {
		log.Printf("pipeline shutdown error: %v", err)
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("gateway forced to shutdown: %v", err)
	}
	log.Println("gateway stopped")
}
