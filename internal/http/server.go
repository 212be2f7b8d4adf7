// Package http exposes the ledger, guides and assistant as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"pocketledger/internal/amqp"
	"pocketledger/internal/assistant"
	"pocketledger/internal/auth"
	"pocketledger/internal/backend"
	"pocketledger/internal/log"
	"pocketledger/internal/services"
	"pocketledger/internal/social"
)

// PaymentPublisher hands settled payments to the worker. *amqp.Client
// satisfies it.
type PaymentPublisher interface {
	PublishUnlockConfirmed(ctx context.Context, msg amqp.UnlockConfirmed) error
}

// Deps are the collaborators the handlers call. Payments is optional;
// without it confirmed payments are recorded in the request.
type Deps struct {
	Ledger    *services.LedgerService
	Payments  PaymentPublisher
	Social    social.Provider
	Assistant *assistant.Service
	Issuer    *auth.Issuer
	Backend   backend.BackendType
	Logger    *log.Logger
}

type Server struct {
	http.Server

	ledger    *services.LedgerService
	payments  PaymentPublisher
	social    social.Provider
	assistant *assistant.Service
	issuer    *auth.Issuer
	backend   backend.BackendType
	logger    *log.Logger

	limiter      *rateLimiter
	metrics      *securityMetrics
	stopLimiter  context.CancelFunc
	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, d Deps) *Server {
	if d.Logger == nil {
		d.Logger = log.Nop()
	}

	s := &Server{
		ledger:    d.Ledger,
		payments:  d.Payments,
		social:    d.Social,
		assistant: d.Assistant,
		issuer:    d.Issuer,
		backend:   d.Backend,
		logger:    d.Logger.WithComponent(log.ComponentHTTP),
		limiter:   newRateLimiter(),
		metrics:   &securityMetrics{},
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopLimiter = cancel
	go s.limiter.run(ctx)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		s.logger.Warn("Failed to set trusted proxies", log.FieldError, err)
	}
	r.Use(gin.Recovery(), log.GinMiddleware(s.logger), s.securityMiddleware())

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	api.POST("/auth/login", s.handleLogin)
	api.GET("/guides", s.handleListGuides)
	api.GET("/guides/:id", s.handleGetGuide)

	authed := api.Group("", s.issuer.Middleware())
	authed.GET("/me", s.handleMe)

	authed.GET("/subscriptions", s.handleListSubscriptions)
	authed.POST("/subscriptions", s.handleCreateSubscription)
	authed.DELETE("/subscriptions/:id", s.handleDeleteSubscription)

	authed.GET("/expenses", s.handleListExpenses)
	authed.POST("/expenses", s.handleCreateExpense)
	authed.GET("/expenses/range", s.handleExpensesInRange)
	authed.GET("/expenses/:id", s.handleGetExpense)

	authed.GET("/summary", s.handleSummary)

	authed.GET("/guides/saved", s.handleSavedGuides)
	authed.POST("/guides/:id/interactions", s.handleRecordInteraction)

	authed.GET("/unlocks", s.handleListUnlocks)
	authed.POST("/unlocks", s.handleConfirmUnlock)
	authed.GET("/unlocks/:feature", s.handleHasUnlock)
	authed.DELETE("/unlocks/:id", s.handleRevokeUnlock)

	authed.POST("/assistant/simplify", s.handleSimplify)
	authed.POST("/assistant/guidance", s.handleGuidance)
	authed.POST("/assistant/budget", s.handleBudget)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}
	return s
}

// Shutdown gracefully shuts down the server and its cleanup routine
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.stopLimiter()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(c *gin.Context) {
	writeOK(c, http.StatusOK, gin.H{
		"status":    "ok",
		"backend":   s.backend,
		"assistant": s.assistant.Available(),
		"security":  s.metrics.snapshot(),
	})
}
