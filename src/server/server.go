package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"stock-predictor/src/helpers"
	"stock-predictor/src/interfaces"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	Dashboard interfaces.IDashboard
	Errors    *helpers.ErrorHandler

	engine     *gin.Engine
	httpServer *http.Server
	startedAt  time.Time

	// WebSocket clients, owned by the hub loop
	clients    map[*Client]struct{}
	clientsMu  sync.RWMutex
	closed     bool
	unregister chan *Client
	quit       chan struct{}
	hubOnce    sync.Once
	stopOnce   sync.Once
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, dashboard interfaces.IDashboard) *DashboardServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:     cfg,
		Logger:     logger.NewLogger(cfg, "DashboardServer"),
		Dashboard:  dashboard,
		Errors:     helpers.NewErrorHandler(),
		engine:     gin.New(),
		startedAt:  time.Now(),
		clients:    make(map[*Client]struct{}),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}

	s.engine.Use(gin.Recovery(), s.requestLogger(), s.cors())

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

const requestIDHeader = "X-Request-ID"

// requestLogger tags every request with an id and logs it once served.
func (s *DashboardServer) requestLogger() gin.HandlerFunc {
	base := s.Logger.Zap().WithOptions(zap.AddCallerSkip(-1))
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Set("request_id", rid)
		c.Writer.Header().Set(requestIDHeader, rid)

		start := time.Now()
		c.Next()

		base.Info("request",
			zap.String("request_id", rid),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) cors() gin.HandlerFunc {
	localPrefix := fmt.Sprintf("http://%s:", s.Config.Host)
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, localPrefix) || strings.HasPrefix(origin, "http://127.0.0.1:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	// Page
	s.engine.GET("/", s.getIndex)

	// REST API endpoints
	api := s.engine.Group("/api")
	api.GET("/tickers", s.getTickers)
	api.GET("/history", s.getHistory)
	api.GET("/forecast", s.getForecast)
	api.GET("/export", s.getExport)
	api.GET("/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Handler exposes the router with the hub running.
func (s *DashboardServer) Handler() http.Handler {
	s.startHub()
	return s.engine
}

func (s *DashboardServer) startHub() {
	s.hubOnce.Do(func() { go s.handleWebsockets() })
}

// -----------------------------------------------------------------------------

// Start blocks serving HTTP until Shutdown is called.
func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on http://%s", addr)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Shutdown drains in-flight requests and disconnects websocket clients.
func (s *DashboardServer) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.stopOnce.Do(func() { close(s.quit) })
	return err
}

// -----------------------------------------------------------------------------

// Connections returns the number of open websocket sessions.
func (s *DashboardServer) Connections() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
