package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/logwardstack/logward-detect/internal/config"
)

// Server wraps the HTTP server and its lifecycle helpers.
type Server struct {
	cfg      config.ServerConfig
	httpSrv  *http.Server
	listener net.Listener
	logger   *slog.Logger
}

// NewServer constructs an HTTP server bound to the configured address.
func NewServer(cfg config.ServerConfig, handlers *Handlers, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	lis, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	handlers.Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		cfg:      cfg,
		httpSrv:  &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second},
		listener: lis,
		logger:   logger,
	}, nil
}

// Start serves incoming requests until Shutdown is invoked.
func (s *Server) Start() error {
	if s.httpSrv == nil || s.listener == nil {
		return errors.New("server not initialised")
	}
	if err := s.httpSrv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, forcing close when the context expires.
func (s *Server) Shutdown(ctx context.Context) {
	if s.httpSrv == nil {
		return
	}
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Warn("forced server close", slog.Any("error", err))
		_ = s.httpSrv.Close()
	}
}

// Address exposes the bound listener address (useful for tests).
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// GracefulTimeout returns the configured graceful timeout duration.
func (s *Server) GracefulTimeout() time.Duration {
	return s.cfg.GracefulTimeout
}
