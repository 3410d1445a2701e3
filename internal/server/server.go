package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/econet/internal/logging"
)

const (
	// DefaultListen is the exporter's default HTTP address
	DefaultListen = ":9842"

	// DefaultInterval is the default polling period
	DefaultInterval = 30 * time.Second

	shutdownTimeout = 5 * time.Second
)

// Config holds the server configuration
type Config struct {
	Listen   string
	Interval time.Duration
}

// Server runs the poller and serves its results over HTTP
type Server struct {
	config  *Config
	poller  *Poller
	metrics *MetricsCollector
	hub     *Hub

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// New creates a Server polling controller. Metrics and the websocket hub
// are registered as sinks.
func New(config *Config, controller Controller) *Server {
	if config.Listen == "" {
		config.Listen = DefaultListen
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}

	s := &Server{
		config:  config,
		poller:  NewPoller(controller, config.Interval),
		metrics: NewMetricsCollector(),
		hub:     NewHub(),
	}
	s.poller.AddSink(s.metrics)
	s.poller.AddSink(s.hub)
	return s
}

// Poller returns the server's poller so other sinks can attach
func (s *Server) Poller() *Poller {
	return s.poller
}

// Addr returns the bound listen address once Start has been called
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.config.Listen
	}
	return s.listener.Addr().String()
}

// Listen binds the HTTP listener without serving
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           NewMux(s.poller, s.metrics, s.hub),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Unlock()
	return nil
}

// Start serves until SIGINT/SIGTERM, ctx cancellation or a server error
func (s *Server) Start(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	logging.Info("Starting econet exporter",
		zap.String("addr", s.Addr()),
		zap.Duration("interval", s.config.Interval),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.poller.Run(ctx)
	}()

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info("Shutdown signal received, stopping server...")
	case serveErr = <-errChan:
		stop()
	}

	shutdownErr := s.Shutdown(context.Background())
	wg.Wait()

	if serveErr != nil {
		return fmt.Errorf("server failed: %w", serveErr)
	}
	return shutdownErr
}

// Shutdown stops the HTTP server and disconnects websocket clients
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()

	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()
	if httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	logging.Info("Server stopped")
	return nil
}
