// Package server serves the home site and every listed project's build
// output behind one HTTP endpoint.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/net/netutil"

	"github.com/conneroisu/docmux/internal/errors"
	"github.com/conneroisu/docmux/internal/logging"
	"github.com/conneroisu/docmux/internal/prompt"
)

// Defaults
const (
	DefaultMaxRetries      = 20
	DefaultRetryInterval   = 500 * time.Millisecond
	DefaultShutdownTimeout = 2 * time.Second
)

// ErrStartAborted is returned when no port could be bound and the operator
// declined to try the next one, or the wait was cancelled.
var ErrStartAborted = errors.NewNetworkError("START_ABORTED",
	"server start aborted. You can specify a custom port with docmux serve --port", nil)

// Options configures a Server.
type Options struct {
	Host            string
	Port            int
	MaxConnections  int
	MaxRetries      int
	RetryInterval   time.Duration
	ShutdownTimeout time.Duration
	Confirmer       prompt.Confirmer
	Logger          logging.Logger
}

// Server binds a port with retries and serves a handler on it.
type Server struct {
	opts    Options
	handler http.Handler
	listen  func(network, address string) (net.Listener, error)

	mu         sync.Mutex
	httpServer *http.Server
	port       int
}

// New creates a server for handler. A negative MaxRetries selects the
// default.
func New(handler http.Handler, opts Options) *Server {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = DefaultRetryInterval
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	if opts.Confirmer == nil {
		opts.Confirmer = prompt.Static{Answer: false}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	opts.Logger = opts.Logger.WithComponent("server")

	return &Server{
		opts:    opts,
		handler: handler,
		listen:  net.Listen,
		port:    opts.Port,
	}
}

// Port returns the port the server is bound to, or the configured port
// before Listen succeeds.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Listen binds the configured address. Each failure is retried after
// RetryInterval; once MaxRetries retries have failed the Confirmer is asked
// whether to move on to the next port.
func (s *Server) Listen(ctx context.Context) (net.Listener, error) {
	port := s.opts.Port
	failures := 0

	s.opts.Logger.Info(ctx, "Waiting for server port", "port", port)

	for {
		if err := ctx.Err(); err != nil {
			return nil, ErrStartAborted
		}

		ln, err := s.listen("tcp", net.JoinHostPort(s.opts.Host, strconv.Itoa(port)))
		if err == nil {
			if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
				port = tcp.Port
			}
			s.mu.Lock()
			s.port = port
			s.mu.Unlock()

			if s.opts.MaxConnections > 0 {
				ln = netutil.LimitListener(ln, s.opts.MaxConnections)
			}
			return ln, nil
		}

		failures++
		s.opts.Logger.Debug(ctx, "Bind failed", "port", port, "attempt", failures, "error", err.Error())

		if failures > s.opts.MaxRetries {
			question := fmt.Sprintf("port %d seems occupied. Try with %d?", port, port+1)
			ok, askErr := s.opts.Confirmer.Confirm(ctx, question)
			if askErr != nil {
				return nil, fmt.Errorf("%w: %w", ErrStartAborted, askErr)
			}
			if !ok {
				return nil, ErrStartAborted
			}
			port++
			failures = 0
			continue
		}

		timer := time.NewTimer(s.opts.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ErrStartAborted
		case <-timer.C:
		}
	}
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.mu.Lock()
	s.httpServer = httpServer
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.opts.Logger.Warn(shutdownCtx, err, "Graceful shutdown incomplete, closing")
		_ = httpServer.Close()
	}

	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown stops a running server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()

	if httpServer == nil {
		return nil
	}

	return httpServer.Shutdown(ctx)
}
