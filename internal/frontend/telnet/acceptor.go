package telnet

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/travel/internal/config"
)

// SessionHandler runs the command loop for one connected client.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// Acceptor binds the Telnet port and serves each client on its own
// goroutine. Stop may be called at any time, including before the port is
// bound; an acceptor never serves again once stopped.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	// base is cancelled by Stop and parents every session context.
	base   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	listener net.Listener
	stopped  bool
	sessions sync.WaitGroup
}

// NewAcceptor creates an acceptor for cfg. Port 0 picks a free port.
//
// Precondition: handler and logger must be non-nil.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	base, cancel := context.WithCancel(context.Background())
	return &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		base:    base,
		cancel:  cancel,
	}
}

// ListenAndServe binds the configured address and serves clients until
// Stop. It returns nil when stopped, including when Stop won the race
// against the bind.
func (a *Acceptor) ListenAndServe() error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		ln.Close()
		a.logger.Debug("telnet host stopped before serving", zap.String("addr", ln.Addr().String()))
		return nil
	}
	a.listener = ln
	a.mu.Unlock()

	a.logger.Info("telnet host listening", zap.String("addr", ln.Addr().String()))

	for {
		raw, err := ln.Accept()
		if err != nil {
			if a.isStopped() {
				return nil
			}
			a.logger.Error("accepting connection", zap.Error(err))
			time.Sleep(50 * time.Millisecond)
			continue
		}
		if !a.track() {
			raw.Close()
			return nil
		}
		go a.serve(raw)
	}
}

// track registers a new session unless the acceptor is stopping. Sessions
// are only added under mu, so Stop never waits on a group that can grow.
func (a *Acceptor) track() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return false
	}
	a.sessions.Add(1)
	return true
}

func (a *Acceptor) isStopped() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopped
}

func (a *Acceptor) serve(raw net.Conn) {
	defer a.sessions.Done()
	start := time.Now()
	log := a.logger.With(zap.String("remote_addr", raw.RemoteAddr().String()))
	log.Info("client connected")

	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	defer conn.Close()

	if err := conn.Negotiate(); err != nil {
		log.Error("telnet negotiation failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(a.base)
	defer cancel()
	// a session blocked in ReadLine only notices Stop through its conn
	context.AfterFunc(ctx, func() { _ = conn.Close() })

	err := a.handler.HandleSession(ctx, conn)
	log.Info("session ended",
		zap.Duration("duration", time.Since(start)),
		zap.NamedError("cause", err),
	)
}

// Stop closes the listener, ends every session and waits for them.
// Repeated calls are no-ops.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	ln := a.listener
	a.mu.Unlock()

	a.cancel()
	if ln != nil {
		ln.Close()
	}
	a.sessions.Wait()
	a.logger.Info("telnet host stopped")
}

// Addr returns the bound address, or "" while unbound.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// IsRunning reports whether the acceptor is bound and not stopped.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listener != nil && !a.stopped
}
