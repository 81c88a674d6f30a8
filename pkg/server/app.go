// Package server owns the process lifecycle: the HTTP API, background workers and the
// clients they share.
package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"TreasureEngine/pkg/config"
	xhttp "TreasureEngine/pkg/http"
	applogger "TreasureEngine/pkg/logger"
)

// Worker is a background consumer started before the HTTP server and stopped after it.
// The Kafka consumer and the Redis queue both satisfy it.
type Worker interface {
	Start() error
	Stop(ctx context.Context) error
}

// Service is a long-running component bound to the app context, such as the tick recorder.
type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type namedWorker struct {
	name string
	w    Worker
}

type namedService struct {
	name string
	s    Service
}

type namedCloser struct {
	name string
	c    io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	handler    xhttp.Handler
	serverOpts []xhttp.ServerOption
	httpServer *xhttp.Server

	workers  []namedWorker
	services []namedService
	closers  []namedCloser
}

// New creates an App serving handler. Workers, services and closers are attached afterwards.
func New(cfg *config.Config, l *applogger.Logger, handler xhttp.Handler, opts ...xhttp.ServerOption) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, l: l, handler: handler, serverOpts: opts}
}

// AddWorker registers a background worker. Nil workers are ignored.
func (a *App) AddWorker(name string, w Worker) {
	if w != nil {
		a.workers = append(a.workers, namedWorker{name: name, w: w})
	}
}

// AddService registers a context-bound service. Nil services are ignored.
func (a *App) AddService(name string, s Service) {
	if s != nil {
		a.services = append(a.services, namedService{name: name, s: s})
	}
}

// AddCloser registers a client closed at the end of shutdown, in reverse order.
func (a *App) AddCloser(name string, c io.Closer) {
	if c != nil {
		a.closers = append(a.closers, namedCloser{name: name, c: c})
	}
}

// Run starts everything and blocks until ctx ends or the process is interrupted.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := append([]xhttp.ServerOption{
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(a.cfg.Server.CORS),
		xhttp.WithLogger(a.l),
	}, a.serverOpts...)
	a.httpServer = xhttp.NewServer(a.handler, opts...)

	for _, s := range a.services {
		if err := s.s.Start(ctx); err != nil {
			a.l.Error("service start failed", applogger.String("service", s.name), applogger.Error(err))
			return errors.Join(err, a.shutdown())
		}
		a.l.Info("service started", applogger.String("service", s.name))
	}
	for _, w := range a.workers {
		if err := w.w.Start(); err != nil {
			a.l.Error("worker start failed", applogger.String("worker", w.name), applogger.Error(err))
			return errors.Join(err, a.shutdown())
		}
		a.l.Info("worker started", applogger.String("worker", w.name))
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return errors.Join(err, a.shutdown())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.l.Info("shutdown signal received", applogger.String("signal", sig.String()))
	case <-ctx.Done():
		a.l.Info("context done, shutting down")
	}
	return a.shutdown()
}

// shutdown stops the HTTP server first, then workers and services, then closes clients.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.l.Error("http shutdown error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	for i := len(a.workers) - 1; i >= 0; i-- {
		w := a.workers[i]
		if err := w.w.Stop(ctx); err != nil {
			a.l.Warn("worker stop error", applogger.String("worker", w.name), applogger.Error(err))
			errs = append(errs, err)
		}
	}
	for i := len(a.services) - 1; i >= 0; i-- {
		s := a.services[i]
		if err := s.s.Shutdown(ctx); err != nil {
			a.l.Warn("service stop error", applogger.String("service", s.name), applogger.Error(err))
			errs = append(errs, err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.c.Close(); err != nil {
			a.l.Warn("close error", applogger.String("client", c.name), applogger.Error(err))
			errs = append(errs, err)
		}
	}
	a.l.Info("shutdown complete")
	return errors.Join(errs...)
}
