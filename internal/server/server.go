package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tartampluch/go-datespan/internal/config"
	"github.com/tartampluch/go-datespan/internal/engine"
)

// contactsItem is the last published ages report, pre-encoded.
type contactsItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123, as HTTP headers require
}

// Server exposes the calculator and the contacts ages report over HTTP.
type Server struct {
	// contacts is read on every request and replaced only on sync, so an
	// atomic pointer keeps the hot path lock-free.
	contacts atomic.Pointer[contactsItem]
	calc     *engine.Calculator
	router   chi.Router
	Port     string
}

// NewServer builds the router. Start must be called to listen.
func NewServer(port string, calc *engine.Calculator) *Server {
	s := &Server{Port: port, calc: calc}

	r := chi.NewRouter()
	r.Use(RequestID, Logger, Recovery)
	r.Get(config.RouteAge, s.handleSpan(engine.PastOnly))
	r.Get(config.RouteUntil, s.handleSpan(engine.FutureOnly))
	r.Get(config.RouteUntilICS, s.handleUntilICS)
	r.Get(config.RouteContacts, s.handleContacts)
	r.Get(config.RouteHealth, s.handleHealth)
	r.Handle(config.RouteMetrics, promhttp.Handler())
	s.router = r

	return s
}

// Handler returns the routed handler with its middleware.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the loopback interface and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      http.TimeoutHandler(s.router, config.RequestTimeout, config.HTTPMsgInternalErr),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)
	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// PublishContacts encodes the report and swaps it in atomically. Readers see
// either the previous report or this one, never a mix.
func (s *Server) PublishContacts(contacts []engine.ContactAge) error {
	if contacts == nil {
		contacts = []engine.ContactAge{}
	}
	data, err := sonic.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrJSONEncode, err)
	}

	item := &contactsItem{
		data:         data,
		etag:         etagFor(data),
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}
	s.contacts.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyCount, len(contacts),
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, item.etag,
	)
	return nil
}
