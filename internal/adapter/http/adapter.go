package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"deskgate/internal/core"
	"deskgate/internal/telemetry"
	"deskgate/pkg/errors"
	"deskgate/pkg/requestid"
)

// Adapter serves core handlers over HTTP
type Adapter struct {
	config   Config
	router   *chi.Mux
	server   *http.Server
	listener net.Listener
	reqNum   atomic.Uint64
	logger   *slog.Logger
}

// New creates a new HTTP adapter. Middleware added with Use must be added
// before any route.
func New(cfg Config, logger *slog.Logger) *Adapter {
	a := &Adapter{
		config: cfg,
		router: chi.NewRouter(),
		logger: logger.With("component", "http"),
	}

	a.router.Use(a.requestID)
	a.router.NotFound(a.serve(func(ctx context.Context, req core.Request) (core.Response, error) {
		return nil, errors.NewError(errors.ErrorTypeNotFound, "Not found")
	}))
	a.router.MethodNotAllowed(a.serve(func(ctx context.Context, req core.Request) (core.Response, error) {
		return nil, errors.NewError(errors.ErrorTypeNotFound, "Not found")
	}))

	return a
}

// Use appends net/http middleware to the router
func (a *Adapter) Use(middlewares ...func(http.Handler) http.Handler) *Adapter {
	a.router.Use(middlewares...)
	return a
}

// Handle registers a handler for method and pattern
func (a *Adapter) Handle(method, pattern string, handler core.Handler) *Adapter {
	a.router.Method(method, pattern, a.serve(handler))
	return a
}

// Mount serves a plain http.Handler at an exact path
func (a *Adapter) Mount(pattern string, handler http.Handler) *Adapter {
	a.router.Handle(pattern, handler)
	return a
}

// Addr returns the bound address once started
func (a *Adapter) Addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Start binds the listener and serves in the background
func (a *Adapter) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", a.config.Host, a.config.Port)

	a.server = &http.Server{
		Addr:         addr,
		Handler:      a,
		ReadTimeout:  a.config.ReadTimeout,
		WriteTimeout: a.config.WriteTimeout,
		IdleTimeout:  a.config.IdleTimeout,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	// Create listener to detect bind errors early
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to %s: %w", addr, err)
	}
	a.listener = listener
	a.logger.Info("starting server", "addr", listener.Addr().String())

	go func() {
		if err := a.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			a.logger.Error("server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the server
func (a *Adapter) Stop(ctx context.Context) error {
	if a.server == nil {
		return nil
	}

	a.logger.Info("stopping server", "requests", a.reqNum.Load())
	srv := a.server
	a.server = nil
	return srv.Shutdown(ctx)
}

// ServeHTTP implements http.Handler
func (a *Adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.reqNum.Add(1)
	a.router.ServeHTTP(w, r)
}

// requestID tags every response, including 404s and /metrics
func (a *Adapter) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestid.GenerateRequestID()
		w.Header().Set(requestid.Header, id)
		next.ServeHTTP(w, r.WithContext(requestid.WithRequestID(r.Context(), id)))
	})
}

// serve adapts a core handler to net/http
func (a *Adapter) serve(handler core.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reqID := requestid.FromContext(ctx)

		req, err := a.newRequest(w, r, reqID)
		if err != nil {
			a.writeError(w, r, reqID, err)
			return
		}

		resp, err := handler(ctx, req)
		if err != nil {
			a.writeError(w, r, reqID, err)
			return
		}
		a.writeResponse(w, r, reqID, resp)
	}
}

func (a *Adapter) writeResponse(w http.ResponseWriter, r *http.Request, reqID string, resp core.Response) {
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	for k, values := range resp.Headers() {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode())

	if body := resp.Body(); body != nil {
		defer body.Close()
		if _, err := io.Copy(w, body); err != nil {
			// headers are already sent
			a.logger.Error("failed to copy response body",
				"error", err,
				"request_id", reqID,
				"path", r.URL.Path)
		}
	}
}

type errorBody struct {
	Message string `json:"message"`
}

// writeError renders a structured error as {"message": ...}. Only the
// message reaches the client; cause and details are logged.
func (a *Adapter) writeError(w http.ResponseWriter, r *http.Request, reqID string, err error) {
	e := errors.From(err)
	status := e.HTTPStatusCode()

	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed",
			"id", reqID,
			"path", r.URL.Path,
			"type", e.Type,
			"error", e.Error(),
			"details", e.Details,
			"trace_id", telemetry.TraceID(r.Context()),
		)
	}

	for k, v := range e.Headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorBody{Message: e.Message}); err != nil {
		a.logger.Error("failed to write error body", "id", reqID, "error", err)
	}
}
