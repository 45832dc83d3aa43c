// Package bridge serves the loopback HTTP surface the webview frontend uses
// to invoke host commands and follow main window events.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/example/scripthub/internal/logging"
	"github.com/example/scripthub/internal/protocol"
	"github.com/example/scripthub/internal/security"
	"github.com/example/scripthub/internal/window"
)

const (
	RequestIDHeader = "X-Request-ID"

	maxArgsBytes    = 64 << 10
	shutdownTimeout = 5 * time.Second
	corsMaxAge      = 10 * time.Minute
)

var (
	// ErrUnknownCommand is returned by a Dispatcher for a command it does not know.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidArgs is returned by a Dispatcher when the args object is malformed.
	ErrInvalidArgs = errors.New("invalid arguments")
)

// Dispatcher executes a named command. A nil value with a nil error is
// reported to the frontend as null.
type Dispatcher interface {
	Invoke(ctx context.Context, command string, args json.RawMessage) (any, error)
}

// AfterReply may be returned as a command value. The reply is null, and the
// function runs once the reply has been flushed to the client.
type AfterReply func()

// EventSource publishes main window events.
type EventSource interface {
	Subscribe(buffer int) (<-chan window.Event, func())
}

// Options configures a Server.
type Options struct {
	Dispatcher     Dispatcher
	Events         EventSource
	Token          string
	AllowedOrigins []string
	Version        string
}

// Server is the command bridge.
type Server struct {
	opts    Options
	handler http.Handler
}

// New builds the router: /health is public, /invoke and /events require the
// bearer token.
func New(opts Options) *Server {
	s := &Server{opts: opts}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Get("/health", s.health)
	r.Group(func(r chi.Router) {
		r.Use(s.authorize)
		r.Post("/invoke/{command}", s.invoke)
		r.Get("/events", s.events)
	})

	s.handler = withCORS(r, opts.AllowedOrigins)
	return s
}

func withCORS(h http.Handler, origins []string) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders: []string{
			"Origin",
			"Accept",
			"Authorization",
			"Content-Type",
			"Cache-Control",
			RequestIDHeader,
		},
		ExposedHeaders: []string{
			RequestIDHeader,
		},
		MaxAge: int(corsMaxAge.Seconds()),
	})
	return middleware.Handler(h)
}

// Handler exposes the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve accepts connections on ln until ctx is canceled, then shuts down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end with the server context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Infof("command bridge listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve bridge: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warnf("bridge shutdown: %v", err)
		}
		<-errCh
		return nil
	}
}

type requestIDKey struct{}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the id attached to the request context, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !security.Equal(presentedToken(r), s.opts.Token) {
			logging.Warnf("[%s] rejected %s %s: bad bridge token", RequestID(r.Context()), r.Method, r.URL.Path)
			writeJSON(w, http.StatusUnauthorized, protocol.Response{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// presentedToken reads the bearer token, or the access_token query value
// for EventSource clients that cannot set headers.
func presentedToken(r *http.Request) string {
	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("access_token")
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, protocol.Health{Status: "ok", Version: s.opts.Version})
}

func (s *Server) invoke(w http.ResponseWriter, r *http.Request) {
	command := chi.URLParam(r, "command")
	id := RequestID(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxArgsBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, protocol.Response{Error: "read arguments: " + err.Error()})
		return
	}
	if len(body) > maxArgsBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, protocol.Response{Error: "arguments too large"})
		return
	}
	args := json.RawMessage(body)
	if len(strings.TrimSpace(string(body))) == 0 {
		args = nil
	} else if !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, protocol.Response{Error: "arguments are not valid JSON"})
		return
	}

	logging.Debugf("[%s] invoke %s", id, command)
	value, err := s.opts.Dispatcher.Invoke(r.Context(), command, args)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrUnknownCommand):
			status = http.StatusNotFound
		case errors.Is(err, ErrInvalidArgs):
			status = http.StatusBadRequest
		default:
			logging.Errorf("[%s] %s failed: %v", id, command, err)
		}
		writeJSON(w, status, protocol.Response{Error: err.Error()})
		return
	}

	if after, ok := value.(AfterReply); ok {
		writeJSON(w, http.StatusOK, protocol.Response{Value: json.RawMessage("null")})
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		if after != nil {
			after()
		}
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, protocol.Response{Error: "encode result: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, protocol.Response{Value: raw})
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok || s.opts.Events == nil {
		writeJSON(w, http.StatusNotImplemented, protocol.Response{Error: "event stream unsupported"})
		return
	}

	ch, cancel := s.opts.Events.Subscribe(16)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()
	logging.Debugf("[%s] event stream attached", RequestID(r.Context()))

	for {
		select {
		case <-r.Context().Done():
			logging.Debugf("[%s] event stream detached", RequestID(r.Context()))
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logging.Warnf("encode window event: %v", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: window\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Debugf("write bridge response: %v", err)
	}
}
