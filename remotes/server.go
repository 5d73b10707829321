package remotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/reusee/mts/logs"
	"golang.org/x/net/netutil"
)

// Server answers the queries a peer process makes to discover and bind the
// provided interfaces of a registry.
type Server struct {
	registry Registry
	logger   *slog.Logger
	newSpan  logs.NewSpan
	mux      *http.ServeMux
}

func NewServer(registry Registry, logger *slog.Logger, newSpan logs.NewSpan) *Server {
	s := &Server{
		registry: registry,
		logger:   logger,
		newSpan:  newSpan,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /v1/process", s.handleProcess)
	s.mux.HandleFunc("GET /v1/components", s.handleComponents)
	s.mux.HandleFunc("GET /v1/connections", s.handleConnections)
	s.mux.HandleFunc("GET /v1/components/{component}/provided/{provided}", s.handleAccessInfo)
	s.mux.HandleFunc("GET /v1/components/{component}/provided/{provided}/registered", s.handleRegistered)
	s.mux.HandleFunc("POST /v1/allocate", s.handleAllocate)
	s.mux.HandleFunc("POST /v1/notify", s.handleNotify)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.newSpan(r.Context(), logs.Span(r.Header.Get(SpanHeader)))
	w.Header().Set(SpanHeader, string(span))
	start := time.Now()
	s.mux.ServeHTTP(w, r.WithContext(ctx))
	s.logger.DebugContext(ctx, "request",
		"method", r.Method,
		"path", r.URL.Path,
		"duration", time.Since(start),
	)
}

// Serve serves on listener until ctx is done, accepting at most maxConns
// connections at a time.
func (s *Server) Serve(ctx context.Context, listener net.Listener, maxConns int) error {
	if maxConns > 0 {
		listener = netutil.LimitListener(listener, maxConns)
	}
	server := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()
	s.logger.Info("remote server started", "addr", listener.Addr().String())
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WarnContext(r.Context(), "write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	s.logger.WarnContext(r.Context(), "request failed",
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)
	s.writeJSON(w, r, status, errorBody{
		Error: err.Error(),
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, ProcessInfo{
		Process: s.registry.Process(),
	})
}

func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request) {
	names := s.registry.ComponentNames()
	ret := make([]ComponentInfo, 0, len(names))
	for _, name := range names {
		c, ok := s.registry.GetComponent(name)
		if !ok {
			continue
		}
		ret = append(ret, ComponentInfo{
			Name:     name,
			Provided: c.ProvidedNames(),
			Required: c.RequiredNames(),
		})
	}
	s.writeJSON(w, r, http.StatusOK, ret)
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.registry.Connections())
}

func (s *Server) handleAccessInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.registry.GetProvidedInterfaceAccessInfo(
		r.PathValue("component"),
		r.PathValue("provided"),
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, info)
}

func (s *Server) handleRegistered(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, RegisteredInfo{
		Registered: s.registry.IsRegisteredProvidedInterface(
			r.PathValue("component"),
			r.PathValue("provided"),
		),
	})
}

func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	var req AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if req.ClientProcess == "" || req.Component == "" || req.Provided == "" {
		s.writeError(w, r, fmt.Errorf("%w: incomplete allocation request", ErrBadRequest))
		return
	}
	id, err := s.registry.AllocateRemoteResources(req.ClientProcess, req.Consumer, req.Required, req.Component, req.Provided)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "remote resources allocated",
		"id", id.String(),
		"client", req.ClientProcess,
		"component", req.Component,
		"provided", req.Provided,
	)
	s.writeJSON(w, r, http.StatusOK, AllocateResponse{
		ID: id,
	})
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := s.registry.NotifyInterfaceConnectionResult(
		req.IsProvider, req.Success, req.ID,
		req.Consumer, req.Required, req.Provider, req.Provided,
	); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
