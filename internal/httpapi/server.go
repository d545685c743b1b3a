// Package httpapi serves the orchestrator to operators over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Server struct {
	config

	router *mux.Router
	server *http.Server
}

func New(opts ...Option) (*Server, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	s := &Server{config: cfg}
	s.router = s.newRouter()
	s.server = &http.Server{
		Addr:         cfg.listenAddress,
		Handler:      s.router,
		ReadTimeout:  cfg.readTimeout,
		WriteTimeout: cfg.writeTimeout,
		IdleTimeout:  cfg.idleTimeout,
	}
	return s, nil
}

func (s *Server) newRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.recovery, s.logging)

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/nodes", s.listNodes).Methods(http.MethodGet)
	v1.HandleFunc("/nodes/{address}", s.getNode).Methods(http.MethodGet)
	v1.HandleFunc("/nodes/{address}", s.addNode).Methods(http.MethodPost)
	v1.HandleFunc("/nodes/{address}", s.removeNode).Methods(http.MethodDelete)
	v1.HandleFunc("/repair", s.repair).Methods(http.MethodPost)
	v1.HandleFunc("/settings", s.getSettings).Methods(http.MethodGet)
	v1.HandleFunc("/settings", s.updateSettings).Methods(http.MethodPut)
	v1.HandleFunc("/status", s.status).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Code: "NOT_FOUND", Message: "no such endpoint"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	})
	return r
}

// Handler returns the router of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on lis until Shutdown is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("serving", zap.String("address", lis.Addr().String()))
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) ListenAndServe() error {
	lis, err := net.Listen("tcp", s.listenAddress)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Shutdown stops accepting connections and waits for active requests until
// ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
