package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cardtable/cardtable/pkg/api/handlers"
	"github.com/cardtable/cardtable/pkg/log"
	"github.com/cardtable/cardtable/pkg/repositories"
	"github.com/cardtable/cardtable/pkg/sessions"
)

type APIServer struct {
	server *http.Server
}

type NewAPIServerOptions struct {
	Port       int
	Manager    *sessions.Manager
	Repository repositories.Repository
}

// NewAPIServer creates a new http.Server for handling status requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	router := mux.NewRouter()
	router.HandleFunc("/health", handlers.HandleHealth()).Methods(http.MethodGet)
	router.HandleFunc("/sessions", handlers.HandleListSessions(opts.Manager)).Methods(http.MethodGet)
	router.HandleFunc("/results", handlers.HandleListResults(opts.Repository)).Methods(http.MethodGet)
	router.HandleFunc("/results/{sessionID}", handlers.HandleGetResult(opts.Repository)).Methods(http.MethodGet)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}
	return &APIServer{
		server: server,
	}
}

// Start starts the APIServer
func (s *APIServer) Start() {
	log.Info("API server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
