package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/cardtable/cardtable/pkg/log"
	"github.com/cardtable/cardtable/pkg/repositories"
	"github.com/cardtable/cardtable/pkg/sessions"
	"github.com/cardtable/cardtable/pkg/version"
)

const (
	defaultResultsLimit = 50
	maxResultsLimit     = 500
)

func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{
			"status":  "ok",
			"version": version.Get(),
		})
	}
}

func HandleListSessions(manager *sessions.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, manager.Sessions())
	}
}

func HandleListResults(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultResultsLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				http.Error(w, "Invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}
		if limit > maxResultsLimit {
			limit = maxResultsLimit
		}

		results, err := repository.ListMatchResults(r.Context(), limit)
		if err != nil {
			log.Error("failed to list match results: %v", err)
			http.Error(w, "Failed to list match results", http.StatusInternalServerError)
			return
		}
		writeJSON(w, results)
	}
}

func HandleGetResult(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["sessionID"]
		result, err := repository.GetMatchResult(r.Context(), sessionID)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Match result not found", http.StatusNotFound)
				return
			}
			log.Error("failed to get match result: %v", err)
			http.Error(w, "Failed to get match result", http.StatusInternalServerError)
			return
		}
		writeJSON(w, result)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
