// cmd/matchd/routes.go
// Internal trigger endpoints for moderation and operations.

package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vivahsetu/vivah-backend/internal/matching"
	"github.com/vivahsetu/vivah-backend/internal/profile"
	"github.com/vivahsetu/vivah-backend/internal/social"
)

func registerInternalRoutes(router *mux.Router, matches matching.Service, profiles profile.Service, socials social.Service) {
	internal := router.PathPrefix("/internal").Subrouter()

	internal.HandleFunc("/users/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := profiles.ApproveProfile(r.Context(), userID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "approved"})
	}).Methods(http.MethodPost)

	internal.HandleFunc("/users/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := profiles.RejectProfile(r.Context(), userID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
	}).Methods(http.MethodPost)

	internal.HandleFunc("/users/{id}/recalculate", func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r)
		if !ok {
			return
		}
		result, err := matches.RecalculateUserMatches(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}).Methods(http.MethodPost)

	internal.HandleFunc("/users/{id}/matches", func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r)
		if !ok {
			return
		}
		page := queryInt(r, "page", 1)
		limit := queryInt(r, "limit", 20)
		result, err := matches.GetUserMatches(r.Context(), userID, page, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}).Methods(http.MethodGet)

	internal.HandleFunc("/users/{id}/requests", func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r)
		if !ok {
			return
		}
		requests, err := socials.GetUserRequests(r.Context(), userID, r.URL.Query().Get("direction"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, requests)
	}).Methods(http.MethodGet)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, matching.ErrUserNotFound), errors.Is(err, profile.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, matching.ErrInvalidPaging):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
