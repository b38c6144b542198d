/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mikeb26/uscf-lookup/uschess"
)

// PlayerLooker is the subset of *uschess.Client the API depends on.
type PlayerLooker interface {
	LookupByID(ctx context.Context, id string) (*uschess.Player, error)
	LookupByName(ctx context.Context, q uschess.NameQuery) ([]uschess.Player,
		error)
}

// RequestRecorder receives one observation per served request.
type RequestRecorder interface {
	RecordHTTPRequest(method string, route string, status int,
		duration time.Duration)
}

type Options struct {
	Looker PlayerLooker
	// Recorder and Metrics are optional; Metrics is mounted at /metrics.
	Recorder    RequestRecorder
	Metrics     http.Handler
	CORSOrigins []string
	// Timeout bounds each request, including any throttled upstream wait.
	Timeout time.Duration
}

type Handler struct {
	looker PlayerLooker
}

func NewHandler(looker PlayerLooker) *Handler {
	return &Handler{looker: looker}
}

// NewRouter wires the lookup endpoints together with logging, panic recovery,
// CORS and request metrics.
func NewRouter(opts Options) http.Handler {
	h := NewHandler(opts.Looker)
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	if opts.Recorder != nil {
		r.Use(instrument(opts.Recorder))
	}
	r.Use(recoverer)
	r.Use(chimiddleware.Timeout(opts.Timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Post("/uscf-lookup", h.LookupByID)
	r.Post("/uscf-lookup-name", h.LookupByName)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	return r
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type idRequest struct {
	ID string `json:"uscf_id"`
}

// LookupByID handles POST /uscf-lookup.
func (h *Handler) LookupByID(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		respondError(w, http.StatusBadRequest, "uscf_id is required")
		return
	}

	player, err := h.looker.LookupByID(r.Context(), req.ID)
	if requestDone(r) {
		return
	}
	if errors.Is(err, uschess.ErrInvalidID) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		internalError(w, "api.id", err)
		return
	}
	if player == nil {
		respondError(w, http.StatusNotFound, "player not found")
		return
	}

	respondJSON(w, http.StatusOK, player)
}

type nameRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	State     string `json:"state"`
}

// LookupByName handles POST /uscf-lookup-name.
func (h *Handler) LookupByName(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	players, err := h.looker.LookupByName(r.Context(), uschess.NameQuery{
		First: req.FirstName,
		Last:  req.LastName,
		State: req.State,
	})
	if requestDone(r) {
		return
	}
	if errors.Is(err, uschess.ErrMissingName) {
		respondError(w, http.StatusBadRequest,
			"first_name or last_name is required")
		return
	}
	if err != nil {
		internalError(w, "api.name", err)
		return
	}
	if players == nil {
		players = []uschess.Player{}
	}

	respondJSON(w, http.StatusOK, players)
}

// requestDone reports whether the request context ended during the lookup.
// The client degrades a canceled fetch to "not found", so nothing may be
// written; the timeout middleware answers 504 and a vanished caller needs no
// reply.
func requestDone(r *http.Request) bool {
	return r.Context().Err() != nil
}

// decodeBody treats an empty body as an empty object.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("api.respond: error encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// internalError logs err and replies with a generic 500.
func internalError(w http.ResponseWriter, where string, err error) {
	log.Printf("%v: %v", where, err)
	respondError(w, http.StatusInternalServerError,
		http.StatusText(http.StatusInternalServerError))
}
