// Package api provides the HTTP API for the almanac.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/almanac/internal/broadcast"
	"github.com/talgya/almanac/internal/calendar"
	"github.com/talgya/almanac/internal/command"
	"github.com/talgya/almanac/internal/config"
	"github.com/talgya/almanac/internal/engine"
	"github.com/talgya/almanac/internal/herald"
	"github.com/talgya/almanac/internal/metrics"
	"github.com/talgya/almanac/internal/persistence"
	"github.com/talgya/almanac/internal/placeholder"
	"github.com/talgya/almanac/internal/sampler"
	"github.com/talgya/almanac/internal/world"
)

// requestTimeout bounds how long a handler waits for the engine goroutine.
const requestTimeout = 5 * time.Second

// Server serves the almanac over HTTP. Everything that reads or changes the
// world, the herald or the engine runs through Eng.Do.
type Server struct {
	Eng      *engine.Engine
	Herald   *herald.Herald
	World    *world.World
	Commands *command.Handler
	DB       *persistence.DB // optional
	Hub      *broadcast.Hub  // optional
	Metrics  *metrics.Metrics
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	CORSOrigins []string // extra allowed browser origins
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	adminLimiter := NewRateLimiter(30, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/placeholder", s.handlePlaceholder)
	mux.HandleFunc("/api/v1/placeholders", s.handlePlaceholders)
	mux.HandleFunc("/api/v1/participants", s.handleParticipants)
	mux.HandleFunc("/api/v1/broadcasts", s.handleBroadcasts)
	if s.Hub != nil {
		mux.HandleFunc("/api/v1/ws", s.Hub.ServeWS)
	}
	if s.Metrics != nil {
		mux.Handle("/metrics", s.Metrics.Handler())
	}

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/reload", RateLimitMiddleware(adminLimiter, s.adminOnly(s.handleReload)))
	mux.HandleFunc("/api/v1/set", RateLimitMiddleware(adminLimiter, s.adminOnly(s.handleSet)))
	mux.HandleFunc("/api/v1/speed", RateLimitMiddleware(adminLimiter, s.adminOnly(s.handleSpeed)))

	return corsMiddleware(s.CORSOrigins, mux)
}

// Start begins serving the HTTP API in a goroutine. The returned server can
// be shut down by the caller.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no ALMANAC_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

// do runs fn on the engine goroutine, answering 503 when it is unavailable.
func (s *Server) do(w http.ResponseWriter, r *http.Request, fn func()) bool {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := s.Eng.Do(ctx, fn); err != nil {
		slog.Warn("engine call failed", "path", r.URL.Path, "error", err)
		http.Error(w, "engine unavailable", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// Status is the body of GET /api/v1/status.
type Status struct {
	Tick         uint64  `json:"tick"`
	Speed        float64 `json:"speed"`
	FullTime     uint64  `json:"full_time"`
	RawTime      int64   `json:"raw_time"`
	Time         string  `json:"time"`
	Date         string  `json:"date"`
	Day          int     `json:"day"`
	Month        int     `json:"month"`
	Year         int     `json:"year"`
	Weekday      int     `json:"weekday"`
	DayPhase     string  `json:"day_phase"`
	Weather      string  `json:"weather"`
	Season       string  `json:"season"`
	Zodiac       string  `json:"zodiac"`
	Holiday      string  `json:"holiday"`
	HolidayName  string  `json:"holiday_name,omitempty"`
	Participants int     `json:"participants"`
	Clients      int     `json:"clients"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var st Status
	ok := s.do(w, r, func() {
		cal := s.Herald.Calendar()
		snap := sampler.Sample(s.World, cal)
		st = Status{
			Tick:         s.Eng.Tick,
			Speed:        s.Eng.Speed,
			FullTime:     snap.FullTicks,
			RawTime:      int64(snap.RawTicks),
			Time:         calendar.FormatTime(int64(snap.RawTicks), s.Herald.Config().TimeFormat),
			Date:         snap.Date.String(),
			Day:          snap.Date.Day,
			Month:        snap.Date.Month,
			Year:         snap.Date.Year,
			Weekday:      snap.Date.Weekday,
			DayPhase:     snap.DayPhase,
			Weather:      snap.Weather,
			Season:       snap.Season,
			Zodiac:       snap.Zodiac,
			Holiday:      snap.Holiday,
			HolidayName:  cal.HolidayName(snap.Holiday),
			Participants: len(s.World.Participants()),
		}
	})
	if !ok {
		return
	}
	if s.Hub != nil {
		st.Clients = s.Hub.Clients()
	}
	writeJSON(w, st)
}

// resolver builds a placeholder resolver and viewer for participant id.
// It must run on the engine goroutine.
func (s *Server) resolver(id string) (*placeholder.Resolver, *placeholder.Viewer) {
	res := placeholder.New(s.Herald.Config(), s.Herald.Calendar(), s.World)
	p, ok := s.World.Participant(id)
	if !ok {
		return res, nil
	}
	return res, &placeholder.Viewer{Yaw: p.Yaw, Temperature: s.World.TemperatureAt(p.X, p.Z)}
}

func (s *Server) handlePlaceholder(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("participant")
	token := r.URL.Query().Get("token")
	if id == "" || token == "" {
		http.Error(w, "participant and token are required", http.StatusBadRequest)
		return
	}

	var (
		value string
		found bool
		known bool
	)
	ok := s.do(w, r, func() {
		res, v := s.resolver(id)
		known = v != nil
		value, found = res.Resolve(v, token)
	})
	if !ok {
		return
	}
	if !known {
		http.Error(w, "participant not found", http.StatusNotFound)
		return
	}
	if !found {
		http.Error(w, "unknown token", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"participant": id, "token": token, "value": value})
}

func (s *Server) handlePlaceholders(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("participant")
	if id == "" {
		http.Error(w, "participant is required", http.StatusBadRequest)
		return
	}

	var values map[string]string
	ok := s.do(w, r, func() {
		res, v := s.resolver(id)
		if v != nil {
			values = res.All(v)
		}
	})
	if !ok {
		return
	}
	if values == nil {
		http.Error(w, "participant not found", http.StatusNotFound)
		return
	}
	writeJSON(w, values)
}

func (s *Server) handleParticipants(w http.ResponseWriter, r *http.Request) {
	var list []world.Participant
	if !s.do(w, r, func() { list = s.World.Participants() }) {
		return
	}
	writeJSON(w, list)
}

// BroadcastView is one journal row as served by the API.
type BroadcastView struct {
	persistence.Broadcast
	SentAgo string `json:"sent_ago"`
}

func (s *Server) handleBroadcasts(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "journal disabled", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	rows, err := s.DB.RecentBroadcasts(limit)
	if err != nil {
		slog.Error("list broadcasts", "error", err)
		http.Error(w, "journal unavailable", http.StatusInternalServerError)
		return
	}
	out := make([]BroadcastView, 0, len(rows))
	for _, b := range rows {
		out = append(out, BroadcastView{Broadcast: b, SentAgo: humanize.Time(b.At)})
	}
	writeJSON(w, out)
}

// CommandResult is the body returned by the admin command endpoints.
type CommandResult struct {
	OK    bool   `json:"ok"`
	Reply string `json:"reply"`
	Error string `json:"error,omitempty"`
}

var apiSender = command.Sender{Name: "api", Admin: true}

func (s *Server) runCommand(w http.ResponseWriter, r *http.Request, args []string) {
	var (
		reply string
		err   error
	)
	if !s.do(w, r, func() { reply, err = s.Commands.Execute(apiSender, args) }) {
		return
	}

	res := CommandResult{OK: err == nil, Reply: reply}
	if err != nil {
		res.Error = err.Error()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(commandStatus(err))
		json.NewEncoder(w).Encode(res)
		return
	}
	writeJSON(w, res)
}

func commandStatus(err error) int {
	switch {
	case errors.Is(err, command.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, config.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, command.ErrUsage),
		errors.Is(err, command.ErrInvalidNumber),
		errors.Is(err, calendar.ErrOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.runCommand(w, r, []string{"reload"})
}

// SetRequest is the body of POST /api/v1/set.
type SetRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req SetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	s.runCommand(w, r, []string{"set", req.Field, req.Value})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var speed float64
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		if !s.do(w, r, func() { s.Eng.Speed = req.Speed; speed = s.Eng.Speed }) {
			return
		}
		slog.Info("speed changed", "speed", req.Speed)
	} else if !s.do(w, r, func() { speed = s.Eng.Speed }) {
		return
	}

	writeJSON(w, map[string]float64{"speed": speed})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
