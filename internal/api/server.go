// Package api provides REST API endpoints for NOTAM geometry data.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"notam_parser/internal/airports"
	"notam_parser/internal/geo"
	"notam_parser/internal/notam"
	"notam_parser/internal/resolver"
	"notam_parser/internal/storage"
)

// Server provides REST API access to resolved NOTAM geometries.
type Server struct {
	ch          *storage.ClickHouseDB
	pg          *storage.PostgresDB
	table       airports.Table
	port        int
	authEnabled bool
	apiKeys     map[string]bool // Simple API key auth (when enabled).
}

// Config holds configuration for the geometry API server.
type Config struct {
	Port        int
	AuthEnabled bool
	APIKeys     []string // List of valid API keys.
}

// NewServer creates a new geometry API server. The ClickHouse and
// PostgreSQL handles may be nil; their endpoints return 503 then, and
// the pure parse endpoints still work.
func NewServer(ch *storage.ClickHouseDB, pg *storage.PostgresDB, table airports.Table, cfg Config) *Server {
	keys := make(map[string]bool)
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys[k] = true
		}
	}

	return &Server{
		ch:          ch,
		pg:          pg,
		table:       table,
		port:        cfg.Port,
		authEnabled: cfg.AuthEnabled,
		apiKeys:     keys,
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	r := chi.NewRouter()

	// Standard middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS for browser access.
	r.Use(corsMiddleware)

	// Optional authentication.
	if s.authEnabled {
		r.Use(s.authMiddleware)
	}

	// API routes.
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required).
		r.Get("/health", s.handleHealth)

		// Stateless parsing.
		r.Post("/parse", s.handleParse)
		r.Post("/parse/batch", s.handleParseBatch)

		// Stored geometries.
		r.Get("/geometries", s.handleQueryGeometries)
		r.Get("/geometries/{notam_id}", s.handleGetGeometry)
		r.Get("/stats/shapes", s.handleShapeCounts)

		// Airport reference data.
		r.Get("/airports/{icao}", s.handleGetAirport)
	})

	addr := ":" + strconv.Itoa(s.port)
	log.Printf("Geometry API starting at http://localhost%s", addr)
	if s.authEnabled {
		log.Printf("Authentication: ENABLED (API key required)")
	} else {
		log.Printf("Authentication: DISABLED (open access)")
	}

	return http.ListenAndServe(addr, r)
}

// Router returns the configured chi router for embedding in other servers.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	// Optional authentication.
	if s.authEnabled {
		r.Use(s.authMiddleware)
	}

	r.Get("/health", s.handleHealth)
	r.Post("/parse", s.handleParse)
	r.Post("/parse/batch", s.handleParseBatch)
	r.Get("/geometries", s.handleQueryGeometries)
	r.Get("/geometries/{notam_id}", s.handleGetGeometry)
	r.Get("/stats/shapes", s.handleShapeCounts)
	r.Get("/airports/{icao}", s.handleGetAirport)

	return r
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware validates API key authentication.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check X-API-Key header first.
		apiKey := r.Header.Get("X-API-Key")

		// Fall back to Authorization: Bearer <key>.
		if apiKey == "" {
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				apiKey = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		// Fall back to query parameter (for simple testing).
		if apiKey == "" {
			apiKey = r.URL.Query().Get("api_key")
		}

		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "API key required")
			return
		}

		if !s.apiKeys[apiKey] {
			writeError(w, http.StatusForbidden, "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ParseRequest is the request body for the parse endpoint. Either a full
// raw NOTAM or a bare restriction text may be supplied.
type ParseRequest struct {
	Raw  string `json:"raw,omitempty"`
	Text string `json:"text,omitempty"`
}

// ParseResponse is the JSON response for a parse request.
type ParseResponse struct {
	NotamID  string        `json:"notam_id,omitempty"`
	FIR      string        `json:"fir,omitempty"`
	Stage    string        `json:"stage,omitempty"`
	Geometry *geo.Geometry `json:"geometry"`
	Error    string        `json:"error,omitempty"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	resp, ok := s.parseOne(req)
	if !ok {
		writeError(w, http.StatusBadRequest, "raw or text is required")
		return
	}

	status := http.StatusOK
	if resp.Geometry == nil {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

// parseOne resolves a single parse request. Returns false when the
// request carries neither a raw NOTAM nor a restriction text.
func (s *Server) parseOne(req ParseRequest) (ParseResponse, bool) {
	switch {
	case req.Raw != "":
		rec, ok := notam.ParseBlock(req.Raw)
		if !ok {
			return ParseResponse{Error: "unrecognised NOTAM format"}, true
		}
		resp := ParseResponse{NotamID: rec.ID, FIR: rec.FIR}
		result, err := resolver.Resolve(rec, s.table)
		if err != nil {
			resp.Error = err.Error()
			return resp, true
		}
		resp.Stage = result.Stage
		resp.Geometry = result.Geometry
		return resp, true

	case req.Text != "":
		resp := ParseResponse{}
		if g := resolver.FromText(req.Text); g != nil {
			resp.Stage = resolver.StageText
			resp.Geometry = g
		} else {
			resp.Error = resolver.ErrNoPatternMatch.Error()
		}
		return resp, true
	}
	return ParseResponse{}, false
}

// BatchParseRequest is the request body for batch parsing.
type BatchParseRequest struct {
	Items []ParseRequest `json:"items"`
}

// BatchParseResponse is the response for batch parsing, in request order.
type BatchParseResponse struct {
	Results []ParseResponse `json:"results"`
}

func (s *Server) handleParseBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "No items specified")
		return
	}
	if len(req.Items) > 100 {
		writeError(w, http.StatusBadRequest, "Maximum 100 items per batch request")
		return
	}

	resp := BatchParseResponse{Results: make([]ParseResponse, 0, len(req.Items))}
	for _, item := range req.Items {
		one, ok := s.parseOne(item)
		if !ok {
			one = ParseResponse{Error: "raw or text is required"}
		}
		resp.Results = append(resp.Results, one)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQueryGeometries(w http.ResponseWriter, r *http.Request) {
	if s.ch == nil {
		writeError(w, http.StatusServiceUnavailable, "Geometry store not configured")
		return
	}

	q := storage.GeometryQuery{
		FIR:      strings.ToUpper(r.URL.Query().Get("fir")),
		Location: strings.ToUpper(r.URL.Query().Get("location")),
		Shape:    r.URL.Query().Get("shape"),
		Stage:    r.URL.Query().Get("stage"),
		FullText: r.URL.Query().Get("q"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		q.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		q.Offset, _ = strconv.Atoi(v)
	}

	rows, err := s.ch.Query(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rowsToFeatureCollection(rows))
}

func (s *Server) handleGetGeometry(w http.ResponseWriter, r *http.Request) {
	if s.ch == nil {
		writeError(w, http.StatusServiceUnavailable, "Geometry store not configured")
		return
	}

	notamID := strings.ToUpper(chi.URLParam(r, "notam_id"))
	if notamID == "" {
		writeError(w, http.StatusBadRequest, "notam_id is required")
		return
	}

	rows, err := s.ch.Query(r.Context(), storage.GeometryQuery{NotamID: notamID, Limit: 1})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "No geometry found for NOTAM")
		return
	}

	writeJSON(w, http.StatusOK, rowToFeature(rows[0]))
}

func (s *Server) handleShapeCounts(w http.ResponseWriter, r *http.Request) {
	if s.ch == nil {
		writeError(w, http.StatusServiceUnavailable, "Geometry store not configured")
		return
	}

	counts, err := s.ch.ShapeCounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleGetAirport(w http.ResponseWriter, r *http.Request) {
	icao := strings.ToUpper(chi.URLParam(r, "icao"))
	if icao == "" {
		writeError(w, http.StatusBadRequest, "icao is required")
		return
	}

	// Prefer the in-memory table, fall back to PostgreSQL.
	if ap, ok := s.table.Lookup(icao); ok {
		writeJSON(w, http.StatusOK, ap)
		return
	}
	if s.pg != nil {
		table, err := s.pg.LoadAirports(context.Background())
		if err == nil {
			if ap, ok := table.Lookup(icao); ok {
				writeJSON(w, http.StatusOK, ap)
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, "Unknown airport")
}

// rowToFeature converts a stored geometry row to a GeoJSON Feature. The
// stored geojson column holds the geometry object verbatim.
func rowToFeature(row storage.GeometryRow) map[string]interface{} {
	props := map[string]interface{}{
		"notam_id": row.NotamID,
		"stage":    row.Stage,
		"shape":    row.Shape,
	}
	if row.FIR != "" {
		props["fir"] = row.FIR
	}
	if row.Location != "" {
		props["location"] = row.Location
	}
	if row.RadiusNM > 0 {
		props["radius_nm"] = row.RadiusNM
	}
	if row.CorridorWidthKM > 0 {
		props["corridor_width_km"] = row.CorridorWidthKM
	}
	if row.ValidFrom != "" {
		props["valid_from"] = row.ValidFrom
	}
	if row.ValidTill != "" {
		props["valid_till"] = row.ValidTill
	}

	return map[string]interface{}{
		"type":       "Feature",
		"geometry":   json.RawMessage(row.GeoJSON),
		"properties": props,
	}
}

func rowsToFeatureCollection(rows []storage.GeometryRow) map[string]interface{} {
	features := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		features = append(features, rowToFeature(row))
	}
	return map[string]interface{}{
		"type":     "FeatureCollection",
		"features": features,
	}
}

// Helper functions.

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
