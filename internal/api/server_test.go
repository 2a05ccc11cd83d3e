package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"notam_parser/internal/airports"
	_ "notam_parser/internal/matchers" // register all shape matchers via init()
	"notam_parser/internal/registry"
)

func init() {
	registry.Default().Sort()
}

func testServer() *Server {
	table := airports.Table{
		"UUEE": {ICAO: "UUEE", Name: "Sheremetyevo", Lat: 55.972, Lon: 37.414},
	}
	return NewServer(nil, nil, table, Config{Port: 8082})
}

func TestHealthEndpoint(t *testing.T) {
	router := testServer().Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestParseEndpoint_Text(t *testing.T) {
	router := testServer().Router()

	body, _ := json.Marshal(ParseRequest{
		Text: "AIRSPACE CLSD WI CIRCLE RADIUS 5KM CENTRE 612800N0401500E",
	})
	req := httptest.NewRequest(http.MethodPost, "/parse", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ParseResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Stage != "text" {
		t.Errorf("stage = %q, want text", resp.Stage)
	}
	if resp.Geometry == nil {
		t.Fatal("expected geometry in response")
	}
}

func TestParseEndpoint_Raw(t *testing.T) {
	router := testServer().Router()

	raw := `(Q2500/25 NOTAMN
Q) UUWV/QRTCA/IV/BO/W/000/050/5535N03716E025
A) UUWV B) 2507140500 C) 2507141300
E) AIRSPACE CLSD WI CIRCLE RADIUS 5KM CENTRE 553500N0371600E
F) SFC G) FL050)`

	body, _ := json.Marshal(ParseRequest{Raw: raw})
	req := httptest.NewRequest(http.MethodPost, "/parse", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ParseResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.NotamID != "Q2500/25" {
		t.Errorf("notam_id = %q, want Q2500/25", resp.NotamID)
	}
	if resp.FIR != "UUWV" {
		t.Errorf("fir = %q, want UUWV", resp.FIR)
	}
	if resp.Stage != "text" {
		t.Errorf("stage = %q, want text", resp.Stage)
	}
}

func TestParseEndpoint_Unresolvable(t *testing.T) {
	router := testServer().Router()

	body, _ := json.Marshal(ParseRequest{Text: "RWY 08/26 CLSD"})
	req := httptest.NewRequest(http.MethodPost, "/parse", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", rec.Code)
	}
}

func TestParseEndpoint_EmptyBody(t *testing.T) {
	router := testServer().Router()

	req := httptest.NewRequest(http.MethodPost, "/parse", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestBatchParseEndpoint(t *testing.T) {
	router := testServer().Router()

	body, _ := json.Marshal(BatchParseRequest{Items: []ParseRequest{
		{Text: "AIRSPACE CLSD WI CIRCLE RADIUS 5KM CENTRE 612800N0401500E"},
		{Text: "RWY 08/26 CLSD"},
	}})
	req := httptest.NewRequest(http.MethodPost, "/parse/batch", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp BatchParseResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(resp.Results))
	}
	if resp.Results[0].Geometry == nil {
		t.Error("first result should carry a geometry")
	}
	if resp.Results[1].Geometry != nil || resp.Results[1].Error == "" {
		t.Error("second result should fail with an error")
	}
}

func TestAirportEndpoint(t *testing.T) {
	router := testServer().Router()

	req := httptest.NewRequest(http.MethodGet, "/airports/uuee", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var ap airports.Airport
	if err := json.NewDecoder(rec.Body).Decode(&ap); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if ap.ICAO != "UUEE" {
		t.Errorf("icao = %q, want UUEE", ap.ICAO)
	}

	req = httptest.NewRequest(http.MethodGet, "/airports/XXXX", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown airport, got %d", rec.Code)
	}
}

func TestGeometriesEndpoint_NoStore(t *testing.T) {
	router := testServer().Router()

	req := httptest.NewRequest(http.MethodGet, "/geometries", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503 without a geometry store, got %d", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	server := NewServer(nil, nil, make(airports.Table), Config{
		Port:        8082,
		AuthEnabled: true,
		APIKeys:     []string{"secret"},
	})
	router := server.Router()

	// No key.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 without key, got %d", rec.Code)
	}

	// Wrong key.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403 with wrong key, got %d", rec.Code)
	}

	// Valid key via Bearer header.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 with valid key, got %d", rec.Code)
	}
}
