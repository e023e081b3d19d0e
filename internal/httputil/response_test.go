package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSONError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSONError(rec, http.StatusServiceUnavailable, "track DB not configured")

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %s, want application/json", ct)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp["error"] != "track DB not configured" {
		t.Errorf("error = %q, want 'track DB not configured'", resp["error"])
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	type frameSummary struct {
		Frame     int64 `json:"frame"`
		Processed bool  `json:"processed"`
	}

	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, frameSummary{Frame: 41, Processed: true})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var resp frameSummary
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Frame != 41 || !resp.Processed {
		t.Errorf("unexpected payload: %+v", resp)
	}
}

func TestWriteJSONOK(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSONOK(rec, map[string]int{"total_detections": 3})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp["total_detections"] != 3 {
		t.Errorf("total_detections = %d, want 3", resp["total_detections"])
	}
}

func TestStatusHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		write     func(w http.ResponseWriter)
		wantCode  int
		wantError string
	}{
		{
			name:      "method_not_allowed",
			write:     func(w http.ResponseWriter) { MethodNotAllowed(w) },
			wantCode:  http.StatusMethodNotAllowed,
			wantError: "method not allowed",
		},
		{
			name:      "bad_request",
			write:     func(w http.ResponseWriter) { BadRequest(w, "invalid request body") },
			wantCode:  http.StatusBadRequest,
			wantError: "invalid request body",
		},
		{
			name:      "internal_server_error",
			write:     func(w http.ResponseWriter) { InternalServerError(w, "query failed") },
			wantCode:  http.StatusInternalServerError,
			wantError: "query failed",
		},
		{
			name:      "not_found",
			write:     func(w http.ResponseWriter) { NotFound(w, "session not found") },
			wantCode:  http.StatusNotFound,
			wantError: "session not found",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)

			if rec.Code != tc.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantCode)
			}

			var resp map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp["error"] != tc.wantError {
				t.Errorf("error = %q, want %q", resp["error"], tc.wantError)
			}
		})
	}
}
