package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStaffGate(t *testing.T) {
	store := NewTokenStore(time.Hour)
	token, err := store.Create("admin")
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	gate := StaffGate(store)(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "validToken", header: "Bearer " + token, wantStatus: http.StatusNoContent},
		{name: "missingHeader", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrongScheme", header: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "unknownToken", header: "Bearer bogus", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/tables", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			gate.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer", header: "Bearer abc123", want: "abc123"},
		{name: "lowercaseScheme", header: "bearer abc123", want: "abc123"},
		{name: "empty", header: "", want: ""},
		{name: "noToken", header: "Bearer", want: ""},
		{name: "basicScheme", header: "Basic abc123", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := BearerToken(req); got != tt.want {
				t.Errorf("BearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
