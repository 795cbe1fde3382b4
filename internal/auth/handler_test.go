package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func testCredential(t *testing.T, username, password string) Credential {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("cannot hash password: %v", err)
	}
	return Credential{Username: username, PasswordHash: string(hash)}
}

func TestLogin(t *testing.T) {
	store := NewTokenStore(time.Hour)
	handler := NewHandler(store, []Credential{testCredential(t, "admin", "s3cret")}, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "validCredentials", body: `{"username":"admin","password":"s3cret"}`, wantStatus: http.StatusOK},
		{name: "wrongPassword", body: `{"username":"admin","password":"wrong"}`, wantStatus: http.StatusUnauthorized},
		{name: "unknownUser", body: `{"username":"ghost","password":"s3cret"}`, wantStatus: http.StatusUnauthorized},
		{name: "missingFields", body: `{"username":"admin"}`, wantStatus: http.StatusBadRequest},
		{name: "invalidJSON", body: `{`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestLoginIssuesUsableToken(t *testing.T) {
	store := NewTokenStore(time.Hour)
	handler := NewHandler(store, []Credential{testCredential(t, "admin", "s3cret")}, nil)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"admin","password":"s3cret"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}

	var resp struct {
		Data loginResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("cannot decode response: %v", err)
	}
	if resp.Data.Token == "" {
		t.Fatal("response carries no token")
	}

	username, err := store.Validate(resp.Data.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if username != "admin" {
		t.Errorf("username = %q, want admin", username)
	}
}

func TestLogout(t *testing.T) {
	store := NewTokenStore(time.Hour)
	handler := NewHandler(store, nil, nil)

	token, _ := store.Create("admin")

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if _, err := store.Validate(token); err == nil {
		t.Error("token should be invalid after logout")
	}
}
