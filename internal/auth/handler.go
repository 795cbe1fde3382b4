package auth

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

// Credential is a configured staff login: a username and a bcrypt hash.
type Credential struct {
	Username     string
	PasswordHash string
}

// Handler serves staff login. Credentials come from configuration; there is
// no user storage.
type Handler struct {
	store       *TokenStore
	credentials []Credential
	logger      apt.Logger
}

func NewHandler(store *TokenStore, credentials []Credential, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		store:       store,
		credentials: credentials,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if req.Username == "" || req.Password == "" {
		apt.RespondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	cred, ok := h.lookup(req.Username)
	if !ok || bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)) != nil {
		// Same response for unknown user and wrong password.
		h.logger.Info("failed login attempt", "username", req.Username)
		apt.RespondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.store.Create(cred.Username)
	if err != nil {
		h.logger.Error("cannot issue token", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}

	apt.RespondSuccess(w, loginResponse{Token: token, Username: cred.Username})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := BearerToken(r)
	if token != "" {
		h.store.Invalidate(token)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) lookup(username string) (Credential, bool) {
	for _, cred := range h.credentials {
		if cred.Username == username {
			return cred, true
		}
	}
	return Credential{}, false
}
