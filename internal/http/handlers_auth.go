package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"kharcha/internal/auth"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	if err := auth.ValidateUsername(req.Username); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	// Self-registration never grants admin; admins are provisioned out of band.
	if err := s.users.CreateUser(r.Context(), req.Username, hash, false); err != nil {
		writeDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "User registered", "username", req.Username)
	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.GetUser(r.Context(), strings.TrimSpace(req.Username))
	if err != nil || !s.auth.CheckPassword(req.Password, user.PasswordHash) {
		// Same response for unknown user and wrong password
		slog.WarnContext(r.Context(), "Login failed", "username", req.Username)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.auth.GenerateToken(user.Username, user.Admin)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "User logged in", "username", user.Username, "admin", user.Admin)
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"admin": user.Admin,
	})
}
