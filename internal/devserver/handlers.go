package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nutrilog/nutrilog/internal/client/models"
	"github.com/nutrilog/nutrilog/internal/logging"
)

const bcryptCost = 12

// Server holds the stub backend state and its HTTP handlers.
type Server struct {
	users   *UserStore
	tokens  *TokenService
	metrics *Collector
	log     logging.Logger
}

// NewServer assembles the stub backend. Metrics registration happens on the
// given registerer so tests can use isolated registries.
func NewServer(tokens *TokenService, metrics *Collector, log logging.Logger) *Server {
	return &Server{
		users:   NewUserStore(),
		tokens:  tokens,
		metrics: metrics,
		log:     log,
	}
}

type tokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type loginResponse struct {
	Access  string         `json:"access"`
	Refresh string         `json:"refresh"`
	User    models.Profile `json:"user"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload models.LoginCredentials
	if err := decodeJSON(r, &payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	u, ok := s.users.ByUsername(payload.Username)
	if !ok || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(payload.Password)) != nil {
		s.metrics.RecordAuthFailure()
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	_ = s.users.Update(u.ID, func(u *User) { u.LastLogin = time.Now() })

	access, refresh, err := s.tokens.IssuePair(u)
	if err != nil {
		s.log.Error(r.Context(), "failed to issue tokens", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Access: access, Refresh: refresh, User: u.Profile()})
}

func (s *Server) handleRegistration(w http.ResponseWriter, r *http.Request) {
	var payload models.RegisterData
	if err := decodeJSON(r, &payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	payload.Username = strings.TrimSpace(payload.Username)
	switch {
	case payload.Username == "" || payload.Email == "":
		writeDetail(w, http.StatusBadRequest, "Username and email are required.")
		return
	case payload.Password1 == "":
		writeDetail(w, http.StatusBadRequest, "Password is required.")
		return
	case payload.Password1 != payload.Password2:
		writeDetail(w, http.StatusBadRequest, "The two password fields didn't match.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password1), bcryptCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	u, err := s.users.Create(payload.Username, payload.Email, string(hash))
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			writeDetail(w, http.StatusConflict, "A user with that username already exists.")
			return
		}
		writeDetail(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	_ = s.users.Update(u.ID, func(u *User) {
		u.FirstName = payload.FirstName
		u.LastName = payload.LastName
		u.DOB = payload.DOB
		u.Height = payload.Height
		u.CurrWeight = payload.CurrWeight
		u.ActivityLevel = payload.ActivityLevel
		u.UnitPreference = payload.UnitPreference
	})

	access, refresh, err := s.tokens.IssuePair(u)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	// Tokens only; the client fetches the profile in a follow-up call.
	writeJSON(w, http.StatusCreated, tokenPairResponse{Access: access, Refresh: refresh})
}

func (s *Server) handleTokenRefresh(w http.ResponseWriter, r *http.Request) {
	var payload refreshRequest
	if err := decodeJSON(r, &payload); err != nil || payload.Refresh == "" {
		writeDetail(w, http.StatusBadRequest, "Refresh token is required.")
		return
	}

	access, refresh, err := s.tokens.Rotate(payload.Refresh, s.users)
	if err != nil {
		s.metrics.RecordAuthFailure()
		writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{Access: access, Refresh: refresh})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var payload refreshRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	s.tokens.Revoke(payload.Refresh)
	writeDetail(w, http.StatusOK, "Successfully logged out.")
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "User not found.")
		return
	}
	writeJSON(w, http.StatusOK, u.Profile())
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "User not found.")
		return
	}

	var payload models.ProfileUpdate
	if err := decodeJSON(r, &payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	_ = s.users.Update(u.ID, func(u *User) {
		if payload.Email != nil {
			u.Email = *payload.Email
		}
		if payload.FirstName != nil {
			u.FirstName = *payload.FirstName
		}
		if payload.LastName != nil {
			u.LastName = *payload.LastName
		}
		if payload.DOB != nil {
			u.DOB = *payload.DOB
		}
		if payload.Height != nil {
			u.Height = payload.Height
		}
		if payload.CurrWeight != nil {
			u.CurrWeight = payload.CurrWeight
		}
		if payload.ActivityLevel != nil {
			u.ActivityLevel = *payload.ActivityLevel
		}
		if payload.UnitPreference != nil {
			u.UnitPreference = *payload.UnitPreference
		}
	})

	u, _ = s.users.ByID(u.ID)
	writeJSON(w, http.StatusOK, u.Profile())
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "User not found.")
		return
	}

	var payload changePasswordRequest
	if err := decodeJSON(r, &payload); err != nil || payload.NewPassword == "" {
		writeDetail(w, http.StatusBadRequest, "Old and new passwords are required.")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(payload.OldPassword)) != nil {
		writeDetail(w, http.StatusBadRequest, "Old password is incorrect.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcryptCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	_ = s.users.Update(u.ID, func(u *User) { u.PasswordHash = string(hash) })

	writeDetail(w, http.StatusOK, "Password changed successfully.")
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "User not found.")
		return
	}

	var payload deleteAccountRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(payload.Password)) != nil {
		writeDetail(w, http.StatusBadRequest, "Password is incorrect.")
		return
	}

	s.tokens.RevokeUser(u.ID)
	_ = s.users.Delete(u.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) currentUser(r *http.Request) (*User, bool) {
	id, ok := userIDFromContext(r.Context())
	if !ok {
		return nil, false
	}
	return s.users.ByID(id)
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
