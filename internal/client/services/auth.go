// Package services contains the application services of the nutrilog client.
// This file defines the auth service: the UI-facing session verbs that
// compose the API client, the credential store, and the session state store
// into atomic actions.
package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/nutrilog/nutrilog/internal/client/models"
	"github.com/nutrilog/nutrilog/internal/client/session"
	"github.com/nutrilog/nutrilog/internal/common"
	"github.com/nutrilog/nutrilog/internal/logging"
)

// Backend endpoint paths consumed by the session verbs.
const (
	loginPath          = "/auth/login/"
	registrationPath   = "/auth/registration/"
	logoutPath         = "/auth/logout/"
	userPath           = "/auth/user/"
	profileUpdatePath  = "/users/profile/update/"
	changePasswordPath = "/users/change-password/"
	deleteAccountPath  = "/users/delete-account/"
)

// APIClient is the transport contract the auth service depends on.
type APIClient interface {
	Request(ctx context.Context, method, path string, body any, out any) error
	AuthenticatedRequest(ctx context.Context, method, path string, body any, out any) error
}

// CredentialStore is the durable session tier.
type CredentialStore interface {
	SaveTokens(ctx context.Context, tokens models.Credentials) error
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SaveUser(ctx context.Context, user *models.Profile) error
	User(ctx context.Context) (*models.Profile, error)
	Clear(ctx context.Context) error
}

// AuthService exposes the session lifecycle to the UI.
//
// Contract:
//   - Login/Register: authenticate, persist credentials, publish the session.
//   - Logout: best-effort server invalidation, then always log out locally.
//   - RefreshUser: re-fetch the canonical profile.
//   - UpdateProfile/ChangePassword/DeleteAccount: authenticated mutations.
//   - InitializeFromStorage: cold-start bootstrap from the durable store.
//
// Every method brackets its work with loading transitions on the session
// store, and all methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, creds models.LoginCredentials) error
	Register(ctx context.Context, data models.RegisterData) error
	Logout(ctx context.Context) error
	RefreshUser(ctx context.Context) error
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) error
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	DeleteAccount(ctx context.Context, password string) error
	InitializeFromStorage(ctx context.Context) error
}

type authService struct {
	api   APIClient
	creds CredentialStore
	state *session.Store
	log   logging.Logger
}

// NewAuthService constructs an AuthService bound to the given transport,
// credential store, and session state store.
func NewAuthService(api APIClient, creds CredentialStore, state *session.Store, log logging.Logger) AuthService {
	return &authService{api: api, creds: creds, state: state, log: log}
}

// authResponse is the body of POST /auth/login/ (and /auth/registration/,
// where user is absent).
type authResponse struct {
	Access  string          `json:"access"`
	Refresh string          `json:"refresh"`
	User    *models.Profile `json:"user"`
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

// Login authenticates with username/password. On success the credential pair
// and profile are persisted and the session store reflects the signed-in
// user; on failure the session is reset and the error is returned.
func (a *authService) Login(ctx context.Context, creds models.LoginCredentials) error {
	a.state.Dispatch(session.SetLoading{Loading: true})
	defer a.state.Dispatch(session.SetLoading{Loading: false})

	var resp authResponse
	if err := a.api.Request(ctx, http.MethodPost, loginPath, creds, &resp); err != nil {
		a.state.Dispatch(session.ResetAuth{})
		return err
	}

	tokens := models.Credentials{Access: resp.Access, Refresh: resp.Refresh}
	a.persist(ctx, tokens, resp.User)
	a.publish(resp.User, tokens)
	a.log.Info(ctx, "logged in", "user", creds.Username)
	return nil
}

// Register creates an account. The registration response carries tokens
// only, so the canonical profile is fetched right after before the session
// is published.
func (a *authService) Register(ctx context.Context, data models.RegisterData) error {
	a.state.Dispatch(session.SetLoading{Loading: true})
	defer a.state.Dispatch(session.SetLoading{Loading: false})

	var resp authResponse
	if err := a.api.Request(ctx, http.MethodPost, registrationPath, data, &resp); err != nil {
		a.state.Dispatch(session.ResetAuth{})
		return err
	}

	tokens := models.Credentials{Access: resp.Access, Refresh: resp.Refresh}
	if err := a.creds.SaveTokens(ctx, tokens); err != nil {
		a.log.Warn(ctx, "failed to persist tokens", "error", err)
	}

	var user models.Profile
	if err := a.api.AuthenticatedRequest(ctx, http.MethodGet, userPath, nil, &user); err != nil {
		a.state.Dispatch(session.ResetAuth{})
		return err
	}
	if err := a.creds.SaveUser(ctx, &user); err != nil {
		a.log.Warn(ctx, "failed to persist profile", "error", err)
	}

	a.publish(&user, tokens)
	a.log.Info(ctx, "registered", "user", data.Username)
	return nil
}

// Logout invalidates the refresh token server-side on a best-effort basis
// (failures are logged, never surfaced) and unconditionally resets the local
// session. When no session exists it performs no network call at all.
func (a *authService) Logout(ctx context.Context) error {
	a.state.Dispatch(session.SetLoading{Loading: true})
	defer a.state.Dispatch(session.SetLoading{Loading: false})

	refresh, err := a.creds.RefreshToken(ctx)
	if err != nil {
		a.log.Warn(ctx, "failed to read refresh token on logout", "error", err)
	}
	if refresh != "" {
		if err := a.api.Request(ctx, http.MethodPost, logoutPath, logoutRequest{Refresh: refresh}, nil); err != nil {
			a.log.Warn(ctx, "server-side logout failed", "error", err)
		}
	}

	a.state.Dispatch(session.ResetAuth{})
	a.clearStore(ctx)
	a.log.Info(ctx, "logged out")
	return nil
}

// RefreshUser re-fetches the canonical profile and updates state and cache.
func (a *authService) RefreshUser(ctx context.Context) error {
	a.state.Dispatch(session.SetLoading{Loading: true})
	defer a.state.Dispatch(session.SetLoading{Loading: false})

	var user models.Profile
	if err := a.api.AuthenticatedRequest(ctx, http.MethodGet, userPath, nil, &user); err != nil {
		return a.authFailure(ctx, err)
	}
	if err := a.creds.SaveUser(ctx, &user); err != nil {
		a.log.Warn(ctx, "failed to persist profile", "error", err)
	}
	a.state.Dispatch(session.SetUser{User: &user})
	return nil
}

// UpdateProfile applies a partial profile update. The server returns the
// full updated profile, which replaces the session user. Failures propagate
// without resetting the session.
func (a *authService) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	a.state.Dispatch(session.SetLoading{Loading: true})
	defer a.state.Dispatch(session.SetLoading{Loading: false})

	var user models.Profile
	if err := a.api.AuthenticatedRequest(ctx, http.MethodPatch, profileUpdatePath, update, &user); err != nil {
		return a.authFailure(ctx, err)
	}
	if err := a.creds.SaveUser(ctx, &user); err != nil {
		a.log.Warn(ctx, "failed to persist profile", "error", err)
	}
	a.state.Dispatch(session.SetUser{User: &user})
	return nil
}

// ChangePassword changes the account password. State is left unchanged.
func (a *authService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	a.state.Dispatch(session.SetLoading{Loading: true})
	defer a.state.Dispatch(session.SetLoading{Loading: false})

	body := changePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	if err := a.api.AuthenticatedRequest(ctx, http.MethodPost, changePasswordPath, body, nil); err != nil {
		return a.authFailure(ctx, err)
	}
	return nil
}

// DeleteAccount removes the account after password confirmation and resets
// the session on success.
func (a *authService) DeleteAccount(ctx context.Context, password string) error {
	a.state.Dispatch(session.SetLoading{Loading: true})
	defer a.state.Dispatch(session.SetLoading{Loading: false})

	if err := a.api.AuthenticatedRequest(ctx, http.MethodDelete, deleteAccountPath, deleteAccountRequest{Password: password}, nil); err != nil {
		return a.authFailure(ctx, err)
	}
	a.state.Dispatch(session.ResetAuth{})
	a.clearStore(ctx)
	a.log.Info(ctx, "account deleted")
	return nil
}

// InitializeFromStorage is the cold-start bootstrap. It rehydrates the
// session from the durable store and validates it against the backend. Any
// failure, including a corrupted or partially written store, resolves to the
// logged-out state; the method never returns an error.
func (a *authService) InitializeFromStorage(ctx context.Context) error {
	a.state.Dispatch(session.SetLoading{Loading: true})

	user, err := a.creds.User(ctx)
	if err != nil {
		a.log.Warn(ctx, "failed to read cached profile", "error", err)
	}
	access, err := a.creds.AccessToken(ctx)
	if err != nil {
		a.log.Warn(ctx, "failed to read access token", "error", err)
	}

	if user == nil || access == "" {
		a.initializeLoggedOut(ctx)
		return nil
	}

	var current models.Profile
	if err := a.api.AuthenticatedRequest(ctx, http.MethodGet, userPath, nil, &current); err != nil {
		a.log.Info(ctx, "stored session is no longer valid", "error", err)
		a.initializeLoggedOut(ctx)
		return nil
	}
	if err := a.creds.SaveUser(ctx, &current); err != nil {
		a.log.Warn(ctx, "failed to persist profile", "error", err)
	}

	// Re-read both tokens: the validation call may have renewed them.
	access, _ = a.creds.AccessToken(ctx)
	refresh, _ := a.creds.RefreshToken(ctx)

	a.state.Dispatch(session.Initialize{State: session.State{
		User:          &current,
		Tokens:        &models.Credentials{Access: access, Refresh: refresh},
		Authenticated: true,
		Loading:       false,
	}})
	a.log.Info(ctx, "session restored", "user", current.Username)
	return nil
}

func (a *authService) initializeLoggedOut(ctx context.Context) {
	a.clearStore(ctx)
	a.state.Dispatch(session.Initialize{State: session.LoggedOut()})
}

// persist writes the credential pair and profile to the durable store.
// Storage failures are logged, not surfaced: the in-memory session stays
// usable and the store will be rewritten on the next successful auth event.
func (a *authService) persist(ctx context.Context, tokens models.Credentials, user *models.Profile) {
	if err := a.creds.SaveTokens(ctx, tokens); err != nil {
		a.log.Warn(ctx, "failed to persist tokens", "error", err)
	}
	if user != nil {
		if err := a.creds.SaveUser(ctx, user); err != nil {
			a.log.Warn(ctx, "failed to persist profile", "error", err)
		}
	}
}

func (a *authService) publish(user *models.Profile, tokens models.Credentials) {
	a.state.Dispatch(session.SetUser{User: user})
	a.state.Dispatch(session.SetTokens{Tokens: &tokens})
	a.state.Dispatch(session.SetAuthenticated{Authenticated: true})
}

// authFailure resets the session when credentials are unrecoverable;
// everything else propagates with state untouched.
func (a *authService) authFailure(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrAuthExpired) {
		a.state.Dispatch(session.ResetAuth{})
		a.clearStore(ctx)
	}
	return err
}

func (a *authService) clearStore(ctx context.Context) {
	if err := a.creds.Clear(ctx); err != nil {
		a.log.Warn(ctx, "failed to clear credential store", "error", err)
	}
}
