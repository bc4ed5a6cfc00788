package devserver

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidRefresh = errors.New("refresh token is invalid or expired")
)

type refreshSession struct {
	userID  int64
	expires time.Time
}

// TokenService mints and validates the token pair: a short-lived JWT access
// token and an opaque refresh token tracked in an in-memory session table.
// Refresh tokens are rotated on every renewal; the old token stops working
// the moment the new one is issued.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	mu       sync.Mutex
	sessions map[string]refreshSession
}

func NewTokenService(secret []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		sessions:   make(map[string]refreshSession),
	}
}

// IssuePair returns a fresh access/refresh pair for the user.
func (t *TokenService) IssuePair(u *User) (access, refresh string, err error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(u.ID, 10),
		"username": u.Username,
		"typ":      "access",
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      now.Add(t.accessTTL).Unix(),
	}
	access, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", "", err
	}

	refresh = uuid.NewString()
	t.mu.Lock()
	t.sessions[refresh] = refreshSession{userID: u.ID, expires: now.Add(t.refreshTTL)}
	t.mu.Unlock()
	return access, refresh, nil
}

// Validate checks an access token and returns the user ID it was issued to.
// An expired token is reported as ErrTokenExpired, everything else as
// ErrInvalidToken.
func (t *TokenService) Validate(access string) (int64, error) {
	parsed, err := jwt.Parse(access, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// lookupRefresh resolves and removes a live refresh session.
func (t *TokenService) lookupRefresh(refresh string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess, ok := t.sessions[refresh]
	if !ok {
		return 0, ErrInvalidRefresh
	}
	delete(t.sessions, refresh)
	if time.Now().After(sess.expires) {
		return 0, ErrInvalidRefresh
	}
	return sess.userID, nil
}

// Rotate exchanges a refresh token for a fresh pair. The old refresh token is
// invalidated even when the exchange fails.
func (t *TokenService) Rotate(refresh string, users *UserStore) (string, string, error) {
	userID, err := t.lookupRefresh(refresh)
	if err != nil {
		return "", "", err
	}
	u, ok := users.ByID(userID)
	if !ok {
		return "", "", ErrInvalidRefresh
	}
	return t.IssuePair(u)
}

// Revoke drops the refresh session, if it exists.
func (t *TokenService) Revoke(refresh string) {
	t.mu.Lock()
	delete(t.sessions, refresh)
	t.mu.Unlock()
}

// RevokeUser drops every refresh session belonging to the user.
func (t *TokenService) RevokeUser(userID int64) {
	t.mu.Lock()
	for token, sess := range t.sessions {
		if sess.userID == userID {
			delete(t.sessions, token)
		}
	}
	t.mu.Unlock()
}
