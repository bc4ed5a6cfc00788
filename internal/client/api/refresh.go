package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nutrilog/nutrilog/internal/client/models"
	"github.com/nutrilog/nutrilog/internal/common"
	"github.com/nutrilog/nutrilog/internal/logging"
	"golang.org/x/sync/singleflight"
)

const refreshPath = "/auth/token/refresh/"

// Refresher renews the credential pair when the access token has expired.
//
// Renewal is single-flight: callers that arrive while a renewal is already
// in flight wait for its outcome instead of issuing their own request. The
// backend rotates refresh tokens, so a second renewal carrying the stale
// refresh token would invalidate the session that was just repaired.
type Refresher struct {
	client *Client
	tokens TokenStore
	log    logging.Logger
	group  singleflight.Group
}

func newRefresher(client *Client, tokens TokenStore, log logging.Logger) *Refresher {
	return &Refresher{client: client, tokens: tokens, log: log}
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Refresh renews the token pair, sharing one in-flight renewal among
// concurrent callers. On success the new pair is already persisted. On any
// renewal failure the store is cleared and the session is unrecoverable.
//
// The context of the caller that starts the flight governs the renewal call;
// late joiners only wait on the shared result.
func (r *Refresher) Refresh(ctx context.Context) error {
	_, err, _ := r.group.Do("refresh", func() (any, error) {
		return nil, r.renew(ctx)
	})
	return err
}

func (r *Refresher) renew(ctx context.Context) error {
	refresh, err := r.tokens.RefreshToken(ctx)
	if err != nil {
		return err
	}
	if refresh == "" {
		// Nothing to renew with; do not touch the network.
		return common.ErrNoSession
	}

	var renewed models.Credentials
	err = r.client.Request(ctx, http.MethodPost, refreshPath, refreshRequest{Refresh: refresh}, &renewed)
	if err == nil && renewed.Access == "" {
		err = errors.New("renewal response missing access token")
	}
	if err != nil {
		r.log.Warn(ctx, "token renewal failed, clearing session", "error", err)
		if cerr := r.tokens.Clear(ctx); cerr != nil {
			r.log.Warn(ctx, "failed to clear credential store", "error", cerr)
		}
		return fmt.Errorf("token renewal: %w", err)
	}

	// The backend may rotate the refresh token; keep the old one otherwise.
	if renewed.Refresh == "" {
		renewed.Refresh = refresh
	}
	if err := r.tokens.SaveTokens(ctx, renewed); err != nil {
		return fmt.Errorf("persist renewed tokens: %w", err)
	}
	r.log.Debug(ctx, "access token renewed")
	return nil
}

// tokenExpired reports whether the access token carries an exp claim in the
// past. The claim is read without signature verification; opaque or
// claim-less tokens report false and are left to the server to judge.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Now().After(exp.Time)
}
