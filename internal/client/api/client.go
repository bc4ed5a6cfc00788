package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nutrilog/nutrilog/internal/client/models"
	"github.com/nutrilog/nutrilog/internal/common"
	"github.com/nutrilog/nutrilog/internal/logging"
)

// TokenStore is the subset of the credential store the client depends on.
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SaveTokens(ctx context.Context, tokens models.Credentials) error
	Clear(ctx context.Context) error
}

// Client issues JSON calls against the backend API.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenStore
	log       logging.Logger
	refresher *Refresher
}

// New returns a Client rooted at baseURL (no trailing slash). Token material
// for authenticated calls is read from tokens at the point of each call.
func New(baseURL string, timeout time.Duration, tokens TokenStore, log logging.Logger) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
	c.refresher = newRefresher(c, tokens, log)
	return c
}

// Refresher exposes the renewal coordinator, mainly for tests.
func (c *Client) Refresher() *Refresher {
	return c.refresher
}

// Request issues an unauthenticated call. body (if non-nil) is marshalled as
// JSON; a 2xx response body is decoded into out (if non-nil). Non-2xx
// responses yield *HTTPError.
func (c *Client) Request(ctx context.Context, method, path string, body any, out any) error {
	payload, err := marshalBody(body)
	if err != nil {
		return err
	}
	return c.send(ctx, method, path, payload, "", out)
}

// AuthenticatedRequest issues a call with a bearer token read fresh from the
// token store. If no token is stored the call fails immediately with a 401
// HTTPError and never reaches the network. A 401 response triggers a single
// shared token renewal followed by exactly one retry; a 401 on the retry is
// surfaced as common.ErrAuthExpired with no further renewal attempts.
func (c *Client) AuthenticatedRequest(ctx context.Context, method, path string, body any, out any) error {
	payload, err := marshalBody(body)
	if err != nil {
		return err
	}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return &HTTPError{Status: http.StatusUnauthorized, Message: "No authentication token found"}
	}

	// Optimization only: if the token carries an exp claim that has already
	// passed, renew before bothering the server. The server stays the sole
	// authority on expiry; the reactive 401 path below is the baseline.
	if tokenExpired(token) {
		if rerr := c.refresher.Refresh(ctx); rerr != nil {
			return fmt.Errorf("%w: %s", common.ErrAuthExpired, rerr)
		}
		token, err = c.tokens.AccessToken(ctx)
		if err != nil {
			return err
		}
	}

	err = c.send(ctx, method, path, payload, token, out)
	if !isUnauthorized(err) {
		return err
	}

	if rerr := c.refresher.Refresh(ctx); rerr != nil {
		return fmt.Errorf("%w: %s", common.ErrAuthExpired, rerr)
	}

	// Re-read the token: the renewal (ours or a concurrent caller's) has
	// rotated it in the store.
	token, err = c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}
	err = c.send(ctx, method, path, payload, token, out)
	if isUnauthorized(err) {
		return fmt.Errorf("%w: %s", common.ErrAuthExpired, err)
	}
	return err
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return &HTTPError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func marshalBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return payload, nil
}

func isUnauthorized(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == http.StatusUnauthorized
}
