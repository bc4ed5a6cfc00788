// Package api contains the HTTP building blocks of the nutrilog client.
//
// # Overview
//
// The package provides:
//  1. Client, which issues unauthenticated and authenticated JSON calls
//     against the backend and normalizes non-2xx responses into *HTTPError.
//  2. Refresher, the token renewal coordinator. When an authenticated call
//     is rejected with 401 the client asks the Refresher to renew the
//     credential pair and retries the call exactly once. Concurrent callers
//     share a single in-flight renewal (singleflight), so a just-rotated
//     refresh token is never invalidated by a second, stale renewal request.
//
// Token material is read from the credential store at the point of use and
// never cached across an await, because a concurrent refresh may have
// superseded it.
//
// # Error Handling
//
// Server-reported failures carry *HTTPError (match with errors.As). A 401
// that survives a refresh attempt is reported as common.ErrAuthExpired;
// unreachable servers map to common.ErrUnavailable. Both match errors.Is.
package api
