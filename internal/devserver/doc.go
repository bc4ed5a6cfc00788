// Package devserver implements a local stub of the nutrition backend so the
// client can be run and integration-tested without the production API.
//
// It serves the auth and profile endpoints under /api with the same wire
// format as the real backend: JWT access tokens with a short TTL, opaque
// rotated refresh tokens, bcrypt-hashed passwords, and {"detail": ...} error
// bodies. Users live in memory and are lost on restart.
//
// A Prometheus /metrics endpoint exposes request counts and latencies.
package devserver
