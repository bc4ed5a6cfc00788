package credstore

import "context"

// Repository is the low-level key-value persistence contract backing the
// credential store. A missing key reads as (nil, nil).
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
