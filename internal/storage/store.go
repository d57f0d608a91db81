package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no object
var ErrNotFound = errors.New("storage: object not found")

// Cache directives for published artifacts
const (
	CacheVolatile  = "s-maxage=0, max-age=0, must-revalidate"
	CacheImmutable = "public, max-age=604800"
	CacheInit      = "max-age=60"
)

// PutOptions are the HTTP metadata stored alongside an object
type PutOptions struct {
	ContentType     string
	ContentEncoding string
	CacheControl    string
}

// Object is a stored body with its metadata
type Object struct {
	Body []byte
	PutOptions
}

// Store is a flat key/value object store
type Store interface {
	Get(ctx context.Context, key string) (*Object, error)
	Put(ctx context.Context, key string, body []byte, opts PutOptions) error
}
