// Package store persists the bookkeeping collections as whole-collection
// snapshots in a pluggable key-value backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by a Backend when a key has never been written.
	ErrNotFound = errors.New("key not found")
	// ErrUnavailable is returned by a Backend that has no storage behind it.
	ErrUnavailable = errors.New("storage unavailable")
)

// Backend is a key-value byte store holding one value per key.
type Backend interface {
	// Get returns the stored value, or ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the stored value for key.
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Backend kinds accepted by Open.
const (
	KindSQLite      = "sqlite"
	KindFile        = "file"
	KindMemory      = "memory"
	KindMongo       = "mongo"
	KindUnavailable = "unavailable"
)

// Kinds lists every backend kind in display order.
var Kinds = []string{KindSQLite, KindFile, KindMemory, KindMongo, KindUnavailable}

// Options selects and configures a backend.
type Options struct {
	Kind          string
	SQLitePath    string
	FileDir       string
	MongoURI      string
	MongoDatabase string
}

// Open constructs the backend named by opts.Kind.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", KindSQLite:
		if opts.SQLitePath == "" {
			return nil, errors.New("sqlite backend needs a database path")
		}
		return OpenSQLite(opts.SQLitePath)
	case KindFile:
		if opts.FileDir == "" {
			return nil, errors.New("file backend needs a data directory")
		}
		return OpenFile(opts.FileDir)
	case KindMemory:
		return NewMemory(), nil
	case KindMongo:
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase)
	case KindUnavailable:
		return Unavailable{}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (want one of %s)", opts.Kind, strings.Join(Kinds, ", "))
	}
}

// Unavailable is a Backend with nothing behind it: reads report
// ErrUnavailable and writes are dropped.
type Unavailable struct{}

// Get always returns ErrUnavailable.
func (Unavailable) Get(context.Context, string) ([]byte, error) { return nil, ErrUnavailable }

// Put discards the value.
func (Unavailable) Put(context.Context, string, []byte) error { return nil }

// Close is a no-op.
func (Unavailable) Close() error { return nil }
