// Package repository holds the persistence gateway adapters the store
// flushes snapshots to.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/MidhulKiruthik/Nova-sub000/pkg/metrics"
)

// Backend names, also used as metric labels and config values.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Gateway stores opaque values under stable keys. A Write replaces every
// key it names; there are no partial-write guarantees across keys.
type Gateway interface {
	// Write stores every entry.
	Write(ctx context.Context, entries map[string][]byte) error
	// Read returns the values of the keys that exist. Missing keys are
	// absent from the result, not an error.
	Read(ctx context.Context, keys []string) (map[string][]byte, error)
	// Delete removes the keys. Missing keys are ignored.
	Delete(ctx context.Context, keys []string) error
}

func observe(backend, op string, start time.Time) {
	metrics.RecordGatewayLatency(backend, op, float64(time.Since(start).Microseconds())/1000)
}

func backendErr(backend, op string, err error) error {
	metrics.RecordErrorByComponent("gateway_"+backend, op)
	return fmt.Errorf("%w: %s %s: %w", ErrBackend, backend, op, err)
}

func validKeys(keys []string) error {
	for _, k := range keys {
		if k == "" {
			return ErrInvalidKey
		}
	}
	return nil
}

func copyBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}
