// Package storage tracks the health of the backends that persist and cache
// taper profiles.
package storage

import "context"

// HealthChecker is implemented by storage backends that can verify their
// connection
type HealthChecker interface {
	// Name identifies the backend in health reports, e.g. "timescaledb"
	Name() string
	Ping(ctx context.Context) error
}
