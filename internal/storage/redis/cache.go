// Package redis caches evaluated taper profiles in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/timbercruise/pkg/taper"
	backend "github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const defaultPrefix = "timbercruise:profile:"

// Cache stores profiles keyed by model, coefficients and tree size
type Cache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Cache)

// WithTTL sets the expiration for cached profiles. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// New creates a cache connected to the Redis server at address
func New(address, password string, db int, opts ...Option) *Cache {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a cache from an existing client
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	c := &Cache{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds the cache key for one evaluation. Floats are written in their
// shortest exact form so distinct inputs never share a key.
func (c *Cache) Key(model taper.Model, coefficients []float64, dbh, totalHeight float64) string {
	var b strings.Builder
	b.WriteString(c.prefix)
	b.WriteString(model.String())
	for _, v := range append([]float64{dbh, totalHeight}, coefficients...) {
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}

// Get returns the cached profile, if any
func (c *Cache) Get(ctx context.Context, model taper.Model, coefficients []float64, dbh, totalHeight float64) (taper.Profile, bool, error) {
	data, err := c.client.Get(ctx, c.Key(model, coefficients, dbh, totalHeight)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached profile: %w", err)
	}

	var profile taper.Profile
	if err := msgpack.Unmarshal(data, &profile); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached profile: %w", err)
	}
	return profile, true, nil
}

// Set stores a profile
func (c *Cache) Set(ctx context.Context, model taper.Model, coefficients []float64, dbh, totalHeight float64, profile taper.Profile) error {
	data, err := msgpack.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := c.client.Set(ctx, c.Key(model, coefficients, dbh, totalHeight), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache profile: %w", err)
	}
	return nil
}

// Name identifies the cache in storage health reports
func (c *Cache) Name() string {
	return "redis"
}

// Ping checks the Redis connection
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *Cache) Close() error {
	return c.client.Close()
}
