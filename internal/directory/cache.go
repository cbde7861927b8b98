// Package directory caches the remote client list for a fixed
// validity window so the many per-conversation lookups of a session
// share one fetch.
package directory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/emipmttt/sellia-challenge/internal/model"
	"go.uber.org/zap"
)

// clientsResource is the directory resource name on the remote bucket.
const clientsResource = "clients"

// Fetcher is the gateway surface the cache needs.
type Fetcher interface {
	GetList(ctx context.Context, resource string) ([]json.RawMessage, error)
}

// Cache holds the client directory for one validity window. A single
// instance is shared by handle between the assembler and anything else
// that resolves clients; there is no package-level state.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	logger  *zap.Logger
	clock   func() time.Time

	mu        sync.Mutex
	clients   []model.Client
	fetchedAt time.Time
}

// New creates a cache over fetcher with the given validity window.
func New(fetcher Fetcher, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		logger:  logger,
		clock:   time.Now,
	}
}

// Clients returns the cached directory when it is still valid, and
// refetches otherwise. A fetch failure leaves whatever was cached
// untouched and propagates to the caller.
//
// The mutex guards the cached slice and its timestamp only; it is not
// held across the network call, so concurrent callers that both miss
// the window may both hit the gateway. The redundant fetch is accepted.
func (c *Cache) Clients(ctx context.Context) ([]model.Client, error) {
	c.mu.Lock()
	if c.clients != nil && c.clock().Sub(c.fetchedAt) < c.ttl {
		cached := c.clients
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	items, err := c.fetcher.GetList(ctx, clientsResource)
	if err != nil {
		return nil, err
	}
	clients := model.DecodeClients(items)

	c.mu.Lock()
	c.clients = clients
	c.fetchedAt = c.clock()
	c.mu.Unlock()

	c.logger.Info("client directory refreshed", zap.Int("clients", len(clients)))
	return clients, nil
}
