// Package keycache holds the verification key fetched from the identity
// authority and keeps retrying until the first successful fetch.
package keycache

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotReady is returned while no verification key has been fetched yet.
var ErrNotReady = errors.New("verification key not yet available")

// Entry is the cached verification key together with its fetch time.
type Entry struct {
	Key       *rsa.PublicKey
	FetchedAt time.Time
}

// Cache is a concurrency-safe single-value store for the verification key.
// The fetch loop is the only writer; every request handler reads it. The
// entry is published atomically so a reader never observes a partial write.
type Cache struct {
	entry atomic.Pointer[Entry]
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{}
}

// Get returns the cached key, or false while no key has been fetched.
func (c *Cache) Get() (*rsa.PublicKey, bool) {
	e := c.entry.Load()
	if e == nil {
		return nil, false
	}
	return e.Key, true
}

// Entry returns the full cache entry, or false while the cache is empty.
func (c *Cache) Entry() (Entry, bool) {
	e := c.entry.Load()
	if e == nil {
		return Entry{}, false
	}
	return *e, true
}

func (c *Cache) store(key *rsa.PublicKey) {
	c.entry.Store(&Entry{Key: key, FetchedAt: time.Now()})
}

// keyResponse is the body of the authority's public-key endpoint.
type keyResponse struct {
	PublicKey string `json:"publicKey"`
}

// Fetcher retrieves the verification key from the identity authority.
type Fetcher struct {
	cache        *Cache
	authorityURL string
	interval     time.Duration
	client       *http.Client
	logger       *slog.Logger
}

// NewFetcher creates a fetcher that populates cache from the authority's
// /auth/public-key endpoint, retrying every interval until the first success.
func NewFetcher(cache *Cache, authorityURL string, interval time.Duration, logger *slog.Logger) *Fetcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Fetcher{
		cache:        cache,
		authorityURL: authorityURL,
		interval:     interval,
		client:       &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
	}
}

// Run fetches the key, retrying on a fixed interval until the first success
// or until ctx is cancelled. Verification fails closed while the cache is
// empty, so the edge stays explicitly unavailable rather than silently open.
func (f *Fetcher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		if err := f.Refresh(ctx); err == nil {
			f.logger.InfoContext(ctx, "verification key fetched from identity authority",
				"authority_url", f.authorityURL)
			return
		} else {
			f.logger.ErrorContext(ctx, "failed to fetch verification key, will retry",
				"error", err,
				"retry_in", f.interval)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Refresh performs a single fetch attempt and stores the key on success.
// Exposed so a future key-rotation hook can force a re-fetch.
func (f *Fetcher) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.authorityURL+"/auth/public-key", nil)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("authority unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("authority returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	var kr keyResponse
	if err := json.Unmarshal(body, &kr); err != nil {
		return fmt.Errorf("malformed key response: %w", err)
	}
	if kr.PublicKey == "" {
		return errors.New("key response missing publicKey")
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(kr.PublicKey))
	if err != nil {
		return fmt.Errorf("invalid public key PEM: %w", err)
	}

	f.cache.store(key)
	return nil
}
