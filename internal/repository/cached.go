package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/tarotdesk/share-server-go/internal/model"
	redisclient "github.com/tarotdesk/share-server-go/internal/redis"
)

// CachedShareLinkRepository decorates a ShareLinkRepository with a Redis
// read-through cache on access-code lookups, the hot path of the viewer
// endpoint. Every mutation invalidates the cached entry eagerly so the gate
// never authorizes against stale active/expiry state; the TTL only bounds
// staleness when an invalidation is lost.
//
// Cache failures degrade to the underlying store and are logged, never
// surfaced.
type CachedShareLinkRepository struct {
	inner ShareLinkRepository
	rdb   *redisclient.Client
	ttl   time.Duration
}

func NewCachedShareLinkRepository(inner ShareLinkRepository, rdb *redisclient.Client, ttl time.Duration) *CachedShareLinkRepository {
	return &CachedShareLinkRepository{inner: inner, rdb: rdb, ttl: ttl}
}

var _ ShareLinkRepository = (*CachedShareLinkRepository)(nil)

// cachedLink re-adds the password to the cached payload. ShareLink excludes
// it from JSON so it can never leak through an API response, but the gate
// needs it back when the entity is served from cache.
type cachedLink struct {
	model.ShareLink
	Password *string `json:"password,omitempty"`
}

func (c *CachedShareLinkRepository) FindByAccessCode(ctx context.Context, code string) (*model.ShareLink, error) {
	key := redisclient.LinkKey(code)

	data, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var entry cachedLink
		if err := json.Unmarshal([]byte(data), &entry); err == nil {
			entry.ShareLink.Password = entry.Password
			return &entry.ShareLink, nil
		}
		log.Warn().Str("key", key).Msg("dropping unreadable cached share link")
		c.invalidate(ctx, code)
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("key", key).Msg("share link cache read failed")
	}

	link, err := c.inner.FindByAccessCode(ctx, code)
	if err != nil || link == nil {
		return link, err
	}

	if payload, err := json.Marshal(cachedLink{ShareLink: *link, Password: link.Password}); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("share link cache write failed")
		}
	}

	return link, nil
}

func (c *CachedShareLinkRepository) Create(ctx context.Context, params model.CreateShareLinkParams) (*model.ShareLink, error) {
	link, err := c.inner.Create(ctx, params)
	if err == nil {
		// A deleted link's code may be reissued; never serve the old entity.
		c.invalidate(ctx, link.AccessCode)
	}
	return link, err
}

func (c *CachedShareLinkRepository) SetActive(ctx context.Context, id string, active bool) error {
	return c.mutate(ctx, id, func() error { return c.inner.SetActive(ctx, id, active) })
}

func (c *CachedShareLinkRepository) ClearExpiry(ctx context.Context, id string) error {
	return c.mutate(ctx, id, func() error { return c.inner.ClearExpiry(ctx, id) })
}

func (c *CachedShareLinkRepository) UpdateSettings(ctx context.Context, id string, params model.UpdateShareLinkParams) (*model.ShareLink, error) {
	link, err := c.inner.UpdateSettings(ctx, id, params)
	if err == nil {
		c.invalidate(ctx, link.AccessCode)
	}
	return link, err
}

func (c *CachedShareLinkRepository) RecordView(ctx context.Context, id string) error {
	return c.mutate(ctx, id, func() error { return c.inner.RecordView(ctx, id) })
}

func (c *CachedShareLinkRepository) Delete(ctx context.Context, id string) error {
	return c.mutate(ctx, id, func() error { return c.inner.Delete(ctx, id) })
}

func (c *CachedShareLinkRepository) FindByID(ctx context.Context, id string) (*model.ShareLink, error) {
	return c.inner.FindByID(ctx, id)
}

func (c *CachedShareLinkRepository) ActiveCodeExists(ctx context.Context, code string) (bool, error) {
	return c.inner.ActiveCodeExists(ctx, code)
}

func (c *CachedShareLinkRepository) ListByRecord(ctx context.Context, recordID string) ([]model.ShareLink, error) {
	return c.inner.ListByRecord(ctx, recordID)
}

func (c *CachedShareLinkRepository) ListByClient(ctx context.Context, clientID string) ([]model.ShareLink, error) {
	return c.inner.ListByClient(ctx, clientID)
}

func (c *CachedShareLinkRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	// Retention removes whole entities; the cheap safe move is dropping the
	// entire namespace one key at a time via the inner lookups. Expired
	// entries age out within the TTL, so a sweep here is not worth a SCAN.
	return c.inner.DeleteExpiredBefore(ctx, cutoff)
}

// mutate runs the inner mutation and invalidates the cached access-code entry
// for the touched link.
func (c *CachedShareLinkRepository) mutate(ctx context.Context, id string, fn func() error) error {
	link, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := fn(); err != nil {
		return err
	}

	if link != nil {
		c.invalidate(ctx, link.AccessCode)
	}
	return nil
}

func (c *CachedShareLinkRepository) invalidate(ctx context.Context, code string) {
	if err := c.rdb.Del(ctx, redisclient.LinkKey(code)).Err(); err != nil {
		log.Warn().Err(err).Str("code", code).Msg("share link cache invalidation failed")
	}
}
