package tenant

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hintboard/hintboard/internal/cache"
	orgdomain "github.com/hintboard/hintboard/internal/organization/domain"
)

// cachedDirectory caches slug lookups for the gate's hot path. Membership and
// per-user listings stay uncached so role changes take effect immediately.
type cachedDirectory struct {
	inner Directory
	slugs cache.Cache[string, *orgdomain.Organization]
	ttl   time.Duration
}

// NewCachedDirectory wraps dir with a slug-lookup TTL cache. A non-positive
// ttl returns dir unchanged, keeping one organization read per request.
func NewCachedDirectory(dir Directory, ttl time.Duration) Directory {
	if ttl <= 0 {
		return dir
	}
	return &cachedDirectory{
		inner: dir,
		slugs: cache.NewTTLCache[string, *orgdomain.Organization](),
		ttl:   ttl,
	}
}

func (d *cachedDirectory) GetBySlug(ctx context.Context, slug string) (*orgdomain.Organization, error) {
	key := strings.ToLower(strings.TrimSpace(slug))
	if org, ok := d.slugs.Get(key); ok {
		return org, nil
	}
	org, err := d.inner.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	d.slugs.Set(key, org, d.ttl)
	return org, nil
}

func (d *cachedDirectory) ListForUser(ctx context.Context, userID snowflake.ID) ([]orgdomain.ListItem, error) {
	return d.inner.ListForUser(ctx, userID)
}

func (d *cachedDirectory) GetMembership(ctx context.Context, userID, orgID snowflake.ID) (*orgdomain.Membership, error) {
	return d.inner.GetMembership(ctx, userID, orgID)
}
