package social

import (
	"context"

	"pocketledger/internal/cache"
	"pocketledger/internal/core"
)

// Cached memoises successful lookups of another provider.
type Cached struct {
	next     Provider
	profiles cache.Cache[int64, Profile]
}

var _ Refresher = (*Cached)(nil)

func NewCached(next Provider, profiles cache.Cache[int64, Profile]) *Cached {
	return &Cached{next: next, profiles: profiles}
}

func (c *Cached) UserByFID(ctx context.Context, fid int64) core.Result[Profile] {
	if p, ok := c.profiles.Get(fid); ok {
		return core.OK(p)
	}
	res := c.next.UserByFID(ctx, fid)
	if res.Success {
		c.profiles.Set(fid, res.Data)
	}
	return res
}

// Forget drops a cached profile so the next lookup refreshes it.
func (c *Cached) Forget(fid int64) {
	c.profiles.Delete(fid)
}
