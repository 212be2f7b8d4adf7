// Package social resolves social-identity profiles used to sign users in.
package social

import (
	"context"
	"time"

	"pocketledger/internal/cache"
	"pocketledger/internal/core"
	"pocketledger/internal/log"
)

// Profile is the public part of a social-identity account.
type Profile struct {
	FID            int64  `json:"fid"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	PfpURL         string `json:"pfp_url"`
	Bio            string `json:"bio"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
	WalletAddress  string `json:"wallet_address,omitempty"`
}

// User maps the profile onto the local account record. ID and CreatedAt are
// left for the store to assign.
func (p Profile) User() core.User {
	return core.User{
		FID:            p.FID,
		Username:       p.Username,
		DisplayName:    p.DisplayName,
		PfpURL:         p.PfpURL,
		Bio:            p.Bio,
		FollowerCount:  p.FollowerCount,
		FollowingCount: p.FollowingCount,
		WalletAddress:  p.WalletAddress,
	}
}

// Provider looks up profiles by their numeric social id.
type Provider interface {
	UserByFID(ctx context.Context, fid int64) core.Result[Profile]
}

// Refresher is implemented by providers that keep profiles around between
// lookups.
type Refresher interface {
	Forget(fid int64)
}

// Config selects and tunes the provider built by New.
type Config struct {
	APIKey   string
	BaseURL  string
	CacheTTL time.Duration
	CacheMax int
}

// New returns a cached Neynar provider when an API key is configured and the
// demo provider otherwise. The returned cache is nil for the demo provider.
func New(cfg Config, logger *log.Logger) (Provider, *cache.LRU[int64, Profile]) {
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentSocial)

	if cfg.APIKey == "" {
		logger.Info("Neynar API key not configured, using demo profiles")
		return Demo{}, nil
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.CacheMax <= 0 {
		cfg.CacheMax = 1000
	}

	profiles := cache.NewLRU[int64, Profile](cfg.CacheMax, cfg.CacheTTL)
	client := NewNeynar(cfg.BaseURL, cfg.APIKey, WithLogger(logger))
	return NewCached(client, profiles), profiles
}
