package social

import (
	"context"

	"pocketledger/internal/core"
)

// Demo serves a fixed profile for development without a Neynar key.
type Demo struct{}

var demoProfile = Profile{
	FID:            12345,
	Username:       "demo_user",
	DisplayName:    "Demo User",
	PfpURL:         "https://via.placeholder.com/150",
	Bio:            "Demo user for development",
	FollowerCount:  100,
	FollowingCount: 50,
}

func (Demo) UserByFID(_ context.Context, _ int64) core.Result[Profile] {
	return core.OK(demoProfile)
}
