package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pocketledger/internal/core"
	"pocketledger/internal/log"
)

const DefaultNeynarURL = "https://api.neynar.com/v2/farcaster"

// Neynar queries the Neynar Farcaster API.
type Neynar struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *log.Logger
}

type NeynarOption func(*Neynar)

func WithHTTPClient(c *http.Client) NeynarOption {
	return func(n *Neynar) { n.httpClient = c }
}

func WithLogger(l *log.Logger) NeynarOption {
	return func(n *Neynar) { n.logger = l }
}

func NewNeynar(baseURL, apiKey string, opts ...NeynarOption) *Neynar {
	if baseURL == "" {
		baseURL = DefaultNeynarURL
	}
	n := &Neynar{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type neynarUser struct {
	FID            int64  `json:"fid"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	PfpURL         string `json:"pfp_url"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
	Profile        struct {
		Bio struct {
			Text string `json:"text"`
		} `json:"bio"`
	} `json:"profile"`
	VerifiedAddresses struct {
		EthAddresses []string `json:"eth_addresses"`
	} `json:"verified_addresses"`
}

func (u neynarUser) profile() Profile {
	p := Profile{
		FID:            u.FID,
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		PfpURL:         u.PfpURL,
		Bio:            u.Profile.Bio.Text,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
	}
	if len(u.VerifiedAddresses.EthAddresses) > 0 {
		p.WalletAddress = u.VerifiedAddresses.EthAddresses[0]
	}
	return p
}

func (n *Neynar) UserByFID(ctx context.Context, fid int64) core.Result[Profile] {
	if n.apiKey == "" {
		return core.Fail[Profile](fmt.Errorf("neynar: %w", core.ErrUnconfigured))
	}
	if fid <= 0 {
		return core.Fail[Profile](core.ErrInvalidFID)
	}

	p, err := n.fetch(ctx, fid)
	if err != nil {
		n.logger.WarnContext(ctx, "Neynar lookup failed", "fid", fid, log.FieldError, err)
		return core.Fail[Profile](err)
	}
	return core.OK(p)
}

func (n *Neynar) fetch(ctx context.Context, fid int64) (Profile, error) {
	q := url.Values{"fids": {strconv.FormatInt(fid, 10)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/user/bulk?"+q.Encode(), nil)
	if err != nil {
		return Profile{}, fmt.Errorf("neynar request: %w", err)
	}
	req.Header.Set("api_key", n.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("neynar request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Profile{}, fmt.Errorf("neynar read: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return Profile{}, fmt.Errorf("neynar: %s: %w", msg, core.ErrUnauthorized)
		}
		return Profile{}, fmt.Errorf("neynar: status %d: %s", resp.StatusCode, msg)
	}

	var out struct {
		Users []neynarUser `json:"users"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return Profile{}, fmt.Errorf("neynar decode: %w", err)
	}
	if len(out.Users) == 0 {
		return Profile{}, fmt.Errorf("neynar: fid %d: %w", fid, core.ErrNotFound)
	}
	return out.Users[0].profile(), nil
}
