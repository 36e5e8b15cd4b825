// Package soundslice proxies the Soundslice score-sheet API for the
// daily practice slice.
package soundslice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const apiRoot = "https://www.soundslice.com/api/v1"

var (
	ErrNotConfigured = errors.New("soundslice credentials not configured")
	ErrUpstream      = errors.New("soundslice upstream error")
)

type Config struct {
	AppID          string
	Password       string
	DailyScorehash string
}

type Slice struct {
	Name      string `json:"name"`
	Scorehash string `json:"scorehash"`
	URL       string `json:"url"`
	EmbedURL  string `json:"embed_url"`
}

// Client caches upstream responses in redis when a client is supplied;
// a nil redis client disables caching.
type Client struct {
	cfg      Config
	http     *http.Client
	redis    *redis.Client
	cacheTTL time.Duration
	baseURL  string
}

func New(cfg Config, redisClient *redis.Client) *Client {
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: 10 * time.Second},
		redis:    redisClient,
		cacheTTL: 10 * time.Minute,
		baseURL:  apiRoot,
	}
}

func (c *Client) Configured() bool {
	return c.cfg.AppID != "" && c.cfg.Password != "" && c.cfg.DailyScorehash != ""
}

func (c *Client) DailySlice(ctx context.Context) (Slice, error) {
	if !c.Configured() {
		return Slice{}, ErrNotConfigured
	}

	cacheKey := "soundslice:daily:" + c.cfg.DailyScorehash
	if c.redis != nil {
		if cached, err := c.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var slice Slice
			if err := json.Unmarshal(cached, &slice); err == nil {
				return slice, nil
			}
		}
	}

	slice, err := c.fetchSlice(ctx, c.cfg.DailyScorehash)
	if err != nil {
		return Slice{}, err
	}

	if c.redis != nil {
		if payload, err := json.Marshal(slice); err == nil {
			_ = c.redis.Set(ctx, cacheKey, payload, c.cacheTTL).Err()
		}
	}
	return slice, nil
}

func (c *Client) fetchSlice(ctx context.Context, scorehash string) (Slice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/slices/%s/", c.baseURL, scorehash), nil)
	if err != nil {
		return Slice{}, err
	}
	req.Header.Set("Authorization", "Basic "+basicAuth(c.cfg.AppID, c.cfg.Password))

	resp, err := c.http.Do(req)
	if err != nil {
		return Slice{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Slice{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var slice Slice
	if err := json.NewDecoder(resp.Body).Decode(&slice); err != nil {
		return Slice{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	slice.Scorehash = scorehash
	return slice, nil
}

func basicAuth(user, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
}
