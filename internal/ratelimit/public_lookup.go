package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/Falloukarim/colis-sn-sub000/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyPublicLookupIP = "public:lookup:ip:%s"

// PublicLookupLimiter throttles the unauthenticated QR verification page per
// client IP. A nil limiter or one built without redis allows everything.
type PublicLookupLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewPublicLookupLimiter(cfg config.Config, client *redis.Client) *PublicLookupLimiter {
	rate := cfg.RateLimit.PublicLookupRate
	burst := cfg.RateLimit.PublicLookupBurst
	if client == nil || rate <= 0 || burst <= 0 {
		return &PublicLookupLimiter{}
	}
	return &PublicLookupLimiter{
		bucket: NewTokenBucket(client),
		rate:   rate,
		burst:  burst,
	}
}

func (l *PublicLookupLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *PublicLookupLimiter) AllowIP(ctx context.Context, ip string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, PublicLookupKey(ip), l.rate, l.burst)
}

func PublicLookupKey(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		ip = "unknown"
	}
	return fmt.Sprintf(keyPublicLookupIP, ip)
}
