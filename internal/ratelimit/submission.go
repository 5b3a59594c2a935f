package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hintboard/hintboard/internal/config"
	"github.com/hintboard/hintboard/internal/observability/metrics"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyIdeaSubmission = "submit:idea:%s:%s"
	keyVoteSubmission = "submit:vote:%s:%s"
)

// SubmissionLimiter throttles board writes per (org, user). A nil limiter
// (rate limiting disabled) allows everything.
type SubmissionLimiter struct {
	enabled bool

	bucket  *TokenBucket
	metrics *metrics.Metrics

	ideaRate  float64
	ideaBurst int
	voteRate  float64
	voteBurst int
}

func NewSubmissionLimiter(cfg config.Config, m *metrics.Metrics) (*SubmissionLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.SubmissionRate <= 0 || limitCfg.SubmissionBurst <= 0 {
		return nil, errors.New("submission rate limit must be positive")
	}
	if limitCfg.VoteRate <= 0 || limitCfg.VoteBurst <= 0 {
		return nil, errors.New("vote rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &SubmissionLimiter{
		enabled:   true,
		bucket:    NewTokenBucket(client),
		metrics:   m,
		ideaRate:  limitCfg.SubmissionRate,
		ideaBurst: limitCfg.SubmissionBurst,
		voteRate:  limitCfg.VoteRate,
		voteBurst: limitCfg.VoteBurst,
	}, nil
}

func (l *SubmissionLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowIdea reports whether the caller may create another idea right now.
// Limiter failures allow the write; throttling is advisory, not a gate.
func (l *SubmissionLimiter) AllowIdea(ctx context.Context, orgID, userID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	key := fmt.Sprintf(keyIdeaSubmission, strings.TrimSpace(orgID), strings.TrimSpace(userID))
	res, err := l.bucket.Allow(ctx, key, l.ideaRate, l.ideaBurst)
	if err != nil {
		return &Result{Allowed: true}, err
	}
	if !res.Allowed {
		l.metrics.RecordRateLimitDenied(ctx, orgID, "ideas")
	}
	return res, nil
}

// AllowVote reports whether the caller may cast another vote right now.
func (l *SubmissionLimiter) AllowVote(ctx context.Context, orgID, userID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	key := fmt.Sprintf(keyVoteSubmission, strings.TrimSpace(orgID), strings.TrimSpace(userID))
	res, err := l.bucket.Allow(ctx, key, l.voteRate, l.voteBurst)
	if err != nil {
		return &Result{Allowed: true}, err
	}
	if !res.Allowed {
		l.metrics.RecordRateLimitDenied(ctx, orgID, "votes")
	}
	return res, nil
}
