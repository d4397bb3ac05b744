package ratelimit

import (
	"time"

	"github.com/samber/lo"

	"github.com/Proton-105/relay-bot/pkg/config"
)

// Rules holds the per-user limit applied to private messages.
type Rules struct {
	limit     int
	window    time.Duration
	whitelist []int64
}

// NewRules builds Rules from configuration. A zero window means one minute.
func NewRules(cfg config.LimitsConfig) *Rules {
	window := cfg.RateWindow
	if window <= 0 {
		window = time.Minute
	}

	return &Rules{limit: cfg.RateLimit, window: window, whitelist: cfg.Whitelist}
}

// IsWhitelisted returns true if userID bypasses rate limits.
func (r *Rules) IsWhitelisted(userID int64) bool {
	return lo.Contains(r.whitelist, userID)
}

// PerUser returns the per-user limit and window.
func (r *Rules) PerUser() (int, time.Duration) {
	return r.limit, r.window
}
