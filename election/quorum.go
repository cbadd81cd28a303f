package election

import (
	"sync"
	"time"

	"github.com/stjet/rsban-node-sub005/primitives"
)

// OnlineWeightConfig bounds the quorum-delta computation: the
// percentage of online weight required for confirmation, and the
// floor under which trended weight is never allowed to push the
// quorum threshold, so a thin network can't be confirmed cheaply.
type OnlineWeightConfig struct {
	QuorumPercent        int
	OnlineWeightMinimum  primitives.Amount
	TrendSampleInterval  time.Duration
	TrendSampleRetention int
}

// DefaultOnlineWeightConfig matches the reference node's live-network
// defaults: quorum at 67% of online weight.
func DefaultOnlineWeightConfig() OnlineWeightConfig {
	return OnlineWeightConfig{
		QuorumPercent:        67,
		TrendSampleInterval:  time.Minute,
		TrendSampleRetention: 60 * 24,
	}
}

// OnlineWeightTracker samples total representative weight periodically
// and reports a trended value (the maximum of the retained samples),
// matching the reference node's "never let a momentary weight dip
// lower the quorum bar" behavior.
type OnlineWeightTracker struct {
	mu      sync.Mutex
	cfg     OnlineWeightConfig
	samples []primitives.Amount
}

func NewOnlineWeightTracker(cfg OnlineWeightConfig) *OnlineWeightTracker {
	return &OnlineWeightTracker{cfg: cfg}
}

// Sample records the current total weight snapshot, evicting the
// oldest sample once retention is exceeded.
func (t *OnlineWeightTracker) Sample(total primitives.Amount) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = append(t.samples, total)
	if over := len(t.samples) - t.cfg.TrendSampleRetention; over > 0 && t.cfg.TrendSampleRetention > 0 {
		t.samples = t.samples[over:]
	}
}

// Trended returns the maximum sampled weight currently retained.
func (t *OnlineWeightTracker) Trended() primitives.Amount {
	t.mu.Lock()
	defer t.mu.Unlock()
	var max primitives.Amount
	for _, s := range t.samples {
		if s.Cmp(max) > 0 {
			max = s
		}
	}
	return max
}

// QuorumDelta computes online_weight × quorum_percent / 100, where
// online_weight = max(trended_weight, online_weight_minimum).
func (t *OnlineWeightTracker) QuorumDelta() primitives.Amount {
	trended := t.Trended()
	online := trended
	if t.cfg.OnlineWeightMinimum.Cmp(online) > 0 {
		online = t.cfg.OnlineWeightMinimum
	}
	return percentOf(online, t.cfg.QuorumPercent)
}

func percentOf(amount primitives.Amount, percent int) primitives.Amount {
	if percent <= 0 {
		return primitives.Amount{}
	}
	// amount × percent / 100, done via repeated halving-safe decimal math
	// is unnecessary here: Amount already backs a 128-bit integer, so
	// plain multiply-then-divide through its decimal string is adequate
	// given quorum checks are not a hot path.
	big, err := primitives.AmountFromDecimal(mulDiv(amount.String(), percent, 100))
	if err != nil {
		return primitives.Amount{}
	}
	return big
}
