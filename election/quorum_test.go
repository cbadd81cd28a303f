package election

import (
	"testing"

	"github.com/stjet/rsban-node-sub005/primitives"
)

func TestQuorumDeltaUsesMinimumFloor(t *testing.T) {
	minimum := primitives.AmountFromUint64(100)
	tr := NewOnlineWeightTracker(OnlineWeightConfig{
		QuorumPercent:        50,
		OnlineWeightMinimum:  minimum,
		TrendSampleRetention: 10,
	})
	// No samples yet: trended weight is zero, so online_weight falls
	// back to the configured minimum.
	delta := tr.QuorumDelta()
	want := primitives.AmountFromUint64(50)
	if delta.Cmp(want) != 0 {
		t.Fatalf("expected quorum delta %s (50%% of minimum), got %s", want, delta)
	}
}

func TestQuorumDeltaTracksTrendedMax(t *testing.T) {
	tr := NewOnlineWeightTracker(OnlineWeightConfig{
		QuorumPercent:        50,
		OnlineWeightMinimum:  primitives.AmountFromUint64(100),
		TrendSampleRetention: 10,
	})
	tr.Sample(primitives.AmountFromUint64(200))
	tr.Sample(primitives.AmountFromUint64(50)) // dip must not lower the trend
	delta := tr.QuorumDelta()
	want := primitives.AmountFromUint64(100)
	if delta.Cmp(want) != 0 {
		t.Fatalf("expected quorum delta %s (50%% of trended max 200), got %s", want, delta)
	}
}
