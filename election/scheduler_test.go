package election

import (
	"testing"

	"github.com/stjet/rsban-node-sub005/primitives"
)

type listSource struct {
	items []Candidate
}

func (s *listSource) Next() (Candidate, bool) {
	if len(s.items) == 0 {
		return Candidate{}, false
	}
	c := s.items[0]
	s.items = s.items[1:]
	return c, true
}

func TestSchedulerTickInsertsFromSource(t *testing.T) {
	aec := NewAEC(DefaultConfig())
	src := &listSource{items: []Candidate{{Root: testHash(1), Balance: primitives.AmountFromUint64(100)}}}
	sched := NewScheduler(aec, DefaultSchedulerConfig(), nil, src, nil, nil)

	sched.tickClass(Priority, src, func() int { return aec.cfg.Capacity })

	if aec.Len() != 1 {
		t.Fatalf("expected one election inserted from scheduler tick, got %d", aec.Len())
	}
	if _, ok := aec.Get(testHash(1)); !ok {
		t.Fatalf("expected root to be tracked")
	}
}

func TestOptimisticActivationDelay(t *testing.T) {
	aec := NewAEC(DefaultConfig())
	root := testHash(7)
	src := &listSource{items: []Candidate{
		{Root: root, Balance: primitives.AmountFromUint64(100)},
		{Root: root, Balance: primitives.AmountFromUint64(100)},
	}}
	cfg := DefaultSchedulerConfig()
	sched := NewScheduler(aec, cfg, nil, nil, nil, src)

	// First sighting just records firstSeenAt; must not activate yet.
	sched.tickOptimistic(src, func() int { return aec.cfg.Capacity })
	if aec.Len() != 0 {
		t.Fatalf("expected no election on first sighting, got %d", aec.Len())
	}

	// Second sighting is immediate (delay not yet elapsed): still no activation.
	sched.tickOptimistic(src, func() int { return aec.cfg.Capacity })
	if aec.Len() != 0 {
		t.Fatalf("expected optimistic activation to wait out the delay, got %d elections", aec.Len())
	}
}
