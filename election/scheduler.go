package election

import (
	"context"
	"sync"
	"time"

	"github.com/stjet/rsban-node-sub005/blocks"
	"github.com/stjet/rsban-node-sub005/primitives"
)

// Candidate is one account ready to be activated by a scheduler class:
// its root hash, current balance (for bucket placement), and the
// block to seed the election with.
type Candidate struct {
	Root    primitives.Hash
	Balance primitives.Amount
	Block   *blocks.StateBlock
}

// Source supplies candidates to a scheduler class on demand. Priority
// is driven by the ledger (successor availability), Hinted by the
// vote cache, Optimistic by priority-target dependencies; each gets
// its own Source implementation.
type Source interface {
	Next() (Candidate, bool)
}

// SchedulerConfig bounds how much of the container's total capacity
// each non-Manual class may occupy, expressed as a percentage of
// Config.Capacity, and how long an Optimistic candidate waits from
// first being seen as a dependency before activation.
type SchedulerConfig struct {
	HintedLimitPercentage     int
	OptimisticLimitPercentage int
	OptimisticActivationDelay time.Duration
	TickInterval              time.Duration
}

// DefaultSchedulerConfig mirrors the reference node's scheduler
// defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		HintedLimitPercentage:     20,
		OptimisticLimitPercentage: 10,
		OptimisticActivationDelay: 2 * time.Second,
		TickInterval:              time.Second,
	}
}

// Scheduler runs the four election-activation classes as independent
// goroutines, each on its own ticker, coordinated only by the shared
// AEC capacity/bucket check at insertion time. This is the simplest
// interleaving consistent with running Manual, Priority, Hinted, and
// Optimistic activation concurrently without a central arbiter.
type Scheduler struct {
	aec *AEC
	cfg SchedulerConfig

	manual      Source
	priority    Source
	hinted      Source
	optimistic  Source
	firstSeenAt map[primitives.Hash]time.Time
	mu          sync.Mutex
}

func NewScheduler(aec *AEC, cfg SchedulerConfig, manual, priority, hinted, optimistic Source) *Scheduler {
	return &Scheduler{
		aec:         aec,
		cfg:         cfg,
		manual:      manual,
		priority:    priority,
		hinted:      hinted,
		optimistic:  optimistic,
		firstSeenAt: make(map[primitives.Hash]time.Time),
	}
}

// Run starts the four class goroutines and blocks until ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	classes := []struct {
		class  Class
		source Source
		limit  func() int
	}{
		{Manual, s.manual, func() int { return s.aec.cfg.Capacity }},
		{Priority, s.priority, func() int { return s.aec.cfg.Capacity }},
		{Hinted, s.hinted, func() int { return percentCount(s.aec.cfg.Capacity, s.cfg.HintedLimitPercentage) }},
		{Optimistic, s.optimistic, func() int { return percentCount(s.aec.cfg.Capacity, s.cfg.OptimisticLimitPercentage) }},
	}
	for _, c := range classes {
		if c.source == nil {
			continue
		}
		wg.Add(1)
		go func(class Class, source Source, limit func() int) {
			defer wg.Done()
			s.runClass(ctx, class, source, limit)
		}(c.class, c.source, c.limit)
	}
	wg.Wait()
}

func percentCount(capacity, percent int) int {
	return capacity * percent / 100
}

func (s *Scheduler) runClass(ctx context.Context, class Class, source Source, limit func() int) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tickClass(class, source, limit)
		}
	}
}

func (s *Scheduler) tickClass(class Class, source Source, limit func() int) {
	if class == Optimistic {
		s.tickOptimistic(source, limit)
		return
	}
	if limit() > 0 && s.classCountEstimate(class) >= limit() {
		return
	}
	cand, ok := source.Next()
	if !ok {
		return
	}
	_, _ = s.aec.Insert(cand.Root, class, cand.Balance, cand.Block, time.Now())
}

// tickOptimistic enforces optimistic_activation_delay: a candidate is
// only activated once it has been visible as a dependency for at
// least that long, so optimistic scheduling never races ahead of the
// priority targets it exists to unblock.
func (s *Scheduler) tickOptimistic(source Source, limit func() int) {
	cand, ok := source.Next()
	if !ok {
		return
	}
	s.mu.Lock()
	first, seen := s.firstSeenAt[cand.Root]
	if !seen {
		s.firstSeenAt[cand.Root] = time.Now()
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if time.Since(first) < s.cfg.OptimisticActivationDelay {
		return
	}
	if limit() > 0 && s.classCountEstimate(Optimistic) >= limit() {
		return
	}
	if _, err := s.aec.Insert(cand.Root, Optimistic, cand.Balance, cand.Block, time.Now()); err == nil {
		s.mu.Lock()
		delete(s.firstSeenAt, cand.Root)
		s.mu.Unlock()
	}
}

// classCountEstimate counts active elections of a given class. The
// AEC is not indexed by class (classes only matter for admission
// limits and TTL), so this walks the current election set; called
// once per tick per class, never on the network hot path.
func (s *Scheduler) classCountEstimate(class Class) int {
	s.aec.mu.Lock()
	defer s.aec.mu.Unlock()
	count := 0
	for _, e := range s.aec.elections {
		if e.Class == class {
			count++
		}
	}
	return count
}
