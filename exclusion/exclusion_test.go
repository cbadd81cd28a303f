package exclusion

import (
	"net/netip"
	"testing"
	"time"
)

var testNow = time.Unix(1_700_000_000, 0)

func testEndpoint(i uint16) Endpoint {
	addr := netip.AddrFrom16([16]byte{15: byte(i), 14: byte(i >> 8)})
	return Endpoint{IP: addr, Port: 0}
}

func TestNewSetExcludesNothing(t *testing.T) {
	s := New()
	if s.IsExcluded(testEndpoint(1), testNow) {
		t.Fatalf("expected fresh set to exclude nothing")
	}
}

func TestMisbehavingOnceIsAllowed(t *testing.T) {
	s := New()
	ep := testEndpoint(1)
	s.PeerMisbehaved(ep, testNow)
	if s.IsExcluded(ep, testNow) {
		t.Fatalf("expected a single offense not to trigger exclusion")
	}
}

func TestMisbehavingTwiceLeadsToBan(t *testing.T) {
	s := New()
	ep := testEndpoint(1)
	s.PeerMisbehaved(ep, testNow)
	s.PeerMisbehaved(ep, testNow)
	if !s.IsExcluded(ep, testNow) {
		t.Fatalf("expected second offense to trigger exclusion")
	}
	until, ok := s.ExcludedUntil(ep)
	if !ok || !until.Equal(testNow.Add(excludeTime)) {
		t.Fatalf("expected exclusion until now+excludeTime, got %v", until)
	}
}

func TestMisbehavingMoreThanTwiceIncreasesExclusionTime(t *testing.T) {
	s := New()
	ep := testEndpoint(1)
	s.PeerMisbehaved(ep, testNow)
	s.PeerMisbehaved(ep, testNow)
	s.PeerMisbehaved(ep, testNow)

	until, _ := s.ExcludedUntil(ep)
	if !until.Equal(testNow.Add(excludeTime * 6)) {
		t.Fatalf("expected now+excludeTime*6 after third offense, got %v", until)
	}

	s.PeerMisbehaved(ep, testNow)
	until, _ = s.ExcludedUntil(ep)
	if !until.Equal(testNow.Add(excludeTime * 8)) {
		t.Fatalf("expected now+excludeTime*8 after fourth offense, got %v", until)
	}
}

func TestMisbehaviorIgnoresPort(t *testing.T) {
	s := New()
	ep1 := testEndpoint(1)
	ep1.Port = 100
	ep2 := ep1
	ep2.Port = 200

	s.PeerMisbehaved(ep1, testNow)
	s.PeerMisbehaved(ep2, testNow)

	if !s.IsExcluded(ep1, testNow) || !s.IsExcluded(ep2, testNow) {
		t.Fatalf("expected both ports on the same address to be excluded")
	}
}

func TestRemoveOldestEntryWhenSizeLimitReached(t *testing.T) {
	s := WithMaxSize(6)
	for i := 0; i < 7; i++ {
		s.PeerMisbehaved(testEndpoint(uint16(i)), testNow.Add(time.Duration(i)*time.Millisecond))
	}
	if s.Len() != 6 {
		t.Fatalf("expected 6 entries, got %d", s.Len())
	}
	if s.Contains(testEndpoint(0)) {
		t.Fatalf("expected oldest entry (0) evicted")
	}
	if !s.Contains(testEndpoint(1)) {
		t.Fatalf("expected entry 1 retained")
	}
}

func TestRemoveManyOldEntries(t *testing.T) {
	s := WithMaxSize(2)
	for i := 0; i < 7; i++ {
		s.PeerMisbehaved(testEndpoint(uint16(i)), testNow.Add(time.Duration(i)*time.Millisecond))
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", s.Len())
	}
	if s.Contains(testEndpoint(4)) {
		t.Fatalf("expected entry 4 evicted")
	}
	if !s.Contains(testEndpoint(5)) || !s.Contains(testEndpoint(6)) {
		t.Fatalf("expected entries 5 and 6 retained")
	}
}

func TestPermaBanNeverExpires(t *testing.T) {
	s := New()
	ep := testEndpoint(1)
	s.PermaBan(ep)

	if !s.IsExcluded(ep, testNow) {
		t.Fatalf("expected perma-banned peer excluded")
	}
	if !s.IsExcluded(ep, testNow.Add(365*24*time.Hour)) {
		t.Fatalf("expected perma-ban to survive a year")
	}
	until, ok := s.ExcludedUntil(ep)
	if !ok || !until.Equal(maxTime) {
		t.Fatalf("expected perma-ban excludedUntil to report maxTime, got %v", until)
	}
	if !s.Contains(ep) {
		t.Fatalf("expected perma-banned peer to be contained")
	}
	if s.Len() != 1 {
		t.Fatalf("expected len 1, got %d", s.Len())
	}
}
