package issuance

import (
	"testing"
	"time"
)

func newTestStore(retention time.Duration) (*Store, *time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	store := NewStore(retention, func() time.Time { return *clock })
	return store, clock
}

func TestStore_PutGetDelete(t *testing.T) {
	store, clock := newTestStore(time.Hour)

	req := CertificateRequest{
		ID:        "req-1",
		Domain:    "example.com",
		Status:    StatusPending,
		CreatedAt: *clock,
	}
	store.Put(req)

	got, ok := store.Get("req-1")
	if !ok {
		t.Fatal("Expected to find req-1")
	}
	if got.Domain != "example.com" || got.Status != StatusPending {
		t.Errorf("Unexpected request: %+v", got)
	}

	store.Delete("req-1")
	if _, ok := store.Get("req-1"); ok {
		t.Error("req-1 should be gone after Delete")
	}

	// Deleting again is a no-op
	store.Delete("req-1")
}

func TestStore_GetUnknown(t *testing.T) {
	store, _ := newTestStore(time.Hour)
	if _, ok := store.Get("nope"); ok {
		t.Error("Unknown id should not be found")
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store, clock := newTestStore(time.Hour)
	store.Put(CertificateRequest{
		ID:        "req-1",
		Status:    StatusPending,
		CreatedAt: *clock,
		Challenges: []SelectedChallenge{
			{Domain: "example.com", Token: "tok"},
		},
	})

	got, _ := store.Get("req-1")
	got.Status = StatusFailed
	got.Challenges[0].Token = "mutated"

	fresh, _ := store.Get("req-1")
	if fresh.Status != StatusPending {
		t.Error("Mutating a Get result must not affect the stored entry")
	}
	if fresh.Challenges[0].Token != "tok" {
		t.Error("Mutating a Get result's challenges must not affect the stored entry")
	}
}

func TestStore_SweepExpired(t *testing.T) {
	store, clock := newTestStore(time.Hour)

	store.Put(CertificateRequest{ID: "old", Status: StatusValidating, CreatedAt: *clock})
	*clock = clock.Add(30 * time.Minute)
	store.Put(CertificateRequest{ID: "young", Status: StatusPending, CreatedAt: *clock})

	// Advance past the old entry's retention window, regardless of status
	*clock = clock.Add(31 * time.Minute)

	if purged := store.Sweep(); purged != 1 {
		t.Errorf("Sweep() purged %d entries, want 1", purged)
	}
	if _, ok := store.Get("old"); ok {
		t.Error("Expired entry should be unreachable after sweep")
	}
	if _, ok := store.Get("young"); !ok {
		t.Error("Young entry should survive the sweep")
	}
}

func TestStore_ExpiredInvisibleBeforeSweep(t *testing.T) {
	store, clock := newTestStore(time.Hour)
	store.Put(CertificateRequest{ID: "req-1", CreatedAt: *clock})

	*clock = clock.Add(2 * time.Hour)

	if _, ok := store.Get("req-1"); ok {
		t.Error("Expired entry should be invisible even before a sweep runs")
	}
}

func TestStore_PutSweepsOpportunistically(t *testing.T) {
	store, clock := newTestStore(time.Hour)
	store.Put(CertificateRequest{ID: "old", CreatedAt: *clock})

	*clock = clock.Add(2 * time.Hour)
	store.Put(CertificateRequest{ID: "new", CreatedAt: *clock})

	if store.Len() != 1 {
		t.Errorf("Len() = %d after opportunistic sweep, want 1", store.Len())
	}
}
