package store

import (
	"testing"

	"github.com/google/uuid"

	"housepoint/internal/database"
)

func testPushStore(t *testing.T) *PushStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPushStore(db)
}

func TestUpsertAndListByUser(t *testing.T) {
	s := testPushStore(t)
	billy, sally := uuid.New(), uuid.New()

	if err := s.Upsert(billy, "https://push.example/ep1", "p256dh-1", "auth-1"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Upsert(billy, "https://push.example/ep2", "p256dh-2", "auth-2"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Upsert(sally, "https://push.example/ep3", "p256dh-3", "auth-3"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	subs, err := s.ListByUser(billy)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 subscriptions for billy, got %d", len(subs))
	}
	for _, sub := range subs {
		if sub.UserID != billy {
			t.Errorf("subscription %q belongs to %s, want %s", sub.Endpoint, sub.UserID, billy)
		}
	}
}

func TestUpsertReplacesByEndpoint(t *testing.T) {
	s := testPushStore(t)
	billy, sally := uuid.New(), uuid.New()
	endpoint := "https://push.example/ep"

	if err := s.Upsert(billy, endpoint, "old-p256dh", "old-auth"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// Re-subscribing on the same browser hands the endpoint to sally with
	// fresh keys.
	if err := s.Upsert(sally, endpoint, "new-p256dh", "new-auth"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if subs, err := s.ListByUser(billy); err != nil || len(subs) != 0 {
		t.Errorf("billy should have no subscriptions, got %d (err %v)", len(subs), err)
	}
	subs, err := s.ListByUser(sally)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription for sally, got %d", len(subs))
	}
	if subs[0].P256dhKey != "new-p256dh" || subs[0].AuthKey != "new-auth" {
		t.Error("re-subscription should replace the keys")
	}
}

func TestDeleteByEndpoint(t *testing.T) {
	s := testPushStore(t)
	billy := uuid.New()

	if err := s.Upsert(billy, "https://push.example/ep", "p256dh", "auth"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.DeleteByEndpoint("https://push.example/ep"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if subs, err := s.ListByUser(billy); err != nil || len(subs) != 0 {
		t.Errorf("expected no subscriptions after delete, got %d (err %v)", len(subs), err)
	}

	// Deleting an unknown endpoint is not an error.
	if err := s.DeleteByEndpoint("https://push.example/gone"); err != nil {
		t.Errorf("delete unknown endpoint: %v", err)
	}
}
