package snapshot

import (
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"housepoint/internal/database"
	"housepoint/internal/model"
)

func testStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, slog.Default()), db
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := testStore(t)

	famID := uuid.New()
	parentID, childID := uuid.New(), uuid.New()
	due := time.Date(2026, 9, 1, 17, 0, 0, 0, time.UTC)
	assigned := childID
	rewardID := uuid.New()

	snap := model.Snapshot{
		Users: []model.User{
			{ID: parentID, Username: "parent", Password: "hashed", IsParent: true, FamilyID: famID},
			{ID: childID, Username: "billy", Points: 5, PendingPoints: 10, FamilyID: famID},
		},
		Chores: []model.Chore{
			{ID: uuid.New(), Title: "Wash dishes", Description: "after dinner", AssignedTo: &assigned, IsMarkedDoneByChild: true, Image: []byte{1, 2, 3}, DueDate: &due, BasePoints: 10, FamilyID: famID},
		},
		Rewards: []model.Reward{
			{ID: rewardID, Name: "Movie Night", Cost: 15, FamilyID: famID},
		},
		PendingRewards: []model.PendingReward{
			{ID: uuid.New(), UserID: childID, Reward: model.Reward{ID: rewardID, Name: "Movie Night", Cost: 15, FamilyID: famID}},
		},
		CurrentUserID: &parentID,
	}

	if err := store.Save(snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := store.Load()
	if len(got.Users) != 2 {
		t.Fatalf("users = %d, want 2", len(got.Users))
	}
	if got.Users[1].PendingPoints != 10 {
		t.Errorf("pendingPoints = %d, want 10", got.Users[1].PendingPoints)
	}
	if len(got.Chores) != 1 {
		t.Fatalf("chores = %d, want 1", len(got.Chores))
	}
	chore := got.Chores[0]
	if chore.AssignedTo == nil || *chore.AssignedTo != childID {
		t.Error("chore assignment should survive the round trip")
	}
	if !chore.IsMarkedDoneByChild {
		t.Error("chore flag should survive the round trip")
	}
	if chore.DueDate == nil || !chore.DueDate.Equal(due) {
		t.Error("due date should survive the round trip")
	}
	if len(chore.Image) != 3 {
		t.Error("image blob should survive the round trip")
	}
	if len(got.Rewards) != 1 || got.Rewards[0].Cost != 15 {
		t.Error("reward catalog should survive the round trip")
	}
	if len(got.PendingRewards) != 1 || got.PendingRewards[0].Reward.Cost != 15 {
		t.Error("pending request snapshot should survive the round trip")
	}
	if got.CurrentUserID == nil || *got.CurrentUserID != parentID {
		t.Error("session should survive the round trip")
	}
}

func TestLoadEmptyDatabase(t *testing.T) {
	store, _ := testStore(t)

	got := store.Load()
	if len(got.Users) != 0 || len(got.Chores) != 0 || len(got.Rewards) != 0 || len(got.PendingRewards) != 0 {
		t.Error("fresh database should load empty collections")
	}
	if got.CurrentUserID != nil {
		t.Error("fresh database should have no session")
	}
}

func TestSaveOverwritesPreviousEntries(t *testing.T) {
	store, _ := testStore(t)

	id := uuid.New()
	first := model.Snapshot{Users: []model.User{{ID: uuid.New(), Username: "parent", IsParent: true}}, CurrentUserID: &id}
	if err := store.Save(first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := model.Snapshot{
		Users: []model.User{
			{ID: uuid.New(), Username: "parent", IsParent: true},
			{ID: uuid.New(), Username: "billy"},
		},
	}
	if err := store.Save(second); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := store.Load()
	if len(got.Users) != 2 {
		t.Errorf("users = %d, want 2 after overwrite", len(got.Users))
	}
	if got.CurrentUserID != nil {
		t.Error("cleared session should stay cleared")
	}
}

func TestCorruptEntryDegradesIndependently(t *testing.T) {
	store, db := testStore(t)

	snap := model.Snapshot{
		Users:   []model.User{{ID: uuid.New(), Username: "parent", IsParent: true}},
		Rewards: []model.Reward{{ID: uuid.New(), Name: "Movie Night", Cost: 15}},
	}
	if err := store.Save(snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := db.Exec(`UPDATE snapshots SET value = ? WHERE key = 'chores'`, []byte("{not json")); err != nil {
		t.Fatalf("corrupt entry: %v", err)
	}

	got := store.Load()
	if len(got.Chores) != 0 {
		t.Error("corrupt chores entry should load as empty")
	}
	if len(got.Users) != 1 {
		t.Error("users entry should be unaffected by corrupt chores")
	}
	if len(got.Rewards) != 1 {
		t.Error("rewards entry should be unaffected by corrupt chores")
	}
}

func TestUnparseableSessionDiscarded(t *testing.T) {
	store, db := testStore(t)

	if err := store.Save(model.Snapshot{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := db.Exec(`UPDATE snapshots SET value = ? WHERE key = 'currentUser'`, []byte("not-a-uuid")); err != nil {
		t.Fatalf("corrupt entry: %v", err)
	}

	if got := store.Load(); got.CurrentUserID != nil {
		t.Error("unparseable session id should load as signed out")
	}
}
