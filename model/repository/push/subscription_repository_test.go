package push

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	entity "catalog.GO/model/entity"
)

func pushTestDB(t *testing.T) *SubscriptionRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "push.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	repo := NewSubscriptionRepository(db)
	if err := repo.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo
}

func TestSubscriptionRepository_SaveList(t *testing.T) {
	repo := pushTestDB(t)

	if _, err := repo.Save("https://push.example/a", entity.PushSubscriptionKeys{P256dh: "p1", Auth: "a1"}); err != nil {
		t.Fatalf("Save a: %v", err)
	}
	if _, err := repo.Save("https://push.example/b", entity.PushSubscriptionKeys{P256dh: "p2", Auth: "a2"}); err != nil {
		t.Fatalf("Save b: %v", err)
	}

	subs, err := repo.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("List len = %d, want 2", len(subs))
	}
	if subs[0].ID == "" {
		t.Error("subscription ID should be set")
	}
}

func TestSubscriptionRepository_ResubscribeReplacesKeys(t *testing.T) {
	repo := pushTestDB(t)
	endpoint := "https://push.example/same"

	first, err := repo.Save(endpoint, entity.PushSubscriptionKeys{P256dh: "old", Auth: "old"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := repo.Save(endpoint, entity.PushSubscriptionKeys{P256dh: "new", Auth: "new"})
	if err != nil {
		t.Fatalf("Save again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("ID = %q after resubscribe, want stored %q", second.ID, first.ID)
	}
	if got := second.Keys.Data().P256dh; got != "new" {
		t.Errorf("returned P256dh = %q, want new", got)
	}

	subs, _ := repo.List()
	if len(subs) != 1 {
		t.Fatalf("List len = %d, want 1", len(subs))
	}
	if got := subs[0].Keys.Data().P256dh; got != "new" {
		t.Errorf("P256dh = %q, want new", got)
	}
}

func TestSubscriptionRepository_DeleteByEndpoint(t *testing.T) {
	repo := pushTestDB(t)
	repo.Save("https://push.example/gone", entity.PushSubscriptionKeys{})
	if err := repo.DeleteByEndpoint("https://push.example/gone"); err != nil {
		t.Fatalf("DeleteByEndpoint: %v", err)
	}
	subs, _ := repo.List()
	if len(subs) != 0 {
		t.Errorf("List len = %d, want 0", len(subs))
	}
}
