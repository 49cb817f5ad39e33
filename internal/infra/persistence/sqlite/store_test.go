package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"labregistry/pkg/domain"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	var member domain.Member
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		member, err = tx.CreateMember(domain.Member{Name: "Durable", Kind: domain.KindStudent})
		return err
	}); err != nil {
		t.Fatalf("create member: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	restored, ok := reopened.GetMember(member.ID)
	if !ok {
		t.Fatalf("member not restored from disk")
	}
	if restored.Name != "Durable" || restored.Kind != domain.KindStudent {
		t.Fatalf("unexpected restored member: %+v", restored)
	}
}

func TestStoreWritesAllBuckets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateMember(domain.Member{Name: "Row", Kind: domain.KindFaculty})
		return err
	}); err != nil {
		t.Fatalf("create member: %v", err)
	}

	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&count); err != nil {
		t.Fatalf("count buckets: %v", err)
	}
	if count != len(buckets) {
		t.Fatalf("bucket rows = %d, want %d", count, len(buckets))
	}
}

func TestBlockedTransactionNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateMember(domain.Member{Name: "X", Kind: domain.MemberKind("Nope")})
		return err
	}); err == nil {
		t.Fatalf("invalid member must fail")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if got := len(reopened.ListMembers()); got != 0 {
		t.Fatalf("rejected write leaked to disk: %d members", got)
	}
}
