package core

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"labregistry/internal/infra/persistence/memory"
	"labregistry/internal/infra/persistence/postgres"
	"labregistry/internal/infra/persistence/postgres/testutil"
	"labregistry/internal/infra/persistence/sqlite"
)

func TestOpenPersistentStoreMemory(t *testing.T) {
	t.Setenv("LABREGISTRY_STORAGE_DRIVER", string(StorageMemory))

	store, err := OpenPersistentStore(NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func TestOpenPersistentStoreSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	t.Setenv("LABREGISTRY_STORAGE_DRIVER", string(StorageSQLite))
	t.Setenv("LABREGISTRY_SQLITE_PATH", path)

	store, err := OpenPersistentStore(NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	st, ok := store.(*sqlite.Store)
	if !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
	defer func() { _ = st.Close() }()
	if st.Path() != path {
		t.Fatalf("path = %s, want %s", st.Path(), path)
	}

	svc := NewService(st)
	if _, _, err := svc.CreateMember(context.Background(), Member{Name: "Persisted", Kind: KindStudent}); err != nil {
		t.Fatalf("create member: %v", err)
	}
}

func TestOpenPersistentStorePostgres(t *testing.T) {
	db, conn := testutil.NewStubDB()
	restore := postgres.OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		if driverName != "pgx" {
			t.Errorf("driver = %s, want pgx", driverName)
		}
		if dsn != "postgres://stub/registry" {
			t.Errorf("dsn = %s", dsn)
		}
		return db, nil
	})
	defer restore()

	t.Setenv("LABREGISTRY_STORAGE_DRIVER", string(StoragePostgres))
	t.Setenv("LABREGISTRY_POSTGRES_DSN", "postgres://stub/registry")

	store, err := OpenPersistentStore(NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := store.(*postgres.Store); !ok {
		t.Fatalf("expected postgres store, got %T", store)
	}
	if len(conn.Execs) == 0 {
		t.Fatalf("expected table DDL to be executed")
	}
}

func TestOpenPersistentStoreUnknownDriver(t *testing.T) {
	t.Setenv("LABREGISTRY_STORAGE_DRIVER", "oracle")

	if _, err := OpenPersistentStore(NewDefaultRulesEngine()); err == nil {
		t.Fatalf("unknown driver must fail")
	}
}
