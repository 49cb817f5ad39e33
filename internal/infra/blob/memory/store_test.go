package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"labregistry/internal/infra/blob/core"
)

func TestPutGetRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	info, err := store.Put(ctx, "exports/a.json", strings.NewReader(`{"ok":true}`), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"report": "most_published"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(`{"ok":true}`)) || info.ContentType != "application/json" {
		t.Fatalf("unexpected info: %+v", info)
	}

	got, rc, err := store.Get(ctx, "exports/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		t.Fatalf("read: %v", err)
	}
	if buf.String() != `{"ok":true}` {
		t.Fatalf("content = %q", buf.String())
	}
	if got.Metadata["report"] != "most_published" {
		t.Fatalf("metadata lost: %+v", got.Metadata)
	}
}

func TestPutIsCreateOnly(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.Put(ctx, "k", strings.NewReader("one"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "k", strings.NewReader("two"), core.PutOptions{}); err == nil {
		t.Fatalf("second put for same key must fail")
	}
}

func TestListByPrefixAndDelete(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, key := range []string{"exports/1/a.csv", "exports/1/a.json", "exports/2/b.csv"} {
		if _, err := store.Put(ctx, key, strings.NewReader("data"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	infos, err := store.List(ctx, "exports/1/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "exports/1/a.csv" {
		t.Fatalf("unexpected listing: %+v", infos)
	}

	ok, err := store.Delete(ctx, "exports/1/a.csv")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = store.Delete(ctx, "exports/1/a.csv")
	if err != nil || ok {
		t.Fatalf("second delete should report missing, ok=%v err=%v", ok, err)
	}
}

func TestPresignUnsupported(t *testing.T) {
	store := New()
	if _, err := store.PresignURL(context.Background(), "k", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if store.Driver() != core.DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}
}
