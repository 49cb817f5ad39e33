package s3

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"labregistry/internal/infra/blob/core"
)

func TestMockPutGetRoundTrip(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()

	if store.Driver() != core.DriverS3 {
		t.Fatalf("driver = %s", store.Driver())
	}

	if _, err := store.Put(ctx, "exports/run/data.json", strings.NewReader(`{"n":1}`), core.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	info, rc, err := store.Get(ctx, "exports/run/data.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		t.Fatalf("read: %v", err)
	}
	if buf.String() != `{"n":1}` {
		t.Fatalf("content = %q", buf.String())
	}
	if info.ContentType != "application/json" {
		t.Fatalf("content type = %s", info.ContentType)
	}
}

func TestMockPutIsCreateOnly(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()

	if _, err := store.Put(ctx, "k", strings.NewReader("one"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "k", strings.NewReader("two"), core.PutOptions{}); err == nil {
		t.Fatalf("second put must fail")
	}
}

func TestMockHeadListDelete(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()

	for _, key := range []string{"exports/a", "exports/b", "misc/c"} {
		if _, err := store.Put(ctx, key, strings.NewReader("data"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	info, err := store.Head(ctx, "exports/a")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if info.Size != int64(len("data")) {
		t.Fatalf("size = %d", info.Size)
	}

	infos, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "exports/a" {
		t.Fatalf("unexpected listing: %+v", infos)
	}

	ok, err := store.Delete(ctx, "exports/a")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if _, err := store.Head(ctx, "exports/a"); err == nil {
		t.Fatalf("deleted object still visible")
	}
}

func TestMockPresignURL(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()

	url, err := store.PresignURL(ctx, "exports/a", core.SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.Contains(url, "mock-bucket") || !strings.Contains(url, "exports/a") {
		t.Fatalf("unexpected url: %s", url)
	}
	if _, err := store.PresignURL(ctx, "exports/a", core.SignedURLOptions{Method: "PUT"}); err == nil {
		t.Fatalf("PUT presign must be unsupported")
	}
}
