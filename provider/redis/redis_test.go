package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestProvider(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	p, err := New(Config{Client: rdb, CloseClient: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p, mr
}

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(Config{}); err != ErrNilClient {
		t.Fatalf("expected ErrNilClient, got %v", err)
	}
}

func TestGetSetDel(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestProvider(t)

	if _, ok, err := p.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "k", []byte("v"), 1, time.Minute); !ok || err != nil {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	b, ok, err := p.Get(ctx, "k")
	if err != nil || !ok || string(b) != "v" {
		t.Fatalf("Get: %q ok=%v err=%v", b, ok, err)
	}
	if ttl := mr.TTL("k"); ttl != time.Minute {
		t.Fatalf("TTL: got %v", ttl)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if mr.Exists("k") {
		t.Fatalf("key should be gone")
	}
}

func TestGetManyAndSetMany(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestProvider(t)

	items := map[string][]byte{
		"{1_2}_0xaa": []byte("a"),
		"{1_2}_0xbb": {0x00, 0xff},
	}
	if err := p.SetMany(ctx, items, 5*time.Minute); err != nil {
		t.Fatalf("SetMany: %v", err)
	}
	if ttl := mr.TTL("{1_2}_0xbb"); ttl != 5*time.Minute {
		t.Fatalf("TTL: got %v", ttl)
	}

	got, err := p.GetMany(ctx, []string{"{1_2}_0xaa", "{1_2}_0xcc", "{1_2}_0xbb"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 hits, got %v", got)
	}
	if string(got["{1_2}_0xaa"]) != "a" || got["{1_2}_0xbb"][1] != 0xff {
		t.Fatalf("unexpected values: %v", got)
	}
	if _, ok := got["{1_2}_0xcc"]; ok {
		t.Fatalf("missing key must not be reported")
	}
}

func TestErrorsSurface(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestProvider(t)
	mr.SetError("boom")

	if _, _, err := p.Get(ctx, "k"); err == nil {
		t.Fatalf("expected Get error")
	}
	if _, err := p.GetMany(ctx, []string{"a"}); err == nil {
		t.Fatalf("expected GetMany error")
	}
	if _, err := p.Set(ctx, "k", []byte("v"), 1, 0); err == nil {
		t.Fatalf("expected Set error")
	}
}
