package cache

import (
	"context"
	"testing"
	"time"

	"github.com/lakowalski/luxmedhunter/internal/domain/gateway"
)

func TestMemorySessionCache_SetGetExpire(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	c := newMemorySessionCache(func() time.Time { return now })
	ctx := context.Background()

	if got, err := c.Get(ctx, "jan"); got != nil || err != nil {
		t.Fatalf("empty cache returned %v, %v", got, err)
	}

	if err := c.Set(ctx, &gateway.Session{UserID: "jan", Token: "t1"}, time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, err := c.Get(ctx, "jan")
	if err != nil || got == nil || got.Token != "t1" {
		t.Fatalf("Get = %v, %v", got, err)
	}

	got.Token = "mutated"
	if again, _ := c.Get(ctx, "jan"); again.Token != "t1" {
		t.Fatalf("cache returned a shared pointer")
	}

	now = now.Add(time.Minute)
	if got, _ := c.Get(ctx, "jan"); got != nil {
		t.Fatalf("expired session still returned: %v", got)
	}
}

func TestMemorySessionCache_NonPositiveTTLIsNotStored(t *testing.T) {
	c := NewMemorySessionCache()
	ctx := context.Background()

	_ = c.Set(ctx, &gateway.Session{UserID: "jan", Token: "t"}, 0)
	if got, _ := c.Get(ctx, "jan"); got != nil {
		t.Fatalf("session with zero ttl was stored")
	}
}

func TestMemorySessionCache_Delete(t *testing.T) {
	c := NewMemorySessionCache()
	ctx := context.Background()

	_ = c.Set(ctx, &gateway.Session{UserID: "jan", Token: "t"}, time.Hour)
	if err := c.Delete(ctx, "jan"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if got, _ := c.Get(ctx, "jan"); got != nil {
		t.Fatalf("deleted session still returned")
	}
}
