package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopAlwaysMisses(t *testing.T) {
	var c Cache = Noop{}
	ctx := context.Background()

	if err := c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	var out map[string]int
	if err := c.GetJSON(ctx, "k", &out); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
	if out != nil {
		t.Fatalf("destination should be untouched, got %v", out)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestRedisCacheKeyPrefix(t *testing.T) {
	c := NewRedisCache(nil, "gym:")
	if got := c.key("stats"); got != "gym:stats" {
		t.Fatalf("key = %q", got)
	}
}
