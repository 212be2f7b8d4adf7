package cache

import (
	"context"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLRU(size int, ttl time.Duration) (*LRU[int64, string], *clock) {
	clk := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRU[int64, string](size, ttl)
	c.now = clk.now
	return c, clk
}

func TestLRU_GetSet(t *testing.T) {
	c, _ := newTestLRU(2, time.Minute)

	if _, ok := c.Get(1); ok {
		t.Fatal("empty cache returned a hit")
	}
	c.Set(1, "a")
	c.Set(1, "b")
	if v, ok := c.Get(1); !ok || v != "b" {
		t.Fatalf("Get(1) = %q, %v; want b, true", v, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestLRU(2, time.Minute)

	c.Set(1, "a")
	c.Set(2, "b")
	c.Get(1) // 2 is now the oldest
	c.Set(3, "c")

	if _, ok := c.Get(2); ok {
		t.Error("key 2 should have been evicted")
	}
	for _, k := range []int64{1, 3} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("key %d should still be cached", k)
		}
	}
}

func TestLRU_Expiry(t *testing.T) {
	c, clk := newTestLRU(10, time.Minute)

	c.Set(1, "a")
	clk.advance(30 * time.Second)
	c.Set(2, "b")
	clk.advance(45 * time.Second)

	if _, ok := c.Get(1); ok {
		t.Error("key 1 should have expired")
	}
	if _, ok := c.Get(2); !ok {
		t.Error("key 2 should still be fresh")
	}

	clk.advance(time.Minute)
	c.Set(3, "c")
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	c.Delete(3)
	if c.Len() != 0 {
		t.Errorf("Len() after Delete = %d, want 0", c.Len())
	}
}

func TestJanitor(t *testing.T) {
	c, clk := newTestLRU(10, time.Minute)
	c.Set(1, "a")
	c.Set(2, "b")
	clk.advance(2 * time.Minute)

	j := NewJanitor(nil, c)
	if n := j.Sweep(); n != 2 {
		t.Fatalf("Sweep() = %d, want 2", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
