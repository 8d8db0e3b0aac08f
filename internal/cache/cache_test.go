package cache

import (
	"testing"
	"time"
)

func TestCache_SetGetExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := New()
	c.now = func() time.Time { return now }

	c.Set("a", []byte("1"), time.Minute)

	v, ok := c.Get("a")
	if !ok || string(v) != "1" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}

	now = now.Add(time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected entry to expire at its deadline")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be evicted on read, len=%d", c.Len())
	}
}

func TestCache_ValuesAreCopied(t *testing.T) {
	c := New()
	src := []byte("abc")
	c.Set("k", src, time.Minute)
	src[0] = 'x'

	v, _ := c.Get("k")
	if string(v) != "abc" {
		t.Fatalf("stored value mutated through caller slice: %q", v)
	}

	v[1] = 'y'
	again, _ := c.Get("k")
	if string(again) != "abc" {
		t.Fatalf("stored value mutated through returned slice: %q", again)
	}
}

func TestCache_DeleteExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := New()
	c.now = func() time.Time { return now }

	c.Set("short", []byte("1"), time.Second)
	c.Set("long", []byte("2"), time.Hour)
	c.Set("gone", []byte("3"), time.Hour)
	c.Delete("gone")

	now = now.Add(time.Minute)

	if n := c.DeleteExpired(); n != 1 {
		t.Fatalf("DeleteExpired = %d, want 1", n)
	}
	if _, ok := c.Get("long"); !ok {
		t.Fatalf("long-lived entry should survive")
	}
}
