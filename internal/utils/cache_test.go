package utils

import (
	"testing"
	"time"
)

func TestCacheExpires(t *testing.T) {
	c, err := NewCache[string, int](2, time.Minute)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Expected 1, got %v (%v)", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Errorf("Expected entry to expire")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry must be evicted on read, len=%d", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := NewCache[int, string](2, time.Hour)
	c.Set(1, "one")
	c.Set(2, "two")
	c.Get(1)
	c.Set(3, "three")

	if _, ok := c.Get(2); ok {
		t.Errorf("Expected 2 to be evicted")
	}
	if _, ok := c.Get(1); !ok {
		t.Errorf("Expected 1 to survive")
	}
	if c.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", c.Len())
	}
}

func TestNewCacheRejectsZeroSize(t *testing.T) {
	if _, err := NewCache[string, int](0, time.Minute); err == nil {
		t.Errorf("Expected error for zero size")
	}
}
