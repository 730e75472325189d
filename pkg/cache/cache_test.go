package cache

import (
	"testing"
	"time"
)

func TestSetGetDelete(t *testing.T) {
	c := NewInMemoryCache[string, int](time.Minute)

	c.Set("a", 1, 0)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) got=(%d,%v) want=(1,true)", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("missing key should not be found")
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("deleted key should not be found")
	}
}

func TestExpiry(t *testing.T) {
	c := NewInMemoryCache[string, string](time.Minute)

	c.Set("short", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Fatalf("expired entry should not be returned")
	}
}

func TestClearAndSize(t *testing.T) {
	c := NewInMemoryCache[int, int](time.Minute)
	c.Set(1, 1, 0)
	c.Set(2, 2, 0)
	if c.Size() != 2 {
		t.Fatalf("Size got=%d want=2", c.Size())
	}
	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("Size after Clear got=%d want=0", c.Size())
	}
}
