package cache

import (
	"testing"
	"time"

	"github.com/shoprank/backend/internal/domain"
)

func TestPageCache_SetAndGet(t *testing.T) {
	c := NewPageCache(time.Minute)
	page := &domain.SearchPage{TotalCount: 42}

	c.Set("widget:1:100", page)

	got := c.Get("widget:1:100")
	if got == nil {
		t.Fatal("expected cache hit")
	}
	if got.TotalCount != 42 {
		t.Errorf("TotalCount = %d, want 42", got.TotalCount)
	}
}

func TestPageCache_Miss(t *testing.T) {
	c := NewPageCache(time.Minute)
	if got := c.Get("absent"); got != nil {
		t.Errorf("expected miss, got %+v", got)
	}
}

func TestPageCache_Expiry(t *testing.T) {
	c := NewPageCache(20 * time.Millisecond)
	c.Set("widget:1:100", &domain.SearchPage{TotalCount: 1})

	if c.Get("widget:1:100") == nil {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(40 * time.Millisecond)
	if c.Get("widget:1:100") != nil {
		t.Error("expected miss after expiry")
	}
}

func TestPageCache_Clear(t *testing.T) {
	c := NewPageCache(time.Minute)
	c.Set("a", &domain.SearchPage{})
	c.Set("b", &domain.SearchPage{})

	if c.Size() != 2 {
		t.Fatalf("Size = %d, want 2", c.Size())
	}

	c.Clear()
	if c.Size() != 0 {
		t.Errorf("Size after Clear = %d, want 0", c.Size())
	}
}

func TestPageCache_DefaultTTL(t *testing.T) {
	c := NewPageCache(0)
	c.Set("a", &domain.SearchPage{TotalCount: 7})
	if c.Get("a") == nil {
		t.Error("zero TTL must fall back to the default, not expire immediately")
	}
}
