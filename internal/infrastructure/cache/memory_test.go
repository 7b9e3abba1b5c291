package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sparradar/backend/internal/domain"
)

func sampleResult(total float64) *domain.FinalResult {
	return &domain.FinalResult{
		Items: []domain.EnrichedItem{
			{Name: "Milch", Amount: 1},
		},
		TotalPrice: total,
	}
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	t.Run("store and retrieve result", func(t *testing.T) {
		want := sampleResult(129)
		if err := cache.Set(ctx, "parse:milch", want, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		got, err := cache.Get(ctx, "parse:milch")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.TotalPrice != 129 {
			t.Errorf("TotalPrice = %v, want 129", got.TotalPrice)
		}
		if len(got.Items) != 1 || got.Items[0].Name != "Milch" {
			t.Errorf("Items = %+v, want one item named Milch", got.Items)
		}
	})

	t.Run("miss for unknown key", func(t *testing.T) {
		_, err := cache.Get(ctx, "parse:unknown")
		if !errors.Is(err, domain.ErrCacheMiss) {
			t.Errorf("error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("miss after expiration", func(t *testing.T) {
		if err := cache.Set(ctx, "parse:short", sampleResult(50), time.Millisecond); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		time.Sleep(10 * time.Millisecond)

		_, err := cache.Get(ctx, "parse:short")
		if !errors.Is(err, domain.ErrCacheMiss) {
			t.Errorf("error = %v, want ErrCacheMiss", err)
		}
	})
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "parse:brot", sampleResult(199), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cache.Delete(ctx, "parse:brot"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := cache.Get(ctx, "parse:brot")
	if !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("error after delete = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_SizeAndClear(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	cache.Set(ctx, "a", sampleResult(1), time.Minute)
	cache.Set(ctx, "b", sampleResult(2), time.Minute)

	if cache.Size() != 2 {
		t.Errorf("Size() = %d, want 2", cache.Size())
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", cache.Size())
	}
}
