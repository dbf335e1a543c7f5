package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*HybridStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &HybridStore{redis: rdb}, mr
}

func TestSetAndGetJSON(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	defer mr.Close()

	days := []string{"2023-11-29", "2023-11-30"}
	if err := store.SetJSON(ctx, "caldays:ICE:2023-11-01:2023-11-30", days, time.Hour); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var got []string
	if err := store.GetJSON(ctx, "caldays:ICE:2023-11-01:2023-11-30", &got); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if len(got) != 2 || got[1] != "2023-11-30" {
		t.Errorf("unexpected cached days: %v", got)
	}
}

func TestGetJSON_Miss(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	defer mr.Close()

	var got []string
	if err := store.GetJSON(ctx, "caldays:ICE:missing", &got); err == nil {
		t.Fatal("expected error for missing key, got nil")
	}
}

func TestSetJSON_Expiration(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	defer mr.Close()

	if err := store.SetJSON(ctx, "caldays:NYMEX:x", []string{"2024-02-29"}, 200*time.Millisecond); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	mr.FastForward(300 * time.Millisecond)

	var got []string
	if err := store.GetJSON(ctx, "caldays:NYMEX:x", &got); err == nil {
		t.Fatal("expected error for expired key, got nil")
	}
}
