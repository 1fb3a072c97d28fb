package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/fleetops/couriertrack/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestNilClientBehavesAsMiss(t *testing.T) {
	holder := config.NewStaticTrackingConfigHolder(config.DefaultTrackingConfig())
	c := New(nil, zap.NewNop(), holder)

	if c.Enabled() {
		t.Fatal("expected cache disabled without a client")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	id := node.Generate()

	if _, ok := c.Get(context.Background(), id); ok {
		t.Fatal("expected miss from disabled cache")
	}

	// Writes and evictions are silent no-ops.
	c.Set(context.Background(), id, 12.5)
	c.Evict(context.Background(), id)

	if _, ok := c.Get(context.Background(), id); ok {
		t.Fatal("disabled cache must never report a hit")
	}
}

func TestSetThenGetWithTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	holder := config.NewStaticTrackingConfigHolder(config.DefaultTrackingConfig())
	c := New(client, zap.NewNop(), holder)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	id := node.Generate()

	if _, ok := c.Get(context.Background(), id); ok {
		t.Fatal("expected miss before any write")
	}

	c.Set(context.Background(), id, 42.125)

	got, ok := c.Get(context.Background(), id)
	if !ok {
		t.Fatal("expected hit after write")
	}
	if got != 42.125 {
		t.Fatalf("cached value %v, want 42.125", got)
	}

	if ttl := mr.TTL(key(id)); ttl != config.DefaultTrackingConfig().CacheTTL {
		t.Fatalf("entry ttl %v, want %v", ttl, config.DefaultTrackingConfig().CacheTTL)
	}

	c.Evict(context.Background(), id)
	if _, ok := c.Get(context.Background(), id); ok {
		t.Fatal("expected miss after evict")
	}
}
