// Package redistest connects tests to a live Redis named by
// ZEROAI_TEST_REDIS_ADDR and skips them when none is configured.
package redistest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

const addrEnv = "ZEROAI_TEST_REDIS_ADDR"

// New returns a client on database 15 that is flushed before and after the test.
func New(t testing.TB) *redis.Client {
	t.Helper()

	addr := os.Getenv(addrEnv)
	if addr == "" {
		t.Skipf("%s is not set; skipping Redis integration test", addrEnv)
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis unreachable at %s: %v", addr, err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	return client
}
