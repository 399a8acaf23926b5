package natskv_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Strob0t/todolist/internal/adapter/nats"
	"github.com/Strob0t/todolist/internal/adapter/natskv"
	"github.com/Strob0t/todolist/internal/port/cache/cachetest"
)

func TestNATSKV_Compliance(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("requires NATS_URL")
	}

	ctx := context.Background()
	q, err := nats.Connect(ctx, url, "TODOLIST_TEST")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer func() { _ = q.Close() }()

	kv, err := q.KeyValue(ctx, "TODOLIST_TEST_CACHE", time.Minute)
	if err != nil {
		t.Fatalf("KeyValue: %v", err)
	}
	cachetest.Run(t, natskv.New(kv))
}
