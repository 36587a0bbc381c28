package bus

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ModularHallway100/harmony-backend/internal/platform/logger"
)

func TestRedisBusPublishForward(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	b, err := NewRedisBus(logger.Nop(), rdb, "")
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Event, 1)
	if err := b.StartForwarder(ctx, func(evt Event) { got <- evt }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	evt, err := NewEvent(EventHistoryAppended, "artist-1", "", map[string]string{"status": "succeeded"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	if err := b.Publish(ctx, evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case recv := <-got:
		if recv.Type != EventHistoryAppended || recv.ArtistID != "artist-1" {
			t.Fatalf("unexpected event: %+v", recv)
		}
		if string(recv.Data) != `{"status":"succeeded"}` {
			t.Fatalf("unexpected payload: %s", recv.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for forwarded event")
	}
}

func TestNewRedisBusRequiresClient(t *testing.T) {
	if _, err := NewRedisBus(logger.Nop(), nil, "x"); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
