package stream

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("trip-1")
	defer hub.Unregister(client)

	payload := []byte(`{"status":"accepted"}`)
	hub.Broadcast("trip-1", payload)

	select {
	case msg := <-client.Send:
		if string(msg) != `{"status":"accepted"}` {
			t.Fatalf("unexpected message")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}
}

func TestHubHelpers(t *testing.T) {
	ch := redisChannel("abc")
	if ch != "trips:abc:events" {
		t.Fatalf("unexpected channel: %s", ch)
	}
	if tripIDFromChannel(ch) != "abc" {
		t.Fatalf("unexpected trip id")
	}
	if tripIDFromChannel("bad") != "" {
		t.Fatalf("expected empty trip id")
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("trip-2")
	hub.Unregister(client)
	_, ok := <-client.Send
	if ok {
		t.Fatalf("expected channel closed")
	}
}

func TestHubRedisBroadcastAndSubscribe(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	hub := NewHub(client)
	ws := hub.Register("trip-redis")
	defer hub.Unregister(ws)

	hub.Broadcast("trip-redis", []byte("ping"))

	select {
	case msg := <-ws.Send:
		if string(msg) != "ping" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for broadcast")
	}

	other := hub.Register("trip-other")
	defer hub.Unregister(other)

	time.Sleep(20 * time.Millisecond)
	if err := client.Publish(context.Background(), "trips:trip-other:events", "pong").Err(); err != nil {
		t.Fatalf("publish error: %v", err)
	}

	select {
	case msg := <-other.Send:
		if string(msg) != "pong" {
			t.Fatalf("unexpected message from redis")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for redis message")
	}
}

func TestHubRedisPublishError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()
	defer client.Close()

	hub := NewHub(client)
	clientNode := hub.Register("trip-bad")
	defer hub.Unregister(clientNode)

	hub.Broadcast("trip-bad", []byte("ping"))
}
