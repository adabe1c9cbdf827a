package stream

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubLocalBroadcast(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register()
	hub.Subscribe(client, ChannelRunnerLocation)
	defer hub.Unregister(client)

	hub.Broadcast(ChannelRunnerLocation, []byte(`{"raceId":"r1"}`))

	select {
	case msg := <-client.Send:
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		if env.Channel != ChannelRunnerLocation || string(env.Data) != `{"raceId":"r1"}` {
			t.Fatalf("unexpected envelope: %+v", env)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}
}

func TestHubChannelIsolation(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register()
	hub.Subscribe(client, ChannelRaceCompleted)
	defer hub.Unregister(client)

	hub.Broadcast(ChannelRunnerLocation, []byte(`{}`))

	select {
	case <-client.Send:
		t.Fatalf("client must not receive other channels")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register()
	hub.Subscribe(client, ChannelAnnouncement)
	hub.Unsubscribe(client, ChannelAnnouncement)
	defer hub.Unregister(client)

	hub.Broadcast(ChannelAnnouncement, []byte(`{}`))

	select {
	case <-client.Send:
		t.Fatalf("unsubscribed client must not receive")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register()
	hub.Subscribe(client, ChannelRunnerLocation)
	hub.Unregister(client)
	if _, ok := <-client.Send; ok {
		t.Fatalf("expected channel closed")
	}
}

func TestHubConcurrentSubscribeBroadcast(t *testing.T) {
	hub := NewHub(nil)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				hub.Broadcast(ChannelRunnerLocation, []byte(`{}`))
			}
		}
	}()

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				client := hub.Register()
				hub.Subscribe(client, ChannelRunnerLocation)
				hub.Unsubscribe(client, ChannelRunnerLocation)
				hub.Unregister(client)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout under concurrent subscribe/broadcast churn")
	}
}

func TestHubRedisRoundTrip(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	hub := NewHub(rdb)
	client := hub.Register()
	hub.Subscribe(client, ChannelRunnerLocation)
	defer hub.Unregister(client)

	// allow the psubscribe goroutine to attach
	time.Sleep(20 * time.Millisecond)
	hub.Broadcast(ChannelRunnerLocation, []byte(`{"raceId":"r1"}`))

	select {
	case msg := <-client.Send:
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		if env.Channel != ChannelRunnerLocation {
			t.Fatalf("unexpected channel: %s", env.Channel)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting for redis round trip")
	}
}

func TestHubRedisPublishError(t *testing.T) {
	server := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()
	defer rdb.Close()

	hub := NewHub(rdb)
	client := hub.Register()
	hub.Subscribe(client, ChannelRunnerLocation)
	defer hub.Unregister(client)

	// must not panic or block
	hub.Broadcast(ChannelRunnerLocation, []byte(`{}`))
}

func TestRedisChannelHelpers(t *testing.T) {
	ch := redisChannel("race-completed")
	if channelFromRedis(ch) != "race-completed" {
		t.Fatalf("round trip failed: %s", ch)
	}
	if channelFromRedis("bad") != "" {
		t.Fatalf("expected empty channel")
	}
	if channelFromRedis("dashboard::broadcast") != "" {
		t.Fatalf("expected empty channel name rejected")
	}
}
