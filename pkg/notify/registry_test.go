package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRegistry_PublishTargetsRecipient(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	ctx := context.Background()

	alice := r.Register("user-alice")
	bob := r.Register("user-bob")
	admin := r.Register("")
	defer r.Remove(alice)
	defer r.Remove(bob)
	defer r.Remove(admin)

	r.Publish(ctx, Event{Type: EventSignupCreated, UserID: "user-alice", Message: "confirmed"})

	select {
	case got := <-alice.Events():
		assert.Equal(t, EventSignupCreated, got.Type)
		assert.Equal(t, "user-alice", got.UserID)
	default:
		t.Fatal("alice should have received the event")
	}

	// The admin firehose sees every event.
	select {
	case got := <-admin.Events():
		assert.Equal(t, "user-alice", got.UserID)
	default:
		t.Fatal("admin should have received the event")
	}

	select {
	case got := <-bob.Events():
		t.Fatalf("bob should not have received %v", got)
	default:
	}
}

func TestRegistry_BroadcastReachesEveryone(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	ctx := context.Background()

	subs := []*Subscriber{r.Register("user-1"), r.Register("user-2"), r.Register("")}
	defer func() {
		for _, s := range subs {
			r.Remove(s)
		}
	}()

	r.Publish(ctx, Event{Type: EventShiftDeleted, Message: "dinner service canceled"})

	for i, s := range subs {
		select {
		case got := <-s.Events():
			assert.Equal(t, EventShiftDeleted, got.Type, "subscriber %d", i)
		default:
			t.Fatalf("subscriber %d should have received the broadcast", i)
		}
	}
}

func TestRegistry_SlowSubscriberLosesEventsWithoutBlocking(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	ctx := context.Background()

	sub := r.Register("user-slow")
	defer r.Remove(sub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*3; i++ {
			r.Publish(ctx, Event{Type: EventSignupCreated, UserID: "user-slow"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	assert.Equal(t, subscriberBuffer, len(sub.ch))
}

func TestRegistry_RemoveClosesChannel(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	sub := r.Register("user-1")
	r.Remove(sub)
	r.Remove(sub)

	_, open := <-sub.Events()
	require.False(t, open)
	assert.Equal(t, 0, r.Len())

	// Publishing with no subscribers is a no-op.
	r.Publish(context.Background(), Event{Type: EventSignupCanceled, UserID: "user-1"})
}

func TestRegistry_ConcurrentChurn(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sub := r.Register("user-churn")
				r.Publish(ctx, Event{Type: EventSignupCreated, UserID: "user-churn"})
				r.Remove(sub)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len())
}
