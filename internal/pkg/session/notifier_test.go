package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierDeliversEventsInOrder(t *testing.T) {
	n := NewNotifier(8)
	defer n.Close()

	var mu sync.Mutex
	var got []Event
	n.Subscribe(func(ev Event) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})

	n.Publish(Event{Kind: SignedIn, UserID: 1, SessionID: "s1"})
	n.Publish(Event{Kind: Refreshed, UserID: 1, SessionID: "s2"})
	n.Publish(Event{Kind: SignedOut, UserID: 1, SessionID: "s2"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, SignedIn, got[0].Kind)
	assert.Equal(t, Refreshed, got[1].Kind)
	assert.Equal(t, SignedOut, got[2].Kind)
	assert.Equal(t, "s1", got[0].SessionID)
}

func TestNotifierListenerRunsOffCallerStack(t *testing.T) {
	n := NewNotifier(8)
	defer n.Close()

	published := make(chan struct{})
	seen := make(chan Event, 1)
	n.Subscribe(func(ev Event) {
		// The listener must observe the publish call completed first.
		<-published
		seen <- ev
	})

	n.Publish(Event{Kind: SignedIn, UserID: 42, SessionID: "tok"})
	close(published)

	select {
	case ev := <-seen:
		assert.Equal(t, int64(42), ev.UserID)
	case <-time.After(time.Second):
		t.Fatal("listener never ran")
	}
}

func TestNotifierCloseDrainsQueue(t *testing.T) {
	n := NewNotifier(16)

	var mu sync.Mutex
	count := 0
	n.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	for i := 0; i < 10; i++ {
		n.Publish(Event{Kind: SignedIn, UserID: int64(i), SessionID: "s"})
	}
	n.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 10, count)
}

func TestNotifierPublishAfterCloseIsNoop(t *testing.T) {
	n := NewNotifier(4)
	n.Close()

	assert.NotPanics(t, func() {
		n.Publish(Event{Kind: SignedIn, UserID: 1, SessionID: "s"})
	})
}

func TestNotifierSubscribeReplacesListener(t *testing.T) {
	n := NewNotifier(4)
	defer n.Close()

	first := make(chan Event, 4)
	second := make(chan Event, 4)
	n.Subscribe(func(ev Event) { first <- ev })
	n.Subscribe(func(ev Event) { second <- ev })

	n.Publish(Event{Kind: SignedIn, UserID: 7, SessionID: "x"})

	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("replacement listener never ran")
	}
	assert.Empty(t, first)
}

func TestNotifierPublishConcurrentWithClose(t *testing.T) {
	for i := 0; i < 50; i++ {
		n := NewNotifier(4)
		n.Subscribe(func(Event) {})

		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				assert.NotPanics(t, func() {
					for j := 0; j < 20; j++ {
						n.Publish(Event{Kind: SignedIn, UserID: int64(g), SessionID: "s"})
					}
				})
			}(g)
		}

		n.Close()
		wg.Wait()
	}
}
