package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/agentstation/smsrelay/internal/metrics"
)

// mockSubscriber records events and can be told to fail.
type mockSubscriber struct {
	mu     sync.Mutex
	events []Event
	fail   bool
	closes int
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{}
}

func newFailingSubscriber() *mockSubscriber {
	return &mockSubscriber{fail: true}
}

func (m *mockSubscriber) Send(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("broken pipe")
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return nil
}

func (m *mockSubscriber) Transport() string { return "mock" }

func (m *mockSubscriber) EventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func (m *mockSubscriber) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

func (m *mockSubscriber) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

func newTestBroker() *Broker {
	logger := zerolog.Nop()
	return NewBroker(&logger)
}

func TestBroker_BroadcastDeliversToAll(t *testing.T) {
	b := newTestBroker()
	subs := []*mockSubscriber{newMockSubscriber(), newMockSubscriber(), newMockSubscriber()}
	for _, s := range subs {
		_, err := b.Subscribe(s)
		require.NoError(t, err)
	}

	payload := map[string]any{"type": "message.received", "data": map[string]any{"id": "AC1"}}
	n := b.Broadcast(OpenPhone, payload)
	assert.Equal(t, 3, n)

	for _, s := range subs {
		events := s.Events()
		require.Len(t, events, 1)
		assert.Equal(t, OpenPhone, events[0].Type)
		assert.NotEmpty(t, events[0].ID)
		assert.JSONEq(t, `{"type":"message.received","data":{"id":"AC1"}}`, string(events[0].Data))
	}
	// Every subscriber sees the same event instance.
	assert.Equal(t, subs[0].Events()[0].ID, subs[1].Events()[0].ID)
}

func TestBroker_BroadcastWithNoSubscribers(t *testing.T) {
	b := newTestBroker()
	assert.Equal(t, 0, b.Broadcast(OpenPhone, map[string]string{"type": "message.received"}))
}

func TestBroker_FailedSubscriberIsDropped(t *testing.T) {
	b := newTestBroker()
	good := newMockSubscriber()
	bad := newFailingSubscriber()

	_, err := b.Subscribe(good)
	require.NoError(t, err)
	badHandle, err := b.Subscribe(bad)
	require.NoError(t, err)
	require.Equal(t, 2, b.SubscriberCount())

	n := b.Broadcast(OpenPhone, map[string]string{"type": "message.delivered"})
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, good.EventCount())
	assert.Equal(t, 1, b.SubscriberCount())
	assert.Equal(t, 1, bad.CloseCount())

	select {
	case <-badHandle.Done():
	default:
		t.Error("failed subscriber's handle should be done")
	}

	n = b.Broadcast(OpenPhone, map[string]string{"type": "message.delivered"})
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, good.EventCount())
}

func TestBroker_UnsubscribeIsIdempotent(t *testing.T) {
	b := newTestBroker()
	s := newMockSubscriber()
	h, err := b.Subscribe(s)
	require.NoError(t, err)

	b.Unsubscribe(h)
	b.Unsubscribe(h)
	b.Unsubscribe(nil)

	assert.Equal(t, 0, b.SubscriberCount())
	assert.Equal(t, 1, s.CloseCount())
	assert.Equal(t, 0, b.Broadcast(OpenPhone, map[string]string{}))
	assert.Equal(t, 0, s.EventCount())
}

func TestBroker_LateSubscriberMissesEarlierEvents(t *testing.T) {
	b := newTestBroker()
	early := newMockSubscriber()
	_, err := b.Subscribe(early)
	require.NoError(t, err)

	b.Broadcast(OpenPhone, map[string]int{"seq": 1})

	late := newMockSubscriber()
	_, err = b.Subscribe(late)
	require.NoError(t, err)

	b.Broadcast(OpenPhone, map[string]int{"seq": 2})

	assert.Equal(t, 2, early.EventCount())
	events := late.Events()
	require.Len(t, events, 1)
	assert.JSONEq(t, `{"seq":2}`, string(events[0].Data))
}

func TestBroker_UnencodablePayload(t *testing.T) {
	b := newTestBroker()
	s := newMockSubscriber()
	_, err := b.Subscribe(s)
	require.NoError(t, err)

	assert.Equal(t, 0, b.Broadcast(OpenPhone, make(chan int)))
	assert.Equal(t, 0, s.EventCount())
	assert.Equal(t, 1, b.SubscriberCount())
}

func TestBroker_RawPayloadPassesThrough(t *testing.T) {
	b := newTestBroker()
	s := newMockSubscriber()
	_, err := b.Subscribe(s)
	require.NoError(t, err)

	raw := json.RawMessage(`{"type":"message.received","object":{"body":"olá"}}`)
	b.Broadcast("custom", raw)

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "custom", events[0].Type)
	assert.JSONEq(t, string(raw), string(events[0].Data))
}

func TestBroker_Close(t *testing.T) {
	b := newTestBroker()
	subs := []*mockSubscriber{newMockSubscriber(), newMockSubscriber()}
	var handles []*Subscription
	for _, s := range subs {
		h, err := b.Subscribe(s)
		require.NoError(t, err)
		handles = append(handles, h)
	}

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	assert.Equal(t, 0, b.SubscriberCount())
	for i, s := range subs {
		assert.Equal(t, 1, s.CloseCount())
		<-handles[i].Done()
	}

	_, err := b.Subscribe(newMockSubscriber())
	assert.ErrorIs(t, err, ErrBrokerClosed)

	// Unsubscribing after close must not close twice.
	b.Unsubscribe(handles[0])
	assert.Equal(t, 1, subs[0].CloseCount())
}

func TestBroker_ConcurrentSubscribeAndBroadcast(t *testing.T) {
	b := newTestBroker()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h, err := b.Subscribe(newMockSubscriber())
			if err != nil {
				t.Error(err)
				return
			}
			b.Unsubscribe(h)
		}()
		go func(i int) {
			defer wg.Done()
			b.Broadcast(OpenPhone, map[string]int{"seq": i})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, b.SubscriberCount())
}

func TestBroker_Metrics(t *testing.T) {
	logger := zerolog.Nop()
	m := metrics.New()
	b := NewBroker(&logger, WithMetrics(m))

	_, err := b.Subscribe(newMockSubscriber())
	require.NoError(t, err)
	_, err = b.Subscribe(newFailingSubscriber())
	require.NoError(t, err)

	b.Broadcast(OpenPhone, map[string]string{"type": "message.received"})

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["smsrelay_broadcasts_total"])
	assert.True(t, names["smsrelay_delivery_failures_total"])
	assert.True(t, names["smsrelay_subscribers_active"])
}

// A broadcast reaches exactly the healthy subscribers and removes exactly
// the failing ones, whatever the mix.
func TestBroker_FaultIsolationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := newTestBroker()
		failing := rapid.SliceOf(rapid.Bool()).Draw(t, "failing")

		subs := make([]*mockSubscriber, len(failing))
		healthy := 0
		for i, f := range failing {
			if f {
				subs[i] = newFailingSubscriber()
			} else {
				subs[i] = newMockSubscriber()
				healthy++
			}
			if _, err := b.Subscribe(subs[i]); err != nil {
				t.Fatalf("subscribe %d: %v", i, err)
			}
		}

		n := b.Broadcast(OpenPhone, map[string]string{"seq": fmt.Sprint(len(failing))})
		if n != healthy {
			t.Fatalf("delivered %d, want %d", n, healthy)
		}
		if got := b.SubscriberCount(); got != healthy {
			t.Fatalf("subscriber count %d, want %d", got, healthy)
		}
		for i, s := range subs {
			if failing[i] {
				if s.CloseCount() != 1 {
					t.Fatalf("failing subscriber %d closed %d times", i, s.CloseCount())
				}
				continue
			}
			if s.EventCount() != 1 || s.CloseCount() != 0 {
				t.Fatalf("healthy subscriber %d: events=%d closes=%d", i, s.EventCount(), s.CloseCount())
			}
		}
	})
}

func TestBroker_InvalidRawPayload(t *testing.T) {
	b := newTestBroker()
	s := newMockSubscriber()
	_, err := b.Subscribe(s)
	require.NoError(t, err)

	assert.Equal(t, 0, b.Broadcast(OpenPhone, json.RawMessage(`{"type":`)))
	assert.Equal(t, 0, s.EventCount())
}

func TestBroker_RawPayloadIsNotReencoded(t *testing.T) {
	b := newTestBroker()
	s := newMockSubscriber()
	_, err := b.Subscribe(s)
	require.NoError(t, err)

	raw := `{"body":"a <b> & c"}`
	b.Broadcast(OpenPhone, json.RawMessage(raw))
	assert.Equal(t, raw, string(s.Events()[0].Data))
}
