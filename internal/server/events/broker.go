package events

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/agentstation/smsrelay/internal/metrics"
)

// ErrBrokerClosed is returned by Subscribe after Close.
var ErrBrokerClosed = errors.New("event broker closed")

// Subscription is the handle returned by Subscribe. Its identity is the
// subscriber's identity; the ID exists only for log correlation.
type Subscription struct {
	id   string
	sub  Subscriber
	done chan struct{}
	once sync.Once
}

// ID returns the subscription's log identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Done is closed once the subscriber has left the registry, either through
// Unsubscribe, a failed write, or broker Close.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.sub.Close()
	})
	return err
}

// Broker owns the set of connected subscribers.
type Broker struct {
	mu      sync.Mutex
	subs    map[*Subscription]struct{}
	closed  bool
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a Broker.
type Option func(*Broker)

// WithMetrics records subscriber and broadcast metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Broker) { b.metrics = m }
}

// NewBroker creates an empty broker.
func NewBroker(logger *zerolog.Logger, opts ...Option) *Broker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "events").Logger()
	b := &Broker{
		subs:   make(map[*Subscription]struct{}),
		logger: &l,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers sub and returns its handle.
func (b *Broker) Subscribe(sub Subscriber) (*Subscription, error) {
	h := &Subscription{
		id:   uuid.NewString(),
		sub:  sub,
		done: make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBrokerClosed
	}
	b.subs[h] = struct{}{}
	total := len(b.subs)
	b.mu.Unlock()

	b.metrics.SubscriberAdded(sub.Transport())
	b.logger.Info().
		Str("subscriber_id", h.id).
		Str("transport", sub.Transport()).
		Int("total_subscribers", total).
		Msg("Subscriber registered")
	return h, nil
}

// Unsubscribe removes h and closes its channel. Removing a nil or
// already-removed handle does nothing.
func (b *Broker) Unsubscribe(h *Subscription) {
	if h == nil {
		return
	}

	b.mu.Lock()
	_, ok := b.subs[h]
	delete(b.subs, h)
	total := len(b.subs)
	b.mu.Unlock()

	if !ok {
		return
	}
	b.release(h)
	b.logger.Info().
		Str("subscriber_id", h.id).
		Int("total_subscribers", total).
		Msg("Subscriber unregistered")
}

// release closes a handle already taken out of the map.
func (b *Broker) release(h *Subscription) {
	if err := h.close(); err != nil {
		b.logger.Debug().Err(err).Str("subscriber_id", h.id).Msg("Error closing subscriber")
	}
	b.metrics.SubscriberRemoved(h.sub.Transport())
}

// Broadcast sends payload as an event named eventType to every subscriber
// registered when the call starts. Each write runs independently; a failed
// write unsubscribes that subscriber and nothing else. It returns the number
// of subscribers that accepted the event.
func (b *Broker) Broadcast(eventType string, payload any) int {
	data, err := encode(payload)
	if err != nil {
		b.logger.Error().Err(err).Str("event", eventType).Msg("Failed to encode event payload")
		return 0
	}

	event := Event{
		Type:      eventType,
		ID:        uuid.NewString(),
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	b.mu.Lock()
	targets := make([]*Subscription, 0, len(b.subs))
	for h := range b.subs {
		targets = append(targets, h)
	}
	b.mu.Unlock()

	var delivered atomic.Int64
	var wg conc.WaitGroup
	for _, h := range targets {
		wg.Go(func() {
			if err := h.sub.Send(event); err != nil {
				b.metrics.DeliveryFailed(h.sub.Transport())
				b.logger.Debug().
					Err(err).
					Str("subscriber_id", h.id).
					Str("event", eventType).
					Msg("Write failed, dropping subscriber")
				b.Unsubscribe(h)
				return
			}
			delivered.Add(1)
		})
	}
	wg.Wait()

	b.metrics.Broadcast(eventType)
	b.logger.Debug().
		Str("event", eventType).
		Str("event_id", event.ID).
		Int("subscribers", len(targets)).
		Int64("delivered", delivered.Load()).
		Msg("Event broadcast")
	return int(delivered.Load())
}

// encode renders payload once for all subscribers. Raw JSON is forwarded
// byte for byte.
func encode(payload any) ([]byte, error) {
	if raw, ok := payload.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return nil, errors.New("invalid raw JSON payload")
		}
		return raw, nil
	}
	return json.Marshal(payload)
}

// SubscriberCount returns the number of registered subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close unsubscribes everyone and rejects further subscriptions.
// Calling Close more than once is safe.
func (b *Broker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	all := make([]*Subscription, 0, len(b.subs))
	for h := range b.subs {
		all = append(all, h)
	}
	clear(b.subs)
	b.mu.Unlock()

	for _, h := range all {
		b.release(h)
	}
	b.logger.Info().Int("closed_subscribers", len(all)).Msg("Event broker shut down")
	return nil
}
