// Package events is the relay's event broadcaster: a registry of connected
// push subscribers that fans each inbound webhook event out to all of them.
//
// Delivery is at most once per subscriber registered at broadcast time.
// Nothing is buffered or replayed, and a subscriber whose write fails is
// removed without the broadcaster's caller ever seeing the error.
package events

import (
	"encoding/json"
	"time"
)

// Event names used on the push channel.
const (
	// OpenPhone carries raw OpenPhone webhook envelopes.
	OpenPhone = "openphone"
)

// Event is a named payload ready for delivery. Data is the JSON encoding of
// the broadcast payload, produced once and shared by every subscriber.
type Event struct {
	Type      string          `json:"event"`
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"-"`
}
