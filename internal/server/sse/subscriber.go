// Package sse streams broker events to browsers as Server-Sent Events.
package sse

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/agentstation/smsrelay/internal/server/events"
)

// TransportName labels SSE subscribers in logs and metrics.
const TransportName = "sse"

// ErrClosed is returned by writes after the subscriber has been closed.
var ErrClosed = errors.New("sse: subscriber closed")

// Subscriber writes events to one open text/event-stream response.
type Subscriber struct {
	mu           sync.Mutex
	w            http.ResponseWriter
	rc           *http.ResponseController
	writeTimeout time.Duration
	closed       bool
}

// NewSubscriber wraps w. Each write must complete within writeTimeout;
// zero disables the deadline.
func NewSubscriber(w http.ResponseWriter, writeTimeout time.Duration) *Subscriber {
	return &Subscriber{
		w:            w,
		rc:           http.NewResponseController(w),
		writeTimeout: writeTimeout,
	}
}

// Send writes ev as a named SSE event and flushes it.
func (s *Subscriber) Send(ev events.Event) error {
	return s.write(Format(ev))
}

// Comment writes an SSE comment line. Browsers ignore comments, which
// makes them useful as a greeting and as keep-alives.
func (s *Subscriber) Comment(text string) error {
	return s.write([]byte(": " + text + "\n\n"))
}

// Close marks the subscriber closed. The HTTP handler owns the connection
// and ends the response when it returns.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Transport implements events.Subscriber.
func (s *Subscriber) Transport() string {
	return TransportName
}

func (s *Subscriber) write(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.writeTimeout > 0 {
		err := s.rc.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		if err != nil && !errors.Is(err, http.ErrNotSupported) {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}
	if _, err := s.w.Write(frame); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("flush event: %w", err)
	}
	return nil
}

// Format renders ev in text/event-stream framing. Multi-line data is split
// across several data fields so the browser reassembles it unchanged.
// CRLF and lone CR count as line breaks, as they do for the browser.
func Format(ev events.Event) []byte {
	var buf bytes.Buffer
	if ev.Type != "" {
		fmt.Fprintf(&buf, "event: %s\n", ev.Type)
	}
	if ev.ID != "" {
		fmt.Fprintf(&buf, "id: %s\n", ev.ID)
	}
	data := bytes.ReplaceAll(ev.Data, []byte("\r\n"), []byte("\n"))
	data = bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
	for _, line := range bytes.Split(data, []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}
