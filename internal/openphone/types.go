package openphone

import "encoding/json"

// Message is a single SMS/MMS record as returned by the provider. The
// typed fields are a read-only view; a decoded Message encodes back to
// the exact upstream record, including fields not listed here.
type Message struct {
	ID            string   `json:"id"`
	From          string   `json:"from"`
	To            []string `json:"to"`
	Text          string   `json:"text"`
	Direction     string   `json:"direction,omitempty"`
	Status        string   `json:"status,omitempty"`
	PhoneNumberID string   `json:"phoneNumberId,omitempty"`
	UserID        string   `json:"userId,omitempty"`
	CreatedAt     string   `json:"createdAt,omitempty"`
	UpdatedAt     string   `json:"updatedAt,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Message) UnmarshalJSON(data []byte) error {
	type plain Message
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = Message(p)
	m.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m Message) MarshalJSON() ([]byte, error) {
	if m.raw != nil {
		return m.raw, nil
	}
	type plain Message
	return json.Marshal(plain(m))
}

// Conversation is a provider conversation. LastMessage is filled in by
// ListConversations and is absent when the lookup failed. Like Message,
// a decoded Conversation keeps every upstream field when encoded.
type Conversation struct {
	ID             string   `json:"id"`
	PhoneNumberID  string   `json:"phoneNumberId"`
	Participants   []string `json:"participants"`
	Name           string   `json:"name,omitempty"`
	AssignedTo     string   `json:"assignedTo,omitempty"`
	CreatedAt      string   `json:"createdAt,omitempty"`
	UpdatedAt      string   `json:"updatedAt,omitempty"`
	LastActivityAt string   `json:"lastActivityAt,omitempty"`
	LastActivityID string   `json:"lastActivityId,omitempty"`
	MutedUntil     *string  `json:"mutedUntil,omitempty"`
	SnoozedUntil   *string  `json:"snoozedUntil,omitempty"`
	LastMessage    *Message `json:"lastMessage,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Conversation) UnmarshalJSON(data []byte) error {
	type plain Conversation
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Conversation(p)
	c.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Conversation) MarshalJSON() ([]byte, error) {
	if c.raw == nil {
		type plain Conversation
		return json.Marshal(plain(c))
	}
	obj, err := decodeObject(c.raw)
	if err != nil {
		return nil, err
	}
	if c.LastMessage == nil {
		delete(obj, "lastMessage")
	} else if err := obj.set("lastMessage", c.LastMessage); err != nil {
		return nil, err
	}
	return obj.encode()
}

// OneToOne reports whether the conversation has exactly one participant.
func (c Conversation) OneToOne() bool {
	return len(c.Participants) == 1
}

// ConversationPage is one page of conversations. Discarded counts the
// group conversations removed from the upstream page.
type ConversationPage struct {
	Data          []Conversation `json:"data"`
	TotalItems    int            `json:"totalItems"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
	Discarded     int            `json:"discarded"`

	raw json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *ConversationPage) UnmarshalJSON(data []byte) error {
	type plain ConversationPage
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = ConversationPage(v)
	p.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON implements json.Marshaler. Upstream page fields are kept;
// data, paging and discarded come from the typed fields.
func (p ConversationPage) MarshalJSON() ([]byte, error) {
	if p.raw == nil {
		type plain ConversationPage
		return json.Marshal(plain(p))
	}
	return overlayPage(p.raw, p.Data, p.TotalItems, p.NextPageToken, map[string]any{"discarded": p.Discarded})
}

// MessagePage is one page of messages.
type MessagePage struct {
	Data          []Message `json:"data"`
	TotalItems    int       `json:"totalItems"`
	NextPageToken string    `json:"nextPageToken,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *MessagePage) UnmarshalJSON(data []byte) error {
	type plain MessagePage
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = MessagePage(v)
	p.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p MessagePage) MarshalJSON() ([]byte, error) {
	if p.raw == nil {
		type plain MessagePage
		return json.Marshal(plain(p))
	}
	return overlayPage(p.raw, p.Data, p.TotalItems, p.NextPageToken, nil)
}

// ConversationsQuery selects a page of conversations.
type ConversationsQuery struct {
	PageToken  string
	MaxResults int
}

// MessagesQuery selects a page of messages in one conversation.
type MessagesQuery struct {
	PhoneNumberID string
	Participants  []string
	PageToken     string
	MaxResults    int
}

// SendRequest is the outbound message payload.
type SendRequest struct {
	Content string   `json:"content"`
	From    string   `json:"from"`
	To      []string `json:"to"`
	UserID  string   `json:"userId,omitempty"`
}

// WebhookEvent is the envelope the provider posts to webhook endpoints.
// Only Type is interpreted; the full body is forwarded as-is.
type WebhookEvent struct {
	ID        string `json:"id,omitempty"`
	Type      string `json:"type"`
	CreatedAt string `json:"createdAt,omitempty"`
}
