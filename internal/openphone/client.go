// Package openphone is a client for the OpenPhone REST API covering the
// conversation, message listing and send endpoints the relay proxies.
package openphone

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"

	"github.com/agentstation/smsrelay/internal/transport"
	"github.com/agentstation/smsrelay/pkg/errors"
)

// ProviderName identifies OpenPhone in errors, metrics and event names.
const ProviderName = "openphone"

// maxEnrichment bounds concurrent last-message lookups per page.
const maxEnrichment = 8

// Client talks to the OpenPhone API.
type Client struct {
	http    *transport.Client
	baseURL string
	logger  *zerolog.Logger
}

// New creates a client. The API key is sent raw in the Authorization header.
func New(baseURL, apiKey string, logger *zerolog.Logger, opts ...transport.Option) *Client {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", ProviderName).Logger()
	return &Client{
		http:    transport.New(ProviderName, apiKey, &transport.HeaderAuth{}, opts...),
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  &l,
	}
}

// ListConversations fetches a page of conversations, keeps only one-to-one
// conversations and attaches each one's most recent message. A failed
// lookup is logged and leaves LastMessage nil for that conversation only.
func (c *Client) ListConversations(ctx context.Context, q ConversationsQuery) (*ConversationPage, error) {
	params := url.Values{}
	setPaging(params, q.PageToken, q.MaxResults)

	var upstream ConversationPage
	if err := c.http.GetJSON(ctx, c.baseURL+"/v1/conversations", params, &upstream); err != nil {
		return nil, err
	}

	kept := make([]Conversation, 0, len(upstream.Data))
	for _, conv := range upstream.Data {
		if conv.OneToOne() {
			kept = append(kept, conv)
		}
	}

	enrich := iter.Iterator[Conversation]{MaxGoroutines: maxEnrichment}
	enrich.ForEach(kept, func(conv *Conversation) {
		conv.LastMessage = c.lastMessage(ctx, conv)
	})

	return &ConversationPage{
		Data:          kept,
		TotalItems:    upstream.TotalItems,
		NextPageToken: upstream.NextPageToken,
		Discarded:     len(upstream.Data) - len(kept),
		raw:           upstream.raw,
	}, nil
}

func (c *Client) lastMessage(ctx context.Context, conv *Conversation) *Message {
	page, err := c.ListMessages(ctx, MessagesQuery{
		PhoneNumberID: conv.PhoneNumberID,
		Participants:  conv.Participants,
		MaxResults:    1,
	})
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("conversation_id", conv.ID).
			Msg("Failed to fetch last message")
		return nil
	}
	if len(page.Data) == 0 {
		return nil
	}
	msg := page.Data[0]
	return &msg
}

// ListMessages fetches a page of messages between a phone number and participants.
func (c *Client) ListMessages(ctx context.Context, q MessagesQuery) (*MessagePage, error) {
	if q.PhoneNumberID == "" {
		return nil, errors.NewValidationError("phoneNumberId", nil, "is required")
	}
	participants := compact(q.Participants)
	if len(participants) == 0 {
		return nil, errors.NewValidationError("participants", q.Participants, "at least one participant is required")
	}

	params := url.Values{}
	params.Set("phoneNumberId", q.PhoneNumberID)
	for _, p := range participants {
		params.Add("participants[]", p)
	}
	setPaging(params, q.PageToken, q.MaxResults)

	var page MessagePage
	if err := c.http.GetJSON(ctx, c.baseURL+"/v1/messages", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SendMessage posts a message and returns the provider's response verbatim,
// whatever its status. Only a transport failure yields an error.
func (c *Client) SendMessage(ctx context.Context, req SendRequest) (*transport.Raw, error) {
	switch {
	case req.Content == "":
		return nil, errors.NewValidationError("content", nil, "is required")
	case len(compact(req.To)) == 0:
		return nil, errors.NewValidationError("to", req.To, "is required")
	case req.From == "":
		return nil, errors.NewValidationError("from", nil, "is required")
	}
	req.To = compact(req.To)

	raw, err := c.http.Send(ctx, http.MethodPost, c.baseURL+"/v1/messages", req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Int("status", raw.StatusCode).
		Strs("to", req.To).
		Msg("Message sent upstream")
	return raw, nil
}

// setPaging forwards the cursor and page size. A zero size is left out
// so the provider applies its own default.
func setPaging(params url.Values, pageToken string, maxResults int) {
	if maxResults > 0 {
		params.Set("maxResults", strconv.Itoa(maxResults))
	}
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
