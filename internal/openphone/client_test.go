package openphone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/smsrelay/pkg/errors"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	logger := zerolog.Nop()
	return New(server.URL, "op-key", &logger)
}

func TestListConversationsFiltersAndEnriches(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/conversations", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "op-key", r.Header.Get("Authorization"))
		assert.Equal(t, "tok-1", r.URL.Query().Get("pageToken"))
		assert.Equal(t, "25", r.URL.Query().Get("maxResults"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "CN1", "phoneNumberId": "PN1", "participants": []string{"+15550000001"}},
				{"id": "CN2", "phoneNumberId": "PN1", "participants": []string{"+15550000002", "+15550000003"}},
				{"id": "CN3", "phoneNumberId": "PN1", "participants": []string{"+15550000004"}},
				{"id": "CN4", "phoneNumberId": "PN1", "participants": []string{"+15550000005", "+15550000006", "+15550000007"}},
			},
			"totalItems":    40,
			"nextPageToken": "tok-2",
		})
	})
	mux.HandleFunc("/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "PN1", q.Get("phoneNumberId"))
		assert.Equal(t, "1", q.Get("maxResults"))
		switch q.Get("participants[]") {
		case "+15550000001":
			_, _ = w.Write([]byte(`{"data":[{"id":"MS1","text":"latest","from":"+15550000001","to":["PN1"]}]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"boom"}`))
		}
	})

	client := newTestClient(t, mux)
	page, err := client.ListConversations(context.Background(), ConversationsQuery{PageToken: "tok-1", MaxResults: 25})
	require.NoError(t, err)

	require.Len(t, page.Data, 2)
	assert.Equal(t, 2, page.Discarded)
	assert.Equal(t, 4-len(page.Data), page.Discarded)
	assert.Equal(t, "tok-2", page.NextPageToken)
	assert.Equal(t, 40, page.TotalItems)

	byID := map[string]Conversation{}
	for _, c := range page.Data {
		assert.True(t, c.OneToOne())
		byID[c.ID] = c
	}
	require.NotNil(t, byID["CN1"].LastMessage)
	assert.Equal(t, "latest", byID["CN1"].LastMessage.Text)
	assert.Nil(t, byID["CN3"].LastMessage, "failed lookup leaves lastMessage absent")

	out, err := json.Marshal(byID["CN3"])
	require.NoError(t, err)
	assert.NotContains(t, string(out), "lastMessage")
}

func TestListConversationsUpstreamError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
	}))

	_, err := client.ListConversations(context.Background(), ConversationsQuery{})
	require.Error(t, err)

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, ProviderName, apiErr.Provider)
}

func TestListMessages(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			calls.Add(1)
		}))

		_, err := client.ListMessages(context.Background(), MessagesQuery{Participants: []string{"+1"}})
		assert.True(t, errors.IsValidationError(err))

		_, err = client.ListMessages(context.Background(), MessagesQuery{PhoneNumberID: "PN1", Participants: []string{" "}})
		assert.True(t, errors.IsValidationError(err))

		assert.Zero(t, calls.Load())
	})

	t.Run("forwards query", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, []string{"+15551", "+15552"}, q["participants[]"])
			assert.Equal(t, "next", q.Get("pageToken"))
			_, sized := q["maxResults"]
			assert.False(t, sized, "no page size leaves the provider default")
			_, _ = w.Write([]byte(`{"data":[{"id":"MS1"},{"id":"MS2"}],"totalItems":2}`))
		}))

		page, err := client.ListMessages(context.Background(), MessagesQuery{
			PhoneNumberID: "PN1",
			Participants:  []string{"+15551", "+15552"},
			PageToken:     "next",
		})
		require.NoError(t, err)
		assert.Len(t, page.Data, 2)
		assert.Equal(t, 2, page.TotalItems)
	})
}

func TestSendMessage(t *testing.T) {
	t.Run("payload and passthrough", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/messages", r.URL.Path)
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "hi", body["content"])
			assert.Equal(t, "PN1", body["from"])
			assert.Equal(t, []any{"+15551234567"}, body["to"])
			assert.Equal(t, "US1", body["userId"])

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"data":{"id":"MS9","status":"queued"}}`))
		}))

		raw, err := client.SendMessage(context.Background(), SendRequest{
			Content: "hi",
			From:    "PN1",
			To:      []string{"+15551234567"},
			UserID:  "US1",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, raw.StatusCode)
		assert.JSONEq(t, `{"data":{"id":"MS9","status":"queued"}}`, string(raw.Body))
	})

	t.Run("upstream error is not an error", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"invalid to"}`))
		}))

		raw, err := client.SendMessage(context.Background(), SendRequest{Content: "hi", From: "PN1", To: []string{"x"}})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
	})

	t.Run("validation", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("no upstream call expected")
		}))
		for _, req := range []SendRequest{
			{From: "PN1", To: []string{"+1"}},
			{Content: "hi", From: "PN1"},
			{Content: "hi", To: []string{"+1"}},
		} {
			_, err := client.SendMessage(context.Background(), req)
			assert.True(t, errors.IsValidationError(err))
		}
	})
}

func TestListMessagesKeepsUpstreamFields(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"MS1","text":"pic","object":"message","media":[{"url":"https://cdn.example/a.jpg","type":"image/jpeg"}]}],"totalItems":1,"nextPageToken":null}`))
	}))

	page, err := client.ListMessages(context.Background(), MessagesQuery{PhoneNumberID: "PN1", Participants: []string{"+1"}})
	require.NoError(t, err)
	assert.Equal(t, "pic", page.Data[0].Text)

	out, err := json.Marshal(page)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[{"id":"MS1","text":"pic","object":"message","media":[{"url":"https://cdn.example/a.jpg","type":"image/jpeg"}]}],"totalItems":1,"nextPageToken":null}`, string(out))
}

func TestListConversationsKeepsUpstreamFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/conversations", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[
			{"id":"CN1","phoneNumberId":"PN1","participants":["+1"],"object":"conversation","mutedUntil":null},
			{"id":"CN2","phoneNumberId":"PN1","participants":["+1","+2"]}
		],"totalItems":2,"nextPageToken":null,"object":"list"}`))
	})
	mux.HandleFunc("/v1/messages", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"MS1","text":"hi","media":[]}],"totalItems":1}`))
	})

	page, err := newTestClient(t, mux).ListConversations(context.Background(), ConversationsQuery{})
	require.NoError(t, err)

	out, err := json.Marshal(page)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"data":[{"id":"CN1","phoneNumberId":"PN1","participants":["+1"],"object":"conversation","mutedUntil":null,
			"lastMessage":{"id":"MS1","text":"hi","media":[]}}],
		"totalItems":2,"nextPageToken":null,"object":"list","discarded":1
	}`, string(out))
}
