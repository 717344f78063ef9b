package report

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/smsrelay/internal/cmd/application"
	"github.com/agentstation/smsrelay/internal/openphone"
)

// newProvider serves two conversation pages and one message per lookup.
func newProvider(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/conversations":
			if r.URL.Query().Get("pageToken") == "p2" {
				_, _ = w.Write([]byte(`{"data":[{"id":"c3","phoneNumberId":"PN1","participants":["+3"]}],"totalItems":3}`))
				return
			}
			_, _ = w.Write([]byte(`{"data":[
				{"id":"c1","phoneNumberId":"PN1","participants":["+1"]},
				{"id":"c2","phoneNumberId":"PN1","participants":["+1","+2"]}
			],"totalItems":3,"nextPageToken":"p2"}`))
		case "/v1/messages":
			_, _ = w.Write([]byte(`{"data":[{"id":"m1","from":"+1","to":["+9"],"text":"hola"}],"totalItems":1}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newMock(srv *httptest.Server) *application.Mock {
	return &application.Mock{
		OpenPhoneFunc: func() (*openphone.Client, error) {
			return openphone.New(srv.URL, "key", nil), nil
		},
		OutputFormatFunc: func() string { return "json" },
	}
}

func run(t *testing.T, mock *application.Mock, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConversations_SinglePage(t *testing.T) {
	out, err := run(t, newMock(newProvider(t)), "conversations")
	require.NoError(t, err)

	var page openphone.ConversationPage
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "c1", page.Data[0].ID)
	assert.Equal(t, 1, page.Discarded)
	assert.Equal(t, "p2", page.NextPageToken)
	require.NotNil(t, page.Data[0].LastMessage)
	assert.Equal(t, "hola", page.Data[0].LastMessage.Text)
}

func TestConversations_All(t *testing.T) {
	out, err := run(t, newMock(newProvider(t)), "conversations", "--all")
	require.NoError(t, err)

	var page openphone.ConversationPage
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Data, 2)
	assert.Equal(t, "c3", page.Data[1].ID)
	assert.Equal(t, 1, page.Discarded)
	assert.Empty(t, page.NextPageToken)
}

func TestConversations_TableSummary(t *testing.T) {
	mock := newMock(newProvider(t))
	mock.OutputFormatFunc = func() string { return "table" }

	out, err := run(t, mock, "conversations")
	require.NoError(t, err)
	assert.Contains(t, out, "1 one-to-one, 1 group conversations skipped, next page: p2")
}

func TestMessages(t *testing.T) {
	out, err := run(t, newMock(newProvider(t)), "messages", "--phone-number-id", "PN1", "--participant", "+1")
	require.NoError(t, err)

	var page openphone.MessagePage
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "m1", page.Data[0].ID)
}

func TestMessages_RequiresFlags(t *testing.T) {
	_, err := run(t, newMock(newProvider(t)), "messages", "--participant", "+1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--phone-number-id")
}

func TestConversations_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := run(t, newMock(srv), "conversations")
	require.Error(t, err)
}
