package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/smsrelay/internal/openphone"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"olá mundo, tudo bem?", 9, "olá mu..."},
		{"multi\nline\ttext", 20, "multi line text"},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truncate(tt.in, tt.n), tt.in)
	}
}

func TestConversationsToTableData(t *testing.T) {
	convs := []openphone.Conversation{
		{
			ID:            "CN1",
			PhoneNumberID: "PN1",
			Participants:  []string{"+15550002"},
			LastMessage:   &openphone.Message{Text: "see you tomorrow", Direction: "incoming"},
		},
		{ID: "CN2", PhoneNumberID: "PN1", Participants: []string{"+15550003"}},
	}

	data := ConversationsToTableData(convs, false)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, []string{"+15550002", "-", "see you tomorrow", "incoming"}, data.Rows[0])
	assert.Equal(t, []string{"+15550003", "-", "-", "-"}, data.Rows[1])

	wide := ConversationsToTableData(convs, true)
	assert.Len(t, wide.Headers, 7)
	assert.Equal(t, "CN1", wide.Rows[0][4])
}

func TestMessagesToTableData(t *testing.T) {
	msgs := []openphone.Message{{
		ID:        "MS1",
		From:      "+15550001",
		To:        []string{"+15550002"},
		Text:      "this message is long enough that the narrow table has to cut it short",
		Status:    "delivered",
		CreatedAt: "2026-01-02T03:04:05Z",
	}}

	data := MessagesToTableData(msgs, false)
	require.Len(t, data.Rows, 1)
	assert.Len(t, []rune(data.Rows[0][3]), previewLength)
	assert.Len(t, data.ColumnAlignment, len(data.Headers))

	wide := MessagesToTableData(msgs, true)
	assert.Equal(t, msgs[0].Text, wide.Rows[0][3])
	assert.Equal(t, "1", wide.Rows[0][6])
	assert.Len(t, wide.ColumnAlignment, len(wide.Headers))
}
