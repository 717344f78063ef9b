package output

import (
	"fmt"
	"io"

	"github.com/agentstation/smsrelay/internal/cmd/table"
	"github.com/agentstation/smsrelay/internal/openphone"
)

// Conversations writes a conversation page. Table formats add a summary
// line with the discarded count and the next page token.
func Conversations(w io.Writer, page *openphone.ConversationPage, format Format) error {
	if !format.IsTable() {
		return NewFormatter(format).Format(w, page)
	}
	if err := NewFormatter(format).Format(w, table.ConversationsToTableData(page.Data, format == FormatWide)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d one-to-one, %d group conversations skipped", len(page.Data), page.Discarded)
	if err == nil && page.NextPageToken != "" {
		_, err = fmt.Fprintf(w, ", next page: %s", page.NextPageToken)
	}
	if err == nil {
		_, err = fmt.Fprintln(w)
	}
	return err
}

// Messages writes a message page.
func Messages(w io.Writer, page *openphone.MessagePage, format Format) error {
	if !format.IsTable() {
		return NewFormatter(format).Format(w, page)
	}
	if err := NewFormatter(format).Format(w, table.MessagesToTableData(page.Data, format == FormatWide)); err != nil {
		return err
	}
	if page.NextPageToken != "" {
		_, err := fmt.Fprintf(w, "next page: %s\n", page.NextPageToken)
		return err
	}
	return nil
}
