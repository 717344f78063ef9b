// Package table converts relay records into rows for CLI table output.
package table

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/agentstation/smsrelay/internal/openphone"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
}

// previewLength caps message previews in narrow tables.
const previewLength = 48

// ConversationsToTableData lists conversations with a preview of their
// latest message. Wide output adds ids and timestamps.
func ConversationsToTableData(convs []openphone.Conversation, wide bool) Data {
	headers := []string{"Participant", "Name", "Last Message", "Direction"}
	if wide {
		headers = append(headers, "Conversation ID", "Phone Number ID", "Last Activity")
	}

	rows := make([][]string, 0, len(convs))
	for _, c := range convs {
		text, direction := "-", "-"
		if c.LastMessage != nil {
			text = orDash(c.LastMessage.Text)
			direction = orDash(c.LastMessage.Direction)
		}
		if !wide {
			text = Truncate(text, previewLength)
		}

		row := []string{
			orDash(strings.Join(c.Participants, ", ")),
			orDash(c.Name),
			text,
			direction,
		}
		if wide {
			row = append(row, c.ID, c.PhoneNumberID, orDash(c.LastActivityAt))
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows}
}

// MessagesToTableData lists messages oldest-last, as the provider returns them.
func MessagesToTableData(msgs []openphone.Message, wide bool) Data {
	headers := []string{"Time", "From", "To", "Text"}
	align := []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft}
	if wide {
		headers = append(headers, "Status", "ID", "Recipients")
		align = append(align, AlignCenter, AlignLeft, AlignRight)
	}

	rows := make([][]string, 0, len(msgs))
	for _, m := range msgs {
		text := orDash(m.Text)
		if !wide {
			text = Truncate(text, previewLength)
		}
		row := []string{
			orDash(m.CreatedAt),
			orDash(m.From),
			orDash(strings.Join(m.To, ", ")),
			text,
		}
		if wide {
			row = append(row, orDash(m.Status), m.ID, strconv.Itoa(len(m.To)))
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
