package report

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/smsrelay/cmd/application"
	"github.com/agentstation/smsrelay/internal/cmd/output"
	"github.com/agentstation/smsrelay/internal/openphone"
)

// maxPages bounds --all so a misbehaving cursor cannot loop forever.
const maxPages = 100

func newConversationsCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"convs"},
		Short:   "List one-to-one conversations with their last message",
		Example: `  smsrelay report conversations
  smsrelay report conversations --all -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pageToken, _ := cmd.Flags().GetString("page-token")
			maxResults, _ := cmd.Flags().GetInt("max-results")
			all, _ := cmd.Flags().GetBool("all")

			phone, err := app.OpenPhone()
			if err != nil {
				return err
			}

			q := openphone.ConversationsQuery{PageToken: pageToken, MaxResults: maxResults}
			page, err := phone.ListConversations(cmd.Context(), q)
			if err != nil {
				return err
			}
			if all {
				page, err = collectConversations(cmd, phone, q, page)
				if err != nil {
					return err
				}
			}

			format := output.DetectFormat(app.OutputFormat())
			return output.Conversations(cmd.OutOrStdout(), page, format)
		},
	}

	cmd.Flags().String("page-token", "", "Resume from a nextPageToken")
	cmd.Flags().Int("max-results", 0, "Page size (provider default when 0)")
	cmd.Flags().Bool("all", false, "Follow nextPageToken until the last page")

	return cmd
}

// collectConversations follows the cursor from first and merges every
// page into one.
func collectConversations(cmd *cobra.Command, phone *openphone.Client, q openphone.ConversationsQuery, first *openphone.ConversationPage) (*openphone.ConversationPage, error) {
	merged := *first
	for i := 1; merged.NextPageToken != "" && i < maxPages; i++ {
		q.PageToken = merged.NextPageToken
		next, err := phone.ListConversations(cmd.Context(), q)
		if err != nil {
			return nil, err
		}
		merged.Data = append(merged.Data, next.Data...)
		merged.Discarded += next.Discarded
		merged.TotalItems = next.TotalItems
		merged.NextPageToken = next.NextPageToken
	}
	return &merged, nil
}
