package report

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/agentstation/smsrelay/cmd/application"
	"github.com/agentstation/smsrelay/internal/cmd/output"
	"github.com/agentstation/smsrelay/internal/openphone"
)

func newMessagesCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "List messages in one conversation",
		Example: `  smsrelay report messages --phone-number-id PN123 --participant +15555550100
  smsrelay report messages --phone-number-id PN123 --participant +15555550100 --limit 20 -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			phoneNumberID, _ := cmd.Flags().GetString("phone-number-id")
			participants, _ := cmd.Flags().GetStringSlice("participant")
			limit, _ := cmd.Flags().GetInt("limit")
			pageToken, _ := cmd.Flags().GetString("page-token")

			if phoneNumberID == "" || len(participants) == 0 {
				return errors.New("--phone-number-id and --participant are required")
			}

			phone, err := app.OpenPhone()
			if err != nil {
				return err
			}

			page, err := phone.ListMessages(cmd.Context(), openphone.MessagesQuery{
				PhoneNumberID: phoneNumberID,
				Participants:  participants,
				PageToken:     pageToken,
				MaxResults:    limit,
			})
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			return output.Messages(cmd.OutOrStdout(), page, format)
		},
	}

	cmd.Flags().String("phone-number-id", "", "Phone number ID the conversation belongs to")
	cmd.Flags().StringSlice("participant", nil, "Participant phone number (repeatable)")
	cmd.Flags().Int("limit", 0, "Page size (provider default when 0)")
	cmd.Flags().String("page-token", "", "Resume from a nextPageToken")

	return cmd
}
