// Package translate provides a one-shot translation command.
package translate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/smsrelay/cmd/application"
	"github.com/agentstation/smsrelay/internal/translate"
)

// NewCommand creates the translate command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "translate TEXT...",
		GroupID: "tools",
		Short:   "Translate text with the configured back-end",
		Long: `Translate runs TEXT through the back-end selected by TRANSLATION_PROVIDER,
the same one POST /messages uses.

Without --strict a failing back-end prints the original text, exactly as
the relay would send it. With --strict the failure is returned.`,
		Example: `  smsrelay translate --to es "See you tomorrow"
  smsrelay translate --to de --from en --strict "Hello"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, _ := cmd.Flags().GetString("to")
			from, _ := cmd.Flags().GetString("from")
			prompt, _ := cmd.Flags().GetString("prompt")
			strict, _ := cmd.Flags().GetBool("strict")

			if to == "" {
				return errors.New("--to is required")
			}

			router, err := app.Translator(cmd.Context())
			if err != nil {
				return err
			}

			req := translate.Request{
				Text:       strings.Join(args, " "),
				TargetLang: to,
				SourceLang: from,
				Prompt:     prompt,
			}

			text := ""
			if strict {
				text, err = router.TranslateStrict(cmd.Context(), req)
				if err != nil {
					return err
				}
			} else {
				text = router.Translate(cmd.Context(), req)
			}

			app.Logger().Debug().Str("provider", router.Provider()).Msg("Translated")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}

	cmd.Flags().String("to", "", "Target language code, e.g. es")
	cmd.Flags().String("from", "", "Source language code (auto-detected when empty)")
	cmd.Flags().String("prompt", "", "Extra instruction for LLM back-ends")
	cmd.Flags().Bool("strict", false, "Fail instead of printing the original text")

	return cmd
}
