package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question without starting a session",
	Long: `Ask runs one retrieval-augmented query and prints the answer. Nothing is
persisted; use chat for a conversation with history.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setupApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		question := strings.Join(args, " ")
		printAnswer(a.Orchestrator.ProcessQuery(ctx, question, nil))
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVarP(&flagShowThought, "thoughts", "t", false, "show the model's reasoning before the answer")
	rootCmd.AddCommand(askCmd)
}
