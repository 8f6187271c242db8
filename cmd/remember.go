package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var rememberCmd = &cobra.Command{
	Use:   "remember <note>",
	Short: "Save a note into memory",
	Long: `Remember stores a piece of text in the memory store as a single record.
Future questions can draw on it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setupApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		note := strings.Join(args, " ")
		if err := a.Ingestor.AddDocument(ctx, note, nil); err != nil {
			return err
		}

		fmt.Printf("Remembered. Memory now holds %d records.\n", a.Memory.Count())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rememberCmd)
}
