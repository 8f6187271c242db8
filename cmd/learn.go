package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nexuscore/nexus/internal/app"
)

var learnCmd = &cobra.Command{
	Use:   "learn <file>...",
	Short: "Ingest documents into memory",
	Long: `Learn reads one or more .txt or .pdf files, splits them into overlapping
chunks and stores every chunk in memory. A file that fails leaves the
store untouched and does not stop the remaining files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setupApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var failed int
		for _, path := range args {
			if err := learnFile(ctx, a, path); err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %v\n", path, err)
				continue
			}
			fmt.Printf("learned %s\n", path)
		}

		fmt.Printf("Done. Memory now holds %d records.\n", a.Memory.Count())
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(args))
		}
		return nil
	},
}

func learnFile(ctx context.Context, a *app.App, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return a.Ingestor.ProcessFile(ctx, f, filepath.Base(path))
}

func init() {
	rootCmd.AddCommand(learnCmd)
}
