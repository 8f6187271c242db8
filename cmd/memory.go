package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect and manage the memory store",
}

var memoryCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of records in memory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Printf("%d records in %s\n", a.Memory.Count(), a.Config.Collection)
		return nil
	},
}

var flagResetYes bool

var memoryResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all memory records",
	Long:  `Reset drops every record from the memory store. Sessions are kept.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if !flagResetYes && !confirm(fmt.Sprintf("Erase all %d records? [y/N] ", a.Memory.Count())) {
			fmt.Println("Aborted.")
			return nil
		}

		if err := a.Memory.Reset(); err != nil {
			return err
		}
		fmt.Println("Memory erased.")
		return nil
	},
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

func init() {
	memoryResetCmd.Flags().BoolVarP(&flagResetYes, "yes", "y", false, "skip the confirmation prompt")
	memoryCmd.AddCommand(memoryCountCmd, memoryResetCmd)
	rootCmd.AddCommand(memoryCmd)
}
