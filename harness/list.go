package harness

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/kestrel/suite"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered suites and their tests",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		suites, err := suite.Match(cfg.Runner.Filters)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, s := range suites {
			fmt.Fprintf(w, "%s (%d tests)\n", s.Name(), s.Len())
			for _, name := range s.TestNames() {
				fmt.Fprintf(w, "  %s\n", name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
