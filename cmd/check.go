package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnoswap-labs/dissect/ingest"
	"github.com/gnoswap-labs/dissect/internal"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compile every rule of the rule file",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCheck(cmd.OutOrStdout(), cfgFile); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			os.Exit(1)
		}
	},
}

// runCheck loads the rule file and reports every rule that fails to compile.
func runCheck(w io.Writer, configurationPath string) error {
	config, err := ingest.LoadConfig(configurationPath)
	if err != nil {
		return err
	}

	engine, err := internal.NewEngine(logger, config.AppendSeparator, config.Rules)
	if err != nil {
		return fmt.Errorf("%s: %w", configurationPath, err)
	}

	for _, rule := range engine.Rules() {
		fmt.Fprintf(w, "ok  %s  %s\n", rule.Name(), rule.Pattern())
	}
	fmt.Fprintf(w, "%d rules compiled from %s\n", len(engine.Rules()), configurationPath)
	return nil
}
