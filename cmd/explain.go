package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnoswap-labs/dissect/dissect"
	"github.com/gnoswap-labs/dissect/formatter"
)

var explainSeparator string

var explainCmd = &cobra.Command{
	Use:   "explain <pattern>",
	Short: "Show how a pattern is split into keys and delimiters",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runExplain(cmd.OutOrStdout(), args[0], explainSeparator); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	explainCmd.Flags().StringVar(&explainSeparator, "separator", "", "Append separator")
}

func runExplain(w io.Writer, pattern, separator string) error {
	p, err := dissect.Compile(pattern, separator)
	if err != nil {
		return err
	}
	fmt.Fprint(w, formatter.FormatPattern(p))
	return nil
}
