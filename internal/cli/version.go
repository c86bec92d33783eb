// internal/cli/version.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the hopsdist release, set with -ldflags at build time
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "hopsdist version %s\n", Version)
		fmt.Fprintln(out, "Hopsworks client packaging tool")
		fmt.Fprintln(out, "https://github.com/logicalclocks/hopsdist")
	},
}
