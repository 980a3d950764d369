package domainprompts

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundprediction/go-domainprompts/pkg/prompts"
)

var (
	// Set with -ldflags at build time.
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version, commit, build date and built-in template sets",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "domainprompts\n")
		fmt.Fprintf(out, "Version:    %s\n", version)
		fmt.Fprintf(out, "Commit:     %s\n", commit)
		fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		fmt.Fprintf(out, "Node sets:  %v\n", prompts.BuiltinNames(prompts.FamilyExtractNodes))
		fmt.Fprintf(out, "Edge sets:  %v\n", prompts.BuiltinNames(prompts.FamilyExtractEdges))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
