package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roasbeef/resumo/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long:  `Display the version, commit hash, and Go version of resumo.`,
	Run:   runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Fprintln(cmd.OutOrStdout(), build.Info())
}
