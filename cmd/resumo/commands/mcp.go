package commands

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/roasbeef/resumo/internal/build"
	"github.com/roasbeef/resumo/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve MCP tools over stdio",
	Long: `Run the MCP tool server on stdin and stdout. Logs go to stderr and
the log file so they never mix with the protocol stream.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	server := mcp.NewServer(mcp.Config{
		Engine:  a.engine,
		Gate:    a.gate,
		Version: build.Version(),
		Log:     a.log,
	})

	err = server.RunStdio(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
