package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/roasbeef/resumo/internal/build"
	"github.com/roasbeef/resumo/internal/mcp"
	"github.com/roasbeef/resumo/internal/web"
)

var (
	// serveAddr overrides server.addr.
	serveAddr string

	// serveMCP also serves MCP over stdio.
	serveMCP bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the summarization HTTP API until interrupted. With --mcp the
MCP tool server also runs on stdin and stdout, sharing the same engine and
cache.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(
		&serveAddr, "addr", "",
		"Listen address (default from server.addr)",
	)
	serveCmd.Flags().BoolVar(
		&serveMCP, "mcp", false,
		"Also serve MCP tools over stdio",
	)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(v *viper.Viper) {
		if serveAddr != "" {
			v.Set("server.addr", serveAddr)
		}
	})
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

	webServer := web.NewServer(
		webConfig(cfg), a.engine, a.gate, a.webHistory(), a.log,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(webServer.Start)
	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("Shutting down")

		shutdownCtx, done := context.WithTimeout(
			context.Background(), cfg.Server.RequestTimeout,
		)
		defer done()

		return webServer.Shutdown(shutdownCtx)
	})

	if serveMCP {
		mcpServer := mcp.NewServer(mcp.Config{
			Engine:  a.engine,
			Gate:    a.gate,
			Version: build.Version(),
			Log:     a.log,
		})
		g.Go(func() error {
			err := mcpServer.RunStdio(ctx)

			// The client leaving stdio ends the whole process.
			cancel()

			return err
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)

		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
