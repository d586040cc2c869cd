package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roasbeef/resumo/internal/engine"
	"github.com/roasbeef/resumo/internal/gate"
)

var (
	// summarizeMethod is extractive, abstractive or auto.
	summarizeMethod string

	// summarizeMax and summarizeMin bound the summary; zero means the
	// configured default.
	summarizeMax int
	summarizeMin int

	// summarizeMarkdown treats the input as markdown.
	summarizeMarkdown bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file|-]",
	Short: "Summarize a file or stdin",
	Long: `Summarize a text file, or stdin when the argument is "-" or missing.
Files ending in .md are read as markdown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVarP(
		&summarizeMethod, "method", "m", "auto",
		"Method: extractive, abstractive, auto",
	)
	summarizeCmd.Flags().IntVar(
		&summarizeMax, "max", 0, "Maximum summary length",
	)
	summarizeCmd.Flags().IntVar(
		&summarizeMin, "min", 0, "Minimum summary length",
	)
	summarizeCmd.Flags().BoolVar(
		&summarizeMarkdown, "markdown", false,
		"Treat the input as markdown",
	)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}

	text, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	format := gate.FormatText
	if summarizeMarkdown || isMarkdownFile(path) {
		format = gate.FormatMarkdown
	}

	req, err := a.gate.Check(gate.Request{
		Text:      text,
		Method:    summarizeMethod,
		Format:    format,
		MaxLength: summarizeMax,
		MinLength: summarizeMin,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(
		cmd.Context(), cfg.Server.RequestTimeout,
	)
	defer cancel()

	res, err := a.engine.Summarize(ctx, req)
	if err != nil {
		return err
	}

	return printSummary(cmd.OutOrStdout(), res)
}

// printSummary writes res in the selected output format.
func printSummary(w io.Writer, res engine.SummaryResult) error {
	if outputFormat == "json" {
		return outputJSON(w, res.Response())
	}

	fmt.Fprintln(w, res.Summary)
	res.Degraded.WhenSome(func(reason string) {
		fmt.Fprintf(w, "\n(%s summary, degraded: %s)\n", res.Method,
			reason)
	})

	return nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("unable to read input: %w", err)
	}

	return string(data), nil
}

func isMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}
