// Package main is the CLI entry point for emptydir.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"emptydir/internal/config"
	"emptydir/internal/database"
	"emptydir/internal/exitcodes"
	"emptydir/internal/logging"
	"emptydir/internal/metrics"
	"emptydir/internal/oracle"
	"emptydir/internal/prune"
	"emptydir/internal/report"
	"emptydir/internal/safety"
)

type options struct {
	configPath string
	noHistory  bool
	noColor    bool
	verbose    bool
}

// exitError carries the process exit code for a failed run
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func main() {
	root := newRootCmd()
	if err := fang.Execute(context.Background(), root); err != nil {
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "emptydir [root]",
		Short: "Delete directories that hold nothing but junk",
		Long: `emptydir removes every directory under root that is empty or contains only
well-known junk (__pycache__, .DS_Store, .venv, ...), children first, then climbs
through parents that became empty. Anything inside a .git directory is never touched.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: ~/.config/emptydir/config.yaml)")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not record this run in the history database")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable coloured output")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "write diagnostic log lines to stderr")

	return cmd
}

func run(opts *options, args []string, stdout, stderr io.Writer) error {
	root, err := resolveRoot(args)
	if err != nil {
		return &exitError{code: exitcodes.InvalidArgs, err: err}
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return &exitError{code: exitcodes.InvalidConfig, err: fmt.Errorf("loading config: %w", err)}
	}

	logger := logging.New(cfg, opts.verbose)
	metrics.Init()

	var db *database.HistoryDB
	if !opts.noHistory && cfg.HistoryEnabled() {
		db, err = database.NewHistoryDB(cfg.DatabasePath)
		if err != nil {
			logger.Printf("[ERROR] Failed to open history database: %v", err)
			return &exitError{code: exitcodes.RuntimeError, err: fmt.Errorf("opening history: %w", err)}
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("[ERROR] Failed to close database: %v", err)
			}
		}()
	}

	evaluator := oracle.New(safety.NewGuard(cfg.ProtectedPaths))
	printer := report.New(stdout, stderr, opts.noColor)

	pruner := prune.NewPruner(logger, evaluator, db)
	pruner.SetObserver(printer)
	res := pruner.Prune(root)

	printer.Summary(res.Deleted)
	if res.Deleted == 0 && res.Errors == 0 {
		printer.Kept(evaluator.Evaluate(root))
	}

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Printf("[WARN] %v", err)
		}
	}

	return nil
}

// resolveRoot returns the absolute directory to prune, defaulting to the
// working directory
func resolveRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		return "", errors.New("root must not be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root %q: %w", root, err)
	}
	return abs, nil
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// cobra argument and flag errors
	return exitcodes.InvalidArgs
}
