package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/use-agent/vibcheck/inspect"
	"github.com/use-agent/vibcheck/report"
)

// runInspectHTML evaluates a saved page offline. Script globals cannot be
// observed there, so the core check always fails.
func runInspectHTML(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initLogger(os.Stderr, cfg.Log)

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	rec, err := inspect.FromHTML(f)
	if err != nil {
		return err
	}
	verdict := report.Evaluate(rec)
	if err := report.Print(cmd.OutOrStdout(), rec, verdict); err != nil {
		return err
	}

	if strict && !verdict.Overall {
		exitCode = exitVerdict
	}
	return nil
}
