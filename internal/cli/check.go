package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/nodewatch/internal/control"
	"github.com/vietddude/nodewatch/internal/core/config"
	"github.com/vietddude/nodewatch/internal/monitoring/cycle"
)

var checkNotify bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one check and print the report",
	Run:   runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkNotify, "notify", false, "also send the report to the configured sinks")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	if code := check(cmd, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

// check runs one cycle and writes the report to out. It returns the process
// exit code so deferred cleanup runs before the caller exits.
func check(cmd *cobra.Command, out io.Writer) int {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return failf("failed to load config: %v", err)
	}

	validate := cfg.ValidateSource
	if checkNotify {
		validate = cfg.Validate
	}
	if err := validate(); err != nil {
		return failf("invalid config: %v", err)
	}

	ccfg := controlConfig(cfg)
	if !checkNotify {
		ccfg.Notify = config.NotifyConfig{}
	}

	app, err := control.NewWatcher(ccfg)
	if err != nil {
		return failf("failed to initialize: %v", err)
	}
	defer app.Close()

	// Same bound the loop puts on one cycle
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Monitor.Interval)
	defer cancel()

	if checkNotify {
		o := app.RunOnce(ctx)
		if o.Err != nil {
			return failf("check failed: %v", o.Err)
		}
		fmt.Fprintln(out, cycle.FormatReport(*o.Result))
		if o.SendErr != nil {
			return failf("report not delivered: %v", o.SendErr)
		}
		return 0
	}

	result, err := app.Evaluate(ctx)
	if err != nil {
		return failf("check failed: %v", err)
	}
	fmt.Fprintln(out, cycle.FormatReport(result))
	return 0
}
