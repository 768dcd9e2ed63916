// Package history implements the `netdiag history` subcommand: listing
// stored runs, dumping one run's full report, and per-target trend stats.
package history

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/config"
	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/history"
	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/logging"
	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

var (
	exitSuccess = 0
	exitFailure = 1
	exitUsage   = 2
)

func Run(args []string, version string) int {
	flagSet := flag.NewFlagSet("netdiag history", flag.ContinueOnError)
	flagSet.SetOutput(os.Stdout)

	var (
		configPath string
		limit      int
		runID      string
		target     string
		jsonOut    bool
	)
	flagSet.StringVar(&configPath, "config", "", "Config file path")
	flagSet.IntVar(&limit, "limit", 20, "Number of runs to list")
	flagSet.StringVar(&runID, "id", "", "Print the full report of one run")
	flagSet.StringVar(&target, "target", "", "Print trend stats for one target")
	flagSet.BoolVar(&jsonOut, "json", false, "Output as JSON")
	help := flagSet.Bool("help", false, "Show help")
	flagSet.BoolVar(help, "h", false, "Show help (short)")

	if err := flagSet.Parse(args); err != nil {
		return exitUsage
	}
	if *help {
		printUsage()
		return exitSuccess
	}
	if runID != "" && target != "" {
		fmt.Fprintln(os.Stderr, "netdiag history: -id and -target are mutually exclusive")
		return exitUsage
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "netdiag history: %v\n", err)
		return exitUsage
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel))

	store, err := history.Open(cfg.HistoryPath, cfg.MaxStoredRuns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "netdiag history: %v\n", err)
		return exitFailure
	}
	defer store.Close()

	switch {
	case runID != "":
		return showRun(store, runID)
	case target != "":
		return showTargetStats(store, target, jsonOut)
	default:
		return listRuns(store, limit, jsonOut)
	}
}

func showRun(store *history.Store, runID string) int {
	report, err := store.Get(runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "netdiag history: %v\n", err)
		return exitFailure
	}
	if report == nil {
		fmt.Fprintf(os.Stderr, "netdiag history: run %q not found\n", runID)
		return exitFailure
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "netdiag history: json encode error: %v\n", err)
		return exitFailure
	}
	return exitSuccess
}

func showTargetStats(store *history.Store, target string, jsonOut bool) int {
	if _, err := types.ValidateTarget(target); err != nil {
		fmt.Fprintf(os.Stderr, "netdiag history: %v\n", err)
		return exitUsage
	}
	stats, err := store.StatsForTarget(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "netdiag history: %v\n", err)
		return exitFailure
	}
	if jsonOut {
		if err := json.NewEncoder(os.Stdout).Encode(stats); err != nil {
			fmt.Fprintf(os.Stderr, "netdiag history: json encode error: %v\n", err)
			return exitFailure
		}
		return exitSuccess
	}
	if stats.Samples == 0 {
		fmt.Printf("%s: no stored results\n", target)
		return exitSuccess
	}
	fmt.Printf("%s over %d runs:\n", target, stats.Samples)
	fmt.Printf("  Smoothed latency: %.1f ms\n", stats.SmoothedLatency)
	fmt.Printf("  Average loss:     %.1f%%\n", stats.AvgLossPercent)
	fmt.Printf("  Success rate:     %.1f%%\n", stats.SuccessRate)
	return exitSuccess
}

func listRuns(store *history.Store, limit int, jsonOut bool) int {
	runs, err := store.RecentRuns(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "netdiag history: %v\n", err)
		return exitFailure
	}
	if jsonOut {
		if runs == nil {
			runs = []history.RunSummary{}
		}
		if err := json.NewEncoder(os.Stdout).Encode(runs); err != nil {
			fmt.Fprintf(os.Stderr, "netdiag history: json encode error: %v\n", err)
			return exitFailure
		}
		return exitSuccess
	}
	if len(runs) == 0 {
		fmt.Println("No stored runs.")
		return exitSuccess
	}
	fmt.Printf("%-36s  %-19s  %7s  %9s  %s\n", "RUN", "STARTED", "TARGETS", "SUCCESS", "STATUS")
	for _, r := range runs {
		fmt.Printf("%-36s  %-19s  %7d  %8.1f%%  %s\n",
			r.RunID, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.TargetCount, r.SuccessRate, r.OverallStatus)
	}
	return exitSuccess
}

func printUsage() {
	fmt.Fprintf(os.Stdout, `Usage: netdiag history [flags]

Lists stored diagnostic runs, or inspects one run or one target.

Flags:
  -limit N       Number of runs to list (default 20)
  -id RUN        Print the full report of one run as JSON
  -target HOST   Print trend stats (smoothed latency, average loss)
  -json          Output as JSON
  -config PATH   Config file path

Examples:
  netdiag history
  netdiag history -id 6f8a1c2e-...
  netdiag history -target 8.8.8.8
`)
}
