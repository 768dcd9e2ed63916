// Package check implements the `netdiag check` subcommand: a quick
// ping-only reachability test for one or more targets, a few seconds
// instead of a full diagnostic run.
package check

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/config"
	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/logging"
	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/runner"
	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

var (
	exitSuccess = 0
	exitFailure = 1
	exitUsage   = 2
)

const (
	minCount = 1
	maxCount = 20
)

// CheckResult is the structured output of netdiag check.
type CheckResult struct {
	SchemaVersion string             `json:"schema_version"`
	Status        types.TestStatus   `json:"status"`
	Targets       []types.PingResult `json:"targets"`
	DurationMs    int64              `json:"duration_ms"`
}

func Run(args []string, version string) int {
	flagSet := flag.NewFlagSet("netdiag check", flag.ContinueOnError)
	flagSet.SetOutput(os.Stdout)

	var (
		jsonOut bool
		count   int
		timeout int
	)
	flagSet.BoolVar(&jsonOut, "json", false, "Output as JSON")
	flagSet.IntVar(&count, "count", 3, "Ping packets per target")
	flagSet.IntVar(&timeout, "timeout", 10, "Per-target timeout in seconds")
	help := flagSet.Bool("help", false, "Show help")
	flagSet.BoolVar(help, "h", false, "Show help (short)")

	if err := flagSet.Parse(args); err != nil {
		return exitUsage
	}
	if *help {
		printUsage()
		return exitSuccess
	}

	if count < minCount || count > maxCount {
		fmt.Fprintf(os.Stderr, "netdiag check: count must be between %d and %d\n", minCount, maxCount)
		return exitUsage
	}

	targets := flagSet.Args()
	if len(targets) == 0 {
		targets = []string{"8.8.8.8"}
	}
	valid, errs := types.ValidateTargets(targets)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "netdiag check: %v\n", err)
	}
	if len(errs) > 0 {
		return exitUsage
	}
	targets = valid

	logging.Init(logging.LevelWarn)

	cfg := config.DefaultConfig()
	cfg.PingCount = count
	cfg.PingTimeoutSec = timeout

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(timeout*len(targets)+5)*time.Second)
	defer cancel()

	r := runner.New(cfg)
	result := &CheckResult{
		SchemaVersion: "1.0",
		Status:        types.StatusSuccess,
	}

	start := time.Now()
	for _, target := range targets {
		ping := r.Ping(ctx, target)
		result.Targets = append(result.Targets, ping)
		result.Status = worse(result.Status, ping.Status)
	}
	result.DurationMs = time.Since(start).Milliseconds()

	if jsonOut {
		if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "netdiag check: json encode error: %v\n", err)
			return exitFailure
		}
	} else {
		printHuman(result)
	}

	if result.Status == types.StatusFailed {
		return exitFailure
	}
	return exitSuccess
}

// worse keeps the most severe status seen across targets.
func worse(a, b types.TestStatus) types.TestStatus {
	rank := map[types.TestStatus]int{
		types.StatusSuccess: 0,
		types.StatusWarning: 1,
		types.StatusFailed:  2,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

func printHuman(r *CheckResult) {
	for _, ping := range r.Targets {
		switch ping.Status {
		case types.StatusFailed:
			reason := ping.ErrorMessage
			if reason == "" {
				reason = fmt.Sprintf("%.0f%% loss", ping.PacketLossPercent)
			}
			fmt.Printf("%-24s FAIL  %s\n", ping.Target, reason)
		case types.StatusWarning:
			fmt.Printf("%-24s WARN  %.1f ms avg, %.0f%% loss\n",
				ping.Target, ping.AvgTime, ping.PacketLossPercent)
		default:
			fmt.Printf("%-24s OK    %.1f ms avg\n", ping.Target, ping.AvgTime)
		}
	}
	fmt.Printf("Completed in %.1fs\n", float64(r.DurationMs)/1000)
}

func printUsage() {
	fmt.Fprintf(os.Stdout, `Usage: netdiag check [flags] [target ...]

Quick ping-only reachability check (default target: 8.8.8.8).

Flags:
  -json           Output as JSON
  -count N        Ping packets per target (default 3)
  -timeout SEC    Per-target timeout in seconds (default 10)

Examples:
  netdiag check
  netdiag check --json 1.1.1.1 google.com
`)
}
