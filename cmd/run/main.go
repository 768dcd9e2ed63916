// Package run implements the `netdiag run` subcommand: the full diagnostic
// pipeline over all configured targets, with console output, report files,
// and history persistence.
package run

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/config"
	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/export"
	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/history"
	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/isp"
	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/logging"
	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/runner"
	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/diagnostic"
	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

var (
	exitSuccess = 0
	exitFailure = 1
	exitUsage   = 2
)

func Run(args []string, version string) int {
	flagSet := flag.NewFlagSet("netdiag run", flag.ContinueOnError)
	flagSet.SetOutput(os.Stdout)

	var (
		configPath string
		outputDir  string
		formats    string
		jsonOut    bool
		noISP      bool
		noHistory  bool
		noFiles    bool
		speedTest  bool
	)
	flagSet.StringVar(&configPath, "config", "", "Config file path (default: search netdiag.yaml)")
	flagSet.StringVar(&outputDir, "output-dir", "", "Report output directory (overrides config)")
	flagSet.StringVar(&formats, "formats", "", "Comma-separated report formats: json,csv,text,chart")
	flagSet.BoolVar(&jsonOut, "json", false, "Print the report as JSON instead of the table")
	flagSet.BoolVar(&noISP, "no-isp", false, "Skip ISP detection")
	flagSet.BoolVar(&noHistory, "no-history", false, "Do not record this run in history")
	flagSet.BoolVar(&noFiles, "no-files", false, "Do not write report files")
	flagSet.BoolVar(&speedTest, "speedtest", false, "Include a bandwidth measurement")
	help := flagSet.Bool("help", false, "Show help")
	flagSet.BoolVar(help, "h", false, "Show help (short)")

	if err := flagSet.Parse(args); err != nil {
		return exitUsage
	}
	if *help {
		printUsage()
		return exitSuccess
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "netdiag run: %v\n", err)
		return exitUsage
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if formats != "" {
		cfg.Formats = strings.Split(formats, ",")
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "netdiag run: %v\n", err)
			return exitUsage
		}
	}
	if speedTest {
		cfg.SpeedTestEnabled = true
	}

	logging.Init(logging.ParseLevel(cfg.LogLevel))
	log := logging.NewLogger("run")

	// Positional args replace the configured target list.
	targets := cfg.Targets
	if rest := flagSet.Args(); len(rest) > 0 {
		targets = rest
	}
	valid, errs := types.ValidateTargets(targets)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "netdiag run: %v\n", err)
	}
	if len(errs) > 0 {
		return exitUsage
	}
	targets = valid

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("interrupted, finishing in-flight tests")
		cancel()
	}()

	report := &types.Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	if !noISP {
		// Detection runs concurrently with the tests; it only queries echo
		// services and DNS, so it does not skew the measurements.
		ispCh := make(chan *types.ISPInfo, 1)
		go func() {
			info, err := isp.NewDetector().Detect(ctx)
			if err != nil {
				log.Warn("isp detection failed", logging.Field{Key: "error", Value: err})
			}
			ispCh <- info
		}()

		report.Tests = runner.New(cfg).RunAll(ctx, targets)
		report.ISP = <-ispCh
	} else {
		report.Tests = runner.New(cfg).RunAll(ctx, targets)
	}

	report.CompletedAt = time.Now()
	report.Summary = diagnostic.Summarize(report.Tests)

	if jsonOut {
		if err := json.NewEncoder(os.Stdout).Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "netdiag run: json encode error: %v\n", err)
			return exitFailure
		}
	} else {
		export.RenderConsole(os.Stdout, report)
	}

	if !noFiles {
		paths, err := export.New(cfg.OutputDir).WriteAll(report, cfg.Formats)
		if err != nil {
			fmt.Fprintf(os.Stderr, "netdiag run: warning: %v\n", err)
		}
		if !jsonOut {
			for format, path := range paths {
				fmt.Printf("Report (%s): %s\n", format, path)
			}
		}
	}

	if !noHistory {
		if store, err := history.Open(cfg.HistoryPath, cfg.MaxStoredRuns); err != nil {
			log.Warn("history unavailable", logging.Field{Key: "error", Value: err})
		} else {
			if err := store.Save(report); err != nil {
				log.Warn("history save failed", logging.Field{Key: "error", Value: err})
			}
			store.Close()
		}
	}

	if report.Summary.OverallStatus == types.OverallPoor {
		return exitFailure
	}
	return exitSuccess
}

func printUsage() {
	fmt.Fprintf(os.Stdout, `Usage: netdiag run [flags] [target ...]

Runs ping, traceroute, and mtr against every target (configured or given
as arguments), prints the results, and writes report files.

Flags:
  -config PATH       Config file (default: netdiag.yaml, then XDG config dir)
  -output-dir DIR    Report output directory
  -formats LIST      Report formats: json,csv,text,chart
  -json              Print the report as JSON
  -no-isp            Skip ISP detection
  -no-history        Do not record this run
  -no-files          Do not write report files
  -speedtest         Include a bandwidth measurement

Examples:
  netdiag run
  netdiag run 8.8.8.8 1.1.1.1
  netdiag run -formats json,chart -output-dir /tmp/reports
`)
}
