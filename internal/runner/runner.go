// Package runner invokes the external diagnostic commands and feeds their
// captured stdout to the parsers. It is the only place that spawns
// processes; the parsers never see exit codes or stderr, so a crashed or
// silent tool flows through the same "nothing recognizable" path as
// malformed text.
package runner

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/config"
	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/logging"
	diagerr "github.com/felipecaninnovaes/diagnostico-de-rede/pkg/errors"
	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/parser"
	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

type Runner struct {
	cfg     *config.Config
	parser  *parser.Parser
	limiter *rate.Limiter
	log     *logging.Logger
}

func New(cfg *config.Config) *Runner {
	return &Runner{
		cfg:    cfg,
		parser: parser.New(cfg.ParserThresholds()),
		// The limiter smooths spawn bursts when many targets start at once.
		limiter: rate.NewLimiter(rate.Limit(cfg.SpawnRatePerSec), cfg.MaxConcurrentTests),
		log:     logging.NewLogger("runner"),
	}
}

// RunAll tests every target, at most MaxConcurrentTests targets in flight.
// Result order matches target order regardless of completion order.
func (r *Runner) RunAll(ctx context.Context, targets []string) []types.NetworkTest {
	results := make([]types.NetworkTest, len(targets))
	sem := make(chan struct{}, r.cfg.MaxConcurrentTests)

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = r.RunTarget(ctx, target)
		}(i, target)
	}
	wg.Wait()

	return results
}

// RunTarget runs the ping, traceroute, and mtr sub-tests for one target in
// parallel and assembles the NetworkTest. Each sub-test parses as soon as
// its process exits; a cancelled or failed invocation still produces a
// well-formed result from whatever partial output was captured.
func (r *Runner) RunTarget(ctx context.Context, target string) types.NetworkTest {
	test := types.NetworkTest{Target: target, Timestamp: time.Now()}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		result := r.Ping(ctx, target)
		test.Ping = &result
	}()
	go func() {
		defer wg.Done()
		result := r.Traceroute(ctx, target)
		test.Traceroute = &result
	}()
	go func() {
		defer wg.Done()
		result := r.MTR(ctx, target)
		test.MTR = &result
	}()
	wg.Wait()

	if r.cfg.SpeedTestEnabled && contains(r.cfg.SpeedTestTargets, target) {
		if result := r.runSpeedTest(ctx); result != nil {
			test.SpeedTest = result
		}
	}

	return test
}

// Ping runs a single ping sub-test against one target.
func (r *Runner) Ping(ctx context.Context, target string) types.PingResult {
	output, err := r.capture(ctx, r.cfg.PingTimeout(), target,
		"ping", "-c", strconv.Itoa(r.cfg.PingCount), target)
	result := r.parser.ParsePing(output, target)
	if err != nil && result.ErrorMessage == "" {
		result.ErrorMessage = err.Error()
	}
	return result
}

// Traceroute runs a single traceroute sub-test against one target.
func (r *Runner) Traceroute(ctx context.Context, target string) types.TracerouteResult {
	output, err := r.capture(ctx, r.cfg.TracerouteTimeout(), target,
		"traceroute", "-n", "-m", strconv.Itoa(r.cfg.TracerouteMaxHops), target)
	result := r.parser.ParseTraceroute(output, target)
	if err != nil && result.ErrorMessage == "" {
		result.ErrorMessage = err.Error()
	}
	return result
}

// MTR runs a single mtr sub-test against one target.
func (r *Runner) MTR(ctx context.Context, target string) types.MTRResult {
	// -r report, -w wide, -z ASN lookup, -b names and addresses.
	output, err := r.capture(ctx, r.cfg.MTRTimeout(), target,
		"mtr", "-rwzb", "-c", strconv.Itoa(r.cfg.MTRCount), target)
	result := r.parser.ParseMTR(output, target)
	if err != nil && result.ErrorMessage == "" {
		result.ErrorMessage = err.Error()
	}
	return result
}

// capture runs one external command and returns whatever stdout it
// produced, together with the invocation error if any. Partial output from
// a timed-out or failed command is returned as-is for parsing.
func (r *Runner) capture(ctx context.Context, timeout time.Duration, target, name string, args ...string) (string, error) {
	if _, err := exec.LookPath(name); err != nil {
		r.log.Warn("command not found", logging.Field{Key: "command", Value: name})
		return "", diagerr.ErrCommandNotFound(name)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}

	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(cmdCtx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	switch {
	case cmdCtx.Err() == context.DeadlineExceeded:
		r.log.Warn("command timed out",
			logging.Field{Key: "command", Value: name},
			logging.Field{Key: "target", Value: target},
			logging.Field{Key: "elapsed", Value: elapsed})
		return stdout.String(), diagerr.ErrCommandTimeout(name, target)
	case err != nil:
		r.log.Debug("command exited with error",
			logging.Field{Key: "command", Value: name},
			logging.Field{Key: "target", Value: target},
			logging.Field{Key: "error", Value: err},
			logging.Field{Key: "stderr", Value: stderr.String()})
		return stdout.String(), err
	}

	r.log.Debug("command completed",
		logging.Field{Key: "command", Value: name},
		logging.Field{Key: "target", Value: target},
		logging.Field{Key: "elapsed", Value: elapsed})
	return stdout.String(), nil
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
