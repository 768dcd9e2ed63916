// Package mcp implements the `netdiag mcp` subcommand: an MCP (Model
// Context Protocol) server over stdio transport. Agents can spawn this
// process and run network diagnostics as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/config"
	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/isp"
	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/runner"
	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/diagnostic"
	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

// Run starts the MCP stdio server. Blocks until stdin closes or signal received.
func Run(version string) int {
	s := server.NewMCPServer(
		"netdiag",
		version,
		server.WithToolCapabilities(true),
	)

	// Tool: run_diagnostics — full ping/traceroute/mtr run over targets
	diagTool := mcp.NewTool("run_diagnostics",
		mcp.WithDescription("Full network diagnostic: ping, traceroute, and mtr against one or more targets, with per-target status and a run summary. Takes up to a few minutes depending on targets."),
		mcp.WithString("targets",
			mcp.Description("Comma-separated hosts or IPs (default: 8.8.8.8,1.1.1.1)"),
		),
	)
	s.AddTool(diagTool, handleRunDiagnostics)

	// Tool: ping_target — single quick ping
	pingTool := mcp.NewTool("ping_target",
		mcp.WithDescription("Quick ping of one target. Returns packet loss and min/avg/max latency. Use for fast 'is this host reachable?' checks."),
		mcp.WithString("target",
			mcp.Description("Host or IP to ping"),
			mcp.Required(),
		),
		mcp.WithNumber("count",
			mcp.Description("Packets to send, 1-20 (default: 4)"),
		),
	)
	s.AddTool(pingTool, handlePingTarget)

	// Tool: trace_target — route path to one target
	traceTool := mcp.NewTool("trace_target",
		mcp.WithDescription("Trace the route to one target. Returns the hop list with per-hop response times and timeout markers."),
		mcp.WithString("target",
			mcp.Description("Host or IP to trace"),
			mcp.Required(),
		),
	)
	s.AddTool(traceTool, handleTraceTarget)

	// Tool: detect_isp — provider detection for the current connection
	ispTool := mcp.NewTool("detect_isp",
		mcp.WithDescription("Detect the internet provider of the current connection: public IP, reverse hostname, and provider guess with confidence."),
	)
	s.AddTool(ispTool, handleDetectISP)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "netdiag mcp: error: %v\n", err)
		return 1
	}
	return 0
}

// --- Tool Handlers ---

func handleRunDiagnostics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := req.GetString("targets", "8.8.8.8,1.1.1.1")
	var targets []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}
	if _, errs := types.ValidateTargets(targets); len(errs) > 0 {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid targets: %v", errs[0])), nil
	}

	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	cfg := config.DefaultConfig()
	tests := runner.New(cfg).RunAll(runCtx, targets)

	report := struct {
		Tests   []types.NetworkTest `json:"tests"`
		Summary types.TestSummary   `json:"summary"`
	}{Tests: tests, Summary: diagnostic.Summarize(tests)}

	return toolJSON(report)
}

func handlePingTarget(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target := req.GetString("target", "")
	if _, err := types.ValidateTarget(target); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid target: %v", err)), nil
	}
	count := req.GetInt("count", 4)
	if count < 1 {
		count = 1
	}
	if count > 20 {
		count = 20
	}

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cfg := config.DefaultConfig()
	cfg.PingCount = count
	result := runner.New(cfg).Ping(pingCtx, target)

	return toolJSON(result)
}

func handleTraceTarget(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target := req.GetString("target", "")
	if _, err := types.ValidateTarget(target); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid target: %v", err)), nil
	}

	traceCtx, cancel := context.WithTimeout(ctx, 90*time.Second)
	defer cancel()

	result := runner.New(config.DefaultConfig()).Traceroute(traceCtx, target)

	return toolJSON(result)
}

func handleDetectISP(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	detectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	info, err := isp.NewDetector().Detect(detectCtx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ISP detection failed: %v", err)), nil
	}

	return toolJSON(info)
}

func toolJSON(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("JSON encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
