package main

import (
	"fmt"
	"os"
	"strings"

	check "github.com/felipecaninnovaes/diagnostico-de-rede/cmd/check"
	historycmd "github.com/felipecaninnovaes/diagnostico-de-rede/cmd/history"
	mcpcmd "github.com/felipecaninnovaes/diagnostico-de-rede/cmd/mcp"
	run "github.com/felipecaninnovaes/diagnostico-de-rede/cmd/run"
)

var version = "dev"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		os.Exit(run.Run(nil, version))
	}

	switch args[0] {
	case "run", "diagnose":
		os.Exit(run.Run(args[1:], version))
	case "check":
		os.Exit(check.Run(args[1:], version))
	case "history":
		os.Exit(historycmd.Run(args[1:], version))
	case "mcp":
		os.Exit(mcpcmd.Run(version))
	case "help", "-h", "--help":
		printUsage()
		return
	case "version", "--version":
		fmt.Printf("netdiag %s\n", version)
		return
	default:
		if strings.HasPrefix(args[0], "-") {
			os.Exit(run.Run(args, version))
		}
		fmt.Fprintf(os.Stderr, "netdiag: unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stdout, `Usage: netdiag <command> [args]

Commands:
  run       Full diagnostic run: ping, traceroute, mtr (default command)
  check     Quick ping-only reachability check
  history   Inspect stored runs and per-target trends
  mcp       Run as MCP server (stdio transport, for AI agents)

Examples:
  netdiag run 8.8.8.8 1.1.1.1
  netdiag check --json google.com
  netdiag history -target 8.8.8.8
  netdiag mcp
`)
}
