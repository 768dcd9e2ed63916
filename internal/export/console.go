package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

const minTableWidth = 72

// RenderConsole prints the run results as a table followed by the summary.
// When stdout is a terminal the separator rules stretch to its width;
// piped output falls back to a fixed width.
func RenderConsole(w io.Writer, report *types.Report) {
	width := minTableWidth
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > minTableWidth {
			width = cols
		}
	}
	rule := strings.Repeat("─", width)

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-24s %-9s %7s %9s %6s %-9s %8s\n",
		"TARGET", "PING", "LOSS%", "AVG ms", "HOPS", "MTR", "MTR LOSS")
	fmt.Fprintln(w, rule)

	for _, test := range report.Tests {
		pingStatus, loss, avg := "-", "-", "-"
		if ping := test.Ping; ping != nil {
			pingStatus = statusLabel(ping.Status)
			loss = fmt.Sprintf("%.1f", ping.PacketLossPercent)
			if ping.Status != types.StatusFailed {
				avg = fmt.Sprintf("%.1f", ping.AvgTime)
			}
		}
		hops := "-"
		if tr := test.Traceroute; tr != nil && tr.Status != types.StatusFailed {
			hops = fmt.Sprintf("%d", tr.TotalHops)
		}
		mtrStatus, mtrLoss := "-", "-"
		if mtr := test.MTR; mtr != nil {
			mtrStatus = statusLabel(mtr.Status)
			if mtr.Status != types.StatusFailed {
				mtrLoss = fmt.Sprintf("%.1f%%", mtr.TotalLossPercent)
			}
		}
		fmt.Fprintf(w, "%-24s %-9s %7s %9s %6s %-9s %8s\n",
			truncate(test.Target, 24), pingStatus, loss, avg, hops, mtrStatus, mtrLoss)
	}

	fmt.Fprintln(w, rule)
	summary := report.Summary
	fmt.Fprintf(w, "%d tests: %d ok, %d warning, %d failed | %.1f%% success (%s)\n",
		summary.TotalTests, summary.SuccessfulTests, summary.WarningTests,
		summary.FailedTests, summary.SuccessRate, summary.OverallStatus)
	if isp := report.ISP; isp != nil && isp.PublicIP != "" {
		provider := isp.Provider
		if !isp.Reliable() {
			provider += " (low confidence)"
		}
		fmt.Fprintf(w, "Connection: %s via %s\n", isp.PublicIP, provider)
	}
}

func statusLabel(s types.TestStatus) string {
	switch s {
	case types.StatusSuccess:
		return "OK"
	case types.StatusWarning:
		return "WARN"
	default:
		return "FAIL"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
