package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/diagnostic"
	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

// WriteText writes the human-readable report.
func (e *Exporter) WriteText(report *types.Report, path string) (string, error) {
	if err := os.WriteFile(path, []byte(textContent(report)), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func textContent(report *types.Report) string {
	var b strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line(strings.Repeat("=", 60))
	line("NETWORK DIAGNOSTIC REPORT")
	line(strings.Repeat("=", 60))
	line("")
	line("Run ID:    %s", report.RunID)
	line("Date/Time: %s", report.StartedAt.Format("2006-01-02 15:04:05"))
	line("Duration:  %.1fs", report.Duration())
	if isp := report.ISP; isp != nil {
		line("ISP:       %s", isp.Provider)
		line("Public IP: %s", isp.PublicIP)
		if isp.Hostname != "" {
			line("Hostname:  %s", isp.Hostname)
		}
		line("Detection confidence: %.0f%%", isp.ConfidenceLevel*100)
	}
	line("")

	summary := report.Summary
	line("TEST SUMMARY")
	line(strings.Repeat("-", 20))
	line("Total tests:  %d", summary.TotalTests)
	line("Succeeded:    %d", summary.SuccessfulTests)
	line("Failed:       %d", summary.FailedTests)
	line("Warnings:     %d", summary.WarningTests)
	line("Success rate: %.1f%%", summary.SuccessRate)
	line("Overall:      %s", summary.OverallStatus)
	line("")

	for i, test := range report.Tests {
		line("TEST %d: %s", i+1, test.Target)
		line(strings.Repeat("-", 30))

		if ping := test.Ping; ping != nil {
			line("Ping: %s", ping.Status)
			if ping.Status != types.StatusFailed {
				line("  Packets: %d sent, %d received", ping.PacketsSent, ping.PacketsReceived)
				line("  Loss: %.1f%%", ping.PacketLossPercent)
				line("  Latency: min=%.1fms avg=%.1fms max=%.1fms",
					ping.MinTime, ping.AvgTime, ping.MaxTime)
			} else if ping.ErrorMessage != "" {
				line("  Error: %s", ping.ErrorMessage)
			}
		}

		if tr := test.Traceroute; tr != nil {
			line("Traceroute: %s", tr.Status)
			line("  Total hops: %d", tr.TotalHops)
		}

		if mtr := test.MTR; mtr != nil {
			line("MTR: %s", mtr.Status)
			if mtr.Status != types.StatusFailed {
				line("  Hops: %d", mtr.TotalHops)
				line("  Worst loss: %.1f%%", mtr.TotalLossPercent)
				line("  Avg latency: %.1fms", mtr.AvgLatency)
			}
		}

		interp := diagnostic.Interpret(test)
		line("Assessment: %s (%s)", interp.Summary, interp.Grade)
		if len(interp.Concerns) > 0 {
			line("  Concerns: %s", strings.Join(interp.Concerns, ", "))
		}

		if speed := test.SpeedTest; speed != nil {
			line("Speed test: %s", speed.Status)
			if speed.Status != types.StatusFailed {
				line("  Download: %.1f Mbps", speed.DownloadMbps)
				line("  Upload: %.1f Mbps", speed.UploadMbps)
				line("  Ping: %.1fms", speed.PingLatencyMs)
			}
		}

		line("")
	}

	return b.String()
}
