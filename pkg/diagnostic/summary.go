package diagnostic

import "github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"

// Success-rate bands (percent) for the overall run classification.
const (
	bandExcellent = 90
	bandGood      = 70
	bandFair      = 50
)

// Summarize derives the run-level summary from a set of per-target tests.
// The ping result is the trust anchor for reachability: a target without
// one counts as failed no matter what its traceroute or mtr said, because
// those are diagnostic detail rather than primary health signals. The
// average latency covers only targets whose ping succeeded. An empty test
// list yields an all-zero summary; there is no failure mode.
func Summarize(tests []types.NetworkTest) types.TestSummary {
	summary := types.TestSummary{TotalTests: len(tests)}

	var latencySum float64
	latencyCount := 0

	for _, test := range tests {
		if test.Ping == nil {
			summary.FailedTests++
			continue
		}
		switch test.Ping.Status {
		case types.StatusSuccess:
			summary.SuccessfulTests++
			latencySum += test.Ping.AvgTime
			latencyCount++
		case types.StatusWarning:
			summary.WarningTests++
		default:
			summary.FailedTests++
		}
	}

	if latencyCount > 0 {
		summary.AverageLatency = latencySum / float64(latencyCount)
	}
	if summary.TotalTests > 0 {
		summary.SuccessRate = float64(summary.SuccessfulTests) / float64(summary.TotalTests) * 100
	}
	summary.OverallStatus = OverallStatus(summary.SuccessRate)

	return summary
}

// OverallStatus bands a success rate (percent) into the human-facing
// excellent/good/fair/poor classification.
func OverallStatus(successRate float64) string {
	switch {
	case successRate >= bandExcellent:
		return types.OverallExcellent
	case successRate >= bandGood:
		return types.OverallGood
	case successRate >= bandFair:
		return types.OverallFair
	default:
		return types.OverallPoor
	}
}
