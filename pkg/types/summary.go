package types

import "time"

// Overall status bands for a run, derived from the success rate.
const (
	OverallExcellent = "excellent"
	OverallGood      = "good"
	OverallFair      = "fair"
	OverallPoor      = "poor"
)

// TestSummary is the run-level roll-up over a set of NetworkTests. It is
// derived on demand by diagnostic.Summarize and never stored as the source
// of truth. SuccessRate is a percentage in [0,100].
type TestSummary struct {
	TotalTests      int     `json:"total_tests"`
	SuccessfulTests int     `json:"successful_tests"`
	FailedTests     int     `json:"failed_tests"`
	WarningTests    int     `json:"warning_tests"`
	AverageLatency  float64 `json:"average_latency_ms"`
	SuccessRate     float64 `json:"success_rate"`
	OverallStatus   string  `json:"overall_status"`
}

// Report is the full output of one diagnostic run, in the shape consumed by
// the console renderer, the exporters, and the history store.
type Report struct {
	RunID       string        `json:"run_id"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	ISP         *ISPInfo      `json:"isp_info,omitempty"`
	Tests       []NetworkTest `json:"tests"`
	Summary     TestSummary   `json:"summary"`
}

// Duration reports the wall-clock length of the run in seconds.
func (r *Report) Duration() float64 {
	if r.CompletedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt).Seconds()
}
