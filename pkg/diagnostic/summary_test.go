package diagnostic_test

import (
	"testing"
	"time"

	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/diagnostic"
	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

func pingTest(target string, status types.TestStatus, avgTime float64) types.NetworkTest {
	return types.NetworkTest{
		Target:    target,
		Timestamp: time.Now(),
		Ping: &types.PingResult{
			Status:  status,
			Target:  target,
			AvgTime: avgTime,
		},
	}
}

func TestSummarize_EmptyList(t *testing.T) {
	summary := diagnostic.Summarize(nil)

	if summary.TotalTests != 0 {
		t.Errorf("expected 0 total, got %d", summary.TotalTests)
	}
	if summary.SuccessRate != 0 {
		t.Errorf("expected 0 success rate, got %v", summary.SuccessRate)
	}
	if summary.OverallStatus != types.OverallPoor {
		t.Errorf("expected poor for empty run, got %s", summary.OverallStatus)
	}
}

func TestSummarize_CountsAndLatency(t *testing.T) {
	tests := []types.NetworkTest{
		pingTest("8.8.8.8", types.StatusSuccess, 10),
		pingTest("1.1.1.1", types.StatusSuccess, 20),
		pingTest("10.0.0.99", types.StatusFailed, 0),
		pingTest("flaky.example", types.StatusWarning, 80),
	}

	summary := diagnostic.Summarize(tests)

	if summary.TotalTests != 4 || summary.SuccessfulTests != 2 ||
		summary.FailedTests != 1 || summary.WarningTests != 1 {
		t.Errorf("unexpected counts: %+v", summary)
	}
	// Latency averages only the succeeded pings.
	if summary.AverageLatency != 15 {
		t.Errorf("expected avg latency 15, got %v", summary.AverageLatency)
	}
	if summary.SuccessRate != 50 {
		t.Errorf("expected 50%% success rate, got %v", summary.SuccessRate)
	}
	if summary.OverallStatus != types.OverallFair {
		t.Errorf("expected fair, got %s", summary.OverallStatus)
	}
}

func TestSummarize_MissingPingCountsAsFailed(t *testing.T) {
	// Ping is the trust anchor: a test without one is failed even when its
	// other sub-results succeeded.
	tests := []types.NetworkTest{
		{
			Target: "8.8.8.8",
			MTR: &types.MTRResult{
				Status: types.StatusSuccess,
				Target: "8.8.8.8",
			},
		},
	}

	summary := diagnostic.Summarize(tests)
	if summary.FailedTests != 1 || summary.SuccessfulTests != 0 {
		t.Errorf("expected the ping-less test to fail, got %+v", summary)
	}
}

func TestOverallStatus_Bands(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{100, types.OverallExcellent},
		{90, types.OverallExcellent},
		{89.9, types.OverallGood},
		{70, types.OverallGood},
		{69.9, types.OverallFair},
		{50, types.OverallFair},
		{49.9, types.OverallPoor},
		{0, types.OverallPoor},
	}
	for _, tt := range tests {
		if got := diagnostic.OverallStatus(tt.rate); got != tt.want {
			t.Errorf("rate %v: expected %s, got %s", tt.rate, tt.want, got)
		}
	}
}
