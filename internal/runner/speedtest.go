package runner

import (
	"context"
	"encoding/json"
	"time"

	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/logging"
	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

// speedtest-cli --json payload. Download and upload come back in bits/s.
type speedtestOutput struct {
	Download float64 `json:"download"`
	Upload   float64 `json:"upload"`
	Ping     float64 `json:"ping"`
	Server   struct {
		Sponsor string `json:"sponsor"`
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"server"`
}

// runSpeedTest shells out to speedtest-cli once per run. Bandwidth is a
// bonus measurement: any failure logs and returns a failed result instead
// of aborting the run.
func (r *Runner) runSpeedTest(ctx context.Context) *types.SpeedTestResult {
	result := &types.SpeedTestResult{
		Status:    types.StatusFailed,
		Timestamp: time.Now(),
	}

	output, err := r.capture(ctx, r.cfg.SpeedTestTimeout(), "", "speedtest-cli", "--json")
	if err != nil {
		r.log.Warn("speed test failed", logging.Field{Key: "error", Value: err})
		result.ErrorMessage = err.Error()
		return result
	}

	var payload speedtestOutput
	if err := json.Unmarshal([]byte(output), &payload); err != nil {
		r.log.Warn("speed test output not parseable", logging.Field{Key: "error", Value: err})
		result.ErrorMessage = "unrecognized speedtest-cli output"
		return result
	}

	result.DownloadMbps = payload.Download / 1e6
	result.UploadMbps = payload.Upload / 1e6
	result.PingLatencyMs = payload.Ping
	result.ServerName = payload.Server.Sponsor
	result.ServerLocation = payload.Server.Name
	if payload.Server.Country != "" {
		result.ServerLocation = payload.Server.Name + ", " + payload.Server.Country
	}
	result.RawOutput = output
	if result.DownloadMbps > 0 {
		result.Status = types.StatusSuccess
	}
	return result
}
