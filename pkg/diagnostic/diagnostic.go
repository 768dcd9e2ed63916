// Package diagnostic turns normalized test results into run-level summaries
// and human/agent-readable interpretations.
package diagnostic

import (
	"fmt"

	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

// Interpretation is the semantic reading of one target's results: what the
// connection to it is good for and what looks wrong.
type Interpretation struct {
	Grade           string   `json:"grade"`
	Summary         string   `json:"summary"`
	LatencyRating   string   `json:"latency_rating"`
	StabilityRating string   `json:"stability_rating"`
	SpeedRating     string   `json:"speed_rating,omitempty"`
	SuitableFor     []string `json:"suitable_for"`
	Concerns        []string `json:"concerns"`
}

// Interpret reads one target's measurements. Latency and jitter come from
// ping, loss from the worst of ping and mtr, throughput from the optional
// speed test.
func Interpret(test types.NetworkTest) *Interpretation {
	var latency, jitter, loss float64
	loss = -1
	if ping := test.Ping; ping != nil {
		latency = ping.AvgTime
		jitter = ping.MdevTime
		loss = ping.PacketLossPercent
	}
	if mtr := test.MTR; mtr != nil && mtr.TotalLossPercent > loss {
		loss = mtr.TotalLossPercent
	}
	var down, up float64
	if speed := test.SpeedTest; speed != nil && speed.Status != types.StatusFailed {
		down = speed.DownloadMbps
		up = speed.UploadMbps
	}

	interp := &Interpretation{
		SuitableFor: []string{},
		Concerns:    []string{},
	}
	interp.LatencyRating = rateLatency(latency)
	interp.StabilityRating = rateStability(jitter, loss)
	if down > 0 || up > 0 {
		interp.SpeedRating = rateSpeed(down, up)
	}
	interp.SuitableFor = suitability(latency, jitter, loss, down, up)
	interp.Concerns = findConcerns(test, latency, jitter, loss, down, up)
	interp.Grade = computeGrade(interp.LatencyRating, interp.SpeedRating, interp.StabilityRating)
	interp.Summary = buildSummary(interp.Grade, latency, loss, down)

	return interp
}

func rateLatency(ms float64) string {
	switch {
	case ms <= 0:
		return "unknown"
	case ms <= 20:
		return "excellent"
	case ms <= 50:
		return "good"
	case ms <= 100:
		return "fair"
	default:
		return "poor"
	}
}

func rateSpeed(downMbps, upMbps float64) string {
	speed := downMbps
	if speed <= 0 {
		speed = upMbps
	}
	switch {
	case speed <= 0:
		return "unknown"
	case speed >= 100:
		return "fast"
	case speed >= 25:
		return "good"
	case speed >= 5:
		return "moderate"
	default:
		return "slow"
	}
}

func rateStability(jitterMs, packetLoss float64) string {
	if jitterMs <= 0 && packetLoss < 0 {
		return "unknown"
	}
	if packetLoss > 2 {
		return "unstable"
	}
	if packetLoss > 0.5 || jitterMs > 30 {
		return "degraded"
	}
	if jitterMs > 10 {
		return "fair"
	}
	return "stable"
}

func suitability(latency, jitter, loss, down, up float64) []string {
	s := []string{}

	if latency > 0 && latency < 200 && loss >= 0 && loss < 5 {
		s = append(s, "web_browsing")
	}
	if latency > 0 && latency < 100 && jitter < 30 && loss >= 0 && loss < 2 {
		s = append(s, "video_conferencing")
	}
	if latency > 0 && latency < 50 && jitter < 15 && loss >= 0 && loss < 1 {
		s = append(s, "gaming")
	}
	if down >= 25 {
		s = append(s, "streaming_4k")
	} else if down >= 5 {
		s = append(s, "streaming_hd")
	}
	if down >= 50 || up >= 50 {
		s = append(s, "large_transfers")
	}

	return s
}

func findConcerns(test types.NetworkTest, latency, jitter, loss, down, up float64) []string {
	c := []string{}

	if test.Ping == nil || test.Ping.Status == types.StatusFailed {
		c = append(c, "unreachable")
	}
	if latency > 100 {
		c = append(c, "high_latency")
	}
	if jitter > 30 {
		c = append(c, "high_jitter")
	}
	if loss > 1 {
		c = append(c, "packet_loss")
	}
	if tr := test.Traceroute; tr != nil && tr.TotalHops > 20 {
		c = append(c, "long_route")
	}
	if mtr := test.MTR; mtr != nil {
		for _, hop := range mtr.Hops {
			if hop.LossPercent > 10 && hop.HopNumber < mtr.TotalHops {
				c = append(c, "lossy_intermediate_hop")
				break
			}
		}
	}
	if down > 0 && down < 5 {
		c = append(c, "slow_download")
	}
	if up > 0 && up < 2 {
		c = append(c, "slow_upload")
	}

	return c
}

var ratingScore = map[string]int{
	"excellent": 4,
	"fast":      4,
	"stable":    4,
	"good":      3,
	"fair":      2,
	"moderate":  2,
	"degraded":  1,
	"poor":      0,
	"slow":      0,
	"unstable":  0,
	"unknown":   2, // neutral default
}

func computeGrade(latency, speed, stability string) string {
	if speed == "" {
		speed = "unknown"
	}
	score := ratingScore[latency] + ratingScore[speed] + ratingScore[stability]
	// Max score = 12 (4+4+4)
	switch {
	case score >= 11:
		return "A"
	case score >= 9:
		return "B"
	case score >= 6:
		return "C"
	case score >= 3:
		return "D"
	default:
		return "F"
	}
}

func buildSummary(grade string, latency, loss, down float64) string {
	gradeDesc := map[string]string{
		"A": "Excellent",
		"B": "Good",
		"C": "Fair",
		"D": "Poor",
		"F": "Very poor",
	}

	parts := []string{}
	if latency > 0 {
		parts = append(parts, fmt.Sprintf("%.0fms latency", latency))
	}
	if loss > 0 {
		parts = append(parts, fmt.Sprintf("%.1f%% loss", loss))
	}
	if down > 0 {
		parts = append(parts, fmt.Sprintf("%.0f Mbps down", down))
	}

	summary := gradeDesc[grade] + " connection"
	if len(parts) > 0 {
		summary += ": "
		for i, part := range parts {
			if i > 0 {
				summary += ", "
			}
			summary += part
		}
	}

	return summary
}
