package parser

import (
	"regexp"
	"time"

	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

// Statistics-line patterns, tried in order; first match wins. The primary
// pattern matches pt_BR iputils output (both the older untranslated tail
// and the newer fully translated one), the fallback matches English.
var pingStatsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+) pacotes transmitidos, (\d+) recebidos.*?(\d+\.?\d*)% (?:packet loss|(?:de )?perda de pacotes?)`),
	regexp.MustCompile(`(\d+) packets transmitted, (\d+) received.*?(\d+\.?\d*)% packet loss`),
}

// RTT quartet patterns: Linux iputils first, BSD/macOS round-trip fallback.
var pingRTTPatterns = []*regexp.Regexp{
	regexp.MustCompile(`rtt min/avg/max/mdev = ([\d.]+)/([\d.]+)/([\d.]+)/([\d.]+) ms`),
	regexp.MustCompile(`round-trip min/avg/max/stddev = ([\d.]+)/([\d.]+)/([\d.]+)/([\d.]+) ms`),
}

// ParsePing parses ping output with the default thresholds.
func ParsePing(output, target string) types.PingResult {
	return Default.ParsePing(output, target)
}

// ParsePing extracts the transmitted/received/loss statistics line and the
// RTT quartet from the captured output of one ping invocation. The two
// extractions are independent: a target can report a statistics line with
// total loss and no RTT summary at all.
func (p *Parser) ParsePing(output, target string) (result types.PingResult) {
	result = types.PingResult{
		Status:    types.StatusSuccess,
		Target:    target,
		Timestamp: time.Now(),
		RawOutput: output,
	}

	defer func() {
		if r := recover(); r != nil {
			result = types.PingResult{
				Status:            types.StatusFailed,
				Target:            target,
				PacketLossPercent: 100,
				Timestamp:         time.Now(),
				RawOutput:         output,
				ErrorMessage:      faultMessage(r),
			}
		}
	}()

	for _, pattern := range pingStatsPatterns {
		if m := pattern.FindStringSubmatch(output); m != nil {
			result.PacketsSent = atoi(m[1])
			result.PacketsReceived = atoi(m[2])
			result.PacketLossPercent = atof(m[3])
			break
		}
	}

	for _, pattern := range pingRTTPatterns {
		if m := pattern.FindStringSubmatch(output); m != nil {
			result.MinTime = atof(m[1])
			result.AvgTime = atof(m[2])
			result.MaxTime = atof(m[3])
			result.MdevTime = atof(m[4])
			break
		}
	}

	switch {
	case result.PacketsSent == 0 && result.AvgTime == 0:
		// Neither a statistics line nor an RTT summary: nothing measured.
		result.Status = types.StatusFailed
	case result.PacketLossPercent == 100:
		result.Status = types.StatusFailed
	case result.PacketLossPercent > p.thresholds.PingWarnLoss:
		result.Status = types.StatusWarning
	default:
		result.Status = types.StatusSuccess
	}

	return result
}
