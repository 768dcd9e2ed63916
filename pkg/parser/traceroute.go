package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

// ParseTraceroute parses traceroute output with the default thresholds.
func ParseTraceroute(output, target string) types.TracerouteResult {
	return Default.ParseTraceroute(output, target)
}

// ParseTraceroute extracts the per-hop sequence from the captured output of
// one traceroute invocation. Hop order in the result matches line order in
// the source text; duplicate hop numbers (multi-line hops) are preserved.
func (p *Parser) ParseTraceroute(output, target string) (result types.TracerouteResult) {
	result = types.TracerouteResult{
		Status:    types.StatusSuccess,
		Target:    target,
		Hops:      []types.TracerouteHop{},
		Timestamp: time.Now(),
		RawOutput: output,
	}

	defer func() {
		if r := recover(); r != nil {
			result = types.TracerouteResult{
				Status:       types.StatusFailed,
				Target:       target,
				Hops:         []types.TracerouteHop{},
				Timestamp:    time.Now(),
				RawOutput:    output,
				ErrorMessage: faultMessage(r),
			}
		}
	}()

	for _, line := range strings.Split(output, "\n") {
		if hop, ok := parseTracerouteLine(line); ok {
			result.Hops = append(result.Hops, hop)
		}
	}
	result.TotalHops = len(result.Hops)

	switch {
	case len(result.Hops) == 0:
		result.Status = types.StatusFailed
	case len(result.Hops) > p.thresholds.TracerouteWarnHops:
		// Excessive hop counts signal a routing anomaly.
		result.Status = types.StatusWarning
	default:
		result.Status = types.StatusSuccess
	}

	return result
}

// parseTracerouteLine recognizes a hop line and extracts its fields. A line
// qualifies only if its first whitespace-delimited token is a base-10
// integer; the tool's banner line and blank lines never qualify.
func parseTracerouteLine(line string) (types.TracerouteHop, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "traceroute") {
		return types.TracerouteHop{}, false
	}

	fields := strings.Fields(line)
	hopNumber, err := strconv.Atoi(fields[0])
	if err != nil {
		return types.TracerouteHop{}, false
	}

	rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	var ipAddress string
	if m := ipv4Pattern.FindStringSubmatch(rest); m != nil {
		ipAddress = m[1]
	}

	var responseTime float64
	timedOut := false
	if m := msPattern.FindStringSubmatch(rest); m != nil {
		responseTime = atof(m[1])
	} else {
		timedOut = strings.Contains(line, "*")
	}

	if ipAddress == "" {
		ipAddress = "*"
	}

	return types.TracerouteHop{
		HopNumber:      hopNumber,
		IPAddress:      ipAddress,
		ResponseTimeMs: responseTime,
		IsTimeout:      timedOut,
	}, true
}
