package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

// unknownHost is the placeholder mtr prints when reverse resolution fails.
// It is parser-internal: exposed hostnames are empty, never this text.
const unknownHost = "???"

// Primary hop-line pattern for `mtr -rwzb` report output:
// hop ordinal + period (optionally glued to the `|--` report marker), an
// optional AS-number token (digits, or question marks when unknown), the
// name/address field, then exactly seven numeric columns in fixed order:
// Loss% Snt Last Avg Best Wrst StDev.
var mtrHopPattern = regexp.MustCompile(
	`^\s*(\d+)\.(?:\|--+)?\s+(?:AS(\d+|\?+)\s+)?(.+?)\s+(\d+\.?\d*)%\s+(\d+)\s+([\d.]+)\s+([\d.]+)\s+([\d.]+)\s+([\d.]+)\s+([\d.]+)\s*$`)

// Parenthesized IPv4 inside the name field (`hostname (1.2.3.4)`).
var mtrParenIP = regexp.MustCompile(`\((\d{1,3}(?:\.\d{1,3}){3})\)`)

// Leading ordinal for the fallback tokenizer.
var mtrOrdinal = regexp.MustCompile(`^(\d+)`)

// ParseMTR parses mtr report output with the default thresholds.
func ParseMTR(output, target string) types.MTRResult {
	return Default.ParseMTR(output, target)
}

// ParseMTR extracts the per-hop loss/latency table from the captured output
// of one mtr report invocation and derives the aggregate loss and latency
// figures. The aggregate loss is worst-observed, not a plain mean: a single
// congested hop dominates the signal, and when several hops lose more than
// the warning bound their mean is taken if it is worse still, so one noisy
// outlier cannot mask a broad pattern of moderate loss.
func (p *Parser) ParseMTR(output, target string) (result types.MTRResult) {
	result = types.MTRResult{
		Status:    types.StatusSuccess,
		Target:    target,
		Hops:      []types.MTRHop{},
		Timestamp: time.Now(),
		RawOutput: output,
	}

	defer func() {
		if r := recover(); r != nil {
			result = types.MTRResult{
				Status:           types.StatusFailed,
				Target:           target,
				Hops:             []types.MTRHop{},
				TotalLossPercent: 100,
				Timestamp:        time.Now(),
				RawOutput:        output,
				ErrorMessage:     faultMessage(r),
			}
		}
	}()

	for _, line := range strings.Split(output, "\n") {
		if skipMTRLine(line) {
			continue
		}
		if hop, ok := parseMTRHopLine(line); ok {
			result.Hops = append(result.Hops, hop)
		} else if hop, ok := parseMTRHopFallback(line); ok {
			result.Hops = append(result.Hops, hop)
		}
	}
	result.TotalHops = len(result.Hops)
	result.TotalLossPercent, result.AvgLatency = p.aggregateMTR(result.Hops)
	result.Status = p.classifyMTR(result.Hops, result.TotalLossPercent, result.AvgLatency)

	return result
}

// skipMTRLine recognizes header, banner, and blank lines.
func skipMTRLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" ||
		strings.Contains(line, "HOST:") ||
		strings.Contains(line, "Loss%") ||
		strings.HasPrefix(trimmed, "Start")
}

// parseMTRHopLine applies the anchored primary pattern.
func parseMTRHopLine(line string) (types.MTRHop, bool) {
	m := mtrHopPattern.FindStringSubmatch(line)
	if m == nil {
		return types.MTRHop{}, false
	}

	hostname, ip := splitMTRName(m[3])

	var asn string
	if m[2] != "" && !strings.Contains(m[2], "?") {
		asn = "AS" + m[2]
	}

	return types.MTRHop{
		HopNumber:   atoi(m[1]),
		Hostname:    hostname,
		IPAddress:   ip,
		LossPercent: atof(m[4]),
		SentPackets: atoi(m[5]),
		LastTime:    atof(m[6]),
		AvgTime:     atof(m[7]),
		BestTime:    atof(m[8]),
		WorstTime:   atof(m[9]),
		StdDev:      atof(m[10]),
		ASN:         asn,
	}, true
}

// splitMTRName disambiguates the name/address field. Three shapes occur:
// `hostname (1.2.3.4)` when reverse DNS succeeded with -b, a bare
// dotted-quad when it did not, and the unknown-host placeholder when the
// hop answered nothing resolvable. The placeholder is kept only as the
// address sentinel; the hostname side is reported empty.
func splitMTRName(field string) (hostname, ip string) {
	field = strings.TrimSpace(field)

	if m := mtrParenIP.FindStringSubmatch(field); m != nil {
		ip = m[1]
		hostname = strings.TrimSpace(strings.Replace(field, "("+ip+")", "", 1))
		if hostname == "" || strings.Trim(hostname, "?") == "" {
			hostname = ""
		}
		return hostname, ip
	}

	if ipv4Exact.MatchString(field) {
		return field, field
	}

	if strings.Trim(field, "?") == "" {
		return "", unknownHost
	}

	return field, field
}

// parseMTRHopFallback tolerates report variants the anchored pattern does
// not cover (narrow terminals, missing AS column with shifted spacing). It
// tokenizes the line, takes the loss from the first %-suffixed token, and
// reconstructs the timing columns from the remaining numeric fields.
func parseMTRHopFallback(line string) (types.MTRHop, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return types.MTRHop{}, false
	}

	om := mtrOrdinal.FindStringSubmatch(fields[0])
	if om == nil {
		return types.MTRHop{}, false
	}
	hopNumber, err := strconv.Atoi(om[1])
	if err != nil {
		return types.MTRHop{}, false
	}

	name := fields[1]
	if strings.HasPrefix(name, "AS") && len(fields) > 2 {
		name = fields[2]
	}
	hostname, ip := splitMTRName(name)

	var lossPercent float64
	sentPackets := 0
	sawLoss := false
	var times []float64
	for _, f := range fields[1:] {
		if !sawLoss && strings.HasSuffix(f, "%") {
			if v, err := strconv.ParseFloat(strings.TrimSuffix(f, "%"), 64); err == nil {
				lossPercent = v
				sawLoss = true
			}
			continue
		}
		if sawLoss {
			if v, err := strconv.Atoi(f); err == nil && sentPackets == 0 {
				sentPackets = v
				continue
			}
			if v, err := strconv.ParseFloat(f, 64); err == nil && strings.Contains(f, ".") {
				times = append(times, v)
			}
		}
	}
	if !sawLoss {
		return types.MTRHop{}, false
	}

	hop := types.MTRHop{
		HopNumber:   hopNumber,
		Hostname:    hostname,
		IPAddress:   ip,
		LossPercent: lossPercent,
		SentPackets: sentPackets,
	}
	if len(times) > 0 {
		hop.LastTime = times[len(times)-1]
		hop.BestTime = times[0]
		hop.WorstTime = times[0]
		var sum float64
		for _, t := range times {
			sum += t
			if t < hop.BestTime {
				hop.BestTime = t
			}
			if t > hop.WorstTime {
				hop.WorstTime = t
			}
		}
		hop.AvgTime = sum / float64(len(times))
	}
	return hop, true
}

// aggregateMTR derives the run-level loss and latency figures.
func (p *Parser) aggregateMTR(hops []types.MTRHop) (totalLoss, avgLatency float64) {
	if len(hops) == 0 {
		return 0, 0
	}

	for _, hop := range hops {
		if hop.LossPercent > totalLoss {
			totalLoss = hop.LossPercent
		}
	}

	// When several hops exceed the warning bound, their mean can exceed the
	// single worst hop; take whichever is larger.
	var problematicSum float64
	problematicCount := 0
	for _, hop := range hops {
		if hop.LossPercent > p.thresholds.MTRWarnLoss {
			problematicSum += hop.LossPercent
			problematicCount++
		}
	}
	if problematicCount > 0 {
		if mean := problematicSum / float64(problematicCount); mean > totalLoss {
			totalLoss = mean
		}
	}

	// Non-responding hops are excluded from the mean, not counted as zero.
	var latencySum float64
	responding := 0
	for _, hop := range hops {
		if hop.AvgTime > 0 {
			latencySum += hop.AvgTime
			responding++
		}
	}
	if responding > 0 {
		avgLatency = latencySum / float64(responding)
	}

	return totalLoss, avgLatency
}

// classifyMTR applies the status policy; first match wins.
func (p *Parser) classifyMTR(hops []types.MTRHop, totalLoss, avgLatency float64) types.TestStatus {
	if len(hops) == 0 {
		return types.StatusFailed
	}
	if totalLoss > p.thresholds.MTRFailLoss {
		return types.StatusFailed
	}
	if totalLoss > p.thresholds.MTRWarnLoss || avgLatency > p.thresholds.MTRWarnLatency {
		return types.StatusWarning
	}
	for _, hop := range hops {
		if hop.LossPercent > p.thresholds.MTRHopWarnLoss {
			return types.StatusWarning
		}
	}
	return types.StatusSuccess
}
