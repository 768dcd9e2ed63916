// Package parser converts the free-text output of external diagnostic
// commands (ping, traceroute, mtr) into the normalized result model.
//
// All entry points are pure functions over the captured stdout text: they
// never block, never log, and never propagate a failure to the caller. A
// line that matches no rule simply leaves the corresponding fields at their
// zero values; an unexpected internal failure is recovered at the entry
// point and converted into a Failed-status result carrying the failure text
// in ErrorMessage.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
)

// Thresholds are the status-classification constants. They are carried over
// from operational experience rather than derived; keep the defaults unless
// a deployment has a documented reason to move them.
type Thresholds struct {
	// PingWarnLoss: ping loss strictly above this is a Warning (100% is
	// always Failed).
	PingWarnLoss float64
	// TracerouteWarnHops: hop counts strictly above this signal a routing
	// anomaly.
	TracerouteWarnHops int
	// MTRFailLoss: aggregate loss strictly above this is a Failed run.
	MTRFailLoss float64
	// MTRWarnLoss: aggregate loss strictly above this is a Warning; also
	// the bound for the problematic-hop subset in loss aggregation.
	MTRWarnLoss float64
	// MTRHopWarnLoss: any single hop losing strictly more than this is a
	// Warning.
	MTRHopWarnLoss float64
	// MTRWarnLatency: average latency in ms strictly above this is a
	// Warning.
	MTRWarnLatency float64
}

// DefaultThresholds returns the stock classification constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PingWarnLoss:       50,
		TracerouteWarnHops: 30,
		MTRFailLoss:        20,
		MTRWarnLoss:        5,
		MTRHopWarnLoss:     10,
		MTRWarnLatency:     200,
	}
}

// Parser holds the classification thresholds. The zero value is not usable;
// construct with New.
type Parser struct {
	thresholds Thresholds
}

// New returns a Parser classifying against the given thresholds.
func New(t Thresholds) *Parser {
	return &Parser{thresholds: t}
}

// Default parses with DefaultThresholds. Safe for concurrent use; parsers
// hold no mutable state.
var Default = New(DefaultThresholds())

// Shared field patterns.
var (
	// Dotted-quad IPv4 anywhere in a line.
	ipv4Pattern = regexp.MustCompile(`\b(\d{1,3}(?:\.\d{1,3}){3})\b`)
	// Dotted-quad IPv4 as a complete field.
	ipv4Exact = regexp.MustCompile(`^\d{1,3}(?:\.\d{1,3}){3}$`)
	// First "<number> ms" occurrence.
	msPattern = regexp.MustCompile(`([\d.]+)\s*ms`)
)

// parseFault carries an internal coercion failure to the entry-point
// recover boundary.
type parseFault struct {
	err error
}

func (f parseFault) String() string { return f.err.Error() }

// atof converts a matched capture group, panicking with a parseFault on
// failure. Only called on regex-validated text, so a failure here is an
// internal bug and is surfaced through the Failed-result path.
func atof(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		panic(parseFault{fmt.Errorf("parse float %q: %w", s, err)})
	}
	return v
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		panic(parseFault{fmt.Errorf("parse int %q: %w", s, err)})
	}
	return v
}

// faultMessage renders a recovered panic value for ErrorMessage.
func faultMessage(r interface{}) string {
	switch v := r.(type) {
	case parseFault:
		return v.err.Error()
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}
