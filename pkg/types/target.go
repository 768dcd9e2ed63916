package types

import (
	"fmt"
	"net"
	"strings"
)

// TargetKind reports how a test target was recognized.
type TargetKind string

const (
	TargetIP       TargetKind = "ip"
	TargetHostname TargetKind = "hostname"
	TargetUnknown  TargetKind = "unknown"
)

// ValidateTarget checks that a target is a usable IP address or hostname
// before any external command is spawned with it.
func ValidateTarget(target string) (TargetKind, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return TargetUnknown, fmt.Errorf("target must not be empty")
	}
	if net.ParseIP(target) != nil {
		return TargetIP, nil
	}
	if validHostname(target) {
		return TargetHostname, nil
	}
	return TargetUnknown, fmt.Errorf("%q is not a valid IP address or hostname", target)
}

// ValidateTargets splits a target list into usable targets and per-target
// errors. Order is preserved.
func ValidateTargets(targets []string) (valid []string, errs []error) {
	for _, t := range targets {
		if _, err := ValidateTarget(t); err != nil {
			errs = append(errs, err)
			continue
		}
		valid = append(valid, strings.TrimSpace(t))
	}
	return valid, errs
}

// validHostname applies the RFC 1123 label rules: dot-separated labels of
// at most 63 characters, alphanumeric with interior hyphens, total length
// at most 253.
func validHostname(hostname string) bool {
	hostname = strings.TrimSuffix(hostname, ".")
	if hostname == "" || len(hostname) > 253 {
		return false
	}
	for _, label := range strings.Split(hostname, ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		for i, r := range label {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			case r == '-':
				if i == 0 || i == len(label)-1 {
					return false
				}
			default:
				return false
			}
		}
	}
	return true
}
