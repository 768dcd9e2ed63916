package types

// IPType distinguishes private from public addresses in ISP detection.
type IPType string

const (
	IPTypePrivate IPType = "private"
	IPTypePublic  IPType = "public"
	IPTypeUnknown IPType = "unknown"
)

// ISPInfo describes the detected internet provider for the current
// connection. Detection is heuristic; ConfidenceLevel is in [0,1].
type ISPInfo struct {
	Provider        string  `json:"provider"`
	PublicIP        string  `json:"public_ip"`
	Hostname        string  `json:"hostname,omitempty"`
	IPType          IPType  `json:"ip_type"`
	ConfidenceLevel float64 `json:"confidence_level"`
}

// Reliable reports whether the detection confidence is high enough to
// surface the provider name without qualification.
func (i *ISPInfo) Reliable() bool {
	return i.ConfidenceLevel >= 0.6
}
