// Package types defines the normalized data model shared by the parsers,
// the runner, the exporters, and the history store. Results are plain
// structured values: no formatting, no color codes, no locale-specific
// number rendering.
package types

import "time"

// TestStatus classifies the outcome of a single sub-test. It is always
// derived by a parser from measured values, never set directly by callers.
type TestStatus string

const (
	StatusSuccess TestStatus = "success"
	StatusWarning TestStatus = "warning"
	StatusFailed  TestStatus = "failed"
)

// PingResult holds the parsed statistics of one ping invocation.
// Immutable after parse; RawOutput keeps the verbatim command output so a
// result can be re-parsed or audited without re-running the command.
type PingResult struct {
	Status            TestStatus `json:"status"`
	Target            string     `json:"target"`
	PacketsSent       int        `json:"packets_sent"`
	PacketsReceived   int        `json:"packets_received"`
	PacketLossPercent float64    `json:"packet_loss_percent"`
	MinTime           float64    `json:"min_time_ms"`
	AvgTime           float64    `json:"avg_time_ms"`
	MaxTime           float64    `json:"max_time_ms"`
	MdevTime          float64    `json:"mdev_time_ms"`
	Timestamp         time.Time  `json:"timestamp"`
	RawOutput         string     `json:"raw_output"`
	ErrorMessage      string     `json:"error_message,omitempty"`
}

// TracerouteHop is one router reported by traceroute. HopNumber is the
// 1-based ordinal printed by the tool; hop order always matches line order
// in the source text.
type TracerouteHop struct {
	HopNumber      int     `json:"hop_number"`
	IPAddress      string  `json:"ip_address"`
	ResponseTimeMs float64 `json:"response_time_ms"`
	IsTimeout      bool    `json:"is_timeout"`
}

// TracerouteResult holds the parsed hop sequence of one traceroute
// invocation. Duplicate hop numbers are preserved, not merged.
type TracerouteResult struct {
	Status       TestStatus      `json:"status"`
	Target       string          `json:"target"`
	Hops         []TracerouteHop `json:"hops"`
	TotalHops    int             `json:"total_hops"`
	Timestamp    time.Time       `json:"timestamp"`
	RawOutput    string          `json:"raw_output"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// MTRHop is one router reported by mtr. Hostname is empty (absent in JSON)
// when the hop could not be resolved; it never carries the tool's
// unknown-host placeholder text. IPAddress mirrors Hostname when only one
// form is present.
type MTRHop struct {
	HopNumber   int     `json:"hop_number"`
	Hostname    string  `json:"hostname,omitempty"`
	IPAddress   string  `json:"ip_address"`
	LossPercent float64 `json:"loss_percent"`
	SentPackets int     `json:"sent_packets"`
	LastTime    float64 `json:"last_time_ms"`
	AvgTime     float64 `json:"avg_time_ms"`
	BestTime    float64 `json:"best_time_ms"`
	WorstTime   float64 `json:"worst_time_ms"`
	StdDev      float64 `json:"std_dev_ms"`
	ASN         string  `json:"asn,omitempty"`
}

// MTRResult holds the parsed hop table of one mtr invocation plus the
// aggregate loss/latency figures. TotalLossPercent is worst-observed loss,
// not a plain average; AvgLatency is the mean over hops that responded at
// least once.
type MTRResult struct {
	Status           TestStatus `json:"status"`
	Target           string     `json:"target"`
	Hops             []MTRHop   `json:"hops"`
	TotalHops        int        `json:"total_hops"`
	TotalLossPercent float64    `json:"total_loss_percent"`
	AvgLatency       float64    `json:"avg_latency_ms"`
	Timestamp        time.Time  `json:"timestamp"`
	RawOutput        string     `json:"raw_output"`
	ErrorMessage     string     `json:"error_message,omitempty"`
}

// SpeedTestResult is the optional bandwidth measurement attached to a
// NetworkTest. It is produced from speedtest-cli's JSON output, not from a
// text parser, and is opaque to the aggregation logic.
type SpeedTestResult struct {
	Status         TestStatus `json:"status"`
	DownloadMbps   float64    `json:"download_mbps"`
	UploadMbps     float64    `json:"upload_mbps"`
	PingLatencyMs  float64    `json:"ping_latency_ms"`
	ServerName     string     `json:"server_name,omitempty"`
	ServerLocation string     `json:"server_location,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
	RawOutput      string     `json:"raw_output,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
}

// NetworkTest is the complete set of sub-test results for one target in one
// run. It is created when the target begins testing, populated as each
// sub-test completes, and read-only once the run finishes.
type NetworkTest struct {
	Target     string            `json:"target"`
	Timestamp  time.Time         `json:"timestamp"`
	Ping       *PingResult       `json:"ping_result,omitempty"`
	Traceroute *TracerouteResult `json:"traceroute_result,omitempty"`
	MTR        *MTRResult        `json:"mtr_result,omitempty"`
	SpeedTest  *SpeedTestResult  `json:"speed_test_result,omitempty"`
}
