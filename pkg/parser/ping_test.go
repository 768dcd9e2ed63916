package parser_test

import (
	"strings"
	"testing"

	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/parser"
	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

const pingOutputEN = `PING 8.8.8.8 (8.8.8.8) 56(84) bytes of data.
64 bytes from 8.8.8.8: icmp_seq=1 ttl=118 time=12.1 ms
64 bytes from 8.8.8.8: icmp_seq=2 ttl=118 time=12.8 ms
64 bytes from 8.8.8.8: icmp_seq=3 ttl=118 time=12.3 ms
64 bytes from 8.8.8.8: icmp_seq=4 ttl=118 time=12.9 ms

--- 8.8.8.8 ping statistics ---
4 packets transmitted, 4 received, 0% packet loss, time 3004ms
rtt min/avg/max/mdev = 10.0/12.5/15.0/1.2 ms
`

const pingOutputPT = `PING google.com (142.250.79.46) 56(84) bytes de dados.
64 bytes de gru14s01-in-f14.1e100.net (142.250.79.46): icmp_seq=1 ttl=116 tempo=11.2 ms
64 bytes de gru14s01-in-f14.1e100.net (142.250.79.46): icmp_seq=2 ttl=116 tempo=11.9 ms

--- google.com estatísticas de ping ---
4 pacotes transmitidos, 4 recebidos, 0% perda de pacote, tempo 3005ms
rtt min/avg/max/mdev = 10.100/11.500/13.000/1.100 ms
`

const pingOutputTotalLoss = `PING 10.0.0.99 (10.0.0.99) 56(84) bytes of data.

--- 10.0.0.99 ping statistics ---
4 packets transmitted, 0 received, 100% packet loss, time 3062ms
`

func TestParsePing_FullStatistics(t *testing.T) {
	result := parser.ParsePing(pingOutputEN, "8.8.8.8")

	if result.Status != types.StatusSuccess {
		t.Fatalf("expected success, got %s (error: %s)", result.Status, result.ErrorMessage)
	}
	if result.PacketsSent != 4 || result.PacketsReceived != 4 {
		t.Errorf("expected 4/4 packets, got %d/%d", result.PacketsSent, result.PacketsReceived)
	}
	if result.PacketLossPercent != 0 {
		t.Errorf("expected 0%% loss, got %v", result.PacketLossPercent)
	}
	if result.MinTime != 10.0 || result.AvgTime != 12.5 || result.MaxTime != 15.0 || result.MdevTime != 1.2 {
		t.Errorf("unexpected rtt quartet: %v/%v/%v/%v",
			result.MinTime, result.AvgTime, result.MaxTime, result.MdevTime)
	}
	if result.RawOutput != pingOutputEN {
		t.Error("raw output not preserved verbatim")
	}
}

func TestParsePing_LocalizedStatistics(t *testing.T) {
	result := parser.ParsePing(pingOutputPT, "google.com")

	if result.Status != types.StatusSuccess {
		t.Fatalf("expected success, got %s", result.Status)
	}
	if result.PacketsSent != 4 || result.PacketsReceived != 4 {
		t.Errorf("expected 4/4 packets, got %d/%d", result.PacketsSent, result.PacketsReceived)
	}
	if result.AvgTime != 11.5 {
		t.Errorf("expected avg 11.5, got %v", result.AvgTime)
	}
}

func TestParsePing_TotalLossNoRTT(t *testing.T) {
	result := parser.ParsePing(pingOutputTotalLoss, "10.0.0.99")

	if result.Status != types.StatusFailed {
		t.Fatalf("expected failed at 100%% loss, got %s", result.Status)
	}
	if result.PacketLossPercent != 100 {
		t.Errorf("expected 100%% loss, got %v", result.PacketLossPercent)
	}
	if result.AvgTime != 0 {
		t.Errorf("expected avg 0 with no rtt line, got %v", result.AvgTime)
	}
}

func TestParsePing_StatusBands(t *testing.T) {
	tests := []struct {
		name     string
		loss     string
		received string
		want     types.TestStatus
	}{
		{"no loss", "0", "4", types.StatusSuccess},
		{"half loss at boundary", "50", "2", types.StatusSuccess},
		{"significant loss", "75", "1", types.StatusWarning},
		{"total loss", "100", "0", types.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := "4 packets transmitted, " + tt.received + " received, " + tt.loss + "% packet loss, time 3004ms\n" +
				"rtt min/avg/max/mdev = 10.0/12.0/14.0/1.0 ms\n"
			if tt.loss == "100" {
				output = "4 packets transmitted, 0 received, 100% packet loss, time 3004ms\n"
			}
			result := parser.ParsePing(output, "host")
			if result.Status != tt.want {
				t.Errorf("loss %s%%: expected %s, got %s", tt.loss, tt.want, result.Status)
			}
		})
	}
}

func TestParsePing_MacOSRoundTripFallback(t *testing.T) {
	output := `PING 8.8.8.8 (8.8.8.8): 56 data bytes
64 bytes from 8.8.8.8: icmp_seq=0 ttl=118 time=44.347 ms

--- 8.8.8.8 ping statistics ---
1 packets transmitted, 1 packets received, 0.0% packet loss
round-trip min/avg/max/stddev = 44.347/44.347/44.347/0.000 ms
`
	result := parser.ParsePing(output, "8.8.8.8")
	if result.AvgTime != 44.347 {
		t.Errorf("expected round-trip fallback to yield avg 44.347, got %v", result.AvgTime)
	}
}

func TestParsePing_LossWithoutRTTKeepsStatsIndependent(t *testing.T) {
	// A statistics line without an RTT summary is still a measurement.
	output := "4 packets transmitted, 2 received, 50% packet loss, time 3010ms\n"
	result := parser.ParsePing(output, "host")
	if result.PacketsSent != 4 || result.PacketsReceived != 2 {
		t.Errorf("expected 4/2 packets, got %d/%d", result.PacketsSent, result.PacketsReceived)
	}
	if result.AvgTime != 0 {
		t.Errorf("expected rtt fields to stay 0, got %v", result.AvgTime)
	}
	if result.Status != types.StatusSuccess {
		t.Errorf("expected success at 50%% loss with stats line, got %s", result.Status)
	}
}

func TestParsePing_GarbageInput(t *testing.T) {
	for _, output := range []string{"", "ping: unknown host example.invalid", "no stats here at all"} {
		result := parser.ParsePing(output, "example.invalid")
		if result.Status != types.StatusFailed {
			t.Errorf("output %q: expected failed, got %s", output, result.Status)
		}
		if result.RawOutput != output {
			t.Errorf("output %q: raw output not preserved", output)
		}
	}
}

func TestParsePing_Idempotent(t *testing.T) {
	first := parser.ParsePing(pingOutputEN, "8.8.8.8")
	second := parser.ParsePing(pingOutputEN, "8.8.8.8")

	// Timestamps differ per call; everything parsed must not.
	first.Timestamp = second.Timestamp
	if first != second {
		t.Error("parsing the same text twice yielded different results")
	}
}

func TestParsePing_CustomWarnThreshold(t *testing.T) {
	thresholds := parser.DefaultThresholds()
	thresholds.PingWarnLoss = 20
	p := parser.New(thresholds)

	output := "4 packets transmitted, 3 received, 25% packet loss, time 3004ms\n" +
		"rtt min/avg/max/mdev = 10.0/12.0/14.0/1.0 ms\n"
	if got := p.ParsePing(output, "host").Status; got != types.StatusWarning {
		t.Errorf("expected warning with lowered threshold, got %s", got)
	}
	if got := parser.ParsePing(output, "host").Status; got != types.StatusSuccess {
		t.Errorf("expected success with default threshold, got %s", got)
	}
}

func TestParsePing_TargetCarriedThrough(t *testing.T) {
	result := parser.ParsePing(pingOutputEN, "dns.google")
	if result.Target != "dns.google" {
		t.Errorf("expected target dns.google, got %q", result.Target)
	}
	if strings.Contains(result.ErrorMessage, "panic") {
		t.Errorf("unexpected error message: %s", result.ErrorMessage)
	}
}
