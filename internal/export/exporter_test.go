package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

func sampleReport() *types.Report {
	started := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	return &types.Report{
		RunID:       "run-abc",
		StartedAt:   started,
		CompletedAt: started.Add(45 * time.Second),
		ISP: &types.ISPInfo{
			Provider:        "Vivo/Telefonica",
			PublicIP:        "200.142.1.2",
			IPType:          types.IPTypePublic,
			ConfidenceLevel: 1,
		},
		Tests: []types.NetworkTest{
			{
				Target:    "8.8.8.8",
				Timestamp: started,
				Ping: &types.PingResult{
					Status:            types.StatusSuccess,
					Target:            "8.8.8.8",
					PacketsSent:       4,
					PacketsReceived:   4,
					PacketLossPercent: 0,
					MinTime:           10,
					AvgTime:           12.5,
					MaxTime:           15,
				},
				Traceroute: &types.TracerouteResult{
					Status:    types.StatusSuccess,
					Target:    "8.8.8.8",
					TotalHops: 9,
				},
				MTR: &types.MTRResult{
					Status:           types.StatusWarning,
					Target:           "8.8.8.8",
					TotalHops:        9,
					TotalLossPercent: 8.5,
					AvgLatency:       14.2,
				},
			},
			{
				Target:    "10.0.0.99",
				Timestamp: started,
				Ping: &types.PingResult{
					Status:            types.StatusFailed,
					Target:            "10.0.0.99",
					PacketLossPercent: 100,
				},
			},
		},
		Summary: types.TestSummary{
			TotalTests:      2,
			SuccessfulTests: 1,
			FailedTests:     1,
			SuccessRate:     50,
			AverageLatency:  12.5,
			OverallStatus:   types.OverallFair,
		},
	}
}

func TestWriteAll_FormatsAndFilenames(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)

	paths, err := e.WriteAll(sampleReport(), []string{"json", "csv", "text"})
	if err != nil {
		t.Fatalf("write all: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 paths, got %d: %v", len(paths), paths)
	}

	for format, path := range paths {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s report missing: %v", format, err)
		}
		name := filepath.Base(path)
		if !strings.HasPrefix(name, "network_test_vivo_telefonica_") {
			t.Errorf("unexpected %s filename %s", format, name)
		}
	}
}

func TestWriteJSON_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)

	path, err := e.WriteJSON(sampleReport(), filepath.Join(dir, "report.json"))
	if err != nil {
		t.Fatalf("write json: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var report types.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.RunID != "run-abc" || len(report.Tests) != 2 {
		t.Errorf("round trip lost data: %+v", report)
	}
}

func TestWriteCSV_RowsAndPlaceholders(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)

	path, err := e.WriteCSV(sampleReport(), filepath.Join(dir, "report.csv"))
	if err != nil {
		t.Fatalf("write csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Target" || len(rows[0]) != 13 {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "8.8.8.8" || rows[1][1] != "success" || rows[1][3] != "12.5" {
		t.Errorf("unexpected first row: %v", rows[1])
	}
	// Second target ran ping only; the other columns are placeholders.
	if rows[2][4] != "N/A" || rows[2][9] != "N/A" {
		t.Errorf("expected N/A placeholders, got %v", rows[2])
	}
}

func TestWriteText_Sections(t *testing.T) {
	content := textContent(sampleReport())

	for _, want := range []string{
		"NETWORK DIAGNOSTIC REPORT",
		"ISP:       Vivo/Telefonica",
		"Success rate: 50.0%",
		"TEST 1: 8.8.8.8",
		"Latency: min=10.0ms avg=12.5ms max=15.0ms",
		"Worst loss: 8.5%",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("text report missing %q", want)
		}
	}
	// A failed ping shows no latency line.
	if strings.Contains(content, "avg=0.0ms") {
		t.Error("failed ping should not render latency")
	}
}

func TestWriteChart_ProducesPNG(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)

	path, err := e.WriteChart(sampleReport(), filepath.Join(dir, "report.png"))
	if err != nil {
		t.Fatalf("write chart: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(data) < 8 || !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG file")
	}
}

func TestWriteChart_EmptyReport(t *testing.T) {
	e := New(t.TempDir())
	report := &types.Report{RunID: "empty"}
	if _, err := e.WriteChart(report, filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Fatal("expected error for empty report")
	}
}

func TestRenderConsole(t *testing.T) {
	var buf bytes.Buffer
	RenderConsole(&buf, sampleReport())

	out := buf.String()
	for _, want := range []string{
		"TARGET", "8.8.8.8", "OK", "FAIL",
		"2 tests: 1 ok, 0 warning, 1 failed | 50.0% success (fair)",
		"Connection: 200.142.1.2 via Vivo/Telefonica",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q\n%s", want, out)
		}
	}
}
