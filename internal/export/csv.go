package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

var csvHeader = []string{
	"Target", "Ping_Status", "Ping_Loss_%", "Ping_Avg_ms",
	"Traceroute_Status", "Traceroute_Hops",
	"MTR_Status", "MTR_Loss_%", "MTR_Avg_ms",
	"Speed_Status", "Download_Mbps", "Upload_Mbps", "Speed_Ping_ms",
}

// WriteCSV writes one row per target with the headline figures of each
// sub-test. Missing sub-tests render as N/A.
func (e *Exporter) WriteCSV(report *types.Report, path string) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}

	for _, test := range report.Tests {
		row := []string{test.Target}

		if ping := test.Ping; ping != nil {
			row = append(row, string(ping.Status),
				fmt.Sprintf("%.1f", ping.PacketLossPercent),
				fmt.Sprintf("%.1f", ping.AvgTime))
		} else {
			row = append(row, "N/A", "N/A", "N/A")
		}

		if tr := test.Traceroute; tr != nil {
			row = append(row, string(tr.Status), strconv.Itoa(tr.TotalHops))
		} else {
			row = append(row, "N/A", "N/A")
		}

		if mtr := test.MTR; mtr != nil {
			row = append(row, string(mtr.Status),
				fmt.Sprintf("%.1f", mtr.TotalLossPercent),
				fmt.Sprintf("%.1f", mtr.AvgLatency))
		} else {
			row = append(row, "N/A", "N/A", "N/A")
		}

		if speed := test.SpeedTest; speed != nil {
			row = append(row, string(speed.Status),
				fmt.Sprintf("%.1f", speed.DownloadMbps),
				fmt.Sprintf("%.1f", speed.UploadMbps),
				fmt.Sprintf("%.1f", speed.PingLatencyMs))
		} else {
			row = append(row, "N/A", "N/A", "N/A", "N/A")
		}

		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}
