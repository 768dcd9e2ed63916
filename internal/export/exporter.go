// Package export renders completed reports to files (JSON, CSV, plain
// text, PNG latency chart) and to the terminal. All formats are generated
// from the same normalized report; none of them re-parse raw tool output.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/logging"
	diagerr "github.com/felipecaninnovaes/diagnostico-de-rede/pkg/errors"
	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

type Exporter struct {
	outputDir string
	log       *logging.Logger
}

func New(outputDir string) *Exporter {
	return &Exporter{
		outputDir: outputDir,
		log:       logging.NewLogger("export"),
	}
}

// WriteAll renders the report in every requested format and returns the
// paths written, keyed by format name. A failing format is logged and
// skipped; the error returned is the last failure, so callers can warn
// without losing the formats that did succeed.
func (e *Exporter) WriteAll(report *types.Report, formats []string) (map[string]string, error) {
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return nil, diagerr.ErrExportFailure("all", err)
	}

	base := e.baseFilename(report)
	paths := make(map[string]string)
	var lastErr error

	for _, format := range formats {
		var (
			path string
			err  error
		)
		switch strings.ToLower(format) {
		case "json":
			path, err = e.WriteJSON(report, base+".json")
		case "csv":
			path, err = e.WriteCSV(report, base+".csv")
		case "text":
			path, err = e.WriteText(report, base+".txt")
		case "chart":
			path, err = e.WriteChart(report, base+".png")
		default:
			err = fmt.Errorf("unknown format %q", format)
		}
		if err != nil {
			e.log.Warn("export failed",
				logging.Field{Key: "format", Value: format},
				logging.Field{Key: "error", Value: err})
			lastErr = diagerr.ErrExportFailure(format, err)
			continue
		}
		paths[strings.ToLower(format)] = path
		e.log.Info("report written",
			logging.Field{Key: "format", Value: format},
			logging.Field{Key: "path", Value: path})
	}
	return paths, lastErr
}

// baseFilename builds network_test_<provider>_<timestamp> so reports from
// different connections sort separately in the output directory.
func (e *Exporter) baseFilename(report *types.Report) string {
	provider := "unknown"
	if report.ISP != nil && report.ISP.Provider != "" {
		provider = report.ISP.Provider
	}
	stamp := report.StartedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}
	return filepath.Join(e.outputDir, fmt.Sprintf("network_test_%s_%s",
		sanitizeFilename(provider), stamp.Format("20060102_150405")))
}

func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
