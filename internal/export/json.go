package export

import (
	"encoding/json"
	"os"

	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

// WriteJSON writes the full report document, indented for human reading.
func (e *Exporter) WriteJSON(report *types.Report, path string) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
