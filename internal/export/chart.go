package export

import (
	"fmt"
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

// WriteChart renders a per-target average-latency bar chart as PNG.
// Targets whose ping failed contribute a zero bar so gaps stay visible.
func (e *Exporter) WriteChart(report *types.Report, path string) (string, error) {
	if len(report.Tests) == 0 {
		return "", fmt.Errorf("no tests to chart")
	}

	bars := make([]chart.Value, 0, len(report.Tests))
	for _, test := range report.Tests {
		value := 0.0
		if test.Ping != nil {
			value = test.Ping.AvgTime
		}
		bars = append(bars, chart.Value{
			Label: test.Target,
			Value: value,
			Style: chart.Style{FillColor: barColor(test), StrokeWidth: 0},
		})
	}

	graph := chart.BarChart{
		Title: "Average Latency per Target (ms)",
		TitleStyle: chart.Style{
			FontSize: 14,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:    1024,
		Height:   400,
		BarWidth: 60,
		XAxis: chart.Style{
			StrokeColor: drawing.ColorBlack,
			FontSize:    10,
		},
		YAxis: chart.YAxis{
			Name: "Latency (ms)",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
		},
		Bars: bars,
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return "", err
	}
	return path, nil
}

func barColor(test types.NetworkTest) drawing.Color {
	if test.Ping == nil {
		return drawing.Color{R: 180, G: 180, B: 180, A: 255}
	}
	switch test.Ping.Status {
	case types.StatusSuccess:
		return drawing.Color{R: 60, G: 160, B: 60, A: 255}
	case types.StatusWarning:
		return drawing.Color{R: 230, G: 160, B: 30, A: 255}
	default:
		return drawing.Color{R: 200, G: 60, B: 60, A: 255}
	}
}
