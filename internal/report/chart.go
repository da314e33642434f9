package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"matrix-bruteforce/internal/bruteforce"
)

// Scatter plots rand1 against rand2 for every match, one series per
// ciphertext vector that produced at least one match.
func Scatter(target string, matches []bruteforce.Match) *charts.Scatter {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Matches for %q", target),
			Subtitle: fmt.Sprintf("%d candidate (rand1, rand2) pairs", len(matches)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "rand1", Type: "value", Min: 0, Max: 100}),
		charts.WithYAxisOpts(opts.YAxis{Name: "rand2", Type: "value", Min: 0, Max: 100}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)

	var order []int
	series := make(map[int][]opts.ScatterData)
	for _, m := range matches {
		if _, ok := series[m.Ciphertext]; !ok {
			order = append(order, m.Ciphertext)
		}
		series[m.Ciphertext] = append(series[m.Ciphertext], opts.ScatterData{
			Name:  m.String(),
			Value: []int{m.Rand1, m.Rand2},
		})
	}
	for _, idx := range order {
		sc.AddSeries(fmt.Sprintf("c[%d]", idx), series[idx],
			charts.WithScatterChartOpts(opts.ScatterChart{Symbol: "circle", SymbolSize: 8}))
	}
	return sc
}

// RenderScatter writes a standalone HTML page with the scatter chart
func RenderScatter(w io.Writer, target string, matches []bruteforce.Match) error {
	page := components.NewPage().SetPageTitle("Brute-force matches")
	page.AddCharts(Scatter(target, matches))
	return page.Render(w)
}
