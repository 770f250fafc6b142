package server

import (
	"fmt"
	"io"
	"net/http"

	"commander-league/internal/stats"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WinsChart renders a season's wins per month as a stacked bar chart, one
// series per player.
func (s *LeagueServer) WinsChart(w http.ResponseWriter, r *http.Request) {
	year := r.PathValue("year")
	series, err := s.svc.MonthlyWins(year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderWinsChart(w, year, series); err != nil {
		s.logger.Error().Err(err).Str("year", year).Msg("failed to render wins chart")
	}
}

func newWinsChart(year string, series stats.MonthlySeries) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "900px",
			Height: "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Wins per month, %s", year),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
	)

	bar.SetXAxis(series.Months)
	for _, player := range series.Players() {
		data := make([]opts.BarData, len(series.Months))
		for i, month := range series.Months {
			data[i] = opts.BarData{Value: series.Wins[month][player]}
		}
		bar.AddSeries(player, data, charts.WithBarChartOpts(opts.BarChart{Stack: "wins"}))
	}
	return bar
}

func renderWinsChart(w io.Writer, year string, series stats.MonthlySeries) error {
	if err := newWinsChart(year, series).Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
