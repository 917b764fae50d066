package output

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/dotcommander/moyenne/internal/grades"
)

// HTMLFormatter renders the report as a standalone page of charts.
type HTMLFormatter struct {
	opts Options
}

// NewHTMLFormatter creates a new HTMLFormatter
func NewHTMLFormatter(opts Options) *HTMLFormatter {
	return &HTMLFormatter{opts: opts}
}

// Format writes the chart page to the configured output file, or to w.
func (f *HTMLFormatter) Format(w io.Writer, r Report) error {
	page := components.NewPage()
	page.PageTitle = "Moyenne · " + r.Title()
	page.AddCharts(
		f.rankingChart(r),
		f.radarChart(r),
		f.passFailChart(r),
		f.contributionChart(r),
	)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render error: %w", err)
	}

	if f.opts.OutputFile != "" {
		if err := os.WriteFile(f.opts.OutputFile, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("error writing HTML to file: %w", err)
		}
		return nil
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (f *HTMLFormatter) subtitle(r Report) string {
	return fmt.Sprintf("%s · Moyenne Générale %s/20", r.YearLabel, f.opts.grade(r.Result.GeneralAverage))
}

// byAverage returns the counted rows, best first.
func byAverage(r Report) []Row {
	rows := r.Counted()
	sort.SliceStable(rows, func(i, j int) bool {
		return *rows[i].Average > *rows[j].Average
	})
	return rows
}

func (f *HTMLFormatter) rankingChart(r Report) *charts.Bar {
	rows := byAverage(r)
	names := make([]string, len(rows))
	data := make([]opts.BarData, len(rows))
	for i, row := range rows {
		names[i] = row.Name
		data[i] = opts.BarData{Name: row.Name, Value: roundTo(*row.Average, f.opts.Decimals)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Classement des matières", Subtitle: f.subtitle(r)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 20, Name: "/20"}),
	)
	bar.SetXAxis(names).
		AddSeries("Moyenne", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
			charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{Name: "Seuil", YAxis: grades.PassThreshold}),
		)
	return bar
}

func (f *HTMLFormatter) radarChart(r Report) *charts.Radar {
	rows := r.Counted()
	indicators := make([]*opts.Indicator, len(rows))
	values := make([]float64, len(rows))
	for i, row := range rows {
		indicators[i] = &opts.Indicator{Name: row.Name, Max: 20}
		values[i] = roundTo(*row.Average, f.opts.Decimals)
	}

	radar := charts.NewRadar()
	radar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{Title: "Vue d'ensemble des matières"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithRadarComponentOpts(opts.RadarComponent{Indicator: indicators, Shape: "polygon"}),
	)
	radar.AddSeries("Moyennes", []opts.RadarData{{Name: r.Title(), Value: values}})
	return radar
}

func (f *HTMLFormatter) passFailChart(r Report) *charts.Pie {
	passed, failed := 0, 0
	for _, row := range r.Counted() {
		if *row.Average >= grades.PassThreshold {
			passed++
		} else {
			failed++
		}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "600px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Répartition Admis/Ajourné", Subtitle: fmt.Sprintf("%d matières", passed+failed)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("Matières", []opts.PieData{
		{Name: "Admis", Value: passed},
		{Name: "Ajourné", Value: failed},
	}, charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
	)
	return pie
}

func (f *HTMLFormatter) contributionChart(r Report) *charts.Pie {
	rows := r.Counted()
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Share > rows[j].Share })
	data := make([]opts.PieData, len(rows))
	for i, row := range rows {
		data[i] = opts.PieData{Name: row.Name, Value: roundTo(row.Share*100, 1)}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "600px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Contribution des coefficients", Subtitle: "part de la moyenne générale (%)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("Contribution", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}%"}),
	)
	return pie
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
