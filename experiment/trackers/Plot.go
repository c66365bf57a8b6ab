package trackers

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RunningMean returns the mean of each prefix of data
func RunningMean(data []float64) []float64 {
	means := make([]float64, len(data))
	var sum float64
	for i, v := range data {
		sum += v
		means[i] = sum / float64(i+1)
	}
	return means
}

// Plot renders an HTML page to w with a line chart of the reward on
// every tick alongside its running mean
func Plot(w io.Writer, title string, rewards []float64) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d ticks", len(rewards)),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Tick"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Reward"}),
	)

	ticks := make([]string, len(rewards))
	for i := range ticks {
		ticks[i] = fmt.Sprintf("%d", i+1)
	}
	line.SetXAxis(ticks)

	reward := make([]opts.LineData, len(rewards))
	for i, r := range rewards {
		reward[i] = opts.LineData{Value: r}
	}
	mean := make([]opts.LineData, len(rewards))
	for i, m := range RunningMean(rewards) {
		mean[i] = opts.LineData{Value: m}
	}

	line.AddSeries("Reward", reward)
	line.AddSeries("Running Mean", mean,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	page := components.NewPage()
	page.AddCharts(line)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("plot: %v", err)
	}
	return nil
}
