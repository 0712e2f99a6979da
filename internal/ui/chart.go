package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// yAxisWidth is the space reserved for price labels left of the plot.
const yAxisWidth = 10

var (
	lineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow, like the original chart
	axisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	volumeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// blocks are partial-height bars for the volume chart, lowest to highest.
var blocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// downsample reduces series to width buckets, averaging each bucket, so a
// long history still fits the terminal. Series at or under width pass
// through unchanged.
func downsample(series []float64, width int) []float64 {
	if width <= 0 || len(series) <= width {
		return series
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		lo := i * len(series) / width
		hi := (i + 1) * len(series) / width
		if hi <= lo {
			hi = lo + 1
		}
		var sum float64
		for _, v := range series[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// seriesBounds returns the min and max of series; zeros when empty.
func seriesBounds(series []float64) (min, max float64) {
	if len(series) == 0 {
		return 0, 0
	}
	min, max = series[0], series[0]
	for _, v := range series[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// axisDates picks the first, middle and last date labels for the x axis.
func axisDates(dates []string) (first, mid, last string) {
	if len(dates) == 0 {
		return "", "", ""
	}
	return dates[0], dates[len(dates)/2], dates[len(dates)-1]
}

// renderPriceChart draws the price series as a dot line with a y axis of
// min/max labels and an x axis of first/mid/last dates.
func renderPriceChart(prices []float64, dates []string, width, height int) string {
	plotW := width - yAxisWidth
	plotH := height - 2 // bottom border and date labels
	if plotW < 2 || plotH < 2 || len(prices) == 0 {
		return ""
	}

	sampled := downsample(prices, plotW)
	min, max := seriesBounds(sampled)
	span := max - min
	if span == 0 {
		span = 1 // flat series draws on the middle row
	}

	// rows[0] is the top. Each sampled column gets one dot.
	rows := make([][]rune, plotH)
	for i := range rows {
		rows[i] = []rune(strings.Repeat(" ", plotW))
	}
	for x, v := range sampled {
		y := int(math.Round((max - v) / span * float64(plotH-1)))
		rows[y][x] = '•'
	}

	var b strings.Builder
	for i, row := range rows {
		label := strings.Repeat(" ", yAxisWidth-2)
		switch i {
		case 0:
			label = fmt.Sprintf("%*.2f", yAxisWidth-2, max)
		case plotH - 1:
			label = fmt.Sprintf("%*.2f", yAxisWidth-2, min)
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(axisStyle.Render(" │"))
		b.WriteString(lineStyle.Render(string(row)))
		b.WriteByte('\n')
	}

	b.WriteString(strings.Repeat(" ", yAxisWidth-1))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", plotW)))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", yAxisWidth))
	b.WriteString(labelStyle.Render(dateAxis(dates, plotW)))

	return b.String()
}

// renderVolumeChart draws volumes as partial-height bars.
func renderVolumeChart(volumes []int64, dates []string, width, height int) string {
	plotW := width - yAxisWidth
	plotH := height - 2
	if plotW < 2 || plotH < 2 || len(volumes) == 0 {
		return ""
	}

	series := make([]float64, len(volumes))
	for i, v := range volumes {
		series[i] = float64(v)
	}
	sampled := downsample(series, plotW)
	_, max := seriesBounds(sampled)
	if max == 0 {
		max = 1
	}

	rows := make([][]rune, plotH)
	for i := range rows {
		rows[i] = []rune(strings.Repeat(" ", plotW))
	}
	levels := plotH * len(blocks)
	for x, v := range sampled {
		filled := int(math.Ceil(v / max * float64(levels)))
		for y := 0; y < plotH; y++ {
			// y counts from the bottom of the plot.
			base := y * len(blocks)
			row := plotH - 1 - y
			switch {
			case filled >= base+len(blocks):
				rows[row][x] = '█'
			case filled > base:
				rows[row][x] = blocks[filled-base-1]
			}
		}
	}

	var b strings.Builder
	for i, row := range rows {
		label := strings.Repeat(" ", yAxisWidth-2)
		if i == 0 {
			label = fmt.Sprintf("%*s", yAxisWidth-2, FormatVolume(int64(max)))
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(axisStyle.Render(" │"))
		b.WriteString(volumeStyle.Render(string(row)))
		b.WriteByte('\n')
	}

	b.WriteString(strings.Repeat(" ", yAxisWidth-1))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", plotW)))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", yAxisWidth))
	b.WriteString(labelStyle.Render(dateAxis(dates, plotW)))

	return b.String()
}

// dateAxis lays first/mid/last date labels across width columns.
func dateAxis(dates []string, width int) string {
	first, mid, last := axisDates(dates)
	if width < len(first)+len(mid)+len(last)+2 {
		return padOrTrunc(first, width)
	}
	gap := width - len(first) - len(mid) - len(last)
	left := gap / 2
	right := gap - left
	return first + strings.Repeat(" ", left) + mid + strings.Repeat(" ", right) + last
}
