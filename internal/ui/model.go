// Package ui renders the dashboard: a chart pane for the selected ticker
// and a list pane for the watchlist. It is a pure reader of the engine's
// store, taking a fresh snapshot only when the store generation moved, and
// it feeds user input back to the engine as messages.
package ui

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bloatoo/tuinance/internal/engine"
	"github.com/bloatoo/tuinance/internal/market"
)

// Metric selects what the chart pane draws.
type Metric int

const (
	MetricPrice Metric = iota
	MetricVolume
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	symbolStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	nameStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	priceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	gainStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	errStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	intervalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedBG    = lipgloss.Color("236")
	borderStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("13"))
)

type tickMsg time.Time

// Model is the bubbletea model for the dashboard.
type Model struct {
	eng     *engine.Engine
	log     *slog.Logger
	refresh time.Duration

	snap    market.Snapshot
	lastGen uint64

	selected int
	showList bool
	metric   Metric
	spin     spinner.Model

	width  int
	height int
}

// New creates the dashboard model over a running engine.
func New(eng *engine.Engine, refresh time.Duration, log *slog.Logger) Model {
	if log == nil {
		log = slog.Default()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = intervalStyle

	return Model{
		eng:      eng,
		log:      log.With("component", "ui"),
		refresh:  refresh,
		snap:     eng.Store().Snapshot(),
		showList: true,
		spin:     sp,
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init kicks off the engine and the render cadence.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { m.eng.Send(engine.Start{}); return nil },
		m.tickCmd(),
		m.spin.Tick,
	)
}

// selectedTicker returns the snapshot record under the cursor, or nil when
// the snapshot is empty.
func (m *Model) selectedTicker() *market.Ticker {
	if len(m.snap.Tickers) == 0 {
		return nil
	}
	if m.selected >= len(m.snap.Tickers) {
		m.selected = len(m.snap.Tickers) - 1
	}
	return &m.snap.Tickers[m.selected]
}

// shiftInterval walks the selected ticker's window through the cycle and
// tells the engine. The label updates as soon as the worker applies the
// message; the fetched series follows whenever its task completes.
func (m *Model) shiftInterval(forward bool) {
	tk := m.selectedTicker()
	if tk == nil {
		return
	}
	iv := tk.Interval
	if forward {
		iv = iv.Next()
	} else {
		iv = iv.Prev()
	}
	m.eng.Send(engine.SetInterval{Symbol: tk.Symbol, Interval: iv})
}

// Update handles input, the render tick and the spinner.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.eng.Close()
			return m, tea.Quit
		case "up", "k":
			if n := len(m.snap.Tickers); n > 0 {
				m.selected = (m.selected + n - 1) % n
			}
		case "down", "j":
			if n := len(m.snap.Tickers); n > 0 {
				m.selected = (m.selected + 1) % n
			}
		case "right", "l":
			m.shiftInterval(true)
		case "left", "h":
			m.shiftInterval(false)
		case "tab":
			m.showList = !m.showList
		case "v":
			if m.metric == MetricPrice {
				m.metric = MetricVolume
			} else {
				m.metric = MetricPrice
			}
		}
		return m, nil

	case tickMsg:
		// Snapshot only when something actually changed since last frame.
		if gen := m.eng.Store().Generation(); gen != m.lastGen {
			m.snap = m.eng.Store().Snapshot()
			m.lastGen = gen
		}
		return m, m.tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the list pane and the chart pane.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading…"
	}

	chartWidth := m.width
	var panes []string

	if m.showList {
		listWidth := m.width / 4
		if listWidth < 24 {
			listWidth = 24
		}
		chartWidth = m.width - listWidth
		panes = append(panes, m.renderList(listWidth, m.height))
	}
	panes = append(panes, m.renderChartPane(chartWidth, m.height))

	return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}

// renderList draws the watchlist with realtime prices and change colours.
func (m Model) renderList(width, height int) string {
	inner := width - 2 // border columns

	var b strings.Builder
	b.WriteString(titleStyle.Render(padOrTrunc("Tickers", inner)))
	b.WriteByte('\n')

	for i, tk := range m.snap.Tickers {
		sym := symbolStyle
		name := nameStyle
		if i == m.selected {
			sym = sym.Background(selectedBG)
			name = name.Background(selectedBG)
		}

		change := tk.ChangePct()
		changeStyle := gainStyle
		if change < 0 {
			changeStyle = lossStyle
		}

		indicator := " "
		switch tk.Status {
		case market.StatusLoading:
			indicator = m.spin.View()
		case market.StatusFailed:
			indicator = errStyle.Render("!")
		}

		b.WriteString(sym.Render(padOrTrunc(tk.Symbol, 7)))
		b.WriteString(priceStyle.Render(padOrTrunc(FormatPrice(tk.RealtimePrice()), 9)))
		b.WriteString(changeStyle.Render(padOrTrunc(FormatChange(change), inner-17)))
		b.WriteString(indicator)
		b.WriteByte('\n')
		b.WriteString(name.Render(padOrTrunc("  "+tk.Name, inner)))
		b.WriteByte('\n')
	}

	b.WriteString(helpStyle.Render(padOrTrunc("↑/↓ symbol  ←/→ window", inner)))
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render(padOrTrunc("tab list  v metric  q quit", inner)))

	return borderStyle.Width(inner).Height(height - 2).Render(b.String())
}

// renderChartPane draws the header and the chart for the selected ticker.
func (m Model) renderChartPane(width, height int) string {
	inner := width - 2
	tk := m.selectedTicker()
	if tk == nil {
		return borderStyle.Width(inner).Height(height - 2).Render("no tickers configured")
	}

	metricLabel := "price"
	if m.metric == MetricVolume {
		metricLabel = "volume"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(tk.Symbol))
	if tk.Name != "" {
		b.WriteString(nameStyle.Render("  " + tk.Name))
	}
	b.WriteString("  ")
	b.WriteString(intervalStyle.Render(tk.Interval.String() + " " + metricLabel))
	b.WriteString("  ")
	b.WriteString(priceStyle.Render(FormatPrice(tk.RealtimePrice())))
	switch tk.Status {
	case market.StatusLoading:
		b.WriteString("  " + m.spin.View())
	case market.StatusFailed:
		b.WriteString("  " + errStyle.Render("fetch failed: "+tk.LastError))
	}
	b.WriteString("\n\n")

	chartHeight := height - 5 // border, header, blank line
	if m.metric == MetricVolume {
		b.WriteString(renderVolumeChart(tk.Volumes, tk.Dates, inner, chartHeight))
	} else {
		b.WriteString(renderPriceChart(tk.Prices, tk.Dates, inner, chartHeight))
	}

	return borderStyle.Width(inner).Height(height - 2).Render(b.String())
}
