package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/loadwatch/loadwatch/internal/cache"
	"github.com/loadwatch/loadwatch/internal/errors"
	"github.com/loadwatch/loadwatch/internal/ui"
)

var (
	watchCacheFlag    string
	watchIntervalFlag string
)

// watchCmd renders the cache file as a live-updating table.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of the snapshot as collectors refresh it",
	Long: `Watch the cache file and redraw whenever the refresh interval fires.

The file is re-read fresh on every tick rather than cached in memory,
so the view always reflects the latest collection run, including runs
made by a scheduler in the background.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  r           Force refresh

Examples:
  loadwatch watch
  loadwatch watch --interval 5s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval := 2 * time.Second
		if watchIntervalFlag != "" {
			parsed, err := time.ParseDuration(watchIntervalFlag)
			if err != nil {
				return errors.WrapWithCode(err, errors.ErrConfig,
					fmt.Sprintf("Invalid interval: %s", watchIntervalFlag),
					"Use a valid duration like 2s, 5s, or 1m")
			}
			if parsed < 500*time.Millisecond {
				return errors.New(errors.ErrConfig,
					"Interval too short",
					"Minimum interval is 500ms")
			}
			interval = parsed
		}

		cachePath, err := resolveCachePath(watchCacheFlag)
		if err != nil {
			return err
		}

		p := tea.NewProgram(newWatchModel(cachePath, interval))
		_, err = p.Run()
		return err
	},
}

// tickMsg fires when the refresh interval elapses.
type tickMsg time.Time

// watchModel is the Bubble Tea model for the live snapshot view.
type watchModel struct {
	cachePath string
	interval  time.Duration
	table     table.Model
	entries   []cache.Entry
	readErr   error
	lastRead  time.Time
	quitting  bool
}

var (
	watchTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorInfo)
	watchFooterStyle = lipgloss.NewStyle().Foreground(ui.ColorMuted)
	watchErrorStyle  = lipgloss.NewStyle().Foreground(ui.ColorError)
)

func newWatchModel(cachePath string, interval time.Duration) watchModel {
	m := watchModel{
		cachePath: cachePath,
		interval:  interval,
		table: ui.NewTable([]ui.TableColumn{
			{Title: "HOST", Width: 24},
			{Title: "LOAD AVERAGE (1m, 5m, 15m)", Width: 28},
		}, nil),
	}
	m.refresh()
	return m
}

// refresh re-reads the cache file. Always a fresh read; the file may
// have been atomically replaced since the last tick.
func (m *watchModel) refresh() {
	entries, err := cache.ReadFile(m.cachePath)
	m.readErr = err
	m.lastRead = time.Now()
	if err != nil {
		return
	}
	m.entries = entries

	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		value := e.Value
		if e.Failed() {
			value = "unreachable"
		}
		rows = append(rows, table.Row{e.Host, value})
	}
	m.table.SetRows(rows)
	m.table.SetHeight(len(rows) + 2) // header renders as title + border
}

func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m watchModel) Init() tea.Cmd {
	return m.tick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, m.tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.refresh()
			return m, nil
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}

	var view string
	view += watchTitleStyle.Render("loadwatch") + "  " + watchFooterStyle.Render(m.cachePath) + "\n\n"

	if m.readErr != nil {
		view += watchErrorStyle.Render("Can't read the cache file") + "\n"
		view += watchFooterStyle.Render("Waiting for 'loadwatch collect' to produce a snapshot...") + "\n"
	} else {
		view += m.table.View() + "\n"
	}

	view += "\n" + watchFooterStyle.Render(fmt.Sprintf(
		"refreshed %s ago • every %s • q quit • r refresh",
		time.Since(m.lastRead).Round(time.Second), m.interval))
	return view
}

func init() {
	watchCmd.Flags().StringVar(&watchCacheFlag, "cache", "", "override the cache file path")
	watchCmd.Flags().StringVar(&watchIntervalFlag, "interval", "2s", "refresh interval (e.g., 2s, 5s, 1m)")

	rootCmd.AddCommand(watchCmd)
}
