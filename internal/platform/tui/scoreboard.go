package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/blockfall/internal/ledger"
	"github.com/vovakirdan/blockfall/internal/storage"
)

const maxHistory = 100 // Max history rows per tier

// HistorySource is the part of the history store the scoreboard reads.
type HistorySource interface {
	TopGames(blockTypes, limit int) ([]storage.GameRecord, error)
	Stats(blockTypes int) (storage.Stats, error)
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextTier key.Binding
	PrevTier key.Binding
	Toggle   key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevTier, k.NextTier, k.Toggle, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevTier, k.NextTier},
		{k.Toggle, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextTier: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "harder"),
		),
		PrevTier: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "easier"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "records/history"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel shows the record tables and, when available, the game
// history of one difficulty tier at a time.
type ScoreboardModel struct {
	records  [ledger.Tiers]ledger.Table
	history  HistorySource
	tier     int
	showHist bool
	stats    storage.Stats
	table    table.Model
	help     help.Model
	keys     ScoreboardKeyMap
	width    int
	height   int
	quitting bool
	err      error // Last history query error
}

// NewScoreboardModel creates a scoreboard starting at the given tier.
// history may be nil.
func NewScoreboardModel(records [ledger.Tiers]ledger.Table, history HistorySource, tier, width, height int) ScoreboardModel {
	if tier < 0 || tier >= ledger.Tiers {
		tier = 0
	}
	h := help.New()
	h.Width = width

	m := ScoreboardModel{
		records: records,
		history: history,
		tier:    tier,
		keys:    DefaultScoreboardKeyMap(),
		help:    h,
		width:   width,
		height:  height,
	}
	m.table = m.createTable()
	m.load()
	return m
}

func (m *ScoreboardModel) columns() []table.Column {
	if m.showHist {
		return []table.Column{
			{Title: "#", Width: 4},
			{Title: "Player", Width: ledger.PlayerNameLength + 2},
			{Title: "Score", Width: 8},
			{Title: "Lvl", Width: 4},
			{Title: "Lines", Width: 6},
			{Title: "Time", Width: 8},
			{Title: "Date", Width: 13},
		}
	}
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Name", Width: ledger.PlayerNameLength + 2},
		{Title: "Level", Width: 6},
		{Title: "Score", Width: 8},
	}
}

// createTable creates a new table with appropriate columns.
func (m *ScoreboardModel) createTable() table.Model {
	height := m.height - 9
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// load fills the table for the current tier and mode.
func (m *ScoreboardModel) load() {
	m.table.SetRows(nil)
	m.table.SetColumns(m.columns())
	m.err = nil

	if !m.showHist {
		m.table.SetRows(recordRows(m.records[m.tier]))
		m.table.GotoTop()
		return
	}

	if m.history == nil {
		return
	}
	bt := ledger.BlockTypes(m.tier)
	games, err := m.history.TopGames(bt, maxHistory)
	if err != nil {
		m.err = err
		return
	}
	if m.stats, err = m.history.Stats(bt); err != nil {
		m.err = err
	}
	m.table.SetRows(historyRows(games))
	m.table.GotoTop()
}

func recordRows(tb ledger.Table) []table.Row {
	rows := make([]table.Row, len(tb))
	for i, r := range tb {
		rows[i] = table.Row{
			fmt.Sprintf("%d.", i+1),
			r.Name,
			fmt.Sprintf("%d", r.Level),
			fmt.Sprintf("%d", r.Score),
		}
	}
	return rows
}

func historyRows(games []storage.GameRecord) []table.Row {
	rows := make([]table.Row, len(games))
	for i, g := range games {
		player := g.Player
		if player == "" {
			player = "-"
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d.", i+1),
			player,
			fmt.Sprintf("%d", g.Score),
			fmt.Sprintf("%d", g.Level),
			fmt.Sprintf("%d", g.Lines),
			formatDuration(g.Duration),
			g.PlayedAt.Local().Format("Jan 02 15:04"),
		}
	}
	return rows
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextTier):
			if m.tier < ledger.Tiers-1 {
				m.tier++
				m.load()
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevTier):
			if m.tier > 0 {
				m.tier--
				m.load()
			}
			return m, nil

		case key.Matches(msg, m.keys.Toggle):
			if m.history != nil {
				m.showHist = !m.showHist
				m.load()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.load()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	mode := "RECORDS"
	if m.showHist {
		mode = "HISTORY"
	}
	b.WriteString(titleStyle.Render(centerText(mode+" - "+tierTitle(m.tier), m.width)))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.renderTabs(), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))
	b.WriteString("\n")

	if m.showHist && m.err == nil && m.stats.Games > 0 {
		b.WriteString(fmt.Sprintf("%d games  best %d  %d lines  %s played\n",
			m.stats.Games, m.stats.BestScore, m.stats.TotalLines, formatDuration(m.stats.TotalTime)))
	}

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m ScoreboardModel) renderTabs() string {
	tabStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, ledger.Tiers)
	for i := range tabs {
		label := fmt.Sprintf("%d", ledger.BlockTypes(i))
		if i == m.tier {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = tabStyle.Render(" " + label + " ")
		}
	}
	return strings.Join(tabs, " ")
}

// renderTableContent renders the table or an empty message.
func (m ScoreboardModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)
	switch {
	case m.err != nil:
		return emptyStyle.Render("History unavailable:\n" + m.err.Error())
	case len(m.table.Rows()) == 0:
		return emptyStyle.Render("No games recorded yet.")
	}
	return m.table.View()
}

// Tier returns the selected tier.
func (m ScoreboardModel) Tier() int {
	return m.tier
}

// ShowingHistory reports whether the history table is shown.
func (m ScoreboardModel) ShowingHistory() bool {
	return m.showHist
}

func tierTitle(tier int) string {
	return fmt.Sprintf("%d block types", ledger.BlockTypes(tier))
}

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}

// RunScoreboard runs the scoreboard screen.
func RunScoreboard(records [ledger.Tiers]ledger.Table, history HistorySource, tier, width, height int) error {
	p := tea.NewProgram(
		NewScoreboardModel(records, history, tier, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
