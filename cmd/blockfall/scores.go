package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/blockfall/internal/ledger"
	"github.com/vovakirdan/blockfall/internal/platform/tui"
	"github.com/vovakirdan/blockfall/internal/storage"
)

var (
	flagTier        int
	flagInteractive bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the record tables",
	Long: `Display the record table of every difficulty tier, or of one tier with
--tier. Statistics from the game history are shown below each table.

Examples:
  blockfall scores
  blockfall scores --tier 6
  blockfall scores -i`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagTier, "tier", 0, "Block types of the tier to show (4..8, 0 = all)")
	scoresCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse records and history interactively")
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func runScores(cmd *cobra.Command, args []string) error {
	tiers := make([]int, 0, ledger.Tiers)
	if flagTier != 0 {
		t, err := ledger.Tier(flagTier)
		if err != nil {
			return err
		}
		tiers = append(tiers, t)
	} else {
		for t := range ledger.Tiers {
			tiers = append(tiers, t)
		}
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	conf, err := e.store().LoadConfig()
	if err != nil {
		e.log.Debug("using default records", "err", err)
	}

	history := e.openHistory()
	if history != nil {
		defer history.Close()
	}

	if flagInteractive {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		var src tui.HistorySource
		if history != nil {
			src = history
		}
		return tui.RunScoreboard(conf.Records, src, tiers[0], width, height)
	}

	for i, t := range tiers {
		if i > 0 {
			fmt.Println()
		}
		bt := ledger.BlockTypes(t)
		fmt.Println(headingStyle.Render(fmt.Sprintf("Records - %d block types", bt)))
		fmt.Println(recordTable(conf.Records[t]))
		if history != nil {
			printStats(history, bt)
		}
	}
	return nil
}

func recordTable(tb ledger.Table) string {
	rows := make([][]string, 0, len(tb))
	for i, r := range tb {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.Name,
			strconv.Itoa(r.Level),
			strconv.Itoa(r.Score),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("#", "Name", "Level", "Score").
		Rows(rows...).
		String()
}

func printStats(h *storage.Store, blockTypes int) {
	st, err := h.Stats(blockTypes)
	if err != nil {
		fmt.Println(dimStyle.Render("history unavailable: " + err.Error()))
		return
	}
	if st.Games == 0 {
		fmt.Println(dimStyle.Render("No games played at this difficulty yet."))
		return
	}
	fmt.Println(dimStyle.Render(fmt.Sprintf(
		"%d games, best %d, %d lines, %d figures, %s played",
		st.Games, st.BestScore, st.TotalLines, st.TotalFigures, st.TotalTime.Round(time.Second),
	)))
}
