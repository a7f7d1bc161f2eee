package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/storage"
)

var (
	flagLimit int
	flagClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently finished games",
	Long: `List the most recent finished games, newest first.

Examples:
  blockfall history
  blockfall history --limit 50
  blockfall history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "Number of games to show")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the whole history")
}

func runHistory(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	h := e.openHistory()
	if h == nil {
		return errors.New("history database unavailable, see the log for details")
	}
	defer h.Close()

	if flagClear {
		if err := h.ClearHistory(); err != nil {
			return err
		}
		e.log.Info("history cleared")
		fmt.Println("History cleared.")
		return nil
	}

	games, err := h.RecentGames(flagLimit)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Println("No games recorded yet.")
		fmt.Println()
		fmt.Println("Run 'blockfall play' to play the first one!")
		return nil
	}

	fmt.Println(headingStyle.Render("Recent games"))
	fmt.Println(historyTable(games))
	return nil
}

func historyTable(games []storage.GameRecord) string {
	rows := make([][]string, 0, len(games))
	for _, g := range games {
		player := g.Player
		if player == "" {
			player = "-"
		}
		rows = append(rows, []string{
			g.PlayedAt.Local().Format("2006-01-02 15:04"),
			player,
			strconv.Itoa(g.BlockTypes),
			strconv.Itoa(g.Level),
			strconv.Itoa(g.Score),
			strconv.Itoa(g.Lines),
			strconv.Itoa(g.Figures),
			g.Duration.Round(time.Second).String(),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Date", "Player", "Blocks", "Level", "Score", "Lines", "Figures", "Time").
		Rows(rows...).
		String()
}
