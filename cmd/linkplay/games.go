package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newGamesCmd())
}

func newGamesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List the supported games and their container roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGames()
		},
	}
}

func runGames() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	games := a.Games()
	if jsonOut {
		return printJSON(games)
	}
	for _, g := range games {
		printInfo("%-12s gen %d  %s\n", strings.Join(g.Codes, ","), g.Generation, g.Title)
		printInfo("  text: %s\n", g.Text.Path)
		for _, c := range g.Containers {
			printInfo("  %-22s %s\n", c.Role, c.Path)
		}
	}
	return nil
}
