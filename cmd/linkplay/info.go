package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <rom>",
		Short: "Show the header, detected game and file counts of an image",
		Long: `The info command reads the cartridge header and reports the title,
game code, region, detected game configuration and file statistics.

Example:
  linkplay info black2.nds
  linkplay info black2.nds --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
}

func runInfo(args []string) error {
	_, s, err := openROM(args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	info, err := s.Info()
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(info)
	}

	h := info.Header
	printInfo("Image: %s\n", args[0])
	printInfo("  Platform:   %s\n", h.Platform)
	printInfo("  Title:      %s\n", h.DisplayTitle())
	printInfo("  Game code:  %s\n", h.GameCode)
	printInfo("  Region:     %s (%s)\n", h.Region, h.RegionChar)
	if info.Game != "" {
		printInfo("  Game:       %s (generation %d)\n", info.Game, info.Generation)
	} else {
		printInfo("  Game:       unknown\n")
	}
	printInfo("  Files:      %d\n", info.Stats.Files)
	printInfo("  Containers: %d (%d members)\n", info.Stats.Containers, info.Stats.Members)
	printInfo("  Size:       %d bytes\n", info.Stats.ImageSize)
	return nil
}
