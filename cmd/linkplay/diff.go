package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newDiffCmd())
}

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <rom> <path-a> <path-b>",
		Short: "Compare the decompressed content of two paths",
		Long: `The diff command compares two files or container members byte by byte
and prints the size difference and the first differing bytes.

Example:
  linkplay diff black2.nds a/0/9/2:1 a/0/9/2:2`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(args)
		},
	}
}

func runDiff(args []string) error {
	_, s, err := openROM(args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Diff(args[1], args[2])
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(res)
	}
	if res.Identical() {
		printInfo("%s and %s are identical (%d bytes)\n", res.A, res.B, res.SizeA)
		return nil
	}
	printInfo("%s: %d bytes\n", res.A, res.SizeA)
	printInfo("%s: %d bytes (%+d)\n", res.B, res.SizeB, res.SizeDelta)
	printInfo("%d differing bytes\n", res.Total)
	for _, d := range res.Diffs {
		printInfo("  0x%06X  %02X -> %02X\n", d.Offset, d.A, d.B)
	}
	if res.Total > len(res.Diffs) {
		printInfo("  ... %d more\n", res.Total-len(res.Diffs))
	}
	return nil
}
