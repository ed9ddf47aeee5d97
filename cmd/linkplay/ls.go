package main

import (
	"github.com/spf13/cobra"
)

var lsExpand bool

func init() {
	rootCmd.AddCommand(newLsCmd())
}

func newLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls <rom> [path]",
		Short: "List files, folders and container members",
		Long: `The ls command lists the children of a folder, or the members of a
container. Without a path it lists the root of the image.

Example:
  linkplay ls black2.nds
  linkplay ls black2.nds a/0/9
  linkplay ls black2.nds a/0/9 --expand`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLs(args)
		},
	}
	cmd.Flags().BoolVar(&lsExpand, "expand", false, "Also list the members of containers")
	return cmd
}

func runLs(args []string) error {
	_, s, err := openROM(args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	p := ""
	if len(args) > 1 {
		p = args[1]
	}
	list, err := s.List(p, lsExpand)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(list)
	}
	for _, l := range list {
		switch {
		case l.Members > 0:
			printInfo("%-10s %10d  %s  [%d members]\n", l.Kind, l.Size, l.Path, l.Members)
		default:
			printInfo("%-10s %10d  %s\n", l.Kind, l.Size, l.Path)
		}
	}
	return nil
}
