package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Creative-Genius2/LinkPlay/internal/app"
)

var (
	searchContainer string
	searchHex       string
	searchName      string
	searchID        string
	searchExact     bool
)

func init() {
	rootCmd.AddCommand(newSearchCmd())
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <rom>",
		Short: "Search bytes, text tables, or name IDs",
		Long: `The search command has three modes:

  --container <path> --hex <bytes>   find a byte pattern in every member of a container
  --name <text>                      find entries of the recognised text tables
  --container <path> --name <text> --id <table>
                                     look up the name in a table and find its
                                     index as a little endian u16 in the container

Example:
  linkplay search black2.nds --container a/0/9/2 --hex "19 00"
  linkplay search black2.nds --name pikachu
  linkplay search black2.nds --container a/0/9/2 --name Pikachu --id species`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(args)
		},
	}
	cmd.Flags().StringVar(&searchContainer, "container", "", "Container or file to search")
	cmd.Flags().StringVar(&searchHex, "hex", "", "Byte pattern in hex")
	cmd.Flags().StringVar(&searchName, "name", "", "Text to find")
	cmd.Flags().StringVar(&searchID, "id", "", "Table used to turn --name into an ID")
	cmd.Flags().BoolVar(&searchExact, "exact", false, "Match --name exactly instead of as a substring")
	return cmd
}

func runSearch(args []string) error {
	_, s, err := openROM(args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	switch {
	case searchHex != "":
		if searchContainer == "" {
			return errors.New("--hex needs --container")
		}
		pattern, err := app.ParseHex(searchHex)
		if err != nil {
			return err
		}
		matches, err := s.SearchHex(searchContainer, pattern)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(matches)
		}
		for _, m := range matches {
			printInfo("%s  0x%X\n", m.Path, m.Offset)
		}
		printInfo("%d matches\n", len(matches))

	case searchName != "" && searchID != "":
		if searchContainer == "" {
			return errors.New("--id needs --container")
		}
		id, matches, err := s.SearchID(searchContainer, searchID, searchName)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(map[string]any{"table": searchID, "name": searchName, "id": id, "matches": matches})
		}
		printInfo("%s %q is ID %d (0x%04X)\n", searchID, searchName, id, id)
		for _, m := range matches {
			printInfo("%s  0x%X\n", m.Path, m.Offset)
		}
		printInfo("%d matches\n", len(matches))

	case searchName != "":
		matches, err := s.SearchName(searchName, searchExact)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(matches)
		}
		for _, m := range matches {
			printInfo("%-22s %4d  %4d  %s\n", m.Table, m.File, m.Entry, m.Text)
		}
		printInfo("%d matches\n", len(matches))

	default:
		return errors.New("one of --hex or --name is required")
	}
	return nil
}
