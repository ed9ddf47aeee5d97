package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

var (
	textEntry int
	textSet   string
	textOut   string
)

func init() {
	rootCmd.AddCommand(newTextCmd())
}

func newTextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "text <rom> [file|table]",
		Short: "Decrypt text banks, or list the recognised text tables",
		Long: `The text command decrypts one file of the text container, selected by
number or by a recognised table name (species, moves, items, abilities,
natures, type_names, trainer_classes, trainer_names, location_names and the
*_descriptions tables). Without a file it lists the recognised tables.

With --set the selected entry is re-encrypted with the new text and the
patched image is written to --output.

Example:
  linkplay text black2.nds
  linkplay text black2.nds species --entry 25
  linkplay text black2.nds 90 --entry 1 --set Bulba -o patched.nds`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runText(args, cmd.Flags().Changed("set"))
		},
	}
	cmd.Flags().IntVar(&textEntry, "entry", -1, "Print only this entry")
	cmd.Flags().StringVar(&textSet, "set", "", "Replace the entry selected by --entry with this text")
	cmd.Flags().StringVarP(&textOut, "output", "o", "", "Path of the patched image (with --set)")
	return cmd
}

func runText(args []string, set bool) error {
	a, s, err := openROM(args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	if len(args) == 1 {
		tables, err := s.TextTables()
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(tables)
		}
		names := make([]string, 0, len(tables))
		for name := range tables {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			printInfo("%4d  %s\n", tables[name], name)
		}
		return nil
	}

	file, texts, err := s.TextTable(args[1])
	if err != nil {
		return err
	}
	if set {
		if textEntry < 0 {
			return errors.New("--set needs --entry")
		}
		if textOut == "" {
			return errors.New("--set needs an output path")
		}
		if err := s.WriteText(file, textEntry, textSet); err != nil {
			return err
		}
		if err := a.Save(s, textOut); err != nil {
			return err
		}
		printInfo("Set text file %d entry %d to %q\n", file, textEntry, textSet)
		printInfo("Saved %s\n", textOut)
		return nil
	}

	if textEntry >= 0 {
		if textEntry >= len(texts) {
			return fmt.Errorf("entry %d is out of range (file %d has %d entries)", textEntry, file, len(texts))
		}
		if jsonOut {
			return printJSON(map[string]any{"file": file, "entry": textEntry, "text": texts[textEntry]})
		}
		printInfo("%s\n", texts[textEntry])
		return nil
	}
	if jsonOut {
		return printJSON(map[string]any{"file": file, "count": len(texts), "entries": texts})
	}
	for i, t := range texts {
		printInfo("%4d  %q\n", i, t)
	}
	return nil
}
