package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Creative-Genius2/LinkPlay/internal/app"
)

var (
	writeOffset   int
	writeEncoding string
	writeOut      string
)

func init() {
	rootCmd.AddCommand(newWriteCmd())
}

func newWriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write <rom> <path> <data>",
		Short: "Patch a file or container member and save a new image",
		Long: `The write command replaces the decompressed content of a path, or
overwrites part of it when --offset is given, then recompresses the file with
its original format and writes the repacked image to --output.

Encodings: ` + strings.Join(app.Encodings, ", ") + `

Example:
  linkplay write black2.nds a/0/9/1:1 "03 01 00 02" -o patched.nds
  linkplay write black2.nds data/readme.txt "Hi" --offset 0 --encoding ascii -o patched.nds`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrite(args)
		},
	}
	cmd.Flags().IntVar(&writeOffset, "offset", -1, "Overwrite from this offset instead of replacing the whole content")
	cmd.Flags().StringVar(&writeEncoding, "encoding", "hex", "Encoding of <data>")
	cmd.Flags().StringVarP(&writeOut, "output", "o", "", "Path of the patched image")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runWrite(args []string) error {
	if writeOut == "" {
		return errors.New("output path is required")
	}
	data, err := app.EncodeData(args[2], writeEncoding)
	if err != nil {
		return err
	}
	a, s, err := openROM(args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	var offset *int
	if writeOffset >= 0 {
		offset = &writeOffset
	}
	if err := s.Write(args[1], data, offset); err != nil {
		return err
	}
	if err := a.Save(s, writeOut); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{"path": args[1], "bytes": len(data), "output": writeOut})
	}
	printInfo("Wrote %d bytes to %s\n", len(data), args[1])
	printInfo("Saved %s\n", writeOut)
	return nil
}
