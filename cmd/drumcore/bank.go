package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schollz/drumcore/internal/core"
	"github.com/schollz/drumcore/internal/persist"
)

func newBankCmd() *cobra.Command {
	bank := &cobra.Command{
		Use:   "bank",
		Short: "Inspect and round-trip pattern bank JSON files",
	}
	bank.AddCommand(newBankInspectCmd())
	bank.AddCommand(newBankInitCmd())
	return bank
}

func newBankInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <path>",
		Short: "Print a summary of a saved bank file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := persist.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("tempo: %d bpm\n", b.TempoBPM)
			fmt.Printf("song mode: %v (length %d)\n", b.SongMode, b.SongLength)
			fmt.Printf("humanize: %dms timing, %d%% velocity\n", b.HumanizeTimingMs, b.HumanizeVelocityPct)
			fmt.Printf("non-default steps: %d\n", len(b.Cells))
			for pad, name := range b.KitFiles {
				if name != "" {
					fmt.Printf("pad %2d <- %s\n", pad, name)
				}
			}
			return nil
		},
	}
}

func newBankInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <path>",
		Short: "Write a fresh, empty bank file with default transport settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := core.NewEngine(nullSink{}, nil, 1)
			b := persist.Snapshot(engine)
			return persist.SaveFile(args[0], b)
		},
	}
}
