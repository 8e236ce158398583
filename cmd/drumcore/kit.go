package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schollz/drumcore/internal/core"
	"github.com/schollz/drumcore/internal/kitloader"
)

func newLoadKitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load-kit <directory>",
		Short: "Validate a kit directory and print the pad assignment it would produce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := core.NewEngine(nullSink{}, nil, 1)
			kits, err := kitloader.LoadKit(engine, args[0])
			for _, k := range kits {
				fmt.Printf("pad %2d <- %s\n", k.Pad, k.Name)
			}
			if err != nil {
				return err
			}
			fmt.Printf("%d sample(s) loaded\n", len(kits))
			return nil
		},
	}
}
