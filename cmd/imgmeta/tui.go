package main

import (
	"imgmeta/internal/tui"

	"github.com/spf13/cobra"
)

// tuiCmd starts the terminal front end on the configured folder, or on the
// folder given as argument.
func (c *cli) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [folder]",
		Short: "Start the terminal user interface",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := c.container()
			if err != nil {
				return err
			}
			defer sc.Close()

			folder := c.cfg.Folder.Initial
			if len(args) > 0 {
				folder = args[0]
			}
			sc.SetFolder(folder)
			return tui.Run(sc, sc.DefaultUpdate())
		},
	}
}
