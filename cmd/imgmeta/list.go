package main

import (
	"fmt"

	"imgmeta/internal/files"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// listCmd prints the images of a folder, the same entries the front ends
// show.
func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [folder]",
		Short: "List the images of a folder",
		Long:  `List the images directly inside a folder, sorted by name. Without an argument the configured folder is listed.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := c.cfg.Folder.Initial
			if len(args) > 0 {
				folder = args[0]
			}

			lister, err := files.NewLister(c.cfg.Listing.Extensions)
			if err != nil {
				return err
			}
			images, err := lister.List(folder)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(images) == 0 {
				printWarning(out, fmt.Sprintf("No images in %s", folder))
				return nil
			}

			rows := make([][]string, 0, len(images))
			for _, img := range images {
				rows = append(rows, []string{
					img.Name,
					humanize.Bytes(uint64(img.Size)),
					img.ModTime.Format("2006-01-02 15:04"),
				})
			}
			renderTable(out, []string{"Name", "Size", "Modified"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft})
			fmt.Fprintf(out, "%d images\n", len(images))
			return nil
		},
	}
}
