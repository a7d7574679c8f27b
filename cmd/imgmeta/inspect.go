package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"imgmeta/internal/metadata"

	"github.com/spf13/cobra"
)

// inspectCmd prints the metadata snapshot of one file.
func (c *cli) inspectCmd() *cobra.Command {
	var (
		jsonOutput bool
		rawXMP     bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the EXIF and XMP metadata of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := metadata.NewReader().Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if jsonOutput {
				data, err := json.MarshalIndent(snap, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			fmt.Fprintf(out, "File: %s\n", snap.Path)
			if snap.MIMEType != "" {
				fmt.Fprintf(out, "Type: %s\n", snap.MIMEType)
			}
			if snap.IsEmpty() {
				printWarning(out, "No metadata found")
				return nil
			}

			if snap.TagCount() > 0 {
				var rows [][]string
				for _, dir := range snap.Directories() {
					tags := snap.EXIF[dir]
					names := make([]string, 0, len(tags))
					for name := range tags {
						names = append(names, name)
					}
					sort.Strings(names)
					for _, name := range names {
						rows = append(rows, []string{dir, name, tags[name]})
					}
				}
				renderTable(out, []string{"Directory", "Tag", "Value"}, rows, nil)
			}

			if !snap.HasXMP() {
				return nil
			}
			if rawXMP {
				fmt.Fprintln(out, snap.XMP)
				return nil
			}
			fields, err := metadata.DescriptionFields([]byte(snap.XMP))
			if err != nil {
				printWarning(out, fmt.Sprintf("XMP packet could not be parsed: %v", err))
				return nil
			}
			rows := make([][]string, 0, len(fields))
			for _, f := range fields {
				rows = append(rows, []string{f.QualifiedName(), f.Value})
			}
			renderTable(out, []string{"XMP property", "Value"}, rows, nil)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output the snapshot as JSON")
	cmd.Flags().BoolVar(&rawXMP, "raw-xmp", false, "Print the XMP packet as stored")

	return cmd
}
