package main

import (
	"fmt"
	"io"
	"strings"

	serr "imgmeta/internal/errors"
	"imgmeta/internal/metadata"
	"imgmeta/pkg/types"

	"github.com/spf13/cobra"
)

// rewriteCmd writes the modified copy of a JPEG with the configured XMP
// fields, overridden by --set.
func (c *cli) rewriteCmd() *cobra.Command {
	var (
		sets     []string
		existing string
		about    string
		suffix   string
		backend  string
	)

	cmd := &cobra.Command{
		Use:   "rewrite <file>",
		Short: "Write a modified copy of a JPEG with an updated XMP packet",
		Long: `Write <stem><suffix><ext> next to a JPEG. The copy keeps every segment of the
original and replaces its XMP packet with the configured fields and any --set values.`,
		Example: `  imgmeta rewrite photo.jpg --set tiff:Make=DJI --set dc:creator=me`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			update, err := c.cfg.XMPUpdate()
			if err != nil {
				return err
			}
			for _, s := range sets {
				f, err := types.ParseXMPField(s)
				if err != nil {
					return err
				}
				update.Set(f.Prefix, f.Name, f.Value)
			}
			if cmd.Flags().Changed("about") {
				update.About = about
			}
			if update.IsEmpty() {
				return fmt.Errorf("no XMP fields: pass --set prefix:Name=value or configure rewrite.fields")
			}

			policy := c.cfg.ExistingPolicy()
			if cmd.Flags().Changed("existing") {
				policy, err = types.ParseExistingPolicy(existing)
				if err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("suffix") {
				suffix = c.cfg.Rewrite.Suffix
			}

			if !cmd.Flags().Changed("backend") {
				backend = c.cfg.Rewrite.Backend
			}

			rw, err := metadata.NewBackend(backend, suffix, policy)
			if err != nil {
				return err
			}
			if closer, ok := rw.(io.Closer); ok {
				defer closer.Close()
			}

			dest, err := rw.Rewrite(cmd.Context(), args[0], update)
			if err != nil {
				if serr.IsDestinationExists(err) {
					printWarning(cmd.ErrOrStderr(), "pass --existing overwrite to replace the copy")
				}
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Wrote %s", dest))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "XMP field as prefix:Name=value (repeatable)")
	cmd.Flags().StringVar(&existing, "existing", "", "what to do with an existing copy: "+strings.Join(types.ExistingPolicyNames(), ", "))
	cmd.Flags().StringVar(&about, "about", "", "rdf:about of the written packet")
	cmd.Flags().StringVar(&suffix, "suffix", metadata.DefaultSuffix, "suffix appended to the file stem")
	cmd.Flags().StringVar(&backend, "backend", metadata.BackendNative, "rewrite backend: native or exiftool (needs exiftool on PATH)")

	return cmd
}
