package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newThumbnailCommand(ctx *commandContext) *cobra.Command {
	var extract, set string
	var erase bool
	var save saveFlags

	cmd := &cobra.Command{
		Use:   "thumbnail <file>",
		Short: "Extract, replace or erase the Exif thumbnail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions := 0
			for _, on := range []bool{extract != "", set != "", erase} {
				if on {
					actions++
				}
			}
			if actions != 1 {
				return errors.New("exactly one of --extract, --set or --erase is required")
			}

			doc, err := ctx.open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()
			thumb, err := doc.Thumbnail()
			if err != nil {
				return err
			}

			switch {
			case extract != "":
				name, err := thumb.WriteFile(extract)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
				return nil
			case set != "":
				err = thumb.SetFromFile(set)
			case erase:
				err = thumb.Erase()
			}
			if err != nil {
				return err
			}
			return doc.Write(save.options(cmd)...)
		},
	}

	cmd.Flags().StringVar(&extract, "extract", "", "Write the thumbnail to this path (extension appended)")
	cmd.Flags().StringVar(&set, "set", "", "Replace the thumbnail with this JPEG file")
	cmd.Flags().BoolVar(&erase, "erase", false, "Remove the thumbnail")
	save.register(cmd)
	return cmd
}
