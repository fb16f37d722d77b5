package main

import (
	"github.com/spf13/cobra"
)

func newCopyCommand(ctx *commandContext) *cobra.Command {
	var exif, iptc, xmp bool
	var save saveFlags

	cmd := &cobra.Command{
		Use:   "copy <source> <target>",
		Short: "Copy whole metadata namespaces from one file to another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := ctx.open(args[0])
			if err != nil {
				return err
			}
			defer src.Close()
			dst, err := ctx.open(args[1])
			if err != nil {
				return err
			}
			defer dst.Close()

			if err := src.CopyMetadata(dst, exif, iptc, xmp); err != nil {
				return err
			}
			return dst.Write(save.options(cmd)...)
		},
	}

	cmd.Flags().BoolVar(&exif, "exif", true, "Copy Exif records")
	cmd.Flags().BoolVar(&iptc, "iptc", true, "Copy IPTC records")
	cmd.Flags().BoolVar(&xmp, "xmp", true, "Copy XMP records")
	save.register(cmd)
	return cmd
}
