package main

import (
	"github.com/spf13/cobra"

	"github.com/simonhull/imagemeta"
)

// execute runs the command tree once and shuts the library down
// afterwards, also when the command fails.
func execute(cmd *cobra.Command, ctx *commandContext) error {
	defer ctx.shutdown()
	return cmd.Execute()
}

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "imagemeta",
		Short:         "Read and edit Exif, IPTC and XMP metadata of image files",
		Version:       imagemeta.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newKeysCommand(ctx))
	rootCmd.AddCommand(newGetCommand(ctx))
	rootCmd.AddCommand(newSetCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))
	rootCmd.AddCommand(newCopyCommand(ctx))
	rootCmd.AddCommand(newCommentCommand(ctx))
	rootCmd.AddCommand(newPreviewsCommand(ctx))
	rootCmd.AddCommand(newThumbnailCommand(ctx))

	return rootCmd
}
