package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newCommentCommand(ctx *commandContext) *cobra.Command {
	var set string
	var remove bool
	var save saveFlags

	cmd := &cobra.Command{
		Use:   "comment <file>",
		Short: "Print, replace or remove the image comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changing := cmd.Flags().Changed("set")
			if changing && remove {
				return errors.New("--set and --clear are mutually exclusive")
			}
			doc, err := ctx.open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()

			switch {
			case changing:
				err = doc.SetComment(set)
			case remove:
				err = doc.ClearComment()
			default:
				comment, err := doc.Comment()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), comment)
				return nil
			}
			if err != nil {
				return err
			}
			return doc.Write(save.options(cmd)...)
		},
	}

	cmd.Flags().StringVar(&set, "set", "", "Replace the comment")
	cmd.Flags().BoolVar(&remove, "clear", false, "Remove the comment")
	save.register(cmd)
	return cmd
}
