package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/simonhull/imagemeta"
)

func newPreviewsCommand(ctx *commandContext) *cobra.Command {
	var extract string
	var maxSize string

	cmd := &cobra.Command{
		Use:   "previews <file>",
		Short: "List or extract the embedded preview images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []imagemeta.Option
			if maxSize != "" {
				limit, err := units.RAMInBytes(maxSize)
				if err != nil {
					return fmt.Errorf("--max-size: %w", err)
				}
				opts = append(opts, imagemeta.WithMaxPreviewSize(limit))
			}

			doc, err := imagemeta.Open(args[0], opts...)
			if err != nil {
				return err
			}
			defer doc.Close()
			if err := doc.Read(); err != nil {
				return err
			}

			previews, err := doc.Previews()
			if err != nil {
				return err
			}
			for _, w := range doc.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w.String())
			}

			if extract != "" {
				if err := os.MkdirAll(extract, 0o755); err != nil {
					return err
				}
				base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				for i, p := range previews {
					name, err := p.WriteFile(filepath.Join(extract, fmt.Sprintf("%s-preview%d", base, i+1)))
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			rows := make([][]string, 0, len(previews))
			for i, p := range previews {
				dims := ""
				if p.Width > 0 && p.Height > 0 {
					dims = fmt.Sprintf("%dx%d", p.Width, p.Height)
				}
				rows = append(rows, []string{strconv.Itoa(i + 1), p.MIMEType, dims, units.HumanSize(float64(p.Size))})
			}
			writeRows(cmd.OutOrStdout(), []string{"#", "Type", "Dimensions", "Size"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight})
			return nil
		},
	}

	cmd.Flags().StringVar(&extract, "extract", "", "Write the previews into this directory")
	cmd.Flags().StringVar(&maxSize, "max-size", "", "Skip previews larger than this (e.g. 512KiB)")
	return cmd
}
