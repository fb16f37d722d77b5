package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/imagemeta"
)

func newKeysCommand(ctx *commandContext) *cobra.Command {
	var namespaces []string
	var human bool

	cmd := &cobra.Command{
		Use:   "keys <file>",
		Short: "List the metadata records of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ctx.open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()

			var rows [][]string
			for _, ns := range namespaces {
				nsRows, err := listNamespace(doc, ns, human)
				if err != nil {
					return err
				}
				rows = append(rows, nsRows...)
			}
			writeRows(cmd.OutOrStdout(), []string{"Key", "Type", "Value"}, rows, nil)

			for _, w := range doc.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w.String())
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&namespaces, "namespace", "n", []string{"Exif", "Iptc", "Xmp"}, "Namespaces to list")
	cmd.Flags().BoolVar(&human, "human", false, "Render Exif values in readable form")
	return cmd
}

func listNamespace(doc *imagemeta.Document, ns string, human bool) ([][]string, error) {
	var rows [][]string
	switch strings.ToLower(ns) {
	case "exif":
		keys, err := doc.ExifKeys()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			tag, err := doc.ExifTag(key)
			if err != nil {
				return nil, err
			}
			value := tag.RawValue()
			if human {
				value = tag.HumanValue()
			}
			rows = append(rows, []string{key, string(tag.Type()), value})
		}
	case "iptc":
		keys, err := doc.IptcKeys()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			tag, err := doc.IptcTag(key)
			if err != nil {
				return nil, err
			}
			rows = append(rows, []string{key, string(tag.Type()), strings.Join(tag.RawValues(), "; ")})
		}
	case "xmp":
		keys, err := doc.XmpKeys()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			tag, err := doc.XmpTag(key)
			if err != nil {
				return nil, err
			}
			values, err := xmpValues(tag)
			if err != nil {
				return nil, err
			}
			rows = append(rows, []string{key, string(tag.ObservedType()), strings.Join(values, "; ")})
		}
	default:
		return nil, fmt.Errorf("unknown namespace %q", ns)
	}
	return rows, nil
}

// xmpValues renders any XMP value as a list of lines.
func xmpValues(tag *imagemeta.XmpTag) ([]string, error) {
	switch tag.ObservedType() {
	case "LangAlt":
		alts, err := tag.LangAlts()
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(alts))
		for _, alt := range alts {
			out = append(out, fmt.Sprintf("lang=%q %s", alt.Lang, alt.Text))
		}
		return out, nil
	case "XmpBag", "XmpSeq", "XmpAlt":
		return tag.ArrayValue()
	default:
		text, err := tag.TextValue()
		if err != nil {
			return nil, err
		}
		return []string{text}, nil
	}
}
