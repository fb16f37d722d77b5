package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/imagemeta"
)

func newGetCommand(ctx *commandContext) *cobra.Command {
	var human bool

	cmd := &cobra.Command{
		Use:   "get <file> <key>",
		Short: "Print the value of one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[1]
			ns, err := namespaceOf(key)
			if err != nil {
				return err
			}
			doc, err := ctx.open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()

			var lines []string
			switch ns {
			case "Exif":
				tag, err := doc.ExifTag(key)
				if err != nil {
					return err
				}
				if human {
					lines = []string{tag.HumanValue()}
				} else {
					lines = []string{tag.RawValue()}
				}
			case "Iptc":
				tag, err := doc.IptcTag(key)
				if err != nil {
					return err
				}
				lines = tag.RawValues()
			case "Xmp":
				tag, err := doc.XmpTag(key)
				if err != nil {
					return err
				}
				if lines, err = xmpValues(tag); err != nil {
					return err
				}
			}
			for _, line := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&human, "human", false, "Render Exif values in readable form")
	return cmd
}

func newSetCommand(ctx *commandContext) *cobra.Command {
	var array bool
	var lang string
	var save saveFlags

	cmd := &cobra.Command{
		Use:   "set <file> <key> <value>...",
		Short: "Set a record and write the file",
		Long: `Set a record and write the file.

IPTC keys take one value per argument. XMP keys take a text value unless
--array (one member per argument) or --lang (a language alternative) is given.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, values := args[1], args[2:]
			ns, err := namespaceOf(key)
			if err != nil {
				return err
			}
			doc, err := ctx.open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()

			switch ns {
			case "Exif":
				err = setExif(doc, key, strings.Join(values, " "))
			case "Iptc":
				err = setIptc(doc, key, values)
			case "Xmp":
				err = setXmp(doc, key, values, array, lang)
			}
			if err != nil {
				return err
			}
			return doc.Write(save.options(cmd)...)
		},
	}

	cmd.Flags().BoolVar(&array, "array", false, "Store the values as XMP array members")
	cmd.Flags().StringVar(&lang, "lang", "", "Store the value as XMP language alternative (e.g. x-default)")
	save.register(cmd)
	return cmd
}

func setExif(doc *imagemeta.Document, key, raw string) error {
	tag, err := imagemeta.NewExifTag(key)
	if err != nil {
		return err
	}
	if err := tag.SetRawValue(raw); err != nil {
		return err
	}
	return doc.SetExifTag(tag)
}

func setIptc(doc *imagemeta.Document, key string, values []string) error {
	tag, err := imagemeta.NewIptcTag(key)
	if err != nil {
		return err
	}
	if err := tag.SetRawValues(values); err != nil {
		return err
	}
	return doc.SetIptcTag(tag)
}

func setXmp(doc *imagemeta.Document, key string, values []string, array bool, lang string) error {
	tag, err := imagemeta.NewXmpTag(key)
	if err != nil {
		return err
	}
	switch {
	case array:
		err = tag.SetArrayValue(values)
	case lang != "":
		err = tag.SetLangAltValue(map[string]string{lang: strings.Join(values, " ")})
	default:
		err = tag.SetTextValue(strings.Join(values, " "))
	}
	if err != nil {
		return err
	}
	return doc.SetXmpTag(tag)
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var save saveFlags

	cmd := &cobra.Command{
		Use:   "delete <file> <key>...",
		Short: "Remove records and write the file",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ctx.open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()

			for _, key := range args[1:] {
				ns, err := namespaceOf(key)
				if err != nil {
					return err
				}
				switch ns {
				case "Exif":
					err = doc.DeleteExifTag(key)
				case "Iptc":
					err = doc.DeleteIptcTag(key)
				case "Xmp":
					err = doc.DeleteXmpTag(key)
				}
				if err != nil {
					return err
				}
			}
			return doc.Write(save.options(cmd)...)
		},
	}

	save.register(cmd)
	return cmd
}
