package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/imagemeta"
)

type commandContext struct {
	configFlag string
	ready      bool
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

// init loads the configuration and initialises the library for one
// command run.
func (c *commandContext) init() error {
	cfg, err := imagemeta.LoadConfig(strings.TrimSpace(c.configFlag))
	if err != nil {
		return err
	}
	if err := imagemeta.Init(imagemeta.WithConfig(cfg)); err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	c.ready = true
	return nil
}

func (c *commandContext) shutdown() {
	if c.ready {
		imagemeta.Shutdown()
		c.ready = false
	}
}

// open opens and reads path. The caller closes the document.
func (c *commandContext) open(path string) (*imagemeta.Document, error) {
	doc, err := imagemeta.Open(path)
	if err != nil {
		return nil, err
	}
	if err := doc.Read(); err != nil {
		doc.Close()
		return nil, err
	}
	return doc, nil
}

// saveFlags are the write options shared by every command that modifies
// a file. Unset flags leave the configured defaults in place.
type saveFlags struct {
	backup   string
	validate bool
	keepTime bool
}

func (f *saveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.backup, "backup", "", "Keep the previous file with this suffix (e.g. .bak)")
	cmd.Flags().BoolVar(&f.validate, "validate", false, "Re-read the written file and compare its keys")
	cmd.Flags().BoolVar(&f.keepTime, "keep-time", false, "Preserve the modification time")
}

func (f *saveFlags) options(cmd *cobra.Command) []imagemeta.SaveOption {
	var opts []imagemeta.SaveOption
	if cmd.Flags().Changed("backup") {
		opts = append(opts, imagemeta.WithBackup(f.backup))
	}
	if f.validate {
		opts = append(opts, imagemeta.WithValidation())
	}
	if f.keepTime {
		opts = append(opts, imagemeta.WithPreserveModTime())
	}
	return opts
}

// namespaceOf returns the namespace prefix of key: "Exif", "Iptc" or "Xmp".
func namespaceOf(key string) (string, error) {
	ns, _, ok := strings.Cut(key, ".")
	switch {
	case !ok:
	case ns == "Exif", ns == "Iptc", ns == "Xmp":
		return ns, nil
	}
	return "", fmt.Errorf("key %q: expected an Exif., Iptc. or Xmp. prefix", key)
}
