package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, int64(0), cfg.MaxPreviewBytes())
	assert.Equal(t, int64(64*1024), cfg.MaxThumbnailBytes())
}

func TestParse_Full(t *testing.T) {
	data := []byte(`
[logging]
level = "DEBUG"
format = "json"

[[namespaces]]
uri = "http://example.com/ns/lab/"
prefix = "lab"

[write]
backup_suffix = ".bak"
preserve_mod_time = true
validate = true

[limits]
max_preview_size = "2MiB"

[codec]
version = "v0.26.0"
`)
	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, []Namespace{{URI: "http://example.com/ns/lab/", Prefix: "lab"}}, cfg.Namespaces)
	assert.Equal(t, Write{BackupSuffix: ".bak", PreserveModTime: true, Validate: true}, cfg.Write)
	assert.Equal(t, int64(2*1024*1024), cfg.MaxPreviewBytes())
	assert.Equal(t, "0.26.0", cfg.Codec.Version)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown field", "[logging]\ncolour = true\n"},
		{"bad format", "[logging]\nformat = \"xml\"\n"},
		{"bad level", "[logging]\nlevel = \"loud\"\n"},
		{"namespace without slash", "[[namespaces]]\nuri = \"http://x.com/ns\"\nprefix = \"x\"\n"},
		{"namespace bad prefix", "[[namespaces]]\nuri = \"http://x.com/ns/\"\nprefix = \"x.y\"\n"},
		{"duplicate prefix", "[[namespaces]]\nuri = \"http://a.com/\"\nprefix = \"x\"\n[[namespaces]]\nuri = \"http://b.com/\"\nprefix = \"x\"\n"},
		{"bad size", "[limits]\nmax_preview_size = \"lots\"\n"},
		{"bad version", "[codec]\nversion = \"28\"\n"},
		{"syntax", "[logging\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"warn\"\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}
