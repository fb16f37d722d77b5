package imagemeta

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/config"
	"github.com/simonhull/imagemeta/internal/logging"
	"github.com/simonhull/imagemeta/internal/schema"
)

// Namespace of the properties this library writes itself.
const (
	OwnNamespacePrefix = "imagemeta"
	OwnNamespaceURI    = "https://github.com/simonhull/imagemeta/ns/1.0/"
)

// Config is the library configuration, usually loaded from TOML.
type Config = config.Config

// LoadConfig reads the TOML configuration at path. An empty path means the
// default location; a missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// process is the state installed by Init and cleared by Shutdown.
type process struct {
	ready  bool
	logger *slog.Logger
	table  *codes.Table

	maxPreviewSize   int64
	maxThumbnailSize int64

	backupSuffix    string
	validate        bool
	preserveModTime bool

	// URIs registered by Init, removed again by Shutdown.
	namespaces []string
}

var (
	procMu sync.RWMutex
	proc   process
)

func state() process {
	procMu.RLock()
	defer procMu.RUnlock()
	return proc
}

func logger() *slog.Logger {
	if l := state().logger; l != nil {
		return l
	}
	return slog.Default()
}

func requireInit(op string) error {
	if !state().ready {
		return codes.New(op, codes.ErrorMessage, "imagemeta is not initialised, call Init first")
	}
	return nil
}

// InitOption configures Init.
type InitOption func(*initOptions)

type initOptions struct {
	logger  *slog.Logger
	version string
	cfg     *Config
}

// WithLogger installs the logger used by every Document. The default is
// slog.Default, or the logger described by WithConfig.
func WithLogger(l *slog.Logger) InitOption {
	return func(o *initOptions) {
		o.logger = l
	}
}

// WithCodecVersion selects the failure classification table as if the
// codecs were of the given version, e.g. "0.26".
func WithCodecVersion(version string) InitOption {
	return func(o *initOptions) {
		o.version = version
	}
}

// WithConfig applies a loaded configuration: logging, custom namespaces,
// write defaults, size limits and the codec version.
func WithConfig(cfg *Config) InitOption {
	return func(o *initOptions) {
		o.cfg = cfg
	}
}

// Init prepares the process for use of this package. It must be called
// exactly once before any Document is opened, and paired with Shutdown.
//
//	if err := imagemeta.Init(); err != nil {
//		log.Fatal(err)
//	}
//	defer imagemeta.Shutdown()
func Init(opts ...InitOption) error {
	const op = "Init"
	o := &initOptions{}
	for _, opt := range opts {
		opt(o)
	}

	procMu.Lock()
	defer procMu.Unlock()
	if proc.ready {
		return codes.New(op, codes.ErrorMessage, "imagemeta is already initialised")
	}

	p := process{ready: true, logger: o.logger}
	version := codes.CodecVersion
	var custom []config.Namespace

	if cfg := o.cfg; cfg != nil {
		if err := cfg.Validate(); err != nil {
			return codes.Wrap(op, codes.ErrorMessage, err, err.Error())
		}
		if p.logger == nil {
			l, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
			if err != nil {
				return codes.Wrap(op, codes.ErrorMessage, err, err.Error())
			}
			p.logger = l
		}
		if cfg.Codec.Version != "" {
			version = cfg.Codec.Version
		}
		p.maxPreviewSize = cfg.MaxPreviewBytes()
		p.maxThumbnailSize = cfg.MaxThumbnailBytes()
		p.backupSuffix = cfg.Write.BackupSuffix
		p.validate = cfg.Write.Validate
		p.preserveModTime = cfg.Write.PreserveModTime
		custom = cfg.Namespaces
	}
	if o.version != "" {
		version = o.version
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	p.table = codes.Select(version)
	codes.Use(p.table)

	all := append([]config.Namespace{{URI: OwnNamespaceURI, Prefix: OwnNamespacePrefix}}, custom...)
	for _, ns := range all {
		if err := RegisterNamespace(ns.URI, ns.Prefix); err != nil {
			for _, uri := range p.namespaces {
				schema.Namespaces.Unregister(uri)
			}
			codes.Use(nil)
			return fmt.Errorf("register namespace %s: %w", ns.Prefix, err)
		}
		p.namespaces = append(p.namespaces, ns.URI)
	}

	p.logger.Debug("imagemeta initialised",
		"codec_version", version,
		"error_table", p.table.Name(),
		"namespaces", len(p.namespaces),
	)
	proc = p
	return nil
}

// Shutdown undoes Init. Documents opened before remain usable, but new
// ones cannot be opened until Init is called again.
func Shutdown() {
	procMu.Lock()
	defer procMu.Unlock()
	for _, uri := range proc.namespaces {
		schema.Namespaces.Unregister(uri)
	}
	codes.Use(nil)
	proc = process{}
}

// Initialised reports whether Init has been called without a matching
// Shutdown.
func Initialised() bool {
	return state().ready
}
