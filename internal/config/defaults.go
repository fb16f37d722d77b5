package config

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "console"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Write: Write{
			BackupSuffix: "",
		},
		Limits: Limits{
			MaxPreviewSize:   "",
			MaxThumbnailSize: "64KiB",
		},
	}
}
