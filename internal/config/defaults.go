package config

const (
	defaultConfigPath      = "~/.config/ttrsync/config.toml"
	projectConfigName      = "ttrsync.toml"
	defaultSyncDirectory   = "."
	defaultMetadataBaseURL = "https://ch.tetr.io/api"
	defaultMetadataTimeout = 30
	defaultContentBaseURL  = "https://inoue.szy.lol/api"
	defaultContentTimeout  = 120
	defaultBackoffSeconds  = 5
	defaultStateDir        = "~/.local/state/ttrsync"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Sync: Sync{
			Directory: defaultSyncDirectory,
		},
		Metadata: Metadata{
			BaseURL:        defaultMetadataBaseURL,
			TimeoutSeconds: defaultMetadataTimeout,
		},
		Content: Content{
			BaseURL:        defaultContentBaseURL,
			TimeoutSeconds: defaultContentTimeout,
			BackoffSeconds: defaultBackoffSeconds,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
