package testsupport

import (
	"path/filepath"
	"testing"

	"ttrsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The service URLs point at unroutable hosts until overridden, so a test that
// forgets to stub a service fails instead of reaching the network.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Sync.Directory = filepath.Join(base, "replays")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Metadata.BaseURL = "http://127.0.0.1:1/api"
	cfgVal.Content.BaseURL = "http://127.0.0.1:1/api"
	cfgVal.Metadata.TimeoutSeconds = 5
	cfgVal.Content.TimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMetadataURL points the metadata client at url.
func WithMetadataURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metadata.BaseURL = url
	}
}

// WithContentURL points the content client at url.
func WithContentURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Content.BaseURL = url
	}
}

// WithServers points both clients at the fake services.
func WithServers(meta *MetadataServer, content *ContentServer) ConfigOption {
	return func(b *configBuilder) {
		if meta != nil {
			b.cfg.Metadata.BaseURL = meta.URL
		}
		if content != nil {
			b.cfg.Content.BaseURL = content.URL
		}
	}
}

// WithRemove enables pruning by default.
func WithRemove() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sync.Remove = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
