package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ttrsync/internal/testsupport"
)

type cliTestEnv struct {
	meta       *testsupport.MetadataServer
	content    *testsupport.ContentServer
	configPath string
	dir        string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"TTRSYNC_METADATA_URL", "TTRSYNC_CONTENT_URL", "TTRSYNC_DIRECTORY"} {
		t.Setenv(key, "")
	}

	env := &cliTestEnv{
		meta:       testsupport.NewMetadataServer(t),
		content:    testsupport.NewContentServer(t),
		configPath: filepath.Join(base, "config.toml"),
		dir:        filepath.Join(base, "replays"),
		baseDir:    base,
	}
	writeTestConfig(t, env)
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(
		"[sync]\ndirectory = %q\n\n[metadata]\nbase_url = %q\n\n[content]\nbase_url = %q\n\n[paths]\nstate_dir = %q\n",
		env.dir,
		env.meta.URL,
		env.content.URL,
		filepath.Join(env.baseDir, "state"),
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func record(id string) testsupport.Record {
	return testsupport.Record{ReplayID: id, RecordedAt: "2023-05-01T12:30:00Z"}
}
