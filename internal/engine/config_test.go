package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolateConfigEnv moves into a fresh directory and blanks the variables LoadConfig reads.
func isolateConfigEnv(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, k := range []string{"OUTPUT_DIRECTORY", "TEMP_DIRECTORY", "TRACKING_FILE", "DEEPGRAM_API_KEY", "YTDLP_PATH"} {
		t.Setenv(k, "")
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	return wd
}

func writeConfigFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
}

func mustLoadConfig(t *testing.T) *Config {
	t.Helper()
	c, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	return c
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := isolateConfigEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.json"))

	c := mustLoadConfig(t)

	if want := filepath.Join(dir, "podcasts"); c.OutputDirectory != want {
		t.Errorf("OutputDirectory = %q, want %q", c.OutputDirectory, want)
	}
	if want := filepath.Join(dir, "temp"); c.TempDirectory != want {
		t.Errorf("TempDirectory = %q, want %q", c.TempDirectory, want)
	}
	if c.DeepgramModel != "nova-2" {
		t.Errorf("DeepgramModel = %q, want nova-2", c.DeepgramModel)
	}
	if c.CacheTTL != 15*time.Minute {
		t.Errorf("CacheTTL = %v, want 15m", c.CacheTTL)
	}
	if c.HTTPClient == nil {
		t.Error("HTTPClient is nil")
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := isolateConfigEnv(t)
	writeConfigFile(t, filepath.Join(dir, "config.json"), `{
  "outputDirectory": "/srv/podcasts",
  "deepgramApiKey": "file-key",
  "tempDirectory": "/srv/tmp"
}`)

	c := mustLoadConfig(t)
	if c.OutputDirectory != "/srv/podcasts" || c.DeepgramAPIKey != "file-key" || c.TempDirectory != "/srv/tmp" {
		t.Errorf("file values not applied: %+v", c)
	}

	t.Setenv("DEEPGRAM_API_KEY", "env-key")
	t.Setenv("OUTPUT_DIRECTORY", "/env/podcasts")
	c = mustLoadConfig(t)
	if c.DeepgramAPIKey != "env-key" {
		t.Errorf("DeepgramAPIKey = %q, want env-key", c.DeepgramAPIKey)
	}
	if c.OutputDirectory != "/env/podcasts" {
		t.Errorf("OutputDirectory = %q, want /env/podcasts", c.OutputDirectory)
	}
	if c.TempDirectory != "/srv/tmp" {
		t.Errorf("TempDirectory = %q, want file value /srv/tmp", c.TempDirectory)
	}
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	dir := isolateConfigEnv(t)
	writeConfigFile(t, filepath.Join(dir, "config.yaml"), "ytdlpPath: /opt/yt-dlp\ntrackingFile: tracked.db\n")

	c := mustLoadConfig(t)
	if c.YtdlpPath != "/opt/yt-dlp" {
		t.Errorf("YtdlpPath = %q", c.YtdlpPath)
	}
	if c.TrackingFile != "tracked.db" {
		t.Errorf("TrackingFile = %q", c.TrackingFile)
	}
}

func TestLoadConfig_CorruptFileIgnored(t *testing.T) {
	dir := isolateConfigEnv(t)
	writeConfigFile(t, filepath.Join(dir, "config.json"), "{not: [valid")

	c := mustLoadConfig(t)
	if want := filepath.Join(dir, "podcasts"); c.OutputDirectory != want {
		t.Errorf("OutputDirectory = %q, want default %q", c.OutputDirectory, want)
	}
}
