package startup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("STARTUP_TEST_VAR", "hello")
	if got := getEnv("STARTUP_TEST_VAR", "fallback"); got != "hello" {
		t.Errorf("getEnv with set var = %q, want %q", got, "hello")
	}
	if got := getEnv("STARTUP_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("getEnv with unset var = %q, want %q", got, "fallback")
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue bool
		want         bool
	}{
		{"true", "true", false, true},
		{"false", "false", true, false},
		{"numeric true", "1", false, true},
		{"numeric false", "0", true, false},
		{"empty uses default", "", false, false},
		{"garbage uses default", "yes please", true, true},
		{"whitespace trimmed", " true ", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				os.Unsetenv("STARTUP_TEST_BOOL")
			} else {
				t.Setenv("STARTUP_TEST_BOOL", tt.value)
			}
			if got := getEnvBool("STARTUP_TEST_BOOL", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestEnsureDirectoryCreates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	if err := ensureDirectory(dir, "cache"); err != nil {
		t.Fatalf("ensureDirectory() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("created path is not a directory")
	}
}

func TestEnsureDirectoryExisting(t *testing.T) {
	dir := t.TempDir()
	if err := ensureDirectory(dir, "cache"); err != nil {
		t.Errorf("ensureDirectory() on existing dir error = %v", err)
	}
}

func TestEnsureDirectoryFileConflict(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ensureDirectory(file, "cache"); err == nil {
		t.Error("ensureDirectory() on a file should return an error")
	}
}

func TestTestWriteAccess(t *testing.T) {
	dir := t.TempDir()
	if err := testWriteAccess(dir); err != nil {
		t.Errorf("testWriteAccess() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("write test left %d files behind", len(entries))
	}
}

func TestLoadConfigMissingImageDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	if _, err := LoadConfig(missing); err == nil {
		t.Error("LoadConfig() with missing image dir should return an error")
	}
}

func TestLoadConfigImageDirIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "image.jpg")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(file); err == nil {
		t.Error("LoadConfig() with a file as image dir should return an error")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	imageDir := t.TempDir()
	cacheDir := filepath.Join(t.TempDir(), "cache")
	t.Setenv("CACHE_DIR", cacheDir)
	t.Setenv("CAPTION_DIR", filepath.Join(imageDir, "captions"))
	os.Unsetenv("PORT")
	os.Unsetenv("METRICS_PORT")

	config, err := LoadConfig(imageDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.ImageDir != imageDir {
		t.Errorf("ImageDir = %q, want %q", config.ImageDir, imageDir)
	}
	if config.Port != "5055" {
		t.Errorf("Port = %q, want %q", config.Port, "5055")
	}
	if config.MetricsPort != "9090" {
		t.Errorf("MetricsPort = %q, want %q", config.MetricsPort, "9090")
	}
	if !config.MetricsEnabled {
		t.Error("MetricsEnabled should default to true")
	}
	if len(config.SizeTiers) != 3 {
		t.Errorf("SizeTiers has %d entries, want 3", len(config.SizeTiers))
	}

	// The cache directory must exist and be writable after LoadConfig.
	info, err := os.Stat(cacheDir)
	if err != nil {
		t.Fatalf("cache directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("cache path is not a directory")
	}
}

func TestLoadConfigCaptionDirRelativeToWorkingDir(t *testing.T) {
	workDir := t.TempDir()
	imageDir := t.TempDir()
	t.Chdir(workDir)
	t.Setenv("CACHE_DIR", filepath.Join(workDir, "cache"))
	os.Unsetenv("CAPTION_DIR")

	config, err := LoadConfig(imageDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(wd, "captions")
	if config.CaptionDir != want {
		t.Errorf("CaptionDir = %q, want %q", config.CaptionDir, want)
	}
	if config.CaptionDir == filepath.Join(imageDir, "captions") {
		t.Error("caption dir must not resolve against the image directory")
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if info.GoVersion == "" {
		t.Error("GoVersion should not be empty")
	}
}
