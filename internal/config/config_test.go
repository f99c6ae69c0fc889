package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"chatdeck/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	workDir := t.TempDir()
	t.Chdir(workDir)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "chatdeck", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if !filepath.IsAbs(cfg.Paths.ConfigDir) || filepath.Base(cfg.Paths.ConfigDir) != "config" {
		t.Fatalf("unexpected config dir: %q", cfg.Paths.ConfigDir)
	}
	if filepath.Base(cfg.Paths.UploadsDir) != "uploads" {
		t.Fatalf("unexpected uploads dir: %q", cfg.Paths.UploadsDir)
	}
	if cfg.API.Bind != "127.0.0.1:7860" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if cfg.Exec.Enabled {
		t.Fatal("expected exec endpoint disabled by default")
	}
	if cfg.Exec.Shell != "/bin/sh" {
		t.Fatalf("unexpected shell: %q", cfg.Exec.Shell)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.ConfigDir); err != nil || !info.IsDir() {
		t.Fatalf("expected config dir to exist: %v", err)
	}
	if _, err := os.Stat(cfg.Paths.UploadsDir); !os.IsNotExist(err) {
		t.Fatalf("expected uploads dir to be created lazily, got err=%v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "chatdeck.toml")

	type payload struct {
		Paths struct {
			ConfigDir string `toml:"config_dir"`
		} `toml:"paths"`
		API struct {
			Bind           string   `toml:"bind"`
			AllowedOrigins []string `toml:"allowed_origins"`
		} `toml:"api"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.ConfigDir = filepath.Join(tempDir, "fragments")
	custom.API.Bind = "0.0.0.0:9000"
	custom.API.AllowedOrigins = []string{" https://chat.example.com/ ", "https://chat.example.com", ""}
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.ConfigDir != filepath.Join(tempDir, "fragments") {
		t.Fatalf("expected config dir from file, got %q", cfg.Paths.ConfigDir)
	}
	if cfg.API.Bind != "0.0.0.0:9000" {
		t.Fatalf("expected bind override, got %q", cfg.API.Bind)
	}
	if len(cfg.API.AllowedOrigins) != 1 || cfg.API.AllowedOrigins[0] != "https://chat.example.com" {
		t.Fatalf("expected deduplicated origins, got %v", cfg.API.AllowedOrigins)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "chatdeck.toml")
	contents := "[api]\nbind = \"127.0.0.1:7000\"\ntoken = \"file-token\"\n\n[exec]\nshell = \"/bin/bash\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CHATDECK_API_TOKEN", "env-token")
	t.Setenv("CHATDECK_EXEC_ENABLED", "true")
	t.Setenv("CHATDECK_UPLOADS_DIR", filepath.Join(tempDir, "incoming"))
	t.Setenv("CHATDECK_API_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.Token != "env-token" {
		t.Errorf("expected token from env, got %q", cfg.API.Token)
	}
	if cfg.API.Bind != "127.0.0.1:7000" {
		t.Errorf("expected bind from file, got %q", cfg.API.Bind)
	}
	if !cfg.Exec.Enabled {
		t.Error("expected exec enabled from env")
	}
	if cfg.Exec.Shell != "/bin/bash" {
		t.Errorf("expected shell from file, got %q", cfg.Exec.Shell)
	}
	if cfg.Paths.UploadsDir != filepath.Join(tempDir, "incoming") {
		t.Errorf("expected uploads dir from env, got %q", cfg.Paths.UploadsDir)
	}
	if len(cfg.API.AllowedOrigins) != 2 {
		t.Errorf("expected two origins from env, got %v", cfg.API.AllowedOrigins)
	}
}

func TestLoadEnvFile(t *testing.T) {
	tempDir := t.TempDir()
	envPath := filepath.Join(tempDir, ".env")
	if err := os.WriteFile(envPath, []byte("CHATDECK_LOG_LEVEL=debug\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("CHATDECK_LOG_LEVEL", "")
	os.Unsetenv("CHATDECK_LOG_LEVEL")

	if err := config.LoadEnvFile(envPath); err != nil {
		t.Fatalf("LoadEnvFile returned error: %v", err)
	}
	cfg, _, _, err := config.Load(filepath.Join(tempDir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected level from env file, got %q", cfg.Logging.Level)
	}

	if err := config.LoadEnvFile(filepath.Join(tempDir, "absent.env")); err == nil {
		t.Fatal("expected error for missing env file")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "chatdeck.toml")
	if err := os.WriteFile(configPath, []byte("[api\nbind = 1"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Paths.ConfigDir != "config" || cfg.Paths.UploadsDir != "uploads" {
		t.Fatalf("unexpected sample paths: %+v", cfg.Paths)
	}
	if cfg.Exec.Enabled {
		t.Fatal("sample must not enable exec")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.ConfigDir = "/srv/chat"
	cfg.Paths.UploadsDir = "/srv/chat/"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when uploads dir equals config dir")
	}

	cfg = config.Default()
	cfg.API.Bind = "7860"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for bind without host:port")
	}

	cfg = config.Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log level")
	}

	cfg = config.Default()
	cfg.API.Bind = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty bind disables the API and should validate: %v", err)
	}
}
