package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directories chatdeck reads from and writes to.
type Paths struct {
	ConfigDir  string `toml:"config_dir" env:"CONFIG_DIR"`
	UploadsDir string `toml:"uploads_dir" env:"UPLOADS_DIR"`
}

// API contains the HTTP listener configuration.
type API struct {
	Bind           string   `toml:"bind" env:"API_BIND"`
	Token          string   `toml:"token" env:"API_TOKEN"`
	AllowedOrigins []string `toml:"allowed_origins" env:"API_ALLOWED_ORIGINS"`
}

// Exec contains configuration for shell command streaming.
type Exec struct {
	// Enabled gates the HTTP exec endpoint. The CLI exec command ignores it.
	Enabled bool   `toml:"enabled" env:"EXEC_ENABLED"`
	Shell   string `toml:"shell" env:"EXEC_SHELL"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" env:"LOG_FORMAT"`
	Level  string `toml:"level" env:"LOG_LEVEL"`
}

// Config encapsulates all chatdeck runtime settings.
type Config struct {
	Paths   Paths   `toml:"paths"`
	API     API     `toml:"api"`
	Exec    Exec    `toml:"exec"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default settings file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/chatdeck/config.toml")
}

// Load locates and parses a settings file, applies the environment layer, and
// validates the result. The returned config has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("chatdeck.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the configuration directory. The uploads
// directory is created lazily by the first upload.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.ConfigDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.ConfigDir, err)
	}
	return nil
}

// LockPath returns the path of the single-instance lock held by the API daemon.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.ConfigDir, "chatdeck.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample settings file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
