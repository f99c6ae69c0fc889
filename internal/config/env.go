package config

import (
	"fmt"
	"strings"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "CHATDECK_"

// applyEnv overlays CHATDECK_* variables on cfg. Only variables that are set
// to a non-empty value win, so an environment can switch exec.enabled on but
// not off.
func applyEnv(cfg *Config) error {
	var overrides Config
	if err := env.ParseWithOptions(&overrides, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if err := mergo.Merge(cfg, overrides, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge environment: %w", err)
	}
	return nil
}

// LoadEnvFile exports the variables of a dotenv file into the process
// environment. Variables that are already set keep their value.
func LoadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := godotenv.Load(expanded); err != nil {
		return fmt.Errorf("load env file %s: %w", expanded, err)
	}
	return nil
}
