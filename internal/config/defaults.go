package config

const (
	defaultConfigDir  = "config"
	defaultUploadsDir = "uploads"
	defaultAPIBind    = "127.0.0.1:7860"
	defaultShell      = "/bin/sh"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ConfigDir:  defaultConfigDir,
			UploadsDir: defaultUploadsDir,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Exec: Exec{
			Enabled: false,
			Shell:   defaultShell,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
