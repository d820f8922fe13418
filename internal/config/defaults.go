package config

const (
	defaultDataDir      = "~/.local/share/hireflow/data"
	defaultLogDir       = "~/.local/share/hireflow/logs"
	defaultAPIBind      = "127.0.0.1:7461"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultDueDays      = 3
	defaultPageSize     = 20
	defaultLockTerminal = false
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Pipeline: Pipeline{
			LockTerminalStages: defaultLockTerminal,
			DefaultDueDays:     defaultDueDays,
			PageSize:           defaultPageSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
