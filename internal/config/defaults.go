package config

const (
	defaultTempDir        = "~/.cache/retempo/tmp"
	defaultLogDir         = "~/.local/share/retempo/logs"
	defaultHistoryDB      = "~/.local/share/retempo/history.db"
	defaultStretchBinary  = "rubberband"
	defaultCrispness      = 5
	defaultStretchTimeout = 0
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultSkipDerived    = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TempDir:   defaultTempDir,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Stretch: Stretch{
			Binary:         defaultStretchBinary,
			Crispness:      defaultCrispness,
			TimeoutSeconds: defaultStretchTimeout,
		},
		Batch: Batch{
			OverwriteExisting: false,
			SkipDerived:       defaultSkipDerived,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
