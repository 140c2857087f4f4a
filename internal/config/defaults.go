package config

const (
	defaultConfigPath          = "~/.config/conlog/config.toml"
	defaultLogFilePath         = "~/.local/share/conlog/logs/conlog.log"
	defaultLogRetentionDays    = 30
	defaultHistoryPath         = "~/.local/share/conlog/history.db"
	defaultHistoryBucket       = 10
	defaultStructuredOutput    = "stderr"
	defaultLogLevel            = "info"
	defaultColour              = "auto"
	defaultTickIntervalSeconds = 5
	defaultStallAfterSeconds   = 6
	defaultSink                = "StandardOut"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Enabled: true,
			Sinks:   []string{defaultSink},
			Colour:  defaultColour,
			Level:   defaultLogLevel,
		},
		File: File{
			Path:           defaultLogFilePath,
			RetentionDays:  defaultLogRetentionDays,
			FollowRotation: true,
		},
		History: History{
			Path:          defaultHistoryPath,
			BucketPercent: defaultHistoryBucket,
		},
		Structured: Structured{
			Output: defaultStructuredOutput,
			Level:  defaultLogLevel,
		},
		Progress: Progress{
			TickIntervalSeconds: defaultTickIntervalSeconds,
			StallAfterSeconds:   defaultStallAfterSeconds,
		},
	}
}
