package config

const (
	defaultDownloadDir        = "~/.local/share/snatch/downloads"
	defaultLogDir             = "~/.local/share/snatch/logs"
	defaultAPIBind            = "127.0.0.1:5823"
	defaultQuality            = "480p"
	defaultConcurrency        = 5
	defaultMinConcurrency     = 1
	defaultMaxConcurrency     = 10
	defaultStrategyBackoffSec = 2
	defaultRetryDelaySec      = 2
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir: defaultDownloadDir,
			LogDir:      defaultLogDir,
			APIBind:     defaultAPIBind,
		},
		Downloader: Downloader{
			BinaryCandidates:       []string{"./yt-dlp", "yt-dlp"},
			DefaultQuality:         defaultQuality,
			DefaultConcurrency:     defaultConcurrency,
			MinConcurrency:         defaultMinConcurrency,
			MaxConcurrency:         defaultMaxConcurrency,
			StrategyBackoffSeconds: defaultStrategyBackoffSec,
			RetryDelaySeconds:      defaultRetryDelaySec,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
