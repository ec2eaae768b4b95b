package config

const (
	defaultLogDir           = "~/.local/share/reel/logs"
	defaultHistoryDB        = "~/.local/share/reel/history.db"
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
	defaultFPCalcBinary     = "fpcalc"
	defaultAudioQuality     = "high"
	defaultVideoQuality     = "source"
	defaultImageQuality     = "high"
	defaultOrganizeProgress = 100
	defaultAcoustIDBaseURL  = "https://api.acoustid.org/v2/lookup"
	defaultAcoustIDTimeout  = 15
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
			FPCalc:  defaultFPCalcBinary,
		},
		Conversion: Conversion{
			AudioQuality:    defaultAudioQuality,
			VideoQuality:    defaultVideoQuality,
			ImageQuality:    defaultImageQuality,
			UseGPU:          true,
			PreferredVendor: "auto",
		},
		Organize: Organize{
			ProgressEvery: defaultOrganizeProgress,
		},
		AcoustID: AcoustID{
			BaseURL:        defaultAcoustIDBaseURL,
			TimeoutSeconds: defaultAcoustIDTimeout,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
