package config

const (
	defaultScratchDir         = "~/.local/share/clipforge/scratch"
	defaultLogDir             = "~/.local/share/clipforge/logs"
	defaultAPIBind            = "127.0.0.1:7519"
	defaultFFmpegBinary       = "ffmpeg"
	defaultLogLevel           = "info"
	defaultLogFormat          = "auto"
	defaultNtfyRequestTimeout = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: defaultScratchDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		FFmpeg: FFmpeg{
			Binary: defaultFFmpegBinary,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
		},
	}
}
