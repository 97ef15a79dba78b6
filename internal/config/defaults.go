package config

const (
	defaultDataDir                 = "~/.local/share/gaffer/data"
	defaultLogDir                  = "~/.local/share/gaffer/logs"
	defaultMediaDir                = "~/.local/share/gaffer/media"
	defaultAPIBind                 = "127.0.0.1:7718"
	defaultImageBaseURL            = "https://api.openai.com/v1/images/generations"
	defaultImageModel              = "gpt-image-1"
	defaultImageTimeoutSeconds     = 120
	defaultVideoBaseURL            = "https://api.runwayml.com/v1"
	defaultVideoModel              = "gen4_turbo"
	defaultVideoTimeoutSeconds     = 60
	defaultVideoPollInterval       = 5
	defaultVideoPollTimeout        = 600
	defaultStorageRequestTimeout   = 60
	defaultNotifyRequestTimeout    = 10
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultLogRetentionDays        = 60
	defaultQueuePollInterval       = 5
	defaultErrorRetryInterval      = 10
	defaultHeartbeatInterval       = 15
	defaultHeartbeatTimeoutSeconds = 120
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			MediaDir: defaultMediaDir,
			APIBind:  defaultAPIBind,
		},
		ImageProvider: Provider{
			BaseURL:        defaultImageBaseURL,
			Model:          defaultImageModel,
			TimeoutSeconds: defaultImageTimeoutSeconds,
		},
		VideoProvider: Provider{
			BaseURL:             defaultVideoBaseURL,
			Model:               defaultVideoModel,
			TimeoutSeconds:      defaultVideoTimeoutSeconds,
			PollIntervalSeconds: defaultVideoPollInterval,
			PollTimeoutSeconds:  defaultVideoPollTimeout,
		},
		Storage: Storage{
			RequestTimeout: defaultStorageRequestTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Runs:           true,
			Assets:         true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeoutSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
