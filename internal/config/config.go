package config

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	NotificationConfig
	RoutesConfig
	BackendConfig
	CorsConfig
}

type EnvConfig interface {
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	API
	Session
	Notification
	Routes
	Backend
	Cors
}

func New() Config {
	return mainConfig{}
}
