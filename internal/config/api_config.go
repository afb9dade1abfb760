package config

import "time"

// APIConfig describes how the REST collaborator is reached.
type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetLoginEndpoint() string
	GetLogoutEndpoint() string
	GetMeEndpoint() string
}

type API struct{}

var _ APIConfig = API{}

func (API) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:8080/api")
}

func (API) GetAPITimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", 10*time.Second)
}

func (API) GetLoginEndpoint() string {
	return "/auth/login"
}

func (API) GetLogoutEndpoint() string {
	return "/auth/logout"
}

func (API) GetMeEndpoint() string {
	return "/auth/me"
}
