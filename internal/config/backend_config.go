package config

import (
	"fmt"
	"time"
)

// BackendConfig configures the reference REST backend binary.
type BackendConfig interface {
	GetPort() string
	GetJWTSecret() string
	GetAccessTokenExpiry() time.Duration
	GetSeedAdminPassword() string
	GetSeedEmployeePassword() string
}

type Backend struct{}

var _ BackendConfig = Backend{}

func (Backend) GetPort() string {
	port := GetEnv("PORT", "8080")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (Backend) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "change-me-in-production")
}

func (Backend) GetAccessTokenExpiry() time.Duration {
	return GetEnvDuration("ACCESS_TOKEN_EXPIRY", 10*time.Hour)
}

func (Backend) GetSeedAdminPassword() string {
	return GetEnv("SEED_ADMIN_PASSWORD", "admin")
}

func (Backend) GetSeedEmployeePassword() string {
	return GetEnv("SEED_EMPLOYEE_PASSWORD", "empleado")
}
