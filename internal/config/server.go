package config

import (
	"time"
)

func GetPort() string {
	return GetEnvOrDefault("PORT", "8080")
}

func GetShutdownTimeout() time.Duration {
	return parseEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second)
}
