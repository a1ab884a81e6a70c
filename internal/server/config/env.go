package config

import (
	"os"
	"time"
)

// parseEnv populates selected Config fields from environment variables.
//
// Supported variables:
//
//	ADDRESS       HTTP bind address (e.g., ":8080")
//	DATABASE_DSN  PostgreSQL DSN
//	JWT_SECRET    HMAC secret for signing tokens
//	JWT_EXPIRE    token lifetime in Go duration syntax (e.g., "1h")
//
// Unset variables leave the current value untouched. An unparseable
// JWT_EXPIRE panics, matching the JSON loader's behavior for bad input.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("ADDRESS"); ok {
		config.EndpointAddr = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("JWT_SECRET"); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("JWT_EXPIRE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.TokenValidityDuration = d
	}
}
