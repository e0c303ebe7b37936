package config // package config loads application configuration from environment variables

import (
	"log"  // log is used to report configuration errors and halt execution
	"os"   // os provides access to environment variables
	"time" // time represents TTL durations
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The catalog database is optional: when DB_HOST
// is unset the server runs without a catalog and addItem requires a full
// product snapshot in the payload.
type Config struct {
	Env         string        // application environment (e.g. "dev", "prod")
	Port        string        // HTTP port to listen on
	StoreKind   string        // session store backend: "memory" or "redis"
	SessionTTL  time.Duration // sliding idle expiry for sessions
	TokenSecret string        // secret used to sign participant tokens
	TokenTTL    time.Duration // participant token lifetime
	DBUser      string        // catalog database username
	DBPass      string        // catalog database password (optional)
	DBHost      string        // catalog database host; empty disables the catalog
	DBPort      string        // catalog database port
	DBName      string        // catalog database name
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:         must("APP_ENV"),                        // environment (dev/test/prod)
		Port:        must("APP_PORT"),                       // port to bind the HTTP server
		StoreKind:   getenv("SESSION_STORE", "memory"),      // session store backend selector
		SessionTTL:  parseDur(getenv("SESSION_TTL", "24h")), // idle session eviction window
		TokenSecret: must("TOKEN_SECRET"),                   // secret for participant tokens
		TokenTTL:    parseDur(getenv("TOKEN_TTL", "48h")),   // outlives the session window
		DBUser:      os.Getenv("DB_USER"),                   // catalog database user
		DBPass:      os.Getenv("DB_PASS"),                   // catalog database password (empty allowed)
		DBHost:      os.Getenv("DB_HOST"),                   // catalog database host (empty disables catalog)
		DBPort:      getenv("DB_PORT", "3306"),              // catalog database port
		DBName:      os.Getenv("DB_NAME"),                   // catalog database name
	}
}

// CatalogEnabled reports whether a catalog database was configured.
func (c Config) CatalogEnabled() bool { return c.DBHost != "" }

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
