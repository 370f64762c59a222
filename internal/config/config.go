package config // package config loads application configuration from environment variables

import (
    "log"
    "os"
    "strings"
)

// Config holds the settings every process needs.  Required keys are
// enforced by must(); optional ones fall back to defaults.
type Config struct {
    Env         string // application environment (e.g. "dev", "prod")
    Port        string // HTTP port to listen on
    DBUser      string // database username
    DBPass      string // database password (optional)
    DBHost      string // database host address
    DBPort      string // database port number
    DBName      string // database name
    JWTSecret   string // HMAC secret shared with the identity provider
    LogLevel    string // zerolog level name
    LogPretty   bool   // human readable console output instead of JSON
    AutoMigrate bool   // create missing tables on start
}

// Load reads configuration values from environment variables and returns a
// Config.  Missing required variables cause the program to exit with a
// fatal log message.
func Load() Config {
    env := must("APP_ENV")
    return Config{
        Env:         env,
        Port:        must("APP_PORT"),
        DBUser:      must("DB_USER"),
        DBPass:      os.Getenv("DB_PASS"),
        DBHost:      must("DB_HOST"),
        DBPort:      must("DB_PORT"),
        DBName:      must("DB_NAME"),
        JWTSecret:   must("JWT_SECRET"),
        LogLevel:    envStr("LOG_LEVEL", "info"),
        LogPretty:   envBool("LOG_PRETTY", strings.EqualFold(env, "dev")),
        AutoMigrate: envBool("DB_AUTO_MIGRATE", false),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}
