package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App       AppConfig
	Container ContainerConfig
	Log       LogConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	Port  string
}

type ContainerConfig struct {
	// ValidateOnBoot runs Container.Validate before providers are booted.
	ValidateOnBoot bool
	// Manifest is an optional path to a YAML service manifest.
	Manifest string
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // json | console
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	env := Get("APP_ENV", "local")
	return &Config{
		App: AppConfig{
			Name:  Get("APP_NAME", "GoContainer"),
			Env:   env,
			Debug: GetBool("APP_DEBUG", env != "production"),
			Port:  Get("APP_PORT", "8000"),
		},
		Container: ContainerConfig{
			ValidateOnBoot: GetBool("CONTAINER_VALIDATE_ON_BOOT", true),
			Manifest:       Get("CONTAINER_MANIFEST", ""),
		},
		Log: LogConfig{
			Level:  Get("LOG_LEVEL", "info"),
			Format: Get("LOG_FORMAT", defaultFormat(env)),
		},
	}
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func defaultFormat(env string) string {
	if env == "production" {
		return "json"
	}
	return "console"
}
