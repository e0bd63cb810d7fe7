package config_test

import (
	"os"
	"testing"

	"github.com/km-arc/go-container/framework/config"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func setEnv(t *testing.T, key, val string) {
	t.Helper()
	t.Setenv(key, val) // automatically restored after test
}

// unsetEnv removes keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

var configKeys = []string{
	"APP_NAME", "APP_ENV", "APP_DEBUG", "APP_PORT",
	"CONTAINER_VALIDATE_ON_BOOT", "CONTAINER_MANIFEST",
	"LOG_LEVEL", "LOG_FORMAT",
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, configKeys...)
	cfg := config.Load("testdata/empty.env")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"App.Name", cfg.App.Name, "GoContainer"},
		{"App.Env", cfg.App.Env, "local"},
		{"App.Port", cfg.App.Port, "8000"},
		{"Container.Manifest", cfg.Container.Manifest, ""},
		{"Log.Level", cfg.Log.Level, "info"},
		{"Log.Format", cfg.Log.Format, "console"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	if !cfg.App.Debug {
		t.Error("App.Debug should default to true outside production")
	}
	if !cfg.Container.ValidateOnBoot {
		t.Error("Container.ValidateOnBoot should default to true")
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	unsetEnv(t, configKeys...)
	setEnv(t, "APP_NAME", "MyApp")
	setEnv(t, "APP_ENV", "production")
	setEnv(t, "APP_PORT", "9000")
	setEnv(t, "LOG_LEVEL", "debug")

	cfg := config.Load("testdata/empty.env")

	if cfg.App.Name != "MyApp" {
		t.Errorf("App.Name: got %q want %q", cfg.App.Name, "MyApp")
	}
	if !cfg.IsProduction() {
		t.Errorf("App.Env: got %q want %q", cfg.App.Env, "production")
	}
	if cfg.App.Port != "9000" {
		t.Errorf("App.Port: got %q want %q", cfg.App.Port, "9000")
	}
	if cfg.App.Debug {
		t.Error("App.Debug should default to false in production")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level: got %q want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format: got %q want %q", cfg.Log.Format, "json")
	}
}

func TestLoad_FromEnvFile(t *testing.T) {
	unsetEnv(t, configKeys...)

	cfg := config.Load("testdata/app.env")

	if cfg.App.Name != "FromFile" {
		t.Errorf("App.Name: got %q want %q", cfg.App.Name, "FromFile")
	}
	if cfg.Container.Manifest != "services.yaml" {
		t.Errorf("Container.Manifest: got %q want %q", cfg.Container.Manifest, "services.yaml")
	}
	if cfg.Container.ValidateOnBoot {
		t.Error("Container.ValidateOnBoot should be false")
	}
}

func TestLoad_RealEnvWinsOverFile(t *testing.T) {
	unsetEnv(t, configKeys...)
	setEnv(t, "APP_NAME", "FromEnv")

	cfg := config.Load("testdata/app.env")

	if cfg.App.Name != "FromEnv" {
		t.Errorf("App.Name: got %q want %q", cfg.App.Name, "FromEnv")
	}
}

func TestLoad_AppDebugFalse(t *testing.T) {
	setEnv(t, "APP_DEBUG", "false")
	cfg := config.Load("testdata/empty.env")
	if cfg.App.Debug {
		t.Error("expected App.Debug to be false")
	}
}

// ── Get / GetInt / GetBool ───────────────────────────────────────────────────

func TestGet_ReturnsValue(t *testing.T) {
	setEnv(t, "CUSTOM_KEY", "hello")
	if got := config.Get("CUSTOM_KEY", "default"); got != "hello" {
		t.Errorf("got %q want %q", got, "hello")
	}
}

func TestGet_ReturnsFallback(t *testing.T) {
	unsetEnv(t, "MISSING_KEY")
	if got := config.Get("MISSING_KEY", "fallback"); got != "fallback" {
		t.Errorf("got %q want %q", got, "fallback")
	}
}

func TestGetInt_ReturnsInt(t *testing.T) {
	setEnv(t, "SOME_INT", "42")
	if got := config.GetInt("SOME_INT", 0); got != 42 {
		t.Errorf("got %d want %d", got, 42)
	}
}

func TestGetInt_ReturnsFallbackOnInvalid(t *testing.T) {
	setEnv(t, "SOME_INT", "notanint")
	if got := config.GetInt("SOME_INT", 99); got != 99 {
		t.Errorf("got %d want %d", got, 99)
	}
}

func TestGetBool_True(t *testing.T) {
	for _, val := range []string{"true", "1", "True", "TRUE"} {
		setEnv(t, "BOOL_KEY", val)
		if !config.GetBool("BOOL_KEY", false) {
			t.Errorf("expected true for %q", val)
		}
	}
}

func TestGetBool_ReturnsFallbackOnInvalid(t *testing.T) {
	setEnv(t, "BOOL_KEY", "notabool")
	if config.GetBool("BOOL_KEY", true) != true {
		t.Error("expected fallback true")
	}
}
