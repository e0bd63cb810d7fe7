package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/logging"
)

func testConfig(level, format string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "test", Env: "testing"},
		Log: config.LogConfig{Level: level, Format: format},
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		t.Run(format, func(t *testing.T) {
			log, err := logging.New(testConfig("warn", format))
			require.NoError(t, err)
			assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
			assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
		})
	}
}

func TestNew_Debug(t *testing.T) {
	log, err := logging.New(testConfig("debug", "console"))
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_Invalid(t *testing.T) {
	_, err := logging.New(testConfig("loud", "json"))
	assert.Error(t, err)

	_, err = logging.New(testConfig("info", "xml"))
	assert.Error(t, err)
}
