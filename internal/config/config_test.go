package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	vars := []string{
		"VIRTUALDATE_WINDOW_DAYS",
		"VIRTUALDATE_OUTPUT_FORMAT",
		"VIRTUALDATE_TIMEZONE",
		"VIRTUALDATE_SCHEMA_VERSION",
	}
	for _, v := range vars {
		old, existed := os.LookupEnv(v)
		os.Unsetenv(v)
		t.Cleanup(func() {
			if existed {
				os.Setenv(v, old)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 30, cfg.DefaultWindowDays)
	require.Equal(t, "text", cfg.DefaultOutputFormat)
	require.Equal(t, "UTC", cfg.DefaultTimezone)
	require.Equal(t, 2, cfg.SchemaVersion)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	os.Setenv("VIRTUALDATE_WINDOW_DAYS", "7")
	os.Setenv("VIRTUALDATE_OUTPUT_FORMAT", "json")
	os.Setenv("VIRTUALDATE_TIMEZONE", "America/New_York")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7, cfg.DefaultWindowDays)
	require.Equal(t, "json", cfg.DefaultOutputFormat)
	require.Equal(t, "America/New_York", cfg.DefaultTimezone)
}

func TestLoadInvalidTimezoneErrors(t *testing.T) {
	clearEnv(t)
	os.Setenv("VIRTUALDATE_TIMEZONE", "Not/A/Zone")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadInvalidOutputFormatFallsBackToText(t *testing.T) {
	clearEnv(t)
	os.Setenv("VIRTUALDATE_OUTPUT_FORMAT", "xml")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "text", cfg.DefaultOutputFormat)
}

func TestLoadNonPositiveWindowDaysFallsBackToDefault(t *testing.T) {
	clearEnv(t)
	os.Setenv("VIRTUALDATE_WINDOW_DAYS", "-5")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 30, cfg.DefaultWindowDays)
}
