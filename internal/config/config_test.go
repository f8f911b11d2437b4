package config_test

import (
	"testing"
	"time"

	"github.com/straye-as/agency-pipeline/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, time.Monday, cfg.Calendar.WeekStartDay())
	assert.False(t, cfg.Jobs.ReminderEnabled)
	assert.Equal(t, 3, cfg.Jobs.ReminderLookaheadDays)
	assert.Equal(t, time.Minute, cfg.Jobs.ReminderTimeoutDuration())
	assert.Contains(t, cfg.RateLimit.WhitelistPaths, "/health")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("CALENDAR_WEEKSTART", "sunday")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, time.Sunday, cfg.Calendar.WeekStartDay())
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestCalendarConfig_WeekStartDay(t *testing.T) {
	tests := map[string]time.Weekday{
		"":          time.Monday,
		"Sunday":    time.Sunday,
		" saturday": time.Saturday,
		"MONDAY":    time.Monday,
		"someday":   time.Monday,
	}
	for in, want := range tests {
		c := config.CalendarConfig{WeekStart: in}
		assert.Equal(t, want, c.WeekStartDay(), "weekStart %q", in)
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	d := config.DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Name: "agency", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=agency sslmode=disable", d.ConnectionString())
}
