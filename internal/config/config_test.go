package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/almanac/internal/sampler"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestExampleFileLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.yml"))
	require.NoError(t, err)

	assert.Equal(t, 28, cfg.Calendar.DaysPerMonth)
	assert.Equal(t, 1200, cfg.Calendar.StartYear)
	assert.Equal(t, "Sunhigh", cfg.Calendar.Months[6])
	assert.Len(t, cfg.Calendar.Zodiac, 12)
	assert.Equal(t, time.Second, cfg.Scheduler.Interval)
	assert.True(t, cfg.Enabled(sampler.CategoryDay))
	assert.Len(t, cfg.Labels.Directions, 8)

	cal := cfg.CalendarConfig()
	assert.Equal(t, "summer", cal.SeasonKey(6))
	assert.Equal(t, "pig", cal.ZodiacKey(1211))

	cat := cfg.Catalog()
	assert.Len(t, cat.Messages(sampler.CategoryDay, "morning"), 2)
	assert.Equal(t, []string{"&6Happy New Year!"}, cat.Messages(sampler.CategoryHoliday, "1-1"))
}

func TestMinimalFileGetsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("calendar:\n  start_year: 5\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultDaysPerMonth, cfg.Calendar.DaysPerMonth)
	assert.Equal(t, DefaultTimeFormat, cfg.TimeFormat)
	assert.Equal(t, DefaultInterval, cfg.Scheduler.Interval)
	assert.Len(t, cfg.Seasons, 4)
	for _, c := range sampler.Categories {
		assert.False(t, cfg.Enabled(c), "absent section disables %s", c)
	}
}

func TestSeasonKeysLowercasedAndNamed(t *testing.T) {
	cfg, err := Parse([]byte(`
seasons:
  Spring: { months: [3, 4, 5] }
  Autumn: { name: "&6Fall", months: [9, 10, 11] }
`))
	require.NoError(t, err)
	assert.Equal(t, "Spring", cfg.Seasons["spring"].Name)
	assert.Equal(t, "&6Fall", cfg.Seasons["autumn"].Name)
	assert.NotContains(t, cfg.Seasons, "Spring")
	assert.Equal(t, "autumn", cfg.CalendarConfig().SeasonKey(9))
}

func TestSeasonsMergeOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte("seasons:\n  spring: { name: \"&aBloom\", months: [3, 4, 5] }\n"))
	require.NoError(t, err)

	cal := cfg.CalendarConfig()
	assert.Equal(t, "winter", cal.SeasonKey(1))
	assert.Equal(t, "spring", cal.SeasonKey(4))
	assert.Equal(t, "summer", cal.SeasonKey(6))
	assert.Equal(t, "autumn", cal.SeasonKey(9))
	assert.Equal(t, "&aBloom", cfg.Seasons["spring"].Name)
	assert.Len(t, cfg.Seasons, 4)
}

func TestSeasonWithoutMonthsKeepsDefault(t *testing.T) {
	cfg, err := Parse([]byte("seasons:\n  summer: { name: \"&eHot\" }\n  monsoon: { months: [] }\n"))
	require.NoError(t, err)

	assert.Equal(t, "&eSummer", cfg.Seasons["summer"].Name)
	assert.Equal(t, []int{6, 7, 8}, cfg.Seasons["summer"].Months)
	assert.NotContains(t, cfg.Seasons, "monsoon")
}

func TestSeasonsCanBeRedrawn(t *testing.T) {
	cfg, err := Parse([]byte(`
seasons:
  winter: { months: [11, 12, 1, 2, 3] }
  spring: { months: [4, 5] }
  autumn: { months: [9, 10] }
`))
	require.NoError(t, err)

	cal := cfg.CalendarConfig()
	assert.Equal(t, "winter", cal.SeasonKey(3))
	assert.Equal(t, "winter", cal.SeasonKey(11))
	assert.Equal(t, "spring", cal.SeasonKey(4))
	assert.Equal(t, "summer", cal.SeasonKey(7))
}

func TestValidateRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative days", "calendar:\n  days_per_month: -3\n"},
		{"month out of range", "seasons:\n  odd: { months: [13] }\n"},
		{"overlapping seasons", "seasons:\n  a: { months: [1, 2] }\n  b: { months: [2, 3] }\n"},
		{"season taking a default month", "seasons:\n  wet: { months: [1] }\n"},
		{"bad holiday", "calendar:\n  holidays:\n    \"13-1\": x\n"},
		{"holiday past month end", "calendar:\n  days_per_month: 10\n  holidays:\n    \"1-11\": x\n"},
		{"non canonical holiday", "calendar:\n  holidays:\n    \"01-01\": x\n"},
		{"unknown day phase", "greetings:\n  day:\n    messages:\n      dusk: [hi]\n"},
		{"unknown weather", "greetings:\n  weather:\n    messages:\n      hail: [hi]\n"},
		{"unknown season greeting", "greetings:\n  season:\n    messages:\n      monsoon: [hi]\n"},
		{"unknown zodiac greeting", "greetings:\n  zodiac:\n    messages:\n      cat: [hi]\n"},
		{"negative interval", "scheduler:\n  interval: -1s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), err.Error())
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse([]byte("calendar: [unclosed"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalid))
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()

	cfg, found, err := LoadOrDefault(filepath.Join(dir, "missing.yml"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("calendar:\n  days_per_month: 30\n"), 0o644))
	cfg, found, err = LoadOrDefault(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 30, cfg.Calendar.DaysPerMonth)
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("ALMANAC_API_PORT", "9090")
	t.Setenv("ALMANAC_TICK_INTERVAL", "10ms")
	t.Setenv("ALMANAC_LOG_LEVEL", "debug")
	t.Setenv("ALMANAC_CORS_ORIGINS", "https://map.example.org,https://wiki.example.org")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://map.example.org", "https://wiki.example.org"}, s.CORSOrigins)
	assert.Equal(t, 9090, s.APIPort)
	assert.Equal(t, 10*time.Millisecond, s.TickInterval)
	assert.Equal(t, "config.yml", s.ConfigPath)
	assert.Equal(t, "almanac.broadcast", s.NATSSubject)
	assert.Equal(t, "DEBUG", s.Level().String())

	s.LogLevel = "loud"
	assert.Equal(t, "INFO", s.Level().String())
}
