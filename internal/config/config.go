// Package config loads the almanac configuration file and process settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/almanac/internal/calendar"
	"github.com/talgya/almanac/internal/greeting"
	"github.com/talgya/almanac/internal/sampler"
)

// Config mirrors the YAML configuration file.
type Config struct {
	Calendar   CalendarConfig          `yaml:"calendar"`
	Seasons    map[string]SeasonConfig `yaml:"seasons"`
	Labels     Labels                  `yaml:"labels"`
	TimeFormat string                  `yaml:"time_format"`
	Greetings  Greetings               `yaml:"greetings"`
	Messages   Messages                `yaml:"messages"`
	Scheduler  SchedulerConfig         `yaml:"scheduler"`
	Tracking   TrackingConfig          `yaml:"tracking"`
}

// CalendarConfig sets the shape of the year and its display names.
type CalendarConfig struct {
	DaysPerMonth int               `yaml:"days_per_month"`
	StartYear    int               `yaml:"start_year"`
	Months       map[int]string    `yaml:"months"`
	Weekdays     map[int]string    `yaml:"weekdays"`
	Zodiac       []ZodiacEntry     `yaml:"zodiac"`
	Holidays     map[string]string `yaml:"holidays"`
}

// ZodiacEntry is one sign of the 12-year cycle.
type ZodiacEntry struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

// SeasonConfig names a season and the months it covers.
type SeasonConfig struct {
	Name   string `yaml:"name"`
	Months []int  `yaml:"months"`
}

// Labels are the display strings behind the day_type, weather and direction
// placeholders.
type Labels struct {
	Day             map[string]string `yaml:"day"`
	Weather         map[string]string `yaml:"weather"`
	Directions      []string          `yaml:"directions"`
	DirectionsShort []string          `yaml:"directions_short"`
}

// Greetings holds one section per tracked category.
type Greetings struct {
	Day     GreetingConfig `yaml:"day"`
	Weather GreetingConfig `yaml:"weather"`
	Season  GreetingConfig `yaml:"season"`
	Zodiac  GreetingConfig `yaml:"zodiac"`
	Holiday GreetingConfig `yaml:"holiday"`
}

// GreetingConfig toggles a category and maps its keys to message pools.
type GreetingConfig struct {
	Enabled  bool                `yaml:"enabled"`
	Messages map[string][]string `yaml:"messages"`
}

// Messages are the replies shown to whoever runs an admin command.
// {field}, {value}, {min} and {max} are substituted where they apply.
type Messages struct {
	NoPermission  string `yaml:"no_permission"`
	ReloadSuccess string `yaml:"reload_success"`
	SetSuccess    string `yaml:"set_success"`
	InvalidNumber string `yaml:"invalid_number"`
	OutOfRange    string `yaml:"out_of_range"`
	Usage         string `yaml:"usage"`
}

// SchedulerConfig sets how often the herald samples the world.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// TrackingConfig controls how disabled categories are tracked.
type TrackingConfig struct {
	TrackWhileDisabled bool `yaml:"track_while_disabled"`
}

// ErrInvalid marks configuration that parsed but cannot be used.
var ErrInvalid = errors.New("invalid config")

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// LoadOrDefault is Load, falling back to Default when path does not exist.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// Parse decodes YAML, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Greeting returns the greeting section for category c.
func (c *Config) Greeting(cat sampler.Category) GreetingConfig {
	switch cat {
	case sampler.CategoryDay:
		return c.Greetings.Day
	case sampler.CategoryWeather:
		return c.Greetings.Weather
	case sampler.CategorySeason:
		return c.Greetings.Season
	case sampler.CategoryZodiac:
		return c.Greetings.Zodiac
	case sampler.CategoryHoliday:
		return c.Greetings.Holiday
	default:
		return GreetingConfig{}
	}
}

// Enabled reports whether greetings for category c are switched on.
func (c *Config) Enabled(cat sampler.Category) bool {
	return c.Greeting(cat).Enabled
}

// CalendarConfig builds the calendar constants.
func (c *Config) CalendarConfig() *calendar.Config {
	cal := &calendar.Config{
		DaysPerMonth: c.Calendar.DaysPerMonth,
		StartYear:    c.Calendar.StartYear,
		SeasonMonths: make(map[string][]int, len(c.Seasons)),
		SeasonNames:  make(map[string]string, len(c.Seasons)),
		MonthNames:   c.Calendar.Months,
		WeekdayNames: c.Calendar.Weekdays,
		Holidays:     c.Calendar.Holidays,
	}
	for key, s := range c.Seasons {
		cal.SeasonMonths[key] = s.Months
		cal.SeasonNames[key] = s.Name
	}
	for _, z := range c.Calendar.Zodiac {
		cal.Zodiac = append(cal.Zodiac, calendar.ZodiacSign{Key: z.Key, Name: z.Name})
	}
	return cal
}

// Catalog builds the greeting pools for every category.
func (c *Config) Catalog() *greeting.Catalog {
	pools := make(map[sampler.Category]greeting.Pools, len(sampler.Categories))
	for _, cat := range sampler.Categories {
		pools[cat] = greeting.Pools(c.Greeting(cat).Messages)
	}
	return greeting.NewCatalog(pools)
}
