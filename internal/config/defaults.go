package config

import (
	"strings"
	"time"
)

// Defaults used when the file leaves a value unset.
const (
	DefaultDaysPerMonth = 28
	DefaultTimeFormat   = "HH:mm"
	DefaultInterval     = time.Second
)

// DefaultSeasons is the four-season table used when the file has no seasons section.
func DefaultSeasons() map[string]SeasonConfig {
	return map[string]SeasonConfig{
		"spring": {Name: "&aSpring", Months: []int{3, 4, 5}},
		"summer": {Name: "&eSummer", Months: []int{6, 7, 8}},
		"autumn": {Name: "&6Autumn", Months: []int{9, 10, 11}},
		"winter": {Name: "&bWinter", Months: []int{12, 1, 2}},
	}
}

// ApplyDefaults fills in values the file left out. Greeting sections are not
// defaulted: an absent section means the category is disabled.
func (c *Config) ApplyDefaults() {
	if c.Calendar.DaysPerMonth == 0 {
		c.Calendar.DaysPerMonth = DefaultDaysPerMonth
	}
	if c.TimeFormat == "" {
		c.TimeFormat = DefaultTimeFormat
	}
	if c.Scheduler.Interval == 0 {
		c.Scheduler.Interval = DefaultInterval
	}
	c.Seasons = mergeSeasons(c.Seasons)
}

// mergeSeasons lays configured seasons over the built-in four. Keys are
// lowercased and entries without months are ignored.
func mergeSeasons(configured map[string]SeasonConfig) map[string]SeasonConfig {
	seasons := DefaultSeasons()
	for key, s := range configured {
		if len(s.Months) == 0 {
			continue
		}
		if s.Name == "" {
			s.Name = key
		}
		seasons[strings.ToLower(key)] = s
	}
	return seasons
}

// Default returns the built-in configuration, used when no file exists.
func Default() *Config {
	c := &Config{
		Calendar: CalendarConfig{
			DaysPerMonth: DefaultDaysPerMonth,
			StartYear:    1200,
			Months: map[int]string{
				1: "Deepwinter", 2: "Thawmoon", 3: "Seedtime", 4: "Rainmoon",
				5: "Bloomtide", 6: "Sunhigh", 7: "Hayfall", 8: "Goldmoon",
				9: "Harvest", 10: "Leaffall", 11: "Mistmoon", 12: "Frostmoot",
			},
			Weekdays: map[int]string{
				1: "Moonday", 2: "Tiwday", 3: "Wodenday", 4: "Thorday",
				5: "Freyday", 6: "Starday", 7: "Sunday",
			},
			Zodiac: []ZodiacEntry{
				{"rat", "&7Year of the Rat"}, {"ox", "&6Year of the Ox"},
				{"tiger", "&6Year of the Tiger"}, {"rabbit", "&fYear of the Rabbit"},
				{"dragon", "&cYear of the Dragon"}, {"snake", "&2Year of the Snake"},
				{"horse", "&6Year of the Horse"}, {"goat", "&fYear of the Goat"},
				{"monkey", "&eYear of the Monkey"}, {"rooster", "&cYear of the Rooster"},
				{"dog", "&6Year of the Dog"}, {"pig", "&dYear of the Pig"},
			},
			Holidays: map[string]string{
				"1-1":   "&6New Year",
				"3-21":  "&aFirst Bloom",
				"6-14":  "&eMidsummer",
				"9-20":  "&6Harvest Feast",
				"12-21": "&bLongest Night",
			},
		},
		Seasons: DefaultSeasons(),
		Labels: Labels{
			Day: map[string]string{
				"morning": "&eMorning", "day": "&6Day",
				"evening": "&cEvening", "night": "&9Night",
			},
			Weather: map[string]string{
				"sun": "&eClear", "rain": "&9Rain",
				"snow": "&fSnow", "storm": "&8Thunderstorm",
			},
			Directions: []string{
				"&fSouth", "&fSouth-West", "&fWest", "&fNorth-West",
				"&fNorth", "&fNorth-East", "&fEast", "&fSouth-East",
			},
			DirectionsShort: []string{"S", "SW", "W", "NW", "N", "NE", "E", "SE"},
		},
		TimeFormat: DefaultTimeFormat,
		Greetings: Greetings{
			Day: GreetingConfig{Enabled: true, Messages: map[string][]string{
				"morning": {"&eThe sun rises. Good morning!", "&eA new day begins."},
				"day":     {"&6It is midday."},
				"evening": {"&cThe sun is setting."},
				"night":   {"&9Night falls. Keep your torches close."},
			}},
			Weather: GreetingConfig{Enabled: true, Messages: map[string][]string{
				"sun":   {"&eThe skies clear."},
				"rain":  {"&9It starts to rain."},
				"snow":  {"&fSnow begins to fall."},
				"storm": {"&8Thunder rolls across the land!"},
			}},
			Season: GreetingConfig{Enabled: true, Messages: map[string][]string{
				"spring": {"&aSpring has come."},
				"summer": {"&eSummer is here."},
				"autumn": {"&6Autumn leaves begin to fall."},
				"winter": {"&bWinter has arrived."},
			}},
			Zodiac: GreetingConfig{Enabled: true, Messages: map[string][]string{
				"rat":    {"&7The Year of the Rat begins."},
				"dragon": {"&cThe Year of the Dragon begins!"},
			}},
			Holiday: GreetingConfig{Enabled: true, Messages: map[string][]string{
				"1-1":  {"&6Happy New Year!"},
				"6-14": {"&eMidsummer celebrations begin."},
			}},
		},
		Messages: Messages{
			NoPermission:  "&cYou do not have permission to do that.",
			ReloadSuccess: "&aAlmanac configuration reloaded.",
			SetSuccess:    "&a{field} set to {value}.",
			InvalidNumber: "&c'{value}' is not a whole number.",
			OutOfRange:    "&c{field} must be between {min} and {max}.",
			Usage:         "&eUsage: reload | set <day|month|year> <value>",
		},
		Scheduler: SchedulerConfig{Interval: DefaultInterval},
	}
	return c
}
