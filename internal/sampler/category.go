package sampler

// Category names one tracked kind of key.
type Category string

// Tracked categories.
const (
	CategoryDay     Category = "day"
	CategoryWeather Category = "weather"
	CategorySeason  Category = "season"
	CategoryZodiac  Category = "zodiac"
	CategoryHoliday Category = "holiday"
)

// Categories lists every category in tick processing order.
var Categories = []Category{
	CategoryDay,
	CategoryWeather,
	CategorySeason,
	CategoryZodiac,
	CategoryHoliday,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Key returns the snapshot's key for category c, or "" for an unknown category.
func (s Snapshot) Key(c Category) string {
	switch c {
	case CategoryDay:
		return s.DayPhase
	case CategoryWeather:
		return s.Weather
	case CategorySeason:
		return s.Season
	case CategoryZodiac:
		return s.Zodiac
	case CategoryHoliday:
		return s.Holiday
	default:
		return ""
	}
}
