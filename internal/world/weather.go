package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds weather generation parameters.
type GenConfig struct {
	Seed             int64   // Random seed (0 = random)
	YearDays         int     // Days in a calendar year, for the seasonal temperature swing
	BaseTemperature  float64 // Mean ground temperature at spawn
	SeasonalSwing    float64 // Half the gap between midwinter and midsummer
	LocalSwing       float64 // Positional variation around the seasonal value
	StormThreshold   float64 // Precipitation noise above this means a storm (0.0–1.0)
	ThunderThreshold float64 // Thunder noise above this during a storm means lightning (0.0–1.0)
	WeatherPeriod    float64 // Ticks per unit of weather noise; larger = slower weather
}

// DefaultGenConfig returns weather that snows in deep winter and storms a few
// times per in-game week.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:             0,
		YearDays:         28 * 12,
		BaseTemperature:  0.45,
		SeasonalSwing:    0.40,
		LocalSwing:       0.10,
		StormThreshold:   0.62,
		ThunderThreshold: 0.65,
		WeatherPeriod:    9000,
	}
}

// Weather derives precipitation and temperature from the clock using
// independent simplex noise layers.
type Weather struct {
	Storm   bool
	Thunder bool

	cfg          GenConfig
	precipNoise  opensimplex.Noise
	thunderNoise opensimplex.Noise
	tempNoise    opensimplex.Noise
}

// NewWeather creates the noise layers for cfg.
func NewWeather(cfg GenConfig) *Weather {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	if cfg.WeatherPeriod <= 0 {
		cfg.WeatherPeriod = DefaultGenConfig().WeatherPeriod
	}
	if cfg.YearDays <= 0 {
		cfg.YearDays = DefaultGenConfig().YearDays
	}
	return &Weather{
		cfg:          cfg,
		precipNoise:  opensimplex.NewNormalized(seed),
		thunderNoise: opensimplex.NewNormalized(seed + 1),
		tempNoise:    opensimplex.NewNormalized(seed + 2),
	}
}

// Update recomputes precipitation for a full tick count.
func (w *Weather) Update(fullTime uint64) {
	t := float64(fullTime) / w.cfg.WeatherPeriod
	w.Storm = w.precipNoise.Eval2(t, 0) > w.cfg.StormThreshold
	w.Thunder = w.Storm && w.thunderNoise.Eval2(t*2, 0) > w.cfg.ThunderThreshold
}

// TemperatureAt returns the ground temperature at (x, z). Midwinter falls at
// the start of the year.
func (w *Weather) TemperatureAt(x, z float64, fullTime uint64) float64 {
	yearTicks := float64(w.cfg.YearDays) * TicksPerDay
	phase := math.Mod(float64(fullTime), yearTicks) / yearTicks
	seasonal := w.cfg.BaseTemperature - w.cfg.SeasonalSwing*math.Cos(2*math.Pi*phase)

	// Local variation: normalized noise is 0..1, centre it on zero.
	local := (w.tempNoise.Eval2(x/256, z/256) - 0.5) * 2 * w.cfg.LocalSwing
	return seasonal + local
}
