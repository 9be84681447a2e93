package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorld(fullTime uint64) *World {
	cfg := DefaultGenConfig()
	cfg.Seed = 42
	return New("test", cfg, fullTime)
}

func TestClock(t *testing.T) {
	w := testWorld(TicksPerDay*3 + 1500)
	assert.Equal(t, int64(1500), w.RawTime())
	assert.Equal(t, uint64(TicksPerDay*3+1500), w.FullTime())

	w.Step(TicksPerDay - 1500)
	assert.Equal(t, int64(0), w.RawTime())
	assert.Equal(t, uint64(TicksPerDay*4), w.FullTime())

	w.SetFullTime(10)
	assert.Equal(t, int64(10), w.RawTime())
}

func TestWeatherIsDeterministicForSeed(t *testing.T) {
	a := testWorld(0)
	b := testWorld(0)
	for i := 0; i < 200; i++ {
		a.Step(500)
		b.Step(500)
		require.Equal(t, a.HasStorm(), b.HasStorm())
		require.Equal(t, a.IsThundering(), b.IsThundering())
		require.Equal(t, a.ReferenceTemperature(), b.ReferenceTemperature())
	}
}

func TestThunderOnlyDuringStorm(t *testing.T) {
	w := testWorld(0)
	for i := 0; i < 2000; i++ {
		w.Step(250)
		if w.IsThundering() {
			require.True(t, w.HasStorm())
		}
	}
}

func TestWinterColderThanSummer(t *testing.T) {
	cfg := DefaultGenConfig()
	weather := NewWeather(cfg)
	yearTicks := uint64(cfg.YearDays) * TicksPerDay

	winter := weather.TemperatureAt(0, 0, 0)
	summer := weather.TemperatureAt(0, 0, yearTicks/2)
	assert.Less(t, winter, 0.15+cfg.LocalSwing, "midwinter can snow")
	assert.Greater(t, summer, winter+cfg.SeasonalSwing)
}

func TestParticipants(t *testing.T) {
	w := testWorld(0)
	a := w.Join("alice")
	b := w.Join("")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Contains(t, b.Name, "wanderer-")

	require.True(t, w.Move(a.ID, 10, -4, 90))
	p, ok := w.Participant(a.ID)
	require.True(t, ok)
	assert.Equal(t, 90.0, p.Yaw)
	assert.Equal(t, 10.0, p.X)

	assert.False(t, w.Move("nobody", 0, 0, 0))
	assert.Len(t, w.Participants(), 2)

	w.Leave(a.ID)
	_, ok = w.Participant(a.ID)
	assert.False(t, ok)
	assert.Len(t, w.Participants(), 1)
}
