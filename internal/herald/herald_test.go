package herald

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/almanac/internal/calendar"
	"github.com/talgya/almanac/internal/config"
	"github.com/talgya/almanac/internal/sampler"
)

type fakeWorld struct {
	raw     int64
	full    uint64
	storm   bool
	thunder bool
	temp    float64
}

func (f *fakeWorld) RawTime() int64                { return f.raw }
func (f *fakeWorld) FullTime() uint64              { return f.full }
func (f *fakeWorld) HasStorm() bool                { return f.storm }
func (f *fakeWorld) IsThundering() bool            { return f.thunder }
func (f *fakeWorld) ReferenceTemperature() float64 { return f.temp }

// setTime moves both counters to a day and raw time.
func (f *fakeWorld) setTime(day uint64, raw int64) {
	f.full = day*calendar.TicksPerDay + uint64(raw)
	f.raw = raw
}

type sinkLog struct {
	sent []string
}

func (s *sinkLog) Broadcast(msg string) {
	if strings.Contains(msg, "explode") {
		panic("sink failure")
	}
	s.sent = append(s.sent, msg)
}

type recorderLog struct {
	got []Transition
}

func (r *recorderLog) Record(t Transition) { r.got = append(r.got, t) }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Greetings.Day.Messages = map[string][]string{
		"morning": {"&emorning"}, "day": {"&6day"},
		"evening": {"&cevening"}, "night": {"&9night"},
	}
	cfg.Greetings.Weather.Messages = map[string][]string{
		"sun": {"sun"}, "rain": {"rain"}, "snow": {"snow"}, "storm": {"storm"},
	}
	cfg.Greetings.Season.Messages = map[string][]string{
		"spring": {"spring"}, "summer": {"summer"}, "autumn": {"autumn"}, "winter": {"winter"},
	}
	cfg.Greetings.Holiday.Messages = map[string][]string{"1-2": {"holiday"}}
	return cfg
}

func newTestHerald(cfg *config.Config, w *fakeWorld) (*Herald, *sinkLog) {
	sink := &sinkLog{}
	h := New(cfg, func() (sampler.World, bool) { return w, true }, sink, 1)
	return h, sink
}

func TestFirstTickIsSilent(t *testing.T) {
	w := &fakeWorld{temp: 0.5}
	h, sink := newTestHerald(testConfig(), w)

	assert.Empty(t, h.Tick(1))
	assert.Empty(t, sink.sent)
	assert.Equal(t, calendar.PhaseMorning, h.State().Last(sampler.CategoryDay))

	snap, ok := h.LastSnapshot()
	require.True(t, ok)
	assert.Equal(t, sampler.WeatherSun, snap.Weather)
}

func TestTransitionFiresOnce(t *testing.T) {
	w := &fakeWorld{temp: 0.5}
	h, sink := newTestHerald(testConfig(), w)
	h.Tick(1)

	w.setTime(0, 6000) // noon
	fired := h.Tick(2)
	require.Len(t, fired, 1)
	assert.Equal(t, sampler.CategoryDay, fired[0].Category)
	assert.Equal(t, calendar.PhaseMorning, fired[0].From)
	assert.Equal(t, calendar.PhaseDay, fired[0].Key)
	assert.Equal(t, "§6day", fired[0].Message)
	assert.True(t, fired[0].Sent)
	assert.Equal(t, []string{"§6day"}, sink.sent)

	for tick := uint64(3); tick < 10; tick++ {
		assert.Empty(t, h.Tick(tick), "unchanged world never fires again")
	}
	assert.Len(t, sink.sent, 1)
}

func TestWeatherTransitions(t *testing.T) {
	w := &fakeWorld{temp: 0.10}
	h, sink := newTestHerald(testConfig(), w)
	h.Tick(1)

	w.storm = true
	h.Tick(2)
	w.temp = 0.20
	h.Tick(3)
	w.thunder = true
	h.Tick(4)
	w.storm, w.thunder = false, false
	h.Tick(5)

	assert.Equal(t, []string{"snow", "rain", "storm", "sun"}, sink.sent)
}

func TestDayRolloverFiresSeasonAndHoliday(t *testing.T) {
	cfg := testConfig()
	w := &fakeWorld{temp: 0.5}
	// Last day of February (28 days per month), late evening.
	w.setTime(28*2-1, 15000)
	h, sink := newTestHerald(cfg, w)
	h.Tick(1)

	// Next morning: 1st of March.
	w.setTime(28*2, 0)
	fired := h.Tick(2)

	var cats []sampler.Category
	for _, f := range fired {
		cats = append(cats, f.Category)
	}
	assert.Equal(t, []sampler.Category{sampler.CategoryDay, sampler.CategorySeason, sampler.CategoryHoliday}, cats)
	assert.Equal(t, []string{"§emorning", "spring"}, sink.sent, "3-1 has no holiday greeting")
	assert.False(t, fired[2].Sent)
}

func TestReloadSuppressesNextTick(t *testing.T) {
	w := &fakeWorld{temp: 0.5}
	h, sink := newTestHerald(testConfig(), w)
	h.Tick(1)

	h.Reload(testConfig())
	assert.Equal(t, "", h.State().Last(sampler.CategoryDay))

	w.setTime(0, 12000) // evening, different from the pre-reload key
	assert.Empty(t, h.Tick(2))
	assert.Empty(t, sink.sent)

	w.setTime(0, 16000)
	fired := h.Tick(3)
	require.Len(t, fired, 1)
	assert.Equal(t, calendar.PhaseNight, fired[0].Key)
}

func TestReloadSwapsCatalogAndCalendar(t *testing.T) {
	w := &fakeWorld{temp: 0.5}
	h, sink := newTestHerald(testConfig(), w)
	h.Tick(1)

	next := testConfig()
	next.Calendar.DaysPerMonth = 30
	next.Greetings.Day.Messages = map[string][]string{"day": {"fresh"}}
	h.Reload(next)
	assert.Equal(t, 30, h.Calendar().DaysPerMonth)
	assert.Same(t, next, h.Config())

	h.Tick(2)
	w.setTime(0, 6000)
	h.Tick(3)
	assert.Equal(t, []string{"fresh"}, sink.sent)
}

func TestDisabledCategoryIsIgnored(t *testing.T) {
	cfg := testConfig()
	cfg.Greetings.Day.Enabled = false
	w := &fakeWorld{temp: 0.5}
	h, sink := newTestHerald(cfg, w)

	h.Tick(1)
	w.setTime(0, 6000)
	assert.Empty(t, h.Tick(2))
	assert.Empty(t, sink.sent)
	assert.Equal(t, "", h.State().Last(sampler.CategoryDay))
}

func TestNoWorldSkipsTick(t *testing.T) {
	sink := &sinkLog{}
	h := New(testConfig(), func() (sampler.World, bool) { return nil, false }, sink, 1)
	assert.Nil(t, h.Tick(1))
	_, ok := h.LastSnapshot()
	assert.False(t, ok)
}

func TestFailingCategoryDoesNotBlockOthers(t *testing.T) {
	cfg := testConfig()
	cfg.Greetings.Day.Messages["day"] = []string{"explode"}
	w := &fakeWorld{temp: 0.5}
	h, sink := newTestHerald(cfg, w)
	h.Tick(1)

	w.setTime(0, 6000)
	w.storm = true
	fired := h.Tick(2)

	require.Len(t, fired, 1)
	assert.Equal(t, sampler.CategoryWeather, fired[0].Category)
	assert.Equal(t, []string{"rain"}, sink.sent)
}

func TestRecorderSeesTransitions(t *testing.T) {
	w := &fakeWorld{temp: 0.5}
	h, _ := newTestHerald(testConfig(), w)
	rec := &recorderLog{}
	h.AddRecorder(rec)

	h.Tick(1)
	w.setTime(0, 12000)
	h.Tick(7)

	require.Len(t, rec.got, 1)
	assert.Equal(t, uint64(7), rec.got[0].Tick)
	assert.Equal(t, calendar.PhaseEvening, rec.got[0].Key)
	assert.False(t, rec.got[0].At.IsZero())
}
