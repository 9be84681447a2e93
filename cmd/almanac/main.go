// Command almanac runs the in-game calendar: a simulated host world, the
// greeting herald and the HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/talgya/almanac/internal/api"
	"github.com/talgya/almanac/internal/broadcast"
	"github.com/talgya/almanac/internal/calendar"
	"github.com/talgya/almanac/internal/command"
	"github.com/talgya/almanac/internal/config"
	"github.com/talgya/almanac/internal/engine"
	"github.com/talgya/almanac/internal/greeting"
	"github.com/talgya/almanac/internal/herald"
	"github.com/talgya/almanac/internal/metrics"
	"github.com/talgya/almanac/internal/persistence"
	"github.com/talgya/almanac/internal/sampler"
	"github.com/talgya/almanac/internal/world"
)

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: settings.Level(),
	}))
	slog.SetDefault(logger)

	// ── Configuration ─────────────────────────────────────────────────
	cfg, fromFile, err := config.LoadOrDefault(settings.ConfigPath)
	if err != nil {
		slog.Error("failed to load config", "path", settings.ConfigPath, "error", err)
		os.Exit(1)
	}
	if fromFile {
		slog.Info("config loaded", "path", settings.ConfigPath)
	} else {
		slog.Warn("config file not found, using built-in defaults", "path", settings.ConfigPath)
	}

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(settings.DBPath), 0o755); err != nil {
		slog.Error("failed to create data dir", "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(settings.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", settings.DBPath)

	startTime, restored, err := db.LoadClock()
	if err != nil {
		slog.Error("failed to load saved clock", "error", err)
		os.Exit(1)
	}

	// ── World ─────────────────────────────────────────────────────────
	gen := world.DefaultGenConfig()
	gen.Seed = settings.Seed
	gen.YearDays = cfg.Calendar.DaysPerMonth * calendar.MonthsPerYear
	w := world.New("overworld", gen, startTime)

	date := cfg.CalendarConfig().Derive(startTime)
	if restored {
		slog.Info("clock restored", "full_time", startTime, "date", date.String())
	} else {
		slog.Info("new world", "seed", settings.Seed, "date", date.String())
	}

	// ── Engine, sinks and herald ──────────────────────────────────────
	m := metrics.New()
	eng := engine.NewEngine(settings.TickInterval)
	eng.OnTick = func(uint64) { w.Step(1) }

	hub := broadcast.NewHub(&api.Presence{Eng: eng, World: w, Metrics: m}, m)
	sinks := broadcast.Fanout{hub, greeting.SinkFunc(func(msg string) {
		slog.Debug("broadcast", "text", greeting.StripFormatting(msg))
	})}

	if settings.NATSURL != "" {
		nc, err := broadcast.ConnectNATS(settings.NATSURL)
		if err != nil {
			slog.Error("nats unavailable, continuing without it", "url", settings.NATSURL, "error", err)
		} else {
			defer nc.Drain()
			sinks = append(sinks, broadcast.NewNATSSink(nc, settings.NATSSubject, m))
			slog.Info("publishing greetings to nats", "subject", settings.NATSSubject)
		}
	}

	h := herald.New(cfg, func() (sampler.World, bool) { return w, true }, sinks, settings.Seed).WithMetrics(m)
	journal := persistence.NewJournal(db, persistence.DefaultJournalBuffer, m)
	h.AddRecorder(journal)
	h.Start(eng)

	// Save the clock once per game day.
	eng.Every(calendar.TicksPerDay*eng.Interval, "save_clock", func(uint64) {
		if err := db.SaveClock(w.FullTime()); err != nil {
			slog.Error("daily save failed", "error", err)
		}
	})

	cmds := command.New(h, w, func() (*config.Config, error) {
		next, _, err := config.LoadOrDefault(settings.ConfigPath)
		return next, err
	})

	// ── HTTP API ──────────────────────────────────────────────────────
	if settings.AdminKey == "" {
		slog.Warn("ALMANAC_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Eng:      eng,
		Herald:   h,
		World:    w,
		Commands: cmds,
		DB:       db,
		Hub:      hub,
		Metrics:  m,
		Port:     settings.APIPort,
		AdminKey: settings.AdminKey,

		CORSOrigins: settings.CORSOrigins,
	}
	srv := apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nThe almanac is running: %s.\n", date.String())
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", settings.APIPort)

	eng.Run(ctx)

	// ── Shutdown ──────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", "error", err)
	}
	journal.Close()

	slog.Info("final save...")
	if err := db.SaveClock(w.FullTime()); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Almanac stopped. Clock saved.")
}
