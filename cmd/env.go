package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/app"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/assistant"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/clock"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/config"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/seed"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/session"
)

// env is the state one shell session shares between commands.
type env struct {
	ctx       context.Context
	cfg       config.Config
	loc       *time.Location
	app       *app.App
	assistant *assistant.Dispatcher
	log       zerolog.Logger
	out       io.Writer
}

func newEnv(ctx context.Context, cfg config.Config, clk clock.Clock, log zerolog.Logger, out io.Writer) (*env, error) {
	loc, err := cfg.Attendance.Location()
	if err != nil {
		return nil, err
	}
	policy, err := policyFrom(cfg.Attendance)
	if err != nil {
		return nil, err
	}

	now := clk.Now()
	data := seed.Default(now)
	if cfg.SeedFile != "" {
		data, err = seed.LoadFile(cfg.SeedFile, now)
		if err != nil {
			return nil, err
		}
	}

	a := app.New(app.Options{
		Clock:  clk,
		Logger: log.With().Str("component", "app").Logger(),
		Seed:   data,
		Policy: policy,
	})
	assistantLog := log.With().Str("component", "assistant").Logger()
	return &env{
		ctx:       ctx,
		cfg:       cfg,
		loc:       loc,
		app:       a,
		assistant: assistant.NewDispatcher(newDelegate(cfg.Assistant, assistantLog), a, assistantLog),
		log:       log,
		out:       out,
	}, nil
}

// policyFrom turns the attendance config into app rules.
func policyFrom(c config.AttendanceConfig) (app.Policy, error) {
	p := app.DefaultPolicy()
	p.GracePeriod = time.Duration(c.GraceMinutes) * time.Minute
	p.StrictSegments = c.Strict()
	for _, g := range c.Geofences {
		loc, err := model.ParseLocationType(g.Location)
		if err != nil {
			return app.Policy{}, fmt.Errorf("geofence: %w", err)
		}
		if p.Geofences == nil {
			p.Geofences = map[model.LocationType]session.Geofence{}
		}
		p.Geofences[loc] = session.Geofence{
			Target:       model.Coordinates{Lat: g.Lat, Lng: g.Lng},
			RadiusMeters: g.RadiusMeters,
		}
	}
	return p, nil
}

func newDelegate(c config.AssistantConfig, log zerolog.Logger) assistant.Delegate {
	if !strings.EqualFold(c.Provider, "gemini") {
		return assistant.Mock{}
	}
	g, err := assistant.NewGemini(assistant.GeminiConfig{
		Endpoint: c.Endpoint,
		Model:    c.Model,
		APIKey:   os.Getenv(c.APIKeyEnv),
	})
	if err != nil {
		log.Warn().Err(err).Str("api_key_env", c.APIKeyEnv).Msg("using the offline assistant")
		return assistant.Mock{}
	}
	return g
}

// now returns the session clock's time.
func (e *env) now() time.Time {
	return e.app.Now()
}
