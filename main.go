package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/agents/orchestrator"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/api"
	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/events"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/geo"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/llm"
	statex "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/state"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/store"
	configx "github.com/tanpawarit/Chative-Restaurant-Concierge/pkg/config"
	_ "github.com/tanpawarit/Chative-Restaurant-Concierge/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/Chative-Restaurant-Concierge/pkg/openrouter"
	qstashx "github.com/tanpawarit/Chative-Restaurant-Concierge/pkg/qstash"
)

type AppConfig struct {
	HTTPAddr         string        `envconfig:"HTTP_ADDR" default:":8080"`
	ChatHistoryTurns int           `envconfig:"CHAT_HISTORY_TURNS" default:"3"`
	DefaultLat       float64       `envconfig:"DEFAULT_LAT" default:"13.0418"`
	DefaultLon       float64       `envconfig:"DEFAULT_LON" default:"80.2337"`
	SessionBackend   string        `envconfig:"SESSION_BACKEND" default:"memory"`
	ParallelTools    bool          `envconfig:"PARALLEL_TOOLS" default:"false"`
	ModelPreflight   bool          `envconfig:"MODEL_PREFLIGHT" default:"false"`
	ToolTimeout      time.Duration `envconfig:"TOOL_TIMEOUT" default:"10s"`
	EventDestination string        `envconfig:"BOOKING_EVENTS_DESTINATION"`
}

func (c AppConfig) Validate() error {
	switch strings.ToLower(c.SessionBackend) {
	case "memory", "upstash", "redis":
	default:
		return fmt.Errorf("%w: unknown session backend %q", contractx.ErrValidation, c.SessionBackend)
	}
	if c.DefaultLat < -90 || c.DefaultLat > 90 || c.DefaultLon < -180 || c.DefaultLon > 180 {
		return fmt.Errorf("%w: default location %.4f,%.4f is out of range", contractx.ErrValidation, c.DefaultLat, c.DefaultLon)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("concierge stopped")
	}
}

func run(ctx context.Context) error {
	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llm.Config]("OPENROUTER")
	storeCfg := configx.MustNew[store.Config]("STORE")

	db, err := store.Open(ctx, *storeCfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	if appCfg.ModelPreflight {
		client := openrouterx.NewClient(llmCfg.OpenRouterFor(contractx.ModelRoleDecide))
		if err := openrouterx.Preflight(ctx, client, llmCfg.Models()...); err != nil {
			return err
		}
	}

	deciderCfg := llmCfg.OpenRouterFor(contractx.ModelRoleDecide)
	decider, err := deciderCfg.New(ctx)
	if err != nil {
		return fmt.Errorf("decide model: %w", err)
	}
	narratorCfg := llmCfg.OpenRouterFor(contractx.ModelRoleSummarize)
	narrator, err := narratorCfg.New(ctx)
	if err != nil {
		return fmt.Errorf("summary model: %w", err)
	}

	publisher, err := bookingPublisher(appCfg)
	if err != nil {
		return err
	}

	profiles, closeProfiles, err := profileStore(ctx, appCfg)
	if err != nil {
		return err
	}
	defer closeProfiles()

	build, err := orchestrator.NewBuilder(orchestrator.FactoryConfig{
		Decider:         decider,
		Narrator:        narrator,
		Gateway:         db,
		Log:             db,
		Publisher:       publisher,
		MaxHistoryTurns: appCfg.ChatHistoryTurns,
		ModelTimeout:    llmCfg.Timeout,
		ToolTimeout:     appCfg.ToolTimeout,
		ParallelTools:   appCfg.ParallelTools,
	})
	if err != nil {
		return err
	}
	sessions, err := orchestrator.NewRegistry(profiles, build)
	if err != nil {
		return err
	}

	origin := geo.Point{Lat: appCfg.DefaultLat, Lon: appCfg.DefaultLon}
	e := api.NewServer(api.NewHandler(db, sessions, origin))

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", appCfg.HTTPAddr).
			Str("session_backend", appCfg.SessionBackend).
			Strs("models", llmCfg.Models()).
			Msg("concierge listening")
		if err := e.Start(appCfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func bookingPublisher(cfg *AppConfig) (events.Publisher, error) {
	if !configx.Present("QSTASH") || cfg.EventDestination == "" {
		return events.NopPublisher{}, nil
	}

	client, err := qstashx.NewClient(*configx.MustNew[qstashx.Config]("QSTASH"))
	if err != nil {
		return nil, err
	}
	return events.NewQStashPublisher(client, cfg.EventDestination)
}

func profileStore(ctx context.Context, cfg *AppConfig) (statex.ProfileStore, func(), error) {
	switch strings.ToLower(cfg.SessionBackend) {
	case "upstash":
		s, err := statex.NewUpstashRedisStore(*configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS"))
		return s, func() {}, err
	case "redis":
		s, err := statex.OpenRedisStore(ctx, *configx.MustNew[statex.RedisConfig]("REDIS"))
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return statex.NewMemoryStore(), func() {}, nil
	}
}
