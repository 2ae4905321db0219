// Package deps contains the dependencies for the backend and admin-cli.
package deps

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/posthog/posthog-go"
	"github.com/redis/rueidis"
	"github.com/redis/rueidis/rueidisotel"
	"github.com/sql-trainer/backend/internal/config"
	"github.com/sql-trainer/backend/internal/events"
	"github.com/sql-trainer/backend/internal/grader"
	"github.com/sql-trainer/backend/internal/history"
	"github.com/sql-trainer/backend/internal/questions"
	"github.com/sql-trainer/backend/internal/resultcache"
	"github.com/sql-trainer/backend/internal/semantic"
	"github.com/sql-trainer/backend/internal/sqlrunner"
	"go.uber.org/fx"
)

// Config loads the environment variables from the .env file and returns a config.Config.
func Config() (config.Config, error) {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("error creating config", "error", err)
		return config.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("error validating config", "error", err)
		return config.Config{}, err
	}

	return cfg, nil
}

// Catalog loads the question catalog.
func Catalog(cfg config.Config) (*questions.Catalog, error) {
	catalog, err := questions.Load(cfg.CatalogPath)
	if err != nil {
		slog.Error("error loading question catalog", "path", cfg.CatalogPath, "error", err)
		return nil, err
	}

	slog.Info("question catalog loaded", "path", cfg.CatalogPath, "questions", catalog.Len())
	return catalog, nil
}

// Runner creates the query executor selected by RUNNER_MODE.
func Runner(cfg config.Config, lifecycle fx.Lifecycle) (sqlrunner.Runner, error) {
	switch cfg.Runner.Mode {
	case config.RunnerModePostgres:
		runner, err := sqlrunner.NewPgxRunner(context.Background(), cfg.Runner)
		if err != nil {
			return nil, err
		}

		lifecycle.Append(fx.StopHook(runner.Close))
		return runner, nil
	case config.RunnerModeRPC:
		return sqlrunner.NewRPCRunner(cfg.Runner), nil
	default:
		return nil, fmt.Errorf("unknown runner mode %q", cfg.Runner.Mode)
	}
}

// RedisClient creates a rueidis.Client, traced with OpenTelemetry.
func RedisClient(cfg config.Config) (rueidis.Client, error) {
	client, err := rueidisotel.NewClient(rueidis.ClientOption{
		InitAddress: []string{
			fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		},
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		slog.Error("error creating redis client", "error", err)
		return nil, err
	}

	return client, nil
}

// BaseResultCache creates the reference-result cache, or nil when Redis
// is not configured.
func BaseResultCache(cfg config.Config) (grader.BaseResultCache, error) {
	if !cfg.Redis.Enabled() {
		slog.Info("redis not configured, reference results are not cached")
		return nil, nil
	}

	client, err := RedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return resultcache.NewRedisCache(client), nil
}

// SemanticJudge creates the LLM judge, or nil when it is not configured.
func SemanticJudge(cfg config.Config) grader.SemanticJudge {
	if !cfg.Judge.Enabled() {
		slog.Info("semantic judge not configured, inconclusive gradings resolve to a mismatch")
		return nil
	}

	return semantic.NewJudge(cfg.Judge)
}

// Grader assembles the grading engine.
func Grader(runner sqlrunner.Runner, judge grader.SemanticJudge, cache grader.BaseResultCache) *grader.Grader {
	return grader.New(runner, judge, cache)
}

// HistoryStore opens the grading archive.
func HistoryStore(cfg config.Config, lifecycle fx.Lifecycle) (*history.Store, error) {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		slog.Error("error opening grading archive", "path", cfg.History.Path, "error", err)
		return nil, err
	}

	lifecycle.Append(fx.StopHook(store.Close))
	return store, nil
}

// PostHogClient creates a posthog.Client, or nil when analytics is not
// configured.
func PostHogClient(cfg config.Config, lifecycle fx.Lifecycle) (posthog.Client, error) {
	if !cfg.PostHog.Enabled() {
		slog.Info("posthog not configured, analytics disabled")
		return nil, nil
	}

	client, err := posthog.NewWithConfig(cfg.PostHog.APIKey, posthog.Config{
		Endpoint: cfg.PostHog.Endpoint,
	})
	if err != nil {
		slog.Error("error creating posthog client", "error", err)
		return nil, err
	}

	lifecycle.Append(fx.StopHook(client.Close))
	return client, nil
}

// EventService creates the event fan-out service.
func EventService(posthogClient posthog.Client) *events.EventService {
	return events.NewEventService(posthogClient)
}

var FxCommonModule = fx.Module("common",
	fx.Provide(Config),
	fx.Provide(Catalog),
	fx.Provide(Runner),
	fx.Provide(BaseResultCache),
	fx.Provide(SemanticJudge),
	fx.Provide(Grader),
	fx.Provide(HistoryStore),
	fx.Provide(PostHogClient),
	fx.Provide(EventService),
)
