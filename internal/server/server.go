package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/victornm/tutormate/internal/api"
	"github.com/victornm/tutormate/internal/attempt"
	"github.com/victornm/tutormate/internal/event"
	"github.com/victornm/tutormate/internal/game"
	"github.com/victornm/tutormate/internal/leaderboard"
	"github.com/victornm/tutormate/internal/llm"
	"github.com/victornm/tutormate/internal/mastery"
	"github.com/victornm/tutormate/internal/storage"
	"github.com/victornm/tutormate/internal/telemetry"
	"github.com/victornm/tutormate/internal/tutor"
)

const serviceName = "tutormate"

type Server struct {
	c Config

	eb *event.Bus

	infra struct {
		redis struct {
			leaderboard redis.UniversalClient
			pubsub      redis.UniversalClient
			tutor       redis.UniversalClient
		}

		postgres *pgxpool.Pool
		sqlite   *sql.DB

		llm llm.Provider

		shutdownTracing func(context.Context) error
	}

	store struct {
		attempt attempt.Store
		mastery mastery.Store
		ping    func(ctx context.Context) error
	}

	service struct {
		scheduler   *game.Scheduler
		attempt     *attempt.Service
		mastery     *mastery.Service
		tutor       *tutor.Service
		leaderboard *leaderboard.Service
	}

	http   *http.Server
	grpc   *grpc.Server
	health *health.Server
}

func Init(ctx context.Context, c Config) (*Server, error) {
	s := &Server{c: c}

	var err error
	s.infra.shutdownTracing, err = telemetry.InitTracing(ctx, c.Tracing)
	if err != nil {
		return nil, fmt.Errorf("server: init tracing: %w", err)
	}

	s.eb = event.NewBus()

	if err := s.initInfra(ctx); err != nil {
		s.close(ctx)
		return nil, fmt.Errorf("server: init infra: %w", err)
	}

	s.initService()
	s.initAPI()
	return s, nil
}

func (s *Server) initInfra(ctx context.Context) error {
	if err := s.initRedis(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if err := s.initStorage(ctx); err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	if err := s.initLLM(ctx); err != nil {
		return fmt.Errorf("llm: %w", err)
	}

	return nil
}

func (s *Server) initRedis() error {
	connect := func(name string, rc RedisConfig) (redis.UniversalClient, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		r := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    rc.Addrs,
			Password: rc.Pass,
		})

		if err := telemetry.MonitorRedis(r, name); err != nil {
			return nil, err
		}

		if err := r.Ping(ctx).Err(); err != nil {
			r.Close()
			return nil, err
		}

		return r, nil
	}

	var err error
	s.infra.redis.leaderboard, err = connect("leaderboard", s.c.Redis.Leaderboard)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}

	s.infra.redis.pubsub, err = connect("pubsub", s.c.Redis.Pubsub)
	if err != nil {
		return fmt.Errorf("pubsub: %w", err)
	}

	s.infra.redis.tutor, err = connect("tutor", s.c.Redis.Tutor)
	if err != nil {
		return fmt.Errorf("tutor: %w", err)
	}

	return nil
}

func (s *Server) initStorage(ctx context.Context) error {
	sc := s.c.Storage

	switch sc.Driver {
	case storage.DriverPostgres:
		db, err := storage.OpenPostgres(ctx, sc.Postgres.Addr, sc.Postgres.User, sc.Postgres.Pass, sc.Postgres.Name)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := storage.MigratePostgres(ctx, db); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		s.infra.postgres = db
		s.store.attempt = attempt.NewPostgresStore(db)
		s.store.mastery = mastery.NewPostgresStore(db)
		s.store.ping = db.Ping

	case storage.DriverSQLite:
		db, err := storage.OpenSQLite(sc.SQLite.Path)
		if err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
		if err := storage.Migrate(ctx, storage.DriverSQLite, db); err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
		s.infra.sqlite = db
		s.store.attempt = attempt.NewSQLiteStore(db)
		s.store.mastery = mastery.NewSQLiteStore(db)
		s.store.ping = db.PingContext

	default:
		return fmt.Errorf("unknown driver %q", sc.Driver)
	}

	return nil
}

func (s *Server) initLLM(ctx context.Context) error {
	if s.c.LLM.Provider == "none" {
		slog.WarnContext(ctx, "server: no LLM provider, tutor runs on fallbacks")
		return nil
	}

	p, err := llm.New(ctx, s.c.LLM)
	if err != nil {
		return err
	}
	s.infra.llm = p
	return nil
}

func (s *Server) initService() {
	s.service.scheduler = game.NewScheduler(game.DefaultCatalog(), s.c.Game.Window)

	s.service.attempt = attempt.NewService(attempt.Config{
		EventBus: s.eb,
		Store:    s.store.attempt,
		Timeout:  s.c.Storage.Timeout,
	})

	s.service.mastery = mastery.NewService(mastery.Config{
		EventBus: s.eb,
		Store:    s.store.mastery,
		Timeout:  s.c.Storage.Timeout,
	})

	s.service.tutor = tutor.NewService(tutor.Config{
		Sessions: tutor.NewSessionStore(tutor.SessionStoreConfig{
			Redis:  s.infra.redis.tutor,
			Prefix: s.c.Redis.Tutor.Prefix,
			TTL:    s.c.Tutor.SessionTTL,
		}),
		Agents: tutor.NewAgents(tutor.AgentsConfig{
			Provider:            s.infra.llm,
			Timeout:             s.c.LLM.Timeout,
			QuestionsPerConcept: s.c.Tutor.QuestionsPerConcept,
		}),
		Mastery: s.service.mastery,
	})

	s.service.leaderboard = leaderboard.NewService(leaderboard.Config{
		EventBus: s.eb,
		Redis:    s.infra.redis.leaderboard,
		Prefix:   s.c.Redis.Leaderboard.Prefix,
	})
}

func (s *Server) initAPI() {
	e := gin.New()
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(e, "/debug/pprof")
	e.Use(
		otelgin.Middleware(serviceName),
		telemetry.GinLogger(slog.Default()),
		gin.Recovery(),
		cors.New(cors.Config{
			AllowOrigins:     s.c.HTTP.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", api.AdminTokenHeader},
			AllowCredentials: true,
		}),
	)

	s.grpc = grpc.NewServer(telemetry.GRPCServerOptions(slog.Default())...)
	s.health = health.NewServer()
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)

	api.New(api.Config{
		EventBus:     s.eb,
		Scheduler:    s.service.scheduler,
		Attempts:     s.service.attempt,
		Cooldown:     s.c.Game.Cooldown,
		Mastery:      s.service.mastery,
		Tutor:        s.service.tutor,
		Leaderboard:  s.service.leaderboard,
		Redis:        s.infra.redis.pubsub,
		PubsubPrefix: s.c.Redis.Pubsub.Prefix,
		AdminToken:   s.c.Admin.Token,
		Checks: map[string]api.Checker{
			"sql": api.CheckFunc(s.store.ping),
			"redis": api.CheckFunc(func(ctx context.Context) error {
				return s.infra.redis.leaderboard.Ping(ctx).Err()
			}),
		},
	}).Register(e)

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.c.HTTP.Port),
		Handler:           e,
		ReadHeaderTimeout: 60 * time.Second,
	}
}

func (s *Server) Start() {
	ctx := context.TODO()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.c.GRPC.Port))
	if err != nil {
		slog.ErrorContext(ctx, "grpc server: listen failed", "error", err)
		panic(err)
	}

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.store.ping(ctx); err != nil {
		slog.WarnContext(ctx, "server: store unreachable at start", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)

	var eg errgroup.Group
	eg.Go(func() error {
		slog.InfoContext(ctx, fmt.Sprintf("server: gRPC listening on port %d", s.c.GRPC.Port))
		return s.grpc.Serve(lis)
	})

	eg.Go(func() error {
		slog.InfoContext(ctx, fmt.Sprintf("server: HTTP listening on port %d", s.c.HTTP.Port))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	err = eg.Wait()
	if err != nil {
		slog.ErrorContext(ctx, "server: shutdown with error", "error", err)
	}
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.health.Shutdown()
	s.grpc.GracefulStop()
	if err := s.http.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "server: shutdown HTTP failed", "error", err)
	}

	s.eb.Stop()

	s.close(ctx)

	slog.InfoContext(ctx, "server: shutdown completed")
}

func (s *Server) close(ctx context.Context) {
	for name, r := range map[string]redis.UniversalClient{
		"leaderboard": s.infra.redis.leaderboard,
		"pubsub":      s.infra.redis.pubsub,
		"tutor":       s.infra.redis.tutor,
	} {
		if r == nil {
			continue
		}
		if err := r.Close(); err != nil {
			slog.ErrorContext(ctx, "server: close redis failed", "name", name, "error", err)
		}
	}

	if s.infra.postgres != nil {
		s.infra.postgres.Close()
	}
	if s.infra.sqlite != nil {
		if err := s.infra.sqlite.Close(); err != nil {
			slog.ErrorContext(ctx, "server: close sqlite failed", "error", err)
		}
	}

	if s.infra.shutdownTracing == nil {
		return
	}
	if err := s.infra.shutdownTracing(ctx); err != nil {
		slog.ErrorContext(ctx, "server: shutdown tracing failed", "error", err)
	}
}

// Handler is the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}
