package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"live-practice-service/internal/bus"
	"live-practice-service/internal/config"
	"live-practice-service/internal/domain"
	"live-practice-service/internal/game"
	"live-practice-service/internal/infra/memory"
	pginfra "live-practice-service/internal/infra/postgres"
	redisinfra "live-practice-service/internal/infra/redis"
	transport "live-practice-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the live practice server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	var bunDB *bun.DB
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		bunDB = bun.NewDB(sqldb, pgdialect.New())
		defer bunDB.Close()
	}

	memStore := memory.NewStore()

	var store game.Store = memStore
	var sessionLoader game.Loader = memStore
	var pinStore game.PinStore = memStore
	if bunDB != nil {
		pgStore := pginfra.NewStore(bunDB)
		store = pgStore
		sessionLoader = pgStore
		pinStore = pgStore
	}
	if redisClient != nil {
		pinStore = redisinfra.NewPinStore(redisClient)
	}

	var loader memory.WordLoader = memory.NewStaticWordLoader(sampleVocabulary())
	if pool != nil {
		loader = pginfra.NewWordLoader(pool)
	}

	vocabTTL := config.TTLDuration(cfg.Vocab.TTL, 10*time.Minute)
	var words game.WordRepository
	if redisClient != nil {
		words = redisinfra.NewWordRepository(redisClient, loader, vocabTTL)
	} else {
		words = memory.NewWordRepository(loader)
	}

	var dir game.Directory
	if pool != nil {
		dir = pginfra.NewDirectory(pool)
	} else {
		owners, students := sampleDirectory()
		dir = memory.NewDirectory(owners, students)
	}

	sessions := memory.NewSessionStore()
	if restored, err := game.RestoreSessions(ctx, sessionLoader, sessions, pinStore); err != nil {
		return err
	} else if restored > 0 {
		log.Printf("restored %d active sessions", restored)
	}

	eventBus := bus.New()
	pins := game.NewPinAllocator(pinStore, cfg.Game.PinLength, cfg.Game.PinMaxAttempts, nil)
	coordinator := game.NewCoordinator(sessions, store, words, dir, eventBus, pins, game.Options{
		QuestionTimeDefault: cfg.Game.QuestionTimeDefault,
		MaxClassSize:        cfg.Game.MaxClassSize,
		LeaderboardTopK:     cfg.Game.LeaderboardTopK,
		FinalTopK:           cfg.Game.FinalTopK,
		StateTopK:           cfg.Game.StateTopK,
	})

	auth := transport.NewAuthenticator(cfg.Auth.JWTSecret)
	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	transport.NewHandler(coordinator, auth).Register(router)
	transport.NewWSHandler(eventBus, coordinator, auth).Register(router)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting live practice service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleVocabulary provides a minimal word pool for running without a
// database; swap the loader for the postgres one in production.
func sampleVocabulary() map[string][]domain.Word {
	return map[string][]domain.Word{
		"set-1": {
			{ID: "w1", SetID: "set-1", Word: "apple", Translation: "manzana"},
			{ID: "w2", SetID: "set-1", Word: "house", Translation: "casa"},
			{ID: "w3", SetID: "set-1", Word: "river", Translation: "río"},
			{ID: "w4", SetID: "set-1", Word: "window", Translation: "ventana"},
		},
	}
}

func sampleDirectory() (owners, students map[string][]string) {
	owners = map[string][]string{"class-1": {"teacher-1"}}
	students = map[string][]string{"class-1": {"student-1", "student-2"}}
	return owners, students
}
