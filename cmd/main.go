package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/morningforge/config"
	"github.com/oksasatya/morningforge/internal/application"
	"github.com/oksasatya/morningforge/internal/container"
	"github.com/oksasatya/morningforge/internal/infrastructure/badgerdb"
	pginfra "github.com/oksasatya/morningforge/internal/infrastructure/postgres"
	"github.com/oksasatya/morningforge/internal/infrastructure/redisstore"
	"github.com/oksasatya/morningforge/internal/infrastructure/search"
	"github.com/oksasatya/morningforge/internal/interface/middleware"
	"github.com/oksasatya/morningforge/internal/router"
	"github.com/oksasatya/morningforge/pkg/helpers"
	"github.com/oksasatya/morningforge/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Redis backs sessions and buckets for the postgres driver and rate
	// limiting for both drivers.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		client := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = client.Close() }()
		rdb = client
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			if cfg.UsePostgres() {
				log.Fatalf("failed to connect to redis: %v", err)
			}
			logger.WithError(err).Warn("redis unavailable; rate limiting disabled")
			rdb = nil
		}
	}

	closeStorage := openStorage(ctx, cfg, rdb, logger)
	defer closeStorage()
	container.SetRedis(rdb)

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch disabled")
		} else {
			container.SetES(es)
			if err := search.NewRoutineIndex(es, cfg.ESRoutinesIndex, logger).Ensure(ctx); err != nil {
				logger.WithError(err).Warn("elasticsearch index not ready; search falls back to scan")
			}
		}
	}

	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs disabled; exports unavailable")
		} else {
			defer func() { _ = gcsClient.Close() }()
			container.SetGCS(gcsClient)
		}
	}

	if cfg.MailSendEnabled && cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; emails disabled")
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, router.BuildServices(application.SystemClock()))
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "storage": cfg.StorageDriver}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// openStorage selects the backend, publishes it to the container and
// returns its cleanup.
func openStorage(ctx context.Context, cfg *config.Config, rdb *redis.Client, logger *logrus.Logger) func() {
	if cfg.UsePostgres() {
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: cfg.DBMaxConnLife,
		})
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		if rdb == nil {
			log.Fatal("postgres storage requires REDIS_ADDR")
		}
		container.SetPGPool(pool)
		container.SetStores(container.Stores{
			Accounts: pginfra.NewAccountRepository(pool),
			Sessions: redisstore.NewSessionRepository(rdb),
			Buckets:  redisstore.NewBucketRepository(rdb),
		})
		return pool.Close
	}

	bcfg := badgerdb.Config{Path: cfg.BadgerPath, InMemory: cfg.BadgerInMemory, SyncWrites: true, Logger: logger}
	db, err := badgerdb.Open(bcfg)
	if err != nil {
		log.Fatalf("failed to open badger: %v", err)
	}
	container.SetBadger(db)
	container.SetStores(container.Stores{
		Accounts: badgerdb.NewAccountRepository(db),
		Sessions: badgerdb.NewSessionRepository(db),
		Buckets:  badgerdb.NewBucketRepository(db),
	})
	return func() { _ = db.Close() }
}
