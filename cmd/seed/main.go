package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/morningforge/config"
	"github.com/oksasatya/morningforge/internal/application"
	"github.com/oksasatya/morningforge/internal/domain/entitlement"
	"github.com/oksasatya/morningforge/internal/domain/entity"
	repo "github.com/oksasatya/morningforge/internal/domain/repository"
	"github.com/oksasatya/morningforge/internal/infrastructure/badgerdb"
	pginfra "github.com/oksasatya/morningforge/internal/infrastructure/postgres"
	"github.com/oksasatya/morningforge/internal/infrastructure/redisstore"
	"github.com/oksasatya/morningforge/pkg/helpers"
)

// seed registers a demo account through the account service, optionally
// with the trial already started.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	name := flag.String("name", "Demo User", "account name")
	email := flag.String("email", "demo@morningforge.local", "account email")
	password := flag.String("password", "password123", "account password")
	trial := flag.Bool("trial", false, "start the Pro trial")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	accounts, sessions, closeFn := openStores(ctx, cfg, logger)
	defer closeFn()

	svc := application.NewAccountService(accounts, sessions, entitlement.NewEvaluator(cfg.TrialLength), nil, nil, cfg.SessionTTL, nil, logger)
	sess, err := svc.Signup(ctx, *name, *email, *password)
	if errors.Is(err, entity.ErrDuplicateEmail) {
		sess, err = svc.Login(ctx, *email, *password)
	}
	if err != nil {
		logger.WithError(err).Fatal("seed account failed")
	}
	a := sess.Account
	if *trial && !a.IsTrialUsed() {
		if a, err = svc.ActivateTrial(ctx, sess.ID); err != nil {
			logger.WithError(err).Fatal("start trial failed")
		}
	}
	_ = svc.Logout(ctx, sess.ID)

	logger.WithFields(logrus.Fields{
		"id":       a.ID,
		"email":    a.Email,
		"is_pro":   a.IsPro,
		"password": *password,
		"storage":  cfg.StorageDriver,
	}).Info("seeded account")
}

func openStores(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repo.AccountRepository, repo.SessionRepository, func()) {
	if cfg.UsePostgres() {
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: cfg.DBMaxConnLife,
		})
		if err != nil {
			logger.WithError(err).Fatal("connect postgres")
		}
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.WithError(err).Fatal("migrate")
		}
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			logger.WithError(err).Fatal("connect redis")
		}
		return pginfra.NewAccountRepository(pool), redisstore.NewSessionRepository(rdb), func() {
			_ = rdb.Close()
			pool.Close()
		}
	}
	db, err := badgerdb.Open(badgerdb.Config{Path: cfg.BadgerPath, SyncWrites: true, Logger: logger})
	if err != nil {
		logger.WithError(err).Fatal("open badger")
	}
	return badgerdb.NewAccountRepository(db), badgerdb.NewSessionRepository(db), func() { _ = db.Close() }
}
