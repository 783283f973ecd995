package container

import (
	"cloud.google.com/go/storage"
	"github.com/dgraph-io/badger/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/morningforge/config"
	repo "github.com/oksasatya/morningforge/internal/domain/repository"
	"github.com/oksasatya/morningforge/pkg/helpers"
)

// App-level container sharing constructed infrastructure across packages.
// The router wires modules from these singletons.

// Stores is the storage backend selected by STORAGE_DRIVER.
type Stores struct {
	Accounts repo.AccountRepository
	Sessions repo.SessionRepository
	Buckets  repo.BucketRepository
}

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	badgerDB    *badger.DB
	redisClient *redis.Client
	gcsClient   *storage.Client
	stores      Stores

	jwtManager *helpers.JWTManager

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetBadger(db *badger.DB)      { badgerDB = db }
func GetBadger() *badger.DB        { return badgerDB }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetGCS(s *storage.Client)     { gcsClient = s }
func GetGCS() *storage.Client      { return gcsClient }
func SetStores(s Stores)           { stores = s }
func GetStores() Stores            { return stores }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	return helpers.DefaultJWT()
}

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
