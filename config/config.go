package config

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"time"

	"lunchstats/internal/cache"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"

	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

type Config struct {
	Address   string   `env:"ADDRESS" envDefault:":8080"`
	APIPrefix string   `env:"API_PREFIX" envDefault:"/api/v1"`
	Origins   []string `env:"CORS_ORIGINS" envSeparator:","`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"postgres"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"lunchstats.db"`
	DBHost       string `env:"DB_HOST" envDefault:"localhost"`
	DBPort       string `env:"DB_PORT" envDefault:"5432"`
	DBName       string `env:"DB_NAME" envDefault:"lunchstats"`
	DBUser       string `env:"DB_USER" envDefault:"postgres"`
	DBPassword   string `env:"DB_PASSWORD"`

	CacheBackend       string        `env:"CACHE_BACKEND" envDefault:"redis"`
	CacheKeyPrefix     string        `env:"CACHE_KEY_PREFIX" envDefault:"lunchstats:cache:"`
	CacheRestaurantTTL time.Duration `env:"CACHE_TTL_RESTAURANT" envDefault:"300s"`
	CacheMenuTTL       time.Duration `env:"CACHE_TTL_MENU" envDefault:"600s"`
	CacheHistoryTTL    time.Duration `env:"CACHE_TTL_HISTORY" envDefault:"180s"`
	RedisHost          string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort          string        `env:"REDIS_PORT" envDefault:"6379"`

	EventsEnabled bool   `env:"EVENTS_ENABLED" envDefault:"false"`
	KafkaBroker   string `env:"KAFKA_BROKER" envDefault:"localhost:9092"`
	KafkaTopic    string `env:"KAFKA_TOPIC" envDefault:"restaurant-events"`
	KafkaGroupID  string `env:"KAFKA_GROUP_ID" envDefault:"lunchstats-aggregator"`

	RatingBaseURL string `env:"RATING_BASE_URL" envDefault:"http://localhost:8080/rate"`
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case StorePostgres, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.CacheBackend {
	case CacheRedis, CacheMemory, CacheNone:
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	if c.CacheRestaurantTTL <= 0 || c.CacheMenuTTL <= 0 || c.CacheHistoryTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	return nil
}

// Cache is the accessor configuration. Individual ratings share the history TTL.
func (c Config) Cache() cache.Config {
	return cache.Config{
		KeyPrefix:     c.CacheKeyPrefix,
		RestaurantTTL: c.CacheRestaurantTTL,
		MenuTTL:       c.CacheMenuTTL,
		HistoryTTL:    c.CacheHistoryTTL,
		RatingTTL:     c.CacheHistoryTTL,
	}
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func (c Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, c.RedisPort)
}

func MustInitPostgres(cfg Config, log *logrus.Logger) *sql.DB {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	if err = db.Ping(); err != nil {
		log.WithError(err).Fatal("failed to ping database")
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

// MustInitSQLite opens a single-connection database; sqlite serialises writers anyway.
func MustInitSQLite(cfg Config, log *logrus.Logger) *sql.DB {
	db, err := sql.Open("sqlite3", cfg.SQLitePath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		log.WithError(err).Fatal("failed to open sqlite database")
	}
	if err = db.Ping(); err != nil {
		log.WithError(err).Fatal("failed to ping sqlite database")
	}
	db.SetMaxOpenConns(1)
	return db
}

func MustInitRedis(cfg Config, log *logrus.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}

	return client
}

func NewKafkaReader(cfg Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.KafkaBroker},
		Topic:   cfg.KafkaTopic,
		GroupID: cfg.KafkaGroupID,
	})
}

func NewKafkaWriter(cfg Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBroker),
		Topic:    cfg.KafkaTopic,
		Balancer: &kafka.Hash{},
	}
}
