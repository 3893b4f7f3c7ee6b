package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/answerdesk/triage/backend/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Manager holds the postgres and redis connections shared by the
// repositories, the cache and the health checker.
type Manager struct {
	DB     *gorm.DB
	Redis  *redis.Client
	logger *logrus.Logger
}

type Config struct {
	DatabaseURL string
	RedisURL    string
	LogLevel    string
}

// NewManager connects both backends and fails fast if either is
// unreachable.
func NewManager(config *Config, logger *logrus.Logger) (*Manager, error) {
	db, err := openPostgres(config)
	if err != nil {
		return nil, err
	}

	redisClient, err := openRedis(config.RedisURL)
	if err != nil {
		return nil, err
	}

	logger.Info("Database and Redis connections established successfully")

	return &Manager{
		DB:     db,
		Redis:  redisClient,
		logger: logger,
	}, nil
}

func openPostgres(config *Config) (*gorm.DB, error) {
	gormLogLevel := gormlogger.Silent
	if config.LogLevel == "debug" {
		gormLogLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(config.DatabaseURL), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormLogLevel),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func openRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 20
	opts.MinIdleConns = 5
	opts.MaxConnAge = time.Hour
	opts.IdleTimeout = 30 * time.Minute

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// Migrate runs database migrations
func (m *Manager) Migrate() error {
	m.logger.Info("Running database migrations...")

	return m.DB.AutoMigrate(
		&models.Feedback{},
		&models.Escalation{},
	)
}

// Close closes all database connections
func (m *Manager) Close() error {
	if m.Redis != nil {
		if err := m.Redis.Close(); err != nil {
			m.logger.WithError(err).Error("Failed to close Redis connection")
		}
	}

	if m.DB != nil {
		sqlDB, err := m.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}

// Health check methods
func (m *Manager) PingDatabase() error {
	sqlDB, err := m.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (m *Manager) PingRedis() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Redis.Ping(ctx).Err()
}

// Cache implementation
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// Cache key constants
const (
	MetricsReportKey = "metrics:report:%d"
	SessionKey       = "session:%s"
)

// CacheMetricsReport caches a computed metrics report for a window size.
// The TTL is short; every triage write also invalidates explicitly, so
// readers never see a stale report after a change.
func (c *Cache) CacheMetricsReport(ctx context.Context, rangeDays int, report *models.MetricsReport, expiration time.Duration) error {
	key := fmt.Sprintf(MetricsReportKey, rangeDays)

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics report: %w", err)
	}

	return c.client.Set(ctx, key, data, expiration).Err()
}

// GetCachedMetricsReport retrieves a cached metrics report.
func (c *Cache) GetCachedMetricsReport(ctx context.Context, rangeDays int) (*models.MetricsReport, error) {
	key := fmt.Sprintf(MetricsReportKey, rangeDays)

	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var report models.MetricsReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, err
	}

	return &report, nil
}

// InvalidateMetricsCache drops every cached metrics report. Called on
// each feedback or escalation write.
func (c *Cache) InvalidateMetricsCache(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "metrics:report:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// SessionExists reports whether a session token is known. The session
// store is written by the external auth collaborator; this side only
// reads it.
func (c *Cache) SessionExists(ctx context.Context, token string) (bool, error) {
	key := fmt.Sprintf(SessionKey, token)
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
