package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config はアプリケーション設定を表す
type Config struct {
	Env      string         `toml:"env"`
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Kafka    KafkaConfig    `toml:"kafka"`
	Worker   WorkerConfig   `toml:"worker"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port         string        `toml:"port"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Driver         string `toml:"driver"`
	Host           string `toml:"host"`
	Port           string `toml:"port"`
	User           string `toml:"user"`
	Password       string `toml:"password"`
	DBName         string `toml:"dbname"`
	SSLMode        string `toml:"sslmode"`
	MigrationsPath string `toml:"migrations_path"`
	SQLitePath     string `toml:"sqlite_path"`
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// KafkaConfig は予約イベント配信の設定
// Brokers が空の場合は配信しない
type KafkaConfig struct {
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

// WorkerConfig はバックグラウンドワーカーの設定
type WorkerConfig struct {
	ReportInterval time.Duration `toml:"report_interval"`
}

// MetricsConfig は /metrics の Basic 認証設定
type MetricsConfig struct {
	User     string `toml:"user"`
	Password string `toml:"password"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:         DriverPostgres,
			Host:           "localhost",
			Port:           "5432",
			User:           "postgres",
			Password:       "postgres",
			DBName:         "hotel_reservation",
			SSLMode:        "disable",
			MigrationsPath: "migrations",
			SQLitePath:     "data/reservations.db",
		},
		Redis: RedisConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    "6379",
		},
		Kafka: KafkaConfig{
			Topic: "reservation-events",
		},
		Worker: WorkerConfig{
			ReportInterval: time.Minute,
		},
	}
}

// Load は設定を読み込む
// 優先順位: 環境変数 > CONFIG_FILE のTOML > デフォルト値。
// カレントディレクトリに .env があれば環境変数として先に読み込む
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf(".envの読み込みに失敗しました: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Env = getEnv("APP_ENV", c.Env)

	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DB_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.MigrationsPath = getEnv("DB_MIGRATIONS_PATH", c.Database.MigrationsPath)
	c.Database.SQLitePath = getEnv("SQLITE_PATH", c.Database.SQLitePath)

	c.Redis.Enabled = getBoolEnv("REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Host = getEnv("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = getEnv("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getIntEnv("REDIS_DB", c.Redis.DB)

	c.Kafka.Brokers = getListEnv("KAFKA_BROKERS", c.Kafka.Brokers)
	c.Kafka.Topic = getEnv("KAFKA_TOPIC", c.Kafka.Topic)

	c.Worker.ReportInterval = getDurationEnv("WORKER_REPORT_INTERVAL", c.Worker.ReportInterval)

	c.Metrics.User = getEnv("METRICS_USER", c.Metrics.User)
	c.Metrics.Password = getEnv("METRICS_PASSWORD", c.Metrics.Password)
}

// Validate は設定値の整合性を検証する
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("未対応のDB_DRIVERです: %q", c.Database.Driver)
	}
	if c.Worker.ReportInterval <= 0 {
		return fmt.Errorf("WORKER_REPORT_INTERVALは正の値である必要があります")
	}
	return nil
}

// IsProduction は本番環境かを返す
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// Enabled はKafka配信が有効かを返す
func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// IsEnabled は認証が有効かどうかを返す
func (c *MetricsConfig) IsEnabled() bool {
	return c.User != "" && c.Password != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	return list
}
