package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go-booking-api/core/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
	Booking    BookingConfig    `mapstructure:"booking"`
	Payment    PaymentConfig    `mapstructure:"payment"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	GoogleAPI  OAuthClient      `mapstructure:"google_api"`
	Outlook    OAuthClient      `mapstructure:"outlook"`
	LogLevel   string           `mapstructure:"log_level"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	BaseURL         string        `mapstructure:"base_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // in minutes
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type QueueConfig struct {
	Concurrency int  `mapstructure:"concurrency"`
	RunWorker   bool `mapstructure:"run_worker"`
}

type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// AggregatorConfig tunes busy-interval aggregation.
type AggregatorConfig struct {
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	MaxFanout      int           `mapstructure:"max_fanout"`
	AdapterTimeout time.Duration `mapstructure:"adapter_timeout"`
	// CacheBackend is "redis" or "memory"; memory keeps the cache inside one process.
	CacheBackend   string        `mapstructure:"cache_backend"`
}

type BookingConfig struct {
	ReminderLead   time.Duration `mapstructure:"reminder_lead"`
	WebhookTimeout time.Duration `mapstructure:"webhook_timeout"`
	DefaultLocale  string        `mapstructure:"default_locale"`
}

// PaymentConfig holds the shared secret payment callbacks are signed with.
type PaymentConfig struct {
	CallbackSecret string `mapstructure:"callback_secret"`
}

type TelemetryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type OAuthClient struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	Tenant       string `mapstructure:"tenant"`
}

var (
	mu       sync.RWMutex
	instance *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "booking")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.run_worker", true)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("aggregator.cache_ttl", 30*time.Second)
	v.SetDefault("aggregator.max_fanout", 8)
	v.SetDefault("aggregator.adapter_timeout", 10*time.Second)
	v.SetDefault("aggregator.cache_backend", "redis")
	v.SetDefault("booking.reminder_lead", time.Hour)
	v.SetDefault("booking.webhook_timeout", 10*time.Second)
	v.SetDefault("booking.default_locale", "en")
	v.SetDefault("outlook.tenant", "common")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4318")
	v.SetDefault("telemetry.insecure", true)
	v.SetDefault("telemetry.service_name", "go-booking-api")
	v.SetDefault("telemetry.sample_ratio", 1.0)
	v.SetDefault("log_level", "info")
}

// Load reads .env (if present), an optional config file and the environment.
// Environment keys use upper snake case, e.g. DATABASE_HOST, AGGREGATOR_CACHE_TTL.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("Config:Load:NoDotEnv")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// AutomaticEnv only resolves keys viper already knows about; bind the ones without defaults.
	for _, key := range []string{
		"database.password", "redis.password", "redis.db", "server.base_url",
		"storage.endpoint", "storage.bucket", "storage.access_key_id", "storage.secret_access_key", "storage.use_path_style",
		"auth.jwt_secret", "google_api.client_id", "google_api.client_secret", "google_api.redirect_url",
		"outlook.client_id", "outlook.client_secret", "outlook.redirect_url", "payment.callback_secret",
	} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("missing required config: AUTH_JWT_SECRET")
	}

	Set(&cfg)
	return &cfg, nil
}

// Set installs cfg as the process configuration.
func Set(cfg *Config) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}

// Get panics when configuration was never loaded.
func Get() *Config {
	cfg, ok := GetSafe()
	if !ok {
		panic("config: not initialized")
	}
	return cfg
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}
