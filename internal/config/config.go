package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFirebase = "firebase"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config stores dispatcher settings.
type Config struct {
	Port     int
	Log      Log
	Store    Store
	Retry    Retry
	Dispatch Dispatch
	Kafka    Kafka
	MQTT     MQTT
}

// Log selects the logger implementation.
type Log struct {
	Format string
	Level  string
}

// Store selects and configures the document store backend.
type Store struct {
	Backend      string
	FirebaseURL  string
	FirebaseAuth string
	Redis        Redis
	DB           DB
}

// Redis connection settings.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// DB connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN returns a postgres connection string.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Retry configures store retries.
type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Dispatch configures the loop and the engine.
type Dispatch struct {
	Interval         time.Duration
	Workers          int
	Selection        string
	OperationTimeout time.Duration
}

// Kafka configures the order event trigger. Empty Brokers disables it.
type Kafka struct {
	Brokers []string
	GroupID string
	Topic   string
}

// Enabled reports whether brokers are configured.
func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

// MQTT configures the courier availability trigger. Empty Broker disables it.
type MQTT struct {
	Broker   string
	ClientID string
	Topic    string
	Username string
	Password string
}

// Enabled reports whether a broker is configured.
func (m MQTT) Enabled() bool { return m.Broker != "" }

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	loadDotEnv()

	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	fs := pflag.CommandLine
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	fs.StringVar(&cfg.Store.Backend, "backend", cfg.Store.Backend, "document store backend: memory|firebase|redis|postgres")
	fs.DurationVar(&cfg.Dispatch.Interval, "interval", cfg.Dispatch.Interval, "dispatch pass interval")
	fs.IntVar(&cfg.Dispatch.Workers, "workers", cfg.Dispatch.Workers, "concurrent assignments per pass")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level: debug|info|warn|error")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv reads .env and the environment only. Callers that own their
// flags apply them and call Validate.
func LoadEnv() (*Config, error) {
	loadDotEnv()
	return fromEnv()
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	case BackendFirebase:
		if c.Store.FirebaseURL == "" {
			return fmt.Errorf("FIREBASE_DATABASE_URL is required for the firebase backend")
		}
	default:
		return fmt.Errorf("unknown store backend: %q", c.Store.Backend)
	}
	if _, err := strconv.Atoi(c.Store.DB.Port); err != nil {
		return fmt.Errorf("invalid POSTGRES_PORT: %w", err)
	}
	if c.Dispatch.Interval <= 0 {
		return fmt.Errorf("dispatch interval must be positive: %s", c.Dispatch.Interval)
	}
	if c.Dispatch.Workers <= 0 {
		return fmt.Errorf("dispatch workers must be positive: %d", c.Dispatch.Workers)
	}
	if c.Dispatch.OperationTimeout <= 0 {
		return fmt.Errorf("operation timeout must be positive: %s", c.Dispatch.OperationTimeout)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry attempts must be positive: %d", c.Retry.MaxAttempts)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "zerolog", "console":
	default:
		return fmt.Errorf("unknown log format: %q", c.Log.Format)
	}
	return nil
}

func loadDotEnv() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		Port:     DefaultPort(),
		Log:      DefaultLog(),
		Store:    DefaultStore(),
		Retry:    DefaultRetry(),
		Dispatch: DefaultDispatch(),
		Kafka:    DefaultKafka(),
		MQTT:     DefaultMQTT(),
	}

	var err error
	if cfg.Port, err = envInt("PORT", cfg.Port); err != nil {
		return nil, err
	}

	cfg.Log.Format = envString("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.Level = envString("LOG_LEVEL", cfg.Log.Level)

	cfg.Store.Backend = strings.ToLower(envString("STORE_BACKEND", cfg.Store.Backend))
	cfg.Store.FirebaseURL = envString("FIREBASE_DATABASE_URL", cfg.Store.FirebaseURL)
	cfg.Store.FirebaseAuth = envString("FIREBASE_AUTH_TOKEN", cfg.Store.FirebaseAuth)
	cfg.Store.Redis.Addr = envString("REDIS_ADDR", cfg.Store.Redis.Addr)
	cfg.Store.Redis.Password = envString("REDIS_PASSWORD", cfg.Store.Redis.Password)
	if cfg.Store.Redis.DB, err = envInt("REDIS_DB", cfg.Store.Redis.DB); err != nil {
		return nil, err
	}
	cfg.Store.DB.Host = envString("POSTGRES_HOST", cfg.Store.DB.Host)
	cfg.Store.DB.Port = envString("POSTGRES_PORT", cfg.Store.DB.Port)
	cfg.Store.DB.User = envString("POSTGRES_USER", cfg.Store.DB.User)
	cfg.Store.DB.Pass = envString("POSTGRES_PASSWORD", cfg.Store.DB.Pass)
	cfg.Store.DB.Name = envString("POSTGRES_DB", cfg.Store.DB.Name)

	if cfg.Retry.MaxAttempts, err = envInt("STORE_RETRY_MAX_ATTEMPTS", cfg.Retry.MaxAttempts); err != nil {
		return nil, err
	}
	if cfg.Retry.BaseDelay, err = envDuration("STORE_RETRY_BASE_DELAY", cfg.Retry.BaseDelay); err != nil {
		return nil, err
	}
	if cfg.Retry.MaxDelay, err = envDuration("STORE_RETRY_MAX_DELAY", cfg.Retry.MaxDelay); err != nil {
		return nil, err
	}

	if cfg.Dispatch.Interval, err = envDuration("DISPATCH_INTERVAL", cfg.Dispatch.Interval); err != nil {
		return nil, err
	}
	if cfg.Dispatch.Workers, err = envInt("DISPATCH_WORKERS", cfg.Dispatch.Workers); err != nil {
		return nil, err
	}
	cfg.Dispatch.Selection = envString("DISPATCH_SELECTION", cfg.Dispatch.Selection)
	if cfg.Dispatch.OperationTimeout, err = envDuration("DISPATCH_OPERATION_TIMEOUT", cfg.Dispatch.OperationTimeout); err != nil {
		return nil, err
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	cfg.Kafka.GroupID = envString("KAFKA_GROUP_ID", cfg.Kafka.GroupID)
	cfg.Kafka.Topic = envString("KAFKA_ORDERS_TOPIC", cfg.Kafka.Topic)

	cfg.MQTT.Broker = envString("MQTT_BROKER", cfg.MQTT.Broker)
	cfg.MQTT.ClientID = envString("MQTT_CLIENT_ID", cfg.MQTT.ClientID)
	cfg.MQTT.Topic = envString("MQTT_AVAILABILITY_TOPIC", cfg.MQTT.Topic)
	cfg.MQTT.Username = envString("MQTT_USERNAME", cfg.MQTT.Username)
	cfg.MQTT.Password = envString("MQTT_PASSWORD", cfg.MQTT.Password)

	return cfg, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
