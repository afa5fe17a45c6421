// Package config loads service configuration: built-in defaults, then an
// optional YAML file named by CONFIG_FILE, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	id "tradeinvoice/pkg/domain"
	liststrings "tradeinvoice/pkg/platform/strings"
)

// Config is the full service configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Registry Registry `yaml:"registry"`
	Auth     Auth     `yaml:"auth"`
	Database Database `yaml:"database"`
	Redis    Redis    `yaml:"redis"`
	Kafka    Kafka    `yaml:"kafka"`
	Audit    Audit    `yaml:"audit"`
	LogLevel string   `yaml:"log_level"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Registry holds the role holders written when the registry is first created.
type Registry struct {
	InitialAdmin  string `yaml:"initial_admin"`
	InitialOracle string `yaml:"initial_oracle"`
}

type Auth struct {
	JWTSigningKey string        `yaml:"jwt_signing_key"`
	JWTIssuer     string        `yaml:"jwt_issuer"`
	JWTAudience   string        `yaml:"jwt_audience"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
}

// Database selects the durable store. An empty URL keeps the registry in memory.
type Database struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// Redis configures the hash index cache. An empty URL disables it.
type Redis struct {
	URL string `yaml:"url"`
	// Namespace scopes hash cache keys when registries share one Redis.
	Namespace    string        `yaml:"namespace"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Kafka configures the lifecycle event sink. No brokers keeps events in memory.
type Kafka struct {
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	ClientID string   `yaml:"client_id"`
}

type Audit struct {
	BufferSize int `yaml:"buffer_size"`
}

const devSigningKey = "dev-secret-key-change-in-production"

// Default returns the development configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			RequestTimeout:  5 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: Auth{
			JWTSigningKey: devSigningKey,
			JWTIssuer:     "tradeinvoice",
			JWTAudience:   "tradeinvoice-api",
			TokenTTL:      time.Hour,
		},
		Database: Database{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: Redis{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		},
		Kafka: Kafka{
			Topic:    "tradeinvoice.lifecycle",
			ClientID: "tradeinvoice",
		},
		Audit:    Audit{BufferSize: 1024},
		LogLevel: "info",
	}
}

// Load builds the configuration and validates it.
func Load() (Config, error) {
	cfg, err := Resolve()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve layers defaults, the CONFIG_FILE YAML and the environment without
// validating. Tools that only need part of the configuration use it.
func Resolve() (Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	setString(lookup, "TRADEINVOICE_ADDR", &c.Server.Addr)
	setString(lookup, "REGISTRY_INITIAL_ADMIN", &c.Registry.InitialAdmin)
	setString(lookup, "REGISTRY_INITIAL_ORACLE", &c.Registry.InitialOracle)
	setString(lookup, "JWT_SIGNING_KEY", &c.Auth.JWTSigningKey)
	setString(lookup, "JWT_ISSUER", &c.Auth.JWTIssuer)
	setString(lookup, "JWT_AUDIENCE", &c.Auth.JWTAudience)
	setString(lookup, "DATABASE_URL", &c.Database.URL)
	setString(lookup, "REDIS_URL", &c.Redis.URL)
	setString(lookup, "REDIS_NAMESPACE", &c.Redis.Namespace)
	setString(lookup, "KAFKA_TOPIC", &c.Kafka.Topic)
	setString(lookup, "LOG_LEVEL", &c.LogLevel)
	if v, ok := lookup("KAFKA_BROKERS"); ok {
		c.Kafka.Brokers = splitList(v)
	}

	durations := map[string]*time.Duration{
		"SERVER_REQUEST_TIMEOUT":  &c.Server.RequestTimeout,
		"SERVER_SHUTDOWN_TIMEOUT": &c.Server.ShutdownTimeout,
		"JWT_TOKEN_TTL":           &c.Auth.TokenTTL,
	}
	for key, dst := range durations {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"DATABASE_MAX_OPEN_CONNS": &c.Database.MaxOpenConns,
		"REDIS_POOL_SIZE":         &c.Redis.PoolSize,
		"AUDIT_BUFFER_SIZE":       &c.Audit.BufferSize,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}
	return nil
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.InitialAdmin().IsNil() {
		errs = append(errs, errors.New("registry.initial_admin is required"))
	}
	if c.InitialOracle().IsNil() {
		errs = append(errs, errors.New("registry.initial_oracle is required"))
	}
	if c.Auth.JWTSigningKey == "" {
		errs = append(errs, errors.New("auth.jwt_signing_key is required"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}
	if c.Audit.BufferSize < 0 {
		errs = append(errs, errors.New("audit.buffer_size must not be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) InitialAdmin() id.Identity {
	return id.ParseIdentity(c.Registry.InitialAdmin)
}

func (c Config) InitialOracle() id.Identity {
	return id.ParseIdentity(c.Registry.InitialOracle)
}

// UsesDevSigningKey reports whether the built-in development key is active.
func (c Config) UsesDevSigningKey() bool {
	return c.Auth.JWTSigningKey == devSigningKey
}

func setString(lookup lookupFunc, key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func splitList(v string) []string {
	return liststrings.SplitList(v, ",")
}
