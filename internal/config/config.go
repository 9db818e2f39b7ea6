package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "INHERIT"

// Store backends.
const (
	StoreMemory = "memory"
	StoreBolt   = "bolt"
	StoreMySQL  = "mysql"
)

type Config struct {
	HTTP    ListenConfig  `mapstructure:"http"`
	GRPC    ListenConfig  `mapstructure:"grpc"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Store   StoreConfig   `mapstructure:"store"`
	MySQL   MySQLConfig   `mapstructure:"mysql"`
	Bolt    BoltConfig    `mapstructure:"bolt"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Events  EventsConfig  `mapstructure:"events"`
	Log     LogConfig     `mapstructure:"log"`
}

type ListenConfig struct {
	Address string `mapstructure:"address"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type StoreConfig struct {
	Type string `mapstructure:"type"`
}

type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type BoltConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig configures the shared cache. An empty address selects the
// in-process cache.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	PoolSize int           `mapstructure:"pool_size"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type EventsConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.address", ":8080")
	v.SetDefault("grpc.address", ":50051")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.address", ":2112")
	v.SetDefault("store.type", StoreMemory)
	v.SetDefault("mysql.dsn", "root:root@tcp(localhost:3306)/inheritance?parseTime=true")
	v.SetDefault("mysql.max_open_conns", 50)
	v.SetDefault("mysql.max_idle_conns", 25)
	v.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("bolt.path", "data/ledger.db")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.pool_size", 100)
	v.SetDefault("redis.cache_ttl", 30*time.Second)
	v.SetDefault("events.workers", 10)
	v.SetDefault("events.queue_size", 10000)
	v.SetDefault("log.level", "info")
}

// Load reads the configuration from the optional file at path, INHERIT_*
// environment variables and defaults, in decreasing priority order after v's
// bound flags.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Type {
	case StoreMemory, StoreBolt, StoreMySQL:
	default:
		return fmt.Errorf("unknown store type %q", c.Store.Type)
	}
	if c.Events.Workers <= 0 {
		return errors.New("events.workers must be positive")
	}
	if c.Events.QueueSize <= 0 {
		return errors.New("events.queue_size must be positive")
	}
	return nil
}
