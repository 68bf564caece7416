package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RealtimeConfig struct {
	URL              string
	BackoffMin       time.Duration
	BackoffMax       time.Duration
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
}

type CacheConfig struct {
	TTL       time.Duration
	SweepSpec string
	Retention time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

type TokenStoreConfig struct {
	Backend string // "file" or "redis"
	Path    string
	KeyPath string
	Redis   RedisConfig
}

type AppConfig struct {
	Environment string
	API         APIConfig
	Realtime    RealtimeConfig
	Cache       CacheConfig
	TokenStore  TokenStoreConfig
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.hms")

	v.SetEnvPrefix("HMS")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("api.baseurl", "http://localhost:5000/api")
	v.SetDefault("api.timeout", "15s")

	v.SetDefault("realtime.url", "ws://localhost:5000/socket")
	v.SetDefault("realtime.backoffmin", "500ms")
	v.SetDefault("realtime.backoffmax", "30s")
	v.SetDefault("realtime.handshaketimeout", "10s")
	v.SetDefault("realtime.pinginterval", "25s")

	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.sweepspec", "0 */5 * * * *") // every five minutes
	v.SetDefault("cache.retention", "30m")

	v.SetDefault("tokenstore.backend", "file")
	v.SetDefault("tokenstore.path", "$HOME/.hms/session.token")
	v.SetDefault("tokenstore.keypath", "$HOME/.hms/session.key")
	v.SetDefault("tokenstore.redis.addr", "127.0.0.1:6379")
	v.SetDefault("tokenstore.redis.db", 0)
	v.SetDefault("tokenstore.redis.key", "hms:session:token")
}
