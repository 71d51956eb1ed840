// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Remote  RemoteConfig  `mapstructure:"remote"`
	Session SessionConfig `mapstructure:"session"`
	Worker  WorkerConfig  `mapstructure:"worker"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Host           string   `mapstructure:"host"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

type RemoteConfig struct {
	Type    string        `mapstructure:"type"` // "http", "firebase", "postgres", "redis" или "memory"
	URL     string        `mapstructure:"url"`
	Auth    string        `mapstructure:"auth"`
	Timeout time.Duration `mapstructure:"timeout"`

	DatabaseURL         string `mapstructure:"database_url"`
	RedisAddr           string `mapstructure:"redis_addr"`
	FirebaseCredentials string `mapstructure:"firebase_credentials"`
}

type SessionConfig struct {
	Dir string `mapstructure:"dir"`
}

type WorkerConfig struct {
	ResyncInterval time.Duration `mapstructure:"resync_interval"` // 0 отключает фоновую синхронизацию
}

const (
	RemoteHTTP     = "http"
	RemoteFirebase = "firebase"
	RemotePostgres = "postgres"
	RemoteRedis    = "redis"
	RemoteMemory   = "memory"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("logging.development", false)
	v.SetDefault("remote.type", RemoteHTTP)
	v.SetDefault("remote.url", "")
	v.SetDefault("remote.auth", "")
	v.SetDefault("remote.timeout", 10*time.Second)
	v.SetDefault("remote.database_url", "")
	v.SetDefault("remote.redis_addr", "localhost:6379")
	v.SetDefault("remote.firebase_credentials", "")
	v.SetDefault("session.dir", ".board")
	v.SetDefault("worker.resync_interval", time.Duration(0))
}

// Load reads config.yml from the given directories (the working directory
// when none are given) and applies BOARD_* environment overrides, e.g.
// BOARD_REMOTE_URL. A missing file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("BOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка парсинга config.yml: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Remote.Type {
	case RemoteHTTP, RemoteFirebase:
		if c.Remote.URL == "" {
			return fmt.Errorf("remote.url обязателен для типа %q", c.Remote.Type)
		}
	case RemotePostgres:
		if c.Remote.DatabaseURL == "" {
			return fmt.Errorf("remote.database_url обязателен для типа %q", c.Remote.Type)
		}
	case RemoteRedis:
		if c.Remote.RedisAddr == "" {
			return fmt.Errorf("remote.redis_addr обязателен для типа %q", c.Remote.Type)
		}
	case RemoteMemory:
	default:
		return fmt.Errorf("неизвестный remote.type %q", c.Remote.Type)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
