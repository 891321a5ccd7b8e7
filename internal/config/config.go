package config

import (
	"time"

	pkgconfig "github.com/riskids/riskids-betest/pkg/config"
	"github.com/riskids/riskids-betest/pkg/log"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Log      log.Config
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	FilePath        string `mapstructure:"file_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig holds cache tuning. TTL is expressed in whole seconds to match
// the REDIS_TTL environment convention.
type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl"`
}

// TTL returns the configured entry lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
	BcryptCost  int           `mapstructure:"bcrypt_cost"`
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "riskids_betest")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "./data/riskids.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.ttl", 3600)
	v.SetDefault("auth.jwt_secret", "change-me")
	v.SetDefault("auth.token_expiry", "1h")
	v.SetDefault("auth.bcrypt_cost", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.service_name", "riskids-betest")

	// Bind environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("cache.ttl", "REDIS_TTL")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.bcrypt_cost", "SALT_ROUNDS")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
