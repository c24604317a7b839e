package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string         `mapstructure:"env"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	AppURL       string        `mapstructure:"app_url"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	// ContentKey is the server-only symmetric key used to encrypt
	// document content at rest. Never exposed to clients.
	ContentKey string `mapstructure:"content_key"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	CookieName      string        `mapstructure:"cookie_name"`
	SessionDuration time.Duration `mapstructure:"session_duration"`
	CodeDuration    time.Duration `mapstructure:"code_duration"`
	CacheDuration   time.Duration `mapstructure:"cache_duration"`
	CronSecret      string        `mapstructure:"cron_secret"`
}

type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	// PublicURL is the externally reachable base for bucket objects.
	PublicURL string `mapstructure:"public_url"`
}

func Load() (Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("dotenv")
	viper.AutomaticEnv()

	viper.SetDefault("env", "dev")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("server.app_url", "http://localhost:3081")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("auth.cookie_name", "dotenv_session")
	viper.SetDefault("auth.session_duration", "168h")
	viper.SetDefault("auth.code_duration", "5m")
	viper.SetDefault("auth.cache_duration", "1h")
	viper.SetDefault("storage.endpoint", "localhost:9000")
	viper.SetDefault("storage.bucket", "avatars")
	viper.SetDefault("storage.use_ssl", false)

	if err := viper.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
