package config

import (
	"fmt"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Learner  LearnerConfig  `mapstructure:"learner"`
	Progress ProgressConfig `mapstructure:"progress"`
	Session  SessionConfig  `mapstructure:"session"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Server   ServerConfig   `mapstructure:"server"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Outputs  OutputsConfig  `mapstructure:"outputs"`
}

// LearnerConfig identifies the learner the CLI acts for.
type LearnerConfig struct {
	UserID      string `mapstructure:"user_id"`
	ClassID     string `mapstructure:"class_id"`
	Role        string `mapstructure:"role" validate:"oneof=student teacher parent"`
	AutoAdvance bool   `mapstructure:"auto_advance"`
}

type ProgressConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
	RetryAttempts  uint   `mapstructure:"retry_attempts"`
	CacheDirectory string `mapstructure:"cache_directory" validate:"dirpath"`
}

type SessionConfig struct {
	Store     string `mapstructure:"store" validate:"oneof=yaml database redis"`
	Directory string `mapstructure:"directory" validate:"dirpath"`
}

type DatabaseConfig struct {
	Driver          string            `mapstructure:"driver" validate:"oneof=sqlite mysql"`
	Path            string            `mapstructure:"path"`
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db" validate:"gte=0"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"gte=0"`
}

type ServerConfig struct {
	Port        int        `mapstructure:"port"`
	CORS        CORSConfig `mapstructure:"cors"`
	TLSCertFile string     `mapstructure:"tls_cert_file" validate:"omitempty,file"`
	TLSKeyFile  string     `mapstructure:"tls_key_file" validate:"omitempty,file"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type SyncConfig struct {
	FlushIntervalSeconds int `mapstructure:"flush_interval_seconds" validate:"gte=1"`
}

type OutputsConfig struct {
	ReportDirectory string `mapstructure:"report_directory" validate:"dirpath"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/pathtutor")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("learner.role", "student")
	v.SetDefault("learner.auto_advance", true)
	v.SetDefault("progress.base_url", "http://127.0.0.1:5000")
	v.SetDefault("progress.timeout_seconds", 10)
	v.SetDefault("progress.retry_attempts", 2)
	v.SetDefault("progress.cache_directory", filepath.Join("cache", "progress"))
	v.SetDefault("session.store", "yaml")
	v.SetDefault("session.directory", "sessions")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "pathtutor.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "local")
	v.SetDefault("database.username", "user")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.key_prefix", "pathtutor:session:")
	v.SetDefault("redis.ttl_seconds", 7*24*60*60)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("sync.flush_interval_seconds", 30)
	v.SetDefault("outputs.report_directory", filepath.Join("outputs", "reports"))

	bindings := []struct {
		key string
		env string
	}{
		{key: "progress.base_url", env: "PATHTUTOR_API_URL"},
		{key: "learner.user_id", env: "PATHTUTOR_USER_ID"},
		{key: "learner.class_id", env: "PATHTUTOR_CLASS_ID"},
		{key: "database.password", env: "DB_PASSWORD"},
		{key: "redis.password", env: "REDIS_PASSWORD"},
	}
	for _, b := range bindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", b.env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

// IsObserver reports whether the configured role may only read progress.
func (c LearnerConfig) IsObserver() bool {
	return c.Role != "student"
}
