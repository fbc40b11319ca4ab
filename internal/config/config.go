package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Tracing TracingConfig `yaml:"tracing"`
	Logger  LoggerConfig  `yaml:"logger"`
}

type HTTPConfig struct {
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

// StorageConfig selects the durable slot backend: "file", "sql", "redis",
// or "memory".
type StorageConfig struct {
	Backend string             `yaml:"backend"`
	File    FileStorageConfig  `yaml:"file"`
	SQL     SQLStorageConfig   `yaml:"sql"`
	Redis   RedisStorageConfig `yaml:"redis"`
}

type FileStorageConfig struct {
	Path string `yaml:"path"`
}

// SQLStorageConfig accepts the "sqlite" or "mysql" driver. For sqlite the
// DSN is a file path; for mysql a standard driver DSN.
type SQLStorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RedisStorageConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("http.port", 8080)
	viper.SetDefault("http.timeout", "5s")
	viper.SetDefault("storage.backend", "file")
	viper.SetDefault("storage.file.path", "data/advertisements.json")
	viper.SetDefault("storage.sql.driver", "sqlite")
	viper.SetDefault("storage.sql.dsn", "data/jobads.db")
	viper.SetDefault("storage.redis.addr", "localhost:6379")
	viper.SetDefault("tracing.service_name", "jobads")
	viper.SetDefault("logger.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if timeoutStr := viper.GetString("http.timeout"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, err
		}
		config.HTTP.Timeout = timeout
	}

	return &config, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}
	return config
}
