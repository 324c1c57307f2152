// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env string `yaml:"env" env:"ENV" env-default:"local"`
	// StorageConnectionString пустая строка означает, что удалённое хранилище не настроено
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Events                  `yaml:"events"`
	RabbitMQ                `yaml:"rabbitmq"`
	BootstrapAdmin          `yaml:"bootstrap_admin"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	// Лимит запросов на изменяющие маршруты, в секунду
	RateLimit float64 `yaml:"rate_limit" env-default:"5"`
	RateBurst int     `yaml:"rate_burst" env-default:"10"`
}

// RedisConnection структура для настройки подключения к redis (локальный кэш событий)
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Events настройки хранилища событий календаря
type Events struct {
	LocalCacheKey string        `yaml:"local_cache_key" env-default:"paroquia_events"`
	RemoteTimeout time.Duration `yaml:"remote_timeout" env-default:"5s"`
	UpcomingLimit int           `yaml:"upcoming_limit" env-default:"5"`
	// Communities общины прихода, всегда доступные в фильтре
	Communities []string `yaml:"communities" env:"EVENTS_COMMUNITIES" env-separator:","`
}

// BootstrapAdmin начальный администратор, создаётся при старте, если его ещё нет.
// Пустая почта отключает создание.
type BootstrapAdmin struct {
	AdminEmail    string `yaml:"email" env:"ADMIN_EMAIL"`
	AdminPassword string `yaml:"password" env:"ADMIN_PASSWORD"`
	AdminName     string `yaml:"name" env-default:"Administrador"`
}

// RabbitMQ настройки публикации уведомлений об изменениях календаря.
// Пустой URL отключает уведомления.
type RabbitMQ struct {
	URL            string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange       string        `yaml:"exchange" env-default:"calendar"`
	ConnectRetries int           `yaml:"connect_retries" env-default:"3"`
	RetryDelay     time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// MustLoad функция для загрузки конфига, возвращает конфиг из файла CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load читает конфиг по указанному пути, дополняя его переменными окружения.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
	}
	return &cfg, nil
}

// RemoteConfigured сообщает, задано ли подключение к удалённому хранилищу.
func (c *Config) RemoteConfigured() bool {
	return c.StorageConnectionString != ""
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"RemoteConfigured: %t\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"  MaxRetries: %d\n"+
			"  DialTimeout: %s\n"+
			"  Timeout: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"  RateLimit: %.2f/%d\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"Events:\n"+
			"  LocalCacheKey: %s\n"+
			"  RemoteTimeout: %s\n"+
			"  UpcomingLimit: %d\n"+
			"  Communities: %v\n"+
			"RabbitMQ:\n"+
			"  Enabled: %t\n"+
			"  Exchange: %s\n"+
			"BootstrapAdmin:\n"+
			"  Email: %s\n",
		c.Env,
		c.RemoteConfigured(),
		c.AddressRedis,
		c.DB,
		c.MaxRetries,
		c.DialTimeout,
		c.TimeoutRedis,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.RateLimit,
		c.RateBurst,
		c.TokenTTL,
		c.LocalCacheKey,
		c.RemoteTimeout,
		c.UpcomingLimit,
		c.Communities,
		c.RabbitMQ.URL != "",
		c.Exchange,
		c.AdminEmail,
	)
}
