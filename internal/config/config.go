// config предоставляет структуру конфигурации news-formatter
// и функции загрузки из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/pribylovaa/go-news-formatter/internal/categories"
	"github.com/pribylovaa/go-news-formatter/internal/clipboard"
	"github.com/pribylovaa/go-news-formatter/internal/forbidden"
	"github.com/pribylovaa/go-news-formatter/internal/models"
	"github.com/pribylovaa/go-news-formatter/internal/storage"
)

// Config — корневая конфигурация.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load (флаг --config);
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env        string          `yaml:"env"        env:"ENV" env-default:"local"`
	HTTP       HTTPConfig      `yaml:"http"`
	Storage    StorageConfig   `yaml:"storage"`
	Categories []string        `yaml:"categories" env:"CATEGORIES" env-separator:"," env-default:"Главные,Инциденты,Культура,Интересное,Мировые,Экономика,Спорт"`
	Forbidden  ForbiddenConfig `yaml:"forbidden"`
	Rates      RatesConfig     `yaml:"rates"`
	Clipboard  ClipboardConfig `yaml:"clipboard"`
	Timeouts   TimeoutConfig   `yaml:"timeouts"`
}

// HTTPConfig — сетевые настройки HTTP-сервера (команда serve).
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50095"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// StorageConfig — выбор и настройки внешнего KV.
type StorageConfig struct {
	Driver   string         `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	Key      string         `yaml:"key"    env:"STORAGE_KEY"    env-default:"savedArticles"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Mongo    MongoConfig    `yaml:"mongo"`
	S3       S3Config       `yaml:"s3"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_PATH" env-default:"news-formatter.db"`
}

type PostgresConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL"`
}

type RedisConfig struct {
	URL    string `yaml:"url"    env:"REDIS_URL"`
	Prefix string `yaml:"prefix" env:"REDIS_PREFIX" env-default:"formatter:"`
}

type MongoConfig struct {
	URL        string `yaml:"url"        env:"MONGO_URL"`
	Collection string `yaml:"collection" env:"MONGO_COLLECTION" env-default:"kv"`
}

// S3Config — настройки MinIO/S3.
type S3Config struct {
	Endpoint     string `yaml:"endpoint"      env:"S3_ENDPOINT"`
	RootUser     string `yaml:"root_user"     env:"S3_ROOT_USER"`
	RootPassword string `yaml:"root_password" env:"S3_ROOT_PASSWORD"`
	Bucket       string `yaml:"bucket"        env:"S3_BUCKET"`
}

// ForbiddenConfig — запрещённые фразы и реакция на них.
type ForbiddenConfig struct {
	Phrases []string `yaml:"phrases" env:"FORBIDDEN_PHRASES" env-separator:"," env-default:"Укринформ,Читайте также:"`
	// Policy: block — отказ в сохранении, annotate — пометка строк маркером.
	Policy string `yaml:"policy" env:"FORBIDDEN_POLICY" env-default:"block"`
	Marker string `yaml:"marker" env:"FORBIDDEN_MARKER" env-default:"!!!"`
}

// RatesConfig — справка по курсам валют.
type RatesConfig struct {
	URL           string        `yaml:"url"            env:"RATES_URL"            env-default:"https://bank.gov.ua/NBUStatService/v1/statdirectory/exchange?json"`
	PrimarySource string        `yaml:"primary_source" env:"RATES_PRIMARY_SOURCE" env-default:"Unian"`
	Timeout       time.Duration `yaml:"timeout"        env:"RATES_TIMEOUT"        env-default:"10s"`
}

// ClipboardConfig — куда уходят выгрузки и справки.
type ClipboardConfig struct {
	Driver string `yaml:"driver" env:"CLIPBOARD_DRIVER" env-default:"stdout"`
	Path   string `yaml:"path"   env:"CLIPBOARD_PATH"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
func Load(path string) (*Config, error) {
	var cfg Config

	read := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", p)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	switch {
	case path != "":
		return read(path)
	case os.Getenv("CONFIG_PATH") != "":
		return read(os.Getenv("CONFIG_PATH"))
	}

	if _, err := os.Stat("local.yaml"); err == nil {
		return read("local.yaml")
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate — проверка значений, которые не выражаются тегами.
func (c *Config) validate() error {
	if c.HTTP.Port == "" {
		return fmt.Errorf("http.port is required")
	}

	if err := c.Storage.validate(); err != nil {
		return err
	}

	if _, err := categories.New(c.Categories); err != nil {
		return fmt.Errorf("categories: %w", err)
	}

	// Пустой стоп-лист молча отключил бы проверку статей.
	if !slices.ContainsFunc(c.Forbidden.Phrases, func(p string) bool { return strings.TrimSpace(p) != "" }) {
		return fmt.Errorf("forbidden.phrases must contain at least one phrase")
	}

	if _, err := forbidden.ParsePolicy(c.Forbidden.Policy); err != nil {
		return fmt.Errorf("forbidden.policy: %w", err)
	}

	if _, err := models.ParseSource(c.Rates.PrimarySource); err != nil {
		return fmt.Errorf("rates.primary_source: %w", err)
	}
	if c.Rates.Timeout <= 0 {
		return fmt.Errorf("rates.timeout must be > 0")
	}

	switch c.Clipboard.Driver {
	case clipboard.DriverSystem, clipboard.DriverStdout:
	case clipboard.DriverFile:
		if c.Clipboard.Path == "" {
			return fmt.Errorf("clipboard.path is required for driver %q", c.Clipboard.Driver)
		}
	default:
		return fmt.Errorf("clipboard.driver: unknown driver %q", c.Clipboard.Driver)
	}

	if c.Timeouts.Service <= 0 {
		return fmt.Errorf("timeouts.service must be > 0")
	}

	return nil
}

func (s StorageConfig) validate() error {
	if s.Key == "" {
		return fmt.Errorf("storage.key is required")
	}

	switch s.Driver {
	case storage.DriverMemory:
	case storage.DriverSQLite:
		if s.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required")
		}
	case storage.DriverPostgres:
		if s.Postgres.URL == "" {
			return fmt.Errorf("storage.postgres.url is required")
		}
	case storage.DriverRedis:
		if s.Redis.URL == "" {
			return fmt.Errorf("storage.redis.url is required")
		}
	case storage.DriverMongo:
		if s.Mongo.URL == "" {
			return fmt.Errorf("storage.mongo.url is required")
		}
	case storage.DriverMinio:
		if s.S3.Endpoint == "" || s.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.endpoint and storage.s3.bucket are required")
		}
		if s.S3.RootUser == "" || s.S3.RootPassword == "" {
			return fmt.Errorf("storage.s3.root_user and storage.s3.root_password are required")
		}
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", s.Driver)
	}

	return nil
}
