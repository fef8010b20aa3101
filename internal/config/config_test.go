package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeFile — утилита записи временного файла конфигурации.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

// chdir — смена текущего рабочего каталога с автоматическим откатом.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// Полный корректный YAML (не зависит от дефолтов).
const sampleYAML = `
env: "prod"
http:
  host: "127.0.0.1"
  port: "6000"
storage:
  driver: "redis"
  key: "articles"
  redis:
    url: "redis://localhost:6379/0"
    prefix: "nf:"
categories: ["Главные", "Спорт"]
forbidden:
  phrases: ["Укринформ"]
  policy: "annotate"
  marker: "###"
rates:
  url: "http://rates.local/json"
  primary_source: "BNS"
  timeout: "3s"
clipboard:
  driver: "file"
  path: "/tmp/export.txt"
timeouts:
  service: "2s"
`

// Минимальный YAML: всё остальное из дефолтов.
const minimalYAML = `
env: "dev"
`

// Некорректный YAML — для проверки ошибок парсинга.
const brokenYAML = `
storage:
  driver: "sqlite
`

func TestHTTPConfig_Addr(t *testing.T) {
	t.Parallel()
	cfg := HTTPConfig{Host: "127.0.0.1", Port: "50095"}
	require.Equal(t, "127.0.0.1:50095", cfg.Addr())
}

// TestLoad_WithExplicitPath_OK — явный путь имеет высший приоритет.
func TestLoad_WithExplicitPath_OK(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "127.0.0.1:6000", cfg.HTTP.Addr())
	require.Equal(t, "redis", cfg.Storage.Driver)
	require.Equal(t, "articles", cfg.Storage.Key)
	require.Equal(t, "redis://localhost:6379/0", cfg.Storage.Redis.URL)
	require.Equal(t, "nf:", cfg.Storage.Redis.Prefix)
	require.Equal(t, []string{"Главные", "Спорт"}, cfg.Categories)
	require.Equal(t, []string{"Укринформ"}, cfg.Forbidden.Phrases)
	require.Equal(t, "annotate", cfg.Forbidden.Policy)
	require.Equal(t, "###", cfg.Forbidden.Marker)
	require.Equal(t, "BNS", cfg.Rates.PrimarySource)
	require.Equal(t, 3*time.Second, cfg.Rates.Timeout)
	require.Equal(t, "file", cfg.Clipboard.Driver)
	require.Equal(t, 2*time.Second, cfg.Timeouts.Service)
}

// TestLoad_Defaults — незаданные поля берутся из env-default.
func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfgPath := writeFile(t, t.TempDir(), "min.yaml", minimalYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, "0.0.0.0:50095", cfg.HTTP.Addr())
	require.Equal(t, "sqlite", cfg.Storage.Driver)
	require.Equal(t, "savedArticles", cfg.Storage.Key)
	require.Equal(t, "news-formatter.db", cfg.Storage.SQLite.Path)
	require.Equal(t, []string{"Главные", "Инциденты", "Культура", "Интересное", "Мировые", "Экономика", "Спорт"}, cfg.Categories)
	require.Equal(t, []string{"Укринформ", "Читайте также:"}, cfg.Forbidden.Phrases)
	require.Equal(t, "block", cfg.Forbidden.Policy)
	require.Equal(t, "Unian", cfg.Rates.PrimarySource)
	require.Equal(t, 10*time.Second, cfg.Rates.Timeout)
	require.Equal(t, "stdout", cfg.Clipboard.Driver)
	require.Equal(t, 5*time.Second, cfg.Timeouts.Service)
}

func TestLoad_WithExplicitPath_FileDoesNotExist(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "config file does not exist")
}

func TestLoad_WithExplicitPath_BrokenYAML(t *testing.T) {
	t.Parallel()

	cfgPath := writeFile(t, t.TempDir(), "broken.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

// TestLoad_Validation — значения, которые проходят парсинг, но не валидацию.
func TestLoad_Validation(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		yaml string
		msg  string
	}{
		"unknown driver":       {`storage: { driver: "etcd" }`, "storage.driver"},
		"postgres without url": {`storage: { driver: "postgres" }`, "storage.postgres.url"},
		"redis without url":    {`storage: { driver: "redis" }`, "storage.redis.url"},
		"mongo without url":    {`storage: { driver: "mongo" }`, "storage.mongo.url"},
		"minio without bucket": {`storage: { driver: "minio", s3: { endpoint: "localhost:9000" } }`, "storage.s3.endpoint"},
		"minio without creds":  {`storage: { driver: "minio", s3: { endpoint: "localhost:9000", bucket: "b" } }`, "storage.s3.root_user"},
		"duplicate categories": {`categories: ["Спорт", "Спорт"]`, "categories"},
		"no phrases":           {`forbidden: { phrases: [] }`, "forbidden.phrases"},
		"blank phrases":        {`forbidden: { phrases: ["", "  "] }`, "forbidden.phrases"},
		"bad policy":           {`forbidden: { policy: "shout" }`, "forbidden.policy"},
		"bad primary source":   {`rates: { primary_source: "Reuters" }`, "rates.primary_source"},
		"file clipboard":       {`clipboard: { driver: "file" }`, "clipboard.path"},
		"unknown clipboard":    {`clipboard: { driver: "fax" }`, "clipboard.driver"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfgPath := writeFile(t, t.TempDir(), "c.yaml", tc.yaml)
			_, err := Load(cfgPath)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.msg)
		})
	}
}

// TestLoad_WithCONFIG_PATH_OK — путь берётся из CONFIG_PATH.
func TestLoad_WithCONFIG_PATH_OK(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "from_env_path.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
}

// TestLoad_WithLocalYAML_OK — если нет CONFIG_PATH, берётся ./local.yaml.
func TestLoad_WithLocalYAML_OK(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, ".", "local.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "redis", cfg.Storage.Driver)
}

// TestLoad_EnvOnly_OK — конфигурация полностью из ENV без YAML-файлов.
func TestLoad_EnvOnly_OK(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	t.Setenv("ENV", "dev")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("CATEGORIES", "Главные,Экономика")
	t.Setenv("FORBIDDEN_POLICY", "annotate")
	t.Setenv("CLIPBOARD_DRIVER", "system")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, "postgres", cfg.Storage.Driver)
	require.Equal(t, "postgres://env/db", cfg.Storage.Postgres.URL)
	require.Equal(t, []string{"Главные", "Экономика"}, cfg.Categories)
	require.Equal(t, "annotate", cfg.Forbidden.Policy)
	require.Equal(t, "system", cfg.Clipboard.Driver)
}

// TestLoad_EnvOnly_InvalidValue — битое значение в ENV даёт ошибку валидации.
func TestLoad_EnvOnly_InvalidValue(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "storage.mongo.url")
}

// TestLoad_Priority_ExplicitWinsOverEnvAndLocal — явный путь важнее CONFIG_PATH и local.yaml.
func TestLoad_Priority_ExplicitWinsOverEnvAndLocal(t *testing.T) {
	dir := t.TempDir()

	explicit := writeFile(t, dir, "explicit.yaml", `env: "prod"`)
	t.Setenv("CONFIG_PATH", writeFile(t, dir, "env_bad.yaml", brokenYAML))
	writeFile(t, dir, "local.yaml", `env: "local"`)
	chdir(t, dir)

	cfg, err := Load(explicit)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		_ = MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}
