package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"github.com/ucardlabs/ucard-admin/internal/logger"
)

// Config хранит все параметры запуска приложения.
type Config struct {
	Env         string
	LogLevel    string
	HTTPPort    string
	DBDriver    string
	DatabaseURL string
	// MigrationsPath указывает на каталог с подкаталогами postgres/ и mysql/.
	MigrationsPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	UcardAPIBaseURL string
	UcardAPITimeout time.Duration

	AdminJWTSecret  string
	AllowedOrigins  []string
	RateLimitLimit  int64
	RateLimitPeriod time.Duration

	ReconcileStaleAfter time.Duration
	// ReconcileInterval задаёт период фоновой сверки в сервере, 0 отключает её.
	ReconcileInterval time.Duration
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DriverMigrationsPath возвращает каталог миграций для выбранного драйвера.
func (c *Config) DriverMigrationsPath() string {
	return strings.TrimRight(c.MigrationsPath, "/") + "/" + c.DBDriver
}

// Load читает переменные окружения и возвращает готовую конфигурацию.
func Load() (*Config, error) {
	// .env необязателен: в контейнере всё приходит из окружения.
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debugf("config: .env не найден, используем переменные окружения: %v", err)
	}

	env := getEnv("APP_ENV", "development")
	driver := strings.ToLower(getEnv("DB_DRIVER", "postgres"))
	if driver != "postgres" && driver != "mysql" {
		return nil, fmt.Errorf("config: DB_DRIVER должен быть postgres или mysql, получено %q", driver)
	}

	cfg := &Config{
		Env:             env,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DBDriver:        driver,
		DatabaseURL:     getDatabaseURL(driver),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		UcardAPIBaseURL: getEnv("UCARD_API_BASE_URL", "http://ucard-api:9091"),
	}

	var err error
	if cfg.RedisDB, err = parseInt(getEnv("REDIS_DB", "0")); err != nil {
		return nil, err
	}
	if cfg.UcardAPITimeout, err = parseDuration(getEnv("UCARD_API_TIMEOUT", "30s")); err != nil {
		return nil, err
	}
	if cfg.RateLimitPeriod, err = parseDuration(getEnv("RATE_LIMIT_PERIOD", "1m")); err != nil {
		return nil, err
	}
	if cfg.ReconcileStaleAfter, err = parseDuration(getEnv("RECONCILE_STALE_AFTER", "5m")); err != nil {
		return nil, err
	}
	if cfg.ReconcileInterval, err = parseDuration(getEnv("RECONCILE_INTERVAL", "1m")); err != nil {
		return nil, err
	}
	limit, err := parseInt(getEnv("RATE_LIMIT_LIMIT", "30"))
	if err != nil {
		return nil, err
	}
	cfg.RateLimitLimit = int64(limit)

	// Токены выпускает внешний логин, здесь только проверка подписи.
	secret := getEnv("ADMIN_JWT_SECRET", "")
	if cfg.IsProduction() && len(secret) < 32 {
		return nil, fmt.Errorf("config: ADMIN_JWT_SECRET обязателен и должен быть не менее 32 символов в production")
	}
	if secret == "" {
		logger.Log.Warn("config: ADMIN_JWT_SECRET не задан, проверка токенов администратора отключена")
	}
	cfg.AdminJWTSecret = secret

	originsStr := getEnv("CORS_ALLOWED_ORIGINS", "")
	if originsStr == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("config: CORS_ALLOWED_ORIGINS обязателен в production")
		}
		cfg.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	} else {
		for _, origin := range strings.Split(originsStr, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или дефолт.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getDatabaseURL берёт DATABASE_URL или собирает DSN из DB_HOST/DB_PORT/... под драйвер.
func getDatabaseURL(driver string) string {
	if dbURL := getEnv("DATABASE_URL", ""); dbURL != "" {
		return dbURL
	}

	host := getEnv("DB_HOST", "localhost")
	user := getEnv("DB_USER", "ucard")
	password := getEnv("DB_PASSWORD", "ucard")
	dbname := getEnv("DB_NAME", "ucard")

	if driver == "mysql" {
		mc := mysql.NewConfig()
		mc.User = user
		mc.Passwd = password
		mc.Net = "tcp"
		mc.Addr = host + ":" + getEnv("DB_PORT", "3306")
		mc.DBName = dbname
		return mc.FormatDSN()
	}

	userInfo := url.UserPassword(user, password)
	return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=disable",
		userInfo.String(), host, getEnv("DB_PORT", "5432"), dbname)
}

func parseDuration(v string) (time.Duration, error) {
	dur, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: не удалось распарсить длительность %q: %w", v, err)
	}
	return dur, nil
}

func parseInt(v string) (int, error) {
	num, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: не удалось распарсить число %q: %w", v, err)
	}
	return num, nil
}
