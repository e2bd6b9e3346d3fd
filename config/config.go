package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	app "subsea-inspector/internal/application"
	"subsea-inspector/internal/domain/service"
	"subsea-inspector/internal/infrastructure/storage"
	"subsea-inspector/internal/infrastructure/vision"
	"subsea-inspector/internal/logging"
)

// EnvPrefix префикс переменных окружения, например INSPECTOR_SERVER_ADDRESS.
const EnvPrefix = "INSPECTOR"

type Config struct {
	Server   ServerConfig            `mapstructure:"server"`
	Database DatabaseConfig          `mapstructure:"database"`
	Telegram TelegramConfig          `mapstructure:"telegram"`
	Detector DetectorConfig          `mapstructure:"detector"`
	Scoring  service.ConditionPolicy `mapstructure:"scoring"`
	Search   app.SearchDefaults      `mapstructure:"search"`
	Cache    CacheConfig             `mapstructure:"cache"`
	Log      LogConfig               `mapstructure:"log"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BodyLimit    string        `mapstructure:"body_limit"` // формат echo, например 20M
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite или mysql
	DSN    string `mapstructure:"dsn"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type DetectorConfig struct {
	Kind                string  `mapstructure:"kind"` // mock или gocv
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults задаёт значения по умолчанию для всех ключей.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.body_limit", "20M")

	v.SetDefault("database.driver", storage.DriverSQLite)
	v.SetDefault("database.dsn", "subsea-inspector.db")

	v.SetDefault("telegram.token", "")

	v.SetDefault("detector.kind", vision.KindMock)
	v.SetDefault("detector.confidence_threshold", vision.DefaultConfidenceThreshold)

	policy := service.DefaultConditionPolicy()
	v.SetDefault("scoring.poor_high_count", policy.PoorHighCount)
	v.SetDefault("scoring.fair_high_count", policy.FairHighCount)
	v.SetDefault("scoring.fair_medium_count", policy.FairMediumCount)

	search := app.DefaultSearchDefaults()
	v.SetDefault("search.default_radius_km", search.RadiusKm)
	v.SetDefault("search.inspection_radius_km", search.InspectionRadiusKm)
	v.SetDefault("search.nearest_count", search.NearestCount)
	v.SetDefault("search.inspection_max_age_days", search.InspectionMaxAge)

	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load собирает конфигурацию из значений по умолчанию, файла, .env и окружения.
// Пустой path означает поиск config.yaml в текущем каталоге и ./config.
func Load(v *viper.Viper, path string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("telegram.token", EnvPrefix+"_TELEGRAM_TOKEN", "TELEGRAM_TOKEN"); err != nil {
		return nil, fmt.Errorf("bind telegram token: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Address) == "" {
		return errors.New("server.address is required")
	}
	switch c.Database.Driver {
	case storage.DriverSQLite, storage.DriverMySQL:
	default:
		return fmt.Errorf("database.driver must be %s or %s, got %q", storage.DriverSQLite, storage.DriverMySQL, c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	switch c.Detector.Kind {
	case vision.KindMock, vision.KindGoCV:
	default:
		return fmt.Errorf("detector.kind must be %s or %s, got %q", vision.KindMock, vision.KindGoCV, c.Detector.Kind)
	}
	if t := c.Detector.ConfidenceThreshold; math.IsNaN(t) || t < 0 || t > 1 {
		return fmt.Errorf("detector.confidence_threshold must be within [0, 1], got %v", t)
	}
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if !validRadius(c.Search.RadiusKm) || !validRadius(c.Search.InspectionRadiusKm) {
		return errors.New("search radii must not be negative")
	}
	if c.Search.NearestCount < 1 {
		return errors.New("search.nearest_count must be at least 1")
	}
	if c.Search.InspectionMaxAge < 1 {
		return errors.New("search.inspection_max_age_days must be at least 1")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func validRadius(km float64) bool {
	return !math.IsNaN(km) && !math.IsInf(km, 0) && km >= 0
}
