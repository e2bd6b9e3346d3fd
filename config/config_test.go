package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Address)
	require.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "mock", cfg.Detector.Kind)
	require.Equal(t, 0.85, cfg.Detector.ConfidenceThreshold)
	require.Equal(t, 2, cfg.Scoring.PoorHighCount)
	require.Equal(t, 3, cfg.Scoring.FairMediumCount)
	require.Equal(t, 50.0, cfg.Search.RadiusKm)
	require.Equal(t, 5, cfg.Search.NearestCount)
	require.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "inspector.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: ":9090"
  read_timeout: 5s
database:
  driver: mysql
  dsn: "inspector:secret@tcp(db:3306)/inspector?parseTime=true"
scoring:
  poor_high_count: 3
search:
  default_radius_km: 25
`), 0o600))

	t.Setenv("INSPECTOR_LOG_LEVEL", "debug")
	t.Setenv("INSPECTOR_SEARCH_NEAREST_COUNT", "7")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.Address)
	require.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, "mysql", cfg.Database.Driver)
	require.Equal(t, 3, cfg.Scoring.PoorHighCount)
	require.Equal(t, 1, cfg.Scoring.FairHighCount)
	require.Equal(t, 25.0, cfg.Search.RadiusKm)
	require.Equal(t, 7, cfg.Search.NearestCount)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "123:abc", cfg.Telegram.Token)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("INSPECTOR_DATABASE_DRIVER", "postgres")
	_, err := Load(viper.New(), "")
	require.ErrorContains(t, err, "database.driver")
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	bad := *cfg
	bad.Detector.ConfidenceThreshold = 1.2
	require.Error(t, bad.Validate())

	bad = *cfg
	bad.Detector.ConfidenceThreshold = math.NaN()
	require.ErrorContains(t, bad.Validate(), "confidence_threshold")

	bad = *cfg
	bad.Search.RadiusKm = math.NaN()
	require.ErrorContains(t, bad.Validate(), "radii")

	bad = *cfg
	bad.Scoring.FairHighCount = 0
	require.ErrorContains(t, bad.Validate(), "scoring")

	bad = *cfg
	bad.Detector.Kind = "yolo"
	require.Error(t, bad.Validate())

	_, err = Load(viper.New(), "missing.yaml")
	require.Error(t, err)
}
