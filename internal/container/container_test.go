package container

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"subsea-inspector/config"
	"subsea-inspector/internal/infrastructure/storage"
)

func TestBuild(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load(viper.New(), "")
	require.NoError(t, err)

	db, err := storage.OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close(db) })

	c, err := Build(cfg, db, nil)
	require.NoError(t, err)
	require.NotNil(t, c.UserService)
	require.NotNil(t, c.InspectionService)
	require.NotNil(t, c.FieldService)
	require.Equal(t, cfg.Search, c.CableService.Defaults())

	cfg.Scoring.PoorHighCount = 0
	_, err = Build(cfg, db, nil)
	require.Error(t, err)
}
