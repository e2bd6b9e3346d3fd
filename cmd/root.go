package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"subsea-inspector/config"
	"subsea-inspector/internal/infrastructure/storage"
	"subsea-inspector/internal/logging"
)

// runtime общее состояние команд: конфигурация и логгер.
type runtime struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	log        *slog.Logger
}

func newRootCommand() *cobra.Command {
	rt := &runtime{v: viper.New()}

	root := &cobra.Command{
		Use:           "subsea-inspector",
		Short:         "Subsea infrastructure inspection service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&rt.configPath, "config", "", "path to config file (default ./config.yaml if present)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("db-driver", "", "database driver: sqlite or mysql")
	flags.String("db-dsn", "", "database DSN")
	mustBind(rt.v, "log.level", root, "log-level")
	mustBind(rt.v, "database.driver", root, "db-driver")
	mustBind(rt.v, "database.dsn", root, "db-dsn")

	root.AddCommand(
		newServeCommand(rt),
		newSeedCommand(rt),
		newScoreCommand(rt),
		newNearbyCommand(rt),
	)
	return root
}

func (rt *runtime) init() error {
	cfg, err := config.Load(rt.v, rt.configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	rt.cfg = cfg
	rt.log = log
	return nil
}

func (rt *runtime) openDB() (*gorm.DB, error) {
	db, err := storage.Open(rt.cfg.Database.Driver, rt.cfg.Database.DSN, rt.log)
	if err != nil {
		return nil, err
	}
	rt.log.Debug("database opened", "driver", rt.cfg.Database.Driver)
	return db, nil
}

func mustBind(v *viper.Viper, key string, cmd *cobra.Command, flag string) {
	f := cmd.PersistentFlags().Lookup(flag)
	if f == nil {
		f = cmd.Flags().Lookup(flag)
	}
	if err := v.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}
