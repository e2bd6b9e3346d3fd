package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"subsea-inspector/internal/container"
	"subsea-inspector/internal/infrastructure/seed"
	"subsea-inspector/internal/infrastructure/storage"
)

func newSeedCommand(rt *runtime) *cobra.Command {
	var (
		file   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load fields and cable routes from YAML (built-in Norwegian shelf dataset by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(file)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "dataset is valid: %d fields, %d cable routes\n", len(ds.Fields), len(ds.CableRoutes))
				return nil
			}

			db, err := rt.openDB()
			if err != nil {
				return err
			}
			defer func() { _ = storage.Close(db) }()

			services, err := container.Build(rt.cfg, db, rt.log)
			if err != nil {
				return err
			}
			sum, err := seed.Apply(cmd.Context(), ds, services.FieldService, storage.NewCableRepository(db))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d fields, %d cable routes\n", sum.Fields, sum.Routes)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML dataset to load")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the dataset without writing")
	return cmd
}

func loadDataset(path string) (*seed.Dataset, error) {
	if path == "" {
		return seed.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seed.Load(f)
}
