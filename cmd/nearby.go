package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	app "subsea-inspector/internal/application"
	"subsea-inspector/internal/container"
	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/infrastructure/storage"
)

func newNearbyCommand(rt *runtime) *cobra.Command {
	var (
		lat, lon, radius float64
		count            int
	)

	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "Print fields within a radius of a point, or the nearest ones with --count",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rt.openDB()
			if err != nil {
				return err
			}
			defer func() { _ = storage.Close(db) }()

			services, err := container.Build(rt.cfg, db, rt.log)
			if err != nil {
				return err
			}

			center := entity.Location{Latitude: lat, Longitude: lon}
			var matches []app.FieldMatch
			if cmd.Flags().Changed("count") {
				matches, err = services.FieldService.Nearest(cmd.Context(), center, count)
			} else {
				if !cmd.Flags().Changed("radius") {
					radius = rt.cfg.Search.RadiusKm
				}
				matches, err = services.FieldService.Nearby(cmd.Context(), center, radius)
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FIELD\tNAME\tOPERATOR\tSTATUS\tDISTANCE_KM")
			for _, m := range matches {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\n", m.Field.ID, m.Field.Name, m.Field.Operator, m.Field.Status, m.DistanceKm)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in degrees")
	cmd.Flags().Float64Var(&radius, "radius", 0, "search radius in km (default from search.default_radius_km)")
	cmd.Flags().IntVar(&count, "count", 0, "return the N nearest fields instead of a radius search")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}
