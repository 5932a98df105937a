package main

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/andreiashu/allcities"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var nearCmd = &cobra.Command{
	Use:   "near LAT LNG [field=value ...]",
	Short: "List cities within a radius of a point, closest first",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil || lat < -90 || lat > 90 {
			return errors.Newf("invalid latitude %q", args[0])
		}
		lng, err := strconv.ParseFloat(args[1], 64)
		if err != nil || lng < -180 || lng > 180 {
			return errors.Newf("invalid longitude %q", args[1])
		}

		set, err := filteredCities(cmd, args[2:])
		if err != nil {
			return err
		}

		radius, _ := cmd.Flags().GetFloat64("radius")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		if radius <= 0 {
			city, ok := set.Nearest(lat, lng)
			if !ok {
				return allcities.ErrEmptySet
			}
			return printCity(cmd.OutOrStdout(), city, asJSON)
		}

		cities := set.Near(lat, lng, radius).Slice()
		slices.SortFunc(cities, func(a, b allcities.City) int {
			return cmp.Compare(a.DistanceKm(lat, lng), b.DistanceKm(lat, lng))
		})
		return printCities(cmd.OutOrStdout(), cities, limit, asJSON)
	},
}

func init() {
	nearCmd.Flags().Float64P("radius", "r", 25, "Search radius in kilometres (0 for the single nearest city)")
	nearCmd.Flags().IntP("limit", "n", 20, "Maximum number of cities to print (0 for all)")
	nearCmd.Flags().BoolP("json", "j", false, "Output cities as JSON")
}
