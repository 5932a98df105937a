package main

import (
	"github.com/andreiashu/allcities"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [field=value ...]",
	Short: "List the cities matching every condition",
	Example: `  allcities query name=tokyo
  allcities query country_code=US "population=>= 1000000"
  allcities query alternatenames=edo --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := filteredCities(cmd, args)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")
		return printCities(cmd.OutOrStdout(), set.Sorted(), limit, asJSON)
	},
}

var randomCmd = &cobra.Command{
	Use:   "random [field=value ...]",
	Short: "Pick one random city, optionally among those matching the conditions",
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := filteredCities(cmd, args)
		if err != nil {
			return err
		}
		city, err := set.Random()
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		return printCity(cmd.OutOrStdout(), city, asJSON)
	},
}

func init() {
	queryCmd.Flags().IntP("limit", "n", 50, "Maximum number of cities to print (0 for all)")
	queryCmd.Flags().BoolP("json", "j", false, "Output cities as JSON")
	randomCmd.Flags().BoolP("json", "j", false, "Output the city as JSON")
}

// filteredCities opens the store and applies the conditions in args.
func filteredCities(cmd *cobra.Command, args []string) (*allcities.CitySet, error) {
	conds := make([]allcities.Condition, 0, len(args))
	for _, arg := range args {
		cond, err := allcities.ParseCondition(arg)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}

	store, err := allcities.Open(cmd.Context(), storeOptions()...)
	if err != nil {
		return nil, err
	}
	return store.Cities().Filter(conds...)
}
