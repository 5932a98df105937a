package main

import (
	"github.com/andreiashu/allcities"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show snapshot location, size and last update time",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := allcities.Open(cmd.Context(), storeOptions()...)
		if err != nil {
			return err
		}
		set := store.Cities()

		countries := make(map[string]struct{})
		for c := range set.All() {
			countries[c.CountryCode] = struct{}{}
		}

		updated := "unknown"
		if t := store.LastUpdate(); !t.IsZero() {
			updated = t.Local().Format("2006-01-02 15:04:05")
		}

		return renderTable(cmd.OutOrStdout(), pterm.DefaultTable.WithData(pterm.TableData{
			{"Snapshot", store.SnapshotPath()},
			{"Last update", updated},
			{"Cities", pterm.Sprint(set.Len())},
			{"Countries", pterm.Sprint(len(countries))},
		}))
	},
}
