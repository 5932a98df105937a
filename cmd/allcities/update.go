package main

import (
	"github.com/andreiashu/allcities"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download the latest GeoNames dump and replace the local snapshot",
	Long: `Download cities1000.zip, parse it and atomically replace the snapshot.

A failed update leaves the previous snapshot in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if url, _ := cmd.Flags().GetString("url"); url != "" {
			v.Set("update_url", url)
		}
		store := allcities.NewStore(storeOptions()...)

		spinner, _ := pterm.DefaultSpinner.Start("Downloading and parsing city data...")
		if err := store.Update(cmd.Context()); err != nil {
			spinner.Fail("Update failed")
			return err
		}
		spinner.Success("Snapshot updated")

		set := store.Cities()
		pterm.Info.Printfln("City count: %d", set.Len())
		pterm.Info.Printfln("Snapshot: %s", store.SnapshotPath())

		if validate, _ := cmd.Flags().GetBool("validate"); validate {
			if err := allcities.Validate(set, allcities.MinDumpCities); err != nil {
				return err
			}
			pterm.Success.Println("Validation passed")
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().String("url", "", "Archive URL (default: the GeoNames cities1000.zip export)")
	updateCmd.Flags().Bool("validate", false, "Check city count and known cities after updating")
}
