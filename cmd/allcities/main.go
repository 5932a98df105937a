// Command allcities queries the GeoNames cities1000 dataset from the
// command line.
//
// Usage:
//
//	allcities query name=paris country_code=FR
//	allcities query "population=> 1000000" --json
//	allcities random country_code=JP
//	allcities near 48.8566 2.3522 --radius 10
//	allcities update --validate
//	allcities info
//
// Settings come from flags, ALLCITIES_* environment variables or an
// allcities.toml file in the working directory.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/andreiashu/allcities"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	v   = viper.New()
	log = zap.NewNop().Sugar()
)

var rootCmd = &cobra.Command{
	Use:   "allcities",
	Short: "Query every city of the world with a population of at least 1000",
	Long: `allcities loads the GeoNames cities1000 dataset into memory and filters it.

Conditions are field=value pairs and are ANDed together. Text fields match
case-insensitive substrings; numeric fields take a comparison:

  allcities query name=paris country_code=FR
  allcities query "population=> 1000000" timezone=europe

Fields: ` + strings.Join(allcities.Fields(), ", "),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		return initLogger(v.GetBool("json_logs"), v.GetBool("verbose"))
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./allcities.toml if present)")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding the snapshot")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(randomCmd)
	rootCmd.AddCommand(nearCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(infoCmd)
}

// initLogger builds the process logger and hands it to the library.
func initLogger(jsonOutput, verbose bool) error {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	var cfg zap.Config
	if jsonOutput {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	allcities.SetLogger(l)
	log = l.Sugar()
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}
