package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ossyrian/shockex/internal/config"
	"github.com/ossyrian/shockex/internal/extract"
	"github.com/ossyrian/shockex/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shockex",
	Short: "Extract Director movies embedded in a projector executable",
	RunE:  run,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")

	// i/o
	rootCmd.Flags().StringP("input", "i", "", "path to projector executable (required)")
	rootCmd.Flags().StringP("output", "o", "", "directory to extract movies to (default: input path minus extension)")
	rootCmd.MarkFlagRequired("input")

	// extraction settings
	rootCmd.Flags().Int("workers", 4, "number of sub-files to process concurrently")

	// other opts
	rootCmd.Flags().String("log-level", "info", "log level (trace, debug, info, warn, error, fatal)")
	rootCmd.Flags().String("log-output-dir", "", "directory to write log files (if set, logs are written to both stdout and file)")
	rootCmd.Flags().Bool("dry-run", false, "decode and classify without writing output")

	viper.BindPFlag("input", rootCmd.Flags().Lookup("input"))
	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("workers", rootCmd.Flags().Lookup("workers"))
	viper.BindPFlag("log_level", rootCmd.Flags().Lookup("log-level"))
	viper.BindPFlag("log_output_dir", rootCmd.Flags().Lookup("log-output-dir"))
	viper.BindPFlag("dry_run", rootCmd.Flags().Lookup("dry-run"))
}

// initConfig reads in config file and environment variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "shockex"))
		}
		viper.AddConfigPath("/etc/shockex/shockex")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("SHOCKEX")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// run extracts every movie from the projector given on the command line
func run(cmd *cobra.Command, args []string) error {
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := logging.Setup(cfg.LogLevel, cfg.LogOutputDir); err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}

	host, err := os.ReadFile(cfg.InputFile)
	if err != nil {
		return fmt.Errorf("failed to read projector: %w", err)
	}

	slog.Info("scanning projector",
		"input", cfg.InputFile,
		"size", humanize.Bytes(uint64(len(host))),
	)

	extractor := extract.New(cfg, afero.NewOsFs())
	if err := extractor.Run(host); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
