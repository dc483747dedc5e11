// internal/commands/root.go
package jtlsum

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/k0kubun/pp"
	"github.com/mwiater/jtlsum/internal/appconfig"
	"github.com/mwiater/jtlsum/internal/logging"
	"github.com/mwiater/jtlsum/internal/summary"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	loadedFile    string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd summarizes a JMeter result log when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "jtlsum <jtl_file>",
	Short: "jtlsum — per-transaction latency summary for JMeter JTL (CSV) logs",
	Long: `Read a JMeter JTL (CSV) result log, group the rows by label and write
count, min/median/mean/max, 90/95/99 percentiles and threshold breaches
(>100, >200, >300, >1000, >4000 ms) to <output-dir>/results_summary.csv.`,
	Args: cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		used, err := ensureConfigLoaded()
		if err != nil {
			return err
		}
		loadedFile = used

		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = loadedFile
		currentConfig = &cfg

		var console io.Writer
		if cfg.Debug {
			console = cmd.OutOrStdout()
		}
		if err := logging.Init(cfg.LogFilePath(), console); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if cfg.Debug {
			pp.Fprintln(cmd.ErrOrStderr(), cfg)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runSummary(cmd, args[0], GetConfig())
	},
}

func runSummary(cmd *cobra.Command, input string, cfg *appconfig.Config) error {
	if cfg == nil {
		cfg = &appconfig.Config{}
	}
	opts := summary.Options{
		InputPath:    input,
		OutputDir:    cfg.OutputDirPath(),
		AnalysisPath: cfg.AnalysisOutput,
		PromPath:     cfg.PromOutput,
		Print:        cfg.Print,
	}

	result, err := summary.Run(opts, cmd.OutOrStdout())
	var readErr *summary.ReadError
	var schemaErr *summary.SchemaError
	switch {
	case errors.As(err, &readErr):
		logging.LogEvent("[SUMMARY] read failed path=%s err=%v", readErr.Path, readErr.Err)
	case errors.As(err, &schemaErr):
		logging.LogEvent("[SUMMARY] schema rejected missing=%v found=%v", schemaErr.Missing(), schemaErr.Found)
	case err == nil:
		logging.LogEvent("[SUMMARY] done output=%s labels=%d records=%d dropped=%d",
			result.OutputPath, result.Labels, result.Records, result.Dropped)
	}
	return err
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		logging.Close()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (JSON or YAML)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")

	rootCmd.Flags().String("output-dir", appconfig.DefaultOutputDir, "directory to write results_summary.csv")
	rootCmd.Flags().Bool("print", false, "print the summary table to the terminal")
	rootCmd.Flags().String("analysis-output", "", "optional path to write the per-label stats as JSON")
	rootCmd.Flags().String("prom-output", "", "optional path to write the stats in Prometheus text format")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("logFile", rootCmd.PersistentFlags().Lookup("logFile"))
	_ = viper.BindPFlag("outputDir", rootCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("print", rootCmd.Flags().Lookup("print"))
	_ = viper.BindPFlag("analysisOutput", rootCmd.Flags().Lookup("analysis-output"))
	_ = viper.BindPFlag("promOutput", rootCmd.Flags().Lookup("prom-output"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		// SetConfigType ignores "", so an earlier explicit type would stick.
		if ext := strings.TrimPrefix(filepath.Ext(cfgFile), "."); ext != "" {
			viper.SetConfigType(ext)
		}
	}
	viper.SetEnvPrefix("JTLSUM")
	viper.AutomaticEnv()
}

// ensureConfigLoaded reads and validates the config file and returns its
// path. A missing file is not an error; flags and defaults apply.
func ensureConfigLoaded() (string, error) {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	used := viper.ConfigFileUsed()
	if err := appconfig.ValidateFile(used); err != nil {
		return "", err
	}
	return used, nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
