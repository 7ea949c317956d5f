package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/config"
)

var (
	configPath string
	seedPath   string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "tat",
	Short: "Trivial Attendance Tracker – check-ins, requests and approvals",
	Long: `tat is an in-memory attendance desk: employees check in and out,
file leave and exception requests, and managers or HR approve them.
Run "tat shell" to start a session. Settings live in ~/.tat/config.json.`,
	SilenceUsage: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.tat/config.json)")
	rootCmd.PersistentFlags().StringVar(&seedPath, "seed", "", "YAML seed file replacing the demo data")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadConfig reads the config file and applies the persistent flags.
func loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath, false)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return config.Config{}, err
	}
	if seedPath != "" {
		cfg.SeedFile = seedPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}
