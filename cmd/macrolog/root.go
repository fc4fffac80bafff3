package main

import (
	"time"

	"github.com/hyperengineering/macrolog"
	"github.com/spf13/cobra"
)

var (
	cfgDBPath     string
	cfgServerURL  string
	cfgAPIKey     string
	cfgConfigFile string
)

var rootCmd = &cobra.Command{
	Use:   "macrolog",
	Short: "macrolog - local-first nutrition tracking CLI",
	Long: `macrolog tracks meals, water, weight, mood and nutrition goals in a
local store and synchronizes with a Larder server in the background.

All data lives on this machine first; sync is best-effort and rate-limited.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDBPath, "db-path", "", "Path to local nutrition database (default: ~/.macrolog/nutrition.db)")
	rootCmd.PersistentFlags().StringVar(&cfgServerURL, "server-url", "", "URL of the Larder sync service")
	rootCmd.PersistentFlags().StringVar(&cfgAPIKey, "api-key", "", "API key for sync authentication")
	rootCmd.PersistentFlags().StringVar(&cfgConfigFile, "config", "", "Path to config file (default: ~/.macrolog/config.toml)")

	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(waterCmd)
	rootCmd.AddCommand(weightCmd)
	rootCmd.AddCommand(goalsCmd)
	rootCmd.AddCommand(moodCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers config file < environment < flags.
func loadConfig() (macrolog.Config, error) {
	cfg := macrolog.DefaultConfig()

	fileCfg, err := macrolog.LoadConfigFile(cfgConfigFile)
	if err != nil {
		return macrolog.Config{}, err
	}
	cfg = cfg.Merge(fileCfg)
	cfg = cfg.Merge(macrolog.ConfigFromEnv())
	cfg = cfg.Merge(macrolog.Config{
		LocalPath: cfgDBPath,
		ServerURL: cfgServerURL,
		APIKey:    cfgAPIKey,
	})

	return cfg, nil
}

func openClient() (*macrolog.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := macrolog.New(cfg)
	if err != nil {
		return nil, err
	}
	return client.WithNotifier(printNotifier{}), nil
}

// today returns the current calendar date key.
func today() string {
	return time.Now().Format(macrolog.DateLayout)
}

// resolveDate returns the flag value or today's date.
func resolveDate(flag string) string {
	if flag == "" {
		return today()
	}
	return flag
}
