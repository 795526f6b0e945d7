package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/feedback/internal/client"
	"github.com/joescharf/feedback/internal/output"
)

// defaultBaseURL is the API root used when nothing else is configured.
const defaultBaseURL = "http://localhost:8080/api/v1"

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	logger    *slog.Logger
	apiClient *client.Client

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Submit and browse provider feedback",
	Long: `feedback is a client for the provider feedback API.
It submits reviews (member id, provider, 1-5 rating, optional comment),
lists them with an optional member filter, and shows a single review.

Run 'feedback browse' for the interactive terminal UI.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/feedback/config.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "API base URL (overrides api.base_url)")
	_ = viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("base-url"))
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FEEDBACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func setDefaults() { applyDefaults(viper.GetViper()) }

func applyDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", defaultBaseURL)
	v.SetDefault("api.timeout", "0s")
	v.SetDefault("log.level", "warn")
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	logger = newLogger(viper.GetString("log.level"), verbose)

	// The client is built lazily so config commands never need a reachable API.
	apiClient = nil
}

// newLogger builds the stderr slog logger. --verbose forces debug.
func newLogger(level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// getClient returns the shared API client, building it on first call.
func getClient() (*client.Client, error) {
	if apiClient != nil {
		return apiClient, nil
	}

	baseURL := strings.TrimSpace(viper.GetString("api.base_url"))
	if err := validateBaseURL(baseURL); err != nil {
		return nil, fmt.Errorf("api.base_url %w", err)
	}

	timeout := viper.GetDuration("api.timeout")
	if timeout < 0 {
		return nil, fmt.Errorf("api.timeout must not be negative: %s", timeout)
	}

	if logger == nil {
		logger = newLogger(viper.GetString("log.level"), verbose)
	}

	apiClient = client.New(baseURL,
		client.WithHTTPClient(&http.Client{Timeout: timeout}),
		client.WithLogger(logger),
	)
	ui.VerboseLog("Using API at %s", baseURL)
	return apiClient, nil
}
