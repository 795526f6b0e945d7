package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "feedback"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage feedback configuration.

Running bare 'feedback config' is the same as 'feedback config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# feedback configuration
# See: feedback config show (for effective values and sources)

# Feedback API
api:
  # Root of the REST API; reviews live under <base_url>/feedback
  base_url: "{{ .BaseURL }}"

  # Request timeout, e.g. "10s". "0s" waits indefinitely.
  timeout: "{{ .Timeout }}"

# Logging
log:
  # One of debug, info, warn, error (--verbose forces debug)
  level: "{{ .LogLevel }}"
`

type configTemplateData struct {
	BaseURL  string
	Timeout  string
	LogLevel string
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		BaseURL:  viper.GetString("api.base_url"),
		Timeout:  viper.GetDuration("api.timeout").String(),
		LogLevel: viper.GetString("log.level"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	for _, p := range checkConfig(viper.GetViper()) {
		ui.Warning("%s", p)
	}
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key    string
	EnvVar string
	Flag   string
}

var configKeys = []configKeyInfo{
	{Key: "api.base_url", EnvVar: "FEEDBACK_API_BASE_URL", Flag: "base-url"},
	{Key: "api.timeout", EnvVar: "FEEDBACK_API_TIMEOUT"},
	{Key: "log.level", EnvVar: "FEEDBACK_LOG_LEVEL"},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		source := detectSource(k.Key, k.EnvVar, fileValues)
		if k.Flag != "" && rootCmd.PersistentFlags().Changed(k.Flag) {
			source = fmt.Sprintf("(flag: --%s)", k.Flag)
		}
		fmt.Fprintf(ui.Out, "  %-22s %v  %s\n", k.Key, val, source)
	}
	fmt.Fprintln(ui.Out)

	for _, key := range unknownKeys(fileValues) {
		ui.Warning("%s: unknown key in config file, ignored", key)
	}
	problems := checkConfig(viper.GetViper())
	for _, p := range problems {
		ui.Warning("%s", p)
	}
	if len(problems) == 0 {
		ui.Success("Configuration is valid")
	}
	return nil
}

// configProblem is a setting the client or logger would reject or ignore.
type configProblem struct {
	Key    string
	Detail string
}

func (p configProblem) String() string { return p.Key + ": " + p.Detail }

// checkConfig reports every effective setting that cannot be used as is.
func checkConfig(v *viper.Viper) []configProblem {
	var problems []configProblem

	if err := validateBaseURL(v.GetString("api.base_url")); err != nil {
		problems = append(problems, configProblem{"api.base_url", err.Error()})
	}

	raw := strings.TrimSpace(v.GetString("api.timeout"))
	if d, err := time.ParseDuration(raw); err != nil {
		problems = append(problems, configProblem{"api.timeout", fmt.Sprintf("%q is not a duration such as 10s", raw)})
	} else if d < 0 {
		problems = append(problems, configProblem{"api.timeout", "must not be negative"})
	}

	var lvl slog.Level
	if level := v.GetString("log.level"); lvl.UnmarshalText([]byte(level)) != nil {
		problems = append(problems, configProblem{"log.level", fmt.Sprintf("unknown level %q, warn is used", level)})
	}

	return problems
}

// validateBaseURL accepts an absolute http or https URL with a host.
func validateBaseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("is empty (set it in config or FEEDBACK_API_BASE_URL)")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not a valid http(s) URL", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("%q must not carry a query or fragment", raw)
	}
	return nil
}

// unknownKeys lists file keys no feedback setting reads, sorted.
func unknownKeys(fileValues map[string]bool) []string {
	known := make(map[string]bool, len(configKeys))
	for _, k := range configKeys {
		known[k.Key] = true
	}
	var out []string
	for key := range fileValues {
		if !known[key] {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set; set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'feedback config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	if err := editCmd.Run(); err != nil {
		return err
	}
	return checkConfigFile(cfgPath)
}

// checkConfigFile warns about problems in the file alone, on top of the
// defaults, so env overrides do not hide a bad edit.
func checkConfigFile(path string) error {
	v := viper.New()
	applyDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config file %s does not parse: %w", path, err)
	}

	for _, key := range unknownKeys(readConfigFileValues(path)) {
		ui.Warning("%s: unknown key in config file, ignored", key)
	}
	problems := checkConfig(v)
	for _, p := range problems {
		ui.Warning("%s", p)
	}
	if len(problems) == 0 {
		ui.Success("Config file is valid: %s", path)
	}
	return nil
}
