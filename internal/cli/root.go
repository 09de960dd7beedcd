package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/riskline/internal/logging"
	"github.com/ppiankov/riskline/internal/model"
)

// version is overridden at build time with -ldflags "-X .../internal/cli.version=..."
var version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "riskline",
	Short: "Riskline - property inspection risk and capital planning engine",
	Long: `Riskline turns the answers captured during a property inspection into
prioritized findings, an overall risk level, a capital expenditure range
and a short set of decision signals.

Rules, profiles and overrides are plain YAML documents. The built-in
defaults are embedded; point --rules, --profiles or --overrides at your
own copies to change behavior without rebuilding.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "riskline %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.riskline/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

// initConfig points viper at the config file
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".riskline"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig resolves defaults, then the config file, then RISKLINE_* variables.
// Command flags are applied by the caller.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)
	applyAPIKey(&cfg.LLM)
	return cfg, nil
}

// envViper sees only RISKLINE_* variables; RISKLINE_LLM_PROVIDER maps to llm.provider
func envViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("RISKLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// applyEnv overlays the keys set in the environment
func applyEnv(cfg *model.Config) {
	v := envViper()

	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	str("documents.rules", &cfg.Documents.Rules)
	str("documents.profiles", &cfg.Documents.Profiles)
	str("documents.overrides", &cfg.Documents.Overrides)
	str("cache.dir", &cfg.Cache.Dir)
	str("output.dir", &cfg.Output.Dir)
	str("logger.level", &cfg.Logger.Level)
	str("llm.provider", &cfg.LLM.Provider)
	str("llm.model", &cfg.LLM.Model)
	str("llm.base_url", &cfg.LLM.BaseURL)
	str("llm.http_proxy", &cfg.LLM.HTTPProxy)
	str("llm.https_proxy", &cfg.LLM.HTTPSProxy)
	str("llm.no_proxy", &cfg.LLM.NoProxy)

	if v.IsSet("cache.enabled") {
		cfg.Cache.Enabled = v.GetBool("cache.enabled")
	}
	if v.IsSet("concurrency.workers") {
		cfg.Concurrency.Workers = v.GetInt("concurrency.workers")
	}
	if v.IsSet("http.timeout") {
		cfg.HTTP.Timeout = v.GetDuration("http.timeout")
	}
	if v.IsSet("logger.json_format") {
		cfg.Logger.JSONFormat = v.GetBool("logger.json_format")
	}
	if v.IsSet("output.verbose") {
		cfg.Output.Verbose = v.GetBool("output.verbose")
	}
}

// applyAPIKey reads the provider key from the provider's usual variable
func applyAPIKey(lc *model.LLMConfig) {
	switch strings.ToLower(lc.Provider) {
	case "openai":
		lc.APIKey = os.Getenv("OPENAI_API_KEY")
	case "anthropic", "claude":
		lc.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case "ollama":
		if base := os.Getenv("OLLAMA_BASE_URL"); base != "" && lc.BaseURL == "" {
			lc.BaseURL = base
		}
	}
}

// checkAPIKey fails early when a hosted provider has no key
func checkAPIKey(lc model.LLMConfig) error {
	switch strings.ToLower(lc.Provider) {
	case "openai":
		if lc.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if lc.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	}
	return nil
}

func newLogger(cfg *model.Config) hclog.Logger {
	if cfg.Output.Verbose && cfg.Logger.Level == "INFO" {
		cfg.Logger.Level = "DEBUG"
	}
	return logging.NewLogger(cfg, "riskline")
}
