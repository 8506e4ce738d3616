package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/dispatcher/internal/engine"
	"github.com/ppiankov/dispatcher/internal/logger"
	"github.com/ppiankov/dispatcher/internal/model"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0-dev"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dispatcher",
	Short: "Dispatcher - carrier lead and load decision engine",
	Long: `Dispatcher is a rule-based decision engine for a freight dispatch business.

It classifies commodities against compliance term tables, scores carrier
leads for qualification, ranks carriers for loads and simulates rate
negotiation within fixed bounds.

Every decision is deterministic and explained. Forbidden freight is never
matched, and review outcomes are never auto-booked.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setupRun,
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
		fmt.Printf("dispatcher %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.dispatcher/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".dispatcher"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := bindConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering config keys: %v\n", err)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// bindConfig registers every config key with its default so that
// DISPATCHER_* variables reach nested keys, e.g. DISPATCHER_STORE_BACKEND
// for store.backend.
func bindConfig() error {
	viper.SetEnvPrefix("DISPATCHER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	raw, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	setDefaults("", tree)

	// omitted from the defaults when empty
	viper.SetDefault("match.rules", []string{})
	return nil
}

func setDefaults(prefix string, tree map[string]any) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			setDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// loadConfig layers the config file and env over the built-in defaults
// and validates the result
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupRun installs the logger and tags the command context with a run ID
func setupRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		// config subcommands must still run against a broken file
		cfg = model.DefaultConfig()
	}

	logCfg := cfg.Log
	if verbose {
		logCfg.Level = "debug"
	}
	logger.Init(logCfg, os.Stderr)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, logger.RunIDKey, uuid.NewString())
	ctx = context.WithValue(ctx, logger.CommandKey, cmd.Name())
	cmd.SetContext(ctx)
	return nil
}

// newEngine loads the validated config and builds the engine
func newEngine(ctx context.Context) (*engine.Engine, *model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	eng, err := engine.New(cfg, engine.WithLogger(logger.WithContext(ctx)))
	if err != nil {
		return nil, nil, fmt.Errorf("create engine: %w", err)
	}
	return eng, cfg, nil
}
