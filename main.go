package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"linkedin_post_generator/config"
	"linkedin_post_generator/filter"
	"linkedin_post_generator/generator"
	"linkedin_post_generator/server"
)

var (
	envFile    string
	configFile string
	provider   string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:     "linkedin-posts",
	Short:   "Generate LinkedIn post candidates with a hosted LLM",
	Version: server.Version,
	Long: `Runs a fixed prompt chain against the configured model:
  1. Outline: a short content plan for the requested posts
  2. Generate: the posts themselves, in request order
  3. Filter: blocklist and length checks, one regeneration for failures
  4. Hashtags: a tag set per post`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if debug, _ := strconv.ParseBool(os.Getenv("DEBUG")); verbose || debug {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to a .env file (default: ./.env when present)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional YAML config file")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "model provider: gemini, openai, deepseek, anthropic or mock")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")

	rootCmd.AddCommand(serveCmd, generateCmd, healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	return config.Load(config.Options{EnvFile: envFile, ConfigFile: configFile, Provider: provider})
}

// buildAgent wires the model client, the content filter and the pipeline
// from cfg.
func buildAgent(cfg config.Config) (*generator.Agent, error) {
	llm, err := generator.NewLLM(generator.LLMSettings{
		Provider:        cfg.LLM.Provider,
		Model:           cfg.LLM.Model,
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Temperature:     cfg.LLM.Temperature,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}
	client, err := generator.NewClient(llm, cfg.LLM.Provider, cfg.LLM.Model, logger.Named("llm"))
	if err != nil {
		return nil, err
	}
	return generator.NewAgent(client, generator.Options{
		Filter:            filter.New(cfg.Content.Blocklist, cfg.Content.MinLength, cfg.Content.MaxLength),
		Lengths:           generator.Lengths{Min: cfg.Content.TargetMinLength, Max: cfg.Content.TargetMaxLength},
		RegenerateFlagged: cfg.Content.RegenerateFlagged,
	}, logger.Named("agent"))
}
