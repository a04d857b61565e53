package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/inspirepan/agent"
	"github.com/inspirepan/agent/internal/config"
	"github.com/inspirepan/agent/providers/anthropic"
	cc "github.com/inspirepan/agent/providers/chatcompletion"
	"github.com/inspirepan/agent/providers/openrouter"
)

type rootFlags struct {
	configPath string
	provider   string
	model      string
	logLevel   string
}

func rootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "agentloop",
		Short:         "Run tasks through a step-by-step tool-using agent",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "agentloop.yaml", "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&flags.provider, "provider", "", "model provider: openai, anthropic or openrouter")
	cmd.PersistentFlags().StringVar(&flags.model, "model", "", "model name")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(runCmd(flags), toolsCmd())
	return cmd
}

// loadConfig applies command-line overrides on top of the file and environment.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("provider") {
		cfg.Provider = flags.provider
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = flags.model
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, err := cfg.Level()
	if err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newProvider(cfg *config.Config) (agent.Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		opts := []cc.Option{cc.WithDebug(cfg.DebugPath)}
		if cfg.BaseURL != "" {
			opts = append(opts, cc.WithBaseURL(cfg.BaseURL))
		}
		if cfg.ResponseFormat != "" {
			opts = append(opts, cc.WithResponseFormat(cc.ResponseFormat(cfg.ResponseFormat)))
		}
		return cc.New(cfg.Model, opts...), nil
	case config.ProviderAnthropic:
		opts := []anthropic.Option{anthropic.WithDebug(cfg.DebugPath)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		return anthropic.New(cfg.Model, opts...), nil
	case config.ProviderOpenRouter:
		opts := []openrouter.Option{openrouter.WithDebug(cfg.DebugPath)}
		if cfg.BaseURL != "" {
			opts = append(opts, openrouter.WithBaseURL(cfg.BaseURL))
		}
		if cfg.ResponseFormat != "" {
			opts = append(opts, openrouter.WithResponseFormat(cc.ResponseFormat(cfg.ResponseFormat)))
		}
		return openrouter.New(cfg.Model, opts...), nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}
