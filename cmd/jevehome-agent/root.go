package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tjmaxx/jevehome-agent/agent"
	"github.com/tjmaxx/jevehome-agent/config"
	"github.com/tjmaxx/jevehome-agent/llm"
	"github.com/tjmaxx/jevehome-agent/logger"
	"github.com/tjmaxx/jevehome-agent/mcpclient"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "jevehome-agent",
	Short: "Tool-orchestrating assistant agent",
	Long: `jevehome-agent answers questions by orchestrating a function-calling
model over built-in tools and connected MCP tool providers.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(toolsCmd)
}

// setup builds the shared pieces: settings, logger, model, agent, and the
// provider manager with all configured providers connected.
func setup(ctx context.Context) (*agent.Agent, *mcpclient.Manager, logger.Logger, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if logLevel != "" {
		settings.Log.Level = logLevel
	}

	log, err := logger.New(logger.Config{
		Level:  settings.Log.Level,
		Format: settings.Log.Format,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	apiKey := settings.LLM.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	model, err := llm.NewGeminiModel(ctx, llm.GeminiConfig{
		APIKey:  apiKey,
		ModelID: settings.LLM.Model,
		Logger:  log,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	a := agent.New(model,
		agent.WithLogger(log),
		agent.WithHistory(agent.NewMemoryHistory()),
		agent.WithMaxSteps(settings.Agent.MaxSteps),
		agent.WithMaxRetries(settings.Agent.MaxRetries),
		agent.WithHistoryWindow(settings.Agent.HistoryWindow),
		agent.WithToolTimeout(settings.Agent.ToolTimeout),
		agent.WithTemperature(settings.Agent.Temperature),
		agent.WithRules(settings.Agent.Rules),
	)

	manager := mcpclient.NewManager(a.Registry(), log)
	for _, provider := range settings.Providers {
		if err := manager.Connect(ctx, provider); err != nil {
			log.Warn("skipping provider",
				logger.String("provider", provider.Name),
				logger.Err(err))
		}
	}

	return a, manager, log, nil
}

func printErr(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
