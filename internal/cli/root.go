package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ricardonunez-io/logcopilot/internal/analyzer"
	"github.com/ricardonunez-io/logcopilot/internal/config"
	"github.com/ricardonunez-io/logcopilot/internal/copilot"
	"github.com/ricardonunez-io/logcopilot/internal/slack"
	"github.com/ricardonunez-io/logcopilot/internal/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "logcopilot",
	Short: "Log Copilot: index raw logs and ask a language model what went wrong",
	Long: `Log Copilot stores uploaded log files line by line in OpenSearch,
retrieves the most recent lines matching a query and asks a language model
for a troubleshooting summary of them.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file (environment variables take precedence)")
	rootCmd.AddCommand(serveCmd, ingestCmd, analyzeCmd, pullCmd)
}

type app struct {
	cfg     config.Config
	service *copilot.Service
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(cfg.Level())

	searchStore, err := store.NewOpenSearch(store.OpenSearchConfig{
		Addresses: cfg.OpenSearch.Addresses(),
		Username:  cfg.OpenSearch.Username,
		Password:  cfg.OpenSearch.Password,
		Insecure:  cfg.OpenSearch.Insecure,
	})
	if err != nil {
		return nil, err
	}

	reasoner, err := analyzer.NewReasoner(analyzer.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
	})
	if err != nil {
		return nil, err
	}

	var notifier copilot.Notifier
	slackCfg := slack.Config{BotToken: cfg.Slack.BotToken, ChannelID: cfg.Slack.ChannelID}
	if slackCfg.Enabled() {
		notifier = slack.NewNotifier(slackCfg)
	}

	log.Info().
		Strs("opensearch", cfg.OpenSearch.Addresses()).
		Str("provider", cfg.LLM.Provider).
		Str("model", cfg.LLM.Model).
		Bool("slack", notifier != nil).
		Msg("Configuration loaded")

	return &app{
		cfg:     cfg,
		service: copilot.New(searchStore, reasoner, notifier),
	}, nil
}
