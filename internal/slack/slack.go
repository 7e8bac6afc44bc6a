package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/ricardonunez-io/logcopilot/internal/copilot"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// Slack rejects section text longer than 3000 characters.
const maxSectionText = 2900

type Config struct {
	BotToken  string
	ChannelID string
	// APIURL overrides the Slack endpoint, mostly for tests.
	APIURL string
}

func (c Config) Enabled() bool {
	return c.BotToken != "" && c.ChannelID != ""
}

type Notifier struct {
	api     *slack.Client
	channel string
}

func NewNotifier(cfg Config) *Notifier {
	var opts []slack.Option
	if cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.APIURL))
	}
	return &Notifier{
		api:     slack.New(cfg.BotToken, opts...),
		channel: cfg.ChannelID,
	}
}

func (n *Notifier) Notify(ctx context.Context, result copilot.AnalysisResult) error {
	_, msgTimestamp, err := n.api.PostMessageContext(
		ctx,
		n.channel,
		slack.MsgOptionBlocks(Blocks(result)...),
		slack.MsgOptionText(fmt.Sprintf("Log analysis for %s", result.Index), false),
	)
	if err != nil {
		log.Err(err).Str("channel", n.channel).Msg("Failed to post Slack message")
		return err
	}

	log.Info().
		Str("channel", n.channel).
		Str("timestamp", msgTimestamp).
		Msg("Analysis posted to Slack")
	return nil
}

// Blocks lays out an analysis as a Slack message.
func Blocks(result copilot.AnalysisResult) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(
			"plain_text",
			fmt.Sprintf("Log Analysis: %s", result.Index),
			false, false,
		)),
		slack.NewContextBlock("",
			slack.NewTextBlockObject("mrkdwn",
				fmt.Sprintf("*Query:* `%s`  *Lines analyzed:* %d", result.Filter, result.HitsUsed),
				false, false),
		),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn", truncate(result.Analysis, maxSectionText), false, false),
			nil, nil,
		),
	}

	if len(result.Patterns) > 0 {
		lines := make([]string, len(result.Patterns))
		for i, p := range result.Patterns {
			lines[i] = fmt.Sprintf("• %d× `%s`", p.Count, p.Template)
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn",
				truncate(fmt.Sprintf("*Top patterns:*\n%s", strings.Join(lines, "\n")), maxSectionText),
				false, false),
			nil, nil,
		))
	}

	return blocks
}

func truncate(s string, n int) string {
	if s == "" {
		return "_empty answer_"
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
