package service

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain/contract"
)

type slackNotifier struct {
	slackClient contract.SlackClient
}

func newSlackNotifier(slackClient contract.SlackClient) *slackNotifier {
	return &slackNotifier{slackClient: slackClient}
}

// SendDirectMessage posts text into the bot's direct message channel with the user.
func (n *slackNotifier) SendDirectMessage(ctx context.Context, recipientID, text string) error {
	channel, _, _, err := n.slackClient.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{recipientID},
	})
	if err != nil {
		return fmt.Errorf("failed to open conversation with %s: %w", recipientID, err)
	}

	_, _, err = n.slackClient.PostMessageContext(ctx, channel.ID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAsUser(false),
	)
	if err != nil {
		return fmt.Errorf("failed to send Slack message: %w", err)
	}

	return nil
}
