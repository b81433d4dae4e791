package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain"
	"github.com/diegoclair/untis-cancellation-bot/internal/domain/contract"
	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
	slackcmd "github.com/diegoclair/untis-cancellation-bot/internal/slack"
)

const registrationTimeout = 30 * time.Second

// WebhookPoster delivers a delayed reply to a slash command's response_url.
type WebhookPoster func(ctx context.Context, url string, msg *slack.WebhookMessage) error

type SlackHandler struct {
	registration  contract.RegistrationService
	signingSecret string
	log           *zap.Logger
	postWebhook   WebhookPoster
}

func New(registration contract.RegistrationService, signingSecret string, log *zap.Logger, postWebhook WebhookPoster) *SlackHandler {
	if postWebhook == nil {
		postWebhook = slack.PostWebhookContext
	}
	return &SlackHandler{
		registration:  registration,
		signingSecret: signingSecret,
		log:           log,
		postWebhook:   postWebhook,
	}
}

func (h *SlackHandler) HandleSlashCommand(w http.ResponseWriter, r *http.Request) {
	// Verify request from Slack
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if _, err := verifier.Write(body); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := verifier.Ensure(); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	s, err := slack.SlashCommandParse(r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	cmd, err := slackcmd.ParseCommand(s.Text)
	if err != nil {
		h.respond(w, h.createErrorResponse(err.Error()))
		return
	}

	h.respond(w, h.handleCommand(cmd, &s))
}

func (h *SlackHandler) handleCommand(cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	switch cmd.Type {
	case slackcmd.CmdLogin:
		return h.handleLogin(cmd, slashCmd)
	case slackcmd.CmdQR:
		return h.handleQR(cmd, slashCmd)
	case slackcmd.CmdPing:
		return &slack.Msg{ResponseType: slack.ResponseTypeEphemeral, Text: "Pong!"}
	case slackcmd.CmdHelp:
		return h.handleHelp()
	default:
		return h.createErrorResponse("Unknown command")
	}
}

func (h *SlackHandler) handleLogin(cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	args, err := cmd.Login()
	if err != nil {
		return h.createErrorResponse(err.Error())
	}

	h.log.Info("login requested",
		zap.String("slack_user_id", slashCmd.UserID),
		zap.String("school", args.SchoolName),
	)

	return h.registerAsync(slashCmd.ResponseURL, entity.Registration{
		SlackUserID: slashCmd.UserID,
		Username:    args.Username,
		Password:    args.Password,
		SchoolName:  args.SchoolName,
	})
}

func (h *SlackHandler) handleQR(cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	data, err := cmd.QRData()
	if err != nil {
		return h.createErrorResponse(err.Error())
	}

	h.log.Info("qr login requested", zap.String("slack_user_id", slashCmd.UserID))

	return h.registerAsync(slashCmd.ResponseURL, entity.Registration{
		SlackUserID: slashCmd.UserID,
		QRData:      data,
	})
}

// registerAsync acknowledges the command right away and posts the outcome to
// responseURL once untis has answered; Slack expects a reply within 3s.
func (h *SlackHandler) registerAsync(responseURL string, reg entity.Registration) *slack.Msg {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), registrationTimeout)
		defer cancel()

		reply := &slack.WebhookMessage{
			ResponseType:    slack.ResponseTypeEphemeral,
			ReplaceOriginal: true,
			Text:            "✅ Successfully logged in!",
		}

		if _, err := h.registration.Register(ctx, reg); err != nil {
			h.log.Warn("registration rejected", zap.String("slack_user_id", reg.SlackUserID), zap.Error(err))
			reply.Text = fmt.Sprintf("❌ %s", domain.RegistrationReason(err))
		}

		if err := h.postWebhook(ctx, responseURL, reply); err != nil {
			h.log.Error("failed to post registration reply", zap.String("slack_user_id", reg.SlackUserID), zap.Error(err))
		}
	}()

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         "⏳ Checking your untis credentials...",
	}
}

func (h *SlackHandler) handleHelp() *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         slackcmd.GetHelpText(),
	}
}

func (h *SlackHandler) createErrorResponse(message string) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("❌ %s", message),
	}
}

func (h *SlackHandler) respond(w http.ResponseWriter, msg *slack.Msg) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		h.log.Error("failed to encode slack response", zap.Error(err))
	}
}
