package test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/diegoclair/untis-cancellation-bot/internal/handlers"
	"github.com/diegoclair/untis-cancellation-bot/mocks"
)

const SigningSecret = "test-signing-secret"

type ServiceMocks struct {
	RegistrationServiceMock *mocks.MockRegistrationService
}

// Webhook is a delayed reply captured instead of being posted to Slack.
type Webhook struct {
	URL string
	Msg *slack.WebhookMessage
}

func GetHandlerTest(t *testing.T) (m ServiceMocks, handler *handlers.SlackHandler, webhooks <-chan Webhook) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m = ServiceMocks{
		RegistrationServiceMock: mocks.NewMockRegistrationService(ctrl),
	}

	ch := make(chan Webhook, 4)
	poster := func(_ context.Context, url string, msg *slack.WebhookMessage) error {
		ch <- Webhook{URL: url, Msg: msg}
		return nil
	}

	handler = handlers.New(m.RegistrationServiceMock, SigningSecret, zap.NewNop(), poster)

	return m, handler, ch
}

// WaitWebhook returns the next captured delayed reply or fails the test.
func WaitWebhook(t *testing.T, webhooks <-chan Webhook) Webhook {
	t.Helper()

	select {
	case wh := <-webhooks:
		return wh
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no delayed reply was posted")
		return Webhook{}
	}
}

// CreateSlackRequest creates a properly signed Slack slash command request
func CreateSlackRequest(t *testing.T, text, userID, signingSecret string) *http.Request {
	t.Helper()

	form := url.Values{
		"token":        {"test-token"},
		"team_id":      {"T123456789"},
		"team_domain":  {"test-team"},
		"channel_id":   {"D123456789"},
		"channel_name": {"directmessage"},
		"user_id":      {userID},
		"user_name":    {"test-user"},
		"command":      {"/untis"},
		"text":         {text},
		"response_url": {"https://hooks.slack.com/commands/test"},
		"trigger_id":   {"test-trigger-id"},
	}

	body := form.Encode()

	req, err := http.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader(body))
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", generateSlackSignature(signingSecret, timestamp, body))

	return req
}

func generateSlackSignature(signingSecret, timestamp, body string) string {
	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	signature := hex.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("v0=%s", signature)
}

func CreateTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}
