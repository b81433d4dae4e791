package service

import (
	"context"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func Test_slackNotifier_SendDirectMessage(t *testing.T) {
	tests := []struct {
		name      string
		buildMock func(m allMocks)
		wantErr   bool
	}{
		{
			name: "Should open the direct channel and post the text",
			buildMock: func(m allMocks) {
				m.mockSlackClient.EXPECT().
					OpenConversationContext(gomock.Any(), &slack.OpenConversationParameters{Users: []string{"U123"}}).
					DoAndReturn(func(_ context.Context, _ *slack.OpenConversationParameters) (*slack.Channel, bool, bool, error) {
						channel := &slack.Channel{}
						channel.ID = "D123"
						return channel, false, false, nil
					}).Times(1)
				m.mockSlackClient.EXPECT().
					PostMessageContext(gomock.Any(), "D123", gomock.Any(), gomock.Any()).
					Return("D123", "1700000000.000100", nil).Times(1)
			},
		},
		{
			name: "Should return error when the conversation cannot be opened",
			buildMock: func(m allMocks) {
				m.mockSlackClient.EXPECT().
					OpenConversationContext(gomock.Any(), gomock.Any()).
					Return(nil, false, false, assert.AnError).Times(1)
			},
			wantErr: true,
		},
		{
			name: "Should return error when posting fails",
			buildMock: func(m allMocks) {
				channel := &slack.Channel{}
				channel.ID = "D123"
				m.mockSlackClient.EXPECT().
					OpenConversationContext(gomock.Any(), gomock.Any()).
					Return(channel, true, false, nil).Times(1)
				m.mockSlackClient.EXPECT().
					PostMessageContext(gomock.Any(), "D123", gomock.Any(), gomock.Any()).
					Return("", "", assert.AnError).Times(1)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ctrl := newServiceTestMock(t)
			defer ctrl.Finish()

			n := newSlackNotifier(m.mockSlackClient)

			if tt.buildMock != nil {
				tt.buildMock(m)
			}

			err := n.SendDirectMessage(context.Background(), "U123", "hello")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
