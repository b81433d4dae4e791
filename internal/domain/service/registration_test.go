package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain"
	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
)

const testQRData = "untis://setschool?url=korfu.webuntis.com&school=demo-school&user=jdoe&key=JBSWY3DPEHPK3PXP"

func Test_registrationService_Register(t *testing.T) {
	passwordReg := entity.Registration{
		SlackUserID: "U123",
		Username:    "jdoe",
		Password:    "hunter2",
		SchoolName:  "Demo School",
	}
	school := &entity.School{LoginName: "demo-school", Server: "korfu.webuntis.com"}

	tests := []struct {
		name      string
		reg       entity.Registration
		buildMock func(m allMocks)
		wantKind  entity.CredentialKind
		wantErr   error
	}{
		{
			name: "Should register a user with a password",
			reg:  passwordReg,
			buildMock: func(m allMocks) {
				m.mockUserRepo.EXPECT().GetByUsername(gomock.Any(), "jdoe").Return(nil, nil).Times(2)
				m.mockResolver.EXPECT().ResolveSchool(gomock.Any(), "Demo School").Return(school, nil).Times(1)
				m.mockProvider.EXPECT().CheckCredentials(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u *entity.User) bool {
						require.Equal(t, "demo-school", u.SchoolName)
						require.Equal(t, "korfu.webuntis.com", u.Server)
						return true
					}).Times(1)
				m.mockUserRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u *entity.User) error {
						require.NotEmpty(t, u.ID)
						require.Equal(t, "U123", u.SlackUserID)
						require.Equal(t, &entity.PasswordCredential{User: "jdoe", Password: "hunter2"}, u.Credential)
						return nil
					}).Times(1)
			},
			wantKind: entity.CredentialPassword,
		},
		{
			name: "Should register a user with a qr code without searching the school",
			reg:  entity.Registration{SlackUserID: "U123", QRData: testQRData},
			buildMock: func(m allMocks) {
				m.mockUserRepo.EXPECT().GetByUsername(gomock.Any(), "jdoe").Return(nil, nil).Times(2)
				m.mockResolver.EXPECT().ResolveSchool(gomock.Any(), gomock.Any()).Times(0)
				m.mockProvider.EXPECT().CheckCredentials(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u *entity.User) bool {
						require.Equal(t, "demo-school", u.SchoolName)
						require.Equal(t, "korfu.webuntis.com", u.Server)
						return true
					}).Times(1)
				m.mockUserRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)
			},
			wantKind: entity.CredentialQR,
		},
		{
			name:    "Should reject incomplete credentials",
			reg:     entity.Registration{SlackUserID: "U123", Username: "jdoe"},
			wantErr: domain.ErrInvalidCredential,
		},
		{
			name:    "Should reject both credential forms at once",
			reg:     entity.Registration{SlackUserID: "U123", Username: "jdoe", Password: "x", SchoolName: "Demo", QRData: testQRData},
			wantErr: domain.ErrInvalidCredential,
		},
		{
			name:    "Should reject a malformed qr code",
			reg:     entity.Registration{SlackUserID: "U123", QRData: "https://example.com"},
			wantErr: domain.ErrInvalidQR,
		},
		{
			name: "Should return already registered for a known username",
			reg:  passwordReg,
			buildMock: func(m allMocks) {
				m.mockUserRepo.EXPECT().GetByUsername(gomock.Any(), "jdoe").Return(testUser("1"), nil).Times(1)
			},
			wantErr: domain.ErrAlreadyRegistered,
		},
		{
			name: "Should return no school found",
			reg:  passwordReg,
			buildMock: func(m allMocks) {
				m.mockUserRepo.EXPECT().GetByUsername(gomock.Any(), "jdoe").Return(nil, nil).Times(1)
				m.mockResolver.EXPECT().ResolveSchool(gomock.Any(), "Demo School").
					Return(nil, fmt.Errorf("%w: Demo School", domain.ErrNoSchoolFound)).Times(1)
			},
			wantErr: domain.ErrNoSchoolFound,
		},
		{
			name: "Should return bad credentials when the login fails",
			reg:  passwordReg,
			buildMock: func(m allMocks) {
				m.mockUserRepo.EXPECT().GetByUsername(gomock.Any(), "jdoe").Return(nil, nil).Times(1)
				m.mockResolver.EXPECT().ResolveSchool(gomock.Any(), "Demo School").Return(school, nil).Times(1)
				m.mockProvider.EXPECT().CheckCredentials(gomock.Any(), gomock.Any()).Return(false).Times(1)
			},
			wantErr: domain.ErrBadCredentials,
		},
		{
			name: "Should return already registered when a concurrent registration wins",
			reg:  passwordReg,
			buildMock: func(m allMocks) {
				gomock.InOrder(
					m.mockUserRepo.EXPECT().GetByUsername(gomock.Any(), "jdoe").Return(nil, nil),
					m.mockUserRepo.EXPECT().GetByUsername(gomock.Any(), "jdoe").Return(testUser("2"), nil),
				)
				m.mockResolver.EXPECT().ResolveSchool(gomock.Any(), "Demo School").Return(school, nil).Times(1)
				m.mockProvider.EXPECT().CheckCredentials(gomock.Any(), gomock.Any()).Return(true).Times(1)
			},
			wantErr: domain.ErrAlreadyRegistered,
		},
		{
			name: "Should map a unique violation on insert to already registered",
			reg:  passwordReg,
			buildMock: func(m allMocks) {
				m.mockUserRepo.EXPECT().GetByUsername(gomock.Any(), "jdoe").Return(nil, nil).Times(2)
				m.mockResolver.EXPECT().ResolveSchool(gomock.Any(), "Demo School").Return(school, nil).Times(1)
				m.mockProvider.EXPECT().CheckCredentials(gomock.Any(), gomock.Any()).Return(true).Times(1)
				m.mockUserRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("%w: jdoe", domain.ErrDuplicateUser)).Times(1)
			},
			wantErr: domain.ErrAlreadyRegistered,
		},
		{
			name: "Should return the store error when the lookup fails",
			reg:  passwordReg,
			buildMock: func(m allMocks) {
				m.mockUserRepo.EXPECT().GetByUsername(gomock.Any(), "jdoe").
					Return(nil, fmt.Errorf("%w: closed", domain.ErrStore)).Times(1)
			},
			wantErr: domain.ErrStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ctrl := newServiceTestMock(t)
			defer ctrl.Finish()

			s := newRegistration(m.mockDataManager, m.mockProvider, m.mockResolver, zap.NewNop())

			if tt.buildMock != nil {
				tt.buildMock(m)
			}

			got, err := s.Register(context.Background(), tt.reg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantKind, got.Credential.Kind())
			assert.Equal(t, "jdoe", got.Username())
			assert.Equal(t, tt.reg.SlackUserID, got.SlackUserID)
		})
	}
}
