package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain/contract"
	"github.com/diegoclair/untis-cancellation-bot/mocks"
)

type allMocks struct {
	mockDataManager  *mocks.MockDataManager
	mockUserRepo     *mocks.MockUserRepo
	mockSnapshotRepo *mocks.MockSnapshotRepo
	mockNotifiedRepo *mocks.MockNotifiedRepo
	mockLeaseRepo    *mocks.MockLeaseRepo
	mockProvider     *mocks.MockTimetableProvider
	mockResolver     *mocks.MockSchoolResolver
	mockNotifier     *mocks.MockNotifier
	mockSlackClient  *mocks.MockSlackClient
}

func newServiceTestMock(t *testing.T) (m allMocks, ctrl *gomock.Controller) {
	t.Helper()

	ctrl = gomock.NewController(t)

	dm := mocks.NewMockDataManager(ctrl)

	userRepo := mocks.NewMockUserRepo(ctrl)
	dm.EXPECT().User().Return(userRepo).AnyTimes()

	snapshotRepo := mocks.NewMockSnapshotRepo(ctrl)
	dm.EXPECT().Snapshot().Return(snapshotRepo).AnyTimes()

	notifiedRepo := mocks.NewMockNotifiedRepo(ctrl)
	dm.EXPECT().Notified().Return(notifiedRepo).AnyTimes()

	leaseRepo := mocks.NewMockLeaseRepo(ctrl)
	dm.EXPECT().Lease().Return(leaseRepo).AnyTimes()

	// transactions run against the same mocks
	dm.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(contract.DataManager) error) error {
			return fn(dm)
		}).AnyTimes()

	m = allMocks{
		mockDataManager:  dm,
		mockUserRepo:     userRepo,
		mockSnapshotRepo: snapshotRepo,
		mockNotifiedRepo: notifiedRepo,
		mockLeaseRepo:    leaseRepo,
		mockProvider:     mocks.NewMockTimetableProvider(ctrl),
		mockResolver:     mocks.NewMockSchoolResolver(ctrl),
		mockNotifier:     mocks.NewMockNotifier(ctrl),
		mockSlackClient:  mocks.NewMockSlackClient(ctrl),
	}

	// validate service creation
	instance := NewInstance(dm, m.mockProvider, m.mockResolver, m.mockSlackClient, zap.NewNop(), Options{})
	require.NotNil(t, instance.Cancellation)
	require.NotNil(t, instance.Registration)

	return
}

// allowLeases grants every lease request, for tests about other behavior.
func (m allMocks) allowLeases() {
	m.mockLeaseRepo.EXPECT().Acquire(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()
	m.mockLeaseRepo.EXPECT().Release(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}
