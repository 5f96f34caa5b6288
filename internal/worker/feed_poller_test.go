package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"buybox_console/internal/config"
	"buybox_console/internal/domain"
	"buybox_console/internal/domain/entity"
	"buybox_console/internal/infrastructure/pricingapi"
	"buybox_console/internal/worker"
	"buybox_console/pkg/errcodes"
)

type MockFeedChecker struct {
	mock.Mock
}

func (m *MockFeedChecker) CheckFeedStatus(ctx context.Context, p pricingapi.FeedCheckParams) (pricingapi.FeedCheck, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(pricingapi.FeedCheck), args.Error(1)
}

func pollerFixture(client *MockFeedChecker) *worker.FeedPoller {
	return worker.NewFeedPoller(client, config.Thresholds{
		FeedPollInterval: 30 * time.Second,
	})
}

func feedState(t *testing.T, poller *worker.FeedPoller, feedID string) entity.FeedStatus {
	t.Helper()

	for _, f := range poller.Statuses() {
		if f.FeedID == feedID {
			return f
		}
	}

	t.Fatalf("feed %s not tracked", feedID)
	return entity.FeedStatus{}
}

func TestFeedPollerLifecycle(t *testing.T) {
	rq := require.New(t)
	client := new(MockFeedChecker)
	poller := pollerFixture(client)

	poller.Track("feed-1", "r-1", "BOX-1", "B001")
	rq.Equal(entity.FeedSubmitted, feedState(t, poller, "feed-1").State)

	// First sweep: still processing.
	client.On("CheckFeedStatus", mock.Anything, mock.Anything).
		Return(pricingapi.FeedCheck{}, nil).Once()
	poller.CheckNow(context.Background())
	rq.Equal(entity.FeedProcessing, feedState(t, poller, "feed-1").State)

	// Second sweep: complete.
	client.On("CheckFeedStatus", mock.Anything, mock.Anything).
		Return(pricingapi.FeedCheck{IsComplete: true}, nil).Once()
	poller.CheckNow(context.Background())
	rq.Equal(entity.FeedCompleted, feedState(t, poller, "feed-1").State)

	// Terminal feeds are excluded from further sweeps but stay listed.
	poller.CheckNow(context.Background())
	client.AssertNumberOfCalls(t, "CheckFeedStatus", 2)
	rq.Len(poller.Statuses(), 1)
}

func TestFeedPollerCompletedWithIssues(t *testing.T) {
	rq := require.New(t)
	client := new(MockFeedChecker)
	poller := pollerFixture(client)

	poller.Track("feed-2", "r-2", "BOX-2", "B002")

	client.On("CheckFeedStatus", mock.Anything, mock.Anything).
		Return(pricingapi.FeedCheck{IsComplete: true, NeedsAttention: true}, nil).Once()
	poller.CheckNow(context.Background())

	state := feedState(t, poller, "feed-2").State
	rq.Equal(entity.FeedCompletedWithIssues, state)
	rq.True(state.Terminal())
}

func TestFeedPollerRetriesFailedChecks(t *testing.T) {
	rq := require.New(t)
	client := new(MockFeedChecker)
	poller := pollerFixture(client)

	poller.Track("feed-3", "r-3", "BOX-3", "B003")

	client.On("CheckFeedStatus", mock.Anything, mock.Anything).
		Return(pricingapi.FeedCheck{}, domain.NewError(errcodes.FeedCheckFailed, "upstream 500")).Once()
	poller.CheckNow(context.Background())
	rq.Equal(entity.FeedCheckFailed, feedState(t, poller, "feed-3").State)

	// A failed check is not terminal: the next sweep tries again.
	client.On("CheckFeedStatus", mock.Anything, mock.Anything).
		Return(pricingapi.FeedCheck{IsComplete: true}, nil).Once()
	poller.CheckNow(context.Background())
	rq.Equal(entity.FeedCompleted, feedState(t, poller, "feed-3").State)

	client.AssertExpectations(t)
}

func TestFeedPollerStartStop(t *testing.T) {
	rq := require.New(t)
	client := new(MockFeedChecker)
	poller := pollerFixture(client)

	rq.False(poller.IsRunning())
	rq.NoError(poller.Start(context.Background()))
	rq.True(poller.IsRunning())

	// A second start is a no-op, not an error; the poller keeps running.
	rq.NoError(poller.Start(context.Background()))
	rq.True(poller.IsRunning())

	poller.Stop()
	rq.False(poller.IsRunning())

	// Restart after a clean stop is allowed.
	rq.NoError(poller.Start(context.Background()))
	poller.Stop()
}
