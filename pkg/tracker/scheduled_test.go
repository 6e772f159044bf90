package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/chainpilot/chainpilot/pkg/models"
	"github.com/chainpilot/chainpilot/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swapSuccess() *models.Execution {
	return testutil.CreateTestExecution(
		testutil.WithStatus(models.ExecutionStatusSuccess),
		testutil.WithNodeExecution(models.NodeTypeSwap, models.ExecutionStatusSuccess, nil),
	)
}

func TestTrackScheduledGoalReached(t *testing.T) {
	t.Parallel()

	b := &scriptedBackend{lists: [][]*models.Execution{
		{},
		{swapSuccess()},
	}}
	n := &recordingNotifier{}

	newTestTracker(b, n).TrackScheduled(context.Background(),
		"user-1", "wf-1", "tt-1", "chat-1", time.Second)

	messages := n.sent()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "completed successfully")
	assert.Equal(t, []string{"tt-1"}, b.cancelledTriggers(), "the recurring trigger is cancelled once the goal is reached")
}

func TestTrackScheduledWindowTimeout(t *testing.T) {
	t.Parallel()

	b := &scriptedBackend{lists: [][]*models.Execution{{}}}
	n := &recordingNotifier{}

	newTestTracker(b, n).TrackScheduled(context.Background(),
		"user-1", "wf-1", "tt-1", "chat-1", 20*time.Millisecond)

	messages := n.sent()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "window ended")
	assert.Empty(t, b.cancelledTriggers())
}

func TestTrackScheduledShortCircuitedRunKeepsWatching(t *testing.T) {
	t.Parallel()

	// First run succeeded but short-circuited at the condition; the
	// second achieved the goal.
	shortCircuited := testutil.CreateTestExecution(
		testutil.WithStatus(models.ExecutionStatusSuccess),
		testutil.WithNodeExecution(models.NodeTypeConditional, models.ExecutionStatusSuccess, nil),
	)

	b := &scriptedBackend{lists: [][]*models.Execution{
		{shortCircuited},
		{shortCircuited, swapSuccess()},
	}}
	n := &recordingNotifier{}

	newTestTracker(b, n).TrackScheduled(context.Background(),
		"user-1", "wf-1", "tt-1", "chat-1", time.Second)

	messages := n.sent()
	require.Len(t, messages, 1, "the short-circuited run must not notify")
	assert.Contains(t, messages[0], "completed successfully")
}

func TestTrackScheduledFailedRunNotifiesAndKeepsWatching(t *testing.T) {
	t.Parallel()

	failed := testutil.CreateTestExecution(testutil.WithError("reverted"))

	b := &scriptedBackend{lists: [][]*models.Execution{
		{failed},
		{failed, swapSuccess()},
	}}
	n := &recordingNotifier{}

	newTestTracker(b, n).TrackScheduled(context.Background(),
		"user-1", "wf-1", "tt-1", "chat-1", time.Second)

	messages := n.sent()
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0], "failed")
	assert.Contains(t, messages[1], "completed successfully")
}

func TestGoalAchieved(t *testing.T) {
	t.Parallel()

	assert.True(t, goalAchieved(swapSuccess()), "explicit swap node success wins")

	swapFailed := testutil.CreateTestExecution(
		testutil.WithStatus(models.ExecutionStatusSuccess),
		testutil.WithNodeExecution(models.NodeTypeSwap, models.ExecutionStatusFailed, nil),
	)
	assert.False(t, goalAchieved(swapFailed))

	longRun := testutil.CreateTestExecution(
		testutil.WithStatus(models.ExecutionStatusSuccess),
		testutil.WithTimestamps(time.Now().Add(-time.Minute), 30*time.Second),
	)
	assert.True(t, goalAchieved(longRun), "long runs without node records count as goal reached")

	shortRun := testutil.CreateTestExecution(
		testutil.WithStatus(models.ExecutionStatusSuccess),
		testutil.WithTimestamps(time.Now().Add(-time.Minute), time.Second),
	)
	assert.False(t, goalAchieved(shortRun))
}
