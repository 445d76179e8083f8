package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visiting-service/internal/domain/models"
)

// backdateEvent 把状态事件的发生时间改到过去，模拟长时间滞留
func backdateEvent(t *testing.T, ts *testServices, eventID uint, at time.Time) {
	t.Helper()
	require.NoError(t, ts.DB.Model(&models.VisitingStatusEvent{}).
		Where("id = ?", eventID).
		Update("created_at", at).Error)
}

// TestSweepClosesStaleCheckin 滞留超过阈值的来访被强制签出
func TestSweepClosesStaleCheckin(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	event, err := ts.Ledger.Append(ts.DB, visiting.ID, models.StatusCheckin, nil)
	require.NoError(t, err)
	backdateEvent(t, ts, event.ID, testNow.Add(-72*time.Hour))

	result, err := ts.Sweeper.Sweep(testNow, 48)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ClosedCount)
	assert.Equal(t, []uint{visiting.ID}, result.VisitingIDs)

	// 追加的是无操作人的 CHECKOUT
	last, err := ts.Ledger.CurrentEvent(visiting.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, models.StatusCheckout, last.Status)
	assert.Nil(t, last.GateKeeperID)

	assert.Contains(t, ts.Notifier.eventTypes(), NotifyVisitingAutoCheckout)
}

// TestSweepIdempotent 重复执行不会二次关闭同一来访
func TestSweepIdempotent(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	event, err := ts.Ledger.Append(ts.DB, visiting.ID, models.StatusCheckin, nil)
	require.NoError(t, err)
	backdateEvent(t, ts, event.ID, testNow.Add(-72*time.Hour))

	first, err := ts.Sweeper.Sweep(testNow, 48)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ClosedCount)

	second, err := ts.Sweeper.Sweep(testNow, 48)
	require.NoError(t, err)
	assert.Equal(t, 0, second.ClosedCount)

	_, total, err := ts.Ledger.History(visiting.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

// TestSweepSkipsRecentCheckin 阈值之内的签入不受影响
func TestSweepSkipsRecentCheckin(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	event, err := ts.Ledger.Append(ts.DB, visiting.ID, models.StatusCheckin, nil)
	require.NoError(t, err)
	backdateEvent(t, ts, event.ID, testNow.Add(-time.Hour))

	result, err := ts.Sweeper.Sweep(testNow, 48)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ClosedCount)

	last, err := ts.Ledger.CurrentEvent(visiting.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckin, last.Status)
}

// TestSweepIgnoresNonCheckinStates 只有当前状态为 CHECKIN 的来访才是候选
func TestSweepIgnoresNonCheckinStates(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	checkin, err := ts.Ledger.Append(ts.DB, visiting.ID, models.StatusCheckin, nil)
	require.NoError(t, err)
	checkout, err := ts.Ledger.Append(ts.DB, visiting.ID, models.StatusCheckout, nil)
	require.NoError(t, err)
	backdateEvent(t, ts, checkin.ID, testNow.Add(-96*time.Hour))
	backdateEvent(t, ts, checkout.ID, testNow.Add(-90*time.Hour))

	result, err := ts.Sweeper.Sweep(testNow, 48)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ClosedCount)
}

// TestSweepDefaultDwell 非法阈值回落到默认48小时
func TestSweepDefaultDwell(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	event, err := ts.Ledger.Append(ts.DB, visiting.ID, models.StatusCheckin, nil)
	require.NoError(t, err)
	backdateEvent(t, ts, event.ID, testNow.Add(-72*time.Hour))

	result, err := ts.Sweeper.Sweep(testNow, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ClosedCount)
}
