package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visiting-service/internal/domain/models"
)

// TestCurrentEventEmpty 尚无事件的来访应返回 nil 而不是错误
func TestCurrentEventEmpty(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	last, err := ts.Ledger.CurrentEvent(visiting.ID)
	require.NoError(t, err)
	assert.Nil(t, last)
}

// TestCurrentEventOrderedByID 当前状态取决于自增ID最大的事件
func TestCurrentEventOrderedByID(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	keeperID := f.GateKeeper.ID
	_, err := ts.Ledger.Append(ts.DB, visiting.ID, models.StatusPending, &keeperID)
	require.NoError(t, err)
	_, err = ts.Ledger.Append(ts.DB, visiting.ID, models.StatusApproved, nil)
	require.NoError(t, err)
	_, err = ts.Ledger.Append(ts.DB, visiting.ID, models.StatusCheckin, &keeperID)
	require.NoError(t, err)

	last, err := ts.Ledger.CurrentEvent(visiting.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, models.StatusCheckin, last.Status)
	require.NotNil(t, last.GateKeeperID)
	assert.Equal(t, keeperID, *last.GateKeeperID)
}

// TestCurrentEventIsolatedPerVisiting 不同来访的台账互不可见
func TestCurrentEventIsolatedPerVisiting(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	first := seedVisiting(t, ts.DB, f, nil)
	second := seedVisiting(t, ts.DB, f, nil)

	_, err := ts.Ledger.Append(ts.DB, first.ID, models.StatusCheckin, nil)
	require.NoError(t, err)

	last, err := ts.Ledger.CurrentEvent(second.ID)
	require.NoError(t, err)
	assert.Nil(t, last)
}

// TestHistoryPaging 历史按事件ID倒序分页
func TestHistoryPaging(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	for _, status := range []models.VisitingStatus{models.StatusPending, models.StatusApproved, models.StatusCheckin} {
		_, err := ts.Ledger.Append(ts.DB, visiting.ID, status, nil)
		require.NoError(t, err)
	}

	events, total, err := ts.Ledger.History(visiting.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, events, 2)
	assert.Equal(t, models.StatusCheckin, events[0].Status)
	assert.Equal(t, models.StatusApproved, events[1].Status)

	events, total, err = ts.Ledger.History(visiting.ID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, events, 1)
	assert.Equal(t, models.StatusPending, events[0].Status)
}
