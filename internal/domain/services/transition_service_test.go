package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visiting-service/internal/domain/models"
)

// TestUpdateStatusFirstCheckin 尚无事件的来访只能以 CHECKIN 开局
func TestUpdateStatusFirstCheckin(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	keeperID := f.GateKeeper.ID
	event, err := ts.Transition.UpdateStatus(visiting.ID, models.StatusCheckin, &keeperID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckin, event.Status)
	require.NotNil(t, event.GateKeeperID)
	assert.Equal(t, keeperID, *event.GateKeeperID)

	assert.Contains(t, ts.Notifier.eventTypes(), NotifyVisitingCheckin)
}

// TestUpdateStatusRejectsOtherFirstStates 空台账不能直接转入审批或签出
func TestUpdateStatusRejectsOtherFirstStates(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	for _, status := range []models.VisitingStatus{models.StatusApproved, models.StatusDenied, models.StatusCheckout} {
		_, err := ts.Transition.UpdateStatus(visiting.ID, status, nil)
		assert.ErrorIs(t, err, ErrIllegalTransition, string(status))
	}
}

// TestUpdateStatusDuplicate 相邻事件不得同状态，台账长度不变
func TestUpdateStatusDuplicate(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	_, err := ts.Transition.UpdateStatus(visiting.ID, models.StatusCheckin, nil)
	require.NoError(t, err)

	_, err = ts.Transition.UpdateStatus(visiting.ID, models.StatusCheckin, nil)
	assert.ErrorIs(t, err, ErrDuplicateTransition)

	_, total, err := ts.Ledger.History(visiting.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

// TestUpdateStatusInvalid 枚举之外的状态直接拒绝
func TestUpdateStatusInvalid(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	_, err := ts.Transition.UpdateStatus(visiting.ID, models.VisitingStatus("LOITERING"), nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

// TestUpdateStatusNotFound 不存在的来访
func TestUpdateStatusNotFound(t *testing.T) {
	ts := newTestServices(t)
	seedFixture(t, ts.DB)

	_, err := ts.Transition.UpdateStatus(9999, models.StatusCheckin, nil)
	assert.ErrorIs(t, err, ErrVisitingNotFound)
}

// TestUpdateStatusFullLifecycle PENDING→APPROVED→CHECKIN→CHECKOUT 全程合法
func TestUpdateStatusFullLifecycle(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	keeperID := f.GateKeeper.ID
	_, err := ts.Ledger.Append(ts.DB, visiting.ID, models.StatusPending, &keeperID)
	require.NoError(t, err)

	for _, status := range []models.VisitingStatus{models.StatusApproved, models.StatusCheckin, models.StatusCheckout} {
		_, err := ts.Transition.UpdateStatus(visiting.ID, status, &keeperID)
		require.NoError(t, err, string(status))
	}

	last, err := ts.Ledger.CurrentEvent(visiting.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckout, last.Status)
}

// TestUpdateStatusFrequentRecheckin 常客通行证允许签出后再次签入
func TestUpdateStatusFrequentRecheckin(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, &models.PreapprovedWindow{
		InTime:     testNow,
		OutTime:    testNow.Add(30 * 24 * time.Hour),
		IsFrequent: true,
	})

	_, err := ts.Transition.UpdateStatus(visiting.ID, models.StatusCheckin, nil)
	require.NoError(t, err)
	_, err = ts.Transition.UpdateStatus(visiting.ID, models.StatusCheckout, nil)
	require.NoError(t, err)

	_, err = ts.Transition.UpdateStatus(visiting.ID, models.StatusCheckin, nil)
	assert.NoError(t, err)
}

// TestUpdateStatusOneShotNoRecheckin 一次性预约签出即终态
func TestUpdateStatusOneShotNoRecheckin(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	code := "GONE0001"
	visiting := seedVisiting(t, ts.DB, f, &models.PreapprovedWindow{
		InTime:      testNow,
		OutTime:     testNow.Add(6 * time.Hour),
		VisitorCode: &code,
	})

	_, err := ts.Transition.UpdateStatus(visiting.ID, models.StatusCheckin, nil)
	require.NoError(t, err)
	_, err = ts.Transition.UpdateStatus(visiting.ID, models.StatusCheckout, nil)
	require.NoError(t, err)

	_, err = ts.Transition.UpdateStatus(visiting.ID, models.StatusCheckin, nil)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

// TestUpdateStatusRevokedKeeper 职责范围在写事务内复核，
// 事前检查通过的门卫在改派后立即失去变更权
func TestUpdateStatusRevokedKeeper(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	keeperID := f.GateKeeper.ID
	require.NoError(t, ts.GuardAuth.AuthorizeHouseholdTx(ts.DB, f.Household.ID, keeperID))

	// 检查之后、写入之前发生改派
	require.NoError(t, ts.DB.
		Where("gate_keeper_id = ?", keeperID).
		Delete(&models.GateKeeperBuildingRelation{}).Error)

	_, err := ts.Transition.UpdateStatus(visiting.ID, models.StatusCheckin, &keeperID)
	assert.ErrorIs(t, err, ErrGateUnauthorized)

	last, err := ts.Ledger.CurrentEvent(visiting.ID)
	require.NoError(t, err)
	assert.Nil(t, last)
}

// TestUpdateStatusUnassignedKeeper 未派驻目的地楼号的门卫不能变更状态
func TestUpdateStatusUnassignedKeeper(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	otherID := f.OtherKeeper.ID
	_, err := ts.Transition.UpdateStatus(visiting.ID, models.StatusCheckin, &otherID)
	assert.ErrorIs(t, err, ErrGateUnauthorized)
}

// TestApproveOrDenyFirstResponder 首位响应的住户胜出并绑定到来访上
func TestApproveOrDenyFirstResponder(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	keeperID := f.GateKeeper.ID
	_, err := ts.Ledger.Append(ts.DB, visiting.ID, models.StatusPending, &keeperID)
	require.NoError(t, err)

	second := models.Resident{
		Name:        "李梅",
		Phone:       "13800000002",
		Password:    "secret123",
		HouseholdID: f.Household.ID,
		Status:      "active",
	}
	require.NoError(t, ts.DB.Create(&second).Error)

	event, err := ts.Transition.ApproveOrDeny(visiting.ID, models.StatusApproved, f.Resident.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, event.Status)

	var stored models.Visiting
	require.NoError(t, ts.DB.First(&stored, visiting.ID).Error)
	require.NotNil(t, stored.ResidentID)
	assert.Equal(t, f.Resident.ID, *stored.ResidentID)

	// 第二位住户的响应迟到
	_, err = ts.Transition.ApproveOrDeny(visiting.ID, models.StatusDenied, second.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	assert.Contains(t, ts.Notifier.eventTypes(), NotifyVisitingApproved)
}

// TestApproveOrDenyCrossHousehold 其他户号的住户不能审批，绑定随事务回滚
func TestApproveOrDenyCrossHousehold(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	keeperID := f.GateKeeper.ID
	_, err := ts.Ledger.Append(ts.DB, visiting.ID, models.StatusPending, &keeperID)
	require.NoError(t, err)

	outsider := models.Resident{
		Name:        "陈七",
		Phone:       "13800000003",
		Password:    "secret123",
		HouseholdID: f.EmptyHome.ID,
		Status:      "active",
	}
	require.NoError(t, ts.DB.Create(&outsider).Error)

	_, err = ts.Transition.ApproveOrDeny(visiting.ID, models.StatusApproved, outsider.ID)
	assert.ErrorIs(t, err, ErrDecisionUnauthorized)

	// 来访仍未被任何住户绑定，台账只有 PENDING 一条
	var stored models.Visiting
	require.NoError(t, ts.DB.First(&stored, visiting.ID).Error)
	assert.Nil(t, stored.ResidentID)

	last, err := ts.Ledger.CurrentEvent(visiting.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, last.Status)

	// 本户号住户随后仍可正常审批
	_, err = ts.Transition.ApproveOrDeny(visiting.ID, models.StatusApproved, f.Resident.ID)
	assert.NoError(t, err)
}

// TestApproveOrDenyUnknownResident 不存在的审批人同样被拒
func TestApproveOrDenyUnknownResident(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	keeperID := f.GateKeeper.ID
	_, err := ts.Ledger.Append(ts.DB, visiting.ID, models.StatusPending, &keeperID)
	require.NoError(t, err)

	_, err = ts.Transition.ApproveOrDeny(visiting.ID, models.StatusApproved, 9999)
	assert.ErrorIs(t, err, ErrDecisionUnauthorized)
}

// TestApproveOrDenyNonPending 非 PENDING 状态不可审批，绑定随事务回滚
func TestApproveOrDenyNonPending(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	_, err := ts.Ledger.Append(ts.DB, visiting.ID, models.StatusCheckin, nil)
	require.NoError(t, err)

	_, err = ts.Transition.ApproveOrDeny(visiting.ID, models.StatusDenied, f.Resident.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	var stored models.Visiting
	require.NoError(t, ts.DB.First(&stored, visiting.ID).Error)
	assert.Nil(t, stored.ResidentID)
}

// TestApproveOrDenyEmptyLedger 尚未到闸的来访没有审批环节
func TestApproveOrDenyEmptyLedger(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	_, err := ts.Transition.ApproveOrDeny(visiting.ID, models.StatusApproved, f.Resident.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

// TestApproveOrDenyRestrictedStatuses 审批路径只接受 APPROVED 和 DENIED
func TestApproveOrDenyRestrictedStatuses(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	_, err := ts.Transition.ApproveOrDeny(visiting.ID, models.StatusCheckin, f.Resident.ID)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

// TestApproveOrDenyNotFound 不存在的来访
func TestApproveOrDenyNotFound(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	_, err := ts.Transition.ApproveOrDeny(9999, models.StatusApproved, f.Resident.ID)
	assert.ErrorIs(t, err, ErrVisitingNotFound)
}
