package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visiting-service/internal/domain/models"
)

func preapprovedInput(f *fixture) PreapprovedInput {
	return PreapprovedInput{
		CategoryID:    f.GuestCategory.ID,
		VisitorName:   "李四",
		VisitorMobile: "13900000001",
		Headcount:     2,
		Window: WindowInput{
			InTime:  testNow.Add(time.Hour),
			OutTime: testNow.Add(5 * time.Hour),
		},
	}
}

// TestCreatePreapproved 预约落库：来访、时间窗和访客档案齐备，台账保持为空
func TestCreatePreapproved(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	visiting, err := ts.Visiting.CreatePreapproved(f.Resident.ID, preapprovedInput(f), time.UTC, testNow)
	require.NoError(t, err)

	assert.Equal(t, f.Household.ID, visiting.HouseholdID)
	require.NotNil(t, visiting.ResidentID)
	assert.Equal(t, f.Resident.ID, *visiting.ResidentID)
	assert.Equal(t, 2, visiting.Headcount)

	require.NotNil(t, visiting.Window)
	require.NotNil(t, visiting.Window.VisitorCode)

	// 访客档案按手机号建档并关联
	require.NotNil(t, visiting.VisitorID)
	visitor, err := ts.Visitor.GetVisitorByMobile("13900000001")
	require.NoError(t, err)
	assert.Equal(t, visitor.ID, *visiting.VisitorID)

	// 到闸之前台账没有任何事件
	last, err := ts.Ledger.CurrentEvent(visiting.ID)
	require.NoError(t, err)
	assert.Nil(t, last)
}

// TestCreatePreapprovedNameRequired 访客姓名必填
func TestCreatePreapprovedNameRequired(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	input := preapprovedInput(f)
	input.VisitorName = "  "
	_, err := ts.Visiting.CreatePreapproved(f.Resident.ID, input, time.UTC, testNow)
	assert.ErrorIs(t, err, ErrVisitorNameRequired)
}

// TestCreatePreapprovedBadWindow 时间窗校验失败时整体回滚
func TestCreatePreapprovedBadWindow(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	input := preapprovedInput(f)
	input.Window.InTime = testNow.Add(5 * time.Hour)
	input.Window.OutTime = testNow.Add(time.Hour)
	_, err := ts.Visiting.CreatePreapproved(f.Resident.ID, input, time.UTC, testNow)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	var count int64
	require.NoError(t, ts.DB.Model(&models.Visiting{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

// TestCreateWalkInWithResident 目的地有在住住户时初始状态是 PENDING
func TestCreateWalkInWithResident(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	visiting, status, err := ts.Visiting.CreateWalkIn(f.GateKeeper.ID, f.Household.ID, WalkInInput{
		CategoryID: f.GuestCategory.ID,
		Name:       "王五",
		Mobile:     "13900000002",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, status)

	last, err := ts.Ledger.CurrentEvent(visiting.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, models.StatusPending, last.Status)
	require.NotNil(t, last.GateKeeperID)
	assert.Equal(t, f.GateKeeper.ID, *last.GateKeeperID)

	assert.Contains(t, ts.Notifier.eventTypes(), NotifyVisitingRequested)
}

// TestCreateWalkInNoResident 无人可审批的目的地直接 CHECKIN
func TestCreateWalkInNoResident(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	_, status, err := ts.Visiting.CreateWalkIn(f.GateKeeper.ID, f.EmptyHome.ID, WalkInInput{
		CategoryID: f.GuestCategory.ID,
		Name:       "王五",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckin, status)
	assert.Contains(t, ts.Notifier.eventTypes(), NotifyVisitingCheckin)
}

// TestCreateWalkInUnauthorized 门卫只能登记职责范围内的目的地
func TestCreateWalkInUnauthorized(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	_, _, err := ts.Visiting.CreateWalkIn(f.OtherKeeper.ID, f.Household.ID, WalkInInput{
		CategoryID: f.GuestCategory.ID,
		Name:       "王五",
	})
	assert.ErrorIs(t, err, ErrGateUnauthorized)

	var count int64
	require.NoError(t, ts.DB.Model(&models.Visiting{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

// TestCreateWalkInBatch 多目的地互不影响，逐个报告结果
func TestCreateWalkInBatch(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	results := ts.Visiting.CreateWalkInBatch(f.GateKeeper.ID, []uint{f.Household.ID, f.EmptyHome.ID, 9999}, WalkInInput{
		CategoryID: f.HelpCategory.ID,
		Name:       "刘阿姨",
	})
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.Equal(t, models.StatusPending, results[0].Status)
	assert.True(t, results[1].Success)
	assert.Equal(t, models.StatusCheckin, results[1].Status)
	assert.False(t, results[2].Success)
	assert.NotEmpty(t, results[2].Error)
}

// TestUpdatePreapprovalFields 点状修改人数和快递标记
func TestUpdatePreapprovalFields(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	visiting, err := ts.Visiting.CreatePreapproved(f.Resident.ID, preapprovedInput(f), time.UTC, testNow)
	require.NoError(t, err)

	headcount := 4
	leave := true
	updated, err := ts.Visiting.UpdatePreapproval(visiting.ID, f.Resident.ID, VisitingUpdate{
		Headcount:    &headcount,
		LeavePackage: &leave,
	}, time.UTC, testNow)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Headcount)
	assert.True(t, updated.LeavePackage)
}

// TestUpdatePreapprovalCategoryClass 类别只能在同一类别类型内修改
func TestUpdatePreapprovalCategoryClass(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	visiting, err := ts.Visiting.CreatePreapproved(f.Resident.ID, preapprovedInput(f), time.UTC, testNow)
	require.NoError(t, err)

	_, err = ts.Visiting.UpdatePreapproval(visiting.ID, f.Resident.ID, VisitingUpdate{
		CategoryID: &f.HelpCategory.ID,
	}, time.UTC, testNow)
	assert.ErrorIs(t, err, ErrCategoryClassChange)
}

// TestUpdatePreapprovalWindowLocked 访客到闸后时间窗不可再修改
func TestUpdatePreapprovalWindowLocked(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	visiting, err := ts.Visiting.CreatePreapproved(f.Resident.ID, preapprovedInput(f), time.UTC, testNow)
	require.NoError(t, err)

	_, err = ts.Transition.UpdateStatus(visiting.ID, models.StatusCheckin, &f.GateKeeper.ID)
	require.NoError(t, err)

	_, err = ts.Visiting.UpdatePreapproval(visiting.ID, f.Resident.ID, VisitingUpdate{
		Window: &WindowInput{
			InTime:  testNow.Add(2 * time.Hour),
			OutTime: testNow.Add(8 * time.Hour),
		},
	}, time.UTC, testNow)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

// TestUpdatePreapprovalOwnership 非创建者不能修改预约
func TestUpdatePreapprovalOwnership(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	visiting, err := ts.Visiting.CreatePreapproved(f.Resident.ID, preapprovedInput(f), time.UTC, testNow)
	require.NoError(t, err)

	other := models.Resident{
		Name:        "李梅",
		Phone:       "13800000002",
		Password:    "secret123",
		HouseholdID: f.Household.ID,
		Status:      "active",
	}
	require.NoError(t, ts.DB.Create(&other).Error)

	headcount := 3
	_, err = ts.Visiting.UpdatePreapproval(visiting.ID, other.ID, VisitingUpdate{Headcount: &headcount}, time.UTC, testNow)
	assert.ErrorIs(t, err, ErrVisitingNotFound)
}

// TestDelete 删除级联软删并登记通知抑制
func TestDelete(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	visiting, err := ts.Visiting.CreatePreapproved(f.Resident.ID, preapprovedInput(f), time.UTC, testNow)
	require.NoError(t, err)

	require.NoError(t, ts.Visiting.Delete(visiting.ID, f.Resident.ID))

	_, err = ts.Visiting.GetVisitingByID(visiting.ID, testNow)
	assert.ErrorIs(t, err, ErrVisitingNotFound)

	// 时间窗随来访一并软删除，通行码失效
	_, err = ts.Window.LookupByCode(*visiting.Window.VisitorCode, testNow.Add(time.Hour))
	assert.ErrorIs(t, err, ErrCodeNotFound)

	assert.Contains(t, ts.Notifier.suppressed, visiting.ID)
}

// TestCardStatusDerivation 派生状态从台账和时间窗现算现用
func TestCardStatusDerivation(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	// 无事件 + 时间窗未过期 = Upcoming
	visiting, err := ts.Visiting.CreatePreapproved(f.Resident.ID, preapprovedInput(f), time.UTC, testNow)
	require.NoError(t, err)

	view, err := ts.Visiting.GetVisitingByID(visiting.ID, testNow)
	require.NoError(t, err)
	assert.Equal(t, models.CardUpcoming, view.CardStatus)

	// 同一条记录，时间窗过期后变成 Expired
	view, err = ts.Visiting.GetVisitingByID(visiting.ID, testNow.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.CardExpired, view.CardStatus)

	// CHECKIN 后是 Active
	_, err = ts.Transition.UpdateStatus(visiting.ID, models.StatusCheckin, &f.GateKeeper.ID)
	require.NoError(t, err)
	view, err = ts.Visiting.GetVisitingByID(visiting.ID, testNow)
	require.NoError(t, err)
	assert.Equal(t, models.CardActive, view.CardStatus)

	// CHECKOUT 后是 Visited
	_, err = ts.Transition.UpdateStatus(visiting.ID, models.StatusCheckout, &f.GateKeeper.ID)
	require.NoError(t, err)
	view, err = ts.Visiting.GetVisitingByID(visiting.ID, testNow)
	require.NoError(t, err)
	assert.Equal(t, models.CardVisited, view.CardStatus)
}

// TestListForResident 住户视角的列表带派生状态
func TestListForResident(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	_, err := ts.Visiting.CreatePreapproved(f.Resident.ID, preapprovedInput(f), time.UTC, testNow)
	require.NoError(t, err)

	input := preapprovedInput(f)
	input.VisitorName = "王五"
	input.VisitorMobile = "13900000003"
	_, err = ts.Visiting.CreatePreapproved(f.Resident.ID, input, time.UTC, testNow)
	require.NoError(t, err)

	views, total, err := ts.Visiting.ListForResident(f.Resident.ID, 1, 10, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, views, 2)
	for _, view := range views {
		assert.Equal(t, models.CardUpcoming, view.CardStatus)
	}
}

// TestGetForResidentScope 详情只对目的地户号的住户可见，
// 其他户号按不存在处理
func TestGetForResidentScope(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	visiting, err := ts.Visiting.CreatePreapproved(f.Resident.ID, preapprovedInput(f), time.UTC, testNow)
	require.NoError(t, err)

	// 同户号的另一位住户可以查看
	neighbor := models.Resident{
		Name:        "李梅",
		Phone:       "13800000002",
		Password:    "secret123",
		HouseholdID: f.Household.ID,
		Status:      "active",
	}
	require.NoError(t, ts.DB.Create(&neighbor).Error)

	view, err := ts.Visiting.GetForResident(visiting.ID, neighbor.ID, testNow)
	require.NoError(t, err)
	assert.Equal(t, visiting.ID, view.Visiting.ID)

	// 其他户号的住户看不到
	outsider := models.Resident{
		Name:        "陈七",
		Phone:       "13800000003",
		Password:    "secret123",
		HouseholdID: f.EmptyHome.ID,
		Status:      "active",
	}
	require.NoError(t, ts.DB.Create(&outsider).Error)

	_, err = ts.Visiting.GetForResident(visiting.ID, outsider.ID, testNow)
	assert.ErrorIs(t, err, ErrVisitingNotFound)
}

// TestHistoryForResidentScope 状态历史的户号约束与详情一致
func TestHistoryForResidentScope(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	visiting, err := ts.Visiting.CreatePreapproved(f.Resident.ID, preapprovedInput(f), time.UTC, testNow)
	require.NoError(t, err)
	_, err = ts.Transition.UpdateStatus(visiting.ID, models.StatusCheckin, &f.GateKeeper.ID)
	require.NoError(t, err)

	events, total, err := ts.Visiting.HistoryForResident(visiting.ID, f.Resident.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, events, 1)
	assert.Equal(t, models.StatusCheckin, events[0].Status)

	outsider := models.Resident{
		Name:        "陈七",
		Phone:       "13800000003",
		Password:    "secret123",
		HouseholdID: f.EmptyHome.ID,
		Status:      "active",
	}
	require.NoError(t, ts.DB.Create(&outsider).Error)

	_, _, err = ts.Visiting.HistoryForResident(visiting.ID, outsider.ID, 1, 10)
	assert.ErrorIs(t, err, ErrVisitingNotFound)
}

// TestUpdateVisitorDetails 门卫补录证件信息，档案按手机号合并
func TestUpdateVisitorDetails(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	visiting, _, err := ts.Visiting.CreateWalkIn(f.GateKeeper.ID, f.Household.ID, WalkInInput{
		CategoryID: f.GuestCategory.ID,
		Name:       "王五",
		Mobile:     "13900000002",
	})
	require.NoError(t, err)

	updated, err := ts.Visiting.UpdateVisitorDetails(visiting.ID, f.GateKeeper.ID, &models.Visitor{
		Name:         "王五",
		Mobile:       "13900000002",
		DocumentID:   "784-1987-1234567-1",
		DocumentType: "emirates_id",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Visitor)
	assert.Equal(t, "784-1987-1234567-1", updated.Visitor.DocumentID)

	// 没有新档案，还是同一条
	var count int64
	require.NoError(t, ts.DB.Model(&models.Visitor{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// TestUpdateVisitorDetailsUnauthorized 补录同样受职责范围约束
func TestUpdateVisitorDetailsUnauthorized(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	visiting, _, err := ts.Visiting.CreateWalkIn(f.GateKeeper.ID, f.Household.ID, WalkInInput{
		CategoryID: f.GuestCategory.ID,
		Name:       "王五",
	})
	require.NoError(t, err)

	_, err = ts.Visiting.UpdateVisitorDetails(visiting.ID, f.OtherKeeper.ID, &models.Visitor{
		Name:   "王五",
		Mobile: "13900000002",
	})
	assert.ErrorIs(t, err, ErrGateUnauthorized)
}
