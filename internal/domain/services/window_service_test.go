package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"visiting-service/internal/domain/models"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// TestValidateWindowRejectsInvertedRange 进入时间晚于离开时间应拒绝
func TestValidateWindowRejectsInvertedRange(t *testing.T) {
	ts := newTestServices(t)

	err := ts.Window.ValidateWindow(testNow.Add(2*time.Hour), testNow.Add(time.Hour), testNow)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

// TestValidateWindowRejectsStalePast 早于当前时间5分钟以上的时刻应拒绝
func TestValidateWindowRejectsStalePast(t *testing.T) {
	ts := newTestServices(t)

	err := ts.Window.ValidateWindow(testNow.Add(-10*time.Minute), testNow.Add(time.Hour), testNow)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

// TestValidateWindowGraceMargin 5分钟内的回溯视为时钟偏差，放行
func TestValidateWindowGraceMargin(t *testing.T) {
	ts := newTestServices(t)

	err := ts.Window.ValidateWindow(testNow.Add(-4*time.Minute), testNow.Add(time.Hour), testNow)
	assert.NoError(t, err)
}

// TestBuildWindowDuration 给定时长时离开时间等于进入时间加时长
func TestBuildWindowDuration(t *testing.T) {
	ts := newTestServices(t)

	hours := 3
	window, err := ts.Window.BuildWindow(ts.DB, WindowInput{
		InTime:        testNow.Add(time.Hour),
		DurationHours: &hours,
	}, time.UTC, testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(4*time.Hour), window.OutTime)
}

// TestBuildWindowEndOfDay 一次性预约未给时长时，离开时间归一化到当日结束
func TestBuildWindowEndOfDay(t *testing.T) {
	ts := newTestServices(t)

	inTime := testNow.Add(time.Hour)
	window, err := ts.Window.BuildWindow(ts.DB, WindowInput{
		InTime:  inTime,
		OutTime: inTime,
	}, time.UTC, testNow)
	require.NoError(t, err)

	assert.Equal(t, 23, window.OutTime.Hour())
	assert.Equal(t, 59, window.OutTime.Minute())
	assert.Equal(t, 59, window.OutTime.Second())
	assert.Equal(t, inTime.Day(), window.OutTime.Day())
}

// TestBuildWindowVisitorCode 一次性预约发码，常客通行证不发码
func TestBuildWindowVisitorCode(t *testing.T) {
	ts := newTestServices(t)

	oneShot, err := ts.Window.BuildWindow(ts.DB, WindowInput{
		InTime:  testNow.Add(time.Hour),
		OutTime: testNow.Add(3 * time.Hour),
	}, time.UTC, testNow)
	require.NoError(t, err)
	require.NotNil(t, oneShot.VisitorCode)
	assert.Len(t, *oneShot.VisitorCode, ts.Config.VisitorCodeLength)

	frequent, err := ts.Window.BuildWindow(ts.DB, WindowInput{
		InTime:     testNow.Add(time.Hour),
		OutTime:    testNow.Add(30 * 24 * time.Hour),
		IsFrequent: true,
	}, time.UTC, testNow)
	require.NoError(t, err)
	assert.Nil(t, frequent.VisitorCode)
	assert.True(t, frequent.IsFrequent)
}

// TestBuildWindowInsideTransaction 通行码查重走调用方的事务连接，
// 单连接数据库上在事务内构建时间窗不会自锁
func TestBuildWindowInsideTransaction(t *testing.T) {
	ts := newTestServices(t)

	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		window, err := ts.Window.BuildWindow(tx, WindowInput{
			InTime:  testNow.Add(time.Hour),
			OutTime: testNow.Add(3 * time.Hour),
		}, time.UTC, testNow)
		if err != nil {
			return err
		}
		require.NotNil(t, window.VisitorCode)
		return nil
	})
	require.NoError(t, err)
}

// TestApplyUpdateKeepsValidation 修改时间窗复用创建时的校验闸门
func TestApplyUpdateKeepsValidation(t *testing.T) {
	ts := newTestServices(t)

	window := &models.PreapprovedWindow{
		InTime:  testNow.Add(time.Hour),
		OutTime: testNow.Add(3 * time.Hour),
	}
	hours := 2
	err := ts.Window.ApplyUpdate(window, WindowInput{
		InTime:        testNow.Add(2 * time.Hour),
		DurationHours: &hours,
	}, time.UTC, testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(2*time.Hour), window.InTime)
	assert.Equal(t, testNow.Add(4*time.Hour), window.OutTime)

	err = ts.Window.ApplyUpdate(window, WindowInput{
		InTime:  testNow.Add(-time.Hour),
		OutTime: testNow.Add(time.Hour),
	}, time.UTC, testNow)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

// TestLookupByCode 有效通行码命中对应来访
func TestLookupByCode(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	code := "AB12CD34"
	visiting := seedVisiting(t, ts.DB, f, &models.PreapprovedWindow{
		InTime:      testNow,
		OutTime:     testNow.Add(6 * time.Hour),
		VisitorCode: &code,
	})

	found, err := ts.Window.LookupByCode(code, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, visiting.ID, found.ID)
	require.NotNil(t, found.Household)
	assert.Equal(t, f.Household.ID, found.Household.ID)
}

// TestLookupByCodeNotFound 未知通行码和已过期通行码是同一种失败
func TestLookupByCodeNotFound(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	_, err := ts.Window.LookupByCode("NOPE0000", testNow)
	assert.ErrorIs(t, err, ErrCodeNotFound)

	code := "EXPIRED1"
	seedVisiting(t, ts.DB, f, &models.PreapprovedWindow{
		InTime:      testNow.Add(-6 * time.Hour),
		OutTime:     testNow.Add(-time.Hour),
		VisitorCode: &code,
	})

	_, err = ts.Window.LookupByCode(code, testNow)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

// TestLookupByCodeUsed 一次性通行码在来访签出后视为已使用
func TestLookupByCodeUsed(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	code := "ONESHOT1"
	visiting := seedVisiting(t, ts.DB, f, &models.PreapprovedWindow{
		InTime:      testNow,
		OutTime:     testNow.Add(6 * time.Hour),
		VisitorCode: &code,
	})

	_, err := ts.Ledger.Append(ts.DB, visiting.ID, models.StatusCheckin, nil)
	require.NoError(t, err)
	_, err = ts.Ledger.Append(ts.DB, visiting.ID, models.StatusCheckout, nil)
	require.NoError(t, err)

	_, err = ts.Window.LookupByCode(code, testNow.Add(time.Hour))
	assert.ErrorIs(t, err, ErrCodeUsed)
}

// TestLookupByCodeCacheResolution 码到来访的解析走缓存，
// 有效期和签出检查不走缓存
func TestLookupByCodeCacheResolution(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	redis := newFakeRedis()
	window := NewWindowService(ts.DB, ts.Config, ts.Ledger, redis)

	code := "CACHED01"
	visiting := seedVisiting(t, ts.DB, f, &models.PreapprovedWindow{
		InTime:      testNow,
		OutTime:     testNow.Add(6 * time.Hour),
		VisitorCode: &code,
	})

	// 首次查询落库并写缓存
	found, err := window.LookupByCode(code, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, visiting.ID, found.ID)
	assert.Equal(t, 0, redis.getHits)

	// 第二次查询命中缓存，结果一致
	found, err = window.LookupByCode(code, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, visiting.ID, found.ID)
	assert.Equal(t, 1, redis.getHits)

	// 缓存命中也挡不住"已使用"判定
	_, err = ts.Ledger.Append(ts.DB, visiting.ID, models.StatusCheckin, nil)
	require.NoError(t, err)
	_, err = ts.Ledger.Append(ts.DB, visiting.ID, models.StatusCheckout, nil)
	require.NoError(t, err)

	_, err = window.LookupByCode(code, testNow.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrCodeUsed)

	// 也挡不住过期判定
	_, err = window.LookupByCode(code, testNow.Add(48*time.Hour))
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

// TestLookupByCodeFrequentReusable 常客通行证签出后仍可再次命中
func TestLookupByCodeFrequentReusable(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	code := "FREQ0001"
	visiting := seedVisiting(t, ts.DB, f, &models.PreapprovedWindow{
		InTime:      testNow,
		OutTime:     testNow.Add(30 * 24 * time.Hour),
		IsFrequent:  true,
		VisitorCode: &code,
	})

	_, err := ts.Ledger.Append(ts.DB, visiting.ID, models.StatusCheckin, nil)
	require.NoError(t, err)
	_, err = ts.Ledger.Append(ts.DB, visiting.ID, models.StatusCheckout, nil)
	require.NoError(t, err)

	found, err := ts.Window.LookupByCode(code, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, visiting.ID, found.ID)
}
