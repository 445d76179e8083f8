package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visiting-service/internal/domain/models"
)

// TestUpsertCreatesOnce 同一手机号永远命中同一条档案
func TestUpsertCreatesOnce(t *testing.T) {
	ts := newTestServices(t)

	first, err := ts.Visitor.Upsert(&models.Visitor{Name: "李四", Mobile: "13900000001"})
	require.NoError(t, err)

	second, err := ts.Visitor.Upsert(&models.Visitor{Name: "李四改", Mobile: "13900000001"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, ts.DB.Model(&models.Visitor{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := ts.Visitor.GetVisitorByMobile("13900000001")
	require.NoError(t, err)
	assert.Equal(t, "李四改", stored.Name)
}

// TestUpsertKeepsExistingFields 空字段不清除已有信息
func TestUpsertKeepsExistingFields(t *testing.T) {
	ts := newTestServices(t)

	_, err := ts.Visitor.Upsert(&models.Visitor{
		Name:         "李四",
		Mobile:       "13900000001",
		CountryCode:  "+971",
		DocumentID:   "784-1987-1234567-1",
		DocumentType: "emirates_id",
	})
	require.NoError(t, err)

	// 第二次登记只带了姓名和手机号
	_, err = ts.Visitor.Upsert(&models.Visitor{Name: "李四", Mobile: "13900000001"})
	require.NoError(t, err)

	stored, err := ts.Visitor.GetVisitorByMobile("13900000001")
	require.NoError(t, err)
	assert.Equal(t, "+971", stored.CountryCode)
	assert.Equal(t, "784-1987-1234567-1", stored.DocumentID)
	assert.Equal(t, "emirates_id", stored.DocumentType)
}

// TestGetVisitorNotFound 未建档的手机号
func TestGetVisitorNotFound(t *testing.T) {
	ts := newTestServices(t)

	_, err := ts.Visitor.GetVisitorByMobile("13911111111")
	assert.ErrorIs(t, err, ErrVisitorNotFound)

	_, err = ts.Visitor.GetVisitorByID(9999)
	assert.ErrorIs(t, err, ErrVisitorNotFound)
}

// TestGetAllVisitorsSearch 按姓名或手机号模糊搜索
func TestGetAllVisitorsSearch(t *testing.T) {
	ts := newTestServices(t)

	_, err := ts.Visitor.Upsert(&models.Visitor{Name: "李四", Mobile: "13900000001"})
	require.NoError(t, err)
	_, err = ts.Visitor.Upsert(&models.Visitor{Name: "王五", Mobile: "13800000009"})
	require.NoError(t, err)

	visitors, total, err := ts.Visitor.GetAllVisitors(1, 10, "139")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, visitors, 1)
	assert.Equal(t, "李四", visitors[0].Name)

	visitors, total, err = ts.Visitor.GetAllVisitors(1, 10, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, visitors, 2)
}
