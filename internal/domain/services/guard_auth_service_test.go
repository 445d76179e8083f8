package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visiting-service/internal/domain/models"
)

// TestGetAssignedBuildings 门卫名下的楼号集合
func TestGetAssignedBuildings(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	buildings, err := ts.GuardAuth.GetAssignedBuildings(f.GateKeeper.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.Building.ID}, buildings)

	// 未派驻任何楼号的门卫
	buildings, err = ts.GuardAuth.GetAssignedBuildings(f.OtherKeeper.ID)
	require.NoError(t, err)
	assert.Empty(t, buildings)
}

// TestAuthorizeHousehold 户号落在职责范围内才放行
func TestAuthorizeHousehold(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	assert.NoError(t, ts.GuardAuth.AuthorizeHouseholdTx(ts.DB, f.Household.ID, f.GateKeeper.ID))

	err := ts.GuardAuth.AuthorizeHouseholdTx(ts.DB, f.Household.ID, f.OtherKeeper.ID)
	assert.ErrorIs(t, err, ErrGateUnauthorized)

	err = ts.GuardAuth.AuthorizeHouseholdTx(ts.DB, 9999, f.GateKeeper.ID)
	assert.ErrorIs(t, err, ErrVisitingNotFound)
}

// TestAuthorizeVisiting 通过时返回已解析目的地的来访
func TestAuthorizeVisiting(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)
	visiting := seedVisiting(t, ts.DB, f, nil)

	authorized, err := ts.GuardAuth.AuthorizeVisitingTx(ts.DB, visiting.ID, f.GateKeeper.ID)
	require.NoError(t, err)
	assert.Equal(t, visiting.ID, authorized.ID)
	require.NotNil(t, authorized.Household)
	assert.Equal(t, f.Household.ID, authorized.Household.ID)

	_, err = ts.GuardAuth.AuthorizeVisitingTx(ts.DB, visiting.ID, f.OtherKeeper.ID)
	assert.ErrorIs(t, err, ErrGateUnauthorized)

	_, err = ts.GuardAuth.AuthorizeVisitingTx(ts.DB, 9999, f.GateKeeper.ID)
	assert.ErrorIs(t, err, ErrVisitingNotFound)
}

// TestAuthorizeAfterReassignment 改派后旧楼号立即失效
func TestAuthorizeAfterReassignment(t *testing.T) {
	ts := newTestServices(t)
	f := seedFixture(t, ts.DB)

	require.NoError(t, ts.DB.
		Where("gate_keeper_id = ?", f.GateKeeper.ID).
		Delete(&models.GateKeeperBuildingRelation{}).Error)

	err := ts.GuardAuth.AuthorizeHouseholdTx(ts.DB, f.Household.ID, f.GateKeeper.ID)
	assert.ErrorIs(t, err, ErrGateUnauthorized)
}
