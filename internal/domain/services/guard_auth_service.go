package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"visiting-service/internal/domain/models"
	"visiting-service/internal/infrastructure/config"
)

// InterfaceGuardAuthService defines the gate-keeper authorization interface.
// 门卫的职责范围是其名下的楼号集合；任何闸口发起的写操作都必须
// 先通过该检查，而且检查要落在同一个写事务里，避免中途改派产生竞态。
type InterfaceGuardAuthService interface {
	GetAssignedBuildings(gateKeeperID uint) ([]uint, error)
	AuthorizeVisitingTx(tx *gorm.DB, visitingID, gateKeeperID uint) (*models.Visiting, error)
	AuthorizeHouseholdTx(tx *gorm.DB, householdID, gateKeeperID uint) error
}

// GuardAuthService 校验门卫与目的地之间的授权关系
type GuardAuthService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewGuardAuthService 创建一个新的门卫授权服务
func NewGuardAuthService(db *gorm.DB, cfg *config.Config) InterfaceGuardAuthService {
	return &GuardAuthService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAssignedBuildings 返回门卫名下的楼号ID集合
func (s *GuardAuthService) GetAssignedBuildings(gateKeeperID uint) ([]uint, error) {
	var buildingIDs []uint
	err := s.DB.Model(&models.GateKeeperBuildingRelation{}).
		Where("gate_keeper_id = ?", gateKeeperID).
		Pluck("building_id", &buildingIDs).Error
	if err != nil {
		return nil, wrapStoreError(err)
	}
	return buildingIDs, nil
}

// 2 AuthorizeVisitingTx 在事务内校验门卫是否有权操作该来访，
// 通过时返回已解析目的地的来访记录
func (s *GuardAuthService) AuthorizeVisitingTx(tx *gorm.DB, visitingID, gateKeeperID uint) (*models.Visiting, error) {
	var visiting models.Visiting
	err := tx.Preload("Household").Preload("Window").First(&visiting, visitingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitingNotFound
		}
		return nil, wrapStoreError(err)
	}

	if err := s.AuthorizeHouseholdTx(tx, visiting.HouseholdID, gateKeeperID); err != nil {
		return nil, err
	}
	return &visiting, nil
}

// 3 AuthorizeHouseholdTx 在事务内校验目的地户号是否落在门卫的楼号范围内
func (s *GuardAuthService) AuthorizeHouseholdTx(tx *gorm.DB, householdID, gateKeeperID uint) error {
	var household models.Household
	err := tx.First(&household, householdID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: 户号 %d", ErrVisitingNotFound, householdID)
		}
		return wrapStoreError(err)
	}

	var count int64
	err = tx.Model(&models.GateKeeperBuildingRelation{}).
		Where("gate_keeper_id = ? AND building_id = ?", gateKeeperID, household.BuildingID).
		Count(&count).Error
	if err != nil {
		return wrapStoreError(err)
	}
	if count == 0 {
		return fmt.Errorf("%w: 户号 %d 不在职责范围内", ErrGateUnauthorized, householdID)
	}
	return nil
}
