package services

import (
	"errors"

	"gorm.io/gorm"

	"visiting-service/internal/domain/models"
	"visiting-service/internal/infrastructure/config"
)

// InterfaceGateKeeperService defines the gate keeper directory service interface
type InterfaceGateKeeperService interface {
	GetAllGateKeepers(page, pageSize int, search string) ([]models.GateKeeper, int64, error)
	GetGateKeeperByID(id uint) (*models.GateKeeper, error)
	CreateGateKeeper(gateKeeper *models.GateKeeper) error
	UpdateGateKeeper(id uint, updates map[string]interface{}) (*models.GateKeeper, error)
	DeleteGateKeeper(id uint) error
	AssignBuildings(gateKeeperID uint, buildingIDs []uint) error
}

// GateKeeperService 提供门卫账号及其楼号派驻关系的管理
type GateKeeperService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewGateKeeperService 创建一个新的门卫服务
func NewGateKeeperService(db *gorm.DB, cfg *config.Config) InterfaceGateKeeperService {
	return &GateKeeperService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllGateKeepers 获取所有门卫，支持分页和搜索
func (s *GateKeeperService) GetAllGateKeepers(page, pageSize int, search string) ([]models.GateKeeper, int64, error) {
	var gateKeepers []models.GateKeeper
	var total int64

	query := s.DB.Model(&models.GateKeeper{})

	// 如果有搜索关键词，添加搜索条件
	if search != "" {
		query = query.Where("name LIKE ? OR phone LIKE ? OR username LIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapStoreError(err)
	}

	offset := (page - 1) * pageSize
	if err := query.Preload("Buildings").Limit(pageSize).Offset(offset).Find(&gateKeepers).Error; err != nil {
		return nil, 0, wrapStoreError(err)
	}

	return gateKeepers, total, nil
}

// 2 GetGateKeeperByID 根据ID获取门卫
func (s *GateKeeperService) GetGateKeeperByID(id uint) (*models.GateKeeper, error) {
	var gateKeeper models.GateKeeper
	if err := s.DB.Preload("Buildings").First(&gateKeeper, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGateKeeperNotFound
		}
		return nil, wrapStoreError(err)
	}
	return &gateKeeper, nil
}

// 3 CreateGateKeeper 创建新门卫
func (s *GateKeeperService) CreateGateKeeper(gateKeeper *models.GateKeeper) error {
	// 验证手机号唯一性
	var count int64
	if err := s.DB.Model(&models.GateKeeper{}).Where("phone = ?", gateKeeper.Phone).Count(&count).Error; err != nil {
		return wrapStoreError(err)
	}
	if count > 0 {
		return errors.New("手机号已被使用")
	}

	// 验证用户名唯一性
	if err := s.DB.Model(&models.GateKeeper{}).Where("username = ?", gateKeeper.Username).Count(&count).Error; err != nil {
		return wrapStoreError(err)
	}
	if count > 0 {
		return errors.New("用户名已存在")
	}

	return wrapStoreError(s.DB.Create(gateKeeper).Error)
}

// 4 UpdateGateKeeper 更新门卫信息
func (s *GateKeeperService) UpdateGateKeeper(id uint, updates map[string]interface{}) (*models.GateKeeper, error) {
	gateKeeper, err := s.GetGateKeeperByID(id)
	if err != nil {
		return nil, err
	}

	// 如果更新手机号，需要检查唯一性
	if phone, ok := updates["phone"].(string); ok && phone != gateKeeper.Phone {
		var count int64
		if err := s.DB.Model(&models.GateKeeper{}).Where("phone = ? AND id != ?", phone, id).Count(&count).Error; err != nil {
			return nil, wrapStoreError(err)
		}
		if count > 0 {
			return nil, errors.New("手机号已被其他门卫使用")
		}
	}

	if err := s.DB.Model(gateKeeper).Updates(updates).Error; err != nil {
		return nil, wrapStoreError(err)
	}

	return s.GetGateKeeperByID(id)
}

// 5 DeleteGateKeeper 删除门卫及其派驻关系
func (s *GateKeeperService) DeleteGateKeeper(id uint) error {
	gateKeeper, err := s.GetGateKeeperByID(id)
	if err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gate_keeper_id = ?", id).Delete(&models.GateKeeperBuildingRelation{}).Error; err != nil {
			return wrapStoreError(err)
		}
		return wrapStoreError(tx.Delete(gateKeeper).Error)
	})
}

// 6 AssignBuildings 重设门卫的派驻楼号，整组替换
func (s *GateKeeperService) AssignBuildings(gateKeeperID uint, buildingIDs []uint) error {
	if _, err := s.GetGateKeeperByID(gateKeeperID); err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		// 楼号必须全部存在
		var count int64
		if err := tx.Model(&models.Building{}).Where("id IN ?", buildingIDs).Count(&count).Error; err != nil {
			return wrapStoreError(err)
		}
		if int(count) != len(buildingIDs) {
			return errors.New("部分楼号不存在")
		}

		if err := tx.Where("gate_keeper_id = ?", gateKeeperID).Delete(&models.GateKeeperBuildingRelation{}).Error; err != nil {
			return wrapStoreError(err)
		}

		for _, buildingID := range buildingIDs {
			relation := models.GateKeeperBuildingRelation{
				GateKeeperID: gateKeeperID,
				BuildingID:   buildingID,
			}
			if err := tx.Create(&relation).Error; err != nil {
				return wrapStoreError(err)
			}
		}
		return nil
	})
}
