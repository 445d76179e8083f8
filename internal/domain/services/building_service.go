package services

import (
	"errors"

	"gorm.io/gorm"

	"visiting-service/internal/domain/models"
	"visiting-service/internal/infrastructure/config"
)

// InterfaceBuildingService defines the building directory service interface
type InterfaceBuildingService interface {
	GetAllBuildings(page, pageSize int) ([]models.Building, int64, error)
	GetBuildingByID(id uint) (*models.Building, error)
	CreateBuilding(building *models.Building) error
	UpdateBuilding(id uint, updates map[string]interface{}) (*models.Building, error)
	DeleteBuilding(id uint) error
	GetBuildingHouseholds(buildingID uint) ([]models.Household, error)
}

// BuildingService 提供楼号目录相关的服务
type BuildingService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewBuildingService 创建一个新的楼号服务
func NewBuildingService(db *gorm.DB, cfg *config.Config) InterfaceBuildingService {
	return &BuildingService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllBuildings 获取所有楼号，支持分页
func (s *BuildingService) GetAllBuildings(page, pageSize int) ([]models.Building, int64, error) {
	var buildings []models.Building
	var total int64

	query := s.DB.Model(&models.Building{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapStoreError(err)
	}

	offset := (page - 1) * pageSize
	if err := query.Limit(pageSize).Offset(offset).Find(&buildings).Error; err != nil {
		return nil, 0, wrapStoreError(err)
	}

	return buildings, total, nil
}

// 2 GetBuildingByID 根据ID获取楼号
func (s *BuildingService) GetBuildingByID(id uint) (*models.Building, error) {
	var building models.Building
	if err := s.DB.First(&building, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("楼号不存在")
		}
		return nil, wrapStoreError(err)
	}
	return &building, nil
}

// 3 CreateBuilding 创建新楼号
func (s *BuildingService) CreateBuilding(building *models.Building) error {
	// 验证楼号编码唯一性
	var count int64
	if err := s.DB.Model(&models.Building{}).Where("building_code = ?", building.BuildingCode).Count(&count).Error; err != nil {
		return wrapStoreError(err)
	}
	if count > 0 {
		return errors.New("楼号编码已存在")
	}

	return wrapStoreError(s.DB.Create(building).Error)
}

// 4 UpdateBuilding 更新楼号信息
func (s *BuildingService) UpdateBuilding(id uint, updates map[string]interface{}) (*models.Building, error) {
	building, err := s.GetBuildingByID(id)
	if err != nil {
		return nil, err
	}

	// 如果更新编码，需要检查唯一性
	if buildingCode, ok := updates["building_code"].(string); ok && buildingCode != building.BuildingCode {
		var count int64
		if err := s.DB.Model(&models.Building{}).Where("building_code = ? AND id != ?", buildingCode, id).Count(&count).Error; err != nil {
			return nil, wrapStoreError(err)
		}
		if count > 0 {
			return nil, errors.New("楼号编码已被其他楼号使用")
		}
	}

	if err := s.DB.Model(building).Updates(updates).Error; err != nil {
		return nil, wrapStoreError(err)
	}

	return s.GetBuildingByID(id)
}

// 5 DeleteBuilding 删除楼号
func (s *BuildingService) DeleteBuilding(id uint) error {
	building, err := s.GetBuildingByID(id)
	if err != nil {
		return err
	}

	// 还有户号的楼号不允许删除
	var count int64
	if err := s.DB.Model(&models.Household{}).Where("building_id = ?", id).Count(&count).Error; err != nil {
		return wrapStoreError(err)
	}
	if count > 0 {
		return errors.New("楼号下仍有户号，不能删除")
	}

	return wrapStoreError(s.DB.Delete(building).Error)
}

// 6 GetBuildingHouseholds 获取楼号下的户号列表
func (s *BuildingService) GetBuildingHouseholds(buildingID uint) ([]models.Household, error) {
	if _, err := s.GetBuildingByID(buildingID); err != nil {
		return nil, err
	}

	var households []models.Household
	if err := s.DB.Where("building_id = ?", buildingID).Find(&households).Error; err != nil {
		return nil, wrapStoreError(err)
	}
	return households, nil
}
