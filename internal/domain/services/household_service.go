package services

import (
	"errors"

	"gorm.io/gorm"

	"visiting-service/internal/domain/models"
	"visiting-service/internal/infrastructure/config"
)

// InterfaceHouseholdService defines the household directory service interface
type InterfaceHouseholdService interface {
	GetAllHouseholds(page, pageSize int, buildingID uint) ([]models.Household, int64, error)
	GetHouseholdByID(id uint) (*models.Household, error)
	CreateHousehold(household *models.Household) error
	UpdateHousehold(id uint, updates map[string]interface{}) (*models.Household, error)
	DeleteHousehold(id uint) error
}

// HouseholdService 提供户号目录相关的服务
type HouseholdService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewHouseholdService 创建一个新的户号服务
func NewHouseholdService(db *gorm.DB, cfg *config.Config) InterfaceHouseholdService {
	return &HouseholdService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllHouseholds 获取户号列表，可按楼号过滤
func (s *HouseholdService) GetAllHouseholds(page, pageSize int, buildingID uint) ([]models.Household, int64, error) {
	var households []models.Household
	var total int64

	query := s.DB.Model(&models.Household{})
	if buildingID > 0 {
		query = query.Where("building_id = ?", buildingID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapStoreError(err)
	}

	offset := (page - 1) * pageSize
	if err := query.Preload("Building").Limit(pageSize).Offset(offset).Find(&households).Error; err != nil {
		return nil, 0, wrapStoreError(err)
	}

	return households, total, nil
}

// 2 GetHouseholdByID 根据ID获取户号
func (s *HouseholdService) GetHouseholdByID(id uint) (*models.Household, error) {
	var household models.Household
	if err := s.DB.Preload("Building").Preload("Residents").First(&household, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("户号不存在")
		}
		return nil, wrapStoreError(err)
	}
	return &household, nil
}

// 3 CreateHousehold 创建新户号
func (s *HouseholdService) CreateHousehold(household *models.Household) error {
	// 楼号必须存在
	var building models.Building
	if err := s.DB.First(&building, household.BuildingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("楼号不存在")
		}
		return wrapStoreError(err)
	}

	// 同一楼号下户号编号唯一
	var count int64
	if err := s.DB.Model(&models.Household{}).
		Where("building_id = ? AND household_number = ?", household.BuildingID, household.HouseholdNumber).
		Count(&count).Error; err != nil {
		return wrapStoreError(err)
	}
	if count > 0 {
		return errors.New("户号已存在")
	}

	return wrapStoreError(s.DB.Create(household).Error)
}

// 4 UpdateHousehold 更新户号信息
func (s *HouseholdService) UpdateHousehold(id uint, updates map[string]interface{}) (*models.Household, error) {
	household, err := s.GetHouseholdByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(household).Updates(updates).Error; err != nil {
		return nil, wrapStoreError(err)
	}

	return s.GetHouseholdByID(id)
}

// 5 DeleteHousehold 删除户号
func (s *HouseholdService) DeleteHousehold(id uint) error {
	household, err := s.GetHouseholdByID(id)
	if err != nil {
		return err
	}
	return wrapStoreError(s.DB.Delete(household).Error)
}
