package services

import (
	"errors"

	"gorm.io/gorm"

	"visiting-service/internal/domain/models"
	"visiting-service/internal/infrastructure/config"
)

// InterfaceCategoryService defines the visit category service interface
type InterfaceCategoryService interface {
	GetAllCategories() ([]models.VisitCategory, error)
	GetCategoryByID(id uint) (*models.VisitCategory, error)
	CreateCategory(category *models.VisitCategory) error
	UpdateCategory(id uint, updates map[string]interface{}) (*models.VisitCategory, error)
	DeleteCategory(id uint) error
}

// CategoryService 管理访客类别字典
type CategoryService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewCategoryService 创建一个新的类别服务
func NewCategoryService(db *gorm.DB, cfg *config.Config) InterfaceCategoryService {
	return &CategoryService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllCategories 获取所有访客类别
func (s *CategoryService) GetAllCategories() ([]models.VisitCategory, error) {
	var categories []models.VisitCategory
	if err := s.DB.Order("id ASC").Find(&categories).Error; err != nil {
		return nil, wrapStoreError(err)
	}
	return categories, nil
}

// 2 GetCategoryByID 根据ID获取类别
func (s *CategoryService) GetCategoryByID(id uint) (*models.VisitCategory, error) {
	var category models.VisitCategory
	if err := s.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, wrapStoreError(err)
	}
	return &category, nil
}

// 3 CreateCategory 创建新类别
func (s *CategoryService) CreateCategory(category *models.VisitCategory) error {
	var count int64
	if err := s.DB.Model(&models.VisitCategory{}).Where("name = ?", category.Name).Count(&count).Error; err != nil {
		return wrapStoreError(err)
	}
	if count > 0 {
		return errors.New("类别名称已存在")
	}
	return wrapStoreError(s.DB.Create(category).Error)
}

// 4 UpdateCategory 更新类别
func (s *CategoryService) UpdateCategory(id uint, updates map[string]interface{}) (*models.VisitCategory, error) {
	category, err := s.GetCategoryByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(category).Updates(updates).Error; err != nil {
		return nil, wrapStoreError(err)
	}
	return s.GetCategoryByID(id)
}

// 5 DeleteCategory 删除类别，已有到访记录引用时拒绝
func (s *CategoryService) DeleteCategory(id uint) error {
	category, err := s.GetCategoryByID(id)
	if err != nil {
		return err
	}

	var count int64
	if err := s.DB.Model(&models.Visiting{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return wrapStoreError(err)
	}
	if count > 0 {
		return errors.New("该类别下存在到访记录，无法删除")
	}

	return wrapStoreError(s.DB.Delete(category).Error)
}
