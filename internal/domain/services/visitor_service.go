package services

import (
	"errors"

	"gorm.io/gorm"

	"visiting-service/internal/domain/models"
	"visiting-service/internal/infrastructure/config"
)

// InterfaceVisitorService defines the visitor registry service interface.
// 访客档案以手机号为唯一键：同一手机号永远命中同一条档案，只更新不重复建档。
type InterfaceVisitorService interface {
	Upsert(visitor *models.Visitor) (*models.Visitor, error)
	UpsertTx(tx *gorm.DB, visitor *models.Visitor) (*models.Visitor, error)
	GetVisitorByID(id uint) (*models.Visitor, error)
	GetVisitorByMobile(mobile string) (*models.Visitor, error)
	GetAllVisitors(page, pageSize int, search string) ([]models.Visitor, int64, error)
}

// VisitorService 提供访客档案相关的服务
type VisitorService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewVisitorService 创建一个新的访客档案服务
func NewVisitorService(db *gorm.DB, cfg *config.Config) InterfaceVisitorService {
	return &VisitorService{
		DB:     db,
		Config: cfg,
	}
}

// 1 Upsert 按手机号登记或更新访客档案
func (s *VisitorService) Upsert(visitor *models.Visitor) (*models.Visitor, error) {
	return s.UpsertTx(s.DB, visitor)
}

// 2 UpsertTx 在给定事务内登记或更新访客档案。
// 新到的字段覆盖旧值，空字段不清除已有信息。
func (s *VisitorService) UpsertTx(tx *gorm.DB, visitor *models.Visitor) (*models.Visitor, error) {
	var existing models.Visitor
	err := tx.Where("mobile = ?", visitor.Mobile).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 首次见到该手机号，建档
			if err := tx.Create(visitor).Error; err != nil {
				return nil, wrapStoreError(err)
			}
			return visitor, nil
		}
		return nil, wrapStoreError(err)
	}

	updates := map[string]interface{}{}
	if visitor.Name != "" {
		updates["name"] = visitor.Name
	}
	if visitor.CountryCode != "" {
		updates["country_code"] = visitor.CountryCode
	}
	if visitor.DocumentID != "" {
		updates["document_id"] = visitor.DocumentID
		updates["document_type"] = visitor.DocumentType
		updates["document_country"] = visitor.DocumentCountry
		updates["document_expiry"] = visitor.DocumentExpiry
		updates["document_issued"] = visitor.DocumentIssued
	}
	if visitor.AdditionalDetails != "" {
		updates["additional_details"] = visitor.AdditionalDetails
	}
	if visitor.ProfilePicture != "" {
		updates["profile_picture"] = visitor.ProfilePicture
	}

	if len(updates) > 0 {
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return nil, wrapStoreError(err)
		}
	}
	return &existing, nil
}

// 3 GetVisitorByID 根据ID获取访客档案
func (s *VisitorService) GetVisitorByID(id uint) (*models.Visitor, error) {
	var visitor models.Visitor
	if err := s.DB.First(&visitor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitorNotFound
		}
		return nil, wrapStoreError(err)
	}
	return &visitor, nil
}

// 4 GetVisitorByMobile 根据手机号获取访客档案
func (s *VisitorService) GetVisitorByMobile(mobile string) (*models.Visitor, error) {
	var visitor models.Visitor
	if err := s.DB.Where("mobile = ?", mobile).First(&visitor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitorNotFound
		}
		return nil, wrapStoreError(err)
	}
	return &visitor, nil
}

// 5 GetAllVisitors 获取访客档案列表，支持分页和搜索
func (s *VisitorService) GetAllVisitors(page, pageSize int, search string) ([]models.Visitor, int64, error) {
	var visitors []models.Visitor
	var total int64

	query := s.DB.Model(&models.Visitor{})

	// 如果有搜索关键词，添加搜索条件
	if search != "" {
		query = query.Where("name LIKE ? OR mobile LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapStoreError(err)
	}

	offset := (page - 1) * pageSize
	if err := query.Limit(pageSize).Offset(offset).Find(&visitors).Error; err != nil {
		return nil, 0, wrapStoreError(err)
	}

	return visitors, total, nil
}
