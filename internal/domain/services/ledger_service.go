package services

import (
	"errors"

	"gorm.io/gorm"

	"visiting-service/internal/domain/models"
	"visiting-service/internal/infrastructure/config"
)

// InterfaceLedgerService defines the status ledger service interface.
// 台账是来访当前状态的唯一事实来源：只追加，按自增ID排序。
type InterfaceLedgerService interface {
	CurrentEvent(visitingID uint) (*models.VisitingStatusEvent, error)
	CurrentEventTx(tx *gorm.DB, visitingID uint) (*models.VisitingStatusEvent, error)
	Append(tx *gorm.DB, visitingID uint, status models.VisitingStatus, gateKeeperID *uint) (*models.VisitingStatusEvent, error)
	History(visitingID uint, page, pageSize int) ([]models.VisitingStatusEvent, int64, error)
}

// LedgerService 提供来访状态台账的读写
type LedgerService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewLedgerService 创建一个新的台账服务
func NewLedgerService(db *gorm.DB, cfg *config.Config) InterfaceLedgerService {
	return &LedgerService{
		DB:     db,
		Config: cfg,
	}
}

// 1 CurrentEvent 返回来访最近一次的状态事件；从未发生过状态变更时返回 nil
func (s *LedgerService) CurrentEvent(visitingID uint) (*models.VisitingStatusEvent, error) {
	return s.CurrentEventTx(s.DB, visitingID)
}

// 2 CurrentEventTx 在给定事务内读取最近一次状态事件。
// 排序依据是自增ID而不是时间戳：两条事件的墙钟时间可能完全相同。
func (s *LedgerService) CurrentEventTx(tx *gorm.DB, visitingID uint) (*models.VisitingStatusEvent, error) {
	var event models.VisitingStatusEvent
	err := tx.Where("visiting_id = ?", visitingID).
		Order("id DESC").
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStoreError(err)
	}
	return &event, nil
}

// 3 Append 追加一条状态事件，这是台账唯一的写入原语，永不修改已有行。
// 相邻事件不得同状态的约束由状态机服务负责，台账本身不做校验。
func (s *LedgerService) Append(tx *gorm.DB, visitingID uint, status models.VisitingStatus, gateKeeperID *uint) (*models.VisitingStatusEvent, error) {
	event := &models.VisitingStatusEvent{
		VisitingID:   visitingID,
		Status:       status,
		GateKeeperID: gateKeeperID,
	}
	if err := tx.Create(event).Error; err != nil {
		return nil, wrapStoreError(err)
	}
	return event, nil
}

// 4 History 倒序返回来访的状态历史，支持分页
func (s *LedgerService) History(visitingID uint, page, pageSize int) ([]models.VisitingStatusEvent, int64, error) {
	var events []models.VisitingStatusEvent
	var total int64

	query := s.DB.Model(&models.VisitingStatusEvent{}).Where("visiting_id = ?", visitingID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapStoreError(err)
	}

	offset := (page - 1) * pageSize
	if err := query.Order("id DESC").Limit(pageSize).Offset(offset).Find(&events).Error; err != nil {
		return nil, 0, wrapStoreError(err)
	}

	return events, total, nil
}
