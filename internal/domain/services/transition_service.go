package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"visiting-service/internal/domain/models"
	"visiting-service/internal/infrastructure/config"
)

// legalTransitions 是状态机的合法迁移表。
// DENIED 和 CHECKOUT 对一轮来访是终态；常客通行证在 CHECKOUT 之后
// 可以再次 CHECKIN，该特例在 canTransition 中处理。
var legalTransitions = map[models.VisitingStatus][]models.VisitingStatus{
	models.StatusPending:  {models.StatusApproved, models.StatusDenied},
	models.StatusApproved: {models.StatusCheckin},
	models.StatusCheckin:  {models.StatusCheckout},
}

// InterfaceTransitionService defines the visiting state machine interface
type InterfaceTransitionService interface {
	UpdateStatus(visitingID uint, newStatus models.VisitingStatus, gateKeeperID *uint) (*models.VisitingStatusEvent, error)
	ApproveOrDeny(visitingID uint, newStatus models.VisitingStatus, approverID uint) (*models.VisitingStatusEvent, error)
	CardStatus(visiting *models.Visiting, last *models.VisitingStatusEvent, now time.Time) models.CardStatus
}

// TransitionService 实现来访状态机：校验迁移、落账、发通知
type TransitionService struct {
	DB        *gorm.DB
	Config    *config.Config
	Ledger    InterfaceLedgerService
	GuardAuth InterfaceGuardAuthService
	Notifier  InterfaceNotificationService
}

// NewTransitionService 创建一个新的状态机服务
func NewTransitionService(db *gorm.DB, cfg *config.Config, ledger InterfaceLedgerService, guardAuth InterfaceGuardAuthService, notifier InterfaceNotificationService) InterfaceTransitionService {
	return &TransitionService{
		DB:        db,
		Config:    cfg,
		Ledger:    ledger,
		GuardAuth: guardAuth,
		Notifier:  notifier,
	}
}

// 1 UpdateStatus 执行一次状态迁移。
// 状态读取和事件追加在同一事务内，并先持有来访行的写锁，
// 保证并发的第二个写入者一定能看到第一个写入者已提交的事件。
// 门卫发起的变更在同一事务内复核职责范围，改派即刻生效。
func (s *TransitionService) UpdateStatus(visitingID uint, newStatus models.VisitingStatus, gateKeeperID *uint) (*models.VisitingStatusEvent, error) {
	if !newStatus.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, newStatus)
	}

	var event *models.VisitingStatusEvent
	var householdID uint

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		visiting, err := lockVisiting(tx, visitingID)
		if err != nil {
			return err
		}
		householdID = visiting.HouseholdID

		if gateKeeperID != nil {
			if err := s.GuardAuth.AuthorizeHouseholdTx(tx, visiting.HouseholdID, *gateKeeperID); err != nil {
				return err
			}
		}

		last, err := s.Ledger.CurrentEventTx(tx, visitingID)
		if err != nil {
			return err
		}

		// 台账只追加，重复状态会污染"最新事件即当前状态"的推导，必须硬性拒绝
		if last != nil && last.Status == newStatus {
			return fmt.Errorf("%w: %s", ErrDuplicateTransition, newStatus)
		}

		if err := canTransition(last, newStatus, visiting.Window); err != nil {
			return err
		}

		event, err = s.Ledger.Append(tx, visitingID, newStatus, gateKeeperID)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 事务已提交，通知发完即忘
	s.Notifier.NotifyStatusChange(NotificationEventType(newStatus, gateKeeperID != nil), visitingID, householdID, gateKeeperID)
	return event, nil
}

// 2 ApproveOrDeny 是住户审批专用路径：要求审批人属于目的地户号、
// 当前状态恰好是 PENDING，成功时在同一事务内把审批住户绑定到
// 来访上（首位响应者胜出）。
func (s *TransitionService) ApproveOrDeny(visitingID uint, newStatus models.VisitingStatus, approverID uint) (*models.VisitingStatusEvent, error) {
	if newStatus != models.StatusApproved && newStatus != models.StatusDenied {
		return nil, fmt.Errorf("%w: 审批只能是 %s 或 %s", ErrInvalidStatus, models.StatusApproved, models.StatusDenied)
	}

	var event *models.VisitingStatusEvent
	var householdID uint

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// 条件更新承担两个职责：原子地完成首位响应者绑定，
		// 同时取得来访行的写锁，使并发审批串行化
		res := tx.Model(&models.Visiting{}).
			Where("id = ? AND resident_id IS NULL", visitingID).
			Update("resident_id", approverID)
		if res.Error != nil {
			return wrapStoreError(res.Error)
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&models.Visiting{}).Where("id = ?", visitingID).Count(&exists).Error; err != nil {
				return wrapStoreError(err)
			}
			if exists == 0 {
				return ErrVisitingNotFound
			}
			return fmt.Errorf("%w: 已有住户响应", ErrAlreadyDecided)
		}

		var visiting models.Visiting
		if err := tx.First(&visiting, visitingID).Error; err != nil {
			return wrapStoreError(err)
		}
		householdID = visiting.HouseholdID

		// 审批权仅限目的地户号的住户；校验失败时绑定随事务回滚
		var approver models.Resident
		if err := tx.First(&approver, approverID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: 住户 %d 不存在", ErrDecisionUnauthorized, approverID)
			}
			return wrapStoreError(err)
		}
		if approver.HouseholdID != visiting.HouseholdID {
			return fmt.Errorf("%w: 非目的地户号的住户", ErrDecisionUnauthorized)
		}

		last, err := s.Ledger.CurrentEventTx(tx, visitingID)
		if err != nil {
			return err
		}
		if last == nil {
			return fmt.Errorf("%w: 来访尚未进入待审批状态", ErrAlreadyDecided)
		}
		if last.Status != models.StatusPending {
			// 回滚会一并撤销上面的住户绑定
			return fmt.Errorf("%w: 当前状态为 %s", ErrAlreadyDecided, last.Status)
		}

		event, err = s.Ledger.Append(tx, visitingID, newStatus, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.NotifyStatusChange(NotificationEventType(newStatus, false), visitingID, householdID, nil)
	return event, nil
}

// 3 CardStatus 计算列表展示用的派生状态。只读投影，每次读取重新推导，从不落库。
func (s *TransitionService) CardStatus(visiting *models.Visiting, last *models.VisitingStatusEvent, now time.Time) models.CardStatus {
	return deriveCardStatus(visiting, last, now)
}

// canTransition 校验一次迁移是否合法
func canTransition(last *models.VisitingStatusEvent, newStatus models.VisitingStatus, window *models.PreapprovedWindow) error {
	// 尚无事件的来访只能由预约到闸后签入
	if last == nil {
		if newStatus == models.StatusCheckin {
			return nil
		}
		return fmt.Errorf("%w: 来访尚无状态，不能转入 %s", ErrIllegalTransition, newStatus)
	}

	// 常客通行证允许签出后再次签入
	if last.Status == models.StatusCheckout && newStatus == models.StatusCheckin {
		if window != nil && window.IsFrequent {
			return nil
		}
		return fmt.Errorf("%w: 一次性预约不允许再次签入", ErrIllegalTransition)
	}

	for _, allowed := range legalTransitions[last.Status] {
		if allowed == newStatus {
			return nil
		}
	}
	return fmt.Errorf("%w: %s 不能转入 %s", ErrIllegalTransition, last.Status, newStatus)
}

// lockVisiting 以一次守卫更新取得来访行的写锁并加载记录。
// 行不存在（或已被软删除）时返回 ErrVisitingNotFound。
func lockVisiting(tx *gorm.DB, visitingID uint) (*models.Visiting, error) {
	res := tx.Model(&models.Visiting{}).
		Where("id = ?", visitingID).
		Update("updated_at", time.Now())
	if res.Error != nil {
		return nil, wrapStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrVisitingNotFound
	}

	var visiting models.Visiting
	if err := tx.Preload("Window").First(&visiting, visitingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitingNotFound
		}
		return nil, wrapStoreError(err)
	}
	return &visiting, nil
}
