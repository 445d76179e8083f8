package services

import (
	"time"

	"gorm.io/gorm"

	"visiting-service/internal/domain/models"
	"visiting-service/internal/infrastructure/config"
	"visiting-service/pkg/logger"
)

// SweepResult 是一次扫描的结果报告
type SweepResult struct {
	ClosedCount int    `json:"closed_count"`
	VisitingIDs []uint `json:"visiting_ids"`
}

// InterfaceSweeperService defines the auto-checkout sweeper interface.
// 扫描任务把"忘记签出"这种隐式超时转换为显式的 CHECKOUT 终态，
// 是唯一会代替用户写台账的角色。
type InterfaceSweeperService interface {
	Sweep(now time.Time, dwellHours int) (*SweepResult, error)
	Start(interval time.Duration, dwellHours int)
	Stop()
}

// SweeperService 周期性地强制签出滞留超过阈值的来访
type SweeperService struct {
	DB       *gorm.DB
	Config   *config.Config
	Ledger   InterfaceLedgerService
	Notifier InterfaceNotificationService
	stopCh   chan struct{}
}

// NewSweeperService 创建一个新的自动签出服务
func NewSweeperService(db *gorm.DB, cfg *config.Config, ledger InterfaceLedgerService, notifier InterfaceNotificationService) InterfaceSweeperService {
	return &SweeperService{
		DB:       db,
		Config:   cfg,
		Ledger:   ledger,
		Notifier: notifier,
		stopCh:   make(chan struct{}),
	}
}

// 1 Sweep 扫描所有当前状态为 CHECKIN 且签入时间早于阈值的来访，
// 逐个追加无操作人的 CHECKOUT 事件。每个来访独立提交，单个失败
// 记日志后跳过，不中断整批。重复执行天然幂等：上一轮关掉的来访
// 当前状态已是 CHECKOUT，不会再被选中。
func (s *SweeperService) Sweep(now time.Time, dwellHours int) (*SweepResult, error) {
	if dwellHours <= 0 {
		dwellHours = 48
	}
	cutoff := now.Add(-time.Duration(dwellHours) * time.Hour)

	// 每个来访ID最大的事件即当前状态
	latestIDs := s.DB.Model(&models.VisitingStatusEvent{}).
		Select("MAX(id)").
		Group("visiting_id")

	var stale []models.VisitingStatusEvent
	err := s.DB.Where("id IN (?)", latestIDs).
		Where("status = ? AND created_at < ?", models.StatusCheckin, cutoff).
		Find(&stale).Error
	if err != nil {
		return nil, wrapStoreError(err)
	}

	result := &SweepResult{VisitingIDs: []uint{}}
	for _, event := range stale {
		closed, err := s.closeOne(event.VisitingID)
		if err != nil {
			logger.Warning("[自动签出] 来访 %d 关闭失败: %v", event.VisitingID, err)
			continue
		}
		if closed {
			result.ClosedCount++
			result.VisitingIDs = append(result.VisitingIDs, event.VisitingID)
		}
	}

	if result.ClosedCount > 0 {
		logger.Info("[自动签出] 本轮关闭 %d 个滞留来访", result.ClosedCount)
	}
	return result, nil
}

// 2 Start 启动定时扫描，与请求处理完全解耦
func (s *SweeperService) Start(interval time.Duration, dwellHours int) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.Info("[自动签出] 定时任务启动: 间隔=%v, 阈值=%d小时", interval, dwellHours)
		for {
			select {
			case <-ticker.C:
				if _, err := s.Sweep(time.Now(), dwellHours); err != nil {
					logger.Error("[自动签出] 本轮扫描失败: %v", err)
				}
			case <-s.stopCh:
				logger.Info("[自动签出] 定时任务停止")
				return
			}
		}
	}()
}

// 3 Stop 停止定时扫描
func (s *SweeperService) Stop() {
	close(s.stopCh)
}

// closeOne 在独立事务内关闭单个来访。
// 先锁行再复核当前状态，和并发的扫描或人工签出互斥。
func (s *SweeperService) closeOne(visitingID uint) (bool, error) {
	var householdID uint
	closed := false

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		visiting, err := lockVisiting(tx, visitingID)
		if err != nil {
			return err
		}
		householdID = visiting.HouseholdID

		last, err := s.Ledger.CurrentEventTx(tx, visitingID)
		if err != nil {
			return err
		}
		// 候选集是事务外算出来的，提交前必须确认仍在 CHECKIN
		if last == nil || last.Status != models.StatusCheckin {
			return nil
		}

		if _, err := s.Ledger.Append(tx, visitingID, models.StatusCheckout, nil); err != nil {
			return err
		}
		closed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if closed {
		s.Notifier.NotifyStatusChange(NotifyVisitingAutoCheckout, visitingID, householdID, nil)
	}
	return closed, nil
}
