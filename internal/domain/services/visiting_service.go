package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"visiting-service/internal/domain/models"
	"visiting-service/internal/infrastructure/config"
	"visiting-service/pkg/logger"
)

// PreapprovedInput 描述住户发起的预约来访
type PreapprovedInput struct {
	CategoryID    uint
	VisitorName   string
	VisitorMobile string
	CountryCode   string
	Headcount     int
	LeavePackage  bool
	Metadata      string
	Window        WindowInput
}

// WalkInInput 描述门卫登记的临访
type WalkInInput struct {
	CategoryID uint
	Name       string
	Mobile     string
	Headcount  int
	Metadata   string
}

// VisitingUpdate 描述住户在访客到达前的点状修改；nil 字段表示不修改
type VisitingUpdate struct {
	CategoryID   *uint
	Headcount    *int
	LeavePackage *bool
	Metadata     *string
	Window       *WindowInput
}

// WalkInResult 是多目的地登记中单个目的地的独立结果
type WalkInResult struct {
	HouseholdID uint                  `json:"household_id"`
	Success     bool                  `json:"success"`
	VisitingID  uint                  `json:"visiting_id,omitempty"`
	Status      models.VisitingStatus `json:"status,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// VisitingView 是列表/详情的展示视图：实体加上每次读取时重新推导的派生状态
type VisitingView struct {
	Visiting   *models.Visiting            `json:"visiting"`
	CardStatus models.CardStatus           `json:"card_status"`
	LastEvent  *models.VisitingStatusEvent `json:"last_event,omitempty"`
}

// InterfaceVisitingService defines the visiting record store interface
type InterfaceVisitingService interface {
	CreatePreapproved(residentID uint, input PreapprovedInput, loc *time.Location, now time.Time) (*models.Visiting, error)
	CreateWalkIn(gateKeeperID, householdID uint, input WalkInInput) (*models.Visiting, models.VisitingStatus, error)
	CreateWalkInBatch(gateKeeperID uint, householdIDs []uint, input WalkInInput) []WalkInResult
	UpdatePreapproval(visitingID, residentID uint, update VisitingUpdate, loc *time.Location, now time.Time) (*models.Visiting, error)
	Delete(visitingID, residentID uint) error
	GetVisitingByID(visitingID uint, now time.Time) (*VisitingView, error)
	GetForResident(visitingID, residentID uint, now time.Time) (*VisitingView, error)
	ListForResident(residentID uint, page, pageSize int, now time.Time) ([]VisitingView, int64, error)
	HistoryForResident(visitingID, residentID uint, page, pageSize int) ([]models.VisitingStatusEvent, int64, error)
	UpdateVisitorDetails(visitingID, gateKeeperID uint, visitor *models.Visitor) (*models.Visiting, error)
}

// VisitingService 拥有来访记录：创建、修改、软删除与读取视图
type VisitingService struct {
	DB        *gorm.DB
	Config    *config.Config
	Windows   InterfaceWindowService
	Visitors  InterfaceVisitorService
	Ledger    InterfaceLedgerService
	GuardAuth InterfaceGuardAuthService
	Notifier  InterfaceNotificationService
}

// NewVisitingService 创建一个新的来访记录服务
func NewVisitingService(
	db *gorm.DB,
	cfg *config.Config,
	windows InterfaceWindowService,
	visitors InterfaceVisitorService,
	ledger InterfaceLedgerService,
	guardAuth InterfaceGuardAuthService,
	notifier InterfaceNotificationService,
) InterfaceVisitingService {
	return &VisitingService{
		DB:        db,
		Config:    cfg,
		Windows:   windows,
		Visitors:  visitors,
		Ledger:    ledger,
		GuardAuth: guardAuth,
		Notifier:  notifier,
	}
}

// 1 CreatePreapproved 住户预约来访：访客建档、来访记录和时间窗
// 在同一个事务里落库，任何一步失败整体回滚。台账保持为空，
// 访客到闸签入才产生第一条状态事件。
func (s *VisitingService) CreatePreapproved(residentID uint, input PreapprovedInput, loc *time.Location, now time.Time) (*models.Visiting, error) {
	resident, err := s.residentByID(residentID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.VisitorName) == "" {
		return nil, ErrVisitorNameRequired
	}

	var visiting *models.Visiting
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.categoryByID(tx, input.CategoryID); err != nil {
			return err
		}

		window, err := s.Windows.BuildWindow(tx, input.Window, loc, now)
		if err != nil {
			return err
		}

		visiting = &models.Visiting{
			HouseholdID:  resident.HouseholdID,
			CategoryID:   input.CategoryID,
			ResidentID:   &residentID,
			Name:         strings.TrimSpace(input.VisitorName),
			Headcount:    normalizeHeadcount(input.Headcount),
			LeavePackage: input.LeavePackage,
			Metadata:     input.Metadata,
		}

		// 给了手机号就建档/更新档案并关联
		if input.VisitorMobile != "" {
			visitor, err := s.Visitors.UpsertTx(tx, &models.Visitor{
				Name:        visiting.Name,
				Mobile:      input.VisitorMobile,
				CountryCode: input.CountryCode,
			})
			if err != nil {
				return err
			}
			visiting.VisitorID = &visitor.ID
		}

		if err := tx.Create(visiting).Error; err != nil {
			return wrapStoreError(err)
		}

		window.VisitingID = visiting.ID
		if err := tx.Create(window).Error; err != nil {
			return wrapStoreError(err)
		}
		visiting.Window = window
		return nil
	})
	if err != nil {
		return nil, err
	}
	return visiting, nil
}

// 2 CreateWalkIn 门卫登记单个目的地的临访。授权检查、访客建档、
// 来访落库和台账首条事件在同一个事务内完成；目的地有住户时
// 初始状态是 PENDING，无人可审批时直接 CHECKIN。
func (s *VisitingService) CreateWalkIn(gateKeeperID, householdID uint, input WalkInInput) (*models.Visiting, models.VisitingStatus, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, "", ErrVisitorNameRequired
	}

	var visiting *models.Visiting
	var initial models.VisitingStatus

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.GuardAuth.AuthorizeHouseholdTx(tx, householdID, gateKeeperID); err != nil {
			return err
		}
		if _, err := s.categoryByID(tx, input.CategoryID); err != nil {
			return err
		}

		visiting = &models.Visiting{
			HouseholdID: householdID,
			CategoryID:  input.CategoryID,
			Name:        strings.TrimSpace(input.Name),
			Headcount:   normalizeHeadcount(input.Headcount),
			Metadata:    input.Metadata,
		}

		if input.Mobile != "" {
			visitor, err := s.Visitors.UpsertTx(tx, &models.Visitor{
				Name:   visiting.Name,
				Mobile: input.Mobile,
			})
			if err != nil {
				return err
			}
			visiting.VisitorID = &visitor.ID
		}

		if err := tx.Create(visiting).Error; err != nil {
			return wrapStoreError(err)
		}

		// 无住户可审批的目的地不设审批环节
		residentID, err := s.residentForHousehold(tx, householdID)
		if err != nil {
			return err
		}
		if residentID != nil {
			initial = models.StatusPending
		} else {
			initial = models.StatusCheckin
		}

		_, err = s.Ledger.Append(tx, visiting.ID, initial, &gateKeeperID)
		return err
	})
	if err != nil {
		return nil, "", err
	}

	s.Notifier.NotifyStatusChange(NotificationEventType(initial, true), visiting.ID, householdID, &gateKeeperID)
	return visiting, initial, nil
}

// 3 CreateWalkInBatch 多目的地登记：每个目的地一个独立的子事务，
// 单个目的地失败不影响其余目的地，调用方拿到逐目的地的结果报告。
func (s *VisitingService) CreateWalkInBatch(gateKeeperID uint, householdIDs []uint, input WalkInInput) []WalkInResult {
	results := make([]WalkInResult, 0, len(householdIDs))
	for _, householdID := range householdIDs {
		visiting, status, err := s.CreateWalkIn(gateKeeperID, householdID, input)
		if err != nil {
			logger.Warning("多目的地登记失败: 户号=%d, 错误=%v", householdID, err)
			results = append(results, WalkInResult{
				HouseholdID: householdID,
				Success:     false,
				Error:       err.Error(),
			})
			continue
		}
		results = append(results, WalkInResult{
			HouseholdID: householdID,
			Success:     true,
			VisitingID:  visiting.ID,
			Status:      status,
		})
	}
	return results
}

// 4 UpdatePreapproval 住户在访客到达前修改预约。
// 类别只能在同一类别类型内修改；时间窗修改复用创建时的校验闸门，
// 且只允许在台账为空（尚未到闸）时进行。
func (s *VisitingService) UpdatePreapproval(visitingID, residentID uint, update VisitingUpdate, loc *time.Location, now time.Time) (*models.Visiting, error) {
	var visiting *models.Visiting
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		visiting, err = s.ownedVisiting(tx, visitingID, residentID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}

		if update.CategoryID != nil && *update.CategoryID != visiting.CategoryID {
			oldCat, err := s.categoryByID(tx, visiting.CategoryID)
			if err != nil {
				return err
			}
			newCat, err := s.categoryByID(tx, *update.CategoryID)
			if err != nil {
				return err
			}
			if oldCat.Class() != newCat.Class() {
				return fmt.Errorf("%w: %s -> %s", ErrCategoryClassChange, oldCat.Class(), newCat.Class())
			}
			updates["category_id"] = *update.CategoryID
		}
		if update.Headcount != nil {
			updates["headcount"] = normalizeHeadcount(*update.Headcount)
		}
		if update.LeavePackage != nil {
			updates["leave_package"] = *update.LeavePackage
		}
		if update.Metadata != nil {
			updates["metadata"] = *update.Metadata
		}

		if len(updates) > 0 {
			if err := tx.Model(visiting).Updates(updates).Error; err != nil {
				return wrapStoreError(err)
			}
		}

		if update.Window != nil {
			last, err := s.Ledger.CurrentEventTx(tx, visitingID)
			if err != nil {
				return err
			}
			if last != nil {
				return fmt.Errorf("%w: 访客已到闸，时间窗不可修改", ErrIllegalTransition)
			}
			if visiting.Window == nil {
				return fmt.Errorf("%w: 该来访没有预约时间窗", ErrInvalidWindow)
			}
			if err := s.Windows.ApplyUpdate(visiting.Window, *update.Window, loc, now); err != nil {
				return err
			}
			if err := tx.Save(visiting.Window).Error; err != nil {
				return wrapStoreError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 返回修改后的完整记录
	view, err := s.GetVisitingByID(visitingID, now)
	if err != nil {
		return nil, err
	}
	return view.Visiting, nil
}

// 5 Delete 住户删除自己创建的预约：来访、时间窗与状态事件级联软删除，
// 并把来访加入通知抑制集合，压掉尚未下发的关联通知。
func (s *VisitingService) Delete(visitingID, residentID uint) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		visiting, err := s.ownedVisiting(tx, visitingID, residentID)
		if err != nil {
			return err
		}

		if err := tx.Where("visiting_id = ?", visitingID).Delete(&models.PreapprovedWindow{}).Error; err != nil {
			return wrapStoreError(err)
		}
		if err := tx.Where("visiting_id = ?", visitingID).Delete(&models.VisitingStatusEvent{}).Error; err != nil {
			return wrapStoreError(err)
		}
		if err := tx.Delete(visiting).Error; err != nil {
			return wrapStoreError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.Notifier.Suppress(visitingID); err != nil {
		logger.Warning("通知抑制登记失败: 来访=%d, 错误=%v", visitingID, err)
	}
	return nil
}

// 6 GetVisitingByID 读取来访详情，派生状态现算现用
func (s *VisitingService) GetVisitingByID(visitingID uint, now time.Time) (*VisitingView, error) {
	var visiting models.Visiting
	err := s.DB.Preload("Household").Preload("Category").Preload("Visitor").Preload("Window").
		First(&visiting, visitingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitingNotFound
		}
		return nil, wrapStoreError(err)
	}

	last, err := s.Ledger.CurrentEvent(visitingID)
	if err != nil {
		return nil, err
	}

	return &VisitingView{
		Visiting:   &visiting,
		CardStatus: deriveCardStatus(&visiting, last, now),
		LastEvent:  last,
	}, nil
}

// 7 GetForResident 住户视角的来访详情，只能看到本户号的来访。
// 户号不匹配时按不存在处理，不向外泄露记录是否存在。
func (s *VisitingService) GetForResident(visitingID, residentID uint, now time.Time) (*VisitingView, error) {
	resident, err := s.residentByID(residentID)
	if err != nil {
		return nil, err
	}

	view, err := s.GetVisitingByID(visitingID, now)
	if err != nil {
		return nil, err
	}
	if view.Visiting.HouseholdID != resident.HouseholdID {
		return nil, fmt.Errorf("%w: 非本户号的来访", ErrVisitingNotFound)
	}
	return view, nil
}

// 8 ListForResident 住户视角的来访列表，按创建时间倒序分页
func (s *VisitingService) ListForResident(residentID uint, page, pageSize int, now time.Time) ([]VisitingView, int64, error) {
	resident, err := s.residentByID(residentID)
	if err != nil {
		return nil, 0, err
	}

	var visitings []models.Visiting
	var total int64

	query := s.DB.Model(&models.Visiting{}).Where("household_id = ?", resident.HouseholdID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapStoreError(err)
	}

	offset := (page - 1) * pageSize
	err = s.DB.Preload("Category").Preload("Visitor").Preload("Window").
		Where("household_id = ?", resident.HouseholdID).
		Order("created_at DESC").Limit(pageSize).Offset(offset).
		Find(&visitings).Error
	if err != nil {
		return nil, 0, wrapStoreError(err)
	}

	views := make([]VisitingView, 0, len(visitings))
	for i := range visitings {
		last, err := s.Ledger.CurrentEvent(visitings[i].ID)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, VisitingView{
			Visiting:   &visitings[i],
			CardStatus: deriveCardStatus(&visitings[i], last, now),
			LastEvent:  last,
		})
	}
	return views, total, nil
}

// 9 HistoryForResident 住户视角的状态历史，户号约束同详情读取
func (s *VisitingService) HistoryForResident(visitingID, residentID uint, page, pageSize int) ([]models.VisitingStatusEvent, int64, error) {
	resident, err := s.residentByID(residentID)
	if err != nil {
		return nil, 0, err
	}

	var visiting models.Visiting
	if err := s.DB.First(&visiting, visitingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrVisitingNotFound
		}
		return nil, 0, wrapStoreError(err)
	}
	if visiting.HouseholdID != resident.HouseholdID {
		return nil, 0, fmt.Errorf("%w: 非本户号的来访", ErrVisitingNotFound)
	}

	return s.Ledger.History(visitingID, page, pageSize)
}

// 10 UpdateVisitorDetails 门卫补录访客证件信息。
// 授权检查和档案写入在同一个事务内，防止改派竞态。
func (s *VisitingService) UpdateVisitorDetails(visitingID, gateKeeperID uint, visitor *models.Visitor) (*models.Visiting, error) {
	var visiting *models.Visiting
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		visiting, err = s.GuardAuth.AuthorizeVisitingTx(tx, visitingID, gateKeeperID)
		if err != nil {
			return err
		}

		if visitor.Mobile == "" {
			return fmt.Errorf("%w: 缺少手机号", ErrVisitorNotFound)
		}

		saved, err := s.Visitors.UpsertTx(tx, visitor)
		if err != nil {
			return err
		}

		if visiting.VisitorID == nil || *visiting.VisitorID != saved.ID {
			if err := tx.Model(visiting).Update("visitor_id", saved.ID).Error; err != nil {
				return wrapStoreError(err)
			}
			visiting.VisitorID = &saved.ID
		}
		visiting.Visitor = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return visiting, nil
}

// deriveCardStatus 派生展示状态；见状态机服务中的说明
func deriveCardStatus(visiting *models.Visiting, last *models.VisitingStatusEvent, now time.Time) models.CardStatus {
	if last == nil {
		if visiting.Window != nil && visiting.Window.OutTime.Before(now) {
			return models.CardExpired
		}
		return models.CardUpcoming
	}

	switch last.Status {
	case models.StatusCheckout:
		return models.CardVisited
	case models.StatusDenied:
		return models.CardDenied
	case models.StatusCheckin:
		return models.CardActive
	case models.StatusApproved:
		return models.CardApproved
	default:
		return models.CardPending
	}
}

// residentByID 加载住户
func (s *VisitingService) residentByID(residentID uint) (*models.Resident, error) {
	var resident models.Resident
	if err := s.DB.First(&resident, residentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("住户不存在")
		}
		return nil, wrapStoreError(err)
	}
	return &resident, nil
}

// residentForHousehold 返回户号下任意一位在住住户的ID；无住户时返回 nil
func (s *VisitingService) residentForHousehold(tx *gorm.DB, householdID uint) (*uint, error) {
	var resident models.Resident
	err := tx.Where("household_id = ? AND status = ?", householdID, "active").
		Order("id").First(&resident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStoreError(err)
	}
	return &resident.ID, nil
}

// categoryByID 加载来访类别
func (s *VisitingService) categoryByID(tx *gorm.DB, categoryID uint) (*models.VisitCategory, error) {
	var category models.VisitCategory
	if err := tx.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, wrapStoreError(err)
	}
	return &category, nil
}

// ownedVisiting 加载来访并校验归属：只有创建预约的住户能修改或删除它
func (s *VisitingService) ownedVisiting(tx *gorm.DB, visitingID, residentID uint) (*models.Visiting, error) {
	var visiting models.Visiting
	err := tx.Preload("Window").First(&visiting, visitingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitingNotFound
		}
		return nil, wrapStoreError(err)
	}
	if visiting.ResidentID == nil || *visiting.ResidentID != residentID {
		return nil, fmt.Errorf("%w: 非本人创建的来访", ErrVisitingNotFound)
	}
	return &visiting, nil
}

// normalizeHeadcount 人数至少为1
func normalizeHeadcount(headcount int) int {
	if headcount < 1 {
		return 1
	}
	return headcount
}
