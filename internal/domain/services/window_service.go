package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"visiting-service/internal/domain/models"
	"visiting-service/internal/infrastructure/config"
	"visiting-service/pkg/utils"
)

// 时间窗校验允许的回溯宽限，容忍客户端时钟偏差
const windowGraceMargin = 5 * time.Minute

// WindowInput 描述一次时间窗的创建或修改请求
type WindowInput struct {
	InTime        time.Time
	OutTime       time.Time
	DurationHours *int // 给定时 OutTime = InTime + Duration
	IsFrequent    bool
}

// InterfaceWindowService defines the preapproval window service interface
type InterfaceWindowService interface {
	BuildWindow(tx *gorm.DB, input WindowInput, loc *time.Location, now time.Time) (*models.PreapprovedWindow, error)
	ApplyUpdate(window *models.PreapprovedWindow, input WindowInput, loc *time.Location, now time.Time) error
	ValidateWindow(inTime, outTime, now time.Time) error
	LookupByCode(code string, now time.Time) (*models.Visiting, error)
}

// WindowService 提供预约时间窗的构建、校验与闸口通行码查询
type WindowService struct {
	DB     *gorm.DB
	Config *config.Config
	Ledger InterfaceLedgerService
	Redis  InterfaceRedisService
}

// NewWindowService 创建一个新的时间窗服务
func NewWindowService(db *gorm.DB, cfg *config.Config, ledger InterfaceLedgerService, redis InterfaceRedisService) InterfaceWindowService {
	return &WindowService{
		DB:     db,
		Config: cfg,
		Ledger: ledger,
		Redis:  redis,
	}
}

// 1 BuildWindow 根据请求构建一个待持久化的时间窗。
// 一次性预约生成访客通行码；常客通行证按住户/目的地匹配，不发码。
// 通行码查重走调用方的事务，与来访创建共用同一个原子单元。
func (s *WindowService) BuildWindow(tx *gorm.DB, input WindowInput, loc *time.Location, now time.Time) (*models.PreapprovedWindow, error) {
	inTime, outTime, err := s.normalize(input, loc, now)
	if err != nil {
		return nil, err
	}

	window := &models.PreapprovedWindow{
		InTime:     inTime,
		OutTime:    outTime,
		IsFrequent: input.IsFrequent,
	}

	if !input.IsFrequent {
		code, err := s.uniqueVisitorCode(tx)
		if err != nil {
			return nil, err
		}
		window.VisitorCode = &code
	}

	return window, nil
}

// 2 ApplyUpdate 把新的时间参数套用到已有时间窗上，复用同一个校验闸门
func (s *WindowService) ApplyUpdate(window *models.PreapprovedWindow, input WindowInput, loc *time.Location, now time.Time) error {
	input.IsFrequent = window.IsFrequent
	inTime, outTime, err := s.normalize(input, loc, now)
	if err != nil {
		return err
	}

	window.InTime = inTime
	window.OutTime = outTime
	return nil
}

// 3 ValidateWindow 是创建和修改共用的唯一校验闸门：
// inTime <= outTime，且两个时刻都不得早于"当前时间减5分钟"。
func (s *WindowService) ValidateWindow(inTime, outTime, now time.Time) error {
	if inTime.After(outTime) {
		return fmt.Errorf("%w: 进入时间晚于离开时间", ErrInvalidWindow)
	}

	earliest := now.Add(-windowGraceMargin)
	if inTime.Before(earliest) {
		return fmt.Errorf("%w: 进入时间过于久远", ErrInvalidWindow)
	}
	if outTime.Before(earliest) {
		return fmt.Errorf("%w: 离开时间过于久远", ErrInvalidWindow)
	}
	return nil
}

// 4 LookupByCode 供门卫按通行码查询预约，只命中尚未过期的时间窗。
// 一次性通行码在来访已签出后视为已使用，与"码不存在"是两种不同的失败。
// 码到来访的解析结果短暂缓存，闸口高峰时减少重复查询；
// 有效期和签出检查在每次查询时重新执行，不走缓存。
func (s *WindowService) LookupByCode(code string, now time.Time) (*models.Visiting, error) {
	cacheKey := "visitor_code:" + code

	visitingID, cached := s.cachedVisitingID(cacheKey)
	if !cached {
		var window models.PreapprovedWindow
		err := s.DB.Where("visitor_code = ?", code).First(&window).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCodeNotFound
			}
			return nil, wrapStoreError(err)
		}
		visitingID = window.VisitingID
	}

	var visiting models.Visiting
	err := s.DB.Preload("Household").Preload("Visitor").Preload("Category").Preload("Window").
		First(&visiting, visitingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, wrapStoreError(err)
	}

	// 时间窗随来访软删除时 Preload 取不到，同样视为码不存在
	if visiting.Window == nil || visiting.Window.OutTime.Before(now) {
		return nil, ErrCodeNotFound
	}

	// 非常客通行证只允许一轮进出
	last, err := s.Ledger.CurrentEvent(visiting.ID)
	if err != nil {
		return nil, err
	}
	if last != nil && last.Status == models.StatusCheckout && !visiting.Window.IsFrequent {
		return nil, ErrCodeUsed
	}

	if s.Redis != nil && !cached {
		_ = s.Redis.Set(cacheKey, visiting.ID, 30*time.Second)
	}

	return &visiting, nil
}

// cachedVisitingID 读取码到来访的缓存解析结果
func (s *WindowService) cachedVisitingID(cacheKey string) (uint, bool) {
	if s.Redis == nil {
		return 0, false
	}
	var visitingID uint
	if err := s.Redis.Get(cacheKey, &visitingID); err != nil || visitingID == 0 {
		return 0, false
	}
	return visitingID, true
}

// normalize 统一处理时长换算与非常客时间窗的"当日结束"归一化
func (s *WindowService) normalize(input WindowInput, loc *time.Location, now time.Time) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	inTime := input.InTime
	outTime := input.OutTime

	if input.DurationHours != nil {
		outTime = inTime.Add(time.Duration(*input.DurationHours) * time.Hour)
	} else if !input.IsFrequent {
		// 未给明确时长的一次性预约，离开时间归一化到当日结束
		outTime = endOfDay(outTime, loc)
	}

	if err := s.ValidateWindow(inTime, outTime, now); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return inTime, outTime, nil
}

// uniqueVisitorCode 在给定事务内生成全局唯一的通行码，碰撞时重试
func (s *WindowService) uniqueVisitorCode(tx *gorm.DB) (string, error) {
	length := s.Config.VisitorCodeLength
	for attempt := 0; attempt < 5; attempt++ {
		code := utils.RandomVisitorCode(length)
		var count int64
		if err := tx.Model(&models.PreapprovedWindow{}).Where("visitor_code = ?", code).Count(&count).Error; err != nil {
			return "", wrapStoreError(err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: 通行码生成失败", ErrTransientStore)
}

// endOfDay 计算给定时区内某时刻所在日的最后一纳秒
func endOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	year, month, day := local.Date()
	return time.Date(year, month, day, 23, 59, 59, 0, loc)
}
