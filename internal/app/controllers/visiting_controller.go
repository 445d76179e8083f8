package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"visiting-service/internal/app/middleware"
	"visiting-service/internal/domain/models"
	"visiting-service/internal/domain/services"
	"visiting-service/internal/domain/services/container"
	"visiting-service/internal/error/code"
	"visiting-service/internal/error/response"
	"visiting-service/internal/infrastructure/config"
)

// InterfaceVisitingController 定义来访记录控制器接口
type InterfaceVisitingController interface {
	CreateVisiting()
	GetVisitings()
	GetVisiting()
	UpdateVisiting()
	DeleteVisiting()
	DecideVisiting()
	GetVisitingHistory()
}

// VisitingController 处理住户侧的来访记录请求
type VisitingController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewVisitingController 创建一个新的来访记录控制器
func NewVisitingController(ctx *gin.Context, container *container.ServiceContainer) *VisitingController {
	return &VisitingController{
		Ctx:       ctx,
		Container: container,
	}
}

// WindowRequest 表示预约时间窗参数
type WindowRequest struct {
	InTime        time.Time `json:"in_time" binding:"required" example:"2026-01-02T09:00:00+04:00"`
	OutTime       time.Time `json:"out_time" example:"2026-01-02T18:00:00+04:00"`
	DurationHours *int      `json:"duration_hours" example:"8"`
	IsFrequent    bool      `json:"is_frequent" example:"false"`
}

// VisitingRequest 表示住户预约来访请求
type VisitingRequest struct {
	CategoryID    uint          `json:"category_id" binding:"required" example:"1"`
	VisitorName   string        `json:"visitor_name" binding:"required" example:"张伟"`
	VisitorMobile string        `json:"visitor_mobile" example:"13800138000"`
	CountryCode   string        `json:"country_code" example:"+86"`
	Headcount     int           `json:"headcount" example:"2"`
	LeavePackage  bool          `json:"leave_package" example:"false"`
	Metadata      string        `json:"metadata"`
	Window        WindowRequest `json:"window" binding:"required"`
}

// VisitingUpdateRequest 表示预约修改请求；缺省字段保持原值
type VisitingUpdateRequest struct {
	CategoryID   *uint          `json:"category_id"`
	Headcount    *int           `json:"headcount"`
	LeavePackage *bool          `json:"leave_package"`
	Metadata     *string        `json:"metadata"`
	Window       *WindowRequest `json:"window"`
}

// DecisionRequest 表示住户对PENDING来访的审批
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required" example:"APPROVED"` // APPROVED 或 DENIED
}

// HandleVisitingFunc 返回一个处理来访记录请求的Gin处理函数
func HandleVisitingFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewVisitingController(ctx, container)

		switch method {
		case "createVisiting":
			controller.CreateVisiting()
		case "getVisitings":
			controller.GetVisitings()
		case "getVisiting":
			controller.GetVisiting()
		case "updateVisiting":
			controller.UpdateVisiting()
		case "deleteVisiting":
			controller.DeleteVisiting()
		case "decideVisiting":
			controller.DecideVisiting()
		case "getVisitingHistory":
			controller.GetVisitingHistory()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// toWindowInput 把请求参数转换为服务层的时间窗输入
func toWindowInput(req WindowRequest) services.WindowInput {
	return services.WindowInput{
		InTime:        req.InTime,
		OutTime:       req.OutTime,
		DurationHours: req.DurationHours,
		IsFrequent:    req.IsFrequent,
	}
}

// 1. CreateVisiting 住户预约来访
// @Summary 预约来访
// @Description 住户为访客创建预约来访记录和进出时间窗
// @Tags Visiting
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param visiting body VisitingRequest true "预约信息"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /visitings [post]
func (c *VisitingController) CreateVisiting() {
	residentID, ok := middleware.GetUserID(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	var req VisitingRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	cfg := c.Container.GetService("config").(*config.Config)
	visitingService := c.Container.GetService("visiting").(services.InterfaceVisitingService)

	input := services.PreapprovedInput{
		CategoryID:    req.CategoryID,
		VisitorName:   req.VisitorName,
		VisitorMobile: req.VisitorMobile,
		CountryCode:   req.CountryCode,
		Headcount:     req.Headcount,
		LeavePackage:  req.LeavePackage,
		Metadata:      req.Metadata,
		Window:        toWindowInput(req.Window),
	}

	visiting, err := visitingService.CreatePreapproved(residentID, input, cfg.GetPropertyLocation(), time.Now())
	if err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, visiting)
}

// 2. GetVisitings 获取住户名下的来访列表
// @Summary 获取来访列表
// @Description 获取当前住户所在户号的来访记录，每条附带实时推导的卡片状态
// @Tags Visiting
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码，默认为1"
// @Param page_size query int false "每页条数，默认为10"
// @Success 200 {object} map[string]interface{}
// @Router /visitings [get]
func (c *VisitingController) GetVisitings() {
	residentID, ok := middleware.GetUserID(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	page, _ := strconv.Atoi(c.Ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Ctx.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	visitingService := c.Container.GetService("visiting").(services.InterfaceVisitingService)
	views, total, err := visitingService.ListForResident(residentID, page, pageSize, time.Now())
	if err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        views,
	})
}

// 3. GetVisiting 获取来访详情
// @Summary 获取来访详情
// @Description 根据ID获取本户号来访记录及其最新状态
// @Tags Visiting
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "来访ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /visitings/{id} [get]
func (c *VisitingController) GetVisiting() {
	residentID, ok := middleware.GetUserID(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	visitingID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的来访ID")
		return
	}

	visitingService := c.Container.GetService("visiting").(services.InterfaceVisitingService)
	view, err := visitingService.GetForResident(uint(visitingID), residentID, time.Now())
	if err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, view)
}

// 4. UpdateVisiting 修改预约
// @Summary 修改预约
// @Description 访客到达前住户可修改预约的类别、人数和时间窗
// @Tags Visiting
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "来访ID"
// @Param visiting body VisitingUpdateRequest true "修改内容"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /visitings/{id} [put]
func (c *VisitingController) UpdateVisiting() {
	residentID, ok := middleware.GetUserID(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	visitingID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的来访ID")
		return
	}

	var req VisitingUpdateRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	update := services.VisitingUpdate{
		CategoryID:   req.CategoryID,
		Headcount:    req.Headcount,
		LeavePackage: req.LeavePackage,
		Metadata:     req.Metadata,
	}
	if req.Window != nil {
		windowInput := toWindowInput(*req.Window)
		update.Window = &windowInput
	}

	cfg := c.Container.GetService("config").(*config.Config)
	visitingService := c.Container.GetService("visiting").(services.InterfaceVisitingService)

	visiting, err := visitingService.UpdatePreapproval(uint(visitingID), residentID, update, cfg.GetPropertyLocation(), time.Now())
	if err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, visiting)
}

// 5. DeleteVisiting 撤销预约
// @Summary 撤销预约
// @Description 软删除来访记录及其时间窗和状态事件，并抑制后续通知
// @Tags Visiting
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "来访ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /visitings/{id} [delete]
func (c *VisitingController) DeleteVisiting() {
	residentID, ok := middleware.GetUserID(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	visitingID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的来访ID")
		return
	}

	visitingService := c.Container.GetService("visiting").(services.InterfaceVisitingService)
	if err := visitingService.Delete(uint(visitingID), residentID); err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, nil)
}

// 6. DecideVisiting 审批待定来访
// @Summary 审批来访
// @Description 住户对PENDING状态的临访做出批准或拒绝决定，先到先得
// @Tags Visiting
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "来访ID"
// @Param decision body DecisionRequest true "审批决定"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /visitings/{id}/decision [post]
func (c *VisitingController) DecideVisiting() {
	residentID, ok := middleware.GetUserID(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	visitingID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的来访ID")
		return
	}

	var req DecisionRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	decision := models.VisitingStatus(req.Decision)

	transitionService := c.Container.GetService("transition").(services.InterfaceTransitionService)
	event, err := transitionService.ApproveOrDeny(uint(visitingID), decision, residentID)
	if err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, event)
}

// 7. GetVisitingHistory 获取来访状态历史
// @Summary 获取状态历史
// @Description 按时间倒序返回本户号来访的全部状态事件
// @Tags Visiting
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "来访ID"
// @Param page query int false "页码，默认为1"
// @Param page_size query int false "每页条数，默认为20"
// @Success 200 {object} map[string]interface{}
// @Router /visitings/{id}/events [get]
func (c *VisitingController) GetVisitingHistory() {
	residentID, ok := middleware.GetUserID(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	visitingID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的来访ID")
		return
	}

	page, _ := strconv.Atoi(c.Ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Ctx.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	visitingService := c.Container.GetService("visiting").(services.InterfaceVisitingService)
	events, total, err := visitingService.HistoryForResident(uint(visitingID), residentID, page, pageSize)
	if err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"data":      events,
	})
}
