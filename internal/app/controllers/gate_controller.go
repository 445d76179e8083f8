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
)

// InterfaceGateController 定义闸口控制器接口
type InterfaceGateController interface {
	CreateWalkIn()
	CreateWalkInBatch()
	LookupCode()
	UpdateStatus()
	UpdateVisitorDetails()
}

// GateController 处理门卫侧的闸口请求
type GateController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewGateController 创建一个新的闸口控制器
func NewGateController(ctx *gin.Context, container *container.ServiceContainer) *GateController {
	return &GateController{
		Ctx:       ctx,
		Container: container,
	}
}

// WalkInRequest 表示门卫登记的临访
type WalkInRequest struct {
	HouseholdID uint   `json:"household_id" binding:"required" example:"1"`
	CategoryID  uint   `json:"category_id" binding:"required" example:"1"`
	Name        string `json:"name" binding:"required" example:"李明"`
	Mobile      string `json:"mobile" example:"13900139000"`
	Headcount   int    `json:"headcount" example:"1"`
	Metadata    string `json:"metadata"`
}

// WalkInBatchRequest 表示一名访客同时拜访多个户号的登记
type WalkInBatchRequest struct {
	HouseholdIDs []uint `json:"household_ids" binding:"required,min=1" example:"1,2"`
	CategoryID   uint   `json:"category_id" binding:"required" example:"1"`
	Name         string `json:"name" binding:"required" example:"李明"`
	Mobile       string `json:"mobile" example:"13900139000"`
	Headcount    int    `json:"headcount" example:"1"`
	Metadata     string `json:"metadata"`
}

// StatusRequest 表示闸口状态变更
type StatusRequest struct {
	Status string `json:"status" binding:"required" example:"CHECKIN"` // CHECKIN, CHECKOUT, DENIED
}

// VisitorDetailsRequest 表示门卫补录的访客证件信息
type VisitorDetailsRequest struct {
	Name              string     `json:"name"`
	CountryCode       string     `json:"country_code"`
	Mobile            string     `json:"mobile" binding:"required"`
	DocumentID        string     `json:"document_id"`
	DocumentType      string     `json:"document_type"`
	DocumentCountry   string     `json:"document_country"`
	DocumentExpiry    *time.Time `json:"document_expiry"`
	DocumentIssued    *time.Time `json:"document_issued"`
	AdditionalDetails string     `json:"additional_details"`
	ProfilePicture    string     `json:"profile_picture"`
}

// HandleGateFunc 返回一个处理闸口请求的Gin处理函数
func HandleGateFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewGateController(ctx, container)

		switch method {
		case "createWalkIn":
			controller.CreateWalkIn()
		case "createWalkInBatch":
			controller.CreateWalkInBatch()
		case "lookupCode":
			controller.LookupCode()
		case "updateStatus":
			controller.UpdateStatus()
		case "updateVisitorDetails":
			controller.UpdateVisitorDetails()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. CreateWalkIn 门卫登记临访
// @Summary 登记临访
// @Description 门卫为未经预约的访客登记来访；目的地有住户时进入待审批状态，无住户时直接签入
// @Tags Gate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param walkin body WalkInRequest true "临访信息"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /gate/walkins [post]
func (c *GateController) CreateWalkIn() {
	gateKeeperID, ok := middleware.GetUserID(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	var req WalkInRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	input := services.WalkInInput{
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Mobile:     req.Mobile,
		Headcount:  req.Headcount,
		Metadata:   req.Metadata,
	}

	visitingService := c.Container.GetService("visiting").(services.InterfaceVisitingService)
	visiting, status, err := visitingService.CreateWalkIn(gateKeeperID, req.HouseholdID, input)
	if err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"visiting": visiting,
		"status":   status,
	})
}

// 2. CreateWalkInBatch 门卫登记多目的地临访
// @Summary 批量登记临访
// @Description 一名访客同时拜访多个户号时逐个独立登记，单个目的地失败不影响其余目的地
// @Tags Gate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param walkin body WalkInBatchRequest true "临访信息"
// @Success 200 {object} map[string]interface{}
// @Router /gate/walkins/batch [post]
func (c *GateController) CreateWalkInBatch() {
	gateKeeperID, ok := middleware.GetUserID(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	var req WalkInBatchRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	input := services.WalkInInput{
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Mobile:     req.Mobile,
		Headcount:  req.Headcount,
		Metadata:   req.Metadata,
	}

	visitingService := c.Container.GetService("visiting").(services.InterfaceVisitingService)
	results := visitingService.CreateWalkInBatch(gateKeeperID, req.HouseholdIDs, input)

	response.Success(c.Ctx, gin.H{
		"results": results,
	})
}

// 3. LookupCode 按通行码查询预约
// @Summary 通行码查询
// @Description 门卫凭访客出示的通行码取回预约来访；已用完或过期的码返回相应错误
// @Tags Gate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "通行码"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /gate/codes/{code} [get]
func (c *GateController) LookupCode() {
	gateKeeperID, ok := middleware.GetUserID(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	visitorCode := c.Ctx.Param("code")
	if visitorCode == "" {
		response.ParamError(c.Ctx, "通行码不能为空")
		return
	}

	windowService := c.Container.GetService("window").(services.InterfaceWindowService)
	visiting, err := windowService.LookupByCode(visitorCode, time.Now())
	if err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	// 门卫只能看到派驻楼栋内的预约
	guardAuth := c.Container.GetService("guard_auth").(services.InterfaceGuardAuthService)
	if _, err := guardAuth.AuthorizeVisitingTx(c.Container.GetDB(), visiting.ID, gateKeeperID); err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	ledgerService := c.Container.GetService("ledger").(services.InterfaceLedgerService)
	last, err := ledgerService.CurrentEvent(visiting.ID)
	if err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	transitionService := c.Container.GetService("transition").(services.InterfaceTransitionService)
	response.Success(c.Ctx, gin.H{
		"visiting":    visiting,
		"card_status": transitionService.CardStatus(visiting, last, time.Now()),
		"last_event":  last,
	})
}

// 4. UpdateStatus 闸口状态变更
// @Summary 状态变更
// @Description 门卫在闸口签入、签出或拒绝来访；变更按状态机校验并追加到状态台账
// @Tags Gate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "来访ID"
// @Param status body StatusRequest true "目标状态"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /gate/visitings/{id}/status [post]
func (c *GateController) UpdateStatus() {
	gateKeeperID, ok := middleware.GetUserID(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	visitingID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的来访ID")
		return
	}

	var req StatusRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	// 职责范围校验在状态机的写事务内完成
	transitionService := c.Container.GetService("transition").(services.InterfaceTransitionService)
	event, err := transitionService.UpdateStatus(uint(visitingID), models.VisitingStatus(req.Status), &gateKeeperID)
	if err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, event)
}

// 5. UpdateVisitorDetails 补录访客证件信息
// @Summary 补录访客信息
// @Description 门卫在闸口为来访补录或修正访客证件信息，同一手机号只保留一份档案
// @Tags Gate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "来访ID"
// @Param visitor body VisitorDetailsRequest true "访客信息"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /gate/visitings/{id}/visitor [put]
func (c *GateController) UpdateVisitorDetails() {
	gateKeeperID, ok := middleware.GetUserID(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	visitingID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的来访ID")
		return
	}

	var req VisitorDetailsRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	visitor := &models.Visitor{
		Name:              req.Name,
		CountryCode:       req.CountryCode,
		Mobile:            req.Mobile,
		DocumentID:        req.DocumentID,
		DocumentType:      req.DocumentType,
		DocumentCountry:   req.DocumentCountry,
		DocumentExpiry:    req.DocumentExpiry,
		DocumentIssued:    req.DocumentIssued,
		AdditionalDetails: req.AdditionalDetails,
		ProfilePicture:    req.ProfilePicture,
	}

	visitingService := c.Container.GetService("visiting").(services.InterfaceVisitingService)
	visiting, err := visitingService.UpdateVisitorDetails(uint(visitingID), gateKeeperID, visitor)
	if err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, visiting)
}
