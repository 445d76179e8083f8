package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"visiting-service/internal/domain/models"
	"visiting-service/internal/domain/services"
	"visiting-service/internal/domain/services/container"
	"visiting-service/internal/error/code"
	"visiting-service/internal/error/response"
)

// InterfaceGateKeeperController 定义门卫控制器接口
type InterfaceGateKeeperController interface {
	GetGateKeepers()
	GetGateKeeper()
	CreateGateKeeper()
	UpdateGateKeeper()
	DeleteGateKeeper()
	AssignBuildings()
}

// GateKeeperController 处理门卫账号管理请求
type GateKeeperController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewGateKeeperController 创建一个新的门卫管理控制器
func NewGateKeeperController(ctx *gin.Context, container *container.ServiceContainer) *GateKeeperController {
	return &GateKeeperController{
		Ctx:       ctx,
		Container: container,
	}
}

// GateKeeperRequest 表示门卫请求
type GateKeeperRequest struct {
	Name     string `json:"name" binding:"required" example:"王强"`
	Phone    string `json:"phone" binding:"required" example:"13700137000"`
	Username string `json:"username" binding:"required" example:"gate01"`
	Password string `json:"password" example:"gate123"`
	Status   string `json:"status" example:"active"`
	Remark   string `json:"remark"`
}

// AssignBuildingsRequest 表示门卫派驻楼号的整组替换
type AssignBuildingsRequest struct {
	BuildingIDs []uint `json:"building_ids" binding:"required" example:"1,2"`
}

// HandleGateKeeperFunc 返回一个处理门卫管理请求的Gin处理函数
func HandleGateKeeperFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewGateKeeperController(ctx, container)

		switch method {
		case "getGateKeepers":
			controller.GetGateKeepers()
		case "getGateKeeper":
			controller.GetGateKeeper()
		case "createGateKeeper":
			controller.CreateGateKeeper()
		case "updateGateKeeper":
			controller.UpdateGateKeeper()
		case "deleteGateKeeper":
			controller.DeleteGateKeeper()
		case "assignBuildings":
			controller.AssignBuildings()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetGateKeepers 获取所有门卫列表
// @Summary 获取所有门卫
// @Description 获取系统中所有门卫的列表，支持搜索
// @Tags GateKeeper
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码，默认为1"
// @Param page_size query int false "每页条数，默认为10"
// @Param search query string false "按姓名、手机号或用户名搜索"
// @Success 200 {object} map[string]interface{}
// @Router /gate_keepers [get]
func (c *GateKeeperController) GetGateKeepers() {
	page, _ := strconv.Atoi(c.Ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Ctx.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	search := c.Ctx.Query("search")

	gateKeeperService := c.Container.GetService("gate_keeper").(services.InterfaceGateKeeperService)
	gateKeepers, total, err := gateKeeperService.GetAllGateKeepers(page, pageSize, search)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "获取门卫列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        gateKeepers,
	})
}

// 2. GetGateKeeper 获取单个门卫详情
// @Summary 获取门卫详情
// @Description 根据ID获取门卫详细信息，包含派驻楼号
// @Tags GateKeeper
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "门卫ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /gate_keepers/{id} [get]
func (c *GateKeeperController) GetGateKeeper() {
	gateKeeperID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的门卫ID")
		return
	}

	gateKeeperService := c.Container.GetService("gate_keeper").(services.InterfaceGateKeeperService)
	gateKeeper, err := gateKeeperService.GetGateKeeperByID(uint(gateKeeperID))
	if err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gateKeeper)
}

// 3. CreateGateKeeper 创建新门卫
// @Summary 创建门卫
// @Description 创建一个新的门卫账号
// @Tags GateKeeper
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param gate_keeper body GateKeeperRequest true "门卫信息"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /gate_keepers [post]
func (c *GateKeeperController) CreateGateKeeper() {
	var req GateKeeperRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	if req.Password == "" {
		response.ParamError(c.Ctx, "密码不能为空")
		return
	}

	gateKeeper := &models.GateKeeper{
		Name:     req.Name,
		Phone:    req.Phone,
		Username: req.Username,
		Password: req.Password,
		Remark:   req.Remark,
	}
	if req.Status != "" {
		gateKeeper.Status = req.Status
	} else {
		gateKeeper.Status = "active"
	}

	gateKeeperService := c.Container.GetService("gate_keeper").(services.InterfaceGateKeeperService)
	if err := gateKeeperService.CreateGateKeeper(gateKeeper); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建门卫失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gateKeeper)
}

// 4. UpdateGateKeeper 更新门卫信息
// @Summary 更新门卫
// @Description 更新门卫信息
// @Tags GateKeeper
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "门卫ID"
// @Param gate_keeper body GateKeeperRequest true "门卫信息"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /gate_keepers/{id} [put]
func (c *GateKeeperController) UpdateGateKeeper() {
	gateKeeperID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的门卫ID")
		return
	}

	var req GateKeeperRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Remark != "" {
		updates["remark"] = req.Remark
	}

	gateKeeperService := c.Container.GetService("gate_keeper").(services.InterfaceGateKeeperService)
	gateKeeper, err := gateKeeperService.UpdateGateKeeper(uint(gateKeeperID), updates)
	if err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gateKeeper)
}

// 5. DeleteGateKeeper 删除门卫
// @Summary 删除门卫
// @Description 删除指定的门卫及其派驻关系
// @Tags GateKeeper
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "门卫ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /gate_keepers/{id} [delete]
func (c *GateKeeperController) DeleteGateKeeper() {
	gateKeeperID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的门卫ID")
		return
	}

	gateKeeperService := c.Container.GetService("gate_keeper").(services.InterfaceGateKeeperService)
	if err := gateKeeperService.DeleteGateKeeper(uint(gateKeeperID)); err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, nil)
}

// 6. AssignBuildings 调整门卫派驻楼号
// @Summary 调整派驻楼号
// @Description 整组替换门卫的派驻楼号列表
// @Tags GateKeeper
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "门卫ID"
// @Param request body AssignBuildingsRequest true "楼号ID列表"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /gate_keepers/{id}/buildings [put]
func (c *GateKeeperController) AssignBuildings() {
	gateKeeperID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的门卫ID")
		return
	}

	var req AssignBuildingsRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	gateKeeperService := c.Container.GetService("gate_keeper").(services.InterfaceGateKeeperService)
	if err := gateKeeperService.AssignBuildings(uint(gateKeeperID), req.BuildingIDs); err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, nil)
}
