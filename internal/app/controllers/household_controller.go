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

// InterfaceHouseholdController 定义户号控制器接口
type InterfaceHouseholdController interface {
	GetHouseholds()
	GetHousehold()
	CreateHousehold()
	UpdateHousehold()
	DeleteHousehold()
}

// HouseholdController 处理户号相关的请求
type HouseholdController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewHouseholdController 创建一个新的户号控制器
func NewHouseholdController(ctx *gin.Context, container *container.ServiceContainer) *HouseholdController {
	return &HouseholdController{
		Ctx:       ctx,
		Container: container,
	}
}

// HouseholdRequest 表示户号请求
type HouseholdRequest struct {
	HouseholdNumber string `json:"household_number" binding:"required" example:"1-1-101"`
	BuildingID      uint   `json:"building_id" binding:"required" example:"1"`
	Status          string `json:"status" example:"active"` // active, inactive
}

// HandleHouseholdFunc 返回一个处理户号请求的Gin处理函数
func HandleHouseholdFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHouseholdController(ctx, container)

		switch method {
		case "getHouseholds":
			controller.GetHouseholds()
		case "getHousehold":
			controller.GetHousehold()
		case "createHousehold":
			controller.CreateHousehold()
		case "updateHousehold":
			controller.UpdateHousehold()
		case "deleteHousehold":
			controller.DeleteHousehold()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetHouseholds 获取所有户号列表
// @Summary 获取所有户号
// @Description 获取系统中所有户号的列表，可按楼号筛选
// @Tags Household
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码，默认为1"
// @Param page_size query int false "每页条数，默认为10"
// @Param building_id query int false "楼号ID，用于筛选特定楼号下的户号"
// @Success 200 {object} map[string]interface{}
// @Router /households [get]
func (c *HouseholdController) GetHouseholds() {
	page, _ := strconv.Atoi(c.Ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Ctx.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	var buildingID uint
	if raw := c.Ctx.Query("building_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil && id > 0 {
			buildingID = uint(id)
		}
	}

	householdService := c.Container.GetService("household").(services.InterfaceHouseholdService)
	households, total, err := householdService.GetAllHouseholds(page, pageSize, buildingID)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "获取户号列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        households,
	})
}

// 2. GetHousehold 获取单个户号详情
// @Summary 获取户号详情
// @Description 根据ID获取户号详细信息，包含所属楼号和住户
// @Tags Household
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "户号ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /households/{id} [get]
func (c *HouseholdController) GetHousehold() {
	householdID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的户号ID")
		return
	}

	householdService := c.Container.GetService("household").(services.InterfaceHouseholdService)
	household, err := householdService.GetHouseholdByID(uint(householdID))
	if err != nil {
		response.NotFound(c.Ctx, "户号不存在: "+err.Error())
		return
	}

	response.Success(c.Ctx, household)
}

// 3. CreateHousehold 创建新户号
// @Summary 创建户号
// @Description 创建一个新的户号，需要关联到楼号
// @Tags Household
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param household body HouseholdRequest true "户号信息"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /households [post]
func (c *HouseholdController) CreateHousehold() {
	var req HouseholdRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	household := &models.Household{
		HouseholdNumber: req.HouseholdNumber,
		BuildingID:      req.BuildingID,
	}
	if req.Status != "" {
		household.Status = req.Status
	} else {
		household.Status = "active"
	}

	householdService := c.Container.GetService("household").(services.InterfaceHouseholdService)
	if err := householdService.CreateHousehold(household); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建户号失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, household)
}

// 4. UpdateHousehold 更新户号信息
// @Summary 更新户号
// @Description 更新户号信息
// @Tags Household
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "户号ID"
// @Param household body HouseholdRequest true "户号信息"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /households/{id} [put]
func (c *HouseholdController) UpdateHousehold() {
	householdID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的户号ID")
		return
	}

	var req HouseholdRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	updates := make(map[string]interface{})
	if req.HouseholdNumber != "" {
		updates["household_number"] = req.HouseholdNumber
	}
	if req.BuildingID > 0 {
		updates["building_id"] = req.BuildingID
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}

	householdService := c.Container.GetService("household").(services.InterfaceHouseholdService)
	household, err := householdService.UpdateHousehold(uint(householdID), updates)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "更新户号失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, household)
}

// 5. DeleteHousehold 删除户号
// @Summary 删除户号
// @Description 删除指定的户号
// @Tags Household
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "户号ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /households/{id} [delete]
func (c *HouseholdController) DeleteHousehold() {
	householdID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的户号ID")
		return
	}

	householdService := c.Container.GetService("household").(services.InterfaceHouseholdService)
	if err := householdService.DeleteHousehold(uint(householdID)); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "删除户号失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}
