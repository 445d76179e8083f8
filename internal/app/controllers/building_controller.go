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

// InterfaceBuildingController 定义楼号控制器接口
type InterfaceBuildingController interface {
	GetBuildings()
	GetBuilding()
	CreateBuilding()
	UpdateBuilding()
	DeleteBuilding()
	GetBuildingHouseholds()
}

// BuildingController 处理楼号相关的请求
type BuildingController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewBuildingController 创建一个新的楼号控制器
func NewBuildingController(ctx *gin.Context, container *container.ServiceContainer) *BuildingController {
	return &BuildingController{
		Ctx:       ctx,
		Container: container,
	}
}

// BuildingRequest 表示楼号请求
type BuildingRequest struct {
	BuildingName string `json:"building_name" binding:"required" example:"东区1栋"`
	BuildingCode string `json:"building_code" binding:"required" example:"E1"`
	Address      string `json:"address" example:"东区小湖旁"`
	Status       string `json:"status" example:"active"` // active, inactive
}

// HandleBuildingFunc 返回一个处理楼号请求的Gin处理函数
func HandleBuildingFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewBuildingController(ctx, container)

		switch method {
		case "getBuildings":
			controller.GetBuildings()
		case "getBuilding":
			controller.GetBuilding()
		case "createBuilding":
			controller.CreateBuilding()
		case "updateBuilding":
			controller.UpdateBuilding()
		case "deleteBuilding":
			controller.DeleteBuilding()
		case "getBuildingHouseholds":
			controller.GetBuildingHouseholds()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetBuildings 获取所有楼号列表
// @Summary 获取所有楼号
// @Description 获取系统中所有楼号的列表
// @Tags Building
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码，默认为1"
// @Param page_size query int false "每页条数，默认为10"
// @Success 200 {object} map[string]interface{}
// @Router /buildings [get]
func (c *BuildingController) GetBuildings() {
	page, _ := strconv.Atoi(c.Ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Ctx.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	buildingService := c.Container.GetService("building").(services.InterfaceBuildingService)
	buildings, total, err := buildingService.GetAllBuildings(page, pageSize)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "获取楼号列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        buildings,
	})
}

// 2. GetBuilding 获取单个楼号详情
// @Summary 获取楼号详情
// @Description 根据ID获取楼号详细信息
// @Tags Building
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "楼号ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /buildings/{id} [get]
func (c *BuildingController) GetBuilding() {
	buildingID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的楼号ID")
		return
	}

	buildingService := c.Container.GetService("building").(services.InterfaceBuildingService)
	building, err := buildingService.GetBuildingByID(uint(buildingID))
	if err != nil {
		response.NotFound(c.Ctx, "楼号不存在: "+err.Error())
		return
	}

	response.Success(c.Ctx, building)
}

// 3. CreateBuilding 创建新楼号
// @Summary 创建楼号
// @Description 创建一个新的楼号
// @Tags Building
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param building body BuildingRequest true "楼号信息"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /buildings [post]
func (c *BuildingController) CreateBuilding() {
	var req BuildingRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	building := &models.Building{
		BuildingName: req.BuildingName,
		BuildingCode: req.BuildingCode,
		Address:      req.Address,
	}
	if req.Status != "" {
		building.Status = req.Status
	} else {
		building.Status = "active"
	}

	buildingService := c.Container.GetService("building").(services.InterfaceBuildingService)
	if err := buildingService.CreateBuilding(building); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建楼号失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, building)
}

// 4. UpdateBuilding 更新楼号信息
// @Summary 更新楼号
// @Description 更新楼号信息
// @Tags Building
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "楼号ID"
// @Param building body BuildingRequest true "楼号信息"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /buildings/{id} [put]
func (c *BuildingController) UpdateBuilding() {
	buildingID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的楼号ID")
		return
	}

	var req BuildingRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	updates := make(map[string]interface{})
	if req.BuildingName != "" {
		updates["building_name"] = req.BuildingName
	}
	if req.BuildingCode != "" {
		updates["building_code"] = req.BuildingCode
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}

	buildingService := c.Container.GetService("building").(services.InterfaceBuildingService)
	building, err := buildingService.UpdateBuilding(uint(buildingID), updates)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "更新楼号失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, building)
}

// 5. DeleteBuilding 删除楼号
// @Summary 删除楼号
// @Description 删除指定的楼号，下属仍有户号时拒绝删除
// @Tags Building
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "楼号ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /buildings/{id} [delete]
func (c *BuildingController) DeleteBuilding() {
	buildingID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的楼号ID")
		return
	}

	buildingService := c.Container.GetService("building").(services.InterfaceBuildingService)
	if err := buildingService.DeleteBuilding(uint(buildingID)); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "删除楼号失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// 6. GetBuildingHouseholds 获取楼号下的户号
// @Summary 获取楼号下的户号
// @Description 获取指定楼号下的所有户号
// @Tags Building
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "楼号ID"
// @Success 200 {object} map[string]interface{}
// @Router /buildings/{id}/households [get]
func (c *BuildingController) GetBuildingHouseholds() {
	buildingID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的楼号ID")
		return
	}

	buildingService := c.Container.GetService("building").(services.InterfaceBuildingService)
	households, err := buildingService.GetBuildingHouseholds(uint(buildingID))
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "获取楼号下户号失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, households)
}
