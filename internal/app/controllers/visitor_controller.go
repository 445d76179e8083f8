package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"visiting-service/internal/domain/services"
	"visiting-service/internal/domain/services/container"
	"visiting-service/internal/error/code"
	"visiting-service/internal/error/response"
)

// VisitorController 处理访客档案查询请求
type VisitorController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewVisitorController 创建一个新的访客档案控制器
func NewVisitorController(ctx *gin.Context, container *container.ServiceContainer) *VisitorController {
	return &VisitorController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleVisitorFunc 返回一个处理访客档案请求的Gin处理函数
func HandleVisitorFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewVisitorController(ctx, container)

		switch method {
		case "getVisitors":
			controller.GetVisitors()
		case "getVisitor":
			controller.GetVisitor()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetVisitors 获取访客档案列表
// @Summary 获取访客档案列表
// @Description 分页获取访客档案，支持按姓名或手机号搜索
// @Tags Visitor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码，默认为1"
// @Param page_size query int false "每页条数，默认为10"
// @Param search query string false "按姓名或手机号搜索"
// @Success 200 {object} map[string]interface{}
// @Router /visitors [get]
func (c *VisitorController) GetVisitors() {
	page, _ := strconv.Atoi(c.Ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Ctx.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	search := c.Ctx.Query("search")

	visitorService := c.Container.GetService("visitor").(services.InterfaceVisitorService)
	visitors, total, err := visitorService.GetAllVisitors(page, pageSize, search)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "获取访客列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        visitors,
	})
}

// 2. GetVisitor 获取访客档案详情
// @Summary 获取访客档案
// @Description 根据ID获取访客档案详细信息
// @Tags Visitor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "访客ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /visitors/{id} [get]
func (c *VisitorController) GetVisitor() {
	visitorID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的访客ID")
		return
	}

	visitorService := c.Container.GetService("visitor").(services.InterfaceVisitorService)
	visitor, err := visitorService.GetVisitorByID(uint(visitorID))
	if err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, visitor)
}
