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

// CategoryController 处理访客类别字典请求
type CategoryController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewCategoryController 创建一个新的类别控制器
func NewCategoryController(ctx *gin.Context, container *container.ServiceContainer) *CategoryController {
	return &CategoryController{
		Ctx:       ctx,
		Container: container,
	}
}

// CategoryRequest 表示类别请求
type CategoryRequest struct {
	Name string `json:"name" binding:"required" example:"快递"`
	Kind string `json:"kind" example:"guest"` // guest, daily_help, other
}

// HandleCategoryFunc 返回一个处理类别请求的Gin处理函数
func HandleCategoryFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewCategoryController(ctx, container)

		switch method {
		case "getCategories":
			controller.GetCategories()
		case "createCategory":
			controller.CreateCategory()
		case "updateCategory":
			controller.UpdateCategory()
		case "deleteCategory":
			controller.DeleteCategory()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetCategories 获取所有访客类别
// @Summary 获取访客类别
// @Description 获取全部访客类别字典
// @Tags Category
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /categories [get]
func (c *CategoryController) GetCategories() {
	categoryService := c.Container.GetService("category").(services.InterfaceCategoryService)
	categories, err := categoryService.GetAllCategories()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "获取类别列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, categories)
}

// 2. CreateCategory 创建访客类别
// @Summary 创建访客类别
// @Description 新增一个访客类别
// @Tags Category
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category body CategoryRequest true "类别信息"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /categories [post]
func (c *CategoryController) CreateCategory() {
	var req CategoryRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	category := &models.VisitCategory{
		Name: req.Name,
		Kind: req.Kind,
	}

	categoryService := c.Container.GetService("category").(services.InterfaceCategoryService)
	if err := categoryService.CreateCategory(category); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建类别失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, category)
}

// 3. UpdateCategory 更新访客类别
// @Summary 更新访客类别
// @Description 更新访客类别信息
// @Tags Category
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Param category body CategoryRequest true "类别信息"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /categories/{id} [put]
func (c *CategoryController) UpdateCategory() {
	categoryID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的类别ID")
		return
	}

	var req CategoryRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Kind != "" {
		updates["kind"] = req.Kind
	}

	categoryService := c.Container.GetService("category").(services.InterfaceCategoryService)
	category, err := categoryService.UpdateCategory(uint(categoryID), updates)
	if err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, category)
}

// 4. DeleteCategory 删除访客类别
// @Summary 删除访客类别
// @Description 删除指定的访客类别，已被引用时拒绝
// @Tags Category
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /categories/{id} [delete]
func (c *CategoryController) DeleteCategory() {
	categoryID, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil {
		response.ParamError(c.Ctx, "无效的类别ID")
		return
	}

	categoryService := c.Container.GetService("category").(services.InterfaceCategoryService)
	if err := categoryService.DeleteCategory(uint(categoryID)); err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, nil)
}
