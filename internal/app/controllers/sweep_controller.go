package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"visiting-service/internal/domain/services"
	"visiting-service/internal/domain/services/container"
	"visiting-service/internal/error/code"
	"visiting-service/internal/error/response"
	"visiting-service/internal/infrastructure/config"
)

// SweepController 处理滞留来访的强制签出请求
type SweepController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewSweepController 创建一个新的清扫控制器
func NewSweepController(ctx *gin.Context, container *container.ServiceContainer) *SweepController {
	return &SweepController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleSweepFunc 返回一个处理清扫请求的Gin处理函数
func HandleSweepFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewSweepController(ctx, container)

		switch method {
		case "runSweep":
			controller.RunSweep()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// RunSweep 手动触发一次滞留签出
// @Summary 强制签出滞留来访
// @Description 把签入后滞留超过阈值的来访批量签出；与后台定时清扫使用同一套逻辑
// @Tags Sweep
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dwell_hours query int false "滞留小时阈值，默认取服务配置"
// @Success 200 {object} map[string]interface{}
// @Router /sweeps/run [post]
func (c *SweepController) RunSweep() {
	cfg := c.Container.GetService("config").(*config.Config)

	dwellHours := cfg.SweepDwellHours
	if raw := c.Ctx.Query("dwell_hours"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			dwellHours = parsed
		}
	}

	sweeperService := c.Container.GetService("sweeper").(services.InterfaceSweeperService)
	result, err := sweeperService.Sweep(time.Now(), dwellHours)
	if err != nil {
		respondDomainError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, result)
}
