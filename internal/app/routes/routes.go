package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"visiting-service/internal/app/controllers"
	"visiting-service/internal/app/middleware"
	"visiting-service/internal/domain/services/container"
	"visiting-service/internal/infrastructure/config"
)

// SetupRouter 初始化并返回配置好的路由和服务容器
func SetupRouter(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) (*gin.Engine, *container.ServiceContainer) {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
	// 设置正确的Content-Type，确保UTF-8编码
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Next()
	})

	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg, redisClient)
	// 初始化中间件
	middleware.InitAuthMiddleware(cfg, db)
	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r, serviceContainer
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册住户侧路由
	registerResidentRoutes(api, container)
	// 注册门卫侧路由
	registerGateRoutes(api, container)
	// 注册管理端路由
	registerAdminRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加IP限流中间件 - 每秒允许10个请求，最多突发20个请求
	api.Use(middleware.IPRateLimiter(10, 20))

	// 健康检查路由
	health := controllers.NewHealthCheckController()
	api.GET("/ping", health.Ping)
	api.GET("/health", health.Ping) // 兼容Docker健康检查的路由

	// 认证路由
	api.POST("/auth/login", controllers.HandleJWTFunc(container, "login"))

	// 访客类别字典，任意已登录角色可读
	api.GET("/categories",
		middleware.AuthenticateAny(),
		middleware.Cache(middleware.CacheConfig{Expiration: 5 * time.Minute}),
		controllers.HandleCategoryFunc(container, "getCategories"))
}

// registerResidentRoutes 注册住户侧路由
func registerResidentRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	resident := api.Group("/visitings")
	resident.Use(middleware.AuthenticateResident())
	resident.Use(middleware.IPRateLimiter(30, 50))

	resident.POST("", controllers.HandleVisitingFunc(container, "createVisiting"))
	resident.GET("", controllers.HandleVisitingFunc(container, "getVisitings"))
	resident.GET("/:id", controllers.HandleVisitingFunc(container, "getVisiting"))
	resident.PUT("/:id", controllers.HandleVisitingFunc(container, "updateVisiting"))
	resident.DELETE("/:id", controllers.HandleVisitingFunc(container, "deleteVisiting"))
	resident.POST("/:id/decision", controllers.HandleVisitingFunc(container, "decideVisiting"))
	resident.GET("/:id/events", controllers.HandleVisitingFunc(container, "getVisitingHistory"))
}

// registerGateRoutes 注册门卫侧路由
func registerGateRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	gate := api.Group("/gate")
	gate.Use(middleware.AuthenticateGateKeeper())
	gate.Use(middleware.IPRateLimiter(30, 50))

	gate.POST("/walkins", controllers.HandleGateFunc(container, "createWalkIn"))
	gate.POST("/walkins/batch", controllers.HandleGateFunc(container, "createWalkInBatch"))
	gate.GET("/codes/:code", controllers.HandleGateFunc(container, "lookupCode"))
	gate.POST("/visitings/:id/status", controllers.HandleGateFunc(container, "updateStatus"))
	gate.PUT("/visitings/:id/visitor", controllers.HandleGateFunc(container, "updateVisitorDetails"))
}

// registerAdminRoutes 注册管理端路由
func registerAdminRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	admin := api.Group("/")
	admin.Use(middleware.AuthenticateAdmin())
	admin.Use(middleware.IPRateLimiter(30, 50))

	// 楼号路由
	buildingGroup := admin.Group("/buildings")
	buildingGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 5 * time.Minute}), controllers.HandleBuildingFunc(container, "getBuildings"))
	buildingGroup.GET("/:id", middleware.Cache(middleware.CacheConfig{Expiration: 5 * time.Minute}), controllers.HandleBuildingFunc(container, "getBuilding"))
	buildingGroup.POST("", controllers.HandleBuildingFunc(container, "createBuilding"))
	buildingGroup.PUT("/:id", controllers.HandleBuildingFunc(container, "updateBuilding"))
	buildingGroup.DELETE("/:id", controllers.HandleBuildingFunc(container, "deleteBuilding"))
	buildingGroup.GET("/:id/households", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandleBuildingFunc(container, "getBuildingHouseholds"))

	// 户号路由
	householdGroup := admin.Group("/households")
	householdGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 5 * time.Minute}), controllers.HandleHouseholdFunc(container, "getHouseholds"))
	householdGroup.GET("/:id", middleware.Cache(middleware.CacheConfig{Expiration: 5 * time.Minute}), controllers.HandleHouseholdFunc(container, "getHousehold"))
	householdGroup.POST("", controllers.HandleHouseholdFunc(container, "createHousehold"))
	householdGroup.PUT("/:id", controllers.HandleHouseholdFunc(container, "updateHousehold"))
	householdGroup.DELETE("/:id", controllers.HandleHouseholdFunc(container, "deleteHousehold"))

	// 门卫路由
	gateKeeperGroup := admin.Group("/gate_keepers")
	gateKeeperGroup.GET("", controllers.HandleGateKeeperFunc(container, "getGateKeepers"))
	gateKeeperGroup.GET("/:id", controllers.HandleGateKeeperFunc(container, "getGateKeeper"))
	gateKeeperGroup.POST("", controllers.HandleGateKeeperFunc(container, "createGateKeeper"))
	gateKeeperGroup.PUT("/:id", controllers.HandleGateKeeperFunc(container, "updateGateKeeper"))
	gateKeeperGroup.DELETE("/:id", controllers.HandleGateKeeperFunc(container, "deleteGateKeeper"))
	gateKeeperGroup.PUT("/:id/buildings", controllers.HandleGateKeeperFunc(container, "assignBuildings"))

	// 访客类别路由
	categoryGroup := admin.Group("/categories")
	categoryGroup.POST("", controllers.HandleCategoryFunc(container, "createCategory"))
	categoryGroup.PUT("/:id", controllers.HandleCategoryFunc(container, "updateCategory"))
	categoryGroup.DELETE("/:id", controllers.HandleCategoryFunc(container, "deleteCategory"))

	// 访客档案路由
	visitorGroup := admin.Group("/visitors")
	visitorGroup.GET("", controllers.HandleVisitorFunc(container, "getVisitors"))
	visitorGroup.GET("/:id", controllers.HandleVisitorFunc(container, "getVisitor"))

	// 滞留清扫路由
	admin.POST("/sweeps/run", controllers.HandleSweepFunc(container, "runSweep"))
}
