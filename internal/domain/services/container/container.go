package container

import (
	"log"
	"sync"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"visiting-service/internal/domain/services"
	"visiting-service/internal/infrastructure/config"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// 基础服务
	jwtService services.InterfaceJWTService

	// 数据存储服务
	redisService services.InterfaceRedisService

	// 通知服务
	notificationService services.InterfaceNotificationService

	// 到访生命周期服务
	ledgerService     services.InterfaceLedgerService
	windowService     services.InterfaceWindowService
	visitorService    services.InterfaceVisitorService
	guardAuthService  services.InterfaceGuardAuthService
	transitionService services.InterfaceTransitionService
	visitingService   services.InterfaceVisitingService
	sweeperService    services.InterfaceSweeperService

	// 目录服务
	buildingService   services.InterfaceBuildingService
	householdService  services.InterfaceHouseholdService
	gateKeeperService services.InterfaceGateKeeperService
	categoryService   services.InterfaceCategoryService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if db == nil {
		panic("数据库连接为空")
	}

	if cfg == nil {
		panic("配置为空")
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化基础服务
	c.jwtService = services.NewJWTService(c.config, c.db)
	c.redisService = services.NewRedisService(c.config)

	// 初始化通知服务并连接MQTT
	c.notificationService = services.NewNotificationService(c.config, c.redisService)
	if err := c.notificationService.Connect(); err != nil {
		log.Printf("MQTT服务连接失败: %v", err)
	}

	// 初始化到访生命周期服务
	c.ledgerService = services.NewLedgerService(c.db, c.config)
	c.windowService = services.NewWindowService(c.db, c.config, c.ledgerService, c.redisService)
	c.visitorService = services.NewVisitorService(c.db, c.config)
	c.guardAuthService = services.NewGuardAuthService(c.db, c.config)
	c.transitionService = services.NewTransitionService(c.db, c.config, c.ledgerService, c.guardAuthService, c.notificationService)
	c.visitingService = services.NewVisitingService(
		c.db, c.config,
		c.windowService, c.visitorService, c.ledgerService,
		c.guardAuthService, c.notificationService,
	)
	c.sweeperService = services.NewSweeperService(c.db, c.config, c.ledgerService, c.notificationService)

	// 初始化目录服务
	c.buildingService = services.NewBuildingService(c.db, c.config)
	c.householdService = services.NewHouseholdService(c.db, c.config)
	c.gateKeeperService = services.NewGateKeeperService(c.db, c.config)
	c.categoryService = services.NewCategoryService(c.db, c.config)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "notification":
		return c.notificationService
	case "ledger":
		return c.ledgerService
	case "window":
		return c.windowService
	case "visitor":
		return c.visitorService
	case "guard_auth":
		return c.guardAuthService
	case "transition":
		return c.transitionService
	case "visiting":
		return c.visitingService
	case "sweeper":
		return c.sweeperService
	case "building":
		return c.buildingService
	case "household":
		return c.householdService
	case "gate_keeper":
		return c.gateKeeperService
	case "category":
		return c.categoryService
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
