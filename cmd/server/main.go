// @title           Visiting Service API
// @version         1.0
// @description     A multi-tenant residential visiting management service with preapprovals, gate operations and a status ledger

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer: ` prefix
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"visiting-service/internal/app/routes"
	"visiting-service/internal/domain/models"
	"visiting-service/internal/domain/services"
	"visiting-service/internal/infrastructure/config"
	"visiting-service/internal/infrastructure/database"
	Logger "visiting-service/pkg/logger"
)

func main() {
	// 设置最大处理器数量，提高并发性能
	runtime.GOMAXPROCS(runtime.NumCPU())

	// 初始化日志配置
	if err := Logger.SetupLogger(); err != nil {
		fmt.Printf("初始化日志配置失败: %v\n", err)
		os.Exit(1)
	}

	// 加载.env文件
	if err := godotenv.Load(); err != nil {
		Logger.Warning("无法加载.env文件: %v", err)
		// 即使加载失败也继续执行，可能环境变量已经通过其他方式设置
	} else {
		Logger.Info("成功加载.env文件")
	}

	// 获取配置
	cfg := config.GetConfig()

	// 创建优化的数据库连接池
	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		log.Fatalf("无法创建数据库连接池: %v", err)
	}
	db := pool.GetDB()

	// 根据配置执行不同的数据库操作
	if cfg.DBMigrationMode == "drop" {
		log.Println("警告: 在drop模式下运行，将删除并重建所有表")
		if err := dropAndRecreateTables(db); err != nil {
			log.Fatalf("删除并重建表失败: %v", err)
		}
	} else {
		log.Println("在标准模式下运行，将只添加新列和新表")
		if err := autoMigrate(db); err != nil {
			log.Fatalf("自动迁移失败: %v", err)
		}
	}

	// 确保系统中有管理员账户和基础类别字典
	ensureSeedData(db, cfg)

	// Redis客户端
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.GetRedisAddr(),
		DB:   cfg.RedisDB,
	})

	// 初始化路由和服务容器
	r, serviceContainer := routes.SetupRouter(db, cfg, redisClient)

	// 启动滞留签出后台任务
	sweeper := serviceContainer.GetService("sweeper").(services.InterfaceSweeperService)
	sweeper.Start(cfg.GetSweepInterval(), cfg.SweepDwellHours)
	defer sweeper.Stop()

	port := cfg.ServerPort

	// 打印系统信息
	printSystemInfo(pool)

	// 启动服务器 - 注意监听所有接口(0.0.0.0)而不是只监听localhost
	Logger.Info("服务器启动在: http://0.0.0.0:%s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		Logger.Error("启动服务器失败: %v", err)
		os.Exit(1)
	}
}

// autoMigrate 自动迁移所有模型（只添加新列和新表）
func autoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Admin{},
		&models.Building{},
		&models.Household{},
		&models.Resident{},
		&models.GateKeeper{},
		&models.GateKeeperBuildingRelation{},
		&models.VisitCategory{},
		&models.Visitor{},
		&models.Visiting{},
		&models.PreapprovedWindow{},
		&models.VisitingStatusEvent{},
	)

	if err != nil {
		return err
	}

	fmt.Println("Database migration completed")
	return nil
}

// dropAndRecreateTables 删除并重建所有表
func dropAndRecreateTables(db *gorm.DB) error {
	// 获取底层SQL连接
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB connection: %w", err)
	}

	// 禁用外键约束检查
	if _, err = sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		log.Printf("禁用外键约束检查失败: %v", err)
	}
	defer sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1")

	tables := []string{
		"admins", "buildings", "households", "residents", "gate_keepers",
		"gate_keeper_building_relations", "visit_categories", "visitors",
		"visitings", "preapproved_windows", "visiting_status_events",
	}

	for _, table := range tables {
		log.Printf("删除表: %s", table)
		if _, err := sqlDB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			log.Printf("删除表失败: %v", err)
		}
	}

	return autoMigrate(db)
}

// ensureSeedData 确保系统中有管理员账户和基础访客类别
func ensureSeedData(db *gorm.DB, cfg *config.Config) {
	var count int64
	db.Model(&models.Admin{}).Count(&count)

	if count == 0 {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.DefaultAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("生成密码哈希失败: %v", err)
		}

		admin := models.Admin{
			Username: "admin",
			Password: string(hashedPassword),
			Role:     "system_admin",
			Status:   "active",
		}

		if err := db.Create(&admin).Error; err != nil {
			log.Fatalf("创建默认管理员失败: %v", err)
		}

		log.Println("已创建默认管理员账户")
	}

	// 基础访客类别
	db.Model(&models.VisitCategory{}).Count(&count)
	if count == 0 {
		categories := []models.VisitCategory{
			{Name: "访客", Kind: "guest"},
			{Name: "快递", Kind: "delivery"},
			{Name: "家政", Kind: "daily_help"},
			{Name: "网约车", Kind: "cab"},
			{Name: "其他", Kind: "other"},
		}
		for i := range categories {
			if err := db.Create(&categories[i]).Error; err != nil {
				log.Printf("创建基础类别失败: %v", err)
			}
		}
		log.Println("已创建基础访客类别")
	}
}

// printSystemInfo 打印系统信息
func printSystemInfo(pool *database.ConnectionPool) {
	// 打印数据库连接池信息
	stats := pool.Stats()
	log.Printf("数据库连接池状态: %+v", stats)

	log.Printf("系统CPU核心数: %d", runtime.NumCPU())
	log.Printf("当前Go协程数: %d", runtime.NumGoroutine())

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Printf("系统内存使用: Alloc=%v MiB, TotalAlloc=%v MiB, Sys=%v MiB",
		m.Alloc/1024/1024, m.TotalAlloc/1024/1024, m.Sys/1024/1024)
}
