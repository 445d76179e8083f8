package services

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"visiting-service/internal/domain/models"
	"visiting-service/internal/infrastructure/config"
)

// newTestDB 为每个测试创建独立的内存SQLite库并迁移全部模型
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// 内存库只能有一个连接，否则连接池会各自看到空库
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
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
	))

	return db
}

// newTestConfig 返回测试用配置，不读环境变量
func newTestConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:      "test-secret",
		PropertyTimezone:  "UTC",
		VisitorCodeLength: 8,
		SweepDwellHours:   48,
	}
}

// fakeNotifier 记录通知调用，替代MQTT推送
type fakeNotifier struct {
	mu         sync.Mutex
	events     []string
	suppressed []uint
}

func (f *fakeNotifier) NotifyStatusChange(eventType string, visitingID, householdID uint, actorID *uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
}

func (f *fakeNotifier) Suppress(visitingID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suppressed = append(f.suppressed, visitingID)
	return nil
}

func (f *fakeNotifier) Connect() error { return nil }

func (f *fakeNotifier) Disconnect() {}

func (f *fakeNotifier) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	copy(out, f.events)
	return out
}

// fakeRedis 是进程内的键值存储替身，并统计读命中次数
type fakeRedis struct {
	mu      sync.Mutex
	values  map[string][]byte
	sets    map[string]map[string]bool
	getHits int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		values: map[string][]byte{},
		sets:   map[string]map[string]bool{},
	}
}

func (r *fakeRedis) Set(key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = data
	return nil
}

func (r *fakeRedis) Get(key string, dest interface{}) error {
	r.mu.Lock()
	data, ok := r.values[key]
	if ok {
		r.getHits++
	}
	r.mu.Unlock()
	if !ok {
		return errors.New("redis: nil")
	}
	return json.Unmarshal(data, dest)
}

func (r *fakeRedis) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key)
	return nil
}

func (r *fakeRedis) AddToSet(key string, member interface{}) error {
	data, err := json.Marshal(member)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sets[key] == nil {
		r.sets[key] = map[string]bool{}
	}
	r.sets[key][string(data)] = true
	return nil
}

func (r *fakeRedis) IsSetMember(key string, member interface{}) (bool, error) {
	data, err := json.Marshal(member)
	if err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sets[key][string(data)], nil
}

// testServices 打包一次测试所需的全部服务和共享依赖
type testServices struct {
	DB         *gorm.DB
	Config     *config.Config
	Notifier   *fakeNotifier
	Ledger     InterfaceLedgerService
	Window     InterfaceWindowService
	Visitor    InterfaceVisitorService
	GuardAuth  InterfaceGuardAuthService
	Transition InterfaceTransitionService
	Visiting   InterfaceVisitingService
	Sweeper    InterfaceSweeperService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()
	notifier := &fakeNotifier{}

	ledger := NewLedgerService(db, cfg)
	window := NewWindowService(db, cfg, ledger, nil)
	visitor := NewVisitorService(db, cfg)
	guardAuth := NewGuardAuthService(db, cfg)
	transition := NewTransitionService(db, cfg, ledger, guardAuth, notifier)
	visiting := NewVisitingService(db, cfg, window, visitor, ledger, guardAuth, notifier)
	sweeper := NewSweeperService(db, cfg, ledger, notifier)

	return &testServices{
		DB:         db,
		Config:     cfg,
		Notifier:   notifier,
		Ledger:     ledger,
		Window:     window,
		Visitor:    visitor,
		GuardAuth:  guardAuth,
		Transition: transition,
		Visiting:   visiting,
		Sweeper:    sweeper,
	}
}

// fixture 是一套基础目录数据：一栋楼、两个户号、一位住户、一名门卫和一个类别
type fixture struct {
	Building      models.Building
	Household     models.Household // 有住户的户号
	EmptyHome     models.Household // 没有住户的户号
	Resident      models.Resident
	GateKeeper    models.GateKeeper
	OtherKeeper   models.GateKeeper // 未派驻本楼的门卫
	GuestCategory models.VisitCategory
	HelpCategory  models.VisitCategory
}

// seedVisiting 直接落库一条来访记录和可选的时间窗，绕开服务层
func seedVisiting(t *testing.T, db *gorm.DB, f *fixture, window *models.PreapprovedWindow) *models.Visiting {
	t.Helper()

	visiting := &models.Visiting{
		HouseholdID: f.Household.ID,
		CategoryID:  f.GuestCategory.ID,
		Name:        "李四",
		Headcount:   1,
	}
	require.NoError(t, db.Create(visiting).Error)

	if window != nil {
		window.VisitingID = visiting.ID
		require.NoError(t, db.Create(window).Error)
		visiting.Window = window
	}
	return visiting
}

// seedFixture 写入基础目录数据
func seedFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	f := &fixture{}

	f.Building = models.Building{BuildingName: "1号楼", BuildingCode: "B001", Status: "active"}
	require.NoError(t, db.Create(&f.Building).Error)

	f.Household = models.Household{HouseholdNumber: "1-1-101", BuildingID: f.Building.ID, Status: "active"}
	require.NoError(t, db.Create(&f.Household).Error)

	f.EmptyHome = models.Household{HouseholdNumber: "1-1-102", BuildingID: f.Building.ID, Status: "active"}
	require.NoError(t, db.Create(&f.EmptyHome).Error)

	f.Resident = models.Resident{
		Name:        "张三",
		Phone:       "13800000001",
		Password:    "secret123",
		HouseholdID: f.Household.ID,
		Status:      "active",
	}
	require.NoError(t, db.Create(&f.Resident).Error)

	f.GateKeeper = models.GateKeeper{
		Name:     "王强",
		Phone:    "13700000001",
		Username: "gate01",
		Password: "gate123",
		Status:   "active",
	}
	require.NoError(t, db.Create(&f.GateKeeper).Error)
	require.NoError(t, db.Create(&models.GateKeeperBuildingRelation{
		GateKeeperID: f.GateKeeper.ID,
		BuildingID:   f.Building.ID,
	}).Error)

	f.OtherKeeper = models.GateKeeper{
		Name:     "赵六",
		Phone:    "13700000002",
		Username: "gate02",
		Password: "gate123",
		Status:   "active",
	}
	require.NoError(t, db.Create(&f.OtherKeeper).Error)

	f.GuestCategory = models.VisitCategory{Name: "访客", Kind: "guest"}
	require.NoError(t, db.Create(&f.GuestCategory).Error)

	f.HelpCategory = models.VisitCategory{Name: "家政", Kind: "daily_help"}
	require.NoError(t, db.Create(&f.HelpCategory).Error)

	return f
}
