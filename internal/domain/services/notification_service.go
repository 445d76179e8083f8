package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"visiting-service/internal/domain/models"
	"visiting-service/internal/infrastructure/config"
	"visiting-service/pkg/logger"
)

// 通知事件类型。拒绝和签出各有两个变体：有无门卫操作人
// 对应不同的推送文案，所以是不同的事件。
const (
	NotifyVisitingRequested    = "visiting_requested"
	NotifyVisitingApproved     = "visiting_approved"
	NotifyVisitingDenied       = "visiting_denied"
	NotifyVisitingDeniedGate   = "visiting_denied_by_gate"
	NotifyVisitingCheckin      = "visiting_checkin"
	NotifyVisitingCheckout     = "visiting_checkout"
	NotifyVisitingAutoCheckout = "visiting_auto_checkout"
)

// 被软删除来访的通知抑制集合在Redis中的键
const suppressedSetKey = "visiting:notify:suppressed"

// InterfaceNotificationService 定义通知下发服务接口。
// 通知是单向的"发完即忘"：失败只记日志，绝不阻塞状态变更。
type InterfaceNotificationService interface {
	NotifyStatusChange(eventType string, visitingID, householdID uint, actorID *uint)
	Suppress(visitingID uint) error
	Connect() error
	Disconnect()
}

// NotificationService 通过MQTT向住户端/门卫端推送来访通知
type NotificationService struct {
	Config       *config.Config
	Redis        InterfaceRedisService
	Client       mqtt.Client
	publishMutex sync.Mutex
}

// notificationPayload 是推送消息体
type notificationPayload struct {
	MessageID   string `json:"message_id"`
	EventType   string `json:"event_type"`
	VisitingID  uint   `json:"visiting_id"`
	HouseholdID uint   `json:"household_id"`
	ActorID     *uint  `json:"actor_id,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// NewNotificationService 创建一个新的通知服务
func NewNotificationService(cfg *config.Config, redis InterfaceRedisService) InterfaceNotificationService {
	s := &NotificationService{
		Config: cfg,
		Redis:  redis,
	}

	if cfg.MQTTEnabled {
		opts := mqtt.NewClientOptions().
			AddBroker(cfg.MQTTBrokerURL).
			SetClientID(cfg.MQTTClientID).
			SetUsername(cfg.MQTTUsername).
			SetPassword(cfg.MQTTPassword).
			SetAutoReconnect(true).
			SetConnectRetry(true)

		opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
			logger.Warning("[通知] MQTT连接断开: %v", err)
		})

		s.Client = mqtt.NewClient(opts)
	}

	return s
}

// 1 Connect 连接MQTT服务器；未启用MQTT时为空操作（降级为仅记日志）
func (s *NotificationService) Connect() error {
	if s.Client == nil {
		logger.Info("[通知] MQTT未启用，通知降级为日志输出")
		return nil
	}

	token := s.Client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("MQTT连接超时")
	}
	if token.Error() != nil {
		return fmt.Errorf("MQTT连接失败: %v", token.Error())
	}
	return nil
}

// 2 Disconnect 断开MQTT连接
func (s *NotificationService) Disconnect() {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
}

// 3 NotifyStatusChange 按新状态下发一条领域通知。
// 已被软删除（抑制）的来访不再下发任何通知。
func (s *NotificationService) NotifyStatusChange(eventType string, visitingID, householdID uint, actorID *uint) {
	if s.isSuppressed(visitingID) {
		logger.Info("[通知] 来访 %d 已删除，跳过 %s 通知", visitingID, eventType)
		return
	}

	payload := notificationPayload{
		MessageID:   uuid.NewString(),
		EventType:   eventType,
		VisitingID:  visitingID,
		HouseholdID: householdID,
		ActorID:     actorID,
		Timestamp:   time.Now().Unix(),
	}

	topic := fmt.Sprintf("visiting/notifications/%d", householdID)
	if err := s.publish(topic, payload); err != nil {
		// 通知失败只记日志，不影响已提交的状态变更
		logger.Error("[通知] 下发 %s 失败 (来访 %d): %v", eventType, visitingID, err)
		return
	}
	logger.Info("[通知] 已下发 %s (来访 %d, 户号 %d)", eventType, visitingID, householdID)
}

// 4 Suppress 将来访加入通知抑制集合，住户删除预约时调用
func (s *NotificationService) Suppress(visitingID uint) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.AddToSet(suppressedSetKey, visitingID)
}

// isSuppressed 查询来访是否在抑制集合中；Redis不可用时放行
func (s *NotificationService) isSuppressed(visitingID uint) bool {
	if s.Redis == nil {
		return false
	}
	suppressed, err := s.Redis.IsSetMember(suppressedSetKey, visitingID)
	if err != nil {
		return false
	}
	return suppressed
}

// publish 序列化并发布一条消息，加锁避免并发发布冲突
func (s *NotificationService) publish(topic string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %v", err)
	}

	if s.Client == nil {
		// 降级路径：仅记录
		logger.Info("[通知] (MQTT未启用) %s: %s", topic, string(jsonData))
		return nil
	}

	s.publishMutex.Lock()
	defer s.publishMutex.Unlock()

	qos := byte(s.Config.MQTTQoS)
	token := s.Client.Publish(topic, qos, false, jsonData)
	if !token.WaitTimeout(3 * time.Second) {
		return fmt.Errorf("发布消息超时")
	}
	if token.Error() != nil {
		return fmt.Errorf("发布消息失败: %v", token.Error())
	}
	return nil
}

// NotificationEventType 根据新状态和是否有门卫操作人推导事件类型
func NotificationEventType(status models.VisitingStatus, hasActor bool) string {
	switch status {
	case models.StatusPending:
		return NotifyVisitingRequested
	case models.StatusApproved:
		return NotifyVisitingApproved
	case models.StatusDenied:
		if hasActor {
			return NotifyVisitingDeniedGate
		}
		return NotifyVisitingDenied
	case models.StatusCheckin:
		return NotifyVisitingCheckin
	case models.StatusCheckout:
		if hasActor {
			return NotifyVisitingCheckout
		}
		return NotifyVisitingAutoCheckout
	}
	return ""
}
