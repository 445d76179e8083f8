package models

import (
	"time"

	"gorm.io/gorm"
)

// VisitingStatus represents a visiting lifecycle state
type VisitingStatus string

const (
	StatusPending  VisitingStatus = "PENDING"
	StatusApproved VisitingStatus = "APPROVED"
	StatusDenied   VisitingStatus = "DENIED"
	StatusCheckin  VisitingStatus = "CHECKIN"
	StatusCheckout VisitingStatus = "CHECKOUT"
)

// IsValid 校验状态是否为五个枚举值之一
func (s VisitingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied, StatusCheckin, StatusCheckout:
		return true
	}
	return false
}

// CardStatus 是只读的展示状态投影，每次读取时从台账重新推导，从不落库
type CardStatus string

const (
	CardUpcoming CardStatus = "Upcoming"
	CardExpired  CardStatus = "Expired"
	CardVisited  CardStatus = "Visited"
	CardDenied   CardStatus = "Denied"
	CardActive   CardStatus = "Active"
	CardPending  CardStatus = "Pending"
	CardApproved CardStatus = "Approved"
)

// VisitingStatusEvent 是一条不可变的状态事实："T时刻，来访V转入状态S，
// 操作人可能是门卫G"。事件只追加，从不更新或删除；来访的当前状态
// 取决于自增ID最大的那条事件，而不是时间戳（避免时钟偏差歧义）。
type VisitingStatusEvent struct {
	// ID 是自增序号，同一来访内单调递增；
	// GateKeeperID 在门卫操作时记录，自动签出等系统动作为空
	ID           uint           `gorm:"primaryKey" json:"id"`
	VisitingID   uint           `gorm:"not null;index:idx_event_visiting_order,priority:1" json:"visiting_id"`
	Status       VisitingStatus `gorm:"type:varchar(20);not null" json:"status"`
	GateKeeperID *uint          `json:"gate_keeper_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Visiting   *Visiting   `gorm:"foreignKey:VisitingID" json:"visiting,omitempty"`
	GateKeeper *GateKeeper `gorm:"foreignKey:GateKeeperID" json:"gate_keeper,omitempty"`
}
