package models

import (
	"time"

	"gorm.io/gorm"
)

// Visiting 表示一次到访（预期的或实际发生的），归属于唯一的目的地户号
// 和唯一的来访类别，创建后两者的归属不再变化。
type Visiting struct {
	ID          uint  `gorm:"primaryKey" json:"id"`
	HouseholdID uint  `gorm:"not null;index" json:"household_id"` // 目的地户号
	CategoryID  uint  `gorm:"not null" json:"category_id"`        // 来访类别
	VisitorID   *uint `gorm:"index" json:"visitor_id,omitempty"`  // 访客档案，匿名登记时为空
	ResidentID  *uint `json:"resident_id,omitempty"`              // 审批住户，首位响应者胜出

	// Name 展示姓名，门卫放行前必填；Metadata 是附加信息的JSON文本
	Name         string `gorm:"type:varchar(100)" json:"name"`
	Headcount    int    `gorm:"default:1" json:"headcount"`
	LeavePackage bool   `gorm:"default:false" json:"leave_package"`
	Metadata     string `gorm:"type:text" json:"metadata"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Household    *Household            `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
	Category     *VisitCategory        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Visitor      *Visitor              `gorm:"foreignKey:VisitorID" json:"visitor,omitempty"`
	Window       *PreapprovedWindow    `gorm:"foreignKey:VisitingID" json:"window,omitempty"`
	StatusEvents []VisitingStatusEvent `gorm:"foreignKey:VisitingID" json:"status_events,omitempty"`
}
