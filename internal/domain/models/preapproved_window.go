package models

import (
	"time"

	"gorm.io/gorm"
)

// PreapprovedWindow 表示预约来访的准入时间窗，与所属来访同生共灭。
// 一次性预约会生成访客通行码供门卫在闸口查询；
// 常客通行证(IsFrequent)按住户/目的地匹配，可以不带通行码。
type PreapprovedWindow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	VisitingID  uint      `gorm:"uniqueIndex;not null" json:"visiting_id"`
	InTime      time.Time `gorm:"not null" json:"in_time"`
	OutTime     time.Time `gorm:"not null" json:"out_time"`
	IsFrequent  bool      `gorm:"default:false" json:"is_frequent"`
	VisitorCode *string   `gorm:"type:varchar(20);uniqueIndex" json:"visitor_code,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Visiting *Visiting `gorm:"foreignKey:VisitingID" json:"visiting,omitempty"`
}
