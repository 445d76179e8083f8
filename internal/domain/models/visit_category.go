package models

// CategoryClass 是来访类别的封闭类型，在类别查询时解析一次，
// 后续逻辑按该类型分支，不再到处比较字符串。
type CategoryClass string

const (
	CategoryClassGuest     CategoryClass = "guest"
	CategoryClassDailyHelp CategoryClass = "daily_help"
	CategoryClassOther     CategoryClass = "other"
)

// VisitCategory 表示来访类别（访客/快递/钟点工等）
type VisitCategory struct {
	BaseModel
	Name   string `gorm:"type:varchar(50);unique;not null" json:"name"`
	Kind   string `gorm:"type:varchar(30);not null" json:"kind"` // guest, delivery, daily_help, cab, other
	Status string `gorm:"type:varchar(20);default:'active'" json:"status"`
}

// Class 解析类别所属的类型
func (c *VisitCategory) Class() CategoryClass {
	switch c.Kind {
	case "guest":
		return CategoryClassGuest
	case "daily_help", "maid", "cook", "driver":
		return CategoryClassDailyHelp
	default:
		return CategoryClassOther
	}
}
