package models

import "time"

// Visitor 表示访客档案，以手机号为唯一键。首次登记时创建，
// 之后同一手机号的新信息只做原地更新，不会重复建档。
type Visitor struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	CountryCode string `gorm:"type:varchar(8)" json:"country_code"`
	Mobile      string `gorm:"type:varchar(20);uniqueIndex;not null" json:"mobile"`

	// 证件信息
	DocumentID      string     `gorm:"type:varchar(50)" json:"document_id"`
	DocumentType    string     `gorm:"type:varchar(30)" json:"document_type"` // passport, emirates_id, etc.
	DocumentCountry string     `gorm:"type:varchar(50)" json:"document_country"`
	DocumentExpiry  *time.Time `json:"document_expiry,omitempty"`
	DocumentIssued  *time.Time `json:"document_issued,omitempty"`

	// 附加信息（职业、性别、车牌号等），JSON文本
	AdditionalDetails string `gorm:"type:text" json:"additional_details"`
	ProfilePicture    string `gorm:"type:varchar(255)" json:"profile_picture"`

	// Relations
	Visitings []Visiting `gorm:"foreignKey:VisitorID" json:"visitings,omitempty"`
}
