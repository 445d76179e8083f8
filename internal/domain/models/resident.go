package models

import (
	"time"

	"gorm.io/gorm"

	"visiting-service/pkg/utils"
)

// Resident represents home residents
type Resident struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(50);not null" json:"name"`
	Email       string    `gorm:"type:varchar(100)" json:"email"`
	Phone       string    `gorm:"type:varchar(20);unique;not null" json:"phone"`
	Password    string    `gorm:"type:varchar(100);not null" json:"-"` // 不在JSON中暴露密码
	HouseholdID uint      `json:"household_id"`                        // 住户所在户号
	Status      string    `gorm:"type:varchar(20);default:'active'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Household *Household `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
}

// BeforeCreate 是一个GORM钩子，在创建新记录前运行
func (r *Resident) BeforeCreate(tx *gorm.DB) error {
	// 如果提供了密码，对其进行哈希处理
	if r.Password != "" && len(r.Password) < 60 {
		hashedPassword, err := utils.HashPassword(r.Password)
		if err != nil {
			return err
		}
		r.Password = hashedPassword
	}
	return nil
}
