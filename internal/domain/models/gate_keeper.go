package models

import (
	"time"

	"gorm.io/gorm"

	"visiting-service/pkg/utils"
)

// GateKeeper 表示门卫，负责一个或多个楼号的闸口出入登记
type GateKeeper struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(50);not null" json:"name"`
	Phone     string    `gorm:"type:varchar(20);unique;not null" json:"phone"`
	Username  string    `gorm:"type:varchar(50);unique;not null" json:"username"`
	Password  string    `gorm:"type:varchar(100);not null" json:"-"` // 不在JSON中暴露密码
	Status    string    `gorm:"type:varchar(20);default:'active'" json:"status"`
	Remark    string    `gorm:"type:text" json:"remark"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联关系 - 通过关系表关联负责的楼号
	Buildings []Building `gorm:"many2many:gate_keeper_building_relations;" json:"buildings,omitempty"`
}

// BeforeCreate 是一个GORM钩子，在创建新记录前运行
func (g *GateKeeper) BeforeCreate(tx *gorm.DB) error {
	// 如果提供了密码，对其进行哈希处理
	if g.Password != "" && len(g.Password) < 60 {
		hashedPassword, err := utils.HashPassword(g.Password)
		if err != nil {
			return err
		}
		g.Password = hashedPassword
	}
	return nil
}
