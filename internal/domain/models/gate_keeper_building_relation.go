package models

import "time"

// GateKeeperBuildingRelation 表示门卫和楼号之间的多对多关系
type GateKeeperBuildingRelation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	GateKeeperID uint      `gorm:"not null;index" json:"gate_keeper_id"` // 门卫ID
	BuildingID   uint      `gorm:"not null;index" json:"building_id"`    // 楼号ID
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// 关联
	GateKeeper *GateKeeper `gorm:"foreignKey:GateKeeperID" json:"gate_keeper,omitempty"`
	Building   *Building   `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
}
