package model

import "time"

// Company 公司表 — 对应 companies（多租户根实体，本模块只读）
type Company struct {
	CompanyID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"company_id"`
	Name      string    `gorm:"type:varchar(200);not null"                     json:"name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Company) TableName() string { return "companies" }
