package model

import "time"

// Site 工地表 — 对应 sites
// 电子围栏三要素（纬度/经度/半径）均可为空；只要任一缺失即视为未配置围栏，
// 签到时跳过位置校验
type Site struct {
	SiteID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"site_id"`
	CompanyID       string    `gorm:"type:uuid;not null"                             json:"company_id"`
	Name            string    `gorm:"type:varchar(200);not null"                     json:"name"`
	Address         string    `gorm:"type:varchar(500)"                              json:"address,omitempty"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	GeofenceRadiusM *float64  `gorm:"column:geofence_radius_m"                       json:"geofence_radius_m,omitempty"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Site) TableName() string { return "sites" }

// HasGeofence 围栏数据是否完整
func (s *Site) HasGeofence() bool {
	return s.Latitude != nil && s.Longitude != nil && s.GeofenceRadiusM != nil
}
