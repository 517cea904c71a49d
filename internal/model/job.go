package model

import "time"

// 任务状态。仅 planned / in_progress 允许签到
const (
	JobStatusPlanned    = "planned"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusCancelled  = "cancelled"
	JobStatusOnHold     = "on_hold"
	JobStatusArchived   = "archived"
	JobStatusDraft      = "draft"
)

// Job 工程任务表 — 对应 jobs（本模块只读）
type Job struct {
	JobID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"job_id"`
	CompanyID string     `gorm:"type:uuid;not null"                             json:"company_id"`
	SiteID    *string    `gorm:"type:uuid"                                      json:"site_id,omitempty"`
	Name      string     `gorm:"type:varchar(200);not null"                     json:"name"`
	Status    string     `gorm:"type:varchar(20);not null;default:'planned'"    json:"status"`
	StartDate *time.Time `gorm:"type:date"                                      json:"start_date,omitempty"`
	EndDate   *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	Site    *Site  `gorm:"foreignKey:SiteID;references:SiteID"   json:"site,omitempty"`
	Workers []User `gorm:"many2many:job_workers;joinForeignKey:JobID;joinReferences:UserID" json:"workers,omitempty"`
}

// TableName 指定表名
func (Job) TableName() string { return "jobs" }
