package model

import "time"

// AttendanceSession 考勤打卡记录表 — 对应 attendance_sessions
//
// CheckOutTime 为空表示"在岗"（open session）。核心不变量：同一工人同一时刻
// 至多一条 check_out_time IS NULL AND deleted_at IS NULL 的记录，由数据库
// 部分唯一索引 uniq_open_session_per_worker 保证。
//
// HourlyRate 是签到时刻的快照；DurationHours / BillableAmount 仅在签退时
// 计算一次，之后不再变更。
type AttendanceSession struct {
	SessionID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	WorkerID       string     `gorm:"type:uuid;not null"                             json:"worker_id"`
	JobID          string     `gorm:"type:uuid;not null"                             json:"job_id"`
	CheckInTime    time.Time  `gorm:"not null"                                       json:"check_in_time"`
	CheckOutTime   *time.Time `json:"check_out_time,omitempty"`
	HourlyRate     *float64   `gorm:"type:numeric(10,2)"                             json:"hourly_rate,omitempty"` // 签到时快照
	DurationHours  *float64   `gorm:"type:numeric(10,2)"                             json:"duration_hours,omitempty"`
	BillableAmount *float64   `gorm:"type:numeric(10,2)"                             json:"billable_amount,omitempty"`
	Notes          *string    `gorm:"type:text"                                      json:"notes,omitempty"`
	SoftDeleteModel

	// 关联
	Worker *User `gorm:"foreignKey:WorkerID;references:UserID" json:"worker,omitempty"`
	Job    *Job  `gorm:"foreignKey:JobID;references:JobID"     json:"job,omitempty"`
}

// TableName 指定表名
func (AttendanceSession) TableName() string { return "attendance_sessions" }

// IsOpen 是否为在岗记录
func (s *AttendanceSession) IsOpen() bool { return s.CheckOutTime == nil }
