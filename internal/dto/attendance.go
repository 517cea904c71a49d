package dto

import "time"

// ── 考勤打卡模块 DTO ──

// CheckInRequest 签到请求
// Accuracy 为设备上报的 GPS 精度（米），可选
type CheckInRequest struct {
	JobID     string   `json:"job_id"    binding:"required,uuid"`
	Latitude  float64  `json:"latitude"  binding:"required,min=-90,max=90"`
	Longitude float64  `json:"longitude" binding:"required,min=-180,max=180"`
	Accuracy  *float64 `json:"accuracy"  binding:"omitempty,min=0"`
	Notes     *string  `json:"notes"     binding:"omitempty,max=1000"`
}

// CheckOutRequest 签退请求
// 签退时间一律取服务器时钟，不接受客户端传入
type CheckOutRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=1000"`
}

// SessionResponse 打卡记录响应
type SessionResponse struct {
	ID             string     `json:"id"`
	WorkerID       string     `json:"worker_id"`
	JobID          string     `json:"job_id"`
	CheckInTime    time.Time  `json:"check_in_time"`
	CheckOutTime   *time.Time `json:"check_out_time,omitempty"`
	HourlyRate     *float64   `json:"hourly_rate,omitempty"`
	DurationHours  *float64   `json:"duration_hours,omitempty"`
	BillableAmount *float64   `json:"billable_amount,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	Open           bool       `json:"open"`
}

// HistoryListRequest 打卡历史查询参数
type HistoryListRequest struct {
	PaginationRequest
	JobID     string `form:"job_id"     binding:"omitempty,uuid"`
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   binding:"omitempty,datetime=2006-01-02"`
	OpenOnly  bool   `form:"open_only"`
}

// BillableSummaryRequest 计费汇总查询参数
type BillableSummaryRequest struct {
	StartDate string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   binding:"required,datetime=2006-01-02"`
}

// BillableSummaryResponse 计费汇总响应
type BillableSummaryResponse struct {
	WorkerID      string  `json:"worker_id"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	SessionCount  int64   `json:"session_count"`
	TotalHours    float64 `json:"total_hours"`
	TotalBillable float64 `json:"total_billable"`
}
