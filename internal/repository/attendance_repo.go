package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sidsagwekar16/construct-sync-backend-sub001/internal/model"
)

// AttendanceFilter 打卡历史查询条件
type AttendanceFilter struct {
	WorkerID string
	JobID    string
	From     *time.Time
	To       *time.Time
	OpenOnly bool
	Offset   int
	Limit    int
}

// BillableTotals 计费汇总聚合结果
type BillableTotals struct {
	SessionCount  int64   `gorm:"column:session_count"`
	TotalHours    float64 `gorm:"column:total_hours"`
	TotalBillable float64 `gorm:"column:total_billable"`
}

// AttendanceRepository 考勤打卡数据访问接口
//
// 并发安全边界：Create 依赖部分唯一索引 uniq_open_session_per_worker，
// 冲突时返回 gorm.ErrDuplicatedKey（需开启 TranslateError）；Close 的
// check_out_time IS NULL 谓词与赋值在同一条 UPDATE 中完成，保证同一记录
// 只会被签退一次。
type AttendanceRepository interface {
	// FindOpen 查询工人当前在岗记录；不存在时返回 gorm.ErrRecordNotFound
	FindOpen(ctx context.Context, workerID string) (*model.AttendanceSession, error)
	// Create 创建在岗记录；已有在岗记录时返回 gorm.ErrDuplicatedKey
	Create(ctx context.Context, session *model.AttendanceSession) error
	// Close 原子签退：仅当记录仍在岗且未删除时生效，丢失竞争返回 gorm.ErrRecordNotFound
	Close(ctx context.Context, sessionID, workerID string, checkOutTime time.Time,
		durationHours, billableAmount float64, notes *string) (*model.AttendanceSession, error)
	// List 分页查询打卡历史
	List(ctx context.Context, filter *AttendanceFilter) ([]model.AttendanceSession, int64, error)
	// SumBillable 统计时间段内已签退记录的工时与计费总额
	SumBillable(ctx context.Context, workerID string, from, to time.Time) (*BillableTotals, error)
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

// openScope 在岗记录谓词。软删除过滤由 gorm.DeletedAt 统一追加，
// 所有查询共用此 scope，避免漏掉条件导致"多条在岗记录"一类缺陷
func openScope(db *gorm.DB) *gorm.DB {
	return db.Where("check_out_time IS NULL")
}

func (r *attendanceRepo) FindOpen(ctx context.Context, workerID string) (*model.AttendanceSession, error) {
	var session model.AttendanceSession
	err := r.db.WithContext(ctx).
		Scopes(openScope).
		Where("worker_id = ?", workerID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *attendanceRepo) Create(ctx context.Context, session *model.AttendanceSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *attendanceRepo) Close(ctx context.Context, sessionID, workerID string, checkOutTime time.Time,
	durationHours, billableAmount float64, notes *string) (*model.AttendanceSession, error) {

	// 签退谓词与赋值必须在同一条 UPDATE 内，WHERE check_out_time IS NULL
	// 即是并发签退的仲裁点。notes 采用 COALESCE 合并：未提供时保留签到备注
	result := r.db.WithContext(ctx).
		Model(&model.AttendanceSession{}).
		Scopes(openScope).
		Where("session_id = ? AND worker_id = ?", sessionID, workerID).
		Updates(map[string]interface{}{
			"check_out_time":  checkOutTime,
			"duration_hours":  durationHours,
			"billable_amount": billableAmount,
			"notes":           gorm.Expr("COALESCE(?, notes)", notes),
			"updated_at":      checkOutTime,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// 记录不存在、已被签退或已被删除（查改之间的竞争丢失）
		return nil, gorm.ErrRecordNotFound
	}

	var session model.AttendanceSession
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *attendanceRepo) List(ctx context.Context, filter *AttendanceFilter) ([]model.AttendanceSession, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.AttendanceSession{})

	if filter.WorkerID != "" {
		db = db.Where("worker_id = ?", filter.WorkerID)
	}
	if filter.JobID != "" {
		db = db.Where("job_id = ?", filter.JobID)
	}
	if filter.From != nil {
		db = db.Where("check_in_time >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("check_in_time < ?", *filter.To)
	}
	if filter.OpenOnly {
		db = db.Scopes(openScope)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []model.AttendanceSession
	if err := db.
		Offset(filter.Offset).Limit(filter.Limit).
		Order("check_in_time DESC").
		Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *attendanceRepo) SumBillable(ctx context.Context, workerID string, from, to time.Time) (*BillableTotals, error) {
	var totals BillableTotals
	err := r.db.WithContext(ctx).
		Model(&model.AttendanceSession{}).
		Select(`COUNT(*) AS session_count,
			COALESCE(SUM(duration_hours), 0) AS total_hours,
			COALESCE(SUM(billable_amount), 0) AS total_billable`).
		Where("worker_id = ?", workerID).
		Where("check_out_time IS NOT NULL").
		Where("check_in_time >= ? AND check_in_time < ?", from, to).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}
