package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sidsagwekar16/construct-sync-backend-sub001/internal/dto"
	"github.com/sidsagwekar16/construct-sync-backend-sub001/internal/model"
	"github.com/sidsagwekar16/construct-sync-backend-sub001/internal/repository"
)

// ── 考勤模块业务错误 ──

var (
	ErrJobNotFound       = errors.New("任务不存在")
	ErrAlreadyCheckedIn  = errors.New("已处于签到状态，请先签退")
	ErrNoActiveSession   = errors.New("当前没有进行中的签到")
	ErrWorkerNotAssigned = errors.New("未被指派到该任务，无法签到")
	ErrJobNotCheckable   = errors.New("任务当前状态不允许签到")
	ErrOutsideSchedule   = errors.New("不在任务排期内")
	ErrOutsideGeofence   = errors.New("不在工地围栏范围内")
	ErrInvalidDateRange  = errors.New("日期范围无效")
)

// AttendanceService 考勤打卡业务接口
//
// 状态机（按工人）：无在岗记录 --签到--> 在岗 --签退--> 无在岗记录。
// 签到/签退的并发正确性由存储层保证（部分唯一索引 + 原子 UPDATE），
// 本层的预检查只用于给出友好错误信息。
type AttendanceService interface {
	// 签到
	CheckIn(ctx context.Context, workerID, companyID string, req *dto.CheckInRequest) (*dto.SessionResponse, error)
	// 签退（签退时间取服务器时钟）
	CheckOut(ctx context.Context, workerID string, req *dto.CheckOutRequest) (*dto.SessionResponse, error)
	// 打卡历史（分页）
	History(ctx context.Context, workerID string, req *dto.HistoryListRequest) ([]dto.SessionResponse, int64, error)
	// 计费汇总
	BillableSummary(ctx context.Context, workerID string, req *dto.BillableSummaryRequest) (*dto.BillableSummaryResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time // 可注入时钟，便于测试
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger, now: time.Now}
}

// ════════════════════════════════════════════════════════════
// CheckIn — 签到
// ════════════════════════════════════════════════════════════

func (s *attendanceService) CheckIn(ctx context.Context, workerID, companyID string, req *dto.CheckInRequest) (*dto.SessionResponse, error) {
	// 1. 预检查在岗记录（唯一索引才是正确性保证，这里只为友好报错）
	_, err := s.repo.Attendance.FindOpen(ctx, workerID)
	if err == nil {
		return nil, ErrAlreadyCheckedIn
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询在岗记录失败", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}

	// 2. 任务必须存在、属于本公司、状态允许签到
	job, err := s.repo.Job.GetByID(ctx, req.JobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		s.logger.Error("查询任务失败", zap.String("job_id", req.JobID), zap.Error(err))
		return nil, err
	}
	if job.CompanyID != companyID {
		// 跨租户访问按不存在处理，不泄露任务存在性
		return nil, ErrJobNotFound
	}
	if err := checkJobStatus(job.Status); err != nil {
		return nil, err
	}

	// 3. 排期门禁
	if err := checkJobSchedule(job, s.now()); err != nil {
		return nil, err
	}

	// 4. 指派校验
	assigned, err := s.repo.Job.IsWorkerAssigned(ctx, req.JobID, workerID)
	if err != nil {
		s.logger.Error("查询任务指派失败",
			zap.String("job_id", req.JobID),
			zap.String("worker_id", workerID),
			zap.Error(err))
		return nil, err
	}
	if !assigned {
		return nil, ErrWorkerNotAssigned
	}

	// 5. 围栏校验（工地未配置完整围栏时跳过）
	if job.Site != nil && job.Site.HasGeofence() {
		result := ValidateGeofence(
			req.Latitude, req.Longitude,
			*job.Site.Latitude, *job.Site.Longitude,
			*job.Site.GeofenceRadiusM,
			req.Accuracy,
		)
		if !result.Accepted {
			return nil, geofenceError(result, *job.Site.GeofenceRadiusM, req.Accuracy)
		}
	}

	// 6. 快照当前时薪
	worker, err := s.repo.User.GetByID(ctx, workerID)
	if err != nil {
		s.logger.Error("查询工人信息失败", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}

	// 7. 落库；唯一索引冲突说明并发签到输掉了竞争
	session := &model.AttendanceSession{
		WorkerID:    workerID,
		JobID:       req.JobID,
		CheckInTime: s.now(),
		HourlyRate:  worker.HourlyRate,
		Notes:       req.Notes,
	}
	session.CreatedBy = &workerID
	session.UpdatedBy = &workerID

	if err := s.repo.Attendance.Create(ctx, session); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyCheckedIn
		}
		s.logger.Error("创建打卡记录失败",
			zap.String("worker_id", workerID),
			zap.String("job_id", req.JobID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("签到成功",
		zap.String("worker_id", workerID),
		zap.String("job_id", req.JobID),
		zap.String("session_id", session.SessionID))

	return toSessionResponse(session), nil
}

// checkJobStatus 任务状态门禁，逐状态给出具体原因
func checkJobStatus(status string) error {
	switch status {
	case model.JobStatusPlanned, model.JobStatusInProgress:
		return nil
	case model.JobStatusCompleted:
		return fmt.Errorf("%w：任务已完工", ErrJobNotCheckable)
	case model.JobStatusCancelled:
		return fmt.Errorf("%w：任务已取消", ErrJobNotCheckable)
	case model.JobStatusOnHold:
		return fmt.Errorf("%w：任务已暂停", ErrJobNotCheckable)
	case model.JobStatusArchived:
		return fmt.Errorf("%w：任务已归档", ErrJobNotCheckable)
	case model.JobStatusDraft:
		return fmt.Errorf("%w：任务仍是草稿，尚未开放", ErrJobNotCheckable)
	default:
		return fmt.Errorf("%w：任务状态 %s", ErrJobNotCheckable, status)
	}
}

// checkJobSchedule 排期门禁：开工日前、截止日后不允许签到，错误信息点名日期
func checkJobSchedule(job *model.Job, now time.Time) error {
	if job.StartDate != nil && now.Before(*job.StartDate) {
		return fmt.Errorf("%w：任务 %s 才开工", ErrOutsideSchedule, job.StartDate.Format("2006-01-02"))
	}
	if job.EndDate != nil {
		// 截止日当天整天有效
		endExclusive := job.EndDate.AddDate(0, 0, 1)
		if !now.Before(endExclusive) {
			return fmt.Errorf("%w：任务已于 %s 截止", ErrOutsideSchedule, job.EndDate.Format("2006-01-02"))
		}
	}
	return nil
}

// geofenceError 构造围栏拒绝信息：附带实测距离与允许半径；
// 精度值大于围栏半径时提示改善 GPS 信号
func geofenceError(result GeofenceResult, radiusMeters float64, accuracy *float64) error {
	msg := fmt.Sprintf("距离工地约 %.0f 米，超出允许范围（半径 %.0f 米）", result.DistanceMeters, radiusMeters)
	if accuracy != nil && *accuracy > radiusMeters {
		msg += fmt.Sprintf("；当前 GPS 精度 ±%.0f 米过低，请到开阔处重试", *accuracy)
	}
	return fmt.Errorf("%w：%s", ErrOutsideGeofence, msg)
}

// ════════════════════════════════════════════════════════════
// CheckOut — 签退
// ════════════════════════════════════════════════════════════

func (s *attendanceService) CheckOut(ctx context.Context, workerID string, req *dto.CheckOutRequest) (*dto.SessionResponse, error) {
	// 1. 查找在岗记录
	open, err := s.repo.Attendance.FindOpen(ctx, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSession
		}
		s.logger.Error("查询在岗记录失败", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}

	// 2. 按服务器时钟计算工时与计费
	checkOutTime := s.now()
	durationHours, billableAmount, err := ComputeBilling(open.CheckInTime, checkOutTime, open.HourlyRate)
	if err != nil {
		s.logger.Error("计费计算失败",
			zap.String("worker_id", workerID),
			zap.String("session_id", open.SessionID),
			zap.Error(err))
		return nil, err
	}

	// 3. 原子签退；RowsAffected=0 表示记录在查改之间已被签退或删除
	closed, err := s.repo.Attendance.Close(ctx, open.SessionID, workerID, checkOutTime,
		durationHours, billableAmount, req.Notes)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSession
		}
		s.logger.Error("签退落库失败",
			zap.String("worker_id", workerID),
			zap.String("session_id", open.SessionID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("签退成功",
		zap.String("worker_id", workerID),
		zap.String("session_id", closed.SessionID),
		zap.Float64("duration_hours", durationHours),
		zap.Float64("billable_amount", billableAmount))

	return toSessionResponse(closed), nil
}

// ════════════════════════════════════════════════════════════
// 只读查询 — 历史与汇总
// ════════════════════════════════════════════════════════════

func (s *attendanceService) History(ctx context.Context, workerID string, req *dto.HistoryListRequest) ([]dto.SessionResponse, int64, error) {
	from, to, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, 0, err
	}

	filter := &repository.AttendanceFilter{
		WorkerID: workerID,
		JobID:    req.JobID,
		From:     from,
		To:       to,
		OpenOnly: req.OpenOnly,
		Offset:   req.GetOffset(),
		Limit:    req.GetPageSize(),
	}

	sessions, total, err := s.repo.Attendance.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询打卡历史失败", zap.String("worker_id", workerID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, *toSessionResponse(&sessions[i]))
	}
	return result, total, nil
}

func (s *attendanceService) BillableSummary(ctx context.Context, workerID string, req *dto.BillableSummaryRequest) (*dto.BillableSummaryResponse, error) {
	from, to, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if from == nil || to == nil {
		return nil, fmt.Errorf("%w: 必须提供 start_date 与 end_date", ErrInvalidDateRange)
	}

	totals, err := s.repo.Attendance.SumBillable(ctx, workerID, *from, *to)
	if err != nil {
		s.logger.Error("查询计费汇总失败", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}

	return &dto.BillableSummaryResponse{
		WorkerID:      workerID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		SessionCount:  totals.SessionCount,
		TotalHours:    totals.TotalHours,
		TotalBillable: totals.TotalBillable,
	}, nil
}

// parseDateRange 解析 YYYY-MM-DD 日期范围；结束日期按当天整天计（右开区间）
func parseDateRange(startDate, endDate string) (from, to *time.Time, err error) {
	var startT, endT time.Time
	if startDate != "" {
		startT, err = time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: start_date=%s", ErrInvalidDateRange, startDate)
		}
		from = &startT
	}
	if endDate != "" {
		endT, err = time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: end_date=%s", ErrInvalidDateRange, endDate)
		}
		exclusive := endT.AddDate(0, 0, 1)
		to = &exclusive
	}
	if from != nil && to != nil && endT.Before(startT) {
		return nil, nil, fmt.Errorf("%w: 结束日期早于开始日期", ErrInvalidDateRange)
	}
	return from, to, nil
}

// toSessionResponse 模型 → 响应 DTO
func toSessionResponse(s *model.AttendanceSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		ID:             s.SessionID,
		WorkerID:       s.WorkerID,
		JobID:          s.JobID,
		CheckInTime:    s.CheckInTime,
		CheckOutTime:   s.CheckOutTime,
		HourlyRate:     s.HourlyRate,
		DurationHours:  s.DurationHours,
		BillableAmount: s.BillableAmount,
		Notes:          s.Notes,
		Open:           s.IsOpen(),
	}
}
