package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sidsagwekar16/construct-sync-backend-sub001/internal/dto"
	"github.com/sidsagwekar16/construct-sync-backend-sub001/internal/service"
	"github.com/sidsagwekar16/construct-sync-backend-sub001/pkg/response"
)

// AttendanceHandler 考勤打卡模块 HTTP 处理器
//
// 错误语义与状态码约定：
//   409 已处于签到状态；404 任务不存在（含跨租户）；
//   400 业务规则拒绝（状态/排期/指派/围栏/无在岗记录），message 带具体原因
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// CheckIn 签到
// POST /api/v1/check-ins/check-in
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	workerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	companyID, ok := MustGetCompanyID(c)
	if !ok {
		return
	}

	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	session, err := h.attendanceSvc.CheckIn(c.Request.Context(), workerID, companyID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyCheckedIn):
			response.Conflict(c, 30001, err.Error())
		case errors.Is(err, service.ErrJobNotFound):
			response.NotFound(c, 30002, err.Error())
		case errors.Is(err, service.ErrJobNotCheckable):
			response.BadRequest(c, 30003, err.Error())
		case errors.Is(err, service.ErrOutsideSchedule):
			response.BadRequest(c, 30004, err.Error())
		case errors.Is(err, service.ErrWorkerNotAssigned):
			response.BadRequest(c, 30005, err.Error())
		case errors.Is(err, service.ErrOutsideGeofence):
			response.BadRequest(c, 30006, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, session)
}

// CheckOut 签退
// POST /api/v1/check-ins/check-out
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	workerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	session, err := h.attendanceSvc.CheckOut(c.Request.Context(), workerID, &req)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSession) {
			response.BadRequest(c, 30007, err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, session)
}

// History 打卡历史
// GET /api/v1/check-ins
func (h *AttendanceHandler) History(c *gin.Context) {
	workerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.HistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sessions, total, err := h.attendanceSvc.History(c.Request.Context(), workerID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			response.BadRequest(c, 30008, err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	response.OKPage(c, sessions, total, req.GetPage(), req.GetPageSize())
}

// BillableSummary 计费汇总
// GET /api/v1/check-ins/summary
func (h *AttendanceHandler) BillableSummary(c *gin.Context) {
	workerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.BillableSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	summary, err := h.attendanceSvc.BillableSummary(c.Request.Context(), workerID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			response.BadRequest(c, 30008, err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, summary)
}
