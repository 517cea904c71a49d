package service

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrNegativeDuration 签退时间早于签到时间 — 时钟回拨或程序缺陷，必须显式失败
var ErrNegativeDuration = errors.New("签退时间早于签到时间")

// round2 四舍五入到 2 位小数（货币口径，0.005 入）
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// ComputeBilling 计算工时与计费金额
//
// durationHours = round2(秒数 / 3600)
// billableAmount = round2(durationHours × 时薪)，时薪缺失按 0 计
// 两个值仅在签退时计算一次，之后不再重算。
func ComputeBilling(checkInTime, checkOutTime time.Time, hourlyRate *float64) (durationHours, billableAmount float64, err error) {
	seconds := checkOutTime.Sub(checkInTime).Seconds()
	if seconds < 0 {
		return 0, 0, fmt.Errorf("%w: check_in=%s check_out=%s",
			ErrNegativeDuration,
			checkInTime.Format(time.RFC3339),
			checkOutTime.Format(time.RFC3339))
	}

	durationHours = round2(seconds / 3600)

	rate := 0.0
	if hourlyRate != nil {
		rate = *hourlyRate
	}
	billableAmount = round2(durationHours * rate)

	return durationHours, billableAmount, nil
}
