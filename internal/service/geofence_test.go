package service

import (
	"math"
	"testing"
)

// 测试工地基准点
const (
	testSiteLat = 31.2304
	testSiteLon = 121.4737
)

// latOffsetMeters 沿纬度方向偏移指定米数
// 纯纬度偏移下 haversine 距离即为弧长，结果与 meters 一致（浮点误差内）
func latOffsetMeters(lat, meters float64) float64 {
	return lat + meters*180/(math.Pi*earthRadiusMeters)
}

func TestValidateGeofence_InsideRadius(t *testing.T) {
	workerLat := latOffsetMeters(testSiteLat, 50)

	result := ValidateGeofence(workerLat, testSiteLon, testSiteLat, testSiteLon, 100, nil)
	if !result.Accepted {
		t.Error("距离 50 米、半径 100 米时应接受")
	}
	if math.Abs(result.DistanceMeters-50) > 1 {
		t.Errorf("期望距离约 50 米，实际=%.2f", result.DistanceMeters)
	}
}

func TestValidateGeofence_FarOutside(t *testing.T) {
	workerLat := latOffsetMeters(testSiteLat, 300)
	zero := 0.0

	result := ValidateGeofence(workerLat, testSiteLon, testSiteLat, testSiteLon, 100, &zero)
	if result.Accepted {
		t.Error("距离 300 米、半径 100 米时应拒绝")
	}
	if math.Abs(result.DistanceMeters-300) > 1 {
		t.Errorf("期望距离约 300 米，实际=%.2f", result.DistanceMeters)
	}
}

func TestValidateGeofence_BufferBoundary(t *testing.T) {
	// 半径 100 + 缓冲 25 = 125 米内接受
	inside := latOffsetMeters(testSiteLat, 120)
	if r := ValidateGeofence(inside, testSiteLon, testSiteLat, testSiteLon, 100, nil); !r.Accepted {
		t.Errorf("120 米（125 米界内）应接受，实测距离=%.2f", r.DistanceMeters)
	}

	outside := latOffsetMeters(testSiteLat, 126)
	if r := ValidateGeofence(outside, testSiteLon, testSiteLat, testSiteLon, 100, nil); r.Accepted {
		t.Errorf("126 米（125 米界外）应拒绝，实测距离=%.2f", r.DistanceMeters)
	}
}

func TestValidateGeofence_AccuracyShrinksDistance(t *testing.T) {
	// 距离 300、精度 200：有效距离 100 <= 125，按乐观口径接受
	workerLat := latOffsetMeters(testSiteLat, 300)
	accuracy := 200.0

	result := ValidateGeofence(workerLat, testSiteLon, testSiteLat, testSiteLon, 100, &accuracy)
	if !result.Accepted {
		t.Error("精度补偿后有效距离 100 米应接受")
	}
	// 上报距离仍是实测值，不随精度缩水
	if math.Abs(result.DistanceMeters-300) > 1 {
		t.Errorf("期望实测距离约 300 米，实际=%.2f", result.DistanceMeters)
	}
}

func TestValidateGeofence_AccuracyNeverNegative(t *testing.T) {
	// 精度大于距离时有效距离取 0，而不是负数
	workerLat := latOffsetMeters(testSiteLat, 50)
	accuracy := 5000.0

	result := ValidateGeofence(workerLat, testSiteLon, testSiteLat, testSiteLon, 10, &accuracy)
	if !result.Accepted {
		t.Error("有效距离为 0 时应接受")
	}
}

func TestValidateGeofence_SamePoint(t *testing.T) {
	result := ValidateGeofence(testSiteLat, testSiteLon, testSiteLat, testSiteLon, 100, nil)
	if !result.Accepted {
		t.Error("原地打卡应接受")
	}
	if result.DistanceMeters != 0 {
		t.Errorf("期望距离 0，实际=%.6f", result.DistanceMeters)
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// 上海人民广场 → 上海站，约 3.2km（粗校验量级）
	d := haversine(31.2304, 121.4737, 31.2495, 121.4556)
	if d < 2500 || d > 4000 {
		t.Errorf("期望距离 2.5-4km 区间，实际=%.0f 米", d)
	}
}
