package service

import "math"

const (
	earthRadiusMeters = 6371000

	// 围栏宽限缓冲（米），吸收 GPS 坐标抖动
	geofenceBufferMeters = 25.0
)

// GeofenceResult 围栏校验结果
type GeofenceResult struct {
	Accepted       bool
	DistanceMeters float64
}

// haversine 球面大圆距离（米）
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	latRad1 := lat1 * math.Pi / 180
	lonRad1 := lon1 * math.Pi / 180
	latRad2 := lat2 * math.Pi / 180
	lonRad2 := lon2 * math.Pi / 180

	diffLat := latRad2 - latRad1
	diffLon := lonRad2 - lonRad1

	a := math.Sin(diffLat/2)*math.Sin(diffLat/2) +
		math.Cos(latRad1)*math.Cos(latRad2)*
			math.Sin(diffLon/2)*math.Sin(diffLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// ValidateGeofence 校验工人位置是否落在工地围栏内
//
// 上报了 GPS 精度时按乐观口径处理：有效距离 = max(实际距离 − 精度, 0)，
// 即把精度误差的好处让给工人。判定条件：有效距离 <= 半径 + 25 米缓冲。
// 纯函数，无 I/O、无副作用。
func ValidateGeofence(workerLat, workerLon, siteLat, siteLon, siteRadiusMeters float64, gpsAccuracyMeters *float64) GeofenceResult {
	distance := haversine(workerLat, workerLon, siteLat, siteLon)

	effective := distance
	if gpsAccuracyMeters != nil {
		effective = math.Max(distance-*gpsAccuracyMeters, 0)
	}

	return GeofenceResult{
		Accepted:       effective <= siteRadiusMeters+geofenceBufferMeters,
		DistanceMeters: distance,
	}
}
