package service

import (
	"go.uber.org/zap"

	"github.com/sidsagwekar16/construct-sync-backend-sub001/config"
	"github.com/sidsagwekar16/construct-sync-backend-sub001/internal/repository"
	"github.com/sidsagwekar16/construct-sync-backend-sub001/pkg/jwt"
	"github.com/sidsagwekar16/construct-sync-backend-sub001/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Attendance AttendanceService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Attendance: NewAttendanceService(repo, logger),
	}
}
