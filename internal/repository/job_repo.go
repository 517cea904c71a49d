package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sidsagwekar16/construct-sync-backend-sub001/internal/model"
)

// JobRepository 工程任务数据访问接口（打卡模块只读消费）
type JobRepository interface {
	// GetByID 查询任务及其关联工地（含围栏参数）
	GetByID(ctx context.Context, id string) (*model.Job, error)
	// IsWorkerAssigned 工人是否被指派到该任务
	IsWorkerAssigned(ctx context.Context, jobID, workerID string) (bool, error)
}

// jobRepo JobRepository 的 GORM 实现
type jobRepo struct {
	db *gorm.DB
}

// NewJobRepo 创建 JobRepository 实例
func NewJobRepo(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Preload("Site").
		Where("job_id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) IsWorkerAssigned(ctx context.Context, jobID, workerID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("job_workers").
		Where("job_id = ? AND user_id = ?", jobID, workerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
