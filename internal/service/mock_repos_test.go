package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/sidsagwekar16/construct-sync-backend-sub001/internal/model"
	"github.com/sidsagwekar16/construct-sync-backend-sub001/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock JobRepository ──

type mockJobRepo struct {
	jobs        map[string]*model.Job
	assignments map[string]map[string]bool // jobID → workerID 集合
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{
		jobs:        make(map[string]*model.Job),
		assignments: make(map[string]map[string]bool),
	}
}

func (m *mockJobRepo) GetByID(_ context.Context, id string) (*model.Job, error) {
	if j, ok := m.jobs[id]; ok {
		return j, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobRepo) IsWorkerAssigned(_ context.Context, jobID, workerID string) (bool, error) {
	return m.assignments[jobID][workerID], nil
}

func (m *mockJobRepo) assign(jobID, workerID string) {
	if m.assignments[jobID] == nil {
		m.assignments[jobID] = make(map[string]bool)
	}
	m.assignments[jobID][workerID] = true
}

// ── Mock AttendanceRepository ──

// mockAttendanceRepo 内存实现，用互斥锁模拟数据库的并发仲裁：
// Create 强制"每工人至多一条在岗记录"（对应部分唯一索引），
// Close 仅对仍在岗的记录生效（对应原子 UPDATE 的 WHERE 谓词）
type mockAttendanceRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.AttendanceSession
	seq      int
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{sessions: make(map[string]*model.AttendanceSession)}
}

func isDeleted(s *model.AttendanceSession) bool {
	return s.DeletedAt.Valid
}

func (m *mockAttendanceRepo) FindOpen(_ context.Context, workerID string) (*model.AttendanceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.WorkerID == workerID && s.CheckOutTime == nil && !isDeleted(s) {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) Create(_ context.Context, session *model.AttendanceSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.WorkerID == session.WorkerID && s.CheckOutTime == nil && !isDeleted(s) {
			return gorm.ErrDuplicatedKey
		}
	}
	if session.SessionID == "" {
		m.seq++
		session.SessionID = fmt.Sprintf("session-%03d", m.seq)
	}
	copied := *session
	m.sessions[session.SessionID] = &copied
	return nil
}

func (m *mockAttendanceRepo) Close(_ context.Context, sessionID, workerID string, checkOutTime time.Time,
	durationHours, billableAmount float64, notes *string) (*model.AttendanceSession, error) {

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.WorkerID != workerID || s.CheckOutTime != nil || isDeleted(s) {
		return nil, gorm.ErrRecordNotFound
	}
	s.CheckOutTime = &checkOutTime
	s.DurationHours = &durationHours
	s.BillableAmount = &billableAmount
	if notes != nil { // COALESCE(new, old)
		s.Notes = notes
	}
	copied := *s
	return &copied, nil
}

func (m *mockAttendanceRepo) List(_ context.Context, filter *repository.AttendanceFilter) ([]model.AttendanceSession, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []model.AttendanceSession
	for _, s := range m.sessions {
		if isDeleted(s) {
			continue
		}
		if filter.WorkerID != "" && s.WorkerID != filter.WorkerID {
			continue
		}
		if filter.JobID != "" && s.JobID != filter.JobID {
			continue
		}
		if filter.From != nil && s.CheckInTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !s.CheckInTime.Before(*filter.To) {
			continue
		}
		if filter.OpenOnly && s.CheckOutTime != nil {
			continue
		}
		matched = append(matched, *s)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CheckInTime.After(matched[j].CheckInTime)
	})

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if filter.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], total, nil
}

func (m *mockAttendanceRepo) SumBillable(_ context.Context, workerID string, from, to time.Time) (*repository.BillableTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	totals := &repository.BillableTotals{}
	for _, s := range m.sessions {
		if isDeleted(s) || s.WorkerID != workerID || s.CheckOutTime == nil {
			continue
		}
		if s.CheckInTime.Before(from) || !s.CheckInTime.Before(to) {
			continue
		}
		totals.SessionCount++
		if s.DurationHours != nil {
			totals.TotalHours += *s.DurationHours
		}
		if s.BillableAmount != nil {
			totals.TotalBillable += *s.BillableAmount
		}
	}
	return totals, nil
}
