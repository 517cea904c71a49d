//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sidsagwekar16/construct-sync-backend-sub001/internal/model"
)

// 集成测试需要真实 PostgreSQL：
//
//	TEST_DATABASE_DSN="host=localhost user=postgres password=postgres dbname=construct_sync_test port=5432 sslmode=disable" \
//	go test -tags integration ./internal/repository/
var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		fmt.Println("未设置 TEST_DATABASE_DSN，跳过集成测试")
		os.Exit(0)
	}

	// 关闭外键生成：测试数据用随机 UUID，不依赖 users / jobs 表
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		fmt.Printf("连接测试库失败: %v\n", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(&model.AttendanceSession{}); err != nil {
		fmt.Printf("建表失败: %v\n", err)
		os.Exit(1)
	}
	// AutoMigrate 不支持部分唯一索引，并发仲裁依赖它，手动补上
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_open_session_per_worker
		    ON attendance_sessions (worker_id)
		    WHERE check_out_time IS NULL AND deleted_at IS NULL
	`).Error; err != nil {
		fmt.Printf("创建部分唯一索引失败: %v\n", err)
		os.Exit(1)
	}

	testDB = db
	code := m.Run()

	testDB.Exec("DROP TABLE IF EXISTS attendance_sessions")
	os.Exit(code)
}

func cleanSessions(t *testing.T) {
	t.Helper()
	if err := testDB.Exec("DELETE FROM attendance_sessions").Error; err != nil {
		t.Fatalf("清理测试数据失败: %v", err)
	}
}

func newOpenSession(workerID string) *model.AttendanceSession {
	rate := 25.0
	return &model.AttendanceSession{
		SessionID:   uuid.NewString(),
		WorkerID:    workerID,
		JobID:       uuid.NewString(),
		CheckInTime: time.Now().UTC().Truncate(time.Microsecond),
		HourlyRate:  &rate,
	}
}

func TestAttendanceRepo_ConcurrentCreate(t *testing.T) {
	cleanSessions(t)
	repo := NewAttendanceRepo(testDB)
	workerID := uuid.NewString()

	// 同一工人并发建两条在岗记录，部分唯一索引保证恰好一条成功
	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.Create(context.Background(), newOpenSession(workerID))
		}()
	}
	wg.Wait()
	close(results)

	var success, duplicated int
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, gorm.ErrDuplicatedKey):
			duplicated++
		default:
			t.Fatalf("意外错误: %v", err)
		}
	}
	if success != 1 || duplicated != 1 {
		t.Errorf("期望 1 成功 1 冲突，实际 success=%d duplicated=%d", success, duplicated)
	}
}

func TestAttendanceRepo_CreateAfterClose(t *testing.T) {
	cleanSessions(t)
	repo := NewAttendanceRepo(testDB)
	workerID := uuid.NewString()

	first := newOpenSession(workerID)
	if err := repo.Create(context.Background(), first); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if _, err := repo.Close(context.Background(), first.SessionID, workerID,
		time.Now().UTC(), 8.00, 200.00, nil); err != nil {
		t.Fatalf("Close 应成功: %v", err)
	}

	// 签退后索引释放，可以再次签到
	if err := repo.Create(context.Background(), newOpenSession(workerID)); err != nil {
		t.Errorf("签退后再次 Create 应成功: %v", err)
	}
}

func TestAttendanceRepo_CloseTwice(t *testing.T) {
	cleanSessions(t)
	repo := NewAttendanceRepo(testDB)
	workerID := uuid.NewString()

	session := newOpenSession(workerID)
	if err := repo.Create(context.Background(), session); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	closed, err := repo.Close(context.Background(), session.SessionID, workerID,
		time.Now().UTC(), 2.03, 50.75, nil)
	if err != nil {
		t.Fatalf("首次 Close 应成功: %v", err)
	}
	if closed.CheckOutTime == nil || closed.DurationHours == nil || *closed.DurationHours != 2.03 {
		t.Errorf("签退结果不符: %+v", closed)
	}

	// 第二次 Close 的 UPDATE 谓词不再命中
	_, err = repo.Close(context.Background(), session.SessionID, workerID,
		time.Now().UTC(), 2.03, 50.75, nil)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("重复 Close 期望 ErrRecordNotFound，实际: %v", err)
	}
}

func TestAttendanceRepo_CloseNotesCoalesce(t *testing.T) {
	cleanSessions(t)
	repo := NewAttendanceRepo(testDB)
	workerID := uuid.NewString()

	session := newOpenSession(workerID)
	notes := "上午浇筑"
	session.Notes = &notes
	if err := repo.Create(context.Background(), session); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	// notes 传 NULL → COALESCE 保留签到备注
	closed, err := repo.Close(context.Background(), session.SessionID, workerID,
		time.Now().UTC(), 1.00, 25.00, nil)
	if err != nil {
		t.Fatalf("Close 应成功: %v", err)
	}
	if closed.Notes == nil || *closed.Notes != "上午浇筑" {
		t.Errorf("期望保留签到备注，实际=%v", closed.Notes)
	}
}

func TestAttendanceRepo_FindOpenExcludesSoftDeleted(t *testing.T) {
	cleanSessions(t)
	repo := NewAttendanceRepo(testDB)
	workerID := uuid.NewString()

	session := newOpenSession(workerID)
	if err := repo.Create(context.Background(), session); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if err := testDB.Where("session_id = ?", session.SessionID).
		Delete(&model.AttendanceSession{}).Error; err != nil {
		t.Fatalf("软删除失败: %v", err)
	}

	_, err := repo.FindOpen(context.Background(), workerID)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("软删除记录不应命中在岗查询，实际: %v", err)
	}

	// 软删除释放唯一索引，新签到不受影响
	if err := repo.Create(context.Background(), newOpenSession(workerID)); err != nil {
		t.Errorf("软删除后 Create 应成功: %v", err)
	}
}

func TestAttendanceRepo_ListAndSum(t *testing.T) {
	cleanSessions(t)
	repo := NewAttendanceRepo(testDB)
	workerID := uuid.NewString()

	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		checkIn := base.AddDate(0, 0, i)
		checkOut := checkIn.Add(8 * time.Hour)
		hours, amount := 8.00, 200.00
		s := &model.AttendanceSession{
			SessionID:      uuid.NewString(),
			WorkerID:       workerID,
			JobID:          uuid.NewString(),
			CheckInTime:    checkIn,
			CheckOutTime:   &checkOut,
			DurationHours:  &hours,
			BillableAmount: &amount,
		}
		if err := testDB.Create(s).Error; err != nil {
			t.Fatalf("造数失败: %v", err)
		}
	}

	from := base
	to := base.AddDate(0, 0, 2) // 半开区间，只含前两天
	sessions, total, err := repo.List(context.Background(), &AttendanceFilter{
		WorkerID: workerID,
		From:     &from,
		To:       &to,
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 2 || len(sessions) != 2 {
		t.Errorf("期望 2 条，实际 total=%d len=%d", total, len(sessions))
	}
	if len(sessions) == 2 && sessions[0].CheckInTime.Before(sessions[1].CheckInTime) {
		t.Error("应按签到时间倒序")
	}

	totals, err := repo.SumBillable(context.Background(), workerID, base, base.AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("SumBillable 应成功: %v", err)
	}
	if totals.SessionCount != 3 || totals.TotalHours != 24.00 || totals.TotalBillable != 600.00 {
		t.Errorf("汇总不符: %+v", totals)
	}
}
