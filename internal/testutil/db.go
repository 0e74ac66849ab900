package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lms_console_backend/internal/model"
	"lms_console_backend/pkg/database"
)

// OpenDB returns a migrated in-memory sqlite database private to tb.
// Migration seeds one course with id 1.
func OpenDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func SeedCourse(tb testing.TB, db *gorm.DB, title string) model.Course {
	tb.Helper()
	c := model.Course{Title: title, Code: title}
	if err := db.Create(&c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedSubmission(tb testing.TB, db *gorm.DB, assessmentID uint, answers ...model.SubmissionAnswer) model.Submission {
	tb.Helper()
	now := time.Now()
	s := model.Submission{
		AssessmentID: assessmentID,
		UserID:       1,
		SubmittedAt:  &now,
		Status:       model.SubmissionSubmitted,
		Answers:      answers,
	}
	if s.Answers == nil {
		s.Answers = []model.SubmissionAnswer{}
	}
	if err := db.Create(&s).Error; err != nil {
		tb.Fatalf("seed submission: %v", err)
	}
	return s
}
