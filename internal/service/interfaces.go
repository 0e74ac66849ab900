package service

import (
	"context"
	"lms_console_backend/internal/model"
	"lms_console_backend/internal/repository"
)

// AssessmentStore is the persistence contract shared by the editor, the
// grading engine and the bulk importer.
type AssessmentStore interface {
	Create(ctx context.Context, a *model.Assessment) (*model.Assessment, error)
	Update(ctx context.Context, id uint, a *model.Assessment) (*model.Assessment, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*model.Assessment, error)
	List(ctx context.Context) ([]model.Assessment, error)
}

// AssessmentMaintenance 批量清理与统计，仅数据库实现提供
type AssessmentMaintenance interface {
	ClearQuestions(ctx context.Context, id uint) error
	ClearRubric(ctx context.Context, id uint) error
	Stats(ctx context.Context) (*repository.AssessmentStats, error)
}

type GradeInput struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// GradingAPI grades a single submission and returns the refreshed assessment.
type GradingAPI interface {
	AutoGrade(ctx context.Context, assessmentID, submissionID uint) (*model.Assessment, error)
	Grade(ctx context.Context, assessmentID, submissionID uint, in GradeInput) (*model.Assessment, error)
}

type CourseStore interface {
	List(ctx context.Context) ([]model.Course, error)
}

type SubmissionStore interface {
	Create(ctx context.Context, s *model.Submission) error
	FindByID(ctx context.Context, id uint) (*model.Submission, error)
	ListByAssessment(ctx context.Context, assessmentID uint, status string) ([]model.Submission, error)
	Update(ctx context.Context, s *model.Submission) error
}

var (
	_ AssessmentStore       = (*repository.AssessmentRepository)(nil)
	_ AssessmentMaintenance = (*repository.AssessmentRepository)(nil)
	_ SubmissionStore       = (*repository.SubmissionRepository)(nil)
	_ CourseStore           = (*repository.CourseRepository)(nil)
)
