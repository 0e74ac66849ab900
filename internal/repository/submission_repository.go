package repository

import (
	"context"
	"errors"
	"lms_console_backend/internal/model"
	"lms_console_backend/internal/util"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id uint) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.WithContext(ctx).First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepository) ListByAssessment(ctx context.Context, assessmentID uint, status string) ([]model.Submission, error) {
	var ss []model.Submission
	query := r.DB.WithContext(ctx).Where("assessment_id = ?", assessmentID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at asc, id asc").Find(&ss).Error
	return ss, err
}

func (r *SubmissionRepository) Update(ctx context.Context, s *model.Submission) error {
	return r.DB.WithContext(ctx).Save(s).Error
}
