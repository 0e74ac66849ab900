package repository

import (
	"context"
	"database/sql"
	"errors"
	"lms_console_backend/internal/model"
	"lms_console_backend/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

// checkRefs 存储层校验：枚举值与课程引用
func (r *AssessmentRepository) checkRefs(ctx context.Context, a *model.Assessment) error {
	if !a.AssessmentType.Valid() {
		return util.ErrInvalidAssessmentType
	}
	if !a.Status.Valid() {
		return util.ErrInvalidStatus
	}
	if a.CourseID == 0 {
		return util.ErrCourseNotFound
	}
	var count int64
	if err := r.DB.WithContext(ctx).Model(&model.Course{}).Where("id = ?", a.CourseID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return util.ErrCourseNotFound
	}
	return nil
}

func (r *AssessmentRepository) Create(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	a.ApplyDefaults()
	if err := r.checkRefs(ctx, a); err != nil {
		return nil, err
	}
	a.ID = 0
	if err := r.DB.WithContext(ctx).Omit(clause.Associations).Create(a).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, a.ID)
}

func (r *AssessmentRepository) Update(ctx context.Context, id uint, a *model.Assessment) (*model.Assessment, error) {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	a.ApplyDefaults()
	if err := r.checkRefs(ctx, a); err != nil {
		return nil, err
	}

	a.ID = existing.ID
	a.CreatedAt = existing.CreatedAt
	if err := r.DB.WithContext(ctx).Omit(clause.Associations).Save(a).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *AssessmentRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Assessment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrAssessmentNotFound
		}
		return tx.Where("assessment_id = ?", id).Delete(&model.Submission{}).Error
	})
}

func (r *AssessmentRepository) Get(ctx context.Context, id uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.WithContext(ctx).
		Preload("Submissions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc, id asc")
		}).
		First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssessmentNotFound
	}
	if err != nil {
		return nil, err
	}

	a.SubmissionsCount = int64(len(a.Submissions))
	for i := range a.Submissions {
		if a.Submissions[i].IsGraded() {
			a.GradedCount++
		}
	}
	return &a, nil
}

func (r *AssessmentRepository) List(ctx context.Context) ([]model.Assessment, error) {
	var as []model.Assessment
	if err := r.DB.WithContext(ctx).Order("created_at desc, id desc").Find(&as).Error; err != nil {
		return nil, err
	}
	if err := r.fillCounts(ctx, as); err != nil {
		return nil, err
	}
	return as, nil
}

type submissionCountRow struct {
	AssessmentID uint
	Total        int64
	Graded       int64
}

func (r *AssessmentRepository) fillCounts(ctx context.Context, as []model.Assessment) error {
	if len(as) == 0 {
		return nil
	}
	ids := make([]uint, len(as))
	for i := range as {
		ids[i] = as[i].ID
	}

	var rows []submissionCountRow
	err := r.DB.WithContext(ctx).Model(&model.Submission{}).
		Select("assessment_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS graded", model.SubmissionGraded).
		Where("assessment_id IN ?", ids).
		Group("assessment_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	byID := make(map[uint]submissionCountRow, len(rows))
	for _, row := range rows {
		byID[row.AssessmentID] = row
	}
	for i := range as {
		if row, ok := byID[as[i].ID]; ok {
			as[i].SubmissionsCount = row.Total
			as[i].GradedCount = row.Graded
		}
	}
	return nil
}

func (r *AssessmentRepository) ClearQuestions(ctx context.Context, id uint) error {
	return r.clearColumn(ctx, id, "questions", datatypes.JSONSlice[model.Question]{})
}

func (r *AssessmentRepository) ClearRubric(ctx context.Context, id uint) error {
	return r.clearColumn(ctx, id, "rubric", datatypes.JSONSlice[model.RubricItem]{})
}

func (r *AssessmentRepository) clearColumn(ctx context.Context, id uint, column string, empty interface{}) error {
	res := r.DB.WithContext(ctx).Model(&model.Assessment{}).Where("id = ?", id).Update(column, empty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrAssessmentNotFound
	}
	return nil
}

// AssessmentStats 评估统计
type AssessmentStats struct {
	Total        int64            `json:"total"`
	ByStatus     map[string]int64 `json:"by_status"`
	ByType       map[string]int64 `json:"by_type"`
	Submissions  int64            `json:"submissions"`
	Graded       int64            `json:"graded"`
	AverageScore float64          `json:"average_score"`
}

type groupCountRow struct {
	Key   string
	Count int64
}

func (r *AssessmentRepository) Stats(ctx context.Context) (*AssessmentStats, error) {
	db := r.DB.WithContext(ctx)
	stats := &AssessmentStats{
		ByStatus: map[string]int64{},
		ByType:   map[string]int64{},
	}

	if err := db.Model(&model.Assessment{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	var rows []groupCountRow
	if err := db.Model(&model.Assessment{}).Select("status AS `key`, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByStatus[row.Key] = row.Count
	}

	rows = nil
	if err := db.Model(&model.Assessment{}).Select("assessment_type AS `key`, COUNT(*) AS count").Group("assessment_type").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByType[row.Key] = row.Count
	}

	if err := db.Model(&model.Submission{}).Count(&stats.Submissions).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Submission{}).Where("status = ?", model.SubmissionGraded).Count(&stats.Graded).Error; err != nil {
		return nil, err
	}

	var avg sql.NullFloat64
	if err := db.Model(&model.Submission{}).Select("AVG(score)").Where("score IS NOT NULL").Row().Scan(&avg); err != nil {
		return nil, err
	}
	if avg.Valid {
		stats.AverageScore = avg.Float64
	}
	return stats, nil
}
