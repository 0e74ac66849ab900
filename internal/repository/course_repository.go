package repository

import (
	"context"
	"errors"
	"lms_console_backend/internal/model"
	"lms_console_backend/internal/util"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *CourseRepository) FindByID(ctx context.Context, id uint) (*model.Course, error) {
	var c model.Course
	err := r.DB.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	var cs []model.Course
	err := r.DB.WithContext(ctx).Order("title asc, id asc").Find(&cs).Error
	return cs, err
}
