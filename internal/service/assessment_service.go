package service

import (
	"context"
	"lms_console_backend/internal/model"
	"lms_console_backend/internal/repository"
	"lms_console_backend/internal/util"
	"lms_console_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

type AssessmentService struct {
	Store AssessmentStore
	Admin AssessmentMaintenance
}

func NewAssessmentService(repo *repository.AssessmentRepository) *AssessmentService {
	return &AssessmentService{Store: repo, Admin: repo}
}

// CreateValidated runs editor validation before touching the store.
func (s *AssessmentService) CreateValidated(ctx context.Context, d Draft) (*model.Assessment, error) {
	if err := Validate(d); err != nil {
		return nil, err
	}
	created, err := s.Store.Create(ctx, d.ToAssessment())
	if err != nil {
		return nil, util.WrapOp("create assessment", err)
	}
	logger.Log.Info("Assessment created", zap.Uint("id", created.ID), zap.String("type", string(created.AssessmentType)))
	return created, nil
}

func (s *AssessmentService) UpdateValidated(ctx context.Context, id uint, d Draft) (*model.Assessment, error) {
	if err := Validate(d); err != nil {
		return nil, err
	}
	updated, err := s.Store.Update(ctx, id, d.ToAssessment())
	if err != nil {
		return nil, util.WrapOp("update assessment", err)
	}
	logger.Log.Info("Assessment updated", zap.Uint("id", updated.ID))
	return updated, nil
}

// CreateRaw 批量导入入口：跳过编辑器校验，只应用默认值
func (s *AssessmentService) CreateRaw(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	a.ApplyDefaults()
	created, err := s.Store.Create(ctx, a)
	if err != nil {
		return nil, util.WrapOp("create assessment", err)
	}
	return created, nil
}

// Save creates the draft when editID is zero and updates it otherwise. On
// failure the list comes back unchanged.
func (s *AssessmentService) Save(ctx context.Context, list model.AssessmentList, editID uint, d Draft) (model.AssessmentList, *model.Assessment, error) {
	if editID == 0 {
		created, err := s.CreateValidated(ctx, d)
		if err != nil {
			return list, nil, err
		}
		return list.Prepend(*created), created, nil
	}

	updated, err := s.UpdateValidated(ctx, editID, d)
	if err != nil {
		return list, nil, err
	}
	return list.ReplaceByID(*updated), updated, nil
}

func (s *AssessmentService) Delete(ctx context.Context, list model.AssessmentList, id uint) (model.AssessmentList, error) {
	if err := s.Store.Delete(ctx, id); err != nil {
		return list, util.WrapOp("delete assessment", err)
	}
	logger.Log.Info("Assessment deleted", zap.Uint("id", id))
	return list.RemoveByID(id), nil
}

func (s *AssessmentService) Get(ctx context.Context, id uint) (*model.Assessment, error) {
	a, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, util.WrapOp("load assessment", err)
	}
	return a, nil
}

func (s *AssessmentService) List(ctx context.Context) (model.AssessmentList, error) {
	as, err := s.Store.List(ctx)
	if err != nil {
		return nil, util.WrapOp("load assessments", err)
	}
	return model.AssessmentList(as), nil
}

func (s *AssessmentService) ListByTab(ctx context.Context, tab Tab, now time.Time) (model.AssessmentList, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByTab(list, tab, now), nil
}

func (s *AssessmentService) ClearQuestions(ctx context.Context, id uint) (*model.Assessment, error) {
	if err := s.Admin.ClearQuestions(ctx, id); err != nil {
		return nil, util.WrapOp("delete questions", err)
	}
	return s.Get(ctx, id)
}

func (s *AssessmentService) ClearRubric(ctx context.Context, id uint) (*model.Assessment, error) {
	if err := s.Admin.ClearRubric(ctx, id); err != nil {
		return nil, util.WrapOp("delete rubric", err)
	}
	return s.Get(ctx, id)
}

func (s *AssessmentService) Stats(ctx context.Context) (*repository.AssessmentStats, error) {
	stats, err := s.Admin.Stats(ctx)
	if err != nil {
		return nil, util.WrapOp("load assessment stats", err)
	}
	return stats, nil
}
