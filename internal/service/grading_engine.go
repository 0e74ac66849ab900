package service

import (
	"context"
	"lms_console_backend/internal/model"
	"lms_console_backend/internal/util"
	"lms_console_backend/pkg/logger"
	"lms_console_backend/pkg/monitoring"
	"lms_console_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type GradeMode string

const (
	ModeAutomatic GradeMode = "auto"
	ModeManual    GradeMode = "manual"
)

// DefaultMode 测验默认自动评分，其余类型人工评分
func DefaultMode(t model.AssessmentType) GradeMode {
	if t.IsQuiz() {
		return ModeAutomatic
	}
	return ModeManual
}

func ParseGradeMode(s string) (GradeMode, error) {
	switch GradeMode(s) {
	case ModeAutomatic, ModeManual:
		return GradeMode(s), nil
	}
	return "", util.ErrUnknownGradeMode
}

// GradeForm is the transient manual-grading input. A nil Score means the
// field was left empty.
type GradeForm struct {
	SubmissionID uint     `json:"submission_id"`
	Score        *float64 `json:"score"`
	Feedback     string   `json:"feedback"`
}

func (f *GradeForm) Reset() {
	f.Score = nil
	f.Feedback = ""
}

type GradingEngine struct {
	Store AssessmentStore
	API   GradingAPI
}

func NewGradingEngine(store AssessmentStore, api GradingAPI) *GradingEngine {
	return &GradingEngine{Store: store, API: api}
}

// Grade grades one submission of a and replaces a in list with the
// re-fetched record. Draft assessments and an empty manual score are
// rejected before any call is made.
func (e *GradingEngine) Grade(ctx context.Context, list model.AssessmentList, a *model.Assessment, mode GradeMode, form *GradeForm) (model.AssessmentList, *model.Assessment, error) {
	if a.Status == model.StatusDraft {
		return list, nil, util.ErrCannotGradeDraft
	}

	ctx, span := tracing.Start(ctx, "grading.grade",
		attribute.Int64("assessment.id", int64(a.ID)),
		attribute.String("grading.mode", string(mode)),
	)
	defer span.End()

	var err error
	switch mode {
	case ModeAutomatic:
		err = e.autoGrade(ctx, a)
	case ModeManual:
		err = e.manualGrade(ctx, a, form)
	default:
		err = util.ErrUnknownGradeMode
	}
	if err != nil {
		if util.IsValidationError(err) {
			return list, nil, err
		}
		monitoring.GradingOperations.WithLabelValues(string(mode), "failure").Inc()
		tracing.Fail(span, err)
		logger.Log.Warn("Grading failed", zap.Uint("assessment_id", a.ID), zap.String("mode", string(mode)), zap.Error(err))
		return list, nil, util.WrapOp("grade submission", err)
	}

	if mode == ModeManual {
		form.Reset()
	}
	monitoring.GradingOperations.WithLabelValues(string(mode), "success").Inc()

	refreshed, err := e.Store.Get(ctx, a.ID)
	if err != nil {
		return list, nil, util.WrapOp("refresh assessment", err)
	}
	return list.ReplaceByID(*refreshed), refreshed, nil
}

func (e *GradingEngine) autoGrade(ctx context.Context, a *model.Assessment) error {
	if !a.AssessmentType.IsQuiz() {
		return util.ErrAutoGradeUnsupported
	}
	// 只评第一份提交
	first, ok := a.FirstSubmission()
	if !ok {
		return util.ErrNoSubmissions
	}
	_, err := e.API.AutoGrade(ctx, a.ID, first.ID)
	return err
}

func (e *GradingEngine) manualGrade(ctx context.Context, a *model.Assessment, form *GradeForm) error {
	if form == nil || form.Score == nil {
		return util.ErrMissingScore
	}
	submissionID := form.SubmissionID
	if submissionID == 0 {
		first, ok := a.FirstSubmission()
		if !ok {
			return util.ErrNoSubmissions
		}
		submissionID = first.ID
	}
	_, err := e.API.Grade(ctx, a.ID, submissionID, GradeInput{
		Score:    *form.Score,
		Feedback: form.Feedback,
	})
	return err
}
