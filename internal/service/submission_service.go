package service

import (
	"context"
	"encoding/csv"
	"io"
	"lms_console_backend/internal/model"
	"lms_console_backend/internal/repository"
	"lms_console_backend/internal/util"
	"lms_console_backend/pkg/logger"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// SubmissionService is the grading backend behind GradingAPI.
type SubmissionService struct {
	Assessments AssessmentStore
	Submissions SubmissionStore
	Now         func() time.Time
}

func NewSubmissionService(assessments *repository.AssessmentRepository, submissions *repository.SubmissionRepository) *SubmissionService {
	return &SubmissionService{
		Assessments: assessments,
		Submissions: submissions,
		Now:         time.Now,
	}
}

var _ GradingAPI = (*SubmissionService)(nil)

// ScoreAnswers 按分值计算百分制得分，简答题不计入
func ScoreAnswers(questions []model.Question, answers []model.SubmissionAnswer) float64 {
	byQuestion := make(map[int]string, len(answers))
	for _, ans := range answers {
		byQuestion[ans.Question] = ans.Answer
	}

	total, earned := 0, 0
	for i, q := range questions {
		if !q.Type.AutoGradable() {
			continue
		}
		total += q.Points
		if ans, ok := byQuestion[i]; ok && q.IsCorrect(ans) {
			earned += q.Points
		}
	}
	if total <= 0 {
		return 0
	}
	return math.Round(float64(earned)*10000/float64(total)) / 100
}

func (s *SubmissionService) load(ctx context.Context, assessmentID, submissionID uint) (*model.Assessment, *model.Submission, error) {
	a, err := s.Assessments.Get(ctx, assessmentID)
	if err != nil {
		return nil, nil, err
	}
	sub, err := s.Submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, nil, err
	}
	if sub.AssessmentID != a.ID {
		return nil, nil, util.ErrSubmissionMismatch
	}
	return a, sub, nil
}

func (s *SubmissionService) AutoGrade(ctx context.Context, assessmentID, submissionID uint) (*model.Assessment, error) {
	a, sub, err := s.load(ctx, assessmentID, submissionID)
	if err != nil {
		return nil, err
	}
	if !a.AssessmentType.IsQuiz() {
		return nil, util.ErrAutoGradeUnsupported
	}

	score := ScoreAnswers(a.Questions, sub.Answers)
	if err := s.markGraded(ctx, sub, score, nil); err != nil {
		return nil, err
	}
	logger.Log.Info("Submission auto-graded",
		zap.Uint("assessment_id", assessmentID),
		zap.Uint("submission_id", submissionID),
		zap.Float64("score", score))
	return s.Assessments.Get(ctx, assessmentID)
}

func (s *SubmissionService) Grade(ctx context.Context, assessmentID, submissionID uint, in GradeInput) (*model.Assessment, error) {
	if in.Score < 0 || in.Score > 100 || math.IsNaN(in.Score) {
		return nil, util.ErrScoreOutOfRange
	}
	_, sub, err := s.load(ctx, assessmentID, submissionID)
	if err != nil {
		return nil, err
	}

	feedback := in.Feedback
	if err := s.markGraded(ctx, sub, in.Score, &feedback); err != nil {
		return nil, err
	}
	logger.Log.Info("Submission graded",
		zap.Uint("assessment_id", assessmentID),
		zap.Uint("submission_id", submissionID),
		zap.Float64("score", in.Score))
	return s.Assessments.Get(ctx, assessmentID)
}

func (s *SubmissionService) markGraded(ctx context.Context, sub *model.Submission, score float64, feedback *string) error {
	now := s.Now()
	sub.Score = &score
	if feedback != nil {
		sub.Feedback = feedback
	}
	sub.Status = model.SubmissionGraded
	sub.GradedAt = &now
	return s.Submissions.Update(ctx, sub)
}

type SubmitRequest struct {
	UserID  uint                     `json:"user" binding:"required"`
	Answers []model.SubmissionAnswer `json:"answers"`
}

// Submit records a learner's answers. Submissions after the due date are
// stored as late.
func (s *SubmissionService) Submit(ctx context.Context, assessmentID uint, req SubmitRequest) (*model.Submission, error) {
	a, err := s.Assessments.Get(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	status := model.SubmissionSubmitted
	if a.DueDate != nil && now.After(*a.DueDate) {
		status = model.SubmissionLate
	}

	answers := req.Answers
	if answers == nil {
		answers = []model.SubmissionAnswer{}
	}
	sub := &model.Submission{
		AssessmentID: a.ID,
		UserID:       req.UserID,
		SubmittedAt:  &now,
		Status:       status,
		Answers:      datatypes.NewJSONSlice(answers),
	}
	if err := s.Submissions.Create(ctx, sub); err != nil {
		return nil, util.WrapOp("submit assessment", err)
	}
	return sub, nil
}

func (s *SubmissionService) ListSubmissions(ctx context.Context, assessmentID uint, status string) ([]model.Submission, error) {
	if _, err := s.Assessments.Get(ctx, assessmentID); err != nil {
		return nil, err
	}
	return s.Submissions.ListByAssessment(ctx, assessmentID, status)
}

var submissionExportColumns = []string{"id", "user", "status", "submitted_at", "score", "feedback", "graded_at"}

// ExportSubmissions 导出提交记录 CSV
func (s *SubmissionService) ExportSubmissions(ctx context.Context, assessmentID uint, w io.Writer) error {
	subs, err := s.ListSubmissions(ctx, assessmentID, "")
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(submissionExportColumns); err != nil {
		return err
	}
	for _, sub := range subs {
		record := []string{
			strconv.FormatUint(uint64(sub.ID), 10),
			strconv.FormatUint(uint64(sub.UserID), 10),
			string(sub.Status),
			formatTime(sub.SubmittedAt),
			"",
			"",
			formatTime(sub.GradedAt),
		}
		if sub.Score != nil {
			record[4] = strconv.FormatFloat(*sub.Score, 'f', -1, 64)
		}
		if sub.Feedback != nil {
			record[5] = *sub.Feedback
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
