package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lms_console_backend/internal/model"
	"lms_console_backend/internal/repository"
	"lms_console_backend/internal/testutil"
	"lms_console_backend/internal/util"
)

func TestScoreAnswers(t *testing.T) {
	questions := []model.Question{
		{Type: model.QuestionMCQ, CorrectAnswer: "4", Points: 2},
		{Type: model.QuestionTrueFalse, CorrectAnswer: "true", Points: 1},
		{Type: model.QuestionShortAnswer, CorrectAnswer: "anything", Points: 5},
		{Type: model.QuestionMCQ, CorrectAnswer: "b", Points: 1},
	}

	tests := []struct {
		name    string
		answers []model.SubmissionAnswer
		want    float64
	}{
		{"all correct", []model.SubmissionAnswer{{Question: 0, Answer: "4"}, {Question: 1, Answer: "True"}, {Question: 2, Answer: "anything"}, {Question: 3, Answer: "b"}}, 100},
		{"short answer ignored", []model.SubmissionAnswer{{Question: 2, Answer: "anything"}}, 0},
		{"partial", []model.SubmissionAnswer{{Question: 0, Answer: "4"}, {Question: 1, Answer: "false"}}, 50},
		{"one of three", []model.SubmissionAnswer{{Question: 3, Answer: "b"}}, 25},
		{"none", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreAnswers(questions, tt.answers))
		})
	}

	assert.Equal(t, 0.0, ScoreAnswers([]model.Question{{Type: model.QuestionShortAnswer, Points: 3}}, nil))
	assert.Equal(t, 33.33, ScoreAnswers([]model.Question{
		{Type: model.QuestionMCQ, CorrectAnswer: "a", Points: 1},
		{Type: model.QuestionMCQ, CorrectAnswer: "a", Points: 1},
		{Type: model.QuestionMCQ, CorrectAnswer: "a", Points: 1},
	}, []model.SubmissionAnswer{{Question: 0, Answer: "a"}}))
}

type submissionFixture struct {
	db       *gorm.DB
	svc      *SubmissionService
	quiz     *model.Assessment
	essay    *model.Assessment
	clockNow time.Time
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()
	db := testutil.OpenDB(t)
	assessments := repository.NewAssessmentRepository(db)
	ctx := context.Background()

	due := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
	quiz, err := assessments.Create(ctx, &model.Assessment{
		Title:          "Arithmetic",
		AssessmentType: model.AssessmentQuiz,
		Status:         model.StatusActive,
		CourseID:       1,
		DueDate:        &due,
		Questions: []model.Question{
			{Type: model.QuestionMCQ, Text: "2+2", Options: []string{"2", "3", "4", "5"}, CorrectAnswer: "4", Points: 1},
			{Type: model.QuestionTrueFalse, Text: "1<2", CorrectAnswer: "true", Points: 1},
		},
	})
	require.NoError(t, err)

	essay, err := assessments.Create(ctx, &model.Assessment{
		Title:          "Essay 1",
		AssessmentType: model.AssessmentAssignment,
		Status:         model.StatusPublished,
		CourseID:       1,
	})
	require.NoError(t, err)

	f := &submissionFixture{
		db:       db,
		quiz:     quiz,
		essay:    essay,
		clockNow: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewSubmissionService(assessments, repository.NewSubmissionRepository(db))
	f.svc.Now = func() time.Time { return f.clockNow }
	return f
}

func TestSubmissionService_AutoGrade(t *testing.T) {
	f := newSubmissionFixture(t)
	sub := testutil.SeedSubmission(t, f.db, f.quiz.ID,
		model.SubmissionAnswer{Question: 0, Answer: "4"},
		model.SubmissionAnswer{Question: 1, Answer: "False"},
	)

	refreshed, err := f.svc.AutoGrade(context.Background(), f.quiz.ID, sub.ID)
	require.NoError(t, err)

	require.Len(t, refreshed.Submissions, 1)
	got := refreshed.Submissions[0]
	assert.Equal(t, model.SubmissionGraded, got.Status)
	require.NotNil(t, got.Score)
	assert.Equal(t, 50.0, *got.Score)
	assert.NotNil(t, got.GradedAt)
	assert.Equal(t, int64(1), refreshed.GradedCount)
}

func TestSubmissionService_AutoGradeRejectsNonQuiz(t *testing.T) {
	f := newSubmissionFixture(t)
	sub := testutil.SeedSubmission(t, f.db, f.essay.ID)

	_, err := f.svc.AutoGrade(context.Background(), f.essay.ID, sub.ID)
	assert.ErrorIs(t, err, util.ErrAutoGradeUnsupported)
}

func TestSubmissionService_Grade(t *testing.T) {
	f := newSubmissionFixture(t)
	sub := testutil.SeedSubmission(t, f.db, f.essay.ID)
	ctx := context.Background()

	refreshed, err := f.svc.Grade(ctx, f.essay.ID, sub.ID, GradeInput{Score: 88.5, Feedback: "Strong thesis"})
	require.NoError(t, err)
	got := refreshed.Submissions[0]
	assert.Equal(t, 88.5, *got.Score)
	assert.Equal(t, "Strong thesis", *got.Feedback)
	assert.Equal(t, model.SubmissionGraded, got.Status)

	_, err = f.svc.Grade(ctx, f.essay.ID, sub.ID, GradeInput{Score: 101})
	assert.ErrorIs(t, err, util.ErrScoreOutOfRange)
	_, err = f.svc.Grade(ctx, f.essay.ID, sub.ID, GradeInput{Score: -1})
	assert.ErrorIs(t, err, util.ErrScoreOutOfRange)
	_, err = f.svc.Grade(ctx, f.quiz.ID, sub.ID, GradeInput{Score: 50})
	assert.ErrorIs(t, err, util.ErrSubmissionMismatch)
	_, err = f.svc.Grade(ctx, f.essay.ID, 999, GradeInput{Score: 50})
	assert.ErrorIs(t, err, util.ErrSubmissionNotFound)
}

func TestSubmissionService_SubmitMarksLate(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	onTime, err := f.svc.Submit(ctx, f.quiz.ID, SubmitRequest{UserID: 3, Answers: []model.SubmissionAnswer{{Question: 0, Answer: "4"}}})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionSubmitted, onTime.Status)

	f.clockNow = time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	late, err := f.svc.Submit(ctx, f.quiz.ID, SubmitRequest{UserID: 4})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionLate, late.Status)

	noDue, err := f.svc.Submit(ctx, f.essay.ID, SubmitRequest{UserID: 4})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionSubmitted, noDue.Status)

	lateOnly, err := f.svc.ListSubmissions(ctx, f.quiz.ID, string(model.SubmissionLate))
	require.NoError(t, err)
	require.Len(t, lateOnly, 1)
	assert.Equal(t, late.ID, lateOnly[0].ID)
}

func TestSubmissionService_ExportSubmissions(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	sub := testutil.SeedSubmission(t, f.db, f.essay.ID)
	testutil.SeedSubmission(t, f.db, f.essay.ID)
	_, err := f.svc.Grade(ctx, f.essay.ID, sub.ID, GradeInput{Score: 72, Feedback: "Needs sources, see notes"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportSubmissions(ctx, f.essay.ID, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, submissionExportColumns, records[0])
	assert.Equal(t, "72", records[1][4])
	assert.Equal(t, "Needs sources, see notes", records[1][5])
	assert.Equal(t, "", records[2][4])

	err = f.svc.ExportSubmissions(ctx, 999, &buf)
	assert.ErrorIs(t, err, util.ErrAssessmentNotFound)
}
