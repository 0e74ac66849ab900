package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms_console_backend/internal/model"
	"lms_console_backend/internal/util"
)

func gradable(id uint, typ model.AssessmentType, status model.AssessmentStatus, submissionIDs ...uint) model.Assessment {
	a := model.Assessment{
		BaseModel:      model.BaseModel{ID: id},
		AssessmentType: typ,
		Status:         status,
	}
	for _, sid := range submissionIDs {
		a.Submissions = append(a.Submissions, model.Submission{
			BaseModel:    model.BaseModel{ID: sid},
			AssessmentID: id,
			Status:       model.SubmissionSubmitted,
		})
	}
	return a
}

func newTestEngine(seed ...model.Assessment) (*GradingEngine, *fakeStore, *fakeGradingAPI) {
	store := newFakeStore(seed...)
	api := &fakeGradingAPI{store: store}
	return NewGradingEngine(store, api), store, api
}

func score(v float64) *float64 { return &v }

func TestGradingEngine_DraftRejectedWithoutCalls(t *testing.T) {
	a := gradable(1, model.AssessmentQuiz, model.StatusDraft, 10)
	engine, store, api := newTestEngine(a)

	for _, mode := range []GradeMode{ModeAutomatic, ModeManual} {
		form := &GradeForm{Score: score(80)}
		_, _, err := engine.Grade(context.Background(), model.AssessmentList{a}, &a, mode, form)
		assert.ErrorIs(t, err, util.ErrCannotGradeDraft)
		assert.NotNil(t, form.Score)
	}
	assert.Empty(t, api.calls)
	assert.Equal(t, 0, store.calls())
}

func TestGradingEngine_ManualMissingScoreWithoutCalls(t *testing.T) {
	a := gradable(1, model.AssessmentAssignment, model.StatusActive, 10)
	engine, store, api := newTestEngine(a)

	form := &GradeForm{Feedback: "good"}
	_, _, err := engine.Grade(context.Background(), nil, &a, ModeManual, form)

	assert.ErrorIs(t, err, util.ErrMissingScore)
	assert.Equal(t, "good", form.Feedback)
	assert.Empty(t, api.calls)
	assert.Equal(t, 0, store.calls())
}

func TestGradingEngine_AutoGradesFirstSubmissionOnly(t *testing.T) {
	a := gradable(1, model.AssessmentQuiz, model.StatusActive, 10, 11, 12)
	engine, _, api := newTestEngine(a)
	list := model.AssessmentList{gradable(5, model.AssessmentQuiz, model.StatusActive), a}

	got, refreshed, err := engine.Grade(context.Background(), list, &a, ModeAutomatic, nil)
	require.NoError(t, err)

	require.Len(t, api.calls, 1)
	assert.True(t, api.calls[0].auto)
	assert.Equal(t, uint(10), api.calls[0].submissionID)

	require.Len(t, got, 2)
	assert.Equal(t, uint(5), got[0].ID)
	assert.Equal(t, refreshed.ID, got[1].ID)
	assert.True(t, got[1].Submissions[0].IsGraded())
	assert.False(t, got[1].Submissions[1].IsGraded())
	assert.False(t, list[1].Submissions[0].IsGraded())
}

func TestGradingEngine_AutoRequiresQuizAndSubmissions(t *testing.T) {
	assignment := gradable(1, model.AssessmentAssignment, model.StatusActive, 10)
	empty := gradable(2, model.AssessmentQuiz, model.StatusActive)
	engine, _, api := newTestEngine(assignment, empty)

	_, _, err := engine.Grade(context.Background(), nil, &assignment, ModeAutomatic, nil)
	assert.ErrorIs(t, err, util.ErrAutoGradeUnsupported)

	_, _, err = engine.Grade(context.Background(), nil, &empty, ModeAutomatic, nil)
	assert.ErrorIs(t, err, util.ErrNoSubmissions)
	assert.Empty(t, api.calls)
}

func TestGradingEngine_ManualSuccessResetsForm(t *testing.T) {
	a := gradable(1, model.AssessmentAssignment, model.StatusPublished, 10, 11)
	engine, _, api := newTestEngine(a)

	form := &GradeForm{SubmissionID: 11, Score: score(85), Feedback: "Well argued"}
	got, _, err := engine.Grade(context.Background(), model.AssessmentList{a}, &a, ModeManual, form)
	require.NoError(t, err)

	require.Len(t, api.calls, 1)
	assert.Equal(t, uint(11), api.calls[0].submissionID)
	assert.Equal(t, GradeInput{Score: 85, Feedback: "Well argued"}, api.calls[0].input)

	assert.Nil(t, form.Score)
	assert.Empty(t, form.Feedback)
	require.NotNil(t, got[0].Submissions[1].Score)
	assert.Equal(t, 85.0, *got[0].Submissions[1].Score)
}

func TestGradingEngine_ManualDefaultsToFirstSubmission(t *testing.T) {
	a := gradable(1, model.AssessmentQuiz, model.StatusInactive, 10, 11)
	engine, _, api := newTestEngine(a)

	_, _, err := engine.Grade(context.Background(), nil, &a, ModeManual, &GradeForm{Score: score(0)})
	require.NoError(t, err)
	require.Len(t, api.calls, 1)
	assert.Equal(t, uint(10), api.calls[0].submissionID)
}

func TestGradingEngine_FailureKeepsForm(t *testing.T) {
	a := gradable(1, model.AssessmentAssignment, model.StatusActive, 10)
	engine, _, api := newTestEngine(a)
	api.err = errors.New("")
	list := model.AssessmentList{a}

	form := &GradeForm{Score: score(70), Feedback: "ok"}
	got, refreshed, err := engine.Grade(context.Background(), list, &a, ModeManual, form)

	require.Error(t, err)
	assert.Equal(t, "failed to grade submission", err.Error())
	assert.Nil(t, refreshed)
	assert.Equal(t, list, got)
	require.NotNil(t, form.Score)
	assert.Equal(t, 70.0, *form.Score)
	assert.Equal(t, "ok", form.Feedback)
}

func TestGradingEngine_UnknownMode(t *testing.T) {
	a := gradable(1, model.AssessmentQuiz, model.StatusActive, 10)
	engine, _, _ := newTestEngine(a)

	_, _, err := engine.Grade(context.Background(), nil, &a, GradeMode("peer"), nil)
	assert.ErrorIs(t, err, util.ErrUnknownGradeMode)
}

func TestDefaultMode(t *testing.T) {
	assert.Equal(t, ModeAutomatic, DefaultMode(model.AssessmentQuiz))
	assert.Equal(t, ModeManual, DefaultMode(model.AssessmentAssignment))
	assert.Equal(t, ModeManual, DefaultMode(model.AssessmentCertificationExam))

	_, err := ParseGradeMode("bogus")
	assert.ErrorIs(t, err, util.ErrUnknownGradeMode)
}
