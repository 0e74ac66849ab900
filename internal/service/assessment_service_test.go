package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms_console_backend/internal/model"
	"lms_console_backend/internal/repository"
	"lms_console_backend/internal/testutil"
	"lms_console_backend/internal/util"
)

func newTestAssessmentService(store *fakeStore) *AssessmentService {
	return &AssessmentService{Store: store, Admin: store}
}

func validQuizDraft() Draft {
	d := NewDraft(1).AddQuestion()
	d.Title = "Quiz 1"
	return d
}

func TestAssessmentService_SaveCreatesAndPrepends(t *testing.T) {
	store := newFakeStore(model.Assessment{BaseModel: model.BaseModel{ID: 1}, Title: "existing"})
	svc := newTestAssessmentService(store)
	list := model.AssessmentList{{BaseModel: model.BaseModel{ID: 1}, Title: "existing"}}

	got, created, err := svc.Save(context.Background(), list, 0, validQuizDraft())
	require.NoError(t, err)
	require.NotNil(t, created)

	require.Len(t, got, 2)
	assert.Equal(t, created.ID, got[0].ID)
	assert.Equal(t, "Quiz 1", got[0].Title)
	assert.Len(t, list, 1)
}

func TestAssessmentService_SaveUpdatesInPlace(t *testing.T) {
	store := newFakeStore(
		model.Assessment{BaseModel: model.BaseModel{ID: 1}, Title: "a"},
		model.Assessment{BaseModel: model.BaseModel{ID: 2}, Title: "b"},
	)
	svc := newTestAssessmentService(store)
	list := model.AssessmentList{{BaseModel: model.BaseModel{ID: 1}, Title: "a"}, {BaseModel: model.BaseModel{ID: 2}, Title: "b"}}

	d := validQuizDraft()
	d.Title = "b2"
	got, updated, err := svc.Save(context.Background(), list, 2, d)
	require.NoError(t, err)

	assert.Equal(t, uint(2), updated.ID)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "b2", got[1].Title)
	assert.Equal(t, "b", list[1].Title)
}

func TestAssessmentService_ValidationFailsBeforeStore(t *testing.T) {
	store := newFakeStore()
	svc := newTestAssessmentService(store)
	list := model.AssessmentList{}

	d := NewDraft(1)
	d.Title = "Quiz"
	got, created, err := svc.Save(context.Background(), list, 0, d)

	assert.ErrorIs(t, err, util.ErrQuizWithoutQuestions)
	assert.Nil(t, created)
	assert.Empty(t, got)
	assert.Equal(t, 0, store.calls())
}

func TestAssessmentService_StoreErrorKeepsList(t *testing.T) {
	store := newFakeStore()
	store.failErr = errors.New("")
	svc := newTestAssessmentService(store)
	list := model.AssessmentList{{BaseModel: model.BaseModel{ID: 9}}}

	got, _, err := svc.Save(context.Background(), list, 0, validQuizDraft())
	require.Error(t, err)

	var opErr *util.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "failed to create assessment", err.Error())
	assert.Equal(t, list, got)

	store.failErr = errors.New("title already taken")
	_, _, err = svc.Save(context.Background(), list, 9, validQuizDraft())
	assert.EqualError(t, err, "title already taken")
}

func TestAssessmentService_CreateRawSkipsEditorValidation(t *testing.T) {
	store := newFakeStore()
	svc := newTestAssessmentService(store)

	created, err := svc.CreateRaw(context.Background(), &model.Assessment{Title: "Empty quiz", CourseID: 1})
	require.NoError(t, err)
	assert.Equal(t, model.AssessmentQuiz, created.AssessmentType)
	assert.Equal(t, model.StatusDraft, created.Status)
	assert.Empty(t, created.Questions)
}

func TestAssessmentService_Delete(t *testing.T) {
	store := newFakeStore(model.Assessment{BaseModel: model.BaseModel{ID: 1}}, model.Assessment{BaseModel: model.BaseModel{ID: 2}})
	svc := newTestAssessmentService(store)
	list := model.AssessmentList{{BaseModel: model.BaseModel{ID: 1}}, {BaseModel: model.BaseModel{ID: 2}}}

	got, err := svc.Delete(context.Background(), list, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].ID)

	got, err = svc.Delete(context.Background(), got, 1)
	assert.ErrorIs(t, err, util.ErrAssessmentNotFound)
	assert.Len(t, got, 1)
}

func TestAssessmentService_ListByTab(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)
	store := newFakeStore(
		model.Assessment{BaseModel: model.BaseModel{ID: 1}, Status: model.StatusPublished, DueDate: &future},
		model.Assessment{BaseModel: model.BaseModel{ID: 2}, Status: model.StatusDraft},
	)
	svc := newTestAssessmentService(store)

	got, err := svc.ListByTab(context.Background(), TabUpcoming, time.Now())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].ID)
}

func TestAssessmentService_FieldBoundariesSurviveStore(t *testing.T) {
	ctx := context.Background()
	svc := NewAssessmentService(repository.NewAssessmentRepository(testutil.OpenDB(t)))

	tests := []struct {
		name         string
		passingScore int
		maxAttempts  int
	}{
		{"lowest passing score", 0, 1},
		{"highest passing score", 100, 1},
		{"default passing score", 70, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDraft(1)
			d.Title = "Essay"
			d.AssessmentType = model.AssessmentAssignment
			d.PassingScore = tt.passingScore
			d.MaxAttempts = tt.maxAttempts

			created, err := svc.CreateValidated(ctx, d)
			require.NoError(t, err)
			assert.Equal(t, tt.passingScore, created.PassingScore)
			assert.Equal(t, tt.maxAttempts, created.MaxAttempts)

			// 以另一个边界值更新后再读回
			edit := DraftFromAssessment(created)
			edit.PassingScore = 100 - tt.passingScore
			updated, err := svc.UpdateValidated(ctx, created.ID, edit)
			require.NoError(t, err)
			assert.Equal(t, 100-tt.passingScore, updated.PassingScore)
			assert.Equal(t, tt.maxAttempts, updated.MaxAttempts)
		})
	}
}

func TestAssessmentPatch_Apply(t *testing.T) {
	base := NewDraft(1)
	base.Title = "Quiz 1"
	base.Questions = []model.Question{{
		Type:          model.QuestionMCQ,
		Text:          "Pick one",
		Options:       []string{"1", "2", "3", "4"},
		CorrectAnswer: "1",
		Points:        5,
	}}
	base.Rubric = []model.RubricItem{{Criterion: "Clarity", Weight: 100}}

	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, got Draft)
	}{
		{
			name: "questions replaced wholesale",
			body: `{"questions":[{"type":"true_false","text":"Sky is blue","correctAnswer":"True"}]}`,
			check: func(t *testing.T, got Draft) {
				require.Len(t, got.Questions, 1)
				q := got.Questions[0]
				assert.Equal(t, model.QuestionTrueFalse, q.Type)
				assert.Equal(t, "Sky is blue", q.Text)
				assert.Empty(t, q.Options)
				assert.Equal(t, 0, q.Points)
				assert.Equal(t, "Quiz 1", got.Title)
				assert.Len(t, got.Rubric, 1)
			},
		},
		{
			name: "rubric replaced, questions kept",
			body: `{"rubric":[{"criterion":"Depth","weight":40}]}`,
			check: func(t *testing.T, got Draft) {
				assert.Equal(t, []model.RubricItem{{Criterion: "Depth", Weight: 40}}, got.Rubric)
				require.Len(t, got.Questions, 1)
				assert.Equal(t, 5, got.Questions[0].Points)
			},
		},
		{
			name: "zero passing score is applied",
			body: `{"passing_score":0,"max_attempts":1}`,
			check: func(t *testing.T, got Draft) {
				assert.Equal(t, 0, got.PassingScore)
				assert.Equal(t, 1, got.MaxAttempts)
			},
		},
		{
			name: "null clears time limit",
			body: `{"time_limit":null}`,
			check: func(t *testing.T, got Draft) {
				assert.Nil(t, got.TimeLimit)
			},
		},
		{
			name: "empty body keeps everything",
			body: `{}`,
			check: func(t *testing.T, got Draft) {
				assert.Equal(t, base, got)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p AssessmentPatch
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))
			got := p.Apply(base)
			tt.check(t, got)
			// 原表单不被修改
			assert.Equal(t, "Pick one", base.Questions[0].Text)
			assert.Equal(t, []string{"1", "2", "3", "4"}, base.Questions[0].Options)
		})
	}
}
