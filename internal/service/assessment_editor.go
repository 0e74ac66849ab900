package service

import (
	"encoding/json"
	"lms_console_backend/internal/model"
	"lms_console_backend/internal/util"
	"time"

	"gorm.io/datatypes"
)

// Draft is the editable form state of an assessment. Mutations never modify
// the receiver; each returns a fresh Draft that shares no slices with it.
type Draft struct {
	Title              string                 `json:"title"`
	Description        string                 `json:"description"`
	AssessmentType     model.AssessmentType   `json:"assessment_type"`
	Status             model.AssessmentStatus `json:"status"`
	PassingScore       int                    `json:"passing_score"`
	MaxAttempts        int                    `json:"max_attempts"`
	TimeLimit          *int                   `json:"time_limit"`
	ShuffleQuestions   bool                   `json:"shuffle_questions"`
	ShowCorrectAnswers bool                   `json:"show_correct_answers"`
	DueDate            *time.Time             `json:"due_date"`
	CourseID           uint                   `json:"course"`
	Questions          []model.Question       `json:"questions"`
	Rubric             []model.RubricItem     `json:"rubric"`
}

// NewDraft 新建评估的默认表单
func NewDraft(courseID uint) Draft {
	timeLimit := model.DefaultTimeLimit
	return Draft{
		AssessmentType: model.AssessmentQuiz,
		Status:         model.StatusDraft,
		PassingScore:   model.DefaultPassingScore,
		MaxAttempts:    model.DefaultMaxAttempts,
		TimeLimit:      &timeLimit,
		CourseID:       courseID,
		Questions:      []model.Question{},
		Rubric:         []model.RubricItem{},
	}
}

func DraftFromAssessment(a *model.Assessment) Draft {
	d := Draft{
		Title:              a.Title,
		Description:        a.Description,
		AssessmentType:     a.AssessmentType,
		Status:             a.Status,
		PassingScore:       a.PassingScore,
		MaxAttempts:        a.MaxAttempts,
		TimeLimit:          a.TimeLimit,
		ShuffleQuestions:   a.ShuffleQuestions,
		ShowCorrectAnswers: a.ShowCorrectAnswers,
		DueDate:            a.DueDate,
		CourseID:           a.CourseID,
		Questions:          a.Questions,
		Rubric:             a.Rubric,
	}
	return d.clone()
}

func (d Draft) clone() Draft {
	d.Questions = model.CloneQuestions(d.Questions)
	d.Rubric = model.CloneRubric(d.Rubric)
	if d.TimeLimit != nil {
		v := *d.TimeLimit
		d.TimeLimit = &v
	}
	if d.DueDate != nil {
		v := *d.DueDate
		d.DueDate = &v
	}
	return d
}

// Field records whether a JSON key was present in the request body; an
// explicit null counts as present.
type Field[T any] struct {
	Set   bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	return json.Unmarshal(data, &f.Value)
}

// AssessmentPatch 更新请求体：只覆盖出现的字段，题目与评分标准整体替换
type AssessmentPatch struct {
	Title              Field[string]                 `json:"title"`
	Description        Field[string]                 `json:"description"`
	AssessmentType     Field[model.AssessmentType]   `json:"assessment_type"`
	Status             Field[model.AssessmentStatus] `json:"status"`
	PassingScore       Field[int]                    `json:"passing_score"`
	MaxAttempts        Field[int]                    `json:"max_attempts"`
	TimeLimit          Field[*int]                   `json:"time_limit"`
	ShuffleQuestions   Field[bool]                   `json:"shuffle_questions"`
	ShowCorrectAnswers Field[bool]                   `json:"show_correct_answers"`
	DueDate            Field[*time.Time]             `json:"due_date"`
	CourseID           Field[uint]                   `json:"course"`
	Questions          Field[[]model.Question]       `json:"questions"`
	Rubric             Field[[]model.RubricItem]     `json:"rubric"`
}

// Apply returns d with the present fields of p. Collections that appear in
// p replace d's collections outright; nothing is merged element by element.
func (p AssessmentPatch) Apply(d Draft) Draft {
	n := d.clone()
	if p.Title.Set {
		n.Title = p.Title.Value
	}
	if p.Description.Set {
		n.Description = p.Description.Value
	}
	if p.AssessmentType.Set {
		n.AssessmentType = p.AssessmentType.Value
	}
	if p.Status.Set {
		n.Status = p.Status.Value
	}
	if p.PassingScore.Set {
		n.PassingScore = p.PassingScore.Value
	}
	if p.MaxAttempts.Set {
		n.MaxAttempts = p.MaxAttempts.Value
	}
	if p.TimeLimit.Set {
		n.TimeLimit = p.TimeLimit.Value
	}
	if p.ShuffleQuestions.Set {
		n.ShuffleQuestions = p.ShuffleQuestions.Value
	}
	if p.ShowCorrectAnswers.Set {
		n.ShowCorrectAnswers = p.ShowCorrectAnswers.Value
	}
	if p.DueDate.Set {
		n.DueDate = p.DueDate.Value
	}
	if p.CourseID.Set {
		n.CourseID = p.CourseID.Value
	}
	if p.Questions.Set {
		n.Questions = model.CloneQuestions(p.Questions.Value)
	}
	if p.Rubric.Set {
		n.Rubric = model.CloneRubric(p.Rubric.Value)
	}
	return n.clone()
}

// Validate checks title, course and quiz questions, in that order.
func Validate(d Draft) error {
	if d.Title == "" {
		return util.ErrMissingTitle
	}
	if d.CourseID == 0 {
		return util.ErrMissingCourse
	}
	if d.AssessmentType.IsQuiz() && len(d.Questions) == 0 {
		return util.ErrQuizWithoutQuestions
	}
	return nil
}

func (d Draft) Content() model.Content {
	return model.ContentFor(d.AssessmentType, d.Questions, d.Rubric)
}

// ToAssessment 展平为存储记录，非当前类型的集合被清空
func (d Draft) ToAssessment() *model.Assessment {
	c := d.clone()
	a := &model.Assessment{
		Title:              c.Title,
		Description:        c.Description,
		AssessmentType:     c.AssessmentType,
		Status:             c.Status,
		PassingScore:       c.PassingScore,
		MaxAttempts:        c.MaxAttempts,
		TimeLimit:          c.TimeLimit,
		ShuffleQuestions:   c.ShuffleQuestions,
		ShowCorrectAnswers: c.ShowCorrectAnswers,
		DueDate:            c.DueDate,
		CourseID:           c.CourseID,
		Questions:          datatypes.JSONSlice[model.Question]{},
		Rubric:             datatypes.JSONSlice[model.RubricItem]{},
	}
	a.SetContent(c.Content())
	return a
}

func (d Draft) AddQuestion() Draft {
	n := d.clone()
	n.Questions = append(n.Questions, model.NewQuestion())
	return n
}

func (d Draft) AddRubricItem() Draft {
	n := d.clone()
	n.Rubric = append(n.Rubric, model.RubricItem{})
	return n
}

func (d Draft) withQuestion(i int, fn func(q *model.Question) error) (Draft, error) {
	if i < 0 || i >= len(d.Questions) {
		return d, util.ErrIndexOutOfRange
	}
	n := d.clone()
	if err := fn(&n.Questions[i]); err != nil {
		return d, err
	}
	return n, nil
}

func (d Draft) withRubricItem(i int, fn func(r *model.RubricItem)) (Draft, error) {
	if i < 0 || i >= len(d.Rubric) {
		return d, util.ErrIndexOutOfRange
	}
	n := d.clone()
	fn(&n.Rubric[i])
	return n, nil
}

func (d Draft) SetQuestionText(i int, text string) (Draft, error) {
	return d.withQuestion(i, func(q *model.Question) error {
		q.Text = text
		return nil
	})
}

func (d Draft) SetQuestionType(i int, t model.QuestionType) (Draft, error) {
	return d.withQuestion(i, func(q *model.Question) error {
		q.Type = t
		return nil
	})
}

func (d Draft) SetQuestionPoints(i, points int) (Draft, error) {
	return d.withQuestion(i, func(q *model.Question) error {
		q.Points = points
		return nil
	})
}

// SetOption 选项下标可补齐至四个选项
func (d Draft) SetOption(qi, oi int, value string) (Draft, error) {
	return d.withQuestion(qi, func(q *model.Question) error {
		limit := len(q.Options)
		if limit < model.MCQOptionCount {
			limit = model.MCQOptionCount
		}
		if oi < 0 || oi >= limit {
			return util.ErrIndexOutOfRange
		}
		for len(q.Options) <= oi {
			q.Options = append(q.Options, "")
		}
		q.Options[oi] = value
		return nil
	})
}

func (d Draft) SetCorrectAnswer(qi int, value string) (Draft, error) {
	return d.withQuestion(qi, func(q *model.Question) error {
		q.CorrectAnswer = value
		return nil
	})
}

func (d Draft) SetRubricCriterion(i int, criterion string) (Draft, error) {
	return d.withRubricItem(i, func(r *model.RubricItem) {
		r.Criterion = criterion
	})
}

// SetRubricWeight does not check that weights add up to 100.
func (d Draft) SetRubricWeight(i, weight int) (Draft, error) {
	return d.withRubricItem(i, func(r *model.RubricItem) {
		r.Weight = weight
	})
}

// ParseWeight 非数字输入视为 0
func ParseWeight(s string) int {
	return util.ParseIntOrZero(s)
}
