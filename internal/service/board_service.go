package service

import (
	"context"
	"lms_console_backend/internal/model"
	"lms_console_backend/internal/util"
	"time"

	"golang.org/x/sync/errgroup"
)

const NoCourseTitle = "No course"

type BoardRow struct {
	Assessment  model.Assessment `json:"assessment"`
	CourseTitle string           `json:"course_title"`
	GradeMode   GradeMode        `json:"grade_mode"`
}

type BoardTab struct {
	Tab   Tab        `json:"tab"`
	Label string     `json:"label"`
	Count int        `json:"count"`
	Rows  []BoardRow `json:"rows"`
}

// Board 控制台总览：四个标签页及课程下拉数据
type Board struct {
	Tabs        []BoardTab     `json:"tabs"`
	Courses     []model.Course `json:"courses"`
	GeneratedAt time.Time      `json:"generated_at"`
}

type BoardService struct {
	Assessments AssessmentStore
	Courses     CourseStore
}

func NewBoardService(assessments AssessmentStore, courses CourseStore) *BoardService {
	return &BoardService{Assessments: assessments, Courses: courses}
}

// Overview loads courses and assessments concurrently and buckets the
// assessments into tabs as of now.
func (s *BoardService) Overview(ctx context.Context, now time.Time) (*Board, error) {
	var (
		courses     []model.Course
		assessments []model.Assessment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		courses, err = s.Courses.List(gctx)
		if err != nil {
			return util.WrapOp("load courses", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assessments, err = s.Assessments.List(gctx)
		if err != nil {
			return util.WrapOp("load assessments", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	titles := CourseTitles(courses)
	buckets := BucketByTab(assessments, now)

	board := &Board{
		Tabs:        make([]BoardTab, 0, len(Tabs)),
		Courses:     courses,
		GeneratedAt: now,
	}
	for _, t := range Tabs {
		items := buckets[t]
		rows := make([]BoardRow, 0, len(items))
		for _, a := range items {
			title, ok := titles[a.CourseID]
			if !ok {
				title = NoCourseTitle
			}
			rows = append(rows, BoardRow{
				Assessment:  a,
				CourseTitle: title,
				GradeMode:   DefaultMode(a.AssessmentType),
			})
		}
		board.Tabs = append(board.Tabs, BoardTab{Tab: t, Label: t.Label(), Count: len(rows), Rows: rows})
	}
	return board, nil
}
