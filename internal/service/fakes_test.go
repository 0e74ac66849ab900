package service

import (
	"context"
	"sync"

	"lms_console_backend/internal/model"
	"lms_console_backend/internal/repository"
	"lms_console_backend/internal/util"
)

// fakeStore is an in-memory AssessmentStore that counts calls.
type fakeStore struct {
	mu      sync.Mutex
	nextID  uint
	items   map[uint]model.Assessment
	failErr error

	creates, updates, deletes, gets, lists int
}

func newFakeStore(seed ...model.Assessment) *fakeStore {
	s := &fakeStore{items: map[uint]model.Assessment{}}
	for _, a := range seed {
		s.items[a.ID] = a
		if a.ID > s.nextID {
			s.nextID = a.ID
		}
	}
	return s
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates + s.updates + s.deletes + s.gets + s.lists
}

func (s *fakeStore) Create(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.failErr != nil {
		return nil, s.failErr
	}
	if a.CourseID == 0 {
		return nil, util.ErrCourseNotFound
	}
	s.nextID++
	cp := *a
	cp.ID = s.nextID
	s.items[cp.ID] = cp
	return &cp, nil
}

func (s *fakeStore) Update(ctx context.Context, id uint, a *model.Assessment) (*model.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	if s.failErr != nil {
		return nil, s.failErr
	}
	if _, ok := s.items[id]; !ok {
		return nil, util.ErrAssessmentNotFound
	}
	cp := *a
	cp.ID = id
	s.items[id] = cp
	return &cp, nil
}

func (s *fakeStore) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if s.failErr != nil {
		return s.failErr
	}
	if _, ok := s.items[id]; !ok {
		return util.ErrAssessmentNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *fakeStore) Get(ctx context.Context, id uint) (*model.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	a, ok := s.items[id]
	if !ok {
		return nil, util.ErrAssessmentNotFound
	}
	return &a, nil
}

func (s *fakeStore) List(ctx context.Context) ([]model.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	if s.failErr != nil {
		return nil, s.failErr
	}
	out := make([]model.Assessment, 0, len(s.items))
	for _, a := range s.items {
		out = append(out, a)
	}
	return out, nil
}

func (s *fakeStore) ClearQuestions(ctx context.Context, id uint) error { return nil }
func (s *fakeStore) ClearRubric(ctx context.Context, id uint) error    { return nil }
func (s *fakeStore) Stats(ctx context.Context) (*repository.AssessmentStats, error) {
	return &repository.AssessmentStats{}, nil
}

type gradeCall struct {
	auto         bool
	assessmentID uint
	submissionID uint
	input        GradeInput
}

// fakeGradingAPI records calls and marks the graded submission on the store.
type fakeGradingAPI struct {
	store *fakeStore
	err   error
	calls []gradeCall
}

func (f *fakeGradingAPI) AutoGrade(ctx context.Context, assessmentID, submissionID uint) (*model.Assessment, error) {
	f.calls = append(f.calls, gradeCall{auto: true, assessmentID: assessmentID, submissionID: submissionID})
	if f.err != nil {
		return nil, f.err
	}
	return f.mark(assessmentID, submissionID, 100)
}

func (f *fakeGradingAPI) Grade(ctx context.Context, assessmentID, submissionID uint, in GradeInput) (*model.Assessment, error) {
	f.calls = append(f.calls, gradeCall{assessmentID: assessmentID, submissionID: submissionID, input: in})
	if f.err != nil {
		return nil, f.err
	}
	return f.mark(assessmentID, submissionID, in.Score)
}

func (f *fakeGradingAPI) mark(assessmentID, submissionID uint, score float64) (*model.Assessment, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	a := f.store.items[assessmentID]
	subs := make([]model.Submission, len(a.Submissions))
	copy(subs, a.Submissions)
	for i := range subs {
		if subs[i].ID == submissionID {
			s := score
			subs[i].Score = &s
			subs[i].Status = model.SubmissionGraded
		}
	}
	a.Submissions = subs
	f.store.items[assessmentID] = a
	return &a, nil
}

type fakeCourseStore struct {
	courses []model.Course
	err     error
	calls   int
}

func (f *fakeCourseStore) List(ctx context.Context) ([]model.Course, error) {
	f.calls++
	return f.courses, f.err
}
