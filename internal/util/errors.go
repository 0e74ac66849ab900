package util

import "errors"

// 校验错误：在任何网络/存储调用之前返回
var (
	ErrMissingTitle         = errors.New("title is required")
	ErrMissingCourse        = errors.New("course selection is required")
	ErrQuizWithoutQuestions = errors.New("quizzes must have at least one question")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrCannotGradeDraft     = errors.New("cannot grade draft assessments")
	ErrMissingScore         = errors.New("score is required for grading")
	ErrAutoGradeUnsupported = errors.New("automatic grading is only available for quizzes")
	ErrNoSubmissions        = errors.New("assessment has no submissions")
	ErrUnknownGradeMode     = errors.New("unknown grading mode")
)

// 存储层错误
var (
	ErrAssessmentNotFound    = errors.New("assessment not found")
	ErrSubmissionNotFound    = errors.New("submission not found")
	ErrCourseNotFound        = errors.New("course not found")
	ErrInvalidAssessmentType = errors.New("invalid assessment type")
	ErrInvalidStatus         = errors.New("invalid assessment status")
	ErrScoreOutOfRange       = errors.New("score must be between 0 and 100")
	ErrSubmissionMismatch    = errors.New("submission does not belong to assessment")
)

// 批量导入
var (
	ErrMalformedImportFile = errors.New("error parsing file")
	ErrImportTooLarge      = errors.New("import file has too many rows")
	ErrInvalidBatchID      = errors.New("invalid import batch id")
	ErrArchiveNotFound     = errors.New("import archive not found")
	ErrArchiveDisabled     = errors.New("import archiving is not configured")
)

var validationErrors = []error{
	ErrMissingTitle,
	ErrMissingCourse,
	ErrQuizWithoutQuestions,
	ErrIndexOutOfRange,
	ErrCannotGradeDraft,
	ErrMissingScore,
	ErrAutoGradeUnsupported,
	ErrNoSubmissions,
	ErrUnknownGradeMode,
}

// IsValidationError 报告 err 是否为本地同步校验错误
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// OpError wraps a failed store or grading call. Its message is the store's
// own message when there is one, "failed to <op>" otherwise.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	if e.Err != nil && e.Err.Error() != "" {
		return e.Err.Error()
	}
	return "failed to " + e.Op
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}
	return &OpError{Op: op, Err: err}
}
