package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"lms_console_backend/internal/config"
	"lms_console_backend/internal/model"
	"lms_console_backend/internal/util"
	"lms_console_backend/pkg/logger"
	"lms_console_backend/pkg/monitoring"
	"lms_console_backend/pkg/tracing"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ImportColumns 导入文件列，顺序与模板一致
var ImportColumns = []string{
	"title",
	"course",
	"assessment_type",
	"due_date",
	"time_limit",
	"status",
	"questions",
	"rubric",
}

const defaultImportTitle = "Untitled"

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	util.TimeFormat,
	util.DateFormat,
}

type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportReport 单批次导入结果，Created 保持文件顺序
type ImportReport struct {
	BatchID    string             `json:"batch_id"`
	Created    []model.Assessment `json:"created"`
	RowErrors  []ImportRowError   `json:"row_errors"`
	ArchiveURL string             `json:"archive_url,omitempty"`
}

func (r *ImportReport) Skipped() int {
	return len(r.RowErrors)
}

// ApplyTo puts the created assessments in front of list, in file order.
func (r *ImportReport) ApplyTo(list model.AssessmentList) model.AssessmentList {
	return list.Prepend(r.Created...)
}

type ImportSettings struct {
	MaxRows        int
	MaxFileSizeMB  int
	ArchiveUploads bool
}

func ImportSettingsFrom(cfg config.ImportConfig) ImportSettings {
	return ImportSettings{
		MaxRows:        cfg.MaxRows,
		MaxFileSizeMB:  cfg.MaxFileSizeMB,
		ArchiveUploads: cfg.ArchiveUploads,
	}
}

// MaxFileBytes 0 表示不限制
func (s ImportSettings) MaxFileBytes() int64 {
	return int64(s.MaxFileSizeMB) << 20
}

type rawCreator interface {
	CreateRaw(ctx context.Context, a *model.Assessment) (*model.Assessment, error)
}

type ImportService struct {
	Assessments rawCreator
	Storage     *StorageService
	Now         func() time.Time

	mu       sync.RWMutex
	settings ImportSettings
}

func NewImportService(assessments *AssessmentService, storage *StorageService, settings ImportSettings) *ImportService {
	return &ImportService{
		Assessments: assessments,
		Storage:     storage,
		Now:         time.Now,
		settings:    settings,
	}
}

// SetSettings 配置热更新回调
func (s *ImportService) SetSettings(settings ImportSettings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

func (s *ImportService) Settings() ImportSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Archive 返回某批次上传的原始文件
func (s *ImportService) Archive(ctx context.Context, batchID string) ([]byte, error) {
	if s.Storage == nil {
		return nil, util.ErrArchiveDisabled
	}
	data, err := s.Storage.LoadImport(ctx, batchID)
	if err != nil {
		return nil, util.WrapOp("load import archive", err)
	}
	return data, nil
}

func (s *ImportService) DeleteArchive(ctx context.Context, batchID string) error {
	if s.Storage == nil {
		return util.ErrArchiveDisabled
	}
	if err := s.Storage.DeleteImport(ctx, batchID); err != nil {
		return util.WrapOp("delete import archive", err)
	}
	return nil
}

// ImportBatch parses the whole file first, then creates one assessment per
// row in file order. A row that fails is recorded and skipped; only an
// unreadable file aborts the batch. The batch runs to completion even if ctx
// is cancelled.
func (s *ImportService) ImportBatch(ctx context.Context, r io.Reader) (*ImportReport, error) {
	ctx = context.WithoutCancel(ctx)
	settings := s.Settings()

	ctx, span := tracing.Start(ctx, "import.batch")
	defer span.End()
	start := time.Now()

	data, err := io.ReadAll(r)
	if err != nil {
		monitoring.ImportBatches.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %v", util.ErrMalformedImportFile, err)
	}

	rows, err := parseImportFile(data)
	if err != nil {
		monitoring.ImportBatches.WithLabelValues("failed").Inc()
		tracing.Fail(span, err)
		logger.Log.Warn("Import file rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", util.ErrMalformedImportFile, err)
	}
	if settings.MaxRows > 0 && len(rows) > settings.MaxRows {
		monitoring.ImportBatches.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %d rows, limit %d", util.ErrImportTooLarge, len(rows), settings.MaxRows)
	}

	report := &ImportReport{
		BatchID:   uuid.NewString(),
		Created:   []model.Assessment{},
		RowErrors: []ImportRowError{},
	}
	span.SetAttributes(
		attribute.String("import.batch_id", report.BatchID),
		attribute.Int("import.rows", len(rows)),
	)

	if settings.ArchiveUploads && s.Storage != nil {
		url, err := s.Storage.ArchiveImport(ctx, report.BatchID, data)
		if err != nil {
			logger.Log.Warn("Import archive failed", zap.String("batch_id", report.BatchID), zap.Error(err))
		} else {
			report.ArchiveURL = url
		}
	}

	now := s.Now()
	for i, row := range rows {
		s.importRow(ctx, report, i+1, row, now)
	}

	monitoring.ImportBatches.WithLabelValues("completed").Inc()
	monitoring.ImportDuration.Observe(time.Since(start).Seconds())
	logger.Log.Info("Import batch finished",
		zap.String("batch_id", report.BatchID),
		zap.Int("created", len(report.Created)),
		zap.Int("skipped", report.Skipped()))
	return report, nil
}

func (s *ImportService) importRow(ctx context.Context, report *ImportReport, rowNum int, row importRow, now time.Time) {
	ctx, span := tracing.Start(ctx, "import.row", attribute.Int("import.row", rowNum))
	defer span.End()

	a, err := buildImportedAssessment(row, now)
	if err == nil {
		var created *model.Assessment
		created, err = s.Assessments.CreateRaw(ctx, a)
		if err == nil {
			report.Created = append(report.Created, *created)
			monitoring.ImportRows.WithLabelValues("created").Inc()
			return
		}
	}

	tracing.Fail(span, err)
	report.RowErrors = append(report.RowErrors, ImportRowError{Row: rowNum, Reason: err.Error()})
	monitoring.ImportRows.WithLabelValues("skipped").Inc()
	logger.Log.Warn("Skipping import row",
		zap.String("batch_id", report.BatchID),
		zap.Int("row", rowNum),
		zap.Error(err))
}

// importRow 按列名取值，缺失列视为空
type importRow map[string]string

func (r importRow) get(column string) string {
	return strings.TrimSpace(r[column])
}

func parseImportFile(data []byte) ([]importRow, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("missing header row")
	}

	header := make([]string, len(records[0]))
	known := false
	for i, name := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(name))
		for _, col := range ImportColumns {
			if header[i] == col {
				known = true
			}
		}
	}
	if !known {
		return nil, errors.New("header row has no recognised columns")
	}

	rows := make([]importRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(importRow, len(header))
		for i, value := range record {
			if i < len(header) && header[i] != "" {
				row[header[i]] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func buildImportedAssessment(row importRow, now time.Time) (*model.Assessment, error) {
	var questions []model.Question
	if raw := row.get("questions"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &questions); err != nil {
			return nil, fmt.Errorf("invalid questions: %w", err)
		}
	}
	var rubric []model.RubricItem
	if raw := row.get("rubric"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &rubric); err != nil {
			return nil, fmt.Errorf("invalid rubric: %w", err)
		}
	}

	dueDate := now
	if raw := row.get("due_date"); raw != "" {
		parsed, err := parseDueDate(raw)
		if err != nil {
			return nil, err
		}
		dueDate = parsed
	}

	title := row.get("title")
	if title == "" {
		title = defaultImportTitle
	}

	assessmentType := model.AssessmentType(row.get("assessment_type"))
	if assessmentType == "" {
		assessmentType = model.AssessmentQuiz
	}

	status := model.AssessmentStatus(row.get("status"))
	if !status.Valid() {
		status = model.StatusDraft
	}

	timeLimit := parseTimeLimit(row.get("time_limit"))

	a := &model.Assessment{
		Title:          title,
		AssessmentType: assessmentType,
		Status:         status,
		PassingScore:   model.DefaultPassingScore,
		MaxAttempts:    model.DefaultMaxAttempts,
		TimeLimit:      timeLimit,
		DueDate:        &dueDate,
		CourseID:       util.MustParseUint(row.get("course")),
	}
	a.SetContent(model.ContentFor(assessmentType, questions, rubric))
	return a, nil
}

func parseDueDate(raw string) (time.Time, error) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due_date %q", raw)
}

type templateRow struct {
	title          string
	course         string
	assessmentType model.AssessmentType
	dueDate        string
	timeLimit      string
	status         model.AssessmentStatus
	questions      []model.Question
	rubric         []model.RubricItem
}

var templateRows = []templateRow{
	{
		title:          "Sample Quiz",
		course:         "1",
		assessmentType: model.AssessmentQuiz,
		dueDate:        "2025-06-15T23:59:00",
		timeLimit:      "60",
		status:         model.StatusActive,
		questions: []model.Question{{
			Type:          model.QuestionMCQ,
			Text:          "What is 2+2?",
			Options:       []string{"2", "3", "4", "5"},
			CorrectAnswer: "4",
			Points:        1,
		}},
		rubric: []model.RubricItem{},
	},
	{
		title:          "Sample Assignment",
		course:         "1",
		assessmentType: model.AssessmentAssignment,
		dueDate:        "2025-07-10T23:59:00",
		timeLimit:      "",
		status:         model.StatusPublished,
		questions:      []model.Question{},
		rubric: []model.RubricItem{
			{Criterion: "Code Quality", Weight: 60},
			{Criterion: "Functionality", Weight: 40},
		},
	},
}

// Template renders the downloadable import template: a header row plus one
// sample quiz and one sample assignment.
func Template() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ImportColumns); err != nil {
		return nil, err
	}
	for _, row := range templateRows {
		questions, err := json.Marshal(row.questions)
		if err != nil {
			return nil, err
		}
		rubric, err := json.Marshal(row.rubric)
		if err != nil {
			return nil, err
		}
		record := []string{
			row.title,
			row.course,
			string(row.assessmentType),
			row.dueDate,
			row.timeLimit,
			string(row.status),
			string(questions),
			string(rubric),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// parseTimeLimit 取前导整数（"60 min" -> 60），不以数字开头时视为未设置
func parseTimeLimit(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" || s[0] < '0' || s[0] > '9' {
		return nil
	}
	v := util.ParseIntOrZero(s)
	return &v
}
