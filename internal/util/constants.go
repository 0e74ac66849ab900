package util

// 导入文件中 due_date 接受的本地格式（按 UTC 解析）
const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// 归档存储后端，对应 storage.type
const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeText        = "text/"
	MimeCSV         = "text/csv"
	MimeOctetStream = "application/octet-stream"
)

// Excel 导出的 CSV 常被识别为 octet-stream
var AllowedImportMimeTypes = []string{MimeText, MimeCSV, MimeOctetStream}

const (
	ImportTemplateFilename = "assessment_template.csv"
	ImportArchivePrefix    = "imports/"
	// SubmissionExportFilename takes the assessment id.
	SubmissionExportFilename = "assessment_%d_submissions.csv"
)

// AttachmentDisposition builds a Content-Disposition value for a download.
func AttachmentDisposition(filename string) string {
	return `attachment; filename="` + filename + `"`
}
