package util

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

var (
	ErrUploadTooLarge      = errors.New("uploaded file is too large")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// sniffLen 与 http.DetectContentType 读取的长度一致
const sniffLen = 512

// DetectMimeType 按内容嗅探类型，allowedTypes 可以是前缀（"text/"）或完整类型
func DetectMimeType(head []byte, allowedTypes []string) (string, error) {
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	mimeType := http.DetectContentType(head)
	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) {
			return mimeType, nil
		}
	}
	return mimeType, fmt.Errorf("%w: %s", ErrUnsupportedFileType, mimeType)
}

// ReadUpload reads the whole upload after checking its declared size and
// sniffed content type. maxBytes <= 0 means no size limit.
func ReadUpload(fh *multipart.FileHeader, maxBytes int64, allowedTypes []string) ([]byte, error) {
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrUploadTooLarge, fh.Size, maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: limit %d", ErrUploadTooLarge, maxBytes)
	}
	if _, err := DetectMimeType(data, allowedTypes); err != nil {
		return nil, err
	}
	return data, nil
}
